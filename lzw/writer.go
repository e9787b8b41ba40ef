// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package lzw

import (
	"bufio"
	"fmt"
	"io"
)

// Result carries per-stream outcome metadata back to the caller, since the
// LZW format has no integrity check field of its own (spec.md §3).
type Result struct {
	// InputBytes and OutputBytes are the uncompressed and compressed byte
	// counts respectively (for Compress) or vice versa (for Decompress).
	InputBytes  int64
	OutputBytes int64

	// Ratio is 1 - compressed/uncompressed; negative means the output grew.
	// It is -1 for empty input, matching spec.md §4.D.
	Ratio float64
}

// Compress reads all of r and writes a complete ".Z" stream to w using at
// most maxWidth bits per code. maxWidth must be in [MinBits, MaxBits].
//
// Grounded on original_source/lzw.c's lzwCompress.
func Compress(w io.Writer, r io.Reader, maxWidth int) (Result, error) {
	if maxWidth < minBits || maxWidth > maxBits {
		return Result{}, fmt.Errorf("%w: maxbits %d out of range", errLZW, maxWidth)
	}

	br := bufio.NewReaderSize(r, bufferSize)
	first, err := br.ReadByte()
	if err == io.EOF {
		if werr := writeFull(w, []byte{magic1, magic2, header3(maxWidth)}); werr != nil {
			return Result{}, werr
		}
		return Result{InputBytes: 0, OutputBytes: 3, Ratio: -1}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("%w: read: %w", errLZW, err)
	}

	if werr := writeFull(w, []byte{magic1, magic2, header3(maxWidth)}); werr != nil {
		return Result{}, werr
	}

	bw := newBitWriter(w)
	dict := newEncoderDict()

	dictEntries := uint32(1) << uint(maxWidth)
	nextFree := uint32(dictOffsetBlockCompress)
	currentSeq := uint16(first)
	inputBytes := int64(1)

	// ratio/checkOffset drive the max-width reset heuristic.
	var bestRatio float64
	checkOffset := int64(checkInterval)
	outputBytesAtHeader := int64(3)

	quirkDone := false // tracks the 9-bit quirk one-shot transition

	for {
		c, rerr := br.ReadByte()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return Result{}, fmt.Errorf("%w: read: %w", errLZW, rerr)
		}
		inputBytes++

		if code, ok := dict.Lookup(currentSeq, c); ok {
			currentSeq = code
			continue
		}

		if err := bw.WriteCode(currentSeq); err != nil {
			return Result{}, err
		}

		// 9-bit quirk: see spec.md §4.B. Triggers once per dictionary fill
		// (a CLEAR re-arms it), the first time the dictionary is observed
		// full while maxBits == 9.
		if !quirkDone && nextFree == 512 && maxWidth == minBits {
			quirkDone = true
			if err := bw.Pad(); err != nil {
				return Result{}, err
			}
			bw.SetBits(10)
		}

		if nextFree < dictEntries {
			dict.Insert(currentSeq, c, uint16(nextFree))
			// The width check uses nextFree *before* it advances: the
			// entry just assigned code nextFree, and once that code
			// value itself needs an extra bit, every code from here on
			// does too. Grounded on original_source/lzw.c's lzwCompress,
			// which checks nextFree here, then increments.
			if nextFree&(nextFree-1) == 0 {
				if err := bw.Pad(); err != nil {
					return Result{}, err
				}
				bw.SetBits(bw.currentBits + 1)
			}
			nextFree++
		} else {
			outputBytes := outputBytesAtHeader + bw.OutputBytes()
			if inputBytes >= checkOffset {
				checkOffset = inputBytes + checkInterval
				ratio := float64(inputBytes) / float64(outputBytes)
				if ratio >= bestRatio {
					bestRatio = ratio
				} else {
					bestRatio = 0
					if err := bw.WriteCode(clearCode); err != nil {
						return Result{}, err
					}
					if err := bw.Pad(); err != nil {
						return Result{}, err
					}
					dict.Reset()
					nextFree = dictOffsetBlockCompress
					bw.SetBits(minBits)
					quirkDone = false
				}
			}
		}
		currentSeq = uint16(c)
	}

	if err := bw.WriteCode(currentSeq); err != nil {
		return Result{}, err
	}
	if err := bw.Flush(); err != nil {
		return Result{}, err
	}

	outputBytes := outputBytesAtHeader + bw.OutputBytes()
	ratio := 1 - float64(outputBytes)/float64(inputBytes)
	return Result{InputBytes: inputBytes, OutputBytes: outputBytes, Ratio: ratio}, nil
}
