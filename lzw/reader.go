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

// Decompress reads a complete ".Z" stream from r (header included) and
// writes the decompressed data to w.
//
// Grounded on original_source/lzw.c's lzwDecompress.
func Decompress(w io.Writer, r io.Reader) (Result, error) {
	var hdr [3]byte
	n, rerr := io.ReadFull(r, hdr[:])
	if rerr == io.EOF || rerr == io.ErrUnexpectedEOF || n < 3 {
		return Result{}, fmt.Errorf("%w: truncated header", ErrHeader)
	}
	if rerr != nil {
		return Result{}, fmt.Errorf("%w: read: %w", errLZW, rerr)
	}

	maxWidth, blockCompress, herr := ParseHeader(hdr[:])
	if herr != nil {
		return Result{}, herr
	}

	dictOffset := uint16(dictOffsetPlain)
	if blockCompress {
		dictOffset = dictOffsetBlockCompress
	}
	dictEntries := uint32(1) << uint(maxWidth)

	br := newBitReader(r, nil)
	dict := newDecoderDict(maxWidth, dictOffset)
	bw := bufio.NewWriterSize(w, bufferSize)

	var outputBytes int64
	scratch := make([]byte, dictEntries)

	// nextFree is dict.NextFree() widened to 32 bits: a full dictionary
	// has no free code, which at maxWidth 16 is 1<<16 and does not fit the
	// dictionary's own 16-bit counter.
	nextFree := func() uint32 {
		if dict.Full() {
			return dictEntries
		}
		return uint32(dict.NextFree())
	}

	// readLiteral reads one code that must be a plain, already-defined
	// value (never CLEAR, never a KwKwK back-reference): the very first
	// code of the stream, or the first code following a CLEAR. It writes
	// the decoded byte directly, since such a code is always a single
	// literal byte at this point in the stream (dict is empty or freshly
	// reset, so every valid code here is < dictOffset).
	readLiteral := func() (seq uint16, ok bool, err error) {
		code, ok, err := br.ReadCode()
		if err != nil || !ok {
			return 0, ok, err
		}
		if code >= dict.NextFree() {
			return 0, false, fmt.Errorf("%w: undefined code", ErrFormat)
		}
		if err := bw.WriteByte(byte(code)); err != nil {
			return 0, false, fmt.Errorf("%w: write: %w", errLZW, err)
		}
		outputBytes++
		return code, true, nil
	}

	previousSeq, ok, err := readLiteral()
	if err != nil {
		return Result{}, err
	}
	if !ok {
		if ferr := bw.Flush(); ferr != nil {
			return Result{}, fmt.Errorf("%w: write: %w", errLZW, ferr)
		}
		return Result{InputBytes: br.InputBytes(), OutputBytes: 0, Ratio: -1}, nil
	}

	for {
		code, ok, err := br.ReadCode()
		if err != nil {
			return Result{}, err
		}
		if !ok {
			break
		}
		if uint32(code) > nextFree() {
			return Result{}, fmt.Errorf("%w: undefined code", ErrFormat)
		}

		if blockCompress && code == clearCode {
			if err := br.DiscardPadding(); err != nil {
				return Result{}, err
			}
			dict.Reset()
			br.SetBits(minBits)
			previousSeq, ok, err = readLiteral()
			if err != nil {
				return Result{}, err
			}
			if !ok {
				break
			}
			continue
		}

		originalCode := code
		// KwKwK: code refers to the entry about to be created by this
		// very iteration (not yet in the dictionary). Its expansion is
		// the previous sequence with its own first byte appended again.
		kwkwk := uint32(code) == nextFree()
		if kwkwk {
			code = previousSeq
		}

		root, tail := dict.Expand(code, scratch)
		if err := bw.WriteByte(root); err != nil {
			return Result{}, fmt.Errorf("%w: write: %w", errLZW, err)
		}
		outputBytes++
		if len(tail) > 0 {
			if _, werr := bw.Write(tail); werr != nil {
				return Result{}, fmt.Errorf("%w: write: %w", errLZW, werr)
			}
			outputBytes += int64(len(tail))
		}
		if kwkwk {
			if err := bw.WriteByte(root); err != nil {
				return Result{}, fmt.Errorf("%w: write: %w", errLZW, err)
			}
			outputBytes++
		}

		if !dict.Full() {
			dict.Insert(previousSeq, root)
			// Unlike the encoder, the width check here runs *after*
			// nextFree advances: currentBits == 9 is included even when
			// maxWidth == 9 (where currentBits < maxWidth is false),
			// which is what lets this single, uniform check also cover
			// the 9-bit quirk without a separate branch. Grounded on
			// original_source/lzw.c's lzwDecompress.
			next := nextFree()
			if (br.currentBits < maxWidth || br.currentBits == minBits) &&
				next&(next-1) == 0 {
				if err := br.DiscardPadding(); err != nil {
					return Result{}, err
				}
				br.SetBits(br.currentBits + 1)
			}
		}
		previousSeq = originalCode
	}

	if err := bw.Flush(); err != nil {
		return Result{}, fmt.Errorf("%w: write: %w", errLZW, err)
	}

	inputBytes := br.InputBytes()
	var ratio float64
	if outputBytes > 0 {
		ratio = 1 - float64(inputBytes)/float64(outputBytes)
	}
	return Result{InputBytes: inputBytes, OutputBytes: outputBytes, Ratio: ratio}, nil
}
