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

// Package lzw implements the historical compress(1) ".Z" LZW format.
//
// The format is not described by any normative specification; it is defined
// only by behavioral compatibility with historical compress(1)
// implementations, including the 9-bit bitsize-growth quirk reproduced by
// [Compress] and [Decompress]. See: https://linux.die.net/man/1/compress
package lzw

import (
	"errors"
	"fmt"
)

// errLZW is the base error for all errors returned by this package.
var errLZW = errors.New("lzw")

// ErrHeader indicates a malformed or unsupported 3-byte file header.
var ErrHeader = fmt.Errorf("%w: invalid header", errLZW)

// ErrFormat indicates a malformed code stream.
var ErrFormat = fmt.Errorf("%w: invalid code stream", errLZW)

const (
	magic1 = 0x1F
	magic2 = 0x9D

	flagBlockCompress = 0x80
	flagReservedMask  = 0x60

	// clearCode is the reserved code that resets the dictionary. It is only
	// meaningful when the block-compress flag is set.
	clearCode = 256

	// checkInterval is the number of input bytes between ratio checks once
	// the dictionary is full. See the max-width reset heuristic in
	// [Compress].
	checkInterval = 5000

	minBits = 9
	maxBits = 16

	// dictOffsetBlockCompress is the first free code when block-compress is
	// set: code 256 is reserved for clearCode.
	dictOffsetBlockCompress = 257

	// dictOffsetPlain is the first free code when block-compress is clear.
	dictOffsetPlain = 256
)

// MinBits and MaxBits bound the legal values of a stream's maximum code
// width, per the 3-byte header's 5-bit maxbits field.
const (
	MinBits = minBits
	MaxBits = maxBits
)

// header3 returns the 3rd header byte for the given maxbits, always with the
// block-compress flag set: this implementation only ever writes
// block-compress streams, matching every known compress(1) variant still in
// common use.
func header3(bits int) byte {
	return flagBlockCompress | byte(bits)
}

// ParseHeader validates the first 3 bytes of an LZW stream and returns the
// maximum code width and whether block-compress (CLEAR) is enabled.
func ParseHeader(buf []byte) (bits int, blockCompress bool, err error) {
	if len(buf) < 3 || buf[0] != magic1 || buf[1] != magic2 {
		return 0, false, ErrHeader
	}
	bits = int(buf[2] & 0x1F)
	if bits < minBits || bits > maxBits {
		return 0, false, ErrHeader
	}
	if buf[2]&flagReservedMask != 0 {
		return 0, false, ErrHeader
	}
	blockCompress = buf[2]&flagBlockCompress != 0
	return bits, blockCompress, nil
}

// Probe reports whether buf begins with the LZW magic number. Per spec, any
// 2+ byte prefix starting with the magic is accepted; the caller is expected
// to supply at least a few bytes of look-ahead.
func Probe(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == magic1 && buf[1] == magic2
}
