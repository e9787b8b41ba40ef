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

package codec

import (
	"fmt"
	"io"
	"runtime"

	"github.com/ulikunitz/xz"
)

// xzMagic is the 6-byte magic every xz stream begins with.
var xzMagic = []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}

// XZOptions carries the best-effort multi-threading hint for the xz
// encoder. Go's xz ecosystem (github.com/ulikunitz/xz) exposes no
// user-tunable multithreaded encoder, unlike liblzma's
// lzma_stream_encoder_mt; Threads here only scales the dictionary-size
// preset chosen for level, which is the closest equivalent this library
// offers to the memory-budgeted thread count of spec.md §4.E.
type XZOptions struct {
	// Threads is the caller's requested worker count; 0 means "auto",
	// resolved to runtime.NumCPU() capped at the level's dictionary
	// budget.
	Threads int
}

// NewXZ returns the registry entry for the xz container around LZMA2.
// Grounded on github.com/ulikunitz/xz, the xz library present elsewhere in
// this retrieval pack (e.g. via ulikunitz/xz/lzma in chd/codec_lzma.go).
func NewXZ(opts XZOptions) *Algorithm {
	return &Algorithm{
		Names:      []string{"xz", "lzma"},
		Extensions: []Extension{{Ext: "xz"}, {Ext: "txz", Replacement: "tar"}},

		MinLevel:     0,
		DefaultLevel: 6,
		MaxLevel:     9,

		Compress: func(w io.Writer, r io.Reader, level int, info *FileInfo) error {
			cw := &countingWriter{w: w}
			cfg := xz.WriterConfig{
				CheckSum: xz.CRC64,
				DictCap:  dictCapForLevel(level, opts.Threads),
			}
			xw, err := cfg.NewWriter(cw)
			if err != nil {
				return fmt.Errorf("%w: %w", errCodec, err)
			}
			n, err := io.Copy(xw, r)
			if err != nil {
				return fmt.Errorf("%w: compressing: %w", errCodec, err)
			}
			if err := xw.Close(); err != nil {
				return fmt.Errorf("%w: compressing: %w", errCodec, err)
			}
			info.UncompressedSize = n
			info.CompressedSize = cw.n
			return nil
		},

		// Decompress relies on xz.ReaderConfig's default multi-stream
		// behavior (SingleStream: false) to transparently join
		// concatenated members, matching the C reference's
		// LZMA_CONCATENATED decoder flag.
		Decompress: func(dst *Destination, r io.Reader, prefix []byte, info *FileInfo) error {
			w, err := dst.Open("")
			if err != nil {
				return fmt.Errorf("%w: %w", errCodec, err)
			}
			cr := &countingReader{r: prependPrefix(prefix, r)}
			cfg := xz.ReaderConfig{}
			xr, err := cfg.NewReader(cr)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrHeader, err)
			}
			n, err := io.Copy(w, xr)
			if err != nil {
				return fmt.Errorf("%w: decompressing: %w", ErrFormat, err)
			}
			info.UncompressedSize = n
			info.CompressedSize = cr.n
			return nil
		},

		Probe: func(prefix []byte) bool {
			return len(prefix) >= len(xzMagic) && string(prefix[:len(xzMagic)]) == string(xzMagic)
		},
	}
}

// dictCapForLevel approximates liblzma's preset dictionary sizes, scaled up
// when more worker threads are available, capped at a conservative ceiling
// so a --best run on a many-core box cannot blow past typical available
// memory. threads == 0 resolves to runtime.NumCPU().
func dictCapForLevel(level, threads int) int {
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	base := 1 << 20 // 1 MiB, preset 0
	if level > 0 {
		base = 1 << (20 + level/2)
	}
	if threads > 1 {
		base *= 2
	}
	const ceiling = 1 << 27 // 128 MiB
	if base > ceiling {
		base = ceiling
	}
	return base
}
