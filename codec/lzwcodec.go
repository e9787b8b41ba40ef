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

	"github.com/dennis95/dxcompress/lzw"
)

// NewLZW returns the registry entry for the historical compress(1) ".Z"
// format. It must be registered first: it is the implicit algorithm for
// output with no recognized extension (spec.md §4.F).
func NewLZW() *Algorithm {
	return &Algorithm{
		Names:      []string{"lzw", "compress"},
		Extensions: []Extension{{Ext: "Z"}},

		MinLevel:     lzw.MinBits,
		DefaultLevel: lzw.MaxBits,
		MaxLevel:     lzw.MaxBits,

		Compress: func(w io.Writer, r io.Reader, level int, info *FileInfo) error {
			result, err := lzw.Compress(w, r, level)
			if err != nil {
				return fmt.Errorf("%w: %w", errCodec, err)
			}
			info.CompressedSize = result.OutputBytes
			info.UncompressedSize = result.InputBytes
			return nil
		},

		Decompress: func(dst *Destination, r io.Reader, prefix []byte, info *FileInfo) error {
			w, err := dst.Open("")
			if err != nil {
				return fmt.Errorf("%w: %w", errCodec, err)
			}
			result, err := lzw.Decompress(w, prependPrefix(prefix, r))
			if err != nil {
				return fmt.Errorf("%w: %w", errCodec, err)
			}
			info.CompressedSize = result.InputBytes
			info.UncompressedSize = result.OutputBytes
			return nil
		},

		Probe: func(prefix []byte) bool {
			return lzw.Probe(prefix)
		},
	}
}
