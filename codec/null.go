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
)

// NewNull returns the passthrough algorithm used in force+decompress mode
// when no registered Probe matches: spec.md §4.G, step 3. It is never
// registered in the ordered Registry and its Probe always reports false, so
// the driver selects it explicitly rather than via Probe.
func NewNull() *Algorithm {
	return &Algorithm{
		Names: []string{"null", "copy"},

		MinLevel:     0,
		DefaultLevel: 0,
		MaxLevel:     0,

		Compress: func(w io.Writer, r io.Reader, level int, info *FileInfo) error {
			n, err := io.Copy(w, r)
			if err != nil {
				return fmt.Errorf("%w: %w", errCodec, err)
			}
			info.CompressedSize = n
			info.UncompressedSize = n
			return nil
		},

		Decompress: func(dst *Destination, r io.Reader, prefix []byte, info *FileInfo) error {
			w, err := dst.Open("")
			if err != nil {
				return fmt.Errorf("%w: %w", errCodec, err)
			}
			n, err := io.Copy(w, prependPrefix(prefix, r))
			if err != nil {
				return fmt.Errorf("%w: %w", errCodec, err)
			}
			info.CompressedSize = n
			info.UncompressedSize = n
			return nil
		},

		Probe: func(prefix []byte) bool { return false },
	}
}
