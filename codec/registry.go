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
	"errors"
	"fmt"
	"strings"
)

// errCodec is the base error for all errors returned by this package.
var errCodec = errors.New("codec")

// ErrUnknownAlgorithm indicates an -m name that no registered algorithm
// answers to.
var ErrUnknownAlgorithm = fmt.Errorf("%w: unknown algorithm", errCodec)

// ErrHeader indicates a malformed container header (gzip or xz).
var ErrHeader = fmt.Errorf("%w: invalid header", errCodec)

// ErrFormat indicates a malformed compressed stream body (gzip or xz).
var ErrFormat = fmt.Errorf("%w: invalid stream", errCodec)

// Registry is a fixed, ordered list of algorithms. Order matters for probing
// (the first Probe match wins) and LZW must be first per spec.md §4.F: it
// is the implicit algorithm for an unrecognized suffix.
type Registry struct {
	algorithms []*Algorithm
}

// NewRegistry builds a registry from algorithms, in the given order.
func NewRegistry(algorithms ...*Algorithm) *Registry {
	return &Registry{algorithms: algorithms}
}

// Algorithms returns the registered algorithms in registration order.
func (r *Registry) Algorithms() []*Algorithm {
	return r.algorithms
}

// Default returns the first registered algorithm (LZW, by convention).
func (r *Registry) Default() *Algorithm {
	if len(r.algorithms) == 0 {
		return nil
	}
	return r.algorithms[0]
}

// ByName performs the linear name lookup of spec.md §4.F.
func (r *Registry) ByName(name string) (*Algorithm, error) {
	for _, a := range r.algorithms {
		if a.HasName(name) {
			return a, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
}

// ByCompressExtension returns the algorithm whose extension list claims
// ext (without the leading dot), for use when compressing: it is the
// inverse of the name-resolution rule "does this name already end in the
// algorithm's suffix".
func (r *Registry) ByCompressExtension(ext string) (*Algorithm, bool) {
	for _, a := range r.algorithms {
		for _, e := range a.Extensions {
			if strings.EqualFold(e.Ext, ext) {
				return a, true
			}
		}
	}
	return nil, false
}

// ByDecompressExtension returns the algorithm and replacement extension (may
// be empty) for a decompress-mode input extension, per the `A:B` extension
// syntax of spec.md §3/§4.F.
func (r *Registry) ByDecompressExtension(ext string) (a *Algorithm, replacement string, ok bool) {
	for _, a := range r.algorithms {
		for _, e := range a.Extensions {
			if strings.EqualFold(e.Ext, ext) {
				return a, e.Replacement, true
			}
		}
	}
	return nil, "", false
}

// Probe walks the registry in order and returns the first algorithm whose
// Probe function matches prefix.
func (r *Registry) Probe(prefix []byte) (*Algorithm, bool) {
	for _, a := range r.algorithms {
		if a.Probe(prefix) {
			return a, true
		}
	}
	return nil, false
}
