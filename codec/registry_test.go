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
	"testing"
)

func testRegistry() *Registry {
	return NewRegistry(NewLZW(), NewGzip(), NewXZ(XZOptions{}))
}

func TestRegistryDefaultIsLZW(t *testing.T) {
	t.Parallel()

	r := testRegistry()
	if got := r.Default(); !got.HasName("lzw") {
		t.Errorf("Default() = %v, want the lzw algorithm", got.Names)
	}
}

func TestRegistryByName(t *testing.T) {
	t.Parallel()

	r := testRegistry()
	for _, name := range []string{"lzw", "compress", "gzip", "gz", "xz", "lzma"} {
		if _, err := r.ByName(name); err != nil {
			t.Errorf("ByName(%q) = %v, want no error", name, err)
		}
	}

	if _, err := r.ByName("bogus"); !errors.Is(err, ErrUnknownAlgorithm) {
		t.Errorf("ByName(%q) error = %v, want ErrUnknownAlgorithm", "bogus", err)
	}
}

func TestRegistryByCompressExtension(t *testing.T) {
	t.Parallel()

	r := testRegistry()
	a, ok := r.ByCompressExtension("gz")
	if !ok || !a.HasName("gzip") {
		t.Errorf("ByCompressExtension(gz) = (%v, %v), want gzip algorithm", a, ok)
	}

	if _, ok := r.ByCompressExtension("bogus"); ok {
		t.Error("ByCompressExtension(bogus) = ok, want not found")
	}
}

func TestRegistryByDecompressExtensionReplacement(t *testing.T) {
	t.Parallel()

	r := testRegistry()
	a, replacement, ok := r.ByDecompressExtension("tgz")
	if !ok || !a.HasName("gzip") || replacement != "tar" {
		t.Errorf("ByDecompressExtension(tgz) = (%v, %q, %v), want (gzip, tar, true)", a, replacement, ok)
	}
}

func TestRegistryProbeOrder(t *testing.T) {
	t.Parallel()

	r := testRegistry()

	lzwPrefix := []byte{0x1F, 0x9D, 0x90}
	a, ok := r.Probe(lzwPrefix)
	if !ok || !a.HasName("lzw") {
		t.Errorf("Probe(lzw magic) = (%v, %v), want lzw", a, ok)
	}

	gzPrefix := []byte{0x1F, 0x8B, 0x08, 0, 0, 0}
	a, ok = r.Probe(gzPrefix)
	if !ok || !a.HasName("gzip") {
		t.Errorf("Probe(gzip magic) = (%v, %v), want gzip", a, ok)
	}

	if _, ok := r.Probe([]byte("not a known magic")); ok {
		t.Error("Probe(unknown) = ok, want not found")
	}
}
