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
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLZWRoundTrip(t *testing.T) {
	t.Parallel()

	a := NewLZW()
	input := []byte("hello, hello, hello, world")

	var compressed bytes.Buffer
	var info FileInfo
	if err := a.Compress(&compressed, bytes.NewReader(input), a.MaxLevel, &info); err != nil {
		t.Fatalf("Compress: %v", err)
	}

	prefix := compressed.Bytes()[:2]
	if !a.Probe(prefix) {
		t.Error("Probe(compressed prefix) = false, want true")
	}

	var decompressed bytes.Buffer
	var dinfo FileInfo
	err := a.Decompress(NewDestination(nopCloser{&decompressed}), bytes.NewReader(compressed.Bytes()[2:]), prefix, &dinfo)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if diff := cmp.Diff(input, decompressed.Bytes()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

type nopCloser struct{ w *bytes.Buffer }

func (n nopCloser) Write(p []byte) (int, error) { return n.w.Write(p) }
func (n nopCloser) Close() error                { return nil }
