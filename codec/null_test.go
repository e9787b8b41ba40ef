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
)

func TestNullPassthrough(t *testing.T) {
	t.Parallel()

	a := NewNull()
	input := []byte("bytes that don't match any known magic")

	var out bytes.Buffer
	var info FileInfo
	err := a.Decompress(NewDestination(nopCloser{&out}), bytes.NewReader(input[3:]), input[:3], &info)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if out.String() != string(input) {
		t.Errorf("Decompress passthrough = %q, want %q", out.String(), string(input))
	}
	if a.Probe(input) {
		t.Error("Probe() = true, want always false (null is never registered for probing)")
	}
}
