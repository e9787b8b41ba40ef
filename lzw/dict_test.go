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

import "testing"

func TestEncoderDictLookupInsert(t *testing.T) {
	t.Parallel()

	d := newEncoderDict()

	if _, ok := d.Lookup(65, 'b'); ok {
		t.Fatal("Lookup on empty dict returned ok=true")
	}

	d.Insert(65, 'b', 257)
	code, ok := d.Lookup(65, 'b')
	if !ok || code != 257 {
		t.Errorf("Lookup(65, 'b') = (%d, %v), want (257, true)", code, ok)
	}

	// Same prev, different byte must not collide.
	if _, ok := d.Lookup(65, 'c'); ok {
		t.Error("Lookup(65, 'c') = ok=true, want false (not inserted)")
	}

	d.Insert(65, 'c', 258)
	code, ok = d.Lookup(65, 'c')
	if !ok || code != 258 {
		t.Errorf("Lookup(65, 'c') = (%d, %v), want (258, true)", code, ok)
	}

	// Original entry must still be intact after a second insertion.
	code, ok = d.Lookup(65, 'b')
	if !ok || code != 257 {
		t.Errorf("Lookup(65, 'b') after second insert = (%d, %v), want (257, true)", code, ok)
	}
}

func TestEncoderDictReset(t *testing.T) {
	t.Parallel()

	d := newEncoderDict()
	d.Insert(1, 'x', 257)
	d.Reset()
	if _, ok := d.Lookup(1, 'x'); ok {
		t.Error("Lookup after Reset returned ok=true")
	}
}

func TestEncoderDictManyInsertsNoCollisionLoss(t *testing.T) {
	t.Parallel()

	d := newEncoderDict()
	const n = 2000
	for i := 0; i < n; i++ {
		prev := uint16(i % 500)
		c := byte(i % 251)
		code := uint16(257 + i)
		if existing, ok := d.Lookup(prev, c); ok {
			// Collision in the synthetic key space; skip rather than
			// overwrite so the expected-code map below stays accurate.
			_ = existing
			continue
		}
		d.Insert(prev, c, code)
		got, ok := d.Lookup(prev, c)
		if !ok || got != code {
			t.Fatalf("Lookup(%d, %d) after Insert = (%d, %v), want (%d, true)", prev, c, got, ok, code)
		}
	}
}

func TestDecoderDictExpand(t *testing.T) {
	t.Parallel()

	d := newDecoderDict(16, 257)

	// Build the chain for "ABC": entry 257 = A+B, entry 258 = (A+B)+C.
	code1 := d.Insert(uint16('A'), 'B')
	code2 := d.Insert(code1, 'C')

	scratch := make([]byte, 16)
	root, tail := d.Expand(code2, scratch)
	got := append([]byte{root}, tail...)
	want := []byte("ABC")
	if string(got) != string(want) {
		t.Errorf("Expand(%d) = %q, want %q", code2, got, want)
	}
}

func TestDecoderDictFullAndReset(t *testing.T) {
	t.Parallel()

	d := newDecoderDict(9, 257) // dictEntries = 512, so 255 free slots
	for i := 0; i < 255; i++ {
		if d.Full() {
			t.Fatalf("Full() = true after %d inserts, want false", i)
		}
		d.Insert(256, byte(i))
	}
	if !d.Full() {
		t.Error("Full() = false after filling dictionary, want true")
	}

	d.Reset()
	if d.Full() {
		t.Error("Full() = true after Reset, want false")
	}
	if d.NextFree() != 257 {
		t.Errorf("NextFree() after Reset = %d, want 257", d.NextFree())
	}
}
