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

// hashDictSize is the encoder table size. It must be prime so that double
// hashing with step h2 can always visit every slot. Grounded on
// original_source/lzw.c's HASHDICT_SIZE.
const hashDictSize = 131101

// hashEntry is one slot of the encoder's open-addressed dictionary. code ==
// 0 means the slot is empty; code 0 can never be a real dictionary entry
// since codes 0..255 are the literal bytes and are never looked up by
// (prev, c) (prev is always >= 0 and a lookup only inserts codes >= 257).
type hashEntry struct {
	code uint16
	prev uint16
	c    byte
}

// encoderDict is the compressor's content-addressed dictionary: given
// (prev, c), find the code (if any) for the sequence formed by appending c
// to the sequence represented by prev. Grounded on
// original_source/lzw.c's struct HashDict / findIndex.
type encoderDict struct {
	entries [hashDictSize]hashEntry
}

func newEncoderDict() *encoderDict {
	return &encoderDict{}
}

func hash1(prev uint16, c byte) uint32 {
	return uint32(prev) ^ uint32(c)<<9
}

func hash2(prev uint16, c byte) uint32 {
	return uint32(hashDictSize) - 1 - (uint32(prev) ^ uint32(c)<<8)
}

// findIndex probes the table for (prev, c), returning either the index of
// the existing matching entry (hit) or the index of the first empty slot
// found along the probe sequence (miss; insertion point). The caller
// distinguishes hit/miss by checking entries[index].code != 0.
func (d *encoderDict) findIndex(prev uint16, c byte) uint32 {
	index := hash1(prev, c) % hashDictSize
	step := hash2(prev, c) % hashDictSize
	for d.entries[index].code != 0 {
		if d.entries[index].prev == prev && d.entries[index].c == c {
			return index
		}
		if index < step {
			index += hashDictSize
		}
		index -= step
	}
	return index
}

// Lookup returns the code for (prev, c) and whether it exists.
func (d *encoderDict) Lookup(prev uint16, c byte) (code uint16, ok bool) {
	index := d.findIndex(prev, c)
	if d.entries[index].code == 0 {
		return 0, false
	}
	return d.entries[index].code, true
}

// Insert records that (prev, c) maps to code. The caller must have already
// confirmed via Lookup that no entry exists.
func (d *encoderDict) Insert(prev uint16, c byte, code uint16) {
	index := d.findIndex(prev, c)
	d.entries[index] = hashEntry{code: code, prev: prev, c: c}
}

// Reset clears every entry, as performed on a CLEAR code.
func (d *encoderDict) Reset() {
	clear(d.entries[:])
}

// decoderNode is one entry of the decoder's index-addressed dictionary: the
// code for prev's sequence with c appended. Grounded on
// original_source/lzw.c's struct dict.
type decoderNode struct {
	prev uint16
	c    byte
}

// decoderDict is the decompressor's array-indexed dictionary. Entries are
// inserted monotonically at nextFree and never overwritten except by a full
// Reset on CLEAR. dictOffset is the code value that maps to array index 0
// (257 under block-compress, 256 otherwise, per spec.md §3).
type decoderDict struct {
	nodes      []decoderNode
	dictOffset uint16
	nextFree   uint16
}

func newDecoderDict(maxBits int, dictOffset uint16) *decoderDict {
	return &decoderDict{
		nodes:      make([]decoderNode, (1<<uint(maxBits))-int(dictOffset)),
		dictOffset: dictOffset,
		nextFree:   dictOffset,
	}
}

// Reset rewinds nextFree, discarding all inserted entries, as performed on a
// CLEAR code. The backing array is not reallocated or zeroed: stale entries
// below the new nextFree are simply unreachable until overwritten.
func (d *decoderDict) Reset() {
	d.nextFree = d.dictOffset
}

// Full reports whether the dictionary has no room for further insertions.
// At maxBits 16, inserting code 65535 wraps nextFree to 0, which also
// counts as full.
func (d *decoderDict) Full() bool {
	return d.nextFree < d.dictOffset || int(d.nextFree) >= len(d.nodes)+int(d.dictOffset)
}

// Insert records a new entry at nextFree and returns its code. The caller
// must have checked !Full() first.
func (d *decoderDict) Insert(prev uint16, c byte) uint16 {
	code := d.nextFree
	d.nodes[code-d.dictOffset] = decoderNode{prev: prev, c: c}
	d.nextFree++
	return code
}

// NextFree returns the code that the next Insert call will use.
func (d *decoderDict) NextFree() uint16 { return d.nextFree }

// Expand walks the chain for code and returns the root byte separately from
// the rest of the expansion (tail, stored in scratch in output order),
// matching the reference decoder's two-phase emission (root first, then the
// unwound stack). code must be < NextFree(); codes only ever reference
// already-inserted smaller codes, so the chain walk is guaranteed to
// terminate — it is written as a strict loop, not recursion, per spec.md
// §9.
func (d *decoderDict) Expand(code uint16, scratch []byte) (root byte, tail []byte) {
	n := 0
	for code > 0xFF {
		node := d.nodes[code-d.dictOffset]
		scratch[n] = node.c
		n++
		code = node.prev
	}
	root = byte(code)
	// Reverse in place: scratch[0..n) was pushed in leaf-to-root order, the
	// expansion (excluding the root) reads root-to-leaf, i.e. reversed.
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		scratch[i], scratch[j] = scratch[j], scratch[i]
	}
	return root, scratch[:n]
}
