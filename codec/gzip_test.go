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

func TestGzipRoundTrip(t *testing.T) {
	t.Parallel()

	a := NewGzip()
	input := []byte("the quick brown fox jumps over the lazy dog, repeatedly, repeatedly")

	var compressed bytes.Buffer
	info := FileInfo{Name: "fox.txt", ModTime: 1700000000}
	if err := a.Compress(&compressed, bytes.NewReader(input), a.DefaultLevel, &info); err != nil {
		t.Fatalf("Compress: %v", err)
	}

	if !a.Probe(compressed.Bytes()[:6]) {
		t.Error("Probe(compressed) = false, want true")
	}

	var decompressed bytes.Buffer
	var dinfo FileInfo
	err := a.Decompress(NewDestination(nopCloser{&decompressed}), &compressed, nil, &dinfo)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if diff := cmp.Diff(input, decompressed.Bytes()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if dinfo.Name != "fox.txt" {
		t.Errorf("Decompress recovered Name = %q, want %q", dinfo.Name, "fox.txt")
	}
	if dinfo.ModTime != 1700000000 {
		t.Errorf("Decompress recovered ModTime = %d, want %d", dinfo.ModTime, 1700000000)
	}
	if !dinfo.HasCheck {
		t.Error("Decompress did not report HasCheck")
	}
}

func TestGzipConcatenatedMembers(t *testing.T) {
	t.Parallel()

	a := NewGzip()
	var first, second bytes.Buffer
	var infoA, infoB FileInfo
	if err := a.Compress(&first, bytes.NewReader([]byte("first member")), a.DefaultLevel, &infoA); err != nil {
		t.Fatalf("Compress first: %v", err)
	}
	if err := a.Compress(&second, bytes.NewReader([]byte("second member")), a.DefaultLevel, &infoB); err != nil {
		t.Fatalf("Compress second: %v", err)
	}

	var concatenated bytes.Buffer
	concatenated.Write(first.Bytes())
	concatenated.Write(second.Bytes())

	var decompressed bytes.Buffer
	var dinfo FileInfo
	err := a.Decompress(NewDestination(nopCloser{&decompressed}), &concatenated, nil, &dinfo)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	want := "first membersecond member"
	if decompressed.String() != want {
		t.Errorf("Decompress(concatenated) = %q, want %q", decompressed.String(), want)
	}
}

func TestGzipTruncatedMemberIsFormatError(t *testing.T) {
	t.Parallel()

	a := NewGzip()
	var compressed bytes.Buffer
	var info FileInfo
	if err := a.Compress(&compressed, bytes.NewReader(bytes.Repeat([]byte("x"), 1000)), a.DefaultLevel, &info); err != nil {
		t.Fatalf("Compress: %v", err)
	}

	truncated := compressed.Bytes()[:len(compressed.Bytes())/2]
	var decompressed bytes.Buffer
	var dinfo FileInfo
	err := a.Decompress(NewDestination(nopCloser{&decompressed}), bytes.NewReader(truncated), nil, &dinfo)
	if err == nil {
		t.Fatal("Decompress(truncated) = nil error, want error")
	}
}
