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

// Package codec defines the algorithm-dispatch layer: a registry of named
// compression algorithms (LZW, gzip, xz) plus the file-info record and
// deferred-output-open abstraction that the pipeline driver and the codecs
// exchange. Keeping these shared types here, rather than in the pipeline
// package that drives them, avoids a two-way import between the two
// packages: codecs know nothing about the driver, only about this package.
package codec

import (
	"errors"
	"io"
)

// FileInfo is the out-parameter a codec fills in for the driver. Fields are
// populated on a best-effort basis: Name and ModTime only apply in
// restore-name mode, and Check/HasCheck only to gzip, whose CRC-32 is
// reported. The xz adapter does not report its stream's CRC-64, and LZW has
// no integrity value; both leave Check/HasCheck unset.
type FileInfo struct {
	// Name is the original filename recovered from the stream, in
	// restore-name mode.
	Name string

	// ModTime is the modification time recovered from the stream, in
	// restore-name mode. Zero if the stream did not carry one.
	ModTime int64

	// CompressedSize and UncompressedSize are the byte counts observed by
	// the codec, valid after Compress or Decompress returns successfully.
	CompressedSize   int64
	UncompressedSize int64

	// Check is the format-specific integrity value (CRC-32 for gzip; no
	// other adapter sets it), valid only when HasCheck is true.
	Check    uint64
	HasCheck bool
}

// Ratio returns the compression ratio (1 - compressed/uncompressed),
// matching the sign convention of spec.md: negative means the output grew.
func (fi *FileInfo) Ratio() float64 {
	if fi.UncompressedSize == 0 {
		return -1
	}
	return 1 - float64(fi.CompressedSize)/float64(fi.UncompressedSize)
}

// ErrDiscarded names the error of opening one Destination for a second,
// different target. Open does not return it: a discard Destination yields
// io.Discard on every call, and any other Destination returns the writer
// it already holds.
var ErrDiscarded = errors.New("codec: destination already materialized")

// OutputOpener materializes an output destination once a codec has
// recovered a filename from inside its stream (restore-name mode). It is
// the idiomatic rendering of the C reference's deferred-open sentinel
// output descriptor (-2, "not yet opened"): a closure instead of a raw fd.
type OutputOpener func(name string) (io.WriteCloser, error)

// Destination models the sentinel output handle from spec.md §4.A/§4.G: a
// descriptor that is either already open, discards everything written to it
// (the -1 sentinel used by --test/--list to reuse the decompression path),
// or defers materialization to an OutputOpener once the in-stream filename
// is known (the -2 sentinel, restore-name mode).
type Destination struct {
	w       io.WriteCloser
	opener  OutputOpener
	discard bool
}

// NewDestination wraps an already-open writer.
func NewDestination(w io.WriteCloser) *Destination {
	return &Destination{w: w}
}

// DiscardDestination returns a Destination that silently drops everything
// written to it, for --test and --list.
func DiscardDestination() *Destination {
	return &Destination{discard: true}
}

// DeferredDestination returns a Destination that materializes its
// underlying writer lazily, the first time Open is called, via opener.
func DeferredDestination(opener OutputOpener) *Destination {
	return &Destination{opener: opener}
}

// Open returns the underlying writer, materializing it via the configured
// opener (if any) the first time it is called. name is the filename the
// codec recovered from the stream; it is ignored unless this Destination is
// deferred.
func (d *Destination) Open(name string) (io.Writer, error) {
	if d.discard {
		return io.Discard, nil
	}
	if d.w != nil {
		return d.w, nil
	}
	w, err := d.opener(name)
	if err != nil {
		return nil, err
	}
	d.w = w
	return w, nil
}

// Close closes the underlying writer, if one was ever materialized.
func (d *Destination) Close() error {
	if d.discard || d.w == nil {
		return nil
	}
	return d.w.Close()
}

// Extension is one entry of an algorithm's extension list: decompressing a
// file named "x.Ext" yields "x.Replacement" rather than "x", when
// Replacement is non-empty.
type Extension struct {
	Ext         string
	Replacement string
}

// Algorithm is an immutable descriptor for one pluggable compression
// format, matching spec.md §3's "algorithm descriptor".
type Algorithm struct {
	// Names is the list of names this algorithm answers to under -m.
	Names []string

	// Extensions is the list of filename extensions this algorithm
	// claims in compress mode, and recognizes (with optional
	// replacement) in decompress mode.
	Extensions []Extension

	MinLevel, DefaultLevel, MaxLevel int

	// Compress streams r through this algorithm at the given level,
	// writing to w, and fills in info on success.
	Compress func(w io.Writer, r io.Reader, level int, info *FileInfo) error

	// Decompress streams r through this algorithm's decoder. prefix is
	// the look-ahead bytes already consumed from r during probing and
	// must be treated as logically preceding r's remaining bytes.
	// dst is opened lazily in restore-name mode, once the in-stream
	// filename is known.
	Decompress func(dst *Destination, r io.Reader, prefix []byte, info *FileInfo) error

	// Probe reports whether prefix (at least 6 bytes, if available)
	// looks like this algorithm's output.
	Probe func(prefix []byte) bool
}

// HasName reports whether name is one of a.Names.
func (a *Algorithm) HasName(name string) bool {
	for _, n := range a.Names {
		if n == name {
			return true
		}
	}
	return false
}
