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
	"bufio"
	"compress/flate"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"strings"
)

// gzip header constants, per RFC 1952 §2.3.1. Grounded on
// ianlewis/go-dictzip's hdrGzipID1/hdrGzipID2/hdrDeflateCM constants, minus
// the dictzip-only EXTRA/RA subfield this adapter never writes: a
// dxcompress gzip member is a single continuous deflate stream, not a
// random-access chunk table.
const (
	gzipID1   = 0x1f
	gzipID2   = 0x8b
	deflateCM = 0x08

	flgNAME = byte(1 << 3)

	// osUnix is the OS byte written for every member this adapter produces.
	osUnix = 3
)

// NewGzip returns the registry entry for RFC-1952 gzip. Grounded on
// ianlewis/go-dictzip's writer.go/reader.go header read/write logic,
// rewritten as a single continuous flate stream per member (no chunking, no
// EXTRA random-access subfield, no Seek support) with support for
// concatenated members on decompress.
func NewGzip() *Algorithm {
	return &Algorithm{
		Names:      []string{"gzip", "gz"},
		Extensions: []Extension{{Ext: "gz"}, {Ext: "tgz", Replacement: "tar"}},

		MinLevel:     1,
		DefaultLevel: 6,
		MaxLevel:     9,

		Compress: gzipCompress,

		Decompress: gzipDecompress,

		Probe: func(prefix []byte) bool {
			return len(prefix) >= 2 && prefix[0] == gzipID1 && prefix[1] == gzipID2
		},
	}
}

// gzipCompress streams r through a single flate.Writer wrapped in an
// RFC-1952 header/trailer. info.Name and info.ModTime, if set by the
// caller, are written as the NAME and MTIME header fields ("save name"
// mode); otherwise the header carries no name and a zero MTIME.
func gzipCompress(w io.Writer, r io.Reader, level int, info *FileInfo) error {
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)

	header := make([]byte, 10)
	header[0] = gzipID1
	header[1] = gzipID2
	header[2] = deflateCM
	if info.Name != "" {
		header[3] = flgNAME
	}
	if info.ModTime > 0 && info.ModTime <= 1<<32-1 {
		binary.LittleEndian.PutUint32(header[4:8], uint32(info.ModTime))
	}
	switch {
	case level >= 9:
		header[8] = 2
	case level <= 2:
		header[8] = 4
	}
	header[9] = osUnix
	if _, err := bw.Write(header); err != nil {
		return fmt.Errorf("%w: writing header: %w", errCodec, err)
	}
	if info.Name != "" {
		if err := writeLatin1String(bw, info.Name); err != nil {
			return err
		}
	}

	digest := crc32.NewIEEE()
	fw, err := flate.NewWriter(bw, level)
	if err != nil {
		return fmt.Errorf("%w: %w", errCodec, err)
	}

	uncompressed, err := io.Copy(fw, io.TeeReader(r, digest))
	if err != nil {
		return fmt.Errorf("%w: compressing: %w", errCodec, err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("%w: compressing: %w", errCodec, err)
	}

	trailer := make([]byte, 8)
	binary.LittleEndian.PutUint32(trailer[0:4], digest.Sum32())
	binary.LittleEndian.PutUint32(trailer[4:8], uint32(uncompressed))
	if _, err := bw.Write(trailer); err != nil {
		return fmt.Errorf("%w: writing trailer: %w", errCodec, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: %w", errCodec, err)
	}

	info.UncompressedSize = uncompressed
	info.CompressedSize = cw.n
	info.Check = uint64(digest.Sum32())
	info.HasCheck = true
	return nil
}

// countingWriter tallies bytes written, so Compress can report
// info.CompressedSize without the caller's io.Writer exposing one itself
// (os.File and bytes.Buffer don't).
type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

func gzipDecompress(dst *Destination, r io.Reader, prefix []byte, info *FileInfo) error {
	cr := &countingReader{r: prependPrefix(prefix, r)}
	br := bufio.NewReader(cr)

	var w io.Writer
	var totalUncompressed int64
	var lastDigest uint32
	var sawMember bool

	for {
		head := make([]byte, 10)
		n, err := io.ReadFull(br, head)
		if err == io.EOF && n == 0 {
			break
		}
		if err != nil {
			if sawMember {
				return fmt.Errorf("%w: truncated member", ErrFormat)
			}
			return fmt.Errorf("%w: reading header: %w", ErrHeader, err)
		}
		if head[0] != gzipID1 || head[1] != gzipID2 {
			return fmt.Errorf("%w: bad magic", ErrHeader)
		}
		if head[2] != deflateCM {
			return fmt.Errorf("%w: unsupported CM %#x", ErrHeader, head[2])
		}
		flg := head[3]
		if mtime := binary.LittleEndian.Uint32(head[4:8]); mtime > 0 {
			info.ModTime = int64(mtime)
		}

		if flg&flgNAME != 0 {
			name, err := readLatin1String(br)
			if err != nil {
				return err
			}
			info.Name = name
		}

		if w == nil {
			var err error
			w, err = dst.Open(info.Name)
			if err != nil {
				return fmt.Errorf("%w: %w", errCodec, err)
			}
		}

		fr := flate.NewReader(br)
		digest := crc32.NewIEEE()
		written, err := io.Copy(io.MultiWriter(w, digest), fr)
		if err != nil {
			return fmt.Errorf("%w: decompressing: %w", ErrFormat, err)
		}
		if err := fr.Close(); err != nil {
			return fmt.Errorf("%w: decompressing: %w", ErrFormat, err)
		}

		trailer := make([]byte, 8)
		if _, err := io.ReadFull(br, trailer); err != nil {
			return fmt.Errorf("%w: truncated trailer: %w", ErrFormat, err)
		}
		wantCRC := binary.LittleEndian.Uint32(trailer[0:4])
		wantISIZE := binary.LittleEndian.Uint32(trailer[4:8])
		if digest.Sum32() != wantCRC {
			return fmt.Errorf("%w: bad CRC-32", ErrFormat)
		}
		if uint32(written) != wantISIZE {
			return fmt.Errorf("%w: bad ISIZE", ErrFormat)
		}

		lastDigest = wantCRC
		totalUncompressed += written
		sawMember = true
	}

	if !sawMember {
		return fmt.Errorf("%w: empty input", ErrHeader)
	}

	info.UncompressedSize = totalUncompressed
	info.CompressedSize = cr.n
	info.Check = uint64(lastDigest)
	info.HasCheck = true
	return nil
}

// countingReader tallies bytes pulled from the underlying reader, so
// Decompress can report info.CompressedSize (the input's on-disk size)
// without requiring the caller to stat the file itself.
type countingReader struct {
	r io.Reader
	n int64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n += int64(n)
	return n, err
}

// writeLatin1String writes s as a null-terminated Latin-1 header field, per
// RFC 1952 §2.3.1. Grounded on ianlewis/go-dictzip's writeString.
func writeLatin1String(w io.Writer, s string) error {
	b := make([]byte, 0, len(s)+1)
	for _, r := range s {
		if r == 0 || r > 0xff {
			return fmt.Errorf("%w: non-Latin-1 header string", ErrHeader)
		}
		b = append(b, byte(r))
	}
	b = append(b, 0)
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("%w: writing string header: %w", errCodec, err)
	}
	return nil
}

// readLatin1String reads a null-terminated Latin-1 header field. Grounded
// on ianlewis/go-dictzip's readString, minus its CRC-16/FHCRC bookkeeping
// (this format has no FHCRC field to validate against).
func readLatin1String(r io.ByteReader) (string, error) {
	var b strings.Builder
	for i := 0; ; i++ {
		if i >= nameMax {
			return "", fmt.Errorf("%w: string header exceeds %d bytes", ErrHeader, nameMax)
		}
		c, err := r.ReadByte()
		if err != nil {
			return "", fmt.Errorf("%w: reading string header: %w", ErrHeader, err)
		}
		if c == 0 {
			return b.String(), nil
		}
		b.WriteByte(c)
	}
}

// nameMax is the fallback NAME_MAX spec.md §6 specifies for platforms that
// do not expose one; Go's os/syscall packages have no portable constant.
const nameMax = 1024
