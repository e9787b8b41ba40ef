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

package pipeline

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dennis95/dxcompress/codec"
)

func newTestOptions(reg *codec.Registry) *Options {
	return &Options{
		Registry: reg,
		Level:    LevelUnset,
		Stdin:    bytes.NewReader(nil),
		Stdout:   &bytes.Buffer{},
		Stderr:   &bytes.Buffer{},
	}
}

func lzwRegistry() *codec.Registry {
	return codec.NewRegistry(codec.NewLZW(), codec.NewGzip(), codec.NewXZ(codec.XZOptions{}))
}

func TestProcessFileCompressDecompressRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "greeting.txt")
	content := []byte(strings.Repeat("hello, dxcompress! ", 200))
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	opts := newTestOptions(lzwRegistry())
	if err := ProcessFile(path, opts); err != nil {
		t.Fatalf("ProcessFile(compress): %v", err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("input %q still exists after compress without --keep", path)
	}
	compressedPath := path + ".Z"
	if _, err := os.Stat(compressedPath); err != nil {
		t.Fatalf("Stat(%q): %v", compressedPath, err)
	}

	dopts := newTestOptions(lzwRegistry())
	dopts.Decompress = true
	if err := ProcessFile(compressedPath, dopts); err != nil {
		t.Fatalf("ProcessFile(decompress): %v", err)
	}

	if _, err := os.Stat(compressedPath); !os.IsNotExist(err) {
		t.Errorf("compressed file %q still exists after decompress without --keep", compressedPath)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%q): %v", path, err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("round trip content mismatch: got %d bytes, want %d bytes", len(got), len(content))
	}
}

func TestProcessFileKeepPreservesInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "kept.txt")
	if err := os.WriteFile(path, []byte(strings.Repeat("abc", 100)), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	opts := newTestOptions(lzwRegistry())
	opts.Keep = true
	if err := ProcessFile(path, opts); err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("input removed despite --keep: %v", err)
	}
}

func TestProcessFileToStdoutNeverDeletesInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "stream.txt")
	if err := os.WriteFile(path, []byte(strings.Repeat("xyz", 100)), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	opts := newTestOptions(lzwRegistry())
	opts.ToStdout = true
	if err := ProcessFile(path, opts); err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("input removed despite -c/--stdout: %v", err)
	}
	out := opts.Stdout.(*bytes.Buffer)
	if out.Len() == 0 {
		t.Error("nothing written to stdout")
	}
}

// noGainAlgorithm deterministically reports an expanded output, independent
// of what any real codec would do with small inputs, so the ratio-rejection
// path in processCompress can be tested without relying on a specific
// compressor's behavior on adversarial input.
func noGainAlgorithm() *codec.Algorithm {
	return &codec.Algorithm{
		Names:        []string{"pad"},
		Extensions:   []codec.Extension{{Ext: "pad"}},
		MinLevel:     1,
		DefaultLevel: 1,
		MaxLevel:     1,
		Compress: func(w io.Writer, r io.Reader, level int, info *codec.FileInfo) error {
			n, err := io.Copy(w, r)
			if err != nil {
				return err
			}
			if _, err := w.Write([]byte{0, 0, 0, 0}); err != nil {
				return err
			}
			info.UncompressedSize = n
			info.CompressedSize = n + 4
			return nil
		},
		Decompress: func(dst *codec.Destination, r io.Reader, prefix []byte, info *codec.FileInfo) error {
			w, err := dst.Open("")
			if err != nil {
				return err
			}
			_, err = io.Copy(w, r)
			return err
		},
		Probe: func(prefix []byte) bool { return false },
	}
}

func TestProcessFileNoGainRemovesOutputAndReturnsErrNoGain(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "input.txt")
	if err := os.WriteFile(path, []byte("abc"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	opts := newTestOptions(codec.NewRegistry(noGainAlgorithm()))
	err := ProcessFile(path, opts)
	if ExitCodeFor(err) != ExitNoGain {
		t.Fatalf("ExitCodeFor(ProcessFile) = %d, want ExitNoGain; err = %v", ExitCodeFor(err), err)
	}
	if _, statErr := os.Stat(path + ".pad"); !os.IsNotExist(statErr) {
		t.Error("padded output was not removed after a no-gain compression")
	}
	if _, statErr := os.Stat(path); statErr != nil {
		t.Error("input was removed even though compression was rejected")
	}
}

func TestProcessFileForceKeepsNoGainOutput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "input.txt")
	if err := os.WriteFile(path, []byte("abc"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	opts := newTestOptions(codec.NewRegistry(noGainAlgorithm()))
	opts.Force = true
	if err := ProcessFile(path, opts); err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if _, statErr := os.Stat(path + ".pad"); statErr != nil {
		t.Error("--force should keep a no-gain output")
	}
}

func TestCreateOutputCollision(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "out")
	if err := os.WriteFile(path, []byte("existing"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	t.Run("no force, not interactive fails", func(t *testing.T) {
		opts := newTestOptions(lzwRegistry())
		if _, err := createOutput(path, opts); err == nil {
			t.Error("createOutput succeeded on a collision with no --force and no tty")
		}
	})

	t.Run("force truncates", func(t *testing.T) {
		opts := newTestOptions(lzwRegistry())
		opts.Force = true
		f, err := createOutput(path, opts)
		if err != nil {
			t.Fatalf("createOutput: %v", err)
		}
		f.Close()
	})

	t.Run("interactive yes truncates", func(t *testing.T) {
		if err := os.WriteFile(path, []byte("existing"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		opts := newTestOptions(lzwRegistry())
		opts.Interactive = true
		opts.Confirm = strings.NewReader("y\n")
		f, err := createOutput(path, opts)
		if err != nil {
			t.Fatalf("createOutput: %v", err)
		}
		f.Close()
	})

	t.Run("interactive no fails", func(t *testing.T) {
		if err := os.WriteFile(path, []byte("existing"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		opts := newTestOptions(lzwRegistry())
		opts.Interactive = true
		opts.Confirm = strings.NewReader("n\n")
		if _, err := createOutput(path, opts); err == nil {
			t.Error("createOutput succeeded after a declined confirmation")
		}
	})
}

func TestProcessCompressAlreadySuffixedFails(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "already.Z")
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	opts := newTestOptions(lzwRegistry())
	err := ProcessFile(path, opts)
	if err == nil {
		t.Fatal("ProcessFile compressing an already-suffixed file succeeded, want error")
	}
}

func TestProcessDecompressUnrecognizedFormat(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "plain.bin")
	if err := os.WriteFile(path, []byte("not compressed data"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	opts := newTestOptions(lzwRegistry())
	opts.Decompress = true
	err := ProcessFile(path, opts)
	if err == nil {
		t.Fatal("ProcessFile decompressing an unrecognized format succeeded, want error")
	}
}
