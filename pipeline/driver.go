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
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dennis95/dxcompress/codec"
)

// ErrNoGain indicates a compression did not shrink its input; the driver
// has already removed the output and the caller should map this to
// ExitNoGain rather than print it as a fatal per-operand warning.
var ErrNoGain = fmt.Errorf("%w: output did not shrink", errPipeline)

// probeLen is the number of look-ahead bytes read before dispatching to the
// registry's probe functions, per spec.md §4.G step 3.
const probeLen = 6

// ExitCodeFor maps a ProcessFile error to the dominance-ordered exit code
// of spec.md §4.G/§6.
func ExitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrNoGain):
		return ExitNoGain
	default:
		return ExitError
	}
}

// ProcessFile implements spec.md §4.G for one operand. It never panics on a
// processing failure; every failure mode is a returned error, which the
// caller is expected to print as "$prog: $path: $err" (nothing in the
// driver prints it first, ErrOpenFailure included) and fold into the
// process exit code via ExitCodeFor.
func ProcessFile(operand string, opts *Options) error {
	if operand == "-" {
		return processStdin(opts)
	}
	if opts.Decompress {
		return processDecompress(operand, opts)
	}
	return processCompress(operand, opts)
}

func targetSuffix(opts *Options, a *codec.Algorithm) string {
	if opts.Suffix != "" {
		return opts.Suffix
	}
	if len(a.Extensions) > 0 {
		return a.Extensions[0].Ext
	}
	return "Z"
}

func selectedAlgorithm(opts *Options) *codec.Algorithm {
	if opts.Algorithm != nil {
		return opts.Algorithm
	}
	return opts.Registry.Default()
}

// processCompress implements the compress-mode half of name resolution
// (rule 1), opening (rule 2), invocation (rule 4), and post-processing
// (rules 5-6).
func processCompress(path string, opts *Options) error {
	a := selectedAlgorithm(opts)
	suffix := targetSuffix(opts, a)

	outputName := ""
	switch {
	case opts.ToStdout:
		// outputName stays empty; output goes straight to opts.Stdout.
	case opts.OutputName != "":
		outputName = opts.OutputName
	default:
		if strings.HasSuffix(path, "."+suffix) {
			return fmt.Errorf("%w: %s", ErrAlreadySuffixed, path)
		}
		outputName = path + "." + suffix
	}

	in, inInfo, err := openInputRegular(path)
	if err != nil {
		return err
	}
	defer in.Close()

	var out io.Writer
	var outFile *os.File
	if opts.ToStdout {
		out = opts.Stdout
	} else {
		outFile, err = createOutput(outputName, opts)
		if err != nil {
			return err
		}
		defer outFile.Close()
		out = outFile
	}

	info := codec.FileInfo{}
	if !opts.NoName {
		info.Name = filepath.Base(path)
		info.ModTime = inInfo.ModTime().Unix()
	}

	level := opts.ResolvedLevel(a)
	if verr := a.Compress(out, in, level, &info); verr != nil {
		if outFile != nil {
			os.Remove(outputName)
		}
		return verr
	}

	ratio := info.Ratio()
	if opts.Verbose {
		fmt.Fprintf(opts.Stderr, "%s: Compression %.2f%%", path, ratio*100)
	}

	if outFile == nil {
		return nil
	}

	finalizeOutput(outFile, inInfo, outputName, opts)

	if ratio < 0 && !opts.Force {
		os.Remove(outputName)
		if opts.Verbose {
			fmt.Fprintln(opts.Stderr, " - file unchanged")
		}
		return fmt.Errorf("%w: %s", ErrNoGain, path)
	}
	if opts.Verbose {
		fmt.Fprintf(opts.Stderr, " - replaced with '%s'\n", outputName)
	}

	if !opts.Keep {
		if rerr := os.Remove(path); rerr != nil {
			return fmt.Errorf("%w: removing %q: %w", errPipeline, path, rerr)
		}
	}
	return nil
}

// decompressInput resolves the decompress-mode half of name resolution
// (rule 1: strip/replace a recognized extension, else try the target
// suffix, else probe) and opens the input with its look-ahead prefix
// already consumed, per spec.md §4.G steps 1-3. Shared by processDecompress
// and Inspect (the -l/--list support), which differ only in where the
// decoded bytes end up.
func decompressInput(path string, opts *Options) (in *os.File, inInfo os.FileInfo, a *codec.Algorithm, prefix []byte, inputName, outputName string, err error) {
	inputName = path
	var mappedAlgorithm *codec.Algorithm

	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext != "" {
		if am, replacement, ok := opts.Registry.ByDecompressExtension(ext); ok {
			mappedAlgorithm = am
			base := strings.TrimSuffix(path, "."+ext)
			if replacement != "" {
				outputName = base + "." + replacement
			} else {
				outputName = base
			}
		}
	}
	if mappedAlgorithm == nil {
		if _, serr := os.Stat(path); serr != nil {
			da := selectedAlgorithm(opts)
			suffix := targetSuffix(opts, da)
			candidate := path + "." + suffix
			if _, err2 := os.Stat(candidate); err2 == nil {
				inputName = candidate
				outputName = path
				mappedAlgorithm = da
			}
		}
	}

	in, inInfo, err = openInputRegular(inputName)
	if err != nil {
		return nil, nil, nil, nil, "", "", err
	}

	prefix = make([]byte, probeLen)
	n, rerr := io.ReadFull(in, prefix)
	if rerr != nil && rerr != io.ErrUnexpectedEOF && rerr != io.EOF {
		in.Close()
		return nil, nil, nil, nil, "", "", fmt.Errorf("%w: reading %q: %w", errPipeline, inputName, rerr)
	}
	prefix = prefix[:n]

	a = mappedAlgorithm
	if a == nil {
		var ok bool
		a, ok = opts.Registry.Probe(prefix)
		if !ok {
			if opts.Force {
				a = codec.NewNull()
			} else {
				in.Close()
				return nil, nil, nil, nil, "", "", fmt.Errorf("%w: %s", ErrUnrecognizedFormat, inputName)
			}
		}
		if outputName == "" {
			outputName = strings.TrimSuffix(inputName, filepath.Ext(inputName))
		}
	}

	return in, inInfo, a, prefix, inputName, outputName, nil
}

// Inspect decodes path's header and body through a discard destination and
// returns the recovered FileInfo, without writing, renaming, or removing
// anything. It backs the -l/--list flag.
func Inspect(path string, opts *Options) (codec.FileInfo, error) {
	in, _, a, prefix, inputName, _, err := decompressInput(path, opts)
	if err != nil {
		return codec.FileInfo{}, err
	}
	defer in.Close()

	info := codec.FileInfo{}
	dst := codec.DiscardDestination()
	if verr := a.Decompress(dst, in, prefix, &info); verr != nil {
		return codec.FileInfo{}, fmt.Errorf("%s: %w", inputName, verr)
	}
	return info, nil
}

// processDecompress implements the decompress-mode half of rule 1 (strip or
// replace a recognized extension; otherwise try the target suffix;
// otherwise probe), deferred-output-open for restore-name mode, and the
// same post-processing as compress.
func processDecompress(path string, opts *Options) error {
	in, inInfo, a, prefix, inputName, outputName, err := decompressInput(path, opts)
	if err != nil {
		return err
	}
	defer in.Close()

	if opts.OutputName != "" {
		outputName = opts.OutputName
	}

	info := codec.FileInfo{}
	var outFile *os.File
	var dst *codec.Destination
	switch {
	case opts.Test || opts.List:
		dst = codec.DiscardDestination()
	case opts.ToStdout:
		dst = codec.NewDestination(nopWriteCloser{opts.Stdout})
	case opts.SaveName:
		// Deferred: the codec calls back with the in-stream name once it
		// has recovered one (gzip/xz "restore name" mode).
		dst = codec.DeferredDestination(func(name string) (io.WriteCloser, error) {
			target := name
			if target == "" {
				target = outputName
			}
			f, oerr := createOutput(target, opts)
			if oerr != nil {
				return nil, fmt.Errorf("%w: %w", ErrOpenFailure, oerr)
			}
			outFile = f
			outputName = target
			return f, nil
		})
	default:
		outFile, err = createOutput(outputName, opts)
		if err != nil {
			return err
		}
		dst = codec.NewDestination(outFile)
	}

	verr := a.Decompress(dst, in, prefix, &info)
	if outFile != nil {
		defer outFile.Close()
	}
	if verr != nil {
		// ErrOpenFailure already carries its own context from createOutput;
		// every other codec error is wrapped context-free and is printed
		// verbatim by the caller, per spec.md §7.
		if outFile != nil {
			os.Remove(outputName)
		}
		return verr
	}

	if opts.Verbose {
		ratio := info.Ratio()
		fmt.Fprintf(opts.Stderr, "%s: Expansion %.2f%%", inputName, ratio*100)
	}

	if outFile == nil {
		return nil
	}

	if opts.SaveName && info.ModTime != 0 {
		inInfo = &overrideModTime{FileInfo: inInfo, modTime: info.ModTime}
	}
	finalizeOutput(outFile, inInfo, outputName, opts)

	if opts.Verbose {
		fmt.Fprintf(opts.Stderr, " - replaced with '%s'\n", outputName)
	}

	if !opts.Keep {
		if rerr := os.Remove(inputName); rerr != nil {
			return fmt.Errorf("%w: removing %q: %w", errPipeline, inputName, rerr)
		}
	}
	return nil
}

func processStdin(opts *Options) error {
	a := selectedAlgorithm(opts)
	info := codec.FileInfo{}
	level := opts.ResolvedLevel(a)

	if !opts.Decompress {
		return a.Compress(opts.Stdout, opts.Stdin, level, &info)
	}

	prefix := make([]byte, probeLen)
	n, _ := io.ReadFull(opts.Stdin, prefix)
	prefix = prefix[:n]
	alg := a
	if opts.Algorithm == nil {
		var ok bool
		alg, ok = opts.Registry.Probe(prefix)
		if !ok {
			if opts.Force {
				alg = codec.NewNull()
			} else {
				return fmt.Errorf("%w: stdin", ErrUnrecognizedFormat)
			}
		}
	}
	dst := codec.NewDestination(nopWriteCloser{opts.Stdout})
	return alg.Decompress(dst, opts.Stdin, prefix, &info)
}

// openInputRegular opens path for reading, rejecting symlinks (the
// portable approximation of O_NOFOLLOW, see DESIGN.md) and anything that
// is not a regular file.
func openInputRegular(path string) (*os.File, os.FileInfo, error) {
	lst, err := os.Lstat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open '%s': %w", path, err)
	}
	if lst.Mode()&os.ModeSymlink != 0 {
		return nil, nil, fmt.Errorf("%w: '%s': is a symlink", ErrNotRegular, path)
	}
	if !lst.Mode().IsRegular() {
		return nil, nil, fmt.Errorf("%w: '%s'", ErrNotRegular, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open '%s': %w", path, err)
	}
	return f, lst, nil
}

// createOutput opens path for writing, rejecting pre-existing symlinks,
// and resolves a collision via --force (truncate) or an interactive
// confirmation, per spec.md §4.G step 2.
func createOutput(path string, opts *Options) (*os.File, error) {
	if lst, err := os.Lstat(path); err == nil && lst.Mode()&os.ModeSymlink != 0 {
		return nil, fmt.Errorf("%w: '%s': refusing to follow symlink", ErrNotRegular, path)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o666)
	if err == nil {
		return f, nil
	}
	if !os.IsExist(err) {
		return nil, fmt.Errorf("cannot create file '%s': %w", path, err)
	}
	if opts.Force || confirmOverwrite(opts, path) {
		f, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o666)
		if err != nil {
			return nil, fmt.Errorf("cannot create file '%s': %w", path, err)
		}
		return f, nil
	}
	return nil, fmt.Errorf("%w: '%s'", ErrCollision, path)
}

// finalizeOutput copies ownership (best effort), mode, and atime/mtime from
// the input to the output, per spec.md §4.G step 5.
func finalizeOutput(out *os.File, in os.FileInfo, outputName string, opts *Options) {
	chownBestEffort(out, in)
	_ = out.Chmod(in.Mode().Perm())
	atime, mtime := accessTime(in)
	_ = os.Chtimes(outputName, atime, mtime)
}

// overrideModTime substitutes ModTime() while delegating every other
// os.FileInfo method, used to apply a restore-name stream's recovered
// mtime (spec.md §4.G step 5: "in restore-name mode use the in-stream
// mtime if nonzero").
type overrideModTime struct {
	os.FileInfo
	modTime int64
}

func (o *overrideModTime) ModTime() time.Time { return time.Unix(o.modTime, 0) }

// nopWriteCloser adapts an io.Writer (typically os.Stdout) to
// io.WriteCloser for codec.NewDestination, whose Close is a no-op for a
// stream the driver does not own.
type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
