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
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Walk implements spec.md §4.H: a depth-first recursive directory walk
// used under -r. process is called for each regular file found (including
// the root itself, if it is a regular file rather than a directory); its
// error is reported to opts.Stderr exactly as the top-level caller reports
// a non-recursive operand's, and folded into the returned exit code via
// CombineExit.
//
// Grounded on os.ReadDir + os.Lstat per entry (the portable analogue of
// fstatat/openat noted as an open question in spec.md §9 — see DESIGN.md),
// which avoids following symlinks during recursion without needing a
// parent directory fd threaded through the recursion.
func Walk(root string, opts *Options, progName string, process func(path string) error) int {
	lst, err := os.Lstat(root)
	if err != nil {
		fmt.Fprintf(opts.Stderr, "%s: %s: %v\n", progName, root, err)
		return ExitError
	}

	if lst.Mode()&os.ModeSymlink != 0 {
		fmt.Fprintf(opts.Stderr, "%s: %s: %v\n", progName, root, ErrNotRegular)
		return ExitError
	}

	if !lst.IsDir() {
		return reportAndExit(process(root), root, progName, opts)
	}

	return walkDir(root, opts, progName, process)
}

func walkDir(dir string, opts *Options, progName string, process func(path string) error) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		fmt.Fprintf(opts.Stderr, "%s: %s: %v\n", progName, dir, err)
		return ExitError
	}

	exit := ExitOK
	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())

		lst, err := os.Lstat(full)
		if err != nil {
			fmt.Fprintf(opts.Stderr, "%s: %s: %v\n", progName, full, err)
			exit = CombineExit(exit, ExitError)
			continue
		}

		switch {
		case lst.Mode()&os.ModeSymlink != 0:
			// Symlinks are neither followed into directories nor
			// processed as files, matching O_NOFOLLOW semantics.
			continue
		case lst.IsDir():
			exit = CombineExit(exit, walkDir(full, opts, progName, process))
		case lst.Mode().IsRegular():
			if !opts.Decompress && alreadySuffixed(full, opts) {
				continue
			}
			exit = CombineExit(exit, reportAndExit(process(full), full, progName, opts))
		}
	}
	return exit
}

func alreadySuffixed(path string, opts *Options) bool {
	a := selectedAlgorithm(opts)
	suffix := targetSuffix(opts, a)
	return strings.HasSuffix(path, "."+suffix)
}

func reportAndExit(err error, path, progName string, opts *Options) int {
	if err == nil {
		return ExitOK
	}
	if ExitCodeFor(err) == ExitError {
		fmt.Fprintf(opts.Stderr, "%s: %s: %v\n", progName, path, err)
	}
	return ExitCodeFor(err)
}
