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

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/dennis95/dxcompress/pipeline"
)

// exitError carries a process exit code through cli.App's ExitErrHandler
// without the App printing a redundant message: run already reports each
// operand's failure itself, per spec.md §4.G/§7.
type exitError struct{ code int }

func (e exitError) Error() string { return "" }

// run is the Action body once flags are parsed into opts: it drives either
// a single operand, stdin, or (recursively) every operand's directory tree,
// and folds every operand's exit code into the process's final code via the
// 1 > 2 > 0 dominance rule of spec.md §4.G/§6.
func run(c *cli.Context, opts *pipeline.Options) error {
	args := c.Args().Slice()
	if len(args) == 0 {
		args = []string{"-"}
	}

	progName := c.App.Name
	exit := pipeline.ExitOK

	for _, operand := range args {
		if operand != "-" && opts.Recursive {
			if info, err := os.Stat(operand); err == nil && info.IsDir() {
				code := pipeline.Walk(operand, opts, progName, func(path string) error {
					return pipeline.ProcessFile(path, opts)
				})
				exit = pipeline.CombineExit(exit, code)
				continue
			}
		}

		if opts.List && operand != "-" {
			if err := listFile(c, operand, opts); err != nil {
				fmt.Fprintf(opts.Stderr, "%s: %s: %v\n", progName, operand, err)
				exit = pipeline.CombineExit(exit, pipeline.ExitError)
			}
			continue
		}

		err := pipeline.ProcessFile(operand, opts)
		code := pipeline.ExitCodeFor(err)
		if code == pipeline.ExitError {
			fmt.Fprintf(opts.Stderr, "%s: %s: %v\n", progName, operand, err)
		}
		exit = pipeline.CombineExit(exit, code)
		if errors.Is(err, pipeline.ErrOutOfMemory) {
			// Fatal to the whole process: no point attempting the
			// remaining operands once the codec reports a memory
			// ceiling.
			break
		}
	}

	if exit != pipeline.ExitOK {
		return exitError{code: exit}
	}
	return nil
}
