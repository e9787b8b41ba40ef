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
	"path/filepath"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/dennis95/dxcompress/codec"
	"github.com/dennis95/dxcompress/pipeline"
)

// ErrFlagParse is a flag parsing error.
var ErrFlagParse = errors.New("parsing flags")

func init() {
	// See ianlewis/go-dictzip's cmd/dictzip/app.go for why this flag name
	// is deliberately unguessable: it keeps urfave/cli/v2 from treating a
	// bare argument as a subcommand name when --help is also present.
	cli.HelpFlag = &cli.BoolFlag{
		Name:               "d41d8cd98f00b204e980",
		DisableDefaultText: true,
	}
}

func newApp() *cli.App {
	var levelFlag int
	levelSet := false

	app := &cli.App{
		Name:  filepath.Base(os.Args[0]),
		Usage: "Compress or decompress files in the compress(1)/.Z, gzip, or xz formats.",
		Description: strings.Join([]string{
			"dxcompress is a compress(1)-compatible utility with pluggable",
			"gzip and xz codec support.",
		}, "\n"),
		ArgsUsage:       "[FILE]...",
		HideHelp:        true,
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "bits", Aliases: []string{"b"}, Usage: "set LZW max code width (alias for the selected algorithm's level)"},
			&cli.BoolFlag{Name: "stdout", Aliases: []string{"c"}, Usage: "write to stdout", DisableDefaultText: true},
			&cli.BoolFlag{Name: "decompress", Aliases: []string{"d"}, Usage: "decompress", DisableDefaultText: true},
			&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "force overwrite of existing output", DisableDefaultText: true},
			&cli.BoolFlag{Name: "gzip", Aliases: []string{"g"}, Usage: "select the gzip algorithm", DisableDefaultText: true},
			&cli.BoolFlag{Name: "help", Aliases: []string{"h"}, Usage: "print this help text and exit", DisableDefaultText: true},
			&cli.BoolFlag{Name: "keep", Aliases: []string{"k"}, Usage: "keep input files", DisableDefaultText: true},
			&cli.BoolFlag{Name: "list", Aliases: []string{"l"}, Usage: "list compressed file contents", DisableDefaultText: true},
			&cli.StringFlag{Name: "method", Aliases: []string{"m"}, Usage: "select algorithm by name"},
			&cli.BoolFlag{Name: "name", Aliases: []string{"N"}, Usage: "save/restore original name and timestamp", DisableDefaultText: true},
			&cli.BoolFlag{Name: "no-name", Aliases: []string{"n"}, Usage: "don't save original name and timestamp", DisableDefaultText: true},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "explicit output filename"},
			&cli.BoolFlag{Name: "lzw", Aliases: []string{"O"}, Usage: "select the lzw algorithm", DisableDefaultText: true},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "suppress warnings", DisableDefaultText: true},
			&cli.BoolFlag{Name: "recursive", Aliases: []string{"r"}, Usage: "recurse into directories", DisableDefaultText: true},
			&cli.StringFlag{Name: "suffix", Aliases: []string{"S"}, Usage: "use SUF instead of the algorithm's default suffix"},
			&cli.BoolFlag{Name: "test", Aliases: []string{"t"}, Usage: "test compressed file integrity", DisableDefaultText: true},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "verbose mode", DisableDefaultText: true},
			&cli.BoolFlag{Name: "version", Aliases: []string{"V"}, Usage: "print version information and exit", DisableDefaultText: true},
			&cli.BoolFlag{Name: "fast", Usage: "use the algorithm's fastest level", DisableDefaultText: true},
			&cli.BoolFlag{Name: "best", Usage: "use the algorithm's best level", DisableDefaultText: true},
			&cli.BoolFlag{Name: "ascii", Usage: "accepted and ignored", DisableDefaultText: true, Hidden: true},
			&cli.BoolFlag{Name: "0", DisableDefaultText: true, Hidden: true},
			&cli.BoolFlag{Name: "1", DisableDefaultText: true, Hidden: true},
			&cli.BoolFlag{Name: "2", DisableDefaultText: true, Hidden: true},
			&cli.BoolFlag{Name: "3", DisableDefaultText: true, Hidden: true},
			&cli.BoolFlag{Name: "4", DisableDefaultText: true, Hidden: true},
			&cli.BoolFlag{Name: "5", DisableDefaultText: true, Hidden: true},
			&cli.BoolFlag{Name: "6", DisableDefaultText: true, Hidden: true},
			&cli.BoolFlag{Name: "7", DisableDefaultText: true, Hidden: true},
			&cli.BoolFlag{Name: "8", DisableDefaultText: true, Hidden: true},
			&cli.BoolFlag{Name: "9", DisableDefaultText: true, Hidden: true},
		},
		Action: func(c *cli.Context) error {
			if c.Bool("help") {
				return cli.ShowAppHelp(c)
			}
			if c.Bool("version") {
				return printVersion(c)
			}

			for _, digit := range []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"} {
				if c.Bool(digit) {
					v, _ := strconv.Atoi(digit)
					levelFlag, levelSet = v, true
				}
			}

			reg := codec.NewRegistry(codec.NewLZW(), codec.NewGzip(), codec.NewXZ(codec.XZOptions{}))

			opts, err := buildOptions(c, reg, levelFlag, levelSet)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrFlagParse, err)
			}

			return run(c, opts)
		},
		ExitErrHandler: func(c *cli.Context, err error) {
			if err == nil {
				return
			}
			var ee exitError
			if errors.As(err, &ee) {
				// run already printed each failing operand; nothing left
				// to say here.
				cli.OsExiter(ee.code)
				return
			}
			fmt.Fprintf(c.App.ErrWriter, "%s: %v\n", c.App.Name, err)
			cli.OsExiter(pipeline.ExitError)
		},
	}
	return app
}

// buildOptions translates parsed CLI flags into an immutable
// pipeline.Options, resolving the algorithm selection precedence
// (-m > -g/-O/digit-implies-gzip > default LZW) and the level precedence
// (--fast/--best > -b/digit > algorithm default).
func buildOptions(c *cli.Context, reg *codec.Registry, levelFlag int, levelSet bool) (*pipeline.Options, error) {
	opts := &pipeline.Options{
		Registry:    reg,
		Decompress:  c.Bool("decompress"),
		ToStdout:    c.Bool("stdout"),
		Force:       c.Bool("force"),
		Keep:        c.Bool("keep"),
		List:        c.Bool("list"),
		Test:        c.Bool("test"),
		Quiet:       c.Bool("quiet"),
		Recursive:   c.Bool("recursive"),
		Verbose:     c.Bool("verbose"),
		SaveName:    c.Bool("name"),
		NoName:      c.Bool("no-name"),
		OutputName:  c.String("output"),
		Level:       pipeline.LevelUnset,
		Stdin:       os.Stdin,
		Stdout:      c.App.Writer,
		Stderr:      c.App.ErrWriter,
		Confirm:     os.Stdin,
		Interactive: isTerminal(os.Stdin),
	}

	if suffix := c.String("suffix"); suffix != "" {
		opts.Suffix = strings.TrimPrefix(suffix, ".")
	}

	if opts.OutputName != "" && (opts.ToStdout || opts.List || opts.Recursive || opts.Test || c.Args().Len() > 1) {
		return nil, fmt.Errorf("-o cannot be combined with -c, -l, -r, -t, or multiple inputs")
	}

	switch {
	case c.String("method") != "":
		a, err := reg.ByName(c.String("method"))
		if err != nil {
			return nil, err
		}
		opts.Algorithm = a
	case c.Bool("lzw"):
		opts.Algorithm, _ = reg.ByName("lzw")
	case c.Bool("gzip"):
		opts.Algorithm, _ = reg.ByName("gzip")
	case levelSet:
		// A bare digit flag with no explicit algorithm selects gzip, per
		// spec.md §6 ("digits 0..9 set level and default algorithm to
		// gzip").
		opts.Algorithm, _ = reg.ByName("gzip")
	}

	if c.IsSet("bits") {
		levelFlag, levelSet = c.Int("bits"), true
	}
	if levelSet {
		opts.Level = levelFlag
	}
	if c.Bool("fast") {
		a := opts.Algorithm
		if a == nil {
			a = reg.Default()
		}
		opts.Level = a.MinLevel
	}
	if c.Bool("best") {
		a := opts.Algorithm
		if a == nil {
			a = reg.Default()
		}
		opts.Level = a.MaxLevel
	}

	return opts, nil
}
