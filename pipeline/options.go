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

// Package pipeline implements the driver that picks an algorithm (by name,
// extension, or magic-number probe) and streams one operand end-to-end
// through it, plus the supporting recursive directory walk. It depends on
// codec for the algorithm registry and the shared FileInfo/Destination
// types, never the reverse.
package pipeline

import (
	"io"

	"github.com/dennis95/dxcompress/codec"
)

// Options is parsed once from CLI flags into an immutable value passed by
// reference into every ProcessFile/Walk call; spec.md §5 requires global
// configuration to be read-only after argument parsing.
type Options struct {
	Registry *codec.Registry

	Decompress bool
	ToStdout   bool
	Force      bool
	Keep       bool
	List       bool
	Test       bool
	Quiet      bool
	Recursive  bool
	Verbose    bool

	// SaveName and NoName are mutually exclusive; SaveName requests -N
	// (restore name/time on decompress, or save them on compress),
	// NoName requests -n (omit them on compress).
	SaveName bool
	NoName   bool

	// Algorithm is the explicitly selected algorithm (-m/-g/-O/digit
	// flags implying gzip), or nil for automatic selection (LZW on
	// compress, extension/probe on decompress).
	Algorithm *codec.Algorithm

	// Level is the requested compression level, or LevelUnset to use the
	// selected algorithm's DefaultLevel.
	Level int

	// Suffix overrides the algorithm's primary extension (-S), already
	// stripped of its leading dot.
	Suffix string

	// OutputName is the explicit -o destination; only legal for a single
	// operand, and incompatible with List, Test, and Recursive.
	OutputName string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Confirm reads interactive overwrite confirmations (normally
	// os.Stdin); nil disables prompting and treats a collision as if the
	// user declined.
	Confirm io.Reader

	// Interactive reports whether Confirm is connected to a terminal;
	// when false, a collision without Force fails outright rather than
	// prompting, matching spec.md §4.G.2's "prompt the tty if
	// interactive, else fail".
	Interactive bool
}

// LevelUnset requests the selected algorithm's DefaultLevel.
const LevelUnset = -1

// ResolvedLevel returns the level to pass to the algorithm: opts.Level if
// set, else a.DefaultLevel.
func (o *Options) ResolvedLevel(a *codec.Algorithm) int {
	if o.Level == LevelUnset {
		return a.DefaultLevel
	}
	if o.Level < a.MinLevel {
		return a.MinLevel
	}
	if o.Level > a.MaxLevel {
		return a.MaxLevel
	}
	return o.Level
}

// Exit codes, per spec.md §4.G/§6: 1 dominates 2 dominates 0 across
// multiple operands.
const (
	ExitOK     = 0
	ExitError  = 1
	ExitNoGain = 2
)

// CombineExit folds a new per-operand exit code into the running total,
// applying the 1 > 2 > 0 dominance rule.
func CombineExit(total, next int) int {
	if total == ExitError || next == ExitError {
		return ExitError
	}
	if total == ExitNoGain || next == ExitNoGain {
		return ExitNoGain
	}
	return ExitOK
}
