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
)

// errPipeline is the base error for all errors returned by this package.
var errPipeline = errors.New("pipeline")

// ErrUnrecognizedFormat indicates decompress mode with force unset and no
// registered Probe matched the input's prefix.
var ErrUnrecognizedFormat = fmt.Errorf("%w: unrecognized format", errPipeline)

// ErrUnimplementedFormat indicates the chosen algorithm was compiled out
// (kept for parity with spec.md §7's error-kind enumeration; this
// implementation registers every algorithm it builds, so the only way to
// reach this is an explicit -m name for an algorithm the registry doesn't
// carry, which ErrUnknownAlgorithm from codec already covers more
// specifically).
var ErrUnimplementedFormat = fmt.Errorf("%w: unimplemented format", errPipeline)

// ErrOpenFailure indicates the output could not be opened once the codec
// recovered an in-stream filename in restore-name mode.
var ErrOpenFailure = fmt.Errorf("%w: open failure", errPipeline)

// ErrOutOfMemory is fatal to the whole process: the driver unlinks partial
// output and stops processing further operands. Go programs do not
// normally observe allocation failure directly (the runtime panics
// instead), and no codec adapter in this repository returns this sentinel.
var ErrOutOfMemory = fmt.Errorf("%w: out of memory", errPipeline)

// ErrCollision indicates the output path already exists and neither
// --force nor an interactive "yes" resolved it.
var ErrCollision = fmt.Errorf("%w: output file exists", errPipeline)

// ErrNotRegular indicates an operand resolved to something other than a
// regular file (a symlink, device, or directory without -r).
var ErrNotRegular = fmt.Errorf("%w: not a regular file", errPipeline)

// ErrAlreadySuffixed indicates a compress-mode operand already ends in the
// target suffix and was skipped.
var ErrAlreadySuffixed = fmt.Errorf("%w: already has the target suffix", errPipeline)
