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
	"bufio"
	"fmt"
)

// confirmOverwrite prompts on opts.Stderr and reads one line from
// opts.Confirm, treating only a leading 'y'/'Y' as confirmation and
// draining the rest of the line. Supplemented from
// original_source/main.c's getConfirmation: the distilled spec omits the
// interactive prompt entirely, but it is cheap to carry forward and
// conflicts with no Non-goal.
// Each call wraps opts.Confirm in a fresh bufio.Reader, so any bytes
// buffered past the first line are not available to a later prompt in the
// same run; this only matters across multiple collisions in one
// invocation.
func confirmOverwrite(opts *Options, path string) bool {
	if !opts.Interactive || opts.Confirm == nil {
		return false
	}
	fmt.Fprintf(opts.Stderr, "File '%s' already exists, overwrite? ", path)

	r := bufio.NewReader(opts.Confirm)
	first, err := r.ReadByte()
	if err != nil {
		return false
	}
	for {
		c, err := r.ReadByte()
		if err != nil || c == '\n' {
			break
		}
	}
	return first == 'y' || first == 'Y'
}
