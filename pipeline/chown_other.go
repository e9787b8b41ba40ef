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

//go:build !unix

package pipeline

import (
	"os"
	"time"
)

// chownBestEffort is a no-op on platforms without POSIX ownership.
func chownBestEffort(dst *os.File, src os.FileInfo) {}

// accessTime has no atime on platforms without a Stat_t; both returned
// times are the portable ModTime.
func accessTime(src os.FileInfo) (atime, mtime time.Time) {
	mtime = src.ModTime()
	return mtime, mtime
}
