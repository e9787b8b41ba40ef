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

//go:build unix

package pipeline

import (
	"os"
	"syscall"
	"time"
)

// chownBestEffort copies owner/group from src to dst, ignoring failure: the
// caller is typically unprivileged, so EPERM here is expected and not
// fatal, matching the reference's fchown-then-ignore-the-error behavior.
func chownBestEffort(dst *os.File, src os.FileInfo) {
	stat, ok := src.Sys().(*syscall.Stat_t)
	if !ok {
		return
	}
	_ = dst.Chown(int(stat.Uid), int(stat.Gid))
}

// accessTime returns the source file's last access time, falling back to
// its modification time on platforms where Stat_t exposes no atime.
func accessTime(src os.FileInfo) (atime, mtime time.Time) {
	mtime = src.ModTime()
	stat, ok := src.Sys().(*syscall.Stat_t)
	if !ok {
		return mtime, mtime
	}
	return time.Unix(stat.Atim.Sec, stat.Atim.Nsec), mtime
}
