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
	"fmt"
	"os"
	"time"

	"github.com/rodaine/table"
	"github.com/urfave/cli/v2"

	"github.com/dennis95/dxcompress/pipeline"
)

// listFile implements -l/--list: it decompresses path through the pipeline
// with a discard destination (so the driver's name resolution, extension
// mapping, and probing are reused verbatim) and prints the recovered sizes
// in the dictzip CLI's rodaine/table style.
func listFile(c *cli.Context, path string, opts *pipeline.Options) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}

	info, err := pipeline.Inspect(path, opts)
	if err != nil {
		return err
	}

	tbl := table.New("method", "compressed", "uncompressed", "ratio", "name")
	if opts.Verbose {
		tbl = table.New("method", "crc", "date", "time", "compressed", "uncompressed", "ratio", "name")
	}

	name := info.Name
	if name == "" {
		name = path
	}
	method := algorithmLabel(opts, path)

	if opts.Verbose {
		mtime := fi.ModTime()
		if info.ModTime != 0 {
			mtime = time.Unix(info.ModTime, 0)
		}
		tbl.AddRow(
			method,
			fmt.Sprintf("%08x", info.Check),
			mtime.Format("2006-01-02"),
			mtime.Format("15:04:05"),
			info.CompressedSize,
			info.UncompressedSize,
			fmt.Sprintf("%.1f%%", info.Ratio()*100),
			name,
		)
	} else {
		tbl.AddRow(
			method,
			info.CompressedSize,
			info.UncompressedSize,
			fmt.Sprintf("%.1f%%", info.Ratio()*100),
			name,
		)
	}
	tbl.WithWriter(c.App.Writer)
	tbl.Print()
	return nil
}

func algorithmLabel(opts *pipeline.Options, path string) string {
	for _, a := range opts.Registry.Algorithms() {
		for _, ext := range a.Extensions {
			if len(path) > len(ext.Ext)+1 && path[len(path)-len(ext.Ext):] == ext.Ext {
				return a.Names[0]
			}
		}
	}
	return codecDefaultName(opts)
}

func codecDefaultName(opts *pipeline.Options) string {
	if a := opts.Registry.Default(); a != nil {
		return a.Names[0]
	}
	return "unknown"
}
