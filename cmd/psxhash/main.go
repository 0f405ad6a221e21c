// Copyright (c) 2026 The psxhash Authors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of psxhash.
//
// psxhash is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// psxhash is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with psxhash.  If not, see <https://www.gnu.org/licenses/>.

// Command psxhash computes the redump-style MD5 identifier for one or more
// PlayStation 1 disc images (.chd or .cue).
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/retrocds/psxhash"
	"github.com/retrocds/psxhash/internal/chdffi"
)

var (
	libPath string
	verbose bool
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "psxhash [--lib PATH] [--verbose] FILE...",
		Short: "Compute the canonical identifier hash of PlayStation 1 disc images",
		Args:  cobra.MinimumNArgs(1),
		RunE:  run,
	}
	cmd.Flags().StringVar(&libPath, "lib", "", "path to the native libchdr shared library (optional; only prepends its directory to LD_LIBRARY_PATH)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log diagnostic warnings (e.g. PS-X EXE size mismatches) to stderr")
	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	logger := log.New(os.Stderr, "", 0)
	if !verbose {
		logger.SetOutput(io.Discard)
	}

	// libchdr is linked at build time via cgo/pkg-config, not dlopen'd at
	// runtime, so --lib has nothing to pass a handle to; it only prepends
	// the library's directory to this process's LD_LIBRARY_PATH. The
	// dynamic linker has already loaded libchdr by then, so this does not
	// change which library this process uses.
	if libPath != "" {
		dir := filepath.Dir(libPath)
		if existing := os.Getenv("LD_LIBRARY_PATH"); existing != "" {
			os.Setenv("LD_LIBRARY_PATH", dir+string(os.PathListSeparator)+existing)
		} else {
			os.Setenv("LD_LIBRARY_PATH", dir)
		}
	}

	lib := chdffi.NewNativeLibrary()

	failed := false
	for _, path := range args {
		info, err := hashOne(path, lib, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed = true
			continue
		}
		fmt.Printf("%s  %s  %s\n", info.MD5, info.CanonicalPath, path)
	}

	if failed {
		os.Exit(1)
	}
	return nil
}

func hashOne(path string, lib chdffi.Library, logger *log.Logger) (psxhash.ExecutableInfo, error) {
	h, err := psxhash.Open(path, lib, logger)
	if err != nil {
		return psxhash.ExecutableInfo{}, err
	}
	defer h.Close()

	return h.Hash()
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
