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

package psxhash

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/retrocds/psxhash/discimage"
	"github.com/retrocds/psxhash/internal/chdffi"
	"github.com/retrocds/psxhash/iso9660"
)

// Hasher holds one open disc-image session: an archive backend, the
// filesystem mounted on it, and a diagnostic sink for non-fatal warnings.
// It is opened per input file and closed after hash computation, per
// spec.md §3's lifecycle note.
type Hasher struct {
	backend discimage.Backend
	fs      *iso9660.FS
	logger  *log.Logger
}

// Open dispatches on the input file's extension: ".chd" is opened through
// lib (the native CHD library binding), ".cue" is opened as a cue sheet
// describing a raw BIN dump, and any other extension fails with
// ErrUnsupportedFormat.
func Open(path string, lib chdffi.Library, logger *log.Logger) (*Hasher, error) {
	if logger == nil {
		logger = defaultLogger()
	}

	backend, err := openBackend(path, lib)
	if err != nil {
		return nil, err
	}

	fs, err := iso9660.Open(backend)
	if err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("psxhash: %w", err)
	}

	return &Hasher{backend: backend, fs: fs, logger: logger}, nil
}

func openBackend(path string, lib chdffi.Library) (discimage.Backend, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".chd":
		return discimage.OpenCHD(lib, path)
	case ".cue":
		return discimage.OpenCue(path)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// defaultLogger mirrors the teacher's stderr-first diagnostic convention
// without pulling in a structured logging dependency the retrieval pack
// never reaches for (SPEC_FULL §10.1).
func defaultLogger() *log.Logger {
	return log.New(os.Stderr, "", 0)
}

// Close releases the underlying archive backend.
func (h *Hasher) Close() error {
	return h.backend.Close()
}

// Hash runs executable discovery, path canonicalization, and MD5
// construction, returning the final result for this session's disc image.
func (h *Hasher) Hash() (ExecutableInfo, error) {
	paths, err := discoverBootPaths(h.fs)
	if err != nil {
		return ExecutableInfo{}, err
	}
	return h.computeHash(paths)
}
