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
	"errors"
	"regexp"
	"strings"

	"github.com/retrocds/psxhash/iso9660"
)

var bootLinePattern = regexp.MustCompile(`(?i)BOOT\s*=\s*(.+?)(?:\s|$)`)

var slusPrefixes = []string{"SLUS", "SLES", "SCUS"}

// bootPaths is the pair fed to the hasher: hashPath goes into the MD5
// stream verbatim, lookupPath drives the ISO 9660 traversal.
type bootPaths struct {
	hash   string
	lookup string
}

// discoverBootPaths implements spec.md §4.5's executable discovery order:
// SYSTEM.CNF's BOOT= line, then a literal PSX.EXE, then the first
// SLUS/SLES/SCUS-prefixed file in the root directory.
func discoverBootPaths(fs *iso9660.FS) (bootPaths, error) {
	if entry, err := fs.FindFile("SYSTEM.CNF"); err == nil {
		content, rerr := fs.ReadFile(entry)
		if rerr != nil {
			return bootPaths{}, rerr
		}
		m := bootLinePattern.FindSubmatch(content)
		if m != nil {
			raw := strings.TrimSpace(string(m[1]))
			return bootPaths{hash: hashPath(raw), lookup: lookupPath(raw)}, nil
		}
	} else if !errors.Is(err, iso9660.ErrNotFound) {
		return bootPaths{}, err
	}

	if _, err := fs.FindFile("PSX.EXE"); err == nil {
		return bootPaths{hash: hashPath("PSX.EXE"), lookup: lookupPath("PSX.EXE")}, nil
	} else if !errors.Is(err, iso9660.ErrNotFound) {
		return bootPaths{}, err
	}

	entries, err := fs.RootEntries()
	if err != nil {
		return bootPaths{}, err
	}
	for _, e := range entries {
		if e.IsDir {
			continue
		}
		for _, prefix := range slusPrefixes {
			if strings.HasPrefix(e.Name, prefix) {
				// The entry's Name is already uppercase with any version
				// suffix stripped (iso9660.Entry invariant); the fallback
				// path does not reintroduce a version suffix into hash_path,
				// per the established, preserved behavior (SPEC_FULL §13).
				return bootPaths{hash: e.Name, lookup: e.Name}, nil
			}
		}
	}

	return bootPaths{}, ErrExecutableNotFound
}
