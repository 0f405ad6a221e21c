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

package iso9660

import "strings"

// FindFile resolves a '/'-separated path from the root directory.
// Comparison is case-insensitive with the ";N" version suffix stripped on
// both sides, per spec.md §4.4.
func (fs *FS) FindFile(path string) (Entry, error) {
	segments := splitPath(path)
	if len(segments) == 0 {
		return Entry{}, ErrNotFound
	}

	extent, size := fs.rootExtent, fs.rootSize

	for i, seg := range segments {
		entries, err := fs.readDir(extent, size)
		if err != nil {
			return Entry{}, err
		}

		target := normalizeName(seg)
		var match *Entry
		for j := range entries {
			if entries[j].Name == target {
				match = &entries[j]
				break
			}
		}
		if match == nil {
			return Entry{}, ErrNotFound
		}

		last := i == len(segments)-1
		if !last {
			if !match.IsDir {
				return Entry{}, ErrNotADirectory
			}
			extent, size = match.ExtentLBA, match.Size
			continue
		}
		return *match, nil
	}

	return Entry{}, ErrNotFound
}

// ReadFile reads entry's full contents, stopping at exactly entry.Size
// bytes regardless of sector padding, per spec.md §4.4.
func (fs *FS) ReadFile(entry Entry) ([]byte, error) {
	out := make([]byte, 0, entry.Size)
	remaining := entry.Size
	sectorIndex := uint32(0)

	for remaining > 0 {
		sector, err := fs.readUserData(entry.ExtentLBA + sectorIndex)
		if err != nil {
			return nil, err
		}
		n := uint32(len(sector))
		if n > remaining {
			n = remaining
		}
		if n == 0 {
			break
		}
		out = append(out, sector[:n]...)
		remaining -= n
		sectorIndex++
	}

	return out, nil
}

func splitPath(path string) []string {
	path = strings.ReplaceAll(path, "\\", "/")
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	parts := strings.Split(path, "/")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
