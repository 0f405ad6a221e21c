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

import "strings"

// stripCdromPrefix removes a leading "cdrom:" (case-insensitive) from a
// raw SYSTEM.CNF boot path.
func stripCdromPrefix(raw string) string {
	if len(raw) >= 6 && strings.EqualFold(raw[:6], "cdrom:") {
		return raw[6:]
	}
	return raw
}

// hashPath derives the exact string fed into the MD5 stream from a raw
// SYSTEM.CNF BOOT= value: strip "cdrom:", normalize separators to
// backslash, and strip leading backslashes. Case and the ";N" version
// suffix are preserved, per spec.md §4.5.
//
// Applying it to its own output returns the same string (P4) unless that
// output itself begins with "cdrom:" (e.g. raw "cdrom:cdrom:X" or
// "\cdrom:X"): the prefix is stripped only once, before leading
// backslashes are trimmed, so a second pass strips it again.
func hashPath(raw string) string {
	s := stripCdromPrefix(raw)
	s = strings.ReplaceAll(s, "/", "\\")
	s = strings.TrimLeft(s, "\\")
	return s
}

// lookupPath derives the string used to traverse the ISO 9660 filesystem
// from a raw SYSTEM.CNF BOOT= value: strip "cdrom:", strip all leading
// path separators, normalize separators to forward slash, and strip the
// version suffix. Comparison against directory entries is case-insensitive
// and happens at lookup time (iso9660.FindFile uppercases both sides).
func lookupPath(raw string) string {
	s := stripCdromPrefix(raw)
	s = strings.TrimLeft(s, "/\\")
	s = strings.ReplaceAll(s, "\\", "/")
	if idx := strings.IndexByte(s, ';'); idx >= 0 {
		s = s[:idx]
	}
	return s
}
