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

// Package psxhash computes the canonical redump-style identifier hash for
// a PlayStation 1 disc image: locate the boot executable through
// SYSTEM.CNF (or its fallbacks), canonicalize its path, and MD5 the
// canonical path concatenated with the executable's in-disc sector data.
package psxhash

import "errors"

var (
	// ErrUnsupportedFormat is returned by Open for any input whose
	// extension is neither .chd nor .cue.
	ErrUnsupportedFormat = errors.New("psxhash: unsupported disc image format")

	// ErrExecutableNotFound is returned when neither SYSTEM.CNF, PSX.EXE,
	// nor a SLUS/SLES/SCUS-prefixed file can be located.
	ErrExecutableNotFound = errors.New("psxhash: no boot executable found")

	// ErrExecutableReadFailed is returned when the discovered executable
	// cannot be read back off the disc.
	ErrExecutableReadFailed = errors.New("psxhash: failed to read boot executable")
)
