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

import "errors"

var (
	// ErrNotADataDisc is returned when the backend has no usable data
	// track to mount a filesystem from.
	ErrNotADataDisc = errors.New("iso9660: no data track")

	// ErrFilesystemNotFound is returned when sector 16 of the first data
	// track is not a valid Primary Volume Descriptor.
	ErrFilesystemNotFound = errors.New("iso9660: sector 16 is not a valid PVD")

	// ErrNotFound is returned by FindFile when no matching entry exists
	// along the requested path.
	ErrNotFound = errors.New("iso9660: file not found")

	// ErrNotADirectory is returned when a non-final path segment resolves
	// to a file instead of a directory.
	ErrNotADirectory = errors.New("iso9660: path component is not a directory")
)
