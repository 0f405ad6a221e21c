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

// Package iso9660 traverses the ISO 9660 filesystem embedded in a disc
// image's first data track, using only directory records (no path table,
// no Joliet/Rock Ridge extensions) — exactly as much of the standard as a
// PlayStation disc actually uses.
package iso9660

import (
	"bytes"
	"fmt"

	"github.com/retrocds/psxhash/discimage"
	"github.com/retrocds/psxhash/internal/binary"
)

// FS is an ISO 9660 filesystem mounted on a single data track of a
// discimage.Backend.
type FS struct {
	backend    discimage.Backend
	track      discimage.Track
	rootExtent uint32
	rootSize   uint32
}

// Entry is a parsed directory record.
type Entry struct {
	Name      string
	ExtentLBA uint32
	Size      uint32
	IsDir     bool
}

// Open mounts the filesystem rooted at the first data track's Primary
// Volume Descriptor (logical sector 16).
func Open(backend discimage.Backend) (*FS, error) {
	var dataTrack *discimage.Track
	for _, t := range backend.Tracks() {
		if t.IsDataTrack() {
			tc := t
			dataTrack = &tc
			break
		}
	}
	if dataTrack == nil {
		return nil, ErrNotADataDisc
	}

	fs := &FS{backend: backend, track: *dataTrack}

	pvd, err := fs.readUserData(16)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFilesystemNotFound, err)
	}
	if len(pvd) < 157 || pvd[0] != 1 || string(pvd[1:6]) != "CD001" {
		return nil, ErrFilesystemNotFound
	}

	// Root directory record begins at PVD offset 156: length byte then
	// payload carrying extent LBA (LE u32 @+2) and data length (LE u32 @+10).
	record := pvd[156:]
	if len(record) < 34 || int(record[0]) < 11 {
		return nil, ErrFilesystemNotFound
	}
	rootExtent, rootSize, err := leUint32Pair(record, 2, 10)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFilesystemNotFound, err)
	}
	fs.rootExtent = rootExtent
	fs.rootSize = rootSize

	return fs, nil
}

// readUserData reads physical sector `sector` of the mounted track and
// slices out the [DataOffset, DataOffset+UserDataSize) window, per
// spec.md §4.4's read_user_data operation.
func (fs *FS) readUserData(sector uint32) ([]byte, error) {
	raw, err := fs.backend.ReadSector(fs.track, sector)
	if err != nil {
		return nil, err
	}
	start := fs.track.DataOffset
	end := start + fs.track.UserDataSize
	if end > uint32(len(raw)) {
		end = uint32(len(raw))
	}
	if start > end {
		start = end
	}
	return raw[start:end], nil
}

// ReadExecutableSector reads exactly 2048 bytes of user data from physical
// sector `sector` of the mounted track, independent of the track's
// configured UserDataSize. The hasher's re-read step needs a fixed
// 2048-byte window per spec.md §4.5 regardless of the track's actual
// geometry. Returns a shorter slice only if the underlying physical sector
// itself came back short (end of file).
func (fs *FS) ReadExecutableSector(sector uint32) ([]byte, error) {
	raw, err := fs.backend.ReadSector(fs.track, sector)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	start := fs.track.DataOffset
	end := start + 2048
	if end > uint32(len(raw)) {
		end = uint32(len(raw))
	}
	if start > end {
		start = end
	}
	out := make([]byte, 2048)
	n := copy(out, raw[start:end])
	return out[:n], nil
}

// RootEntries lists the entries of the root directory.
func (fs *FS) RootEntries() ([]Entry, error) {
	return fs.readDir(fs.rootExtent, fs.rootSize)
}

// leUint32Pair reads two little-endian uint32 fields out of a directory
// record's fixed-layout byte buffer, via internal/binary's ReaderAt-based
// decoder rather than re-implementing byte-order math in this package.
func leUint32Pair(b []byte, offsetA, offsetB int) (uint32, uint32, error) {
	r := bytes.NewReader(b)
	a, err := binary.ReadUint32LEAt(r, int64(offsetA))
	if err != nil {
		return 0, 0, err
	}
	bb, err := binary.ReadUint32LEAt(r, int64(offsetB))
	if err != nil {
		return 0, 0, err
	}
	return a, bb, nil
}
