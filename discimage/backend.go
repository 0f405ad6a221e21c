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

// Package discimage provides a uniform sector accessor over the two disc
// image container formats psxhash supports: CHD archives and raw BIN dumps
// described by a CUE sheet. Both variants expose the same Backend interface
// so the ISO 9660 reader and hasher above never need to know which one they
// are talking to.
package discimage

import "io"

// TrackType identifies the physical sector layout declared for a track.
type TrackType int

const (
	TrackUnknown TrackType = iota
	TrackMode1Raw
	TrackMode2Raw
	TrackMode1
	TrackMode2
	TrackAudio
)

// Track describes one track's geometry and placement within the backend's
// logical sector address space. StartFrame is absolute: sector 0 of the
// whole session, not relative to the track.
type Track struct {
	Number             uint32
	Type               TrackType
	PhysicalSectorSize uint32
	DataOffset         uint32
	UserDataSize       uint32
	PregapFrames       uint32
	TotalFrames        uint32
	StartFrame         uint32
}

// IsDataTrack reports whether the track carries filesystem data rather than
// audio.
func (t Track) IsDataTrack() bool {
	return t.Type != TrackAudio && t.Type != TrackUnknown
}

// Backend is the uniform sector accessor implemented by the CHD and
// BIN/CUE variants. A Backend is opened once per input file and closed
// after hash computation; its track table is computed at open and never
// changes afterward.
type Backend interface {
	// Tracks returns the immutable track table, in ascending track order.
	Tracks() []Track

	// ReadSector returns the full physical sector (PhysicalSectorSize
	// bytes) at sectorIndex within track, counting from 0 at the track's
	// own start.
	ReadSector(track Track, sectorIndex uint32) ([]byte, error)

	// Close releases any resources (file handles, native archive
	// handles) held by the backend.
	Close() error
}

var _ io.Closer = Backend(nil)
