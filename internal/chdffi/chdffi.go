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

// Package chdffi defines the narrow foreign-function boundary to the native
// CHD (Compressed Hunks of Data) library. Hunk decompression is deliberately
// not reimplemented here: it is somebody else's problem, specifically
// libchdr's, reached over cgo in native.go. This package only describes the
// five functions psxhash actually calls and the data that crosses the
// boundary.
package chdffi

import "errors"

// Mode values for the native chd_open call; Open always uses
// ModeReadOnly.
const (
	// ModeReadOnly opens the CHD without allowing writes.
	ModeReadOnly = 1
)

// Metadata search tags, packed as big-endian ASCII quads, matching the
// values libchdr expects for chd_get_metadata's searchtag parameter.
const (
	TagCDTrack   uint32 = 0x43485432 // "CHT2", CD track metadata v2
	TagCDTrackV1 uint32 = 0x43485452 // "CHTR", CD track metadata v1
	TagGDTrack   uint32 = 0x43484744 // "CHGD", GD-ROM track metadata
)

// Header mirrors the fields of libchdr's chd_header that psxhash needs.
// It is populated by GetHeader from the native, borrowed header pointer;
// callers must not retain pointers into native memory beyond the call.
type Header struct {
	Compression  [4]uint32
	LogicalBytes uint64
	MapOffset    uint64
	MetaOffset   uint64
	HunkBytes    uint32
	UnitBytes    uint32
	Version      uint32
	Flags        uint32
}

// Errors returned by Library implementations. CHD_ERROR_METADATA_NOT_FOUND
// (19 in libchdr) is surfaced as ErrMetadataNotFound rather than a generic
// failure so callers can distinguish "no more tracks" from a real fault.
var (
	ErrOpenFailed       = errors.New("chdffi: native open failed")
	ErrReadFailed       = errors.New("chdffi: native hunk read failed")
	ErrMetadataNotFound = errors.New("chdffi: metadata tag not found")
	ErrClosed           = errors.New("chdffi: handle already closed")
)

// Handle is an opaque reference to an open native CHD file. Its concrete
// representation (a C pointer wrapped by cgo) never escapes this package.
type Handle interface {
	// closed reports whether Close has already released this handle.
	closed() bool
}

// Library is the narrow interface psxhash consumes: open a file, read a
// decompressed hunk, fetch the header, enumerate metadata by tag/index,
// and close. A production build satisfies this with nativeLibrary (cgo
// bound to libchdr); tests substitute a fake that never touches cgo.
type Library interface {
	// Open opens path read-only and returns a handle good until Close.
	Open(path string) (Handle, error)
	// Close releases a handle. Safe to call once per successful Open.
	Close(h Handle) error
	// Read decompresses hunk hunkIndex into buf, which must be exactly
	// header.HunkBytes long.
	Read(h Handle, hunkIndex uint32, buf []byte) error
	// GetHeader returns the handle's header fields.
	GetHeader(h Handle) (*Header, error)
	// GetMetadata fetches the index-th metadata entry matching tag, or
	// ErrMetadataNotFound once index runs past the last match.
	GetMetadata(h Handle, tag uint32, index uint32) ([]byte, error)
}
