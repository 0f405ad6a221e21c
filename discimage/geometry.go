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

package discimage

import "github.com/retrocds/psxhash/internal/binary"

// cdSyncPattern is the 12-byte CD-ROM sync header: 00 FF*10 00.
var cdSyncPattern = []byte{0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x00}

// nominalGeometry fills in PhysicalSectorSize/DataOffset/UserDataSize for a
// track from its declared type tag alone, before any sector-16 probe.
func nominalGeometry(t *Track) {
	t.PhysicalSectorSize = 2352
	switch t.Type {
	case TrackMode1Raw:
		t.DataOffset, t.UserDataSize = 16, 2048
	case TrackMode2Raw:
		t.DataOffset, t.UserDataSize = 16, 2336
	case TrackMode1:
		t.DataOffset, t.UserDataSize = 0, 2048
	case TrackMode2:
		t.DataOffset, t.UserDataSize = 0, 2336
	case TrackAudio:
		t.DataOffset, t.UserDataSize = 0, 2352
	default:
		t.DataOffset, t.UserDataSize = 0, 2048
	}
}

// refineGeometry probes physical sector 16 of the first data track (already
// read by the caller) and, if it recognizes one of four CD-ROM layout
// signatures, overwrites DataOffset/UserDataSize with the refined values.
// The nominal geometry is retained if nothing matches. Only the first data
// track's geometry is ever refined; it is the one carrying the filesystem.
func refineGeometry(t *Track, sector []byte) {
	if len(sector) < 34 {
		return
	}

	// Pattern 1: CD-ROM XA, "CD001" at offset 25.
	// With the form-2 bit set this yields UserDataSize = 2324, and the
	// ISO 9660 reader then walks directories in 2324-byte slices per
	// sector, which can misparse a directory spanning more than one sector.
	if hasCD001(sector, 25) {
		t.DataOffset = 24
		if sector[18]&0x20 != 0 {
			t.UserDataSize = 2324
		} else {
			t.UserDataSize = 2048
		}
		return
	}

	// Pattern 2: MODE2 form 1 with 16-byte sync, "CD001" at offset 17.
	if hasCD001(sector, 17) {
		t.DataOffset = 16
		t.UserDataSize = 2336
		return
	}

	// Pattern 3: raw 2048-byte data, "CD001" at offset 1.
	if hasCD001(sector, 1) {
		t.DataOffset = 0
		t.UserDataSize = 2048
		return
	}

	// Pattern 4: CD sync pattern in the first 12 bytes.
	if len(sector) >= 16 && binary.BytesEqual(sector[:12], cdSyncPattern) {
		t.DataOffset = 16
		if sector[15]&3 == 1 {
			t.UserDataSize = 2048
		} else {
			t.UserDataSize = 2336
		}
		return
	}
}

var cd001Magic = []byte("CD001")

func hasCD001(sector []byte, offset int) bool {
	if offset+len(cd001Magic) > len(sector) {
		return false
	}
	return binary.FindBytes(sector[offset:offset+len(cd001Magic)], cd001Magic) == 0
}
