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

const dirFlagDirectory = 0x02

// readDir walks the directory content stream starting at extentLBA for
// exactly sizeBytes logical bytes, yielding parsed entries. Directory
// records never cross sector boundaries; a zero length byte means "skip to
// the start of the next sector" (padding), per spec.md §4.4.
func (fs *FS) readDir(extentLBA, sizeBytes uint32) ([]Entry, error) {
	var entries []Entry
	var consumed uint32

	sectorIndex := uint32(0)
	sector, err := fs.readUserData(extentLBA + sectorIndex)
	if err != nil {
		return nil, err
	}
	offset := 0

	for consumed < sizeBytes {
		if offset >= len(sector) {
			sectorIndex++
			sector, err = fs.readUserData(extentLBA + sectorIndex)
			if err != nil {
				return nil, err
			}
			offset = 0
			continue
		}

		recLen := int(sector[offset])
		if recLen == 0 {
			consumed += uint32(len(sector) - offset)
			offset = len(sector)
			continue
		}
		if offset+recLen > len(sector) {
			// A record cannot legally cross a sector boundary; stop rather
			// than reading garbage.
			break
		}

		record := sector[offset : offset+recLen]
		offset += recLen
		consumed += uint32(recLen)

		entry, special := parseDirRecord(record)
		if special {
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// parseDirRecord parses one ISO 9660 directory record. The second return
// value reports whether the record is one of the "." / ".." special
// entries (single-byte name 0x00 or 0x01), which callers skip.
func parseDirRecord(record []byte) (Entry, bool) {
	if len(record) < 34 {
		return Entry{}, true
	}

	extentLBA, dataLen, err := leUint32Pair(record, 2, 10)
	if err != nil {
		return Entry{}, true
	}
	flags := record[25]
	nameLen := int(record[32])

	if 33+nameLen > len(record) {
		return Entry{}, true
	}
	nameBytes := record[33 : 33+nameLen]

	if nameLen == 1 && (nameBytes[0] == 0x00 || nameBytes[0] == 0x01) {
		return Entry{}, true
	}

	name := normalizeName(string(nameBytes))

	return Entry{
		Name:      name,
		ExtentLBA: extentLBA,
		Size:      dataLen,
		IsDir:     flags&dirFlagDirectory != 0,
	}, false
}

// normalizeName uppercases a directory-record name and strips any trailing
// ";N" version suffix.
func normalizeName(name string) string {
	name = strings.ToUpper(name)
	if idx := strings.IndexByte(name, ';'); idx >= 0 {
		name = name[:idx]
	}
	return name
}
