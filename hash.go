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
	"crypto/md5"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

const psxExeHeaderMagic = "PS-X EXE"

// ExecutableInfo is the final hash result for one disc image.
type ExecutableInfo struct {
	MD5           string
	LBA           uint32
	Size          uint32
	Name          string
	CanonicalPath string
}

// computeHash performs the load-and-truncate step (§4.5 Executable load)
// followed by the sector-by-sector MD5 construction (§4.5 Hash
// construction) for the executable at lookupPath, using hashPath as the
// string prefix of the MD5 stream.
func (h *Hasher) computeHash(paths bootPaths) (ExecutableInfo, error) {
	entry, err := h.fs.FindFile(paths.lookup)
	if err != nil {
		return ExecutableInfo{}, fmt.Errorf("%w: %v", ErrExecutableNotFound, err)
	}

	buf, err := h.fs.ReadFile(entry)
	if err != nil {
		return ExecutableInfo{}, fmt.Errorf("%w: %v", ErrExecutableReadFailed, err)
	}

	adjusted := uint32(len(buf))
	if len(buf) >= 28+4 && string(buf[:8]) == psxExeHeaderMagic {
		headerSize := binary.LittleEndian.Uint32(buf[28:32])
		candidate := headerSize + 2048
		if candidate < adjusted {
			adjusted = candidate
		} else if candidate > uint32(len(buf)) && h.logger != nil {
			h.logger.Printf("psxhash: %s: PS-X EXE header reports size %d exceeding stored extent %d",
				entry.Name, candidate, len(buf))
		}
	}

	stream := make([]byte, 0, len(paths.hash)+int(adjusted))
	stream = append(stream, []byte(paths.hash)...)

	numSectors := (adjusted + 2047) / 2048
	for i := uint32(0); i < numSectors; i++ {
		sector, err := h.fs.ReadExecutableSector(entry.ExtentLBA + i)
		if err != nil {
			return ExecutableInfo{}, fmt.Errorf("%w: %v", ErrExecutableReadFailed, err)
		}
		if len(sector) == 0 {
			break
		}
		stream = append(stream, sector...)
	}

	sum := md5.Sum(stream)

	return ExecutableInfo{
		MD5:           hex.EncodeToString(sum[:]),
		LBA:           entry.ExtentLBA,
		Size:          adjusted,
		Name:          entry.Name,
		CanonicalPath: paths.hash,
	}, nil
}
