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
	"encoding/binary"
	"testing"

	"github.com/retrocds/psxhash/discimage"
	"github.com/retrocds/psxhash/iso9660"
)

// fakeBackend is a minimal in-memory discimage.Backend over a single MODE1
// data track, built the way the teacher repo constructs synthetic ISO
// fixtures byte-by-byte in its own tests.
type fakeBackend struct {
	track   discimage.Track
	sectors map[uint32][]byte
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		track: discimage.Track{
			Number:             1,
			Type:               discimage.TrackMode1,
			PhysicalSectorSize: 2352,
			DataOffset:         0,
			UserDataSize:       2048,
		},
		sectors: make(map[uint32][]byte),
	}
}

func (b *fakeBackend) Tracks() []discimage.Track { return []discimage.Track{b.track} }

func (b *fakeBackend) ReadSector(track discimage.Track, sectorIndex uint32) ([]byte, error) {
	if sector, ok := b.sectors[sectorIndex]; ok {
		return sector, nil
	}
	return make([]byte, track.PhysicalSectorSize), nil
}

func (b *fakeBackend) Close() error { return nil }

func (b *fakeBackend) setUserData(sector uint32, data []byte) {
	buf := make([]byte, 2352)
	copy(buf[0:2048], data)
	b.sectors[sector] = buf
}

func appendDirRecord(buf []byte, name string, extent, size uint32, isDir bool) []byte {
	nameBytes := []byte(name)
	recLen := 33 + len(nameBytes)
	if recLen%2 == 1 {
		recLen++
	}
	record := make([]byte, recLen)
	record[0] = byte(recLen)
	binary.LittleEndian.PutUint32(record[2:6], extent)
	binary.LittleEndian.PutUint32(record[10:14], size)
	if isDir {
		record[25] = 0x02
	}
	record[32] = byte(len(nameBytes))
	copy(record[33:], nameBytes)
	return append(buf, record...)
}

func setRootPVD(b *fakeBackend, rootExtent uint32) {
	pvd := make([]byte, 2048)
	pvd[0] = 1
	copy(pvd[1:6], "CD001")
	root := appendDirRecord(nil, "\x00", rootExtent, 2048, true)
	copy(pvd[156:], root)
	b.setUserData(16, pvd)
}

// TestHash_Scenario1 is seed scenario 1 from SPEC_FULL §8: boot path
// cdrom:\SLUS_012.34;1, executable at LBA 24, size 2560 (2 sectors),
// payload 0x41 repeated. hash_path = "SLUS_012.34;1"; the hashed stream is
// hash_path followed by 4096 bytes of 0x41 (two full 2048-byte slices).
func TestHash_Scenario1(t *testing.T) {
	t.Parallel()

	b := newFakeBackend()

	payload := make([]byte, 2560)
	for i := range payload {
		payload[i] = 0x41
	}

	var dir []byte
	dir = appendDirRecord(dir, "\x00", 20, 2048, true)
	dir = appendDirRecord(dir, "\x01", 20, 2048, true)
	dir = appendDirRecord(dir, "SYSTEM.CNF;1", 21, 60, false)
	dir = appendDirRecord(dir, "SLUS_012.34;1", 24, uint32(len(payload)), false)
	b.setUserData(20, dir)

	b.setUserData(21, []byte(`BOOT=cdrom:\SLUS_012.34;1`+"\r\nTCB=4\r\n"))
	// The disc's second sector physically carries a full 2048 bytes of the
	// same fill byte even though the file's logical size (2560) only needs
	// 512 of them — the sector-by-sector re-read takes all 2048 regardless.
	fullSecondSector := make([]byte, 2048)
	for i := range fullSecondSector {
		fullSecondSector[i] = 0x41
	}
	b.setUserData(24, payload[:2048])
	b.setUserData(25, fullSecondSector)
	setRootPVD(b, 20)

	fs, err := iso9660.Open(b)
	if err != nil {
		t.Fatalf("iso9660.Open: %v", err)
	}
	h := &Hasher{backend: b, fs: fs}

	info, err := h.Hash()
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	const wantMD5 = "a2611e3b57eab3c743db1943521c4238"
	if info.MD5 != wantMD5 {
		t.Errorf("MD5 = %s, want %s", info.MD5, wantMD5)
	}
	if info.CanonicalPath != "SLUS_012.34;1" {
		t.Errorf("CanonicalPath = %q, want %q", info.CanonicalPath, "SLUS_012.34;1")
	}
	if info.LBA != 24 {
		t.Errorf("LBA = %d, want 24", info.LBA)
	}
}

// TestHash_Scenario3 covers SYSTEM.CNF absent, PSX.EXE present ->
// hash_path = "PSX.EXE".
func TestHash_Scenario3(t *testing.T) {
	t.Parallel()

	b := newFakeBackend()
	payload := make([]byte, 2048)

	var dir []byte
	dir = appendDirRecord(dir, "\x00", 20, 2048, true)
	dir = appendDirRecord(dir, "\x01", 20, 2048, true)
	dir = appendDirRecord(dir, "PSX.EXE;1", 21, uint32(len(payload)), false)
	b.setUserData(20, dir)
	b.setUserData(21, payload)
	setRootPVD(b, 20)

	fs, err := iso9660.Open(b)
	if err != nil {
		t.Fatalf("iso9660.Open: %v", err)
	}
	h := &Hasher{backend: b, fs: fs}

	info, err := h.Hash()
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if info.CanonicalPath != "PSX.EXE" {
		t.Errorf("CanonicalPath = %q, want PSX.EXE", info.CanonicalPath)
	}
}

// TestHash_Scenario4 covers the SLUS/SLES/SCUS fallback: neither
// SYSTEM.CNF nor PSX.EXE present, root contains SLES_005.29;1 ->
// hash_path = "SLES_005.29" with no version suffix reattached.
func TestHash_Scenario4(t *testing.T) {
	t.Parallel()

	b := newFakeBackend()
	payload := make([]byte, 2048)

	var dir []byte
	dir = appendDirRecord(dir, "\x00", 20, 2048, true)
	dir = appendDirRecord(dir, "\x01", 20, 2048, true)
	dir = appendDirRecord(dir, "SLES_005.29;1", 21, uint32(len(payload)), false)
	b.setUserData(20, dir)
	b.setUserData(21, payload)
	setRootPVD(b, 20)

	fs, err := iso9660.Open(b)
	if err != nil {
		t.Fatalf("iso9660.Open: %v", err)
	}
	h := &Hasher{backend: b, fs: fs}

	info, err := h.Hash()
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if info.CanonicalPath != "SLES_005.29" {
		t.Errorf("CanonicalPath = %q, want SLES_005.29 (no version reattached)", info.CanonicalPath)
	}
}

// TestHash_Scenario5 covers P7 / seed scenario 5: a PS-X EXE file whose
// header reports offset-28 size 0x8000 against an actual extent of
// 0x9000 truncates the hashed bytes to 0x8800.
func TestHash_Scenario5(t *testing.T) {
	t.Parallel()

	b := newFakeBackend()

	const extentSize = 0x9000
	const headerSize = 0x8000
	exe := make([]byte, extentSize)
	copy(exe, "PS-X EXE")
	binary.LittleEndian.PutUint32(exe[28:32], headerSize)
	for i := 2048; i < len(exe); i++ {
		exe[i] = byte(i)
	}

	var dir []byte
	dir = appendDirRecord(dir, "\x00", 20, 2048, true)
	dir = appendDirRecord(dir, "\x01", 20, 2048, true)
	dir = appendDirRecord(dir, "PSX.EXE;1", 21, uint32(len(exe)), false)
	b.setUserData(20, dir)
	for i := 0; i*2048 < len(exe); i++ {
		end := (i + 1) * 2048
		if end > len(exe) {
			end = len(exe)
		}
		b.setUserData(uint32(21+i), exe[i*2048:end])
	}
	setRootPVD(b, 20)

	fs, err := iso9660.Open(b)
	if err != nil {
		t.Fatalf("iso9660.Open: %v", err)
	}
	h := &Hasher{backend: b, fs: fs}

	info, err := h.Hash()
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	const wantAdjusted = headerSize + 2048
	if info.Size != wantAdjusted {
		t.Errorf("Size = %#x, want %#x", info.Size, wantAdjusted)
	}
}
