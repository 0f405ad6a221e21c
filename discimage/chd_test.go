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

import (
	"errors"
	"testing"

	"github.com/retrocds/psxhash/internal/chdffi"
)

// fakeHandle and fakeLibrary implement chdffi.Library in-memory so the CHD
// backend can be exercised without linking libchdr, mirroring the way the
// teacher repo's chd package tests build synthetic fixtures instead of
// shelling out to a real archive. fakeHandle embeds chdffi.Handle to pick
// up the interface's unexported method, which a type outside chdffi cannot
// declare itself.
type fakeHandle struct {
	chdffi.Handle
	closedFlag bool
}

func (h *fakeHandle) closed() bool { return h.closedFlag }

type fakeLibrary struct {
	header       chdffi.Header
	hunks        [][]byte
	tracks       [][]byte // CHT2 metadata payloads, index-ordered
	openErr      error
	readErrs     map[uint32]error
	metadataErrs map[uint32]error // genuine (non-not-found) GetMetadata faults, by index
}

func (l *fakeLibrary) Open(path string) (chdffi.Handle, error) {
	if l.openErr != nil {
		return nil, l.openErr
	}
	return &fakeHandle{}, nil
}

func (l *fakeLibrary) Close(h chdffi.Handle) error {
	h.(*fakeHandle).closedFlag = true
	return nil
}

func (l *fakeLibrary) Read(h chdffi.Handle, hunkIndex uint32, buf []byte) error {
	if err, ok := l.readErrs[hunkIndex]; ok {
		return err
	}
	if int(hunkIndex) >= len(l.hunks) {
		return chdffi.ErrReadFailed
	}
	copy(buf, l.hunks[hunkIndex])
	return nil
}

func (l *fakeLibrary) GetHeader(h chdffi.Handle) (*chdffi.Header, error) {
	header := l.header
	return &header, nil
}

func (l *fakeLibrary) GetMetadata(h chdffi.Handle, tag uint32, index uint32) ([]byte, error) {
	if tag != chdffi.TagCDTrack {
		return nil, chdffi.ErrMetadataNotFound
	}
	if err, ok := l.metadataErrs[index]; ok {
		return nil, err
	}
	if int(index) >= len(l.tracks) {
		return nil, chdffi.ErrMetadataNotFound
	}
	return l.tracks[index], nil
}

// buildPVDSector returns a 2448-byte CHD unit (2352-byte sector + 96-byte
// subchannel trailer) carrying a minimal Primary Volume Descriptor at the
// 0-byte data offset (MODE1 bare geometry: data_offset=0).
func buildPVDSector() []byte {
	unit := make([]byte, 2448)
	unit[0] = 1
	copy(unit[1:6], "CD001")
	// Root directory record at PVD offset 156: len=34, extent_lba=18 (LE),
	// data_len=2048 (LE).
	record := unit[156:]
	record[0] = 34
	record[2] = 18
	record[10] = 0
	record[11] = 8 // 2048 = 0x00000800, LE byte[1]=0x08
	return unit
}

func TestOpenCHD_SingleDataTrack(t *testing.T) {
	t.Parallel()

	hunkBytes := uint32(2448 * 4) // 4 frames per hunk
	lib := &fakeLibrary{
		header: chdffi.Header{
			HunkBytes: hunkBytes,
			UnitBytes: 2448,
			Version:   5,
		},
		tracks: [][]byte{
			[]byte("TRACK:1 TYPE:MODE1 SUBTYPE:2048 FRAMES:100"),
		},
	}
	lib.hunks = make([][]byte, 4)
	for i := range lib.hunks {
		lib.hunks[i] = make([]byte, hunkBytes)
	}
	// Frame 16 (sector 16) lives in hunk 4, in-hunk offset 0.
	pvd := buildPVDSector()
	hunkIdx := uint32(16) / (hunkBytes / 2448)
	inHunk := (uint32(16) % (hunkBytes / 2448)) * 2448
	for len(lib.hunks) <= int(hunkIdx) {
		lib.hunks = append(lib.hunks, make([]byte, hunkBytes))
	}
	copy(lib.hunks[hunkIdx][inHunk:], pvd)

	backend, err := OpenCHD(lib, "fake.chd")
	if err != nil {
		t.Fatalf("OpenCHD: %v", err)
	}
	defer backend.Close()

	tracks := backend.Tracks()
	if len(tracks) != 1 {
		t.Fatalf("got %d tracks, want 1", len(tracks))
	}
	tr := tracks[0]
	if tr.StartFrame != 0 {
		t.Errorf("StartFrame = %d, want 0", tr.StartFrame)
	}
	if tr.PhysicalSectorSize != 2352 {
		t.Errorf("PhysicalSectorSize = %d, want 2352", tr.PhysicalSectorSize)
	}
	// Nominal MODE1 bare geometry is data_offset=0/user_data_size=2048;
	// the PVD probe at sector 16 should keep that since the sector we
	// built starts its PVD payload at offset 0, matching pattern 3/default.
	if tr.DataOffset != 0 || tr.UserDataSize != 2048 {
		t.Errorf("geometry = (%d,%d), want (0,2048)", tr.DataOffset, tr.UserDataSize)
	}
}

func TestOpenCHD_MultiTrackStartFrame(t *testing.T) {
	t.Parallel()

	lib := &fakeLibrary{
		header: chdffi.Header{HunkBytes: 2448, UnitBytes: 2448, Version: 5},
		tracks: [][]byte{
			[]byte("TRACK:1 TYPE:MODE1 SUBTYPE:2048 FRAMES:10"),
			[]byte("TRACK:2 TYPE:AUDIO SUBTYPE:AUDIO FRAMES:20 PREGAP:2"),
		},
	}
	lib.hunks = make([][]byte, 64)
	for i := range lib.hunks {
		lib.hunks[i] = make([]byte, 2448)
	}

	backend, err := OpenCHD(lib, "fake.chd")
	if err != nil {
		t.Fatalf("OpenCHD: %v", err)
	}
	defer backend.Close()

	tracks := backend.Tracks()
	if len(tracks) != 2 {
		t.Fatalf("got %d tracks, want 2", len(tracks))
	}

	// track1: frames=10, pad to multiple of 4 -> 2; start_frame track2 =
	// 0 + 0(pregap) + 10(frames) + 2(pad) = 12.
	if tracks[0].StartFrame != 0 {
		t.Errorf("track1 StartFrame = %d, want 0", tracks[0].StartFrame)
	}
	if tracks[1].StartFrame != 12 {
		t.Errorf("track2 StartFrame = %d, want 12", tracks[1].StartFrame)
	}
	if tracks[1].StartFrame <= tracks[0].StartFrame+tracks[0].TotalFrames {
		t.Errorf("P2 violated: track2.StartFrame=%d not > track1.StartFrame+TotalFrames=%d",
			tracks[1].StartFrame, tracks[0].StartFrame+tracks[0].TotalFrames)
	}
}

func TestOpenCHD_NoTracksFails(t *testing.T) {
	t.Parallel()

	lib := &fakeLibrary{
		header: chdffi.Header{HunkBytes: 2448, UnitBytes: 2448},
	}
	_, err := OpenCHD(lib, "fake.chd")
	if err == nil {
		t.Fatal("expected error when no tracks are found")
	}
}

func TestOpenCHD_SkipsMalformedIndexRatherThanStopping(t *testing.T) {
	t.Parallel()

	lib := &fakeLibrary{
		header: chdffi.Header{HunkBytes: 2448, UnitBytes: 2448, Version: 5},
		tracks: [][]byte{
			[]byte("TRACK:1 TYPE:MODE1 SUBTYPE:2048 FRAMES:10"),
			[]byte("this is not a valid track descriptor"),
			[]byte("TRACK:3 TYPE:AUDIO SUBTYPE:AUDIO FRAMES:20"),
		},
	}
	lib.hunks = make([][]byte, 64)
	for i := range lib.hunks {
		lib.hunks[i] = make([]byte, 2448)
	}

	backend, err := OpenCHD(lib, "fake.chd")
	if err != nil {
		t.Fatalf("OpenCHD: %v", err)
	}
	defer backend.Close()

	tracks := backend.Tracks()
	if len(tracks) != 2 {
		t.Fatalf("got %d tracks, want 2 (malformed index 1 skipped, index 2 kept)", len(tracks))
	}
	if tracks[0].Number != 1 || tracks[1].Number != 3 {
		t.Errorf("track numbers = %d,%d, want 1,3", tracks[0].Number, tracks[1].Number)
	}
}

func TestOpenCHD_GenuineMetadataErrorPropagates(t *testing.T) {
	t.Parallel()

	lib := &fakeLibrary{
		header: chdffi.Header{HunkBytes: 2448, UnitBytes: 2448, Version: 5},
		tracks: [][]byte{
			[]byte("TRACK:1 TYPE:MODE1 SUBTYPE:2048 FRAMES:10"),
		},
		metadataErrs: map[uint32]error{
			0: chdffi.ErrReadFailed,
		},
	}
	lib.hunks = make([][]byte, 4)
	for i := range lib.hunks {
		lib.hunks[i] = make([]byte, 2448)
	}

	_, err := OpenCHD(lib, "fake.chd")
	if err == nil {
		t.Fatal("expected a permanent failure from a genuine metadata fault, got nil")
	}
	if !errors.Is(err, chdffi.ErrReadFailed) {
		t.Errorf("expected error chain to include chdffi.ErrReadFailed, got %v", err)
	}
}

func TestOpenCHD_ZeroUnitBytesSubstitutes2448(t *testing.T) {
	t.Parallel()

	lib := &fakeLibrary{
		header: chdffi.Header{HunkBytes: 2448, UnitBytes: 0},
		tracks: [][]byte{
			[]byte("TRACK:1 TYPE:MODE1 SUBTYPE:2048 FRAMES:4"),
		},
	}
	// One frame per hunk; hunks up to 16 so the sector-16 geometry probe
	// has data to read.
	lib.hunks = make([][]byte, 17)
	for i := range lib.hunks {
		lib.hunks[i] = make([]byte, 2448)
	}

	backend, err := OpenCHD(lib, "fake.chd")
	if err != nil {
		t.Fatalf("OpenCHD: %v", err)
	}
	defer backend.Close()

	if len(backend.Tracks()) != 1 {
		t.Fatalf("expected 1 track")
	}
}
