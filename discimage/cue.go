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
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	cueFilePattern  = regexp.MustCompile(`(?i)FILE\s+"([^"]+)"\s+BINARY`)
	cueTrackPattern = regexp.MustCompile(`(?i)TRACK\s+(\d+)\s+(\w+(?:/\d+)?)`)
	cueIndexPattern = regexp.MustCompile(`(?i)INDEX\s+01\s+(\d+):(\d+):(\d+)`)
)

// cueTypeGeometry maps a CUE TRACK type tag to its (physicalSectorSize,
// dataOffset, userDataSize) triple, per spec.md §4.2.
func cueTypeGeometry(tag string) (physical, offset, userData uint32) {
	switch strings.ToUpper(tag) {
	case "MODE1/2048":
		return 2048, 0, 2048
	case "MODE1/2352":
		return 2352, 16, 2048
	case "MODE2/2048":
		return 2048, 0, 2048
	case "MODE2/2352":
		return 2352, 24, 2048
	case "AUDIO":
		return 2352, 0, 2352
	default:
		return 2352, 0, 2048
	}
}

func cueTypeToTrackType(tag string) TrackType {
	switch strings.ToUpper(tag) {
	case "MODE1/2048", "MODE1/2352":
		return TrackMode1
	case "MODE2/2048", "MODE2/2352":
		return TrackMode2
	case "AUDIO":
		return TrackAudio
	default:
		return TrackMode1
	}
}

// cueBackend implements Backend over a raw BIN file described by a cue
// sheet. A single FILE...BINARY is supported, matching the PSX single-bin
// layout spec.md targets.
type cueBackend struct {
	file   *os.File
	tracks []Track
}

// OpenCue parses cuePath and opens the referenced BIN file relative to the
// cue sheet's directory.
func OpenCue(cuePath string) (Backend, error) {
	f, err := os.Open(cuePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchiveOpenFailed, err)
	}
	defer f.Close()

	var binName string
	type cueTrackLine struct {
		number  uint32
		typeTag string
	}
	var trackLines []cueTrackLine
	var indices []uint32 // start_frame per track line, aligned by append order

	scanner := bufio.NewScanner(f)
	var pendingTrack *cueTrackLine
	for scanner.Scan() {
		line := scanner.Text()

		if m := cueFilePattern.FindStringSubmatch(line); m != nil && binName == "" {
			binName = m[1]
			continue
		}
		if m := cueTrackPattern.FindStringSubmatch(line); m != nil {
			if pendingTrack != nil {
				trackLines = append(trackLines, *pendingTrack)
				indices = append(indices, 0)
			}
			num, _ := strconv.ParseUint(m[1], 10, 32)
			pendingTrack = &cueTrackLine{number: uint32(num), typeTag: m[2]}
			continue
		}
		if m := cueIndexPattern.FindStringSubmatch(line); m != nil && pendingTrack != nil {
			minutes, _ := strconv.ParseUint(m[1], 10, 32)
			seconds, _ := strconv.ParseUint(m[2], 10, 32)
			frames, _ := strconv.ParseUint(m[3], 10, 32)
			startFrame := uint32(minutes)*60*75 + uint32(seconds)*75 + uint32(frames)
			trackLines = append(trackLines, *pendingTrack)
			indices = append(indices, startFrame)
			pendingTrack = nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchiveOpenFailed, err)
	}
	if binName == "" {
		return nil, ErrCueMissingFile
	}
	if len(trackLines) == 0 {
		return nil, ErrCueMissingTrack
	}

	tracks := make([]Track, 0, len(trackLines))
	for i, tl := range trackLines {
		physical, offset, userData := cueTypeGeometry(tl.typeTag)
		tracks = append(tracks, Track{
			Number:             tl.number,
			Type:               cueTypeToTrackType(tl.typeTag),
			PhysicalSectorSize: physical,
			DataOffset:         offset,
			UserDataSize:       userData,
			StartFrame:         indices[i],
		})
	}

	for i := range tracks {
		if !tracks[i].IsDataTrack() {
			continue
		}
		// Fill TotalFrames from the gap to the next track for monotonicity
		// checks; unknown for the last track (runs to end of file).
		if i+1 < len(tracks) {
			tracks[i].TotalFrames = tracks[i+1].StartFrame - tracks[i].StartFrame
		}
		break
	}

	binPath := filepath.Join(filepath.Dir(cuePath), binName)
	bin, err := os.Open(binPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchiveOpenFailed, err)
	}

	b := &cueBackend{file: bin, tracks: tracks}

	for i := range b.tracks {
		if !b.tracks[i].IsDataTrack() {
			continue
		}
		sector, err := b.ReadSector(b.tracks[i], 16)
		if err != nil {
			_ = bin.Close()
			return nil, err
		}
		refineGeometry(&b.tracks[i], sector)
		break
	}

	return b, nil
}

// Tracks implements Backend.
func (b *cueBackend) Tracks() []Track { return b.tracks }

// ReadSector implements Backend per spec.md §4.2: seek to
// start_frame*physical_sector_size and return the whole physical sector.
func (b *cueBackend) ReadSector(track Track, sectorIndex uint32) ([]byte, error) {
	startByte := int64(track.StartFrame+sectorIndex) * int64(track.PhysicalSectorSize)
	buf := make([]byte, track.PhysicalSectorSize)
	n, err := b.file.ReadAt(buf, startByte)
	if n == 0 && err != nil {
		return nil, &SectorReadFailed{Hunk: track.StartFrame + sectorIndex, Code: -1, Err: err}
	}
	// A short final read leaves the remainder of buf zero-filled, which is
	// fine: callers always slice a fixed-size window out of it.
	return buf, nil
}

// Close implements Backend.
func (b *cueBackend) Close() error {
	return b.file.Close()
}
