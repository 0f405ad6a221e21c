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
	"fmt"
	"regexp"
	"strconv"

	"github.com/retrocds/psxhash/internal/chdffi"
)

// chdMetadataTags is the search order spec.md §4.1 names: CHT2 first, then
// the older CHTR form, then GD-ROM's CHGD. The first tag that returns
// metadata at a given index wins; the loop stops at the first index where
// none of the three do.
var chdMetadataTags = []uint32{chdffi.TagCDTrack, chdffi.TagCDTrackV1, chdffi.TagGDTrack}

// trackMetadataPattern parses the ASCII key-value track descriptor payload:
// "TRACK:%d TYPE:%s SUBTYPE:%s FRAMES:%d [PREGAP:%d ...]".
var trackMetadataPattern = regexp.MustCompile(
	`TRACK:(\d+)\s+TYPE:(\S+)\s+SUBTYPE:(\S+)\s+FRAMES:(\d+)`)
var pregapPattern = regexp.MustCompile(`PREGAP:(\d+)`)

// chdBackend implements Backend over a CHD archive via the narrow chdffi
// interface. Per the chosen session discipline (SPEC_FULL §13), the native
// handle is held open for the lifetime of the backend rather than being
// reopened around every sector read.
type chdBackend struct {
	lib    chdffi.Library
	handle chdffi.Handle

	hunkBytes     uint32
	unitBytes     uint32
	framesPerHunk uint32

	tracks []Track

	hunkCache      []byte
	hunkCacheIndex uint32
	hunkCacheValid bool
}

// OpenCHD opens path through lib and enumerates its track table.
func OpenCHD(lib chdffi.Library, path string) (Backend, error) {
	handle, err := lib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchiveOpenFailed, err)
	}

	header, err := lib.GetHeader(handle)
	if err != nil {
		_ = lib.Close(handle)
		return nil, fmt.Errorf("%w: %v", ErrHeaderInvalid, err)
	}

	unitBytes := header.UnitBytes
	if unitBytes == 0 {
		unitBytes = 2448
	}
	if header.HunkBytes == 0 || header.HunkBytes%unitBytes != 0 {
		_ = lib.Close(handle)
		return nil, fmt.Errorf("%w: hunk_bytes=%d not a multiple of unit_bytes=%d",
			ErrHeaderInvalid, header.HunkBytes, unitBytes)
	}
	framesPerHunk := header.HunkBytes / unitBytes
	if framesPerHunk < 1 {
		_ = lib.Close(handle)
		return nil, fmt.Errorf("%w: frames_per_hunk < 1", ErrHeaderInvalid)
	}

	b := &chdBackend{
		lib:           lib,
		handle:        handle,
		hunkBytes:     header.HunkBytes,
		unitBytes:     unitBytes,
		framesPerHunk: framesPerHunk,
	}

	tracks, err := b.enumerateTracks()
	if err != nil {
		_ = lib.Close(handle)
		return nil, err
	}
	if len(tracks) == 0 {
		_ = lib.Close(handle)
		return nil, ErrNoTracks
	}
	b.tracks = tracks

	return b, nil
}

func (b *chdBackend) enumerateTracks() ([]Track, error) {
	var tracks []Track
	frameOffset := uint32(0)

	for index := uint32(0); ; index++ {
		payload, found, err := b.fetchMetadata(index)
		if err != nil {
			return nil, err
		}
		if !found {
			// None of the three tags hold an entry at this index: the table
			// ends here.
			break
		}

		entry, err := parseTrackMetadata(payload)
		if err != nil {
			// This index's payload is malformed, but a later index may still
			// hold a valid track; skip past it rather than ending the table.
			continue
		}

		t := Track{
			Number:       entry.number,
			Type:         trackTypeFromTag(entry.typeTag),
			PregapFrames: entry.pregap,
			TotalFrames:  entry.frames,
			StartFrame:   frameOffset,
		}
		nominalGeometry(&t)
		tracks = append(tracks, t)

		frameOffset += entry.pregap
		frameOffset += entry.frames
		frameOffset += padToMultipleOf4(entry.frames)
	}

	if len(tracks) > 0 {
		if err := b.refineFirstDataTrack(tracks); err != nil {
			return nil, err
		}
	}

	return tracks, nil
}

// padToMultipleOf4 returns the padding frames needed to round n up to a
// multiple of 4, matching ((n+3) & ~3) - n.
func padToMultipleOf4(n uint32) uint32 {
	return ((n + 3) &^ 3) - n
}

// fetchMetadata tries each tag in chdMetadataTags for index in turn. A
// not-found response from every tag means "no track at this index" (end of
// table); any other error is a genuine library fault and is propagated
// rather than treated the same as not-found, per the no-retry,
// deterministic-success-or-permanent-failure policy.
func (b *chdBackend) fetchMetadata(index uint32) (payload []byte, found bool, err error) {
	for _, tag := range chdMetadataTags {
		payload, ferr := b.lib.GetMetadata(b.handle, tag, index)
		if ferr == nil {
			return payload, true, nil
		}
		if !errors.Is(ferr, chdffi.ErrMetadataNotFound) {
			return nil, false, fmt.Errorf("%w: %w", ErrMetadataReadFailed, ferr)
		}
	}
	return nil, false, nil
}

func (b *chdBackend) refineFirstDataTrack(tracks []Track) error {
	for i := range tracks {
		if !tracks[i].IsDataTrack() {
			continue
		}
		sector, err := b.ReadSector(tracks[i], 16)
		if err != nil {
			return err
		}
		refineGeometry(&tracks[i], sector)
		return nil
	}
	return nil
}

type parsedTrackEntry struct {
	number  uint32
	typeTag string
	frames  uint32
	pregap  uint32
}

func parseTrackMetadata(payload []byte) (parsedTrackEntry, error) {
	m := trackMetadataPattern.FindSubmatch(payload)
	if m == nil {
		return parsedTrackEntry{}, fmt.Errorf("%w: %q", ErrTrackMetadataMalformed, payload)
	}

	number, err := strconv.ParseUint(string(m[1]), 10, 32)
	if err != nil {
		return parsedTrackEntry{}, fmt.Errorf("%w: track number: %v", ErrTrackMetadataMalformed, err)
	}
	frames, err := strconv.ParseUint(string(m[4]), 10, 32)
	if err != nil {
		return parsedTrackEntry{}, fmt.Errorf("%w: frame count: %v", ErrTrackMetadataMalformed, err)
	}

	entry := parsedTrackEntry{
		number:  uint32(number),
		typeTag: string(m[2]),
		frames:  uint32(frames),
	}
	if pm := pregapPattern.FindSubmatch(payload); pm != nil {
		pregap, err := strconv.ParseUint(string(pm[1]), 10, 32)
		if err == nil {
			entry.pregap = uint32(pregap)
		}
	}
	return entry, nil
}

func trackTypeFromTag(tag string) TrackType {
	switch tag {
	case "MODE1_RAW":
		return TrackMode1Raw
	case "MODE2_RAW":
		return TrackMode2Raw
	case "MODE1":
		return TrackMode1
	case "MODE2", "MODE2_FORM1", "MODE2_FORM2", "MODE2_FORM_MIX":
		return TrackMode2
	case "AUDIO":
		return TrackAudio
	default:
		return TrackUnknown
	}
}

// Tracks implements Backend.
func (b *chdBackend) Tracks() []Track { return b.tracks }

// ReadSector implements Backend per spec.md §4.1's algorithm: locate the
// absolute frame, translate it to a hunk and in-hunk offset, decompress the
// hunk, and slice out the physical sector.
func (b *chdBackend) ReadSector(track Track, sectorIndex uint32) ([]byte, error) {
	absoluteFrame := track.StartFrame + sectorIndex
	hunkIndex := absoluteFrame / b.framesPerHunk
	inHunk := (absoluteFrame % b.framesPerHunk) * b.unitBytes

	hunk, err := b.readHunk(hunkIndex)
	if err != nil {
		return nil, err
	}

	end := inHunk + track.PhysicalSectorSize
	if end > uint32(len(hunk)) {
		end = uint32(len(hunk))
	}
	if inHunk >= end {
		return nil, &SectorReadFailed{Hunk: hunkIndex, Code: -1, Err: ErrHeaderInvalid}
	}

	out := make([]byte, track.PhysicalSectorSize)
	copy(out, hunk[inHunk:end])
	return out, nil
}

func (b *chdBackend) readHunk(hunkIndex uint32) ([]byte, error) {
	if b.hunkCacheValid && b.hunkCacheIndex == hunkIndex {
		return b.hunkCache, nil
	}
	if b.hunkCache == nil {
		b.hunkCache = make([]byte, b.hunkBytes)
	}
	if err := b.lib.Read(b.handle, hunkIndex, b.hunkCache); err != nil {
		b.hunkCacheValid = false
		return nil, &SectorReadFailed{Hunk: hunkIndex, Code: -1, Err: err}
	}
	b.hunkCacheIndex = hunkIndex
	b.hunkCacheValid = true
	return b.hunkCache, nil
}

// Close implements Backend.
func (b *chdBackend) Close() error {
	return b.lib.Close(b.handle)
}
