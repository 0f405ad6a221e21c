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
)

// Sentinel errors for the archive backend layer, one per spec error kind
// that originates here.
var (
	ErrArchiveOpenFailed      = errors.New("discimage: archive open failed")
	ErrHeaderInvalid          = errors.New("discimage: archive header invalid")
	ErrTrackMetadataMalformed = errors.New("discimage: track metadata malformed")
	ErrMetadataReadFailed     = errors.New("discimage: track metadata read failed")
	ErrNoTracks               = errors.New("discimage: no tracks found")
	ErrCueMissingFile         = errors.New("discimage: cue sheet has no FILE directive")
	ErrCueMissingTrack        = errors.New("discimage: cue sheet has no TRACK directive")
)

// SectorReadFailed reports a failed sector/hunk read, per spec.md's
// SectorReadFailed(hunk, code) error kind. Hunk is the hunk index for the
// CHD backend and the absolute sector index for the BIN/CUE backend. Code
// is -1 in both backends; a native libchdr status code, when there is one,
// appears only in Err's message.
type SectorReadFailed struct {
	Hunk uint32
	Code int
	Err  error
}

func (e *SectorReadFailed) Error() string {
	return fmt.Sprintf("discimage: sector read failed at hunk %d (code %d): %v", e.Hunk, e.Code, e.Err)
}

func (e *SectorReadFailed) Unwrap() error { return e.Err }
