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

//go:build !cgo

package chdffi

import "errors"

// errCgoDisabled is returned by every stubLibrary method when psxhash was
// built without cgo, so CHD support is simply unavailable rather than
// panicking somewhere downstream.
var errCgoDisabled = errors.New("chdffi: built without cgo, libchdr is unavailable")

type stubHandle struct{}

func (stubHandle) closed() bool { return true }

type stubLibrary struct{}

// NewNativeLibrary returns a Library that fails every call. It exists so
// that psxhash still builds (minus CHD support) on CGO_ENABLED=0 targets;
// callers that only ever handle BIN/CUE images never touch it.
func NewNativeLibrary() Library {
	return stubLibrary{}
}

func (stubLibrary) Open(path string) (Handle, error)          { return nil, errCgoDisabled }
func (stubLibrary) Close(h Handle) error                      { return errCgoDisabled }
func (stubLibrary) Read(h Handle, idx uint32, b []byte) error  { return errCgoDisabled }
func (stubLibrary) GetHeader(h Handle) (*Header, error)   { return nil, errCgoDisabled }
func (stubLibrary) GetMetadata(h Handle, tag, index uint32) ([]byte, error) {
	return nil, errCgoDisabled
}
