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

//go:build cgo

package chdffi

/*
#cgo pkg-config: libchdr
#include <stdlib.h>
#include <libchdr/chd.h>

static chd_error psxhash_chd_open(const char *path, int mode, chd_file **out) {
	return chd_open(path, mode, NULL, out);
}
*/
import "C"

import (
	"fmt"
	"unsafe"
)

// nativeHandle wraps a borrowed libchdr *chd_file pointer.
type nativeHandle struct {
	file *C.chd_file
	done bool
}

func (h *nativeHandle) closed() bool { return h.done }

// nativeLibrary implements Library over libchdr via cgo. This is the one
// place psxhash delegates hunk decompression to someone else's code, per
// the narrow FFI boundary spec.md draws around the CHD codec stack.
type nativeLibrary struct{}

// NewNativeLibrary returns a Library backed by the system libchdr.
func NewNativeLibrary() Library {
	return nativeLibrary{}
}

func (nativeLibrary) Open(path string) (Handle, error) {
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	var cFile *C.chd_file
	if rc := C.psxhash_chd_open(cPath, C.int(ModeReadOnly), &cFile); rc != C.CHDERR_NONE {
		return nil, fmt.Errorf("%w: %s (code %d)", ErrOpenFailed, path, int(rc))
	}
	return &nativeHandle{file: cFile}, nil
}

func (nativeLibrary) Close(h Handle) error {
	nh, ok := h.(*nativeHandle)
	if !ok || nh.done {
		return ErrClosed
	}
	C.chd_close(nh.file)
	nh.done = true
	return nil
}

func (nativeLibrary) Read(h Handle, hunkIndex uint32, buf []byte) error {
	nh, ok := h.(*nativeHandle)
	if !ok || nh.done {
		return ErrClosed
	}
	if len(buf) == 0 {
		return nil
	}
	if rc := C.chd_read(nh.file, C.uint32_t(hunkIndex), unsafe.Pointer(&buf[0])); rc != C.CHDERR_NONE {
		return fmt.Errorf("%w: hunk %d (code %d)", ErrReadFailed, hunkIndex, int(rc))
	}
	return nil
}

func (nativeLibrary) GetHeader(h Handle) (*Header, error) {
	nh, ok := h.(*nativeHandle)
	if !ok || nh.done {
		return nil, ErrClosed
	}
	cHeader := C.chd_get_header(nh.file)
	if cHeader == nil {
		return nil, ErrOpenFailed
	}

	header := &Header{
		Version:      uint32(cHeader.version),
		Flags:        uint32(cHeader.flags),
		LogicalBytes: uint64(cHeader.logicalbytes),
		MapOffset:    uint64(cHeader.mapoffset),
		MetaOffset:   uint64(cHeader.metaoffset),
		HunkBytes:    uint32(cHeader.hunkbytes),
		UnitBytes:    uint32(cHeader.unitbytes),
	}
	for i := range header.Compression {
		header.Compression[i] = uint32(cHeader.compression[i])
	}
	return header, nil
}

func (nativeLibrary) GetMetadata(h Handle, tag uint32, index uint32) ([]byte, error) {
	nh, ok := h.(*nativeHandle)
	if !ok || nh.done {
		return nil, ErrClosed
	}

	var resultLen C.uint32_t
	var resultTag C.uint32_t
	var resultFlags C.uint8_t

	// First call with a zero-length buffer to discover the payload size.
	rc := C.chd_get_metadata(nh.file, C.uint32_t(tag), C.uint32_t(index), nil, 0, &resultLen, &resultTag, &resultFlags)
	if rc == C.CHDERR_METADATA_NOT_FOUND {
		return nil, ErrMetadataNotFound
	}
	if rc != C.CHDERR_NONE {
		return nil, fmt.Errorf("chdffi: get_metadata size probe failed (code %d)", int(rc))
	}
	if resultLen == 0 {
		return []byte{}, nil
	}

	buf := make([]byte, int(resultLen))
	rc = C.chd_get_metadata(nh.file, C.uint32_t(tag), C.uint32_t(index), unsafe.Pointer(&buf[0]), resultLen, &resultLen, &resultTag, &resultFlags)
	if rc == C.CHDERR_METADATA_NOT_FOUND {
		return nil, ErrMetadataNotFound
	}
	if rc != C.CHDERR_NONE {
		return nil, fmt.Errorf("chdffi: get_metadata read failed (code %d)", int(rc))
	}
	return buf[:resultLen], nil
}
