//go:build windows

package mmap

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// allocationGranularity is dwAllocationGranularity on every supported
// Windows release.
const allocationGranularity = 64 * 1024

type osMapping struct {
	h windows.Handle
}

// AllocationGranularity returns the alignment required for view offsets.
func AllocationGranularity() int {
	return allocationGranularity
}

func osOpenMapping(fd uintptr, size int64) (osMapping, error) {
	if size == 0 {
		// CreateFileMapping rejects empty files.
		return osMapping{}, nil
	}
	h, err := windows.CreateFileMapping(windows.Handle(fd), nil, windows.PAGE_READONLY,
		uint32(uint64(size)>>32), uint32(uint64(size)&0xFFFFFFFF), nil)
	if err != nil {
		return osMapping{}, err
	}
	return osMapping{h: h}, nil
}

func osCloseMapping(m osMapping) error {
	if m.h == 0 {
		return nil
	}
	return windows.CloseHandle(m.h)
}

func osMapView(m osMapping, _ uintptr, offset int64, length int) ([]byte, func([]byte) error, error) {
	addr, err := windows.MapViewOfFile(m.h, windows.FILE_MAP_READ,
		uint32(uint64(offset)>>32), uint32(uint64(offset)&0xFFFFFFFF), uintptr(length))
	if err != nil {
		return nil, nil, err
	}

	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), length)

	return data, func([]byte) error {
		return windows.UnmapViewOfFile(addr)
	}, nil
}

func osAdvise([]byte, AccessPattern) error {
	// No madvise equivalent; the page cache handles sequential reads well enough.
	return nil
}
