package mmap

import (
	"fmt"
	"math"
	"sync/atomic"
)

// File is a read-only file that is mapped one window at a time.
// It does not own the handle it was created from.
type File struct {
	handle Handle
	size   int64
	m      osMapping
	closed atomic.Bool
}

// NewFile prepares h for chunked mapping. The size is fixed at this point;
// growth of the underlying file is not observed.
func NewFile(h Handle) (*File, error) {
	fi, err := h.Stat()
	if err != nil {
		return nil, err
	}

	size := fi.Size()
	if size < 0 || uint64(size) > math.MaxInt {
		return nil, ErrInvalidSize
	}

	m, err := osOpenMapping(h.Fd(), size)
	if err != nil {
		return nil, err
	}

	return &File{handle: h, size: size, m: m}, nil
}

// Size returns the file size captured by NewFile.
func (f *File) Size() int64 {
	return f.size
}

// Map maps length bytes starting at offset. offset must be a multiple of
// AllocationGranularity.
func (f *File) Map(offset int64, length int) (*View, error) {
	if f.closed.Load() {
		return nil, ErrClosed
	}
	if offset < 0 || offset%int64(AllocationGranularity()) != 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidOffset, offset)
	}
	if length < 0 || offset+int64(length) > f.size {
		return nil, ErrOutOfBounds
	}
	if length == 0 {
		return &View{}, nil
	}

	data, unmap, err := osMapView(f.m, f.handle.Fd(), offset, length)
	if err != nil {
		return nil, err
	}

	return &View{data: data, unmap: unmap}, nil
}

// Close releases the platform mapping object. It is idempotent.
// Views created from f must be closed separately.
func (f *File) Close() error {
	if f.closed.Swap(true) {
		return nil
	}
	return osCloseMapping(f.m)
}
