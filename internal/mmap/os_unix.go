//go:build unix

package mmap

import (
	"golang.org/x/sys/unix"
)

// Unix needs no per-file mapping object; every view is an independent mmap(2).
type osMapping struct{}

// AllocationGranularity returns the alignment required for view offsets.
func AllocationGranularity() int {
	return unix.Getpagesize()
}

func osOpenMapping(uintptr, int64) (osMapping, error) {
	return osMapping{}, nil
}

func osCloseMapping(osMapping) error {
	return nil
}

func osMapView(_ osMapping, fd uintptr, offset int64, length int) ([]byte, func([]byte) error, error) {
	data, err := unix.Mmap(int(fd), offset, length, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, err
	}

	return data, unix.Munmap, nil
}

func osAdvise(data []byte, pattern AccessPattern) error {
	if len(data) == 0 {
		return nil
	}

	var advice int
	switch pattern {
	case AccessSequential:
		advice = unix.MADV_SEQUENTIAL
	case AccessRandom:
		advice = unix.MADV_RANDOM
	case AccessWillNeed:
		advice = unix.MADV_WILLNEED
	case AccessDontNeed:
		advice = unix.MADV_DONTNEED
	default:
		advice = unix.MADV_NORMAL
	}

	// The hint is advisory; EINVAL usually means an alignment quirk.
	err := unix.Madvise(data, advice)
	if err == unix.EINVAL {
		return nil
	}
	return err
}
