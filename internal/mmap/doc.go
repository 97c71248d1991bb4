// Package mmap provides chunked, read-only memory-mapped file access.
//
// # Overview
//
// Log files can be far larger than the address space a process is willing to
// dedicate to a single mapping. A [File] therefore never maps the whole file:
// callers map one window ([View]) at a time, unmap it, and move on.
//
// # Usage
//
//	f, err := mmap.NewFile(handle)
//	if err != nil { ... }
//	defer f.Close()
//
//	gran := int64(mmap.AllocationGranularity())
//	for off := int64(0); off < f.Size(); off += gran {
//	    v, err := f.Map(off, int(min(gran, f.Size()-off)))
//	    if err != nil { ... }
//	    _ = v.Advise(mmap.AccessSequential)
//	    consume(v.Bytes())
//	    v.Close()
//	}
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) per view, madvise(2) for access hints
//   - Windows: one CreateFileMapping per File, MapViewOfFile per view (hints are a no-op)
//
// View offsets must be multiples of [AllocationGranularity].
//
// # Thread Safety
//
// Close on both File and View is idempotent and guarded by atomics. A View must
// not be read after Close returns.
package mmap
