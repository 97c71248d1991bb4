// Package logfilter scans CRLF-terminated text files line by line and
// yields the lines that match a shell-style wildcard pattern.
//
// # Quick Start
//
//	lf := logfilter.New()
//	defer lf.Close()
//
//	if err := lf.Open("app.log"); err != nil {
//	    log.Fatal(err)
//	}
//	if err := lf.SetFilter("*ERROR*"); err != nil {
//	    log.Fatal(err)
//	}
//
//	err := lf.ForEachMatchingLine(func(line []byte) {
//	    fmt.Println(string(line))
//	})
//
// # Patterns
//
// '?' matches exactly one byte and '*' matches any run of bytes, including
// none. Every other byte matches itself. Matching is byte-wise and case
// sensitive, and a pattern must match the whole line:
//
//	"?et?"   matches "meta" and "beta" but not "big"
//	"a*b"    matches "ab" and "axxb" but not "ba"
//
// # Enumeration Modes
//
//	// 1. PULL: one matching line per call, io.EOF at the end.
//	line, err := lf.NextMatchingLine()
//
//	// 2. SYNCHRONOUS: read and match on the calling goroutine.
//	err := lf.ForEachMatchingLine(fn)
//
//	// 3. PIPELINED: one goroutine reads, another matches, joined by a
//	//    bounded queue of 100 lines. Cancelling ctx stops both.
//	err := lf.ForEachMatchingLinePipelined(ctx, fn)
//
// Both enumeration modes deliver the same lines in the same order. Slices
// passed to fn are only valid for the duration of the call.
//
// # Input
//
// Files are read through a sliding memory-mapped window one allocation
// granule at a time, so peak memory does not depend on file size. Every line
// must end in CR LF; a final CR without LF is accepted. Files starting with
// a zstd or LZ4 frame header are decompressed transparently.
//
// # Errors
//
// Failures are reported with errors matching one of ErrOpen,
// ErrMalformedInput, ErrAllocation, ErrRead or ErrNotReady via errors.Is.
// Any failure after Open closes the input; callers may reopen and start
// over.
//
// # Resource Limits
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes:   64 << 20,
//	    IOLimitBytesPerSec: 100 << 20,
//	})
//	lf := logfilter.New(logfilter.WithResourceController(rc))
package logfilter
