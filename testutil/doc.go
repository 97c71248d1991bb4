// Package testutil provides testing utilities for logfilter.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random log lines and patterns,
// computing reference matches, and writing CRLF fixtures.
//
// # Random Input Generation
//
//	rng := testutil.NewRNG(seed)
//	lines := rng.Lines(1000, 40, testutil.LogAlphabet)
//	pattern := rng.Pattern(8, "ab")
//
// # Reference Matching (Ground Truth)
//
//	want := testutil.ReferenceFilter(pattern, lines)
//
// # Fixtures
//
//	path := testutil.WriteLog(t, testutil.JoinCRLF(lines))
package testutil
