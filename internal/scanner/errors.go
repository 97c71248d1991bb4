package scanner

import "errors"

var (
	// ErrOpen is returned when the input cannot be opened, sized or mapped.
	ErrOpen = errors.New("scanner: open failed")

	// ErrMalformed is returned when the line terminator rule is violated or
	// the input ends inside a line.
	ErrMalformed = errors.New("scanner: malformed input")

	// ErrAllocation is returned when the line buffer may not grow.
	ErrAllocation = errors.New("scanner: line buffer allocation failed")

	// ErrRead is returned when reading or remapping fails mid-scan.
	ErrRead = errors.New("scanner: read failed")

	// ErrClosed is returned by ReadLine on a source that is not open.
	ErrClosed = errors.New("scanner: not open")

	// ErrInvalidChunkSize is returned when a chunk size override is not a
	// positive multiple of the allocation granularity.
	ErrInvalidChunkSize = errors.New("scanner: invalid chunk size")

	// ErrNotCompressed is returned by OpenCompressed for inputs without a
	// known compression frame header.
	ErrNotCompressed = errors.New("scanner: input is not compressed")
)
