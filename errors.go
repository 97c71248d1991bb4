package logfilter

import (
	"errors"
	"fmt"

	"github.com/hupe1980/logfilter/internal/pipeline"
	"github.com/hupe1980/logfilter/internal/scanner"
)

var (
	// ErrOpen is returned when the input cannot be opened, sized or mapped.
	ErrOpen = errors.New("open failed")

	// ErrMalformedInput is returned when a carriage return is not followed by
	// a line feed, or the input ends inside a line.
	ErrMalformedInput = errors.New("malformed input")

	// ErrAllocation is returned when a line buffer or an in-flight copy may
	// not grow.
	ErrAllocation = errors.New("allocation failed")

	// ErrRead is returned when reading fails after a successful open.
	ErrRead = errors.New("read failed")

	// ErrNotReady is returned when no input is open or no pattern is set.
	ErrNotReady = errors.New("filter not ready")

	// ErrEmptyPattern is returned by SetFilter for an empty pattern.
	ErrEmptyPattern = fmt.Errorf("%w: empty pattern", ErrNotReady)

	// ErrInvalidBuffer is returned by NextMatchingLineInto for an empty buffer.
	ErrInvalidBuffer = errors.New("invalid buffer")
)

// OpenError records the path that could not be opened.
//
// errors.Is(err, ErrOpen) holds for every OpenError. The underlying cause
// can be accessed via errors.Unwrap chains.
type OpenError struct {
	Path  string
	cause error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open %s: %v", e.Path, e.cause)
}

func (e *OpenError) Unwrap() []error { return []error{ErrOpen, e.cause} }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, scanner.ErrMalformed):
		return fmt.Errorf("%w: %w", ErrMalformedInput, err)
	case errors.Is(err, scanner.ErrAllocation), errors.Is(err, pipeline.ErrAllocation):
		return fmt.Errorf("%w: %w", ErrAllocation, err)
	case errors.Is(err, scanner.ErrRead):
		return fmt.Errorf("%w: %w", ErrRead, err)
	case errors.Is(err, scanner.ErrClosed):
		return fmt.Errorf("%w: %w", ErrNotReady, err)
	}

	return err
}

func translateOpenError(path string, err error) error {
	if err == nil {
		return nil
	}
	return &OpenError{Path: path, cause: err}
}
