package logfilter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hupe1980/logfilter/internal/pipeline"
	"github.com/hupe1980/logfilter/internal/scanner"
	"github.com/hupe1980/logfilter/internal/wildcard"
)

// Mode identifies how lines were enumerated.
type Mode int

const (
	// ModeNext is a single NextMatchingLine call.
	ModeNext Mode = iota
	// ModeSync is ForEachMatchingLine.
	ModeSync
	// ModePipelined is ForEachMatchingLinePipelined.
	ModePipelined
)

func (m Mode) String() string {
	switch m {
	case ModeNext:
		return "next"
	case ModeSync:
		return "sync"
	case ModePipelined:
		return "pipelined"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// source is a line source that can be closed.
type source interface {
	scanner.Source
	io.Closer
}

// LogFilter filters the lines of one input against a wildcard pattern.
//
// A LogFilter is NOT safe for concurrent use. In particular it must not be
// used from another goroutine while ForEachMatchingLinePipelined runs.
type LogFilter struct {
	opts options

	file    *scanner.Scanner
	stream  *scanner.StreamScanner
	src     source
	matcher *wildcard.Matcher
	path    string
}

// New returns a LogFilter with no input and no pattern.
func New(optFns ...Option) *LogFilter {
	o := applyOptions(optFns)
	lf := &LogFilter{
		opts:    o,
		matcher: wildcard.New(""),
	}

	sopts := scanner.Options{
		FS:            o.fileSystem,
		ChunkSize:     o.chunkSize,
		MaxLineLength: o.maxLineLength,
		Resource:      o.resource,
		OnFailure:     lf.reportFailure,
	}
	lf.file = scanner.New(sopts)
	lf.stream = scanner.NewStream(sopts)
	return lf
}

// Open opens the file at path, replacing any previous input. zstd and LZ4
// compressed files are decompressed transparently unless disabled with
// WithDecompression(false).
func (lf *LogFilter) Open(path string) error {
	return lf.OpenContext(context.Background(), path)
}

// OpenContext is like Open. ctx bounds IO throttling waits for the lifetime
// of the input.
func (lf *LogFilter) OpenContext(ctx context.Context, path string) error {
	start := time.Now()
	lf.closeSource()
	lf.path = path

	src, kind, err := lf.open(ctx, path)
	if err != nil {
		err = translateOpenError(path, err)
	} else {
		lf.src = src
	}

	lf.opts.metricsCollector.RecordOpen(time.Since(start), err)
	lf.opts.logger.LogOpen(ctx, path, kind, err)
	return err
}

func (lf *LogFilter) open(ctx context.Context, path string) (source, string, error) {
	if lf.opts.decompress {
		kind, err := scanner.Detect(scanner.Options{FS: lf.opts.fileSystem}, path)
		if err != nil {
			lf.reportFailure("open", err)
			return nil, "", err
		}
		if kind != scanner.CompressionNone {
			if err := lf.stream.OpenCompressed(ctx, path); err != nil {
				return nil, "", err
			}
			return lf.stream, kind.String(), nil
		}
	}

	if err := lf.file.Open(ctx, path); err != nil {
		return nil, "", err
	}
	return lf.file, "mmap", nil
}

// OpenReader reads lines from r, replacing any previous input. r is not
// closed by the LogFilter and is never decompressed.
func (lf *LogFilter) OpenReader(ctx context.Context, r io.Reader) error {
	lf.closeSource()
	lf.path = ""
	if err := lf.stream.OpenReader(ctx, r); err != nil {
		return translateError(err)
	}
	lf.src = lf.stream
	lf.opts.logger.LogOpen(ctx, "", "reader", nil)
	return nil
}

// Path returns the path passed to the last Open, or "" for OpenReader.
func (lf *LogFilter) Path() string {
	return lf.path
}

// IsOpen reports whether an input is open and has not failed.
func (lf *LogFilter) IsOpen() bool {
	return lf.src != nil && lf.src.IsOpen()
}

// Eof reports whether the whole input has been consumed.
func (lf *LogFilter) Eof() bool {
	return lf.src == nil || lf.src.Eof()
}

// Close releases the input. The pattern is kept. Close is idempotent.
func (lf *LogFilter) Close() error {
	lf.closeSource()
	return nil
}

func (lf *LogFilter) closeSource() {
	if lf.src != nil {
		_ = lf.src.Close()
		lf.src = nil
	}
}

// SetFilter compiles pattern. '?' matches exactly one byte and '*' any run
// of bytes. An empty pattern leaves the filter not ready and returns
// ErrEmptyPattern.
func (lf *LogFilter) SetFilter(pattern string) error {
	if !lf.matcher.SetPattern(pattern) {
		return ErrEmptyPattern
	}
	return nil
}

// Filter returns the simplified pattern, or "" if none is set.
func (lf *LogFilter) Filter() string {
	return lf.matcher.Pattern()
}

// Match reports whether line matches the current pattern.
func (lf *LogFilter) Match(line []byte) bool {
	return lf.matcher.IsReady() && lf.matcher.Match(line)
}

func (lf *LogFilter) ready() error {
	if !lf.matcher.IsReady() {
		return fmt.Errorf("%w: no pattern set", ErrNotReady)
	}
	if !lf.IsOpen() {
		return fmt.Errorf("%w: no open input", ErrNotReady)
	}
	return nil
}

// NextMatchingLine returns the next line matching the pattern, without its
// terminator. The slice is valid until the next call on the LogFilter.
// It returns io.EOF once the input is exhausted. Any other error closes the
// input.
func (lf *LogFilter) NextMatchingLine() ([]byte, error) {
	if err := lf.ready(); err != nil {
		return nil, err
	}
	start := time.Now()

	var read int64
	line, err := lf.next(&read)

	matched := int64(0)
	if err == nil {
		matched = 1
	}
	lf.record(context.Background(), ModeNext, read, matched, start, err)
	return line, err
}

// next returns the next matching line, counting every line read into read.
func (lf *LogFilter) next(read *int64) ([]byte, error) {
	for {
		line, err := lf.src.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, translateError(err)
		}
		*read++
		if lf.matcher.Match(line) {
			return line, nil
		}
	}
}

// NextMatchingLineInto copies the next matching line into buf and returns
// the number of bytes copied. Lines longer than buf are truncated.
func (lf *LogFilter) NextMatchingLineInto(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, ErrInvalidBuffer
	}
	line, err := lf.NextMatchingLine()
	if err != nil {
		return 0, err
	}
	return copy(buf, line), nil
}

// ForEachMatchingLine calls fn with every remaining matching line in input
// order on the calling goroutine. line is valid only for the duration of the
// call. It returns nil once the input is exhausted.
func (lf *LogFilter) ForEachMatchingLine(fn func(line []byte)) error {
	if err := lf.ready(); err != nil {
		return err
	}
	start := time.Now()

	var read, matched int64
	var err error
	for {
		var line []byte
		line, err = lf.next(&read)
		if err != nil {
			break
		}
		matched++
		fn(line)
	}
	if errors.Is(err, io.EOF) {
		err = nil
	}

	lf.record(context.Background(), ModeSync, read, matched, start, err)
	return err
}

// ForEachMatchingLinePipelined is like ForEachMatchingLine but reads on one
// goroutine and matches on another, connected by a bounded queue. fn is
// called in input order on the matching goroutine. Cancelling ctx stops both
// and returns ctx.Err(); lines still queued are discarded.
func (lf *LogFilter) ForEachMatchingLinePipelined(ctx context.Context, fn func(line []byte)) error {
	if err := lf.ready(); err != nil {
		return err
	}
	start := time.Now()

	p := pipeline.New(pipeline.Config{
		Capacity: lf.opts.queueCapacity,
		Resource: lf.opts.resource,
		OnDepth:  lf.opts.metricsCollector.RecordQueueDepth,
		Logger:   lf.opts.logger.Logger,
	})

	src := lf.src
	var read, matched int64
	produce := func() ([]byte, error) {
		line, err := src.ReadLine()
		if err == nil {
			read++
		}
		return line, err
	}
	err := p.Run(ctx, produce, func(line []byte) {
		if lf.matcher.Match(line) {
			matched++
			fn(line)
		}
	})
	err = translateError(err)

	lf.record(ctx, ModePipelined, read, matched, start, err)
	return err
}

func (lf *LogFilter) record(ctx context.Context, mode Mode, lines, matched int64, start time.Time, err error) {
	if errors.Is(err, io.EOF) {
		err = nil
	}
	lf.opts.metricsCollector.RecordEnumerate(mode, lines, matched, time.Since(start), err)
	if mode != ModeNext {
		lf.opts.logger.LogEnumerate(ctx, mode.String(), lines, matched, err)
	}
}

func (lf *LogFilter) reportFailure(msg string, err error) {
	lf.opts.metricsCollector.RecordFailure(msg)
	lf.opts.logger.LogFailure(context.Background(), msg, err)
	if lf.opts.onFailure != nil {
		lf.opts.onFailure(msg)
	}
}
