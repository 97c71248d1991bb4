package scanner

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/hupe1980/logfilter/internal/buffer"
	"github.com/hupe1980/logfilter/resource"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies the framing of an input file.
type Compression int

const (
	// CompressionNone is plain text.
	CompressionNone Compression = iota
	// CompressionZstd is a Zstandard frame.
	CompressionZstd
	// CompressionLZ4 is an LZ4 frame.
	CompressionLZ4
)

func (c Compression) String() string {
	switch c {
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return "none"
	}
}

var (
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	lz4Magic  = []byte{0x04, 0x22, 0x4D, 0x18}
)

const streamBufferSize = 64 * 1024

// Detect sniffs the frame header of the file at path. Files shorter than a
// header are reported as CompressionNone.
func Detect(opts Options, path string) (Compression, error) {
	f, err := opts.fileSystem().Open(path)
	if err != nil {
		return CompressionNone, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	defer f.Close()

	magic := make([]byte, 4)
	n, err := f.ReadAt(magic, 0)
	if n < len(magic) {
		if err != nil && !isEOF(err) {
			return CompressionNone, fmt.Errorf("%w: %w", ErrOpen, err)
		}
		return CompressionNone, nil
	}
	return detectMagic(magic), nil
}

func detectMagic(magic []byte) Compression {
	switch {
	case bytes.Equal(magic, zstdMagic):
		return CompressionZstd
	case bytes.Equal(magic, lz4Magic):
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// StreamScanner reads lines from an io.Reader. It has the same terminator
// rules and error kinds as Scanner. A StreamScanner is NOT safe for
// concurrent use.
type StreamScanner struct {
	opts    Options
	r       *bufio.Reader
	closers []io.Closer
	open    bool
	lines   int64
	line    *buffer.ByteBuffer
}

var _ Source = (*StreamScanner)(nil)

// NewStream returns a closed StreamScanner.
func NewStream(opts Options) *StreamScanner {
	return &StreamScanner{
		opts: opts,
		line: buffer.New(opts.MaxLineLength, opts.Resource),
	}
}

// OpenCompressed opens a zstd or LZ4 compressed file. Reads of the compressed
// bytes are throttled through the configured resource controller.
func (s *StreamScanner) OpenCompressed(ctx context.Context, path string) error {
	s.Reset()

	kind, err := Detect(s.opts, path)
	if err != nil {
		return s.fail("open", err)
	}
	if kind == CompressionNone {
		return s.fail("unknown compression", fmt.Errorf("%w: %w: %s", ErrOpen, ErrNotCompressed, path))
	}

	f, err := s.opts.fileSystem().Open(path)
	if err != nil {
		return s.fail("open", fmt.Errorf("%w: %w", ErrOpen, err))
	}
	s.closers = append(s.closers, f)

	src := resource.NewRateLimitedReader(ctx, f, s.opts.Resource)

	var r io.Reader
	switch kind {
	case CompressionZstd:
		dec, err := zstd.NewReader(src, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return s.fail("zstd decoder", fmt.Errorf("%w: %w", ErrOpen, err))
		}
		rc := dec.IOReadCloser()
		s.closers = append(s.closers, rc)
		r = rc
	case CompressionLZ4:
		r = lz4.NewReader(src)
	}

	s.start(r)
	return nil
}

// OpenReader scans r, which the StreamScanner does not close.
func (s *StreamScanner) OpenReader(ctx context.Context, r io.Reader) error {
	s.Reset()
	s.start(resource.NewRateLimitedReader(ctx, r, s.opts.Resource))
	return nil
}

func (s *StreamScanner) start(r io.Reader) {
	s.r = bufio.NewReaderSize(r, streamBufferSize)
	s.open = true
}

// ReadLine implements Source.
func (s *StreamScanner) ReadLine() ([]byte, error) {
	if !s.open {
		return nil, ErrClosed
	}
	eof, err := s.atEOF()
	if err != nil {
		return nil, s.fail("read failed", fmt.Errorf("%w: %w", ErrRead, err))
	}
	if eof {
		return nil, io.EOF
	}
	if msg, err := scanLine(s, s.line); err != nil {
		return nil, s.fail(msg, err)
	}
	s.lines++
	return lineBytes(s.line), nil
}

// Eof reports whether the input is exhausted. A pending read error also
// reports true; ReadLine surfaces it.
func (s *StreamScanner) Eof() bool {
	eof, err := s.atEOF()
	return eof || err != nil
}

// IsOpen reports whether the StreamScanner holds an input.
func (s *StreamScanner) IsOpen() bool {
	return s.open
}

// Lines implements Source.
func (s *StreamScanner) Lines() int64 {
	return s.lines
}

// Reset releases the input. It is idempotent.
func (s *StreamScanner) Reset() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		_ = s.closers[i].Close()
	}
	s.closers = s.closers[:0]
	s.r = nil
	s.open = false
	s.lines = 0
	s.line.Reset()
}

// Close resets the StreamScanner and releases the line buffer.
func (s *StreamScanner) Close() error {
	s.Reset()
	s.line.Invalidate()
	return nil
}

func (s *StreamScanner) fail(msg string, err error) error {
	s.opts.report(msg, err)
	s.Reset()
	return err
}

func (s *StreamScanner) atEOF() (bool, error) {
	if s.r == nil {
		return true, nil
	}
	if _, err := s.r.Peek(1); err != nil {
		if isEOF(err) {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

func (s *StreamScanner) readByte() (byte, error) {
	return s.r.ReadByte()
}
