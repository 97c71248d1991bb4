package scanner

import (
	"context"
	"fmt"
	"io"

	"github.com/hupe1980/logfilter/internal/buffer"
	"github.com/hupe1980/logfilter/internal/fs"
	"github.com/hupe1980/logfilter/internal/mmap"
)

// Scanner reads lines from a file through a sliding memory-mapped window.
//
// Invariants while open: pos <= size, and the current view (if any) covers
// [offset-len(view), offset) of the file. A Scanner is NOT safe for
// concurrent use.
type Scanner struct {
	opts      Options
	chunkSize int

	ctx    context.Context
	file   fs.File
	mapped *mmap.File
	view   *mmap.View
	chunk  []byte // unread remainder of view

	size   int64
	pos    int64
	offset int64 // file offset of the next chunk
	open   bool
	lines  int64

	line *buffer.ByteBuffer
}

var _ Source = (*Scanner)(nil)

// New returns a closed Scanner.
func New(opts Options) *Scanner {
	return &Scanner{
		opts: opts,
		line: buffer.New(opts.MaxLineLength, opts.Resource),
	}
}

// Open opens path for shared read, fixes its size and maps the first chunk.
// ctx bounds IO throttling for the whole scan. On failure the Scanner is left
// closed.
func (s *Scanner) Open(ctx context.Context, path string) error {
	s.Reset()

	gran := mmap.AllocationGranularity()
	chunkSize := s.opts.ChunkSize
	if chunkSize == 0 {
		chunkSize = gran
	}
	if chunkSize < 0 || chunkSize%gran != 0 {
		err := fmt.Errorf("%w: %w: %d is not a multiple of %d", ErrOpen, ErrInvalidChunkSize, chunkSize, gran)
		s.opts.report("invalid chunk size", err)
		return err
	}
	s.chunkSize = chunkSize
	s.ctx = ctx

	f, err := s.opts.fileSystem().Open(path)
	if err != nil {
		return s.fail("open", fmt.Errorf("%w: %w", ErrOpen, err))
	}
	s.file = f

	mapped, err := mmap.NewFile(f)
	if err != nil {
		return s.fail("create mapping", fmt.Errorf("%w: %s: %w", ErrOpen, path, err))
	}
	s.mapped = mapped
	s.size = mapped.Size()
	s.open = true

	if s.size > 0 {
		if err := s.nextChunk(); err != nil {
			return s.fail("map view", fmt.Errorf("%w: %s: %w", ErrOpen, path, err))
		}
	}
	return nil
}

// ReadLine implements Source.
func (s *Scanner) ReadLine() ([]byte, error) {
	if !s.open {
		return nil, ErrClosed
	}
	if s.Eof() {
		return nil, io.EOF
	}
	if msg, err := scanLine(s, s.line); err != nil {
		return nil, s.fail(msg, err)
	}
	s.lines++
	return lineBytes(s.line), nil
}

// Eof reports whether every byte of the file has been consumed.
func (s *Scanner) Eof() bool {
	return s.pos >= s.size
}

// IsOpen reports whether the Scanner holds an open file.
func (s *Scanner) IsOpen() bool {
	return s.open
}

// Lines implements Source.
func (s *Scanner) Lines() int64 {
	return s.lines
}

// Offset returns the number of bytes consumed so far.
func (s *Scanner) Offset() int64 {
	return s.pos
}

// Size returns the file size captured at open.
func (s *Scanner) Size() int64 {
	return s.size
}

// ChunkSize returns the mapping window in use.
func (s *Scanner) ChunkSize() int {
	return s.chunkSize
}

// Reset releases the view, the mapping and the file. It is idempotent.
func (s *Scanner) Reset() {
	s.unmapView()
	if s.mapped != nil {
		_ = s.mapped.Close()
		s.mapped = nil
	}
	if s.file != nil {
		_ = s.file.Close()
		s.file = nil
	}
	s.open = false
	s.size = 0
	s.pos = 0
	s.offset = 0
	s.lines = 0
	s.line.Reset()
}

// Close resets the Scanner and releases the line buffer.
func (s *Scanner) Close() error {
	s.Reset()
	s.line.Invalidate()
	return nil
}

func (s *Scanner) fail(msg string, err error) error {
	s.opts.report(msg, err)
	s.Reset()
	return err
}

func (s *Scanner) atEOF() (bool, error) {
	return s.Eof(), nil
}

// readByte returns the next byte, remapping when the current chunk is
// exhausted. Callers must check atEOF first.
func (s *Scanner) readByte() (byte, error) {
	if len(s.chunk) == 0 {
		if err := s.nextChunk(); err != nil {
			return 0, err
		}
	}
	c := s.chunk[0]
	s.chunk = s.chunk[1:]
	s.pos++
	return c, nil
}

func (s *Scanner) nextChunk() error {
	s.unmapView()

	length := int(min(int64(s.chunkSize), s.size-s.offset))
	if length <= 0 {
		return io.ErrUnexpectedEOF
	}
	if err := s.opts.Resource.AcquireIO(s.ctx, length); err != nil {
		return err
	}

	v, err := s.mapped.Map(s.offset, length)
	if err != nil {
		return err
	}
	_ = v.Advise(mmap.AccessSequential)

	s.view = v
	s.chunk = v.Bytes()
	s.offset += int64(length)
	return nil
}

func (s *Scanner) unmapView() {
	if s.view != nil {
		_ = s.view.Close()
		s.view = nil
	}
	s.chunk = nil
}
