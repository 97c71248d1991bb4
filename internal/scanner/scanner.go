package scanner

import (
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/logfilter/internal/buffer"
	"github.com/hupe1980/logfilter/internal/fs"
	"github.com/hupe1980/logfilter/resource"
)

// Source produces successive lines of one input.
type Source interface {
	// ReadLine returns the next line without its terminator, io.EOF once all
	// input is consumed, or an error after which the source is closed.
	ReadLine() ([]byte, error)
	Eof() bool
	IsOpen() bool
	// Reset releases the input. It is idempotent.
	Reset()
	// Lines returns the number of lines returned since open.
	Lines() int64
}

// FailureFunc receives a short description of an unrecoverable condition.
// It is for observability only.
type FailureFunc func(msg string, err error)

// Options configures a source.
type Options struct {
	// FS opens inputs. Defaults to fs.Default.
	FS fs.FileSystem

	// ChunkSize overrides the mapping window. It must be a positive multiple
	// of mmap.AllocationGranularity. 0 selects the granularity.
	ChunkSize int

	// MaxLineLength caps a single line in bytes. 0 means unlimited.
	MaxLineLength int

	// Resource charges line buffer growth and throttles reads. May be nil.
	Resource *resource.Controller

	// OnFailure is called before a source invalidates itself. May be nil.
	OnFailure FailureFunc
}

func (o Options) fileSystem() fs.FileSystem {
	if o.FS == nil {
		return fs.Default
	}
	return o.FS
}

func (o Options) report(msg string, err error) {
	if o.OnFailure != nil {
		o.OnFailure(msg, err)
	}
}

// byteStream is what scanLine needs from a source.
type byteStream interface {
	atEOF() (bool, error)
	readByte() (byte, error)
}

// scanLine reads one CRLF-terminated line into line. On failure it returns a
// short description for the failure hook and an error wrapping one of
// ErrMalformed, ErrAllocation or ErrRead.
func scanLine(src byteStream, line *buffer.ByteBuffer) (string, error) {
	line.Reset()
	for {
		eof, err := src.atEOF()
		if err != nil {
			return "read failed", fmt.Errorf("%w: %w", ErrRead, err)
		}
		if eof {
			return "unterminated line at end of input", ErrMalformed
		}

		c, err := src.readByte()
		if err != nil {
			return "read failed", fmt.Errorf("%w: %w", ErrRead, err)
		}

		if c == '\r' {
			eof, err := src.atEOF()
			if err != nil {
				return "read failed", fmt.Errorf("%w: %w", ErrRead, err)
			}
			if eof {
				return "", nil
			}
			next, err := src.readByte()
			if err != nil {
				return "read failed", fmt.Errorf("%w: %w", ErrRead, err)
			}
			if next != '\n' {
				return "carriage return not followed by line feed", ErrMalformed
			}
			return "", nil
		}

		if err := line.Append(c); err != nil {
			return "bad alloc", fmt.Errorf("%w: %w", ErrAllocation, err)
		}
	}
}

// lineBytes returns the buffer contents, never nil for a successful read.
func lineBytes(line *buffer.ByteBuffer) []byte {
	if b := line.Bytes(); b != nil {
		return b
	}
	return []byte{}
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}
