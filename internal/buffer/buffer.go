// Package buffer provides the growable line buffer used by the scanners.
package buffer

import (
	"errors"

	"github.com/hupe1980/logfilter/resource"
)

// DefaultCapacity is the capacity of the first allocation.
const DefaultCapacity = 256

// ErrGrowth is returned when the buffer may not grow any further.
var ErrGrowth = errors.New("buffer: growth refused")

// ByteBuffer is an append-only byte sequence that keeps its capacity across
// Reset calls. Growth doubles the capacity and is charged against an optional
// resource.Controller. A ByteBuffer is not safe for concurrent use.
type ByteBuffer struct {
	data    []byte
	maxLen  int
	rc      *resource.Controller
	charged int64
}

// New returns an empty buffer. maxLen <= 0 means no cap on the length;
// rc may be nil.
func New(maxLen int, rc *resource.Controller) *ByteBuffer {
	return &ByteBuffer{maxLen: maxLen, rc: rc}
}

// Append adds one byte. On failure the contents are unchanged.
func (b *ByteBuffer) Append(c byte) error {
	if b.maxLen > 0 && len(b.data) >= b.maxLen {
		return ErrGrowth
	}
	if len(b.data) == cap(b.data) {
		if err := b.grow(); err != nil {
			return err
		}
	}
	b.data = append(b.data, c)
	return nil
}

func (b *ByteBuffer) grow() error {
	newCap := DefaultCapacity
	if cap(b.data) > 0 {
		newCap = 2 * cap(b.data)
	}
	if b.maxLen > 0 {
		newCap = min(newCap, b.maxLen)
	}

	delta := int64(newCap - cap(b.data))
	if err := b.rc.AcquireMemory(delta); err != nil {
		return errors.Join(ErrGrowth, err)
	}
	b.charged += delta

	grown := make([]byte, len(b.data), newCap)
	copy(grown, b.data)
	b.data = grown
	return nil
}

// Len returns the number of bytes held.
func (b *ByteBuffer) Len() int {
	return len(b.data)
}

// Cap returns the current capacity.
func (b *ByteBuffer) Cap() int {
	return cap(b.data)
}

// Bytes returns the contents. The slice aliases the buffer and is valid
// until the next Append, Reset or Invalidate.
func (b *ByteBuffer) Bytes() []byte {
	return b.data
}

// Reset sets the length to zero and keeps the capacity.
func (b *ByteBuffer) Reset() {
	b.data = b.data[:0]
}

// Invalidate releases the capacity and returns its budget.
func (b *ByteBuffer) Invalidate() {
	b.data = nil
	b.rc.ReleaseMemory(b.charged)
	b.charged = 0
}
