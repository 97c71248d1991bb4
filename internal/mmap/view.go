package mmap

import "sync/atomic"

// View is one mapped window of a File.
type View struct {
	data   []byte
	closed atomic.Bool
	unmap  func([]byte) error
}

// Bytes returns the mapped window.
// Warning: The slice is valid only until Close() is called.
func (v *View) Bytes() []byte {
	if v.closed.Load() {
		return nil
	}
	return v.data
}

// Len returns the length of the window in bytes.
func (v *View) Len() int {
	return len(v.data)
}

// Advise provides hints to the kernel about how the window will be accessed.
func (v *View) Advise(pattern AccessPattern) error {
	if v.closed.Load() {
		return ErrClosed
	}
	if v.data == nil {
		return nil
	}
	return osAdvise(v.data, pattern)
}

// Close unmaps the window. It is idempotent.
func (v *View) Close() error {
	if v.closed.Swap(true) {
		return nil
	}
	if v.unmap != nil && v.data != nil {
		return v.unmap(v.data)
	}
	return nil
}
