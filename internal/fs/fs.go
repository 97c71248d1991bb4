package fs

import (
	"io"
	"os"
)

// File represents an open, read-only input file.
type File interface {
	io.ReadCloser
	io.ReaderAt
	Fd() uintptr
	Stat() (os.FileInfo, error)
}

// FileSystem abstracts the file system operations the scanners need.
type FileSystem interface {
	Open(name string) (File, error)
	Stat(name string) (os.FileInfo, error)
}

// LocalFS implements FileSystem using the local os package.
type LocalFS struct{}

// Open opens name for shared, read-only access.
func (LocalFS) Open(name string) (File, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (LocalFS) Stat(name string) (os.FileInfo, error) { return os.Stat(name) }

// Default is the default local file system.
var Default FileSystem = LocalFS{}
