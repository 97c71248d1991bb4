// Package fs provides filesystem abstractions for testability and fault injection.
//
// The package defines two key interfaces:
//
//   - [File]: an open, read-only input with a descriptor usable for mapping
//   - [FileSystem]: opens and stats inputs
//
// # Implementations
//
//   - [LocalFS]: Production implementation using standard os package
//   - [FaultyFS]: Test utility for fault injection (open, stat and read failures)
//
// # Usage
//
// Production code should use fs.Default (which is [LocalFS]):
//
//	file, err := fs.Default.Open(path)
//
// Tests can inject [FaultyFS] to simulate failures:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("app.log", fs.Fault{FailOnStat: true})
//	// inject ffs into the component under test
//
// This package intentionally does NOT include context.Context parameters.
// Local file operations are not interruptible at the syscall level.
package fs
