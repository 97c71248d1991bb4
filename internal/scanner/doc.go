// Package scanner reads CRLF-terminated lines from files.
//
// Two sources share one contract ([Source]):
//
//   - [Scanner] maps the file one chunk at a time (chunk size is the platform
//     allocation granularity) and remaps transparently as bytes are consumed,
//     so peak memory is bounded regardless of file size.
//   - [StreamScanner] reads from an io.Reader, typically a zstd or LZ4
//     decompressor opened by [StreamScanner.OpenCompressed].
//
// # Line terminators
//
// A line ends at a carriage return. The carriage return must be followed by a
// line feed or be the last byte of the input. Anything else, and an input
// that ends inside an unterminated line, is malformed: the scan aborts, the
// source resets itself and ReadLine returns [ErrMalformed].
//
// # Borrowed lines
//
// The slice returned by ReadLine aliases an internal buffer that is
// overwritten by the next ReadLine. Copy it to retain it.
package scanner
