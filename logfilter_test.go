package logfilter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hupe1980/logfilter/internal/fs"
	"github.com/hupe1980/logfilter/internal/mmap"
	"github.com/hupe1980/logfilter/resource"
	"github.com/hupe1980/logfilter/testutil"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLog(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func crlf(lines ...string) []byte {
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(l)
		sb.WriteString("\r\n")
	}
	return []byte(sb.String())
}

func openFilter(t *testing.T, path, pattern string, opts ...Option) *LogFilter {
	t.Helper()
	lf := New(opts...)
	t.Cleanup(func() { _ = lf.Close() })
	require.NoError(t, lf.Open(path))
	require.NoError(t, lf.SetFilter(pattern))
	return lf
}

func collect(t *testing.T, lf *LogFilter) []string {
	t.Helper()
	var got []string
	require.NoError(t, lf.ForEachMatchingLine(func(line []byte) {
		got = append(got, string(line))
	}))
	return got
}

func collectPipelined(t *testing.T, lf *LogFilter) []string {
	t.Helper()
	var got []string
	require.NoError(t, lf.ForEachMatchingLinePipelined(context.Background(), func(line []byte) {
		got = append(got, string(line))
	}))
	return got
}

func TestLogFilter(t *testing.T) {
	t.Run("QuestionMark", func(t *testing.T) {
		path := writeLog(t, "app.log", crlf("meta", "beta", "big"))
		lf := openFilter(t, path, "?et?")
		assert.Equal(t, []string{"meta", "beta"}, collect(t, lf))
	})

	t.Run("Suffix", func(t *testing.T) {
		path := writeLog(t, "app.log", crlf("alpha", "beta", "gamma"))

		lf := openFilter(t, path, "*ma")
		assert.Equal(t, []string{"gamma"}, collect(t, lf))

		// Every line ending in 'a' matches "*a".
		lf = openFilter(t, path, "*a")
		assert.Equal(t, []string{"alpha", "beta", "gamma"}, collect(t, lf))
	})

	t.Run("StarMatchesEmptyLine", func(t *testing.T) {
		path := writeLog(t, "app.log", crlf("", "x", ""))
		lf := openFilter(t, path, "***")
		assert.Equal(t, "*", lf.Filter())
		assert.Equal(t, []string{"", "x", ""}, collect(t, lf))
	})

	t.Run("NoMatches", func(t *testing.T) {
		path := writeLog(t, "app.log", crlf("alpha", "beta"))
		lf := openFilter(t, path, "zeta")
		assert.Empty(t, collect(t, lf))
		assert.True(t, lf.Eof())
	})

	t.Run("EmptyFile", func(t *testing.T) {
		path := writeLog(t, "empty.log", nil)
		lf := openFilter(t, path, "*")
		assert.True(t, lf.IsOpen())
		assert.True(t, lf.Eof())
		assert.Empty(t, collect(t, lf))
		assert.Empty(t, collectPipelined(t, lf))
	})

	t.Run("TrailingCarriageReturn", func(t *testing.T) {
		path := writeLog(t, "app.log", []byte("one\r\ntwo\r"))
		lf := openFilter(t, path, "*")
		assert.Equal(t, []string{"one", "two"}, collect(t, lf))
	})
}

func TestLogFilter_NextMatchingLine(t *testing.T) {
	path := writeLog(t, "app.log", crlf("alpha", "beta", "gamma"))
	lf := openFilter(t, path, "*ma")

	line, err := lf.NextMatchingLine()
	require.NoError(t, err)
	assert.Equal(t, "gamma", string(line))

	_, err = lf.NextMatchingLine()
	assert.ErrorIs(t, err, io.EOF)
	_, err = lf.NextMatchingLine()
	assert.ErrorIs(t, err, io.EOF)
}

func TestLogFilter_NextMatchingLineInto(t *testing.T) {
	path := writeLog(t, "app.log", crlf("alpha", "ab"))
	lf := openFilter(t, path, "a*")

	_, err := lf.NextMatchingLineInto(nil)
	assert.ErrorIs(t, err, ErrInvalidBuffer)

	buf := make([]byte, 3)
	n, err := lf.NextMatchingLineInto(buf)
	require.NoError(t, err)
	assert.Equal(t, "alp", string(buf[:n]))

	n, err = lf.NextMatchingLineInto(buf)
	require.NoError(t, err)
	assert.Equal(t, "ab", string(buf[:n]))

	_, err = lf.NextMatchingLineInto(buf)
	assert.ErrorIs(t, err, io.EOF)
}

func TestLogFilter_NotReady(t *testing.T) {
	path := writeLog(t, "app.log", crlf("alpha"))

	t.Run("NoInput", func(t *testing.T) {
		lf := New()
		require.NoError(t, lf.SetFilter("*"))

		_, err := lf.NextMatchingLine()
		assert.ErrorIs(t, err, ErrNotReady)
		assert.ErrorIs(t, lf.ForEachMatchingLine(func([]byte) {}), ErrNotReady)
		assert.ErrorIs(t, lf.ForEachMatchingLinePipelined(context.Background(), func([]byte) {}), ErrNotReady)
	})

	t.Run("NoPattern", func(t *testing.T) {
		lf := New()
		require.NoError(t, lf.Open(path))
		defer lf.Close()

		_, err := lf.NextMatchingLine()
		assert.ErrorIs(t, err, ErrNotReady)
		assert.ErrorIs(t, lf.ForEachMatchingLine(func([]byte) {}), ErrNotReady)
	})

	t.Run("EmptyPattern", func(t *testing.T) {
		lf := New()
		err := lf.SetFilter("")
		assert.ErrorIs(t, err, ErrEmptyPattern)
		assert.ErrorIs(t, err, ErrNotReady)
		assert.Empty(t, lf.Filter())
	})

	t.Run("EmptyPatternClearsPrevious", func(t *testing.T) {
		lf := New()
		require.NoError(t, lf.SetFilter("a*"))
		require.Error(t, lf.SetFilter(""))
		require.NoError(t, lf.Open(path))
		defer lf.Close()

		_, err := lf.NextMatchingLine()
		assert.ErrorIs(t, err, ErrNotReady)
	})

	t.Run("AfterClose", func(t *testing.T) {
		lf := openFilter(t, path, "*")
		require.NoError(t, lf.Close())
		require.NoError(t, lf.Close())
		assert.False(t, lf.IsOpen())

		_, err := lf.NextMatchingLine()
		assert.ErrorIs(t, err, ErrNotReady)
	})
}

func TestLogFilter_OpenErrors(t *testing.T) {
	t.Run("Missing", func(t *testing.T) {
		var msgs []string
		lf := New(WithFailureHook(func(msg string) { msgs = append(msgs, msg) }))

		path := filepath.Join(t.TempDir(), "missing.log")
		err := lf.Open(path)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrOpen)
		assert.ErrorIs(t, err, os.ErrNotExist)

		var oe *OpenError
		require.ErrorAs(t, err, &oe)
		assert.Equal(t, path, oe.Path)
		assert.False(t, lf.IsOpen())
		assert.NotEmpty(t, msgs)
	})

	t.Run("MissingWithoutDecompression", func(t *testing.T) {
		lf := New(WithDecompression(false))
		err := lf.Open(filepath.Join(t.TempDir(), "missing.log"))
		assert.ErrorIs(t, err, ErrOpen)
	})

	t.Run("InjectedStat", func(t *testing.T) {
		path := writeLog(t, "app.log", crlf("alpha"))
		faulty := fs.NewFaultyFS(nil)
		faulty.AddRule("app.log", fs.Fault{FailOnStat: true, FailAfterRead: -1})

		lf := New(WithFileSystem(faulty))
		err := lf.Open(path)
		assert.ErrorIs(t, err, ErrOpen)
		assert.ErrorIs(t, err, fs.ErrInjected)
		assert.False(t, lf.IsOpen())
	})

	t.Run("InvalidChunkSize", func(t *testing.T) {
		path := writeLog(t, "app.log", crlf("alpha"))
		lf := New(WithChunkSize(mmap.AllocationGranularity() + 1))
		assert.ErrorIs(t, lf.Open(path), ErrOpen)
	})

	t.Run("FailedOpenClosesPrevious", func(t *testing.T) {
		path := writeLog(t, "app.log", crlf("alpha"))
		lf := openFilter(t, path, "*")
		require.Error(t, lf.Open(filepath.Join(t.TempDir(), "missing.log")))
		assert.False(t, lf.IsOpen())
	})
}

func TestLogFilter_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
		reason  string
	}{
		{"BareCarriageReturn", "ok\r\nbad\rX\r\n", []string{"ok"}, "carriage return not followed by line feed"},
		{"MissingTerminator", "ok\r\nlast", []string{"ok"}, "unterminated line at end of input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var msgs []string
			path := writeLog(t, "app.log", []byte(tt.content))
			lf := openFilter(t, path, "*", WithFailureHook(func(msg string) { msgs = append(msgs, msg) }))

			var got []string
			err := lf.ForEachMatchingLine(func(line []byte) { got = append(got, string(line)) })
			assert.ErrorIs(t, err, ErrMalformedInput)
			assert.NotErrorIs(t, err, ErrAllocation)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, []string{tt.reason}, msgs)
			assert.False(t, lf.IsOpen())

			_, err = lf.NextMatchingLine()
			assert.ErrorIs(t, err, ErrNotReady)
		})
	}
}

func TestLogFilter_Allocation(t *testing.T) {
	t.Run("MaxLineLength", func(t *testing.T) {
		var msgs []string
		path := writeLog(t, "app.log", crlf("abc", "toolong", "x"))
		lf := openFilter(t, path, "*",
			WithMaxLineLength(4),
			WithFailureHook(func(msg string) { msgs = append(msgs, msg) }),
		)

		var got []string
		err := lf.ForEachMatchingLine(func(line []byte) { got = append(got, string(line)) })
		assert.ErrorIs(t, err, ErrAllocation)
		assert.NotErrorIs(t, err, ErrMalformedInput)
		assert.Equal(t, []string{"abc"}, got)
		assert.Equal(t, []string{"bad alloc"}, msgs)
		assert.False(t, lf.IsOpen())
	})

	t.Run("MemoryLimit", func(t *testing.T) {
		path := writeLog(t, "app.log", crlf(strings.Repeat("x", 1000)))
		lf := openFilter(t, path, "*", WithMemoryLimit(300))

		_, err := lf.NextMatchingLine()
		assert.ErrorIs(t, err, ErrAllocation)
		assert.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
	})

	t.Run("ReleasedOnClose", func(t *testing.T) {
		rc := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 20})
		path := writeLog(t, "app.log", crlf("alpha", "beta"))
		lf := openFilter(t, path, "*", WithResourceController(rc))

		assert.Len(t, collectPipelined(t, lf), 2)
		assert.Positive(t, rc.MemoryUsage(), "line buffer stays charged while open")
		require.NoError(t, lf.Close())
		assert.Zero(t, rc.MemoryUsage())
	})
}

func TestLogFilter_ChunkBoundary(t *testing.T) {
	gran := mmap.AllocationGranularity()

	// Lines of 14 bytes plus CRLF; pad the last line so the file is exactly
	// two chunks long.
	var lines []string
	size := 0
	for i := 0; size+16 < 2*gran-16; i++ {
		l := fmt.Sprintf("line-%09d", i)
		lines = append(lines, l)
		size += len(l) + 2
	}
	last := strings.Repeat("z", 2*gran-size-2)
	lines = append(lines, last)
	content := crlf(lines...)
	require.Len(t, content, 2*gran)

	path := writeLog(t, "app.log", content)

	lf := openFilter(t, path, "*")
	got := collect(t, lf)
	assert.Equal(t, lines, got)

	lf = openFilter(t, path, "*", WithChunkSize(2*gran))
	assert.Equal(t, lines, collect(t, lf))
}

func TestLogFilter_PipelinedMatchesSync(t *testing.T) {
	var lines []string
	for i := range 5000 {
		lines = append(lines, fmt.Sprintf("%05d level=%s msg=request", i, []string{"INFO", "WARN", "ERROR"}[i%3]))
	}
	path := writeLog(t, "app.log", crlf(lines...))

	for _, pattern := range []string{"*ERROR*", "??7*", "*", "0000?*INFO*", "nothing"} {
		t.Run(pattern, func(t *testing.T) {
			sync := collect(t, openFilter(t, path, pattern))
			pipelined := collectPipelined(t, openFilter(t, path, pattern, WithQueueCapacity(7)))
			assert.Equal(t, sync, pipelined)
		})
	}
}

func TestLogFilter_RandomAgainstReference(t *testing.T) {
	rng := testutil.NewRNG(2024)
	lines := rng.Lines(3000, 40, "ab*?x ")
	path := testutil.WriteLog(t, testutil.JoinCRLF(lines))

	for range 20 {
		pattern := rng.Pattern(6, "abx")
		if pattern == "" {
			continue
		}
		want := testutil.ReferenceFilter(pattern, lines)

		sync := collect(t, openFilter(t, path, pattern))
		pipelined := collectPipelined(t, openFilter(t, path, pattern, WithQueueCapacity(3)))
		assert.Equal(t, want, sync, "pattern %q", pattern)
		assert.Equal(t, want, pipelined, "pattern %q", pattern)
	}
}

func TestLogFilter_PipelinedMalformed(t *testing.T) {
	path := writeLog(t, "app.log", []byte("a1\r\na2\r\nbad\rX"))
	lf := openFilter(t, path, "a*")

	var got []string
	err := lf.ForEachMatchingLinePipelined(context.Background(), func(line []byte) {
		got = append(got, string(line))
	})
	assert.ErrorIs(t, err, ErrMalformedInput)
	assert.Equal(t, []string{"a1", "a2"}, got)
	assert.False(t, lf.IsOpen())
}

func TestLogFilter_PipelinedCancel(t *testing.T) {
	var lines []string
	for i := range 10000 {
		lines = append(lines, fmt.Sprintf("line %d", i))
	}
	path := writeLog(t, "app.log", crlf(lines...))
	lf := openFilter(t, path, "*")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	n := 0
	err := lf.ForEachMatchingLinePipelined(ctx, func([]byte) {
		n++
		if n == 10 {
			cancel()
		}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 10, n)
	assert.True(t, lf.IsOpen(), "cancellation leaves the input open")
}

func TestLogFilter_Compressed(t *testing.T) {
	plain := crlf("meta", "beta", "big")

	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	zstdData := enc.EncodeAll(plain, nil)
	require.NoError(t, enc.Close())

	var lz4Buf bytes.Buffer
	zw := lz4.NewWriter(&lz4Buf)
	_, err = zw.Write(plain)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	for name, data := range map[string][]byte{"app.log.zst": zstdData, "app.log.lz4": lz4Buf.Bytes()} {
		t.Run(name, func(t *testing.T) {
			path := writeLog(t, name, data)

			lf := openFilter(t, path, "?et?")
			assert.Equal(t, []string{"meta", "beta"}, collect(t, lf))

			lf = openFilter(t, path, "?et?")
			assert.Equal(t, []string{"meta", "beta"}, collectPipelined(t, lf))

			// Without decompression the frame header is read as text.
			lf = openFilter(t, path, "*", WithDecompression(false))
			line, err := lf.NextMatchingLine()
			if err == nil {
				assert.NotEqual(t, "meta", string(line))
			}
		})
	}
}

func TestLogFilter_OpenReader(t *testing.T) {
	lf := New()
	require.NoError(t, lf.SetFilter("b*"))
	require.NoError(t, lf.OpenReader(context.Background(), bytes.NewReader(crlf("alpha", "beta", "big"))))
	assert.Empty(t, lf.Path())

	var got []string
	require.NoError(t, lf.ForEachMatchingLinePipelined(context.Background(), func(line []byte) {
		got = append(got, string(line))
	}))
	assert.Equal(t, []string{"beta", "big"}, got)
}

func TestLogFilter_Reopen(t *testing.T) {
	first := writeLog(t, "first.log", crlf("a1", "b1"))
	second := writeLog(t, "second.log", crlf("a2", "b2", "a3"))

	lf := openFilter(t, first, "a*")
	assert.Equal(t, first, lf.Path())
	assert.Equal(t, []string{"a1"}, collect(t, lf))

	require.NoError(t, lf.Open(second))
	assert.Equal(t, "a*", lf.Filter(), "pattern survives reopen")
	assert.Equal(t, []string{"a2", "a3"}, collect(t, lf))

	// Reopening the same file starts over.
	require.NoError(t, lf.Open(second))
	line, err := lf.NextMatchingLine()
	require.NoError(t, err)
	assert.Equal(t, "a2", string(line))
}

func TestLogFilter_Match(t *testing.T) {
	lf := New()
	assert.False(t, lf.Match([]byte("x")), "no pattern")
	require.NoError(t, lf.SetFilter("a*b"))
	assert.True(t, lf.Match([]byte("ab")))
	assert.True(t, lf.Match([]byte("axxb")))
	assert.False(t, lf.Match([]byte("ba")))
}

func TestLogFilter_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	path := writeLog(t, "app.log", []byte("ok\r\nbad\rX"))
	lf := openFilter(t, path, "*", WithLogger(logger))
	assert.Contains(t, buf.String(), "open completed")
	assert.Contains(t, buf.String(), "source=mmap")

	require.Error(t, lf.ForEachMatchingLine(func([]byte) {}))
	assert.Contains(t, buf.String(), "reader failure")
	assert.Contains(t, buf.String(), "enumeration ended early")
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "next", ModeNext.String())
	assert.Equal(t, "sync", ModeSync.String())
	assert.Equal(t, "pipelined", ModePipelined.String())
	assert.Equal(t, "Mode(7)", Mode(7).String())
}
