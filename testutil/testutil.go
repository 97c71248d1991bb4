package testutil

import (
	"bytes"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// LogAlphabet is the byte set used for generated log lines.
const LogAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 =:/.-_[]"

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Line returns a line of up to maxLen bytes drawn from alphabet.
// It never contains CR or LF unless alphabet does.
func (r *RNG) Line(maxLen int, alphabet string) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lineLocked(maxLen, alphabet)
}

func (r *RNG) lineLocked(maxLen int, alphabet string) []byte {
	n := r.rand.Intn(maxLen + 1)
	line := make([]byte, n)
	for i := range line {
		line[i] = alphabet[r.rand.Intn(len(alphabet))]
	}
	return line
}

// Lines returns num lines of up to maxLen bytes each.
func (r *RNG) Lines(num, maxLen int, alphabet string) [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := make([][]byte, num)
	for i := range lines {
		lines[i] = r.lineLocked(maxLen, alphabet)
	}
	return lines
}

// Pattern returns a pattern of up to maxLen bytes mixing '*', '?' and bytes
// from alphabet. It may be empty.
func (r *RNG) Pattern(maxLen int, alphabet string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.rand.Intn(maxLen + 1)
	p := make([]byte, n)
	for i := range p {
		switch r.rand.Intn(4) {
		case 0:
			p[i] = '*'
		case 1:
			p[i] = '?'
		default:
			p[i] = alphabet[r.rand.Intn(len(alphabet))]
		}
	}
	return string(p)
}

// ReferenceMatch reports whether line matches pattern by plain backtracking.
// It is exponential in the worst case and only meant as ground truth.
func ReferenceMatch(pattern string, line []byte) bool {
	if pattern == "" {
		return len(line) == 0
	}
	switch pattern[0] {
	case '*':
		for i := 0; i <= len(line); i++ {
			if ReferenceMatch(pattern[1:], line[i:]) {
				return true
			}
		}
		return false
	case '?':
		return len(line) > 0 && ReferenceMatch(pattern[1:], line[1:])
	default:
		return len(line) > 0 && line[0] == pattern[0] && ReferenceMatch(pattern[1:], line[1:])
	}
}

// ReferenceFilter returns the lines matching pattern, in order.
func ReferenceFilter(pattern string, lines [][]byte) []string {
	var out []string
	for _, l := range lines {
		if ReferenceMatch(pattern, l) {
			out = append(out, string(l))
		}
	}
	return out
}

// JoinCRLF terminates every line with CR LF and concatenates them.
func JoinCRLF(lines [][]byte) []byte {
	var buf bytes.Buffer
	for _, l := range lines {
		buf.Write(l)
		buf.WriteString("\r\n")
	}
	return buf.Bytes()
}

// WriteLog writes content to a fresh file in a per-test temp dir.
func WriteLog(tb testing.TB, content []byte) string {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), "app.log")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		tb.Fatalf("write log: %v", err)
	}
	return path
}
