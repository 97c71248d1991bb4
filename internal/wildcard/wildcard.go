// Package wildcard implements byte-wise shell-style pattern matching.
//
// Supported pattern bytes:
//
//	'?' matches exactly one arbitrary byte
//	'*' matches any run of bytes, including the empty run
//
// Every other byte matches itself (case-sensitive, no Unicode awareness).
package wildcard

// Simplify collapses every run of '*' in pattern into a single '*'.
// Simplify is idempotent.
func Simplify(pattern string) string {
	out := make([]byte, 0, len(pattern))
	inStar := false
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if c == '*' {
			if inStar {
				continue
			}
			inStar = true
		} else {
			inStar = false
		}
		out = append(out, c)
	}
	return string(out)
}

// Matcher matches lines against a simplified pattern.
//
// The lookup table is owned by the Matcher and reused across calls; it only
// grows. A Matcher is NOT safe for concurrent use.
type Matcher struct {
	pattern string
	table   []bool
}

// New returns a Matcher for pattern. An empty pattern yields a Matcher that
// is not ready.
func New(pattern string) *Matcher {
	m := &Matcher{}
	m.SetPattern(pattern)
	return m
}

// SetPattern stores a simplified copy of pattern and reports whether the
// Matcher is ready.
func (m *Matcher) SetPattern(pattern string) bool {
	m.pattern = Simplify(pattern)
	return m.IsReady()
}

// IsReady reports whether a non-empty pattern is set.
func (m *Matcher) IsReady() bool {
	return m.pattern != ""
}

// Pattern returns the simplified pattern.
func (m *Matcher) Pattern() string {
	return m.pattern
}

// Match reports whether line matches the whole pattern. A Matcher that is
// not ready matches nothing.
//
// T[i][j] holds whether the first i bytes of line match the first j bytes of
// the pattern, stored row-major with a stride of len(pattern)+1.
func (m *Matcher) Match(line []byte) bool {
	if !m.IsReady() {
		return false
	}

	p := m.pattern
	cols := len(p) + 1
	t := m.scratch((len(line) + 1) * cols)

	t[0] = true
	for j := 1; j <= len(p); j++ {
		if p[j-1] == '*' {
			t[j] = t[j-1]
		}
	}

	for i := 1; i <= len(line); i++ {
		row, prev := i*cols, (i-1)*cols
		for j := 1; j <= len(p); j++ {
			switch pc := p[j-1]; {
			case pc == '*':
				t[row+j] = t[row+j-1] || t[prev+j]
			case pc == '?' || pc == line[i-1]:
				t[row+j] = t[prev+j-1]
			default:
				t[row+j] = false
			}
		}
	}

	return t[len(line)*cols+len(p)]
}

// MatchString is Match for string input.
func (m *Matcher) MatchString(s string) bool {
	return m.Match([]byte(s))
}

// scratch returns a zeroed table of exactly n cells, growing the backing
// array when needed.
func (m *Matcher) scratch(n int) []bool {
	if n > cap(m.table) {
		m.table = make([]bool, n)
		return m.table
	}
	t := m.table[:n]
	clear(t)
	return t
}

// TableCap returns the capacity of the reusable lookup table.
func (m *Matcher) TableCap() int {
	return cap(m.table)
}
