package wildcard

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/hupe1980/logfilter/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimplify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"abc", "abc"},
		{"*", "*"},
		{"***", "*"},
		{"a**b", "a*b"},
		{"a**?***b", "a*?*b"},
		{"**a**", "*a*"},
		{"?*?", "?*?"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Simplify(tt.in), "Simplify(%q)", tt.in)
	}
}

func TestSimplify_Idempotent(t *testing.T) {
	assert.Equal(t, Simplify("a*?*b"), Simplify("a**?***b"))
	for _, p := range []string{"a**?***b", "***", "x*y**z", "??**??"} {
		once := Simplify(p)
		assert.Equal(t, once, Simplify(once))
		assert.NotContains(t, once, "**")
	}
}

func TestMatcher_Readiness(t *testing.T) {
	m := New("")
	assert.False(t, m.IsReady())
	assert.False(t, m.MatchString(""))
	assert.False(t, m.MatchString("anything"))

	assert.True(t, m.SetPattern("a*"))
	assert.True(t, m.IsReady())
	assert.Equal(t, "a*", m.Pattern())

	assert.False(t, m.SetPattern(""))
	assert.False(t, m.IsReady())
}

func TestMatcher_Match(t *testing.T) {
	tests := []struct {
		pattern string
		line    string
		want    bool
	}{
		{"abc", "abc", true},
		{"abc", "abcd", false},
		{"abc", "ab", false},
		{"abc", "ABC", false},
		{"*", "", true},
		{"*", "anything at all", true},
		{"a*b", "ab", true},
		{"a*b", "axxxb", true},
		{"a*b", "a", false},
		{"a*b", "b", false},
		{"a*b", "abc", false},
		{"?et?", "meta", true},
		{"?et?", "beta", true},
		{"?et?", "big", false},
		{"*a", "alpha", true},
		{"*a", "gamma", true},
		{"*a", "beta", true},
		{"*a", "delta!", false},
		{"a**?***b", "axb", true},
		{"a**?***b", "ab", false},
		{"*error*", "2024-01-01 error: disk full", true},
		{"*error*", "2024-01-01 warn: disk full", false},
		{"???", "a\x00c", true},
		{"a?c", "a\xffc", true},
	}
	m := &Matcher{}
	for _, tt := range tests {
		require.True(t, m.SetPattern(tt.pattern))
		assert.Equal(t, tt.want, m.MatchString(tt.line), "pattern=%q line=%q", tt.pattern, tt.line)
	}
}

func TestMatcher_LiteralEquality(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	alphabet := "abcxyz01 -:"
	randString := func(n int) string {
		var sb strings.Builder
		for i := 0; i < n; i++ {
			sb.WriteByte(alphabet[rng.Intn(len(alphabet))])
		}
		return sb.String()
	}

	m := &Matcher{}
	for i := 0; i < 200; i++ {
		p := randString(1 + rng.Intn(8))
		line := randString(rng.Intn(10))
		if rng.Intn(3) == 0 {
			line = p
		}
		m.SetPattern(p)
		assert.Equal(t, line == p, m.MatchString(line), "pattern=%q line=%q", p, line)
	}
}

func TestMatcher_PrefixSuffixProperty(t *testing.T) {
	m := New("a*b")
	for _, line := range []string{"", "a", "b", "ab", "ba", "aab", "abb", "a-b", "axbx", "xab"} {
		want := len(line) >= 2 && line[0] == 'a' && line[len(line)-1] == 'b'
		assert.Equal(t, want, m.MatchString(line), "line=%q", line)
	}
}

func TestMatcher_ScratchReuse(t *testing.T) {
	m := New("*x?")

	assert.True(t, m.MatchString(strings.Repeat("a", 100)+"xy"))
	grown := m.TableCap()
	assert.GreaterOrEqual(t, grown, 103*4)

	// A shorter line after a longer one reuses the table and must not see stale cells.
	assert.False(t, m.MatchString("ab"))
	assert.True(t, m.MatchString("xy"))
	assert.Equal(t, grown, m.TableCap(), "table never shrinks")
}

func TestMatcher_Independent(t *testing.T) {
	a := New("a*")
	b := New("*b")

	assert.True(t, a.MatchString(strings.Repeat("a", 50)))
	assert.True(t, b.MatchString("b"))
	assert.NotEqual(t, a.TableCap(), b.TableCap())
}

func TestMatcher_AgreesWithReference(t *testing.T) {
	rng := testutil.NewRNG(7)
	m := New("")

	for range 2000 {
		pattern := rng.Pattern(8, "ab")
		line := rng.Line(10, "abc")

		want := testutil.ReferenceMatch(pattern, line)
		if !m.SetPattern(pattern) {
			continue
		}
		require.Equal(t, want, m.Match(line), "pattern %q line %q", pattern, line)
	}
}

func BenchmarkMatcher_Match(b *testing.B) {
	m := New("*ERROR*connection?reset*")
	line := []byte("2024-05-01T12:00:00Z host=db01 ERROR upstream connection reset by peer")
	b.ReportAllocs()
	for b.Loop() {
		m.Match(line)
	}
}
