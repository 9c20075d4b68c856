package pattern

import (
	"testing"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchLiteral(t *testing.T) {
	for _, p := range []string{"README.md", "a", "", "some/deep/path.txt", "with space"} {
		assert.True(t, Match(p, p, 0), "self-match %q", p)
	}
	assert.False(t, Match("a", "b", 0))
	assert.False(t, Match("abc", "ab", 0))
	assert.False(t, Match("ab", "abc", 0))
}

func TestMatchStar(t *testing.T) {
	assert.True(t, Match("*.md", "README.md", 0))
	assert.False(t, Match("*.md", "README.MD", 0))
	assert.True(t, Match("*.md", "README.MD", CaseFold))
	assert.True(t, Match("*", "", 0))
	assert.True(t, Match("a*b*c", "axxbyyc", 0))
	assert.False(t, Match("a*b*c", "axxbyy", 0))
	assert.True(t, Match("***", "anything", 0))
	assert.True(t, Match("*", "a/b", 0))
}

func TestMatchPathname(t *testing.T) {
	assert.False(t, Match("*", "a/b", Pathname))
	assert.True(t, Match("*/*", "a/b", Pathname))
	assert.False(t, Match("?", "/", Pathname))
	assert.True(t, Match("a/*.txt", "a/b.txt", Pathname))
	assert.False(t, Match("a/*.txt", "a/b/c.txt", Pathname))
	assert.False(t, Match("[!x]", "/", Pathname))
}

func TestMatchQuestion(t *testing.T) {
	assert.True(t, Match("?x", "ax", 0))
	assert.False(t, Match("?x", "x", 0))
	assert.False(t, Match("?", "", 0))
	assert.True(t, Match("a?c", "abc", 0))
}

func TestMatchClass(t *testing.T) {
	assert.True(t, Match("[abc]x", "bx", 0))
	assert.False(t, Match("[abc]x", "dx", 0))
	assert.True(t, Match("[!a-c]x", "dx", 0))
	assert.False(t, Match("[!a-c]x", "bx", 0))
	assert.True(t, Match("[^a-c]x", "dx", 0))
	assert.True(t, Match("[a-z]", "m", 0))
	assert.False(t, Match("[a-z]", "M", 0))
	assert.True(t, Match("[a-z]", "M", CaseFold))
	assert.True(t, Match("[]]", "]", 0))
	assert.True(t, Match("[!]]", "a", 0))
	assert.True(t, Match(`[\]]`, "]", 0))
	assert.True(t, Match("[a-]", "-", 0))
	assert.True(t, Match("[!-a]", "b", 0))
	assert.False(t, Match("[!-a]", "-", 0))
}

func TestMatchEscapes(t *testing.T) {
	assert.True(t, Match(`\*`, "*", 0))
	assert.False(t, Match(`\*`, "x", 0))
	assert.True(t, Match(`\*`, `\anything`, NoEscape))
	assert.False(t, Match(`\*`, "*", NoEscape))
	assert.True(t, Match(`a\?b`, "a?b", 0))
	assert.False(t, Match(`a\?b`, "axb", 0))
	// A trailing bare escape matches nothing.
	assert.False(t, Match(`abc\`, "abc", 0))
	assert.False(t, Match(`abc\`, `abc\`, 0))
}

func TestMatchPeriod(t *testing.T) {
	assert.False(t, Match("*", ".hidden", Period))
	assert.False(t, Match("?idden", ".idden", Period))
	assert.False(t, Match("[.]x", ".x", Period))
	assert.True(t, Match(".*", ".hidden", Period))
	assert.True(t, Match("*", ".hidden", 0))
	// In pathname mode every segment's leading dot is protected.
	assert.False(t, Match("*/*", "a/.b", Pathname|Period))
	assert.True(t, Match("*/.*", "a/.b", Pathname|Period))
	// Without pathname mode a dot after a slash is not special.
	assert.True(t, Match("a/*", "a/.b", Period))
}

func TestHasMeta(t *testing.T) {
	assert.True(t, HasMeta("*.txt"))
	assert.True(t, HasMeta("a?c"))
	assert.True(t, HasMeta("[ab]"))
	assert.False(t, HasMeta("plain.txt"))
	assert.False(t, HasMeta(`esc\*aped`))
}

// TestCompiledAgreesWithMatch cross-checks the regex twin against the
// backtracking matcher over a grid of patterns, names and flag sets.
func TestCompiledAgreesWithMatch(t *testing.T) {
	patterns := []string{
		"", "*", "**", "*.md", "a?c", "[a-c]x", "[!a-c]x", "a/*/c", "*/*",
		".*", "*.t?t", `\*`, "[]]", "a*b*c", "src/*.go", "[A-Z]*", "?",
		"a/**/b", "[x-z/]", `a\?b`, "no.meta",
		"[/]", "a[/]b", "[.-0]", "[!/]x", "[a-]",
	}
	names := []string{
		"", "a", "abc", "README.md", "readme.MD", ".hidden", "a/b", "a/b/c",
		"ax", "bx", "dx", "*", "a?c", "src/main.go", "a/.b", "]", "axxbyyc",
		"a/x/b", "a/b/x/b", "Zed", "/", ".", "-",
	}
	flagSets := []Flags{0, CaseFold, Pathname, Period, Pathname | Period,
		CaseFold | Pathname, NoEscape, Pathname | Period | CaseFold}

	for _, fl := range flagSets {
		for _, p := range patterns {
			c, err := Compile(p, fl)
			require.NoError(t, err, "Compile(%q, %v)", p, fl)
			for _, n := range names {
				assert.Equal(t, Match(p, n, fl), c.Match(n),
					"pattern=%q name=%q flags=%v", p, n, fl)
			}
		}
	}
}

// TestMatchAgainstDoublestar checks single-segment semantics against
// doublestar's path matcher, which implements the same pathname-mode rules.
func TestMatchAgainstDoublestar(t *testing.T) {
	patterns := []string{"*.md", "a?c", "[a-c]x", "[!a-c]x", "*/*", "a/*.txt", "abc"}
	names := []string{"README.md", "abc", "ax", "bx", "dx", "a/b", "a/b.txt", "a/b/c.txt"}
	for _, p := range patterns {
		for _, n := range names {
			want, err := doublestar.Match(p, n)
			require.NoError(t, err)
			assert.Equal(t, want, Match(p, n, Pathname), "pattern=%q name=%q", p, n)
		}
	}
}
