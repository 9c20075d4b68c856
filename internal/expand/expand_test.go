package expand

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vos-cloud/vshell/internal/store"
)

func fixture(t *testing.T) *Expander {
	t.Helper()
	st := store.NewMemory()
	ctx := context.Background()
	for _, f := range []store.File{
		{Path: "/src/a.txt", Content: "a"},
		{Path: "/src/dir/b.txt", Content: "b"},
		{Path: "/src/notes.md", Content: "n"},
		{Path: "/readme.md", Content: "r"},
		{Path: "/.env", Content: "secret"},
	} {
		f.ProjectID = "p"
		_, err := st.Create(ctx, f)
		require.NoError(t, err)
	}
	return New(st, "p")
}

func TestExpandNoWildcard(t *testing.T) {
	e := fixture(t)
	got, err := e.Expand(context.Background(), "/", "/src/a.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{"/src/a.txt"}, got)

	// No existence check for literal paths.
	got, err = e.Expand(context.Background(), "/src", "missing.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{"/src/missing.txt"}, got)
}

func TestExpandSingleStar(t *testing.T) {
	e := fixture(t)
	got, err := e.Expand(context.Background(), "/", "/src/*.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{"/src/a.txt"}, got)

	got, err = e.Expand(context.Background(), "/", "/src/*")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"/src/a.txt", "/src/dir", "/src/notes.md"}, got)
}

func TestExpandHidesDotfiles(t *testing.T) {
	e := fixture(t)
	got, err := e.Expand(context.Background(), "/", "/*")
	require.NoError(t, err)
	assert.NotContains(t, got, "/.env")

	got, err = e.Expand(context.Background(), "/", "/.*")
	require.NoError(t, err)
	assert.Contains(t, got, "/.env")
}

func TestExpandDoubleStar(t *testing.T) {
	e := fixture(t)
	got, err := e.Expand(context.Background(), "/", "/src/**")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"/src/a.txt", "/src/dir/b.txt", "/src/notes.md"}, got)
	// Exactly once each.
	seen := map[string]int{}
	for _, p := range got {
		seen[p]++
	}
	for p, n := range seen {
		assert.Equal(t, 1, n, p)
	}
}

func TestExpandDoubleStarMidPattern(t *testing.T) {
	e := fixture(t)
	got, err := e.Expand(context.Background(), "/", "/**/*.txt")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"/src/a.txt", "/src/dir/b.txt"}, got)

	got, err = e.Expand(context.Background(), "/", "/src/**/b.txt")
	require.NoError(t, err)
	assert.Contains(t, got, "/src/dir/b.txt")
}

func TestExpandRelativeToBase(t *testing.T) {
	e := fixture(t)
	got, err := e.Expand(context.Background(), "/src", "*.md")
	require.NoError(t, err)
	assert.Equal(t, []string{"/src/notes.md"}, got)
}

func TestExpandEscapedLiteral(t *testing.T) {
	e := fixture(t)
	st := store.NewMemory()
	ctx := context.Background()
	_, err := st.Create(ctx, store.File{ProjectID: "q", Path: "/a*b", Content: "x"})
	require.NoError(t, err)
	_ = e

	eq := New(st, "q")
	got, err := eq.Expand(ctx, "/", `/a\*b/c`)
	require.NoError(t, err)
	assert.Equal(t, []string{"/a*b/c"}, got)
}
