package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vos-cloud/vshell/internal/store"
)

const manifest = `project: demo
files:
  - path: /src
    kind: folder
  - path: /src/main.js
    content: |
      console.log("hi");
  - path: /readme.md
    content: "# demo\n"
`

func TestSeed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "demo.vproj"), []byte(manifest), 0o644))
	// Non-manifest files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip me"), 0o644))

	st := store.NewMemory()
	t.Cleanup(func() { st.Close() })

	s := New(st, dir, zap.NewNop())
	ctx := context.Background()
	require.NoError(t, s.Seed(ctx))

	f, err := st.GetByPath(ctx, "demo", "/src/main.js")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "console.log(\"hi\");\n", f.Content)

	folder, err := st.GetByPath(ctx, "demo", "/src")
	require.NoError(t, err)
	require.NotNil(t, folder)
	assert.True(t, folder.IsDir())
}

func TestSeedMissingDirectory(t *testing.T) {
	st := store.NewMemory()
	t.Cleanup(func() { st.Close() })

	s := New(st, filepath.Join(t.TempDir(), "nope"), zap.NewNop())
	assert.NoError(t, s.Seed(context.Background()))
}

func TestSeedBadManifestIsSkipped(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.vproj"), []byte("::: not yaml"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "good.vproj"), []byte(manifest), 0o644))

	st := store.NewMemory()
	t.Cleanup(func() { st.Close() })

	s := New(st, dir, zap.NewNop())
	ctx := context.Background()
	require.NoError(t, s.Seed(ctx))

	f, err := st.GetByPath(ctx, "demo", "/readme.md")
	require.NoError(t, err)
	assert.NotNil(t, f)
}
