package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vos-cloud/vshell/internal/archive"
	"github.com/vos-cloud/vshell/internal/expand"
	"github.com/vos-cloud/vshell/internal/store"
)

func cxFixture(t *testing.T) (*Context, store.Store) {
	t.Helper()
	st := store.NewMemory()
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	files := []store.File{
		{Path: "/src", Kind: store.KindFolder},
		{Path: "/src/a.txt", Kind: store.KindFile, Content: "alpha\nbeta\ngamma\n"},
		{Path: "/src/dir/b.txt", Kind: store.KindFile, Content: "nested\n"},
		{Path: "/notes.md", Kind: store.KindFile, Content: "# notes\n"},
		{Path: "/.env", Kind: store.KindFile, Content: "SECRET=1\n"},
	}
	require.NoError(t, st.CreateBulk(ctx, "p", files))

	exp := expand.New(st, "p")
	cx := &Context{
		Ctx:     ctx,
		Project: "p",
		Cwd:     "/",
		Env:     map[string]string{},
		Store:   st,
		Expand:  exp,
		Archive: archive.New(st, exp, "p"),
		Log:     zap.NewNop(),
	}
	return cx, st
}

func TestEcho(t *testing.T) {
	cx, _ := cxFixture(t)

	out, err := cmdEcho(cx, []string{"hello", "world"})
	require.NoError(t, err)
	assert.Equal(t, "hello world\n", out)

	out, err = cmdEcho(cx, []string{"-n", "x"})
	require.NoError(t, err)
	assert.Equal(t, "x", out)

	// Glob arguments expand; dotfiles stay hidden.
	out, err = cmdEcho(cx, []string{"/*.md"})
	require.NoError(t, err)
	assert.Equal(t, "/notes.md\n", out)

	// A pattern with no matches passes through verbatim.
	out, err = cmdEcho(cx, []string{"/*.zz"})
	require.NoError(t, err)
	assert.Equal(t, "/*.zz\n", out)
}

func TestLs(t *testing.T) {
	cx, _ := cxFixture(t)

	out, err := cmdLs(cx, nil)
	require.NoError(t, err)
	assert.Equal(t, "notes.md\nsrc/\n", out)

	out, err = cmdLs(cx, []string{"-a"})
	require.NoError(t, err)
	assert.Equal(t, ".env\nnotes.md\nsrc/\n", out)

	out, err = cmdLs(cx, []string{"/src"})
	require.NoError(t, err)
	assert.Equal(t, "a.txt\ndir/\n", out)

	_, err = cmdLs(cx, []string{"/missing"})
	assert.ErrorContains(t, err, "No such file or directory")
}

func TestCat(t *testing.T) {
	cx, _ := cxFixture(t)

	out, err := cmdCat(cx, []string{"/src/a.txt"})
	require.NoError(t, err)
	assert.Equal(t, "alpha\nbeta\ngamma\n", out)

	// No operands reads stdin.
	cx.Stdin = "from stdin"
	out, err = cmdCat(cx, nil)
	require.NoError(t, err)
	assert.Equal(t, "from stdin", out)

	// Partial success keeps the good output and reports the failure.
	out, err = cmdCat(cx, []string{"/src/a.txt", "/nope"})
	assert.ErrorContains(t, err, "/nope: No such file or directory")
	assert.Equal(t, "alpha\nbeta\ngamma\n", out)

	_, err = cmdCat(cx, []string{"/src"})
	assert.ErrorContains(t, err, "Is a directory")
}

func TestTouchAndMkdir(t *testing.T) {
	cx, st := cxFixture(t)
	ctx := context.Background()

	_, err := cmdTouch(cx, []string{"/new.txt"})
	require.NoError(t, err)
	f, err := st.GetByPath(ctx, "p", "/new.txt")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, store.KindFile, f.Kind)

	_, err = cmdMkdir(cx, []string{"/build"})
	require.NoError(t, err)
	f, err = st.GetByPath(ctx, "p", "/build")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.True(t, f.IsDir())

	// Parent missing without -p fails; -p succeeds.
	_, err = cmdMkdir(cx, []string{"/a/b/c"})
	assert.Error(t, err)
	_, err = cmdMkdir(cx, []string{"-p", "/a/b/c"})
	require.NoError(t, err)

	// Existing target without -p fails, with -p is silent.
	_, err = cmdMkdir(cx, []string{"/build"})
	assert.ErrorContains(t, err, "File exists")
	_, err = cmdMkdir(cx, []string{"-p", "/build"})
	assert.NoError(t, err)
}

func TestRm(t *testing.T) {
	cx, st := cxFixture(t)
	ctx := context.Background()

	_, err := cmdRm(cx, []string{"/notes.md"})
	require.NoError(t, err)
	f, err := st.GetByPath(ctx, "p", "/notes.md")
	require.NoError(t, err)
	assert.Nil(t, f)

	// Folder needs -r.
	_, err = cmdRm(cx, []string{"/src"})
	assert.ErrorContains(t, err, "Is a directory")

	_, err = cmdRm(cx, []string{"-r", "/src"})
	require.NoError(t, err)
	kids, err := st.ListByPrefix(ctx, "p", "/src")
	require.NoError(t, err)
	assert.Empty(t, kids)

	// Missing operand fails unless forced.
	_, err = cmdRm(cx, []string{"/ghost"})
	assert.Error(t, err)
	_, err = cmdRm(cx, []string{"-f", "/ghost"})
	assert.NoError(t, err)
}

// Batch commands over several targets process the good ones, report every
// diagnostic, and exit nonzero only when nothing succeeded.
func TestBatchPartialSuccess(t *testing.T) {
	ctx := context.Background()

	t.Run("rm", func(t *testing.T) {
		cx, st := cxFixture(t)

		_, err := cmdRm(cx, []string{"/src/a.txt", "/nope"})
		assert.ErrorContains(t, err, "/nope: No such file or directory")
		assert.Equal(t, CodeOK, ExitCode(err))
		f, gerr := st.GetByPath(ctx, "p", "/src/a.txt")
		require.NoError(t, gerr)
		assert.Nil(t, f)

		// Nothing succeeded: the batch fails.
		_, err = cmdRm(cx, []string{"/nope", "/gone"})
		assert.Equal(t, CodeFailure, ExitCode(err))
		assert.ErrorContains(t, err, "/nope: No such file or directory")
		assert.ErrorContains(t, err, "/gone: No such file or directory")
	})

	t.Run("cp", func(t *testing.T) {
		cx, st := cxFixture(t)

		_, err := cmdMkdir(cx, []string{"/dst"})
		require.NoError(t, err)
		_, err = cmdCp(cx, []string{"/src/a.txt", "/nope", "/dst"})
		assert.ErrorContains(t, err, "/nope: No such file or directory")
		assert.Equal(t, CodeOK, ExitCode(err))
		f, gerr := st.GetByPath(ctx, "p", "/dst/a.txt")
		require.NoError(t, gerr)
		assert.NotNil(t, f)
	})

	t.Run("mv", func(t *testing.T) {
		cx, st := cxFixture(t)

		_, err := cmdMkdir(cx, []string{"/dst"})
		require.NoError(t, err)
		_, err = cmdMv(cx, []string{"/notes.md", "/nope", "/dst"})
		assert.ErrorContains(t, err, "/nope: No such file or directory")
		assert.Equal(t, CodeOK, ExitCode(err))
		moved, gerr := st.GetByPath(ctx, "p", "/dst/notes.md")
		require.NoError(t, gerr)
		assert.NotNil(t, moved)
		old, gerr := st.GetByPath(ctx, "p", "/notes.md")
		require.NoError(t, gerr)
		assert.Nil(t, old)

		_, err = cmdMv(cx, []string{"/ghost1", "/ghost2", "/dst"})
		assert.Equal(t, CodeFailure, ExitCode(err))
	})
}

func TestCpAndMv(t *testing.T) {
	cx, st := cxFixture(t)
	ctx := context.Background()

	_, err := cmdCp(cx, []string{"/src/a.txt", "/copy.txt"})
	require.NoError(t, err)
	f, err := st.GetByPath(ctx, "p", "/copy.txt")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "alpha\nbeta\ngamma\n", f.Content)

	// Copy into an existing directory keeps the base name.
	_, err = cmdCp(cx, []string{"/copy.txt", "/src"})
	require.NoError(t, err)
	f, err = st.GetByPath(ctx, "p", "/src/copy.txt")
	require.NoError(t, err)
	assert.NotNil(t, f)

	// Recursive copy duplicates the subtree.
	_, err = cmdCp(cx, []string{"-r", "/src", "/backup"})
	require.NoError(t, err)
	f, err = st.GetByPath(ctx, "p", "/backup/dir/b.txt")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "nested\n", f.Content)

	// Move removes the source.
	_, err = cmdMv(cx, []string{"/copy.txt", "/moved.txt"})
	require.NoError(t, err)
	f, err = st.GetByPath(ctx, "p", "/copy.txt")
	require.NoError(t, err)
	assert.Nil(t, f)
	f, err = st.GetByPath(ctx, "p", "/moved.txt")
	require.NoError(t, err)
	assert.NotNil(t, f)

	// Directory without -r fails for cp.
	_, err = cmdCp(cx, []string{"/src", "/elsewhere"})
	assert.ErrorContains(t, err, "Is a directory")
}

func TestGrep(t *testing.T) {
	cx, _ := cxFixture(t)

	out, err := cmdGrep(cx, []string{"beta", "/src/a.txt"})
	require.NoError(t, err)
	assert.Equal(t, "beta\n", out)

	out, err = cmdGrep(cx, []string{"-n", "-i", "BETA", "/src/a.txt"})
	require.NoError(t, err)
	assert.Equal(t, "2:beta\n", out)

	out, err = cmdGrep(cx, []string{"-v", "beta", "/src/a.txt"})
	require.NoError(t, err)
	assert.Equal(t, "alpha\ngamma\n", out)

	// No match exits 1.
	_, err = cmdGrep(cx, []string{"zeta", "/src/a.txt"})
	assert.Equal(t, 1, ExitCode(err))

	// Stdin input when no files given.
	cx.Stdin = "one\ntwo\n"
	out, err = cmdGrep(cx, []string{"two"})
	require.NoError(t, err)
	assert.Equal(t, "two\n", out)

	// Recursive over a directory prefixes file names.
	cx.Stdin = ""
	out, err = cmdGrep(cx, []string{"-r", "nested", "/src"})
	require.NoError(t, err)
	assert.Equal(t, "/src/dir/b.txt:nested\n", out)
}

func TestFind(t *testing.T) {
	cx, _ := cxFixture(t)

	out, err := cmdFind(cx, []string{"/src", "-name", "*.txt"})
	require.NoError(t, err)
	assert.Equal(t, "/src/a.txt\n/src/dir/b.txt\n", out)

	out, err = cmdFind(cx, []string{"/src", "-type", "d"})
	require.NoError(t, err)
	assert.Equal(t, "/src\n/src/dir\n", out)

	_, err = cmdFind(cx, []string{"/missing"})
	assert.ErrorContains(t, err, "No such file or directory")
}

func TestHeadTail(t *testing.T) {
	cx, _ := cxFixture(t)

	out, err := cmdHead(cx, []string{"-n", "2", "/src/a.txt"})
	require.NoError(t, err)
	assert.Equal(t, "alpha\nbeta\n", out)

	out, err = cmdTail(cx, []string{"-n", "1", "/src/a.txt"})
	require.NoError(t, err)
	assert.Equal(t, "gamma\n", out)

	cx.Stdin = "1\n2\n3\n"
	out, err = cmdHead(cx, []string{"-n", "2"})
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n", out)
}

func TestWcSortUniq(t *testing.T) {
	cx, _ := cxFixture(t)

	out, err := cmdWc(cx, []string{"-l", "/src/a.txt"})
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)

	cx.Stdin = "b\na\nc\na\n"
	out, err = cmdSort(cx, nil)
	require.NoError(t, err)
	assert.Equal(t, "a\na\nb\nc\n", out)

	out, err = cmdSort(cx, []string{"-u"})
	require.NoError(t, err)
	assert.Equal(t, "a\nb\nc\n", out)

	out, err = cmdSort(cx, []string{"-r"})
	require.NoError(t, err)
	assert.Equal(t, "c\nb\na\na\n", out)

	cx.Stdin = "10\n2\n1\n"
	out, err = cmdSort(cx, []string{"-n"})
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n10\n", out)

	cx.Stdin = "a\na\nb\nb\nb\nc\n"
	out, err = cmdUniq(cx, nil)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\nc\n", out)

	out, err = cmdUniq(cx, []string{"-c"})
	require.NoError(t, err)
	assert.Equal(t, "      2 a\n      3 b\n      1 c\n", out)
}

func TestTestExpressions(t *testing.T) {
	cx, _ := cxFixture(t)

	cases := []struct {
		argv []string
		want int
	}{
		{[]string{"-e", "/src/a.txt"}, 0},
		{[]string{"-e", "/nope"}, 1},
		{[]string{"-f", "/src/a.txt"}, 0},
		{[]string{"-d", "/src"}, 0},
		{[]string{"-d", "/src/a.txt"}, 1},
		{[]string{"-z", ""}, 0},
		{[]string{"-n", "x"}, 0},
		{[]string{"a", "=", "a"}, 0},
		{[]string{"a", "!=", "a"}, 1},
		{[]string{"2", "-lt", "10"}, 0},
		{[]string{"!", "-e", "/nope"}, 0},
		{nil, 1},
	}
	for _, tt := range cases {
		_, err := cmdTest(cx, tt.argv)
		assert.Equal(t, tt.want, ExitCode(err), "argv: %v", tt.argv)
	}
}

func TestSha256Sum(t *testing.T) {
	cx, _ := cxFixture(t)

	out, err := cmdSha256(cx, []string{"/src/a.txt"})
	require.NoError(t, err)
	// sha256 of "alpha\nbeta\ngamma\n"
	assert.Contains(t, out, "  /src/a.txt\n")
	assert.Len(t, out[:64], 64)

	cx.Stdin = "x"
	out, err = cmdSha256(cx, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "  -\n")
}

func TestFileCommand(t *testing.T) {
	cx, st := cxFixture(t)
	ctx := context.Background()

	_, err := st.Create(ctx, store.File{
		ProjectID: "p", Path: "/blob.bin", Kind: store.KindFile,
		IsBinary: true, Data: []byte{0x00, 0x01, 0x02, 0xff},
	})
	require.NoError(t, err)

	out, err := cmdFile(cx, []string{"/src/a.txt", "/src", "/blob.bin"})
	require.NoError(t, err)
	assert.Contains(t, out, "/src/a.txt: text\n")
	assert.Contains(t, out, "/src: directory\n")
	assert.Contains(t, out, "/blob.bin: ")
	assert.NotContains(t, out, "/blob.bin: text")
}

func TestParseFlags(t *testing.T) {
	f, err := ParseFlags("rm", []string{"-rf", "a", "b"}, []string{"r", "f"}, nil)
	require.NoError(t, err)
	assert.True(t, f.Bool("r"))
	assert.True(t, f.Bool("f"))
	assert.Equal(t, []string{"a", "b"}, f.Args)

	f, err = ParseFlags("x", []string{"--depth=3", "p"}, []string{"depth"}, []string{"depth"})
	require.NoError(t, err)
	v, ok := f.Value("depth")
	assert.True(t, ok)
	assert.Equal(t, "3", v)

	_, err = ParseFlags("x", []string{"-q"}, []string{"r"}, nil)
	assert.Equal(t, CodeUsage, ExitCode(err))

	// "--" ends option parsing.
	f, err = ParseFlags("x", []string{"--", "-r"}, []string{"r"}, nil)
	require.NoError(t, err)
	assert.False(t, f.Bool("r"))
	assert.Equal(t, []string{"-r"}, f.Args)
}

func TestTarCommandRoundTrip(t *testing.T) {
	cx, st := cxFixture(t)
	ctx := context.Background()

	_, err := cmdTar(cx, []string{"-czf", "/out.tgz", "/src"})
	require.NoError(t, err)

	f, err := st.GetByPath(ctx, "p", "/out.tgz")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.True(t, f.IsBinary)

	out, err := cmdTar(cx, []string{"-tf", "/out.tgz"})
	require.NoError(t, err)
	assert.Contains(t, out, "src/a.txt\n")
	assert.Contains(t, out, "src/dir/b.txt\n")

	cx.Cwd = "/restore"
	_, err = cmdTar(cx, []string{"-xf", "/out.tgz"})
	require.NoError(t, err)
	got, err := st.GetByPath(ctx, "p", "/restore/src/a.txt")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alpha\nbeta\ngamma\n", got.Content)
}

func TestZipCommands(t *testing.T) {
	cx, st := cxFixture(t)
	ctx := context.Background()

	_, err := cmdZip(cx, []string{"-r", "/out.zip", "/src"})
	require.NoError(t, err)

	out, err := cmdUnzip(cx, []string{"-l", "/out.zip"})
	require.NoError(t, err)
	assert.Contains(t, out, "src/a.txt")

	_, err = cmdUnzip(cx, []string{"-d", "/restored", "/out.zip"})
	require.NoError(t, err)
	got, err := st.GetByPath(ctx, "p", "/restored/src/dir/b.txt")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "nested\n", got.Content)
}

func TestNodeWithoutRuntime(t *testing.T) {
	cx, _ := cxFixture(t)
	_, err := cmdNode(cx, []string{"-e", "1+1"})
	assert.ErrorContains(t, err, "runtime not configured")
}

func TestCurlWithoutFetcher(t *testing.T) {
	cx, _ := cxFixture(t)
	_, err := cmdCurl(cx, []string{"https://example.com"})
	assert.ErrorContains(t, err, "not configured")
}
