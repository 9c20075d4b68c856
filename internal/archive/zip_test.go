package archive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZipRoundTrip(t *testing.T) {
	c, st := codecFixture(t)
	ctx := context.Background()

	data, err := c.CreateZip(ctx, "/", []string{"/src"}, true)
	require.NoError(t, err)

	names, err := ListZip(data)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"src/a.txt", "src/dir/b.txt"}, names)

	written, err := c.ExtractZip(ctx, data, "/unzipped")
	require.NoError(t, err)
	assert.Contains(t, written, "/unzipped/src/a.txt")

	got, err := st.GetByPath(ctx, "p", "/unzipped/src/dir/b.txt")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "nested\n", got.Content)
}

func TestZipNonRecursiveDirectoryFails(t *testing.T) {
	c, _ := codecFixture(t)
	_, err := c.CreateZip(context.Background(), "/", []string{"/src"}, false)
	assert.ErrorContains(t, err, "Is a directory")
}

func TestZipGlobInput(t *testing.T) {
	c, _ := codecFixture(t)
	data, err := c.CreateZip(context.Background(), "/", []string{"/src/*.txt"}, false)
	require.NoError(t, err)

	names, err := ListZip(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/a.txt"}, names)
}

func TestZipMalformed(t *testing.T) {
	_, err := ListZip([]byte("definitely not a zip"))
	assert.Error(t, err)
}
