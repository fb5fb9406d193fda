package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const url = "https://example.com/releases/tool.tar.gz"

func download(t *testing.T, name, body string) string {
	t.Helper()
	dir, err := os.MkdirTemp(t.TempDir(), "download-*")
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestStoreAndGet(t *testing.T) {
	c, err := New(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)

	assert.False(t, c.Has(url))
	assert.Empty(t, c.GetPath(url))

	src := download(t, "tool.tar.gz", "payload")
	stored, err := c.Store(url, src)
	require.NoError(t, err)

	assert.True(t, c.Has(url))
	assert.Equal(t, stored, c.GetPath(url))
	assert.Equal(t, "tool.tar.gz", filepath.Base(stored))
	assert.NoFileExists(t, src)
	assert.NoDirExists(t, filepath.Dir(src))

	data, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestStoreReplaces(t *testing.T) {
	c, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = c.Store(url, download(t, "tool.tar.gz", "v1"))
	require.NoError(t, err)
	stored, err := c.Store(url, download(t, "tool.tar.gz", "v2"))
	require.NoError(t, err)

	data, err := os.ReadFile(c.GetPath(url))
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))
	assert.Equal(t, stored, c.GetPath(url))
}

func TestKeysDoNotCollide(t *testing.T) {
	c, err := New(t.TempDir())
	require.NoError(t, err)

	a, err := c.Store("https://a.example/x.zip", download(t, "x.zip", "a"))
	require.NoError(t, err)
	b, err := c.Store("https://b.example/x.zip", download(t, "x.zip", "b"))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.FileExists(t, a)
	assert.FileExists(t, b)
}

func TestSizeAndClear(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	c, err := New(dir)
	require.NoError(t, err)

	_, err = c.Store(url, download(t, "tool.tar.gz", "12345"))
	require.NoError(t, err)

	size, err := c.Size()
	require.NoError(t, err)
	assert.Equal(t, int64(5), size)

	require.NoError(t, c.Clear())
	assert.NoDirExists(t, dir)
	assert.False(t, c.Has(url))

	size, err = c.Size()
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestVerify(t *testing.T) {
	c, err := New(t.TempDir())
	require.NoError(t, err)

	const payloadSHA = "239f59ed55e737c77147cf55ad0c1b030b6d7ee748a7426952f9b852d5a935e5"

	ok, err := c.Verify(url, payloadSHA)
	require.NoError(t, err)
	assert.False(t, ok, "nothing cached yet")

	_, err = c.Store(url, download(t, "tool.tar.gz", "payload"))
	require.NoError(t, err)

	ok, err = c.Verify(url, payloadSHA)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Verify(url, "deadbeef")
	require.NoError(t, err)
	assert.False(t, ok)
}
