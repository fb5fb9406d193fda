package extractor

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamcutter/keeper/internal/domain"
)

func TestZIPSkipsParentSegments(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "archive.zip")
	writeZip(t, src, []zipEntry{
		{name: "a/b.txt", body: "bee"},
		{name: "../../evil.txt", body: "evil"},
	})
	dst := filepath.Join(tmp, "out", "archive.zip")

	out, err := NewZIP(0).Extract(src, dst, domain.ExtractOptions{})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"a/b.txt": "bee"}, readTree(t, dst))
	assert.Equal(t, []string{"a/b.txt"}, entryNames(out))
	require.Len(t, out.Skipped, 1)
	assert.Equal(t, "../../evil.txt", out.Skipped[0].Name)
	assert.NoFileExists(t, filepath.Join(tmp, "evil.txt"))
}

func TestZIPDirectoriesAndComments(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "docs.zip")
	writeZip(t, src, []zipEntry{
		{name: "docs/", comment: "folder"},
		{name: "docs/empty/"},
		{name: "docs/readme.md", body: "# docs", comment: "start here"},
	})
	dst := filepath.Join(tmp, "out")

	out, err := NewZIP(0).Extract(src, dst, domain.ExtractOptions{})
	require.NoError(t, err)

	assert.DirExists(t, filepath.Join(dst, "docs", "empty"))
	assert.Equal(t, map[string]string{"docs/readme.md": "# docs"}, readTree(t, dst))

	dir := findEntry(t, out, "docs/")
	assert.True(t, dir.Dir)
	assert.Equal(t, "folder", dir.Comment)
	assert.Equal(t, "start here", findEntry(t, out, "docs/readme.md").Comment)
}

func TestZIPUnixModes(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}

	tmp := t.TempDir()
	src := filepath.Join(tmp, "modes.zip")
	writeZip(t, src, []zipEntry{
		{name: "run.sh", body: "#!/bin/sh\n", mode: 0750},
		{name: "secret.txt", body: "s", mode: 0600},
		{name: "plain.txt", body: "p"},
	})
	dst := filepath.Join(tmp, "out")

	out, err := NewZIP(0).Extract(src, dst, domain.ExtractOptions{})
	require.NoError(t, err)

	assert.Equal(t, os.FileMode(0750), fileMode(t, filepath.Join(dst, "run.sh")))
	assert.Equal(t, os.FileMode(0600), fileMode(t, filepath.Join(dst, "secret.txt")))

	run := findEntry(t, out, "run.sh")
	assert.True(t, run.HasMode)
	assert.Equal(t, os.FileMode(0750), run.Mode)
	assert.False(t, findEntry(t, out, "plain.txt").HasMode)
}

func TestZIPSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}

	tmp := t.TempDir()
	src := filepath.Join(tmp, "links.zip")
	writeZip(t, src, []zipEntry{
		{name: "lib/libx.so.1", body: "elf", mode: 0755},
		{name: "lib/libx.so", body: "libx.so.1", mode: os.ModeSymlink | 0777},
		{name: "hosts", body: "/etc/hosts", mode: os.ModeSymlink | 0777},
	})
	dst := filepath.Join(tmp, "out")

	out, err := NewZIP(0).Extract(src, dst, domain.ExtractOptions{})
	require.NoError(t, err)

	target, err := os.Readlink(filepath.Join(dst, "lib", "libx.so"))
	require.NoError(t, err)
	assert.Equal(t, "libx.so.1", target)

	_, err = os.Lstat(filepath.Join(dst, "hosts"))
	assert.True(t, os.IsNotExist(err))
	require.Len(t, out.Skipped, 1)
	assert.Equal(t, "hosts", out.Skipped[0].Name)
}

func TestZIPDuplicateNamesLastWins(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "dup.zip")
	writeZip(t, src, []zipEntry{
		{name: "a.txt", body: "first"},
		{name: "a.txt", body: "second"},
	})
	dst := filepath.Join(tmp, "out")

	out, err := NewZIP(0).Extract(src, dst, domain.ExtractOptions{})
	require.NoError(t, err)

	assert.Len(t, out.Entries, 2)
	assert.Equal(t, map[string]string{"a.txt": "second"}, readTree(t, dst))
}

func TestZIPListOnly(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "archive.zip")
	writeZip(t, src, []zipEntry{
		{name: "a/", comment: "dir"},
		{name: "a/b.txt", body: "bee"},
	})
	dst := filepath.Join(tmp, "out")

	out, err := NewZIP(0).Extract(src, dst, domain.ExtractOptions{ListOnly: true})
	require.NoError(t, err)

	assert.True(t, out.Listed)
	assert.Equal(t, []string{"a/", "a/b.txt"}, entryNames(out))
	assert.Equal(t, int64(3), out.TotalSize())
	assert.NoDirExists(t, dst)
}

func TestZIPNotAnArchive(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "fake.zip")
	require.NoError(t, os.WriteFile(src, []byte("definitely not a zip"), 0644))

	_, err := NewZIP(0).Extract(src, filepath.Join(tmp, "out"), domain.ExtractOptions{})
	assert.ErrorIs(t, err, domain.ErrIO)
	assert.NoDirExists(t, filepath.Join(tmp, "out"))
}

func TestZIPNeverWritesThroughSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}

	tmp := t.TempDir()
	src := filepath.Join(tmp, "evil.zip")
	writeZip(t, src, []zipEntry{
		{name: "a", body: ".", mode: os.ModeSymlink | 0777},
		{name: "a/b", body: "..", mode: os.ModeSymlink | 0777},
		{name: "b/evil.txt", body: "evil", mode: 0644},
	})
	dst := filepath.Join(tmp, "out", "evil.zip")

	out, err := NewZIP(0).Extract(src, dst, domain.ExtractOptions{})
	require.NoError(t, err)

	assertChainContained(t, dst, out)
}

func TestZIPDirectoryModes(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}

	tmp := t.TempDir()
	src := filepath.Join(tmp, "private.zip")
	writeZip(t, src, []zipEntry{
		{name: "private/", mode: os.ModeDir | 0700},
		{name: "private/key.txt", body: "secret", mode: 0600},
		{name: "fat/"},
	})
	dst := filepath.Join(tmp, "out")

	out, err := NewZIP(0).Extract(src, dst, domain.ExtractOptions{})
	require.NoError(t, err)

	assert.Equal(t, os.FileMode(0700), fileMode(t, filepath.Join(dst, "private")))
	assert.Equal(t, os.FileMode(0755), fileMode(t, filepath.Join(dst, "fat")))

	private := findEntry(t, out, "private/")
	assert.True(t, private.HasMode)
	assert.Equal(t, os.FileMode(0700), private.Mode)
	assert.False(t, findEntry(t, out, "fat/").HasMode)
}
