package extractor

import (
	"archive/tar"
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamcutter/keeper/internal/domain"
)

type tarEntry struct {
	name     string
	body     string
	mode     int64
	typeflag byte
	linkname string
}

func tarBytes(t *testing.T, entries []tarEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, e := range entries {
		typeflag := e.typeflag
		if typeflag == 0 {
			typeflag = tar.TypeReg
		}
		mode := e.mode
		if mode == 0 {
			mode = 0644
		}
		hdr := &tar.Header{
			Name:     e.name,
			Mode:     mode,
			Typeflag: typeflag,
			Linkname: e.linkname,
		}
		if typeflag == tar.TypeReg {
			hdr.Size = int64(len(e.body))
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if typeflag == tar.TypeReg {
			_, err := tw.Write([]byte(e.body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	return buf.Bytes()
}

func writeTar(t *testing.T, path string, entries []tarEntry) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, tarBytes(t, entries), 0644))
}

func gzipBytes(t *testing.T, name string, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	gw.Name = name
	_, err := gw.Write(data)
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	return buf.Bytes()
}

type zipEntry struct {
	name    string
	body    string
	mode    fs.FileMode
	comment string
}

// writeZip stores entries as a unix-created archive when mode is set, and as
// a FAT one otherwise.
func writeZip(t *testing.T, path string, entries []zipEntry) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, e := range entries {
		fh := &zip.FileHeader{Name: e.name, Method: zip.Deflate, Comment: e.comment}
		if e.mode != 0 {
			fh.SetMode(e.mode)
		}
		w, err := zw.CreateHeader(fh)
		require.NoError(t, err)
		_, err = w.Write([]byte(e.body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

// readTree maps every regular file under root (slash-separated, relative) to
// its content.
func readTree(t *testing.T, root string) map[string]string {
	t.Helper()

	tree := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		tree[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	require.NoError(t, err)
	return tree
}

func entryNames(out *domain.Outcome) []string {
	names := make([]string, 0, len(out.Entries))
	for _, e := range out.Entries {
		names = append(names, e.Name)
	}
	return names
}

func findEntry(t *testing.T, out *domain.Outcome, name string) domain.Entry {
	t.Helper()
	for _, e := range out.Entries {
		if e.Name == name {
			return e
		}
	}
	t.Fatalf("entry %q not reported", name)
	return domain.Entry{}
}

func testdata(name string) string {
	return filepath.Join("testdata", name)
}

func fileMode(t *testing.T, path string) fs.FileMode {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	return info.Mode().Perm()
}

// assertChainContained checks the outcome of extracting the entries
// a -> ".", a/b -> ".." and b/evil.txt into dst. On disk a/b would be
// dst/b -> "..", so writing b/evil.txt through it would land next to dst.
func assertChainContained(t *testing.T, dst string, out *domain.Outcome) {
	t.Helper()

	assert.NoFileExists(t, filepath.Join(filepath.Dir(dst), "evil.txt"))
	assert.Equal(t, []domain.Skipped{{Name: "a/b", Reason: reasonLinked}}, out.Skipped)
	if out.Listed {
		return
	}

	target, err := os.Readlink(filepath.Join(dst, "a"))
	require.NoError(t, err)
	assert.Equal(t, ".", target)
	info, err := os.Lstat(filepath.Join(dst, "b"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.FileExists(t, filepath.Join(dst, "b", "evil.txt"))
}

func restoreWritable(t *testing.T, dir string) {
	t.Helper()
	t.Cleanup(func() { _ = os.Chmod(dir, 0755) })
}
