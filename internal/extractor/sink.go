package extractor

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/teamcutter/keeper/internal/domain"
)

// Symlink bodies in zip, rar and 7z archives are the link target itself.
const maxLinkTarget = 4096

// errLinkTarget is returned by sink.link when the hardlink target is not a
// regular file extracted earlier.
var errLinkTarget = errors.New("hardlink target not extracted")

// sink is where extractors put entries. The disk sink materialises them, the
// list sink only drains entry bodies so sizes can be reported. Both track
// symlinks so a listing skips the same entries an extraction would.
type sink interface {
	isLink(path string) bool
	mkdir(path string) error
	write(path string, r io.Reader) (int64, error)
	link(path, target string) (int64, error)
	symlink(path, target string) error
	chmod(path string, mode os.FileMode) error
	// dirMode records a directory mode. finish applies them once every entry
	// is in place, so a read-only directory cannot block its own children.
	dirMode(path string, mode os.FileMode)
	finish() error
}

func newSink(listOnly bool, bufSize int) sink {
	if listOnly {
		return &listSink{files: make(map[string]int64), links: make(map[string]bool)}
	}
	if bufSize <= 0 {
		bufSize = defaultBufferSize
	}
	return &diskSink{buf: make([]byte, bufSize), dirs: make(map[string]os.FileMode)}
}

type diskSink struct {
	buf  []byte
	dirs map[string]os.FileMode
}

func (d *diskSink) isLink(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.Mode()&os.ModeSymlink != 0
}

func (d *diskSink) mkdir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return domain.IOError("mkdir", path, err)
	}
	return nil
}

func (d *diskSink) write(path string, r io.Reader) (int64, error) {
	if err := d.mkdir(filepath.Dir(path)); err != nil {
		return 0, err
	}

	if err := removeExisting(path); err != nil {
		return 0, err
	}

	outFile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return 0, domain.IOError("create", path, err)
	}

	n, err := io.CopyBuffer(outFile, r, d.buf)
	if err != nil {
		outFile.Close()
		return n, domain.IOError("write", path, err)
	}

	if err := outFile.Close(); err != nil {
		return n, domain.IOError("close", path, err)
	}
	return n, nil
}

// link makes path another name for the already extracted file at target. When
// the filesystem refuses hard links the content is copied instead.
func (d *diskSink) link(path, target string) (int64, error) {
	info, err := os.Lstat(target)
	if err != nil || !info.Mode().IsRegular() || path == target {
		return 0, errLinkTarget
	}

	if err := d.mkdir(filepath.Dir(path)); err != nil {
		return 0, err
	}
	if err := removeExisting(path); err != nil {
		return 0, err
	}
	if err := os.Link(target, path); err == nil {
		return info.Size(), nil
	}

	src, err := os.Open(target)
	if err != nil {
		return 0, domain.IOError("open", target, err)
	}
	defer src.Close()

	n, err := d.write(path, src)
	if err != nil {
		return n, err
	}
	return n, d.chmod(path, info.Mode())
}

func (d *diskSink) symlink(path, target string) error {
	if err := d.mkdir(filepath.Dir(path)); err != nil {
		return err
	}
	if err := removeExisting(path); err != nil {
		return err
	}
	if err := os.Symlink(target, path); err != nil {
		return domain.IOError("symlink", path, err)
	}
	return nil
}

func (d *diskSink) chmod(path string, mode os.FileMode) error {
	if err := applyMode(path, mode); err != nil {
		return domain.IOError("chmod", path, err)
	}
	return nil
}

func (d *diskSink) dirMode(path string, mode os.FileMode) {
	d.dirs[path] = mode
}

// finish applies directory modes deepest first. A directory that was since
// replaced by anything else is left alone.
func (d *diskSink) finish() error {
	paths := make([]string, 0, len(d.dirs))
	for path := range d.dirs {
		paths = append(paths, path)
	}
	sort.Slice(paths, func(i, j int) bool {
		return depth(paths[i]) > depth(paths[j])
	})

	for _, path := range paths {
		info, err := os.Lstat(path)
		if err != nil || !info.IsDir() {
			continue
		}
		if err := d.chmod(path, d.dirs[path]); err != nil {
			return err
		}
	}
	return nil
}

func depth(path string) int {
	return strings.Count(path, string(filepath.Separator))
}

// removeExisting clears a previous non-directory entry so a rerun can replace
// read-only files and never writes through an old symlink.
func removeExisting(path string) error {
	info, err := os.Lstat(path)
	if err != nil || info.IsDir() {
		return nil
	}
	if err := os.Remove(path); err != nil {
		return domain.IOError("remove", path, err)
	}
	return nil
}

// listSink remembers what an extraction would have left behind: file sizes
// for hardlinks and symlinks for the traversal checks.
type listSink struct {
	files map[string]int64
	links map[string]bool
}

func (l *listSink) isLink(path string) bool { return l.links[path] }

func (l *listSink) mkdir(string) error { return nil }

func (l *listSink) write(path string, r io.Reader) (int64, error) {
	n, err := io.Copy(io.Discard, r)
	if err != nil {
		return n, domain.IOError("read", path, err)
	}
	l.files[path] = n
	delete(l.links, path)
	return n, nil
}

func (l *listSink) link(path, target string) (int64, error) {
	n, ok := l.files[target]
	if !ok || path == target {
		return 0, errLinkTarget
	}
	l.files[path] = n
	delete(l.links, path)
	return n, nil
}

func (l *listSink) symlink(path, _ string) error {
	l.links[path] = true
	delete(l.files, path)
	return nil
}

func (l *listSink) chmod(string, os.FileMode) error { return nil }

func (l *listSink) dirMode(string, os.FileMode) {}

func (l *listSink) finish() error { return nil }

// readLinkTarget reads a symlink body and reports whether the link may be
// created at path.
func readLinkTarget(s sink, root, path string, r io.Reader) (string, bool, error) {
	body, err := io.ReadAll(io.LimitReader(r, maxLinkTarget))
	if err != nil {
		return "", false, domain.IOError("read", path, err)
	}
	target := string(body)
	return target, enclosedLink(s, root, path, target), nil
}
