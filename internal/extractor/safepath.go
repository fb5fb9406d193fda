package extractor

import (
	"path/filepath"
	"strings"

	"github.com/teamcutter/keeper/internal/domain"
)

const (
	reasonEscapes     = "path escapes destination"
	reasonLinked      = "path traverses a symlink"
	reasonLinkEscapes = "symlink target escapes destination"
)

// enclosedPath joins an archive entry name onto root. It reports false for
// names that are empty, absolute, or climb out of root through "..".
func enclosedPath(root, name string) (string, bool) {
	rel := filepath.FromSlash(strings.TrimRight(name, "/"))
	if !filepath.IsLocal(rel) {
		return "", false
	}
	return filepath.Join(root, rel), true
}

// place resolves an entry name for s, recording a skip when the name climbs
// out of root or when one of its parent directories is a symlink. Nothing is
// ever written through a symlink, whether it came from this archive or was
// already in root.
func place(s sink, root, name string, out *domain.Outcome) (string, bool) {
	target, ok := enclosedPath(root, name)
	if !ok {
		out.Skip(name, reasonEscapes)
		return "", false
	}
	if traversesLink(s, root, target) {
		out.Skip(name, reasonLinked)
		return "", false
	}
	return target, true
}

// traversesLink reports whether a directory between root and path is a
// symlink.
func traversesLink(s sink, root, path string) bool {
	rel, err := filepath.Rel(root, filepath.Dir(path))
	if err != nil || rel == "." {
		return false
	}
	cur := root
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		cur = filepath.Join(cur, part)
		if s.isLink(cur) {
			return true
		}
	}
	return false
}

// enclosedLink reports whether a symlink created at linkPath pointing to
// target stays inside root. The target is followed one component at a time
// and must not leave root or pass through another symlink on the way. Only
// its last component may be a link, which is checked when it was created.
func enclosedLink(s sink, root, linkPath, target string) bool {
	target = strings.TrimRight(filepath.FromSlash(target), string(filepath.Separator))
	if target == "" || filepath.IsAbs(target) || strings.HasPrefix(target, string(filepath.Separator)) {
		return false
	}

	cur := filepath.Dir(linkPath)
	parts := strings.Split(target, string(filepath.Separator))
	for i, part := range parts {
		switch part {
		case "", ".":
			continue
		case "..":
			cur = filepath.Dir(cur)
		default:
			cur = filepath.Join(cur, part)
			if i < len(parts)-1 && s.isLink(cur) {
				return false
			}
		}
		if !within(root, cur) {
			return false
		}
	}
	return true
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && filepath.IsLocal(rel)
}
