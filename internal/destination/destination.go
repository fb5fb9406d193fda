// Package destination works out where an archive is unpacked.
package destination

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/teamcutter/keeper/internal/domain"
)

// Resolve validates hint and returns the extraction root for archivePath.
//
// Directory formats unpack into hint/<archive file name>. Single-stream formats
// write one file, hint/<archive file name minus its compression suffix>, and
// use hint itself as the root. The root is created unless dryRun is set, in
// which case Planned reports that it would have been.
func Resolve(archivePath, hint string, format domain.ArchiveFormat, dryRun bool) (*domain.Destination, error) {
	if hint == "" {
		hint = "."
	}
	hint = filepath.Clean(hint)

	if HasExtension(hint) {
		return nil, &domain.ExtractError{
			Kind: domain.ErrInvalidDestination,
			Op:   "resolve",
			Path: hint,
			Ext:  strings.TrimPrefix(filepath.Ext(hint), "."),
		}
	}

	name := filepath.Base(archivePath)
	dst := &domain.Destination{Root: filepath.Join(hint, name)}

	if format.SingleStream() {
		dst.Root = hint
		dst.File = filepath.Join(hint, strings.TrimSuffix(name, filepath.Ext(name)))
	}

	info, err := os.Stat(dst.Root)
	switch {
	case err == nil && info.IsDir():
		return dst, nil
	case err == nil:
		return nil, &domain.ExtractError{Kind: domain.ErrInvalidDestination, Op: "resolve", Path: dst.Root}
	case !os.IsNotExist(err):
		return nil, domain.IOError("stat", dst.Root, err)
	}

	if dryRun {
		dst.Planned = true
		return dst, nil
	}

	if err := os.MkdirAll(dst.Root, 0755); err != nil {
		return nil, domain.IOError("mkdir", dst.Root, err)
	}
	dst.Created = true

	return dst, nil
}

// HasExtension reports whether the last element of p carries a file
// extension. A leading dot (".cache") does not count.
func HasExtension(p string) bool {
	base := filepath.Base(p)
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return false
	}
	i := strings.LastIndex(base, ".")
	return i > 0
}
