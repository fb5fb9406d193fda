package extractor

import (
	"errors"
	"os"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/teamcutter/keeper/internal/domain"
)

// Host systems whose zip external attributes carry unix mode bits.
const (
	zipCreatorUnix   = 3
	zipCreatorMacOSX = 19
)

type ZIPExtractor struct {
	bufSize int
}

func NewZIP(bufSize int) *ZIPExtractor {
	return &ZIPExtractor{bufSize: bufSize}
}

func (ze *ZIPExtractor) Extract(src, dst string, opts domain.ExtractOptions) (*domain.Outcome, error) {
	r, err := zip.OpenReader(src)
	// Unsafe names are skipped entry by entry below.
	if errors.Is(err, zip.ErrInsecurePath) {
		err = nil
	}
	if err != nil {
		return nil, domain.IOError("open", src, err)
	}
	defer r.Close()

	s := newSink(opts.ListOnly, ze.bufSize)
	out := &domain.Outcome{Listed: opts.ListOnly}

	// By index: names may repeat.
	for i := range r.File {
		if err := ze.extractFile(r.File[i], dst, s, out); err != nil {
			return nil, err
		}
	}

	if err := s.finish(); err != nil {
		return nil, err
	}
	return out, nil
}

func (ze *ZIPExtractor) extractFile(f *zip.File, root string, s sink, out *domain.Outcome) error {
	target, ok := place(s, root, f.Name, out)
	if !ok {
		return nil
	}

	mode, hasMode := zipUnixMode(&f.FileHeader)

	if strings.HasSuffix(f.Name, "/") || strings.HasSuffix(f.Name, `\`) {
		if err := s.mkdir(target); err != nil {
			return err
		}
		entry := domain.Entry{Name: f.Name, Path: target, Dir: true, Comment: f.Comment}
		if hasMode {
			s.dirMode(target, mode)
			entry.Mode = mode.Perm()
			entry.HasMode = true
		}
		out.Add(entry)
		return nil
	}

	rc, err := f.Open()
	if err != nil {
		return domain.IOError("open", f.Name, err)
	}
	defer rc.Close()

	if hasMode && mode&os.ModeSymlink != 0 {
		linkTarget, ok, err := readLinkTarget(s, root, target, rc)
		if err != nil {
			return err
		}
		if !ok {
			out.Skip(f.Name, reasonLinkEscapes)
			return nil
		}
		if err := s.symlink(target, linkTarget); err != nil {
			return err
		}
		out.Add(domain.Entry{Name: f.Name, Path: target, Symlink: linkTarget, Comment: f.Comment})
		return nil
	}

	n, err := s.write(target, rc)
	if err != nil {
		return err
	}

	entry := domain.Entry{Name: f.Name, Path: target, Size: n, Comment: f.Comment}
	if hasMode {
		if err := s.chmod(target, mode); err != nil {
			return err
		}
		entry.Mode = mode.Perm()
		entry.HasMode = true
	}
	out.Add(entry)

	return nil
}

func zipUnixMode(fh *zip.FileHeader) (os.FileMode, bool) {
	switch fh.CreatorVersion >> 8 {
	case zipCreatorUnix, zipCreatorMacOSX:
		return fh.Mode(), true
	}
	return 0, false
}
