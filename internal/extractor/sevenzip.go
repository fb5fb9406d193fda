package extractor

import (
	"os"

	"github.com/bodgit/sevenzip"
	"github.com/teamcutter/keeper/internal/domain"
)

// FILE_ATTRIBUTE_UNIX_EXTENSION: the high 16 attribute bits hold a unix mode.
const sevenZipUnixExtension = 0x8000

type SevenZipExtractor struct {
	bufSize int
}

func NewSevenZip(bufSize int) *SevenZipExtractor {
	return &SevenZipExtractor{bufSize: bufSize}
}

func (se *SevenZipExtractor) Extract(src, dst string, opts domain.ExtractOptions) (*domain.Outcome, error) {
	r, err := sevenzip.OpenReader(src)
	if err != nil {
		return nil, domain.IOError("open", src, err)
	}
	defer r.Close()

	s := newSink(opts.ListOnly, se.bufSize)
	out := &domain.Outcome{Listed: opts.ListOnly}

	for _, f := range r.File {
		if err := se.extractFile(f, dst, s, out); err != nil {
			return nil, err
		}
	}

	if err := s.finish(); err != nil {
		return nil, err
	}
	return out, nil
}

func (se *SevenZipExtractor) extractFile(f *sevenzip.File, root string, s sink, out *domain.Outcome) error {
	target, ok := place(s, root, f.Name, out)
	if !ok {
		return nil
	}

	info := f.FileInfo()
	mode := info.Mode()
	unixMode := f.Attributes&sevenZipUnixExtension != 0

	if info.IsDir() {
		if err := s.mkdir(target); err != nil {
			return err
		}
		if unixMode {
			s.dirMode(target, mode)
		}
		out.Add(domain.Entry{Name: f.Name, Path: target, Dir: true, Mode: mode.Perm(), HasMode: unixMode})
		return nil
	}

	rc, err := f.Open()
	if err != nil {
		return domain.IOError("open", f.Name, err)
	}
	defer rc.Close()

	if mode&os.ModeSymlink != 0 {
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
		out.Add(domain.Entry{Name: f.Name, Path: target, Symlink: linkTarget})
		return nil
	}

	n, err := s.write(target, rc)
	if err != nil {
		return err
	}

	entry := domain.Entry{Name: f.Name, Path: target, Size: n}
	if unixMode {
		if err := s.chmod(target, mode); err != nil {
			return err
		}
		entry.Mode = mode.Perm()
		entry.HasMode = true
	}
	out.Add(entry)

	return nil
}
