package extractor

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/teamcutter/keeper/internal/domain"
)

type TARExtractor struct {
	bufSize int
}

func NewTAR(bufSize int) *TARExtractor {
	return &TARExtractor{bufSize: bufSize}
}

// Extract unpacks the tar file at src. The nested 7z pipeline calls it with a
// member it found in staging rather than the requested archive.
func (te *TARExtractor) Extract(src, dst string, opts domain.ExtractOptions) (*domain.Outcome, error) {
	file, err := os.Open(src)
	if err != nil {
		return nil, domain.IOError("open", src, err)
	}
	defer file.Close()

	out := &domain.Outcome{Listed: opts.ListOnly}
	if err := unpackTar(file, src, dst, newSink(opts.ListOnly, te.bufSize), out); err != nil {
		return nil, err
	}
	return out, nil
}

// unpackTar streams a tar archive from r into root. src only labels errors.
func unpackTar(r io.Reader, src, root string, s sink, out *domain.Outcome) error {
	tr := tar.NewReader(r)

	for {
		header, err := tr.Next()
		if err == io.EOF {
			return s.finish()
		}
		// The header is still usable; place decides what happens to it.
		if err != nil && !errors.Is(err, tar.ErrInsecurePath) {
			return domain.IOError("read", src, err)
		}

		target, ok := place(s, root, header.Name, out)
		if !ok {
			continue
		}

		mode := header.FileInfo().Mode()

		switch header.Typeflag {
		case tar.TypeDir:
			if err := s.mkdir(target); err != nil {
				return err
			}
			s.dirMode(target, mode)
			out.Add(domain.Entry{Name: header.Name, Path: target, Mode: mode.Perm(), HasMode: true, Dir: true})
		case tar.TypeReg:
			n, err := s.write(target, tr)
			if err != nil {
				return err
			}
			if err := s.chmod(target, mode); err != nil {
				return err
			}
			out.Add(domain.Entry{Name: header.Name, Path: target, Size: n, Mode: mode.Perm(), HasMode: true})
		case tar.TypeSymlink:
			if !enclosedLink(s, root, target, header.Linkname) {
				out.Skip(header.Name, reasonLinkEscapes)
				continue
			}
			if err := s.symlink(target, header.Linkname); err != nil {
				return err
			}
			out.Add(domain.Entry{Name: header.Name, Path: target, Symlink: header.Linkname})
		case tar.TypeLink:
			// Linkname is another member of the same archive.
			linked, ok := enclosedPath(root, header.Linkname)
			if !ok || traversesLink(s, root, linked) {
				out.Skip(header.Name, "hardlink target escapes destination")
				continue
			}
			n, err := s.link(target, linked)
			if errors.Is(err, errLinkTarget) {
				out.Skip(header.Name, fmt.Sprintf("hardlink target %q was not extracted", header.Linkname))
				continue
			}
			if err != nil {
				return err
			}
			out.Add(domain.Entry{Name: header.Name, Path: target, Size: n, Hardlink: header.Linkname})
		default:
			out.Skip(header.Name, fmt.Sprintf("unsupported entry type %q", header.Typeflag))
		}
	}
}
