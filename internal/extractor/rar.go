package extractor

import (
	"io"
	"os"

	"github.com/nwaples/rardecode"
	"github.com/teamcutter/keeper/internal/domain"
)

// RARExtractor walks the archive one header at a time; bodies are streamed
// and never buffered whole.
type RARExtractor struct {
	bufSize int
}

func NewRAR(bufSize int) *RARExtractor {
	return &RARExtractor{bufSize: bufSize}
}

func (re *RARExtractor) Extract(src, dst string, opts domain.ExtractOptions) (*domain.Outcome, error) {
	rc, err := rardecode.OpenReader(src, "")
	if err != nil {
		return nil, domain.IOError("open", src, err)
	}
	defer rc.Close()

	s := newSink(opts.ListOnly, re.bufSize)
	out := &domain.Outcome{Listed: opts.ListOnly}

	for {
		header, err := rc.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, domain.IOError("read", src, err)
		}

		// Next skips whatever body is left unread.
		target, ok := place(s, dst, header.Name, out)
		if !ok {
			continue
		}

		mode := header.Mode()
		unixHost := header.HostOS == rardecode.HostOSUnix

		if header.IsDir {
			if err := s.mkdir(target); err != nil {
				return nil, err
			}
			if unixHost {
				s.dirMode(target, mode)
			}
			out.Add(domain.Entry{Name: header.Name, Path: target, Dir: true, Mode: mode.Perm(), HasMode: unixHost})
			continue
		}

		if unixHost && mode&os.ModeSymlink != 0 {
			linkTarget, ok, err := readLinkTarget(s, dst, target, rc)
			if err != nil {
				return nil, err
			}
			if !ok {
				out.Skip(header.Name, reasonLinkEscapes)
				continue
			}
			if err := s.symlink(target, linkTarget); err != nil {
				return nil, err
			}
			out.Add(domain.Entry{Name: header.Name, Path: target, Symlink: linkTarget})
			continue
		}

		n, err := s.write(target, rc)
		if err != nil {
			return nil, err
		}

		entry := domain.Entry{Name: header.Name, Path: target, Size: n}
		if unixHost {
			if err := s.chmod(target, mode); err != nil {
				return nil, err
			}
			entry.Mode = mode.Perm()
			entry.HasMode = true
		}
		out.Add(entry)
	}

	if err := s.finish(); err != nil {
		return nil, err
	}
	return out, nil
}
