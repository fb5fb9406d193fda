package extractor

import (
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/teamcutter/keeper/internal/domain"
)

// GZIPExtractor decodes a single gzip stream into the file at dst.
type GZIPExtractor struct {
	bufSize int
}

func NewGZIP(bufSize int) *GZIPExtractor {
	return &GZIPExtractor{bufSize: bufSize}
}

func (ge *GZIPExtractor) Extract(src, dst string, opts domain.ExtractOptions) (*domain.Outcome, error) {
	file, err := os.Open(src)
	if err != nil {
		return nil, domain.IOError("open", src, err)
	}
	defer file.Close()

	gzr, err := gzip.NewReader(file)
	if err != nil {
		return nil, domain.IOError("gzip", src, err)
	}
	defer gzr.Close()

	n, err := newSink(opts.ListOnly, ge.bufSize).write(dst, gzr)
	if err != nil {
		return nil, err
	}

	name := gzr.Name
	if name == "" {
		name = filepath.Base(dst)
	}

	out := &domain.Outcome{Listed: opts.ListOnly}
	out.Add(domain.Entry{Name: name, Path: dst, Size: n})
	return out, nil
}
