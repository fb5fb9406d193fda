package extractor

import (
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/teamcutter/keeper/internal/domain"
)

// TARGZExtractor feeds the gzip stream straight into the tar unpacker.
type TARGZExtractor struct {
	bufSize int
}

func NewTARGZ(bufSize int) *TARGZExtractor {
	return &TARGZExtractor{bufSize: bufSize}
}

func (tg *TARGZExtractor) Extract(src, dst string, opts domain.ExtractOptions) (*domain.Outcome, error) {
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

	out := &domain.Outcome{Listed: opts.ListOnly}
	if err := unpackTar(gzr, src, dst, newSink(opts.ListOnly, tg.bufSize), out); err != nil {
		return nil, err
	}
	return out, nil
}
