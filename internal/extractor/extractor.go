package extractor

import (
	"github.com/teamcutter/keeper/internal/domain"
	"go.uber.org/zap"
)

const defaultBufferSize = 32 * 1024

type Config struct {
	BufferSize int
	// StagingDir is where nested pipelines create scratch directories.
	// Empty means the OS temp directory.
	StagingDir string
	Logger     *zap.Logger
}

// Extractor holds one strategy per supported format.
type Extractor struct {
	tar      *TARExtractor
	zip      *ZIPExtractor
	rar      *RARExtractor
	sevenZip *SevenZipExtractor
	gzip     *GZIPExtractor
	tarGz    *TARGZExtractor
	tar7z    *TAR7ZExtractor
}

func New(cfg Config) *Extractor {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = defaultBufferSize
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	tar := NewTAR(cfg.BufferSize)
	sevenZip := NewSevenZip(cfg.BufferSize)

	return &Extractor{
		tar:      tar,
		zip:      NewZIP(cfg.BufferSize),
		rar:      NewRAR(cfg.BufferSize),
		sevenZip: sevenZip,
		gzip:     NewGZIP(cfg.BufferSize),
		tarGz:    NewTARGZ(cfg.BufferSize),
		tar7z:    NewTAR7Z(sevenZip, tar, cfg.StagingDir, cfg.Logger),
	}
}

// For selects the extractor for f. Planned and unknown formats have none.
func (e *Extractor) For(f domain.ArchiveFormat) (domain.Extractor, error) {
	switch f.Kind {
	case domain.FormatTar:
		return e.tar, nil
	case domain.FormatZip:
		return e.zip, nil
	case domain.FormatRar:
		return e.rar, nil
	case domain.FormatSevenZip:
		return e.sevenZip, nil
	case domain.FormatGzip:
		return e.gzip, nil
	case domain.FormatTarGz:
		return e.tarGz, nil
	case domain.FormatTarSevenZip:
		return e.tar7z, nil
	default:
		return nil, domain.FormatError("", f)
	}
}
