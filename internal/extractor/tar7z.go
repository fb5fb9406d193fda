package extractor

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/teamcutter/keeper/internal/domain"
	"go.uber.org/zap"
)

// TAR7ZExtractor handles a tar wrapped in 7z. The 7z decoder cannot stream a
// member into the tar reader, so the tar is materialised in a staging
// directory first and unpacked from there.
type TAR7ZExtractor struct {
	outer      domain.Extractor
	tar        *TARExtractor
	stagingDir string
	log        *zap.Logger
}

func NewTAR7Z(outer domain.Extractor, tar *TARExtractor, stagingDir string, log *zap.Logger) *TAR7ZExtractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &TAR7ZExtractor{outer: outer, tar: tar, stagingDir: stagingDir, log: log}
}

func (t7 *TAR7ZExtractor) Extract(src, dst string, opts domain.ExtractOptions) (*domain.Outcome, error) {
	stage, err := newStaging(t7.stagingDir, t7.log)
	if err != nil {
		return nil, domain.IOError("mkdtemp", t7.stagingDir, err)
	}
	defer stage.release()

	// Staging is scratch space, so the outer layer is always written out,
	// even when only listing.
	if _, err := t7.outer.Extract(src, stage.dir, domain.ExtractOptions{}); err != nil {
		return nil, err
	}

	member, err := findTarMember(stage.dir)
	if err != nil {
		return nil, err
	}
	if member == "" {
		return nil, &domain.ExtractError{Kind: domain.ErrNestedArchiveMissingMember, Op: "scan", Path: src}
	}

	t7.log.Debug("nested tar found", zap.String("archive", src), zap.String("member", filepath.Base(member)))

	return t7.tar.Extract(member, dst, opts)
}

// findTarMember returns the first immediate entry of dir, by name, with a
// .tar extension, or "" when there is none.
func findTarMember(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", domain.IOError("readdir", dir, err)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".tar") {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", nil
}
