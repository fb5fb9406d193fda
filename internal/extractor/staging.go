package extractor

import (
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// staging is a scratch directory owned by a single pipeline run. Callers
// release it with defer so it goes away on every exit path.
type staging struct {
	dir string
	log *zap.Logger
}

func newStaging(root string, log *zap.Logger) (*staging, error) {
	dir, err := os.MkdirTemp(root, "keeper-stage-*")
	if err != nil {
		return nil, err
	}
	log.Debug("staging acquired", zap.String("dir", dir))
	return &staging{dir: dir, log: log}, nil
}

func (s *staging) release() {
	// The outer archive may have left read-only directories behind.
	_ = filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err == nil && d.IsDir() {
			_ = os.Chmod(path, 0700)
		}
		return nil
	})

	if err := os.RemoveAll(s.dir); err != nil {
		s.log.Warn("staging release failed", zap.String("dir", s.dir), zap.Error(err))
		return
	}
	s.log.Debug("staging released", zap.String("dir", s.dir))
}
