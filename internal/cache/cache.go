package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"

	"github.com/teamcutter/keeper/internal/domain"
)

// DiskCache keeps downloaded archives under dir/<url key>/<archive name>.
type DiskCache struct {
	sync.RWMutex
	dir string
}

func New(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) Dir() string {
	return c.dir
}

// GetPath returns the cached archive for url, or "" when there is none.
func (c *DiskCache) GetPath(url string) string {
	c.RLock()
	defer c.RUnlock()
	return c.getPath(url)
}

func (c *DiskCache) getPath(url string) string {
	dir := filepath.Join(c.dir, key(url))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}

	for _, e := range entries {
		if e.Type().IsRegular() {
			return filepath.Join(dir, e.Name())
		}
	}
	return ""
}

func (c *DiskCache) Has(url string) bool {
	c.RLock()
	defer c.RUnlock()
	return c.getPath(url) != ""
}

// Verify reports whether the cached archive for url has the given SHA-256
// digest. A missing entry does not match.
func (c *DiskCache) Verify(url, sha256 string) (bool, error) {
	c.RLock()
	defer c.RUnlock()

	path := c.getPath(url)
	if path == "" {
		return false, nil
	}
	actual, err := domain.FileSHA256(path)
	if err != nil {
		return false, err
	}
	return domain.ChecksumMatches(sha256, actual), nil
}

// Store moves src into the cache. The archive keeps its file name so its
// format is still known when it is read back.
func (c *DiskCache) Store(url, src string) (string, error) {
	c.Lock()
	defer c.Unlock()

	destDir := filepath.Join(c.dir, key(url))
	if err := os.RemoveAll(destDir); err != nil {
		return "", err
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}

	destPath := filepath.Join(destDir, filepath.Base(src))
	if err := os.Rename(src, destPath); err != nil {
		return "", err
	}

	// Drop the download directory if that emptied it.
	_ = os.Remove(filepath.Dir(src))

	return destPath, nil
}

func (c *DiskCache) Size() (int64, error) {
	c.RLock()
	defer c.RUnlock()

	var size int64

	err := filepath.Walk(c.dir, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	if os.IsNotExist(err) {
		return 0, nil
	}

	return size, err
}

func (c *DiskCache) Clear() error {
	c.Lock()
	defer c.Unlock()

	return os.RemoveAll(c.dir)
}

func key(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:8])
}
