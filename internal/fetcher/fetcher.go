package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/teamcutter/keeper/internal/domain"
)

type HTTPFetcher struct {
	client    *http.Client
	outputDir string
	timeout   time.Duration
	progress  bool
}

type Option func(*HTTPFetcher)

// WithoutProgress disables the download progress bar.
func WithoutProgress() Option {
	return func(f *HTTPFetcher) {
		f.progress = false
	}
}

func New(outputDir string, timeout time.Duration, opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		outputDir: outputDir,
		timeout:   timeout,
		progress:  true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads rawURL into the output directory. The file keeps the
// archive name from the URL so its format can still be resolved.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL, sha string) domain.FetchResult {
	name := FileName(rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return domain.FetchResult{URL: rawURL, Error: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return domain.FetchResult{URL: rawURL, Error: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.FetchResult{
			URL:   rawURL,
			Error: fmt.Errorf("unexpected status: %d", resp.StatusCode),
		}
	}

	if err := os.MkdirAll(f.outputDir, 0755); err != nil {
		return domain.FetchResult{URL: rawURL, Error: err}
	}

	dir, err := os.MkdirTemp(f.outputDir, "download-*")
	if err != nil {
		return domain.FetchResult{URL: rawURL, Error: err}
	}
	dst := filepath.Join(dir, name)

	file, err := os.Create(dst)
	if err != nil {
		os.RemoveAll(dir)
		return domain.FetchResult{URL: rawURL, Error: err}
	}

	var w io.Writer = file
	if f.progress {
		bar := progressbar.DefaultBytes(
			resp.ContentLength,
			fmt.Sprintf("Downloading %s", name),
		)
		w = io.MultiWriter(file, bar)
	}

	_, err = io.Copy(w, resp.Body)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.RemoveAll(dir)
		return domain.FetchResult{URL: rawURL, Error: err}
	}

	if sha != "" {
		actual, err := domain.FileSHA256(dst)
		if err != nil {
			os.RemoveAll(dir)
			return domain.FetchResult{URL: rawURL, Error: err}
		}

		if !domain.ChecksumMatches(sha, actual) {
			os.RemoveAll(dir)
			return domain.FetchResult{
				URL:   rawURL,
				Error: fmt.Errorf("checksum mismatch: expected %s, got %s", sha, actual),
			}
		}
	}

	return domain.FetchResult{URL: rawURL, Path: dst}
}

// FileName is the last path segment of rawURL, or "archive" when the URL has
// none.
func FileName(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	name := path.Base(p)
	if name == "." || name == "/" || name == "" {
		return "archive"
	}
	return name
}
