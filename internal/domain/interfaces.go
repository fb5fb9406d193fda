package domain

import (
	"context"
)

type Extractor interface {
	Extract(src, dst string, opts ExtractOptions) (*Outcome, error)
}

type ExtractorSet interface {
	For(f ArchiveFormat) (Extractor, error)
}

type Fetcher interface {
	Fetch(ctx context.Context, url, sha256 string) FetchResult
}

type Cache interface {
	Has(url string) bool
	GetPath(url string) string
	Verify(url, sha256 string) (bool, error)
	Store(url, src string) (string, error)
	Size() (int64, error)
	Clear() error
}
