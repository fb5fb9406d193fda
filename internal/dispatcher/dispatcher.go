package dispatcher

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/teamcutter/keeper/internal/destination"
	"github.com/teamcutter/keeper/internal/domain"
	"go.uber.org/zap"
)

// Dispatcher runs one extraction request: it resolves the format and the
// destination, then hands the archive to the matching extractor.
type Dispatcher struct {
	extractors domain.ExtractorSet
	fetcher    domain.Fetcher
	cache      domain.Cache
	log        *zap.Logger
}

// New wires a dispatcher. fetcher and cache may be nil, in which case remote
// archive URLs are rejected.
func New(
	extractors domain.ExtractorSet,
	fetcher domain.Fetcher,
	cache domain.Cache,
	log *zap.Logger,
) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}

	return &Dispatcher{
		extractors: extractors,
		fetcher:    fetcher,
		cache:      cache,
		log:        log,
	}
}

func (d *Dispatcher) Extract(ctx context.Context, req domain.Request) (*domain.Outcome, error) {
	start := time.Now()

	archive := req.ArchivePath
	if IsRemote(archive) {
		if f := domain.ResolveFormat(path.Base(archive)); !f.Supported() {
			return nil, domain.FormatError(archive, f)
		}
		local, err := d.Fetch(ctx, archive, req.SHA256)
		if err != nil {
			return nil, err
		}
		archive = local
	}

	if err := checkArchive(archive); err != nil {
		return nil, err
	}

	format := domain.ResolveFormat(archive)
	if !format.Supported() {
		return nil, domain.FormatError(archive, format)
	}
	d.log.Debug("format resolved", zap.String("archive", archive), zap.Stringer("format", format))

	// Listing never touches the destination either.
	dst, err := destination.Resolve(archive, req.DestinationHint, format, req.DryRun || req.ListOnly)
	if err != nil {
		return nil, err
	}
	d.log.Debug("destination resolved",
		zap.String("root", dst.Root),
		zap.Bool("created", dst.Created),
		zap.Bool("planned", dst.Planned),
	)

	if req.DryRun {
		d.log.Debug("dry run, extractor skipped", zap.String("archive", archive))
		return &domain.Outcome{
			Archive:     archive,
			Format:      format,
			Destination: *dst,
			DryRun:      true,
			Duration:    time.Since(start),
		}, nil
	}

	ex, err := d.extractors.For(format)
	if err != nil {
		return nil, err
	}

	target := dst.Root
	if dst.File != "" {
		target = dst.File
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := ex.Extract(archive, target, domain.ExtractOptions{ListOnly: req.ListOnly})
	if err != nil {
		return nil, err
	}

	out.Archive = archive
	out.Format = format
	out.Destination = *dst
	out.Duration = time.Since(start)

	for _, s := range out.Skipped {
		d.log.Warn("entry skipped",
			zap.String("archive", archive),
			zap.String("entry", s.Name),
			zap.String("reason", s.Reason),
		)
	}
	d.log.Debug("extracted",
		zap.String("archive", archive),
		zap.Int("entries", len(out.Entries)),
		zap.Duration("took", out.Duration),
	)

	return out, nil
}

// Fetch returns a local path for a remote archive, downloading it only when
// the cache does not already hold it.
func (d *Dispatcher) Fetch(ctx context.Context, url, sha256 string) (string, error) {
	if d.fetcher == nil || d.cache == nil {
		return "", &domain.ExtractError{Kind: domain.ErrArchiveNotFound, Op: "fetch", Path: url,
			Err: fmt.Errorf("remote archives are not enabled")}
	}

	if d.cache.Has(url) {
		ok, err := d.cachedMatches(url, sha256)
		if err != nil {
			return "", domain.IOError("cache", url, err)
		}
		if ok {
			d.log.Debug("cache hit", zap.String("url", url))
			return d.cache.GetPath(url), nil
		}
		d.log.Warn("cached archive fails checksum, fetching again", zap.String("url", url))
	}

	result := d.fetcher.Fetch(ctx, url, sha256)
	if result.Error != nil {
		return "", &domain.ExtractError{Kind: domain.ErrArchiveNotFound, Op: "fetch", Path: url, Err: result.Error}
	}

	local, err := d.cache.Store(url, result.Path)
	if err != nil {
		return "", domain.IOError("cache", url, err)
	}
	d.log.Debug("cached", zap.String("url", url), zap.String("path", local))

	return local, nil
}

// cachedMatches reports whether the cached copy of url may be used. Without a
// digest any cached copy will do.
func (d *Dispatcher) cachedMatches(url, sha256 string) (bool, error) {
	if sha256 == "" {
		return true, nil
	}
	return d.cache.Verify(url, sha256)
}

func IsRemote(archive string) bool {
	return strings.HasPrefix(archive, "http://") || strings.HasPrefix(archive, "https://")
}

func checkArchive(archive string) error {
	info, err := os.Stat(archive)
	if err != nil {
		return &domain.ExtractError{Kind: domain.ErrArchiveNotFound, Op: "stat", Path: archive, Err: err}
	}
	if !info.Mode().IsRegular() {
		return &domain.ExtractError{Kind: domain.ErrArchiveNotFound, Op: "stat", Path: archive,
			Err: fmt.Errorf("not a regular file")}
	}
	return nil
}
