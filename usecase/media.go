package usecase

import (
	"bytes"
	"context"
	"strings"
	"time"

	coreconfig "github.com/adlytic/meta-ads-mcp/core/config"
	domainMedia "github.com/adlytic/meta-ads-mcp/domains/media"
	"github.com/adlytic/meta-ads-mcp/infrastructure/mediafetch"
	"github.com/adlytic/meta-ads-mcp/mediacache"
	"github.com/adlytic/meta-ads-mcp/pkg/fingerprint"
	"github.com/adlytic/meta-ads-mcp/validations"
	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
)

// mediaFetcher is the slice of the downloader this service needs.
type mediaFetcher interface {
	Fetch(ctx context.Context, sourceURL string) (mediafetch.Result, error)
}

type serviceMedia struct {
	store    *mediacache.Store
	fetcher  mediaFetcher
	analyzer domainMedia.Analyzer // nil when no analysis key is configured
	policy   coreconfig.CacheConfig
}

func NewMediaService(store *mediacache.Store, fetcher mediaFetcher, analyzer domainMedia.Analyzer, policy coreconfig.CacheConfig) domainMedia.IMediaUsecase {
	return &serviceMedia{
		store:    store,
		fetcher:  fetcher,
		analyzer: analyzer,
		policy:   policy,
	}
}

func (service serviceMedia) AnalysisEnabled() bool {
	return service.analyzer != nil
}

func (service serviceMedia) GetAdImage(ctx context.Context, sourceURL, brandHint string, forceRefresh bool) (domainMedia.Result, error) {
	return service.getMedia(ctx, domainMedia.KindImage, sourceURL, brandHint, forceRefresh)
}

func (service serviceMedia) GetAdVideo(ctx context.Context, sourceURL, brandHint string, forceRefresh bool) (domainMedia.Result, error) {
	return service.getMedia(ctx, domainMedia.KindVideo, sourceURL, brandHint, forceRefresh)
}

func (service serviceMedia) getMedia(ctx context.Context, kind domainMedia.Kind, sourceURL, brandHint string, forceRefresh bool) (domainMedia.Result, error) {
	sourceURL = strings.TrimSpace(sourceURL)
	brandHint = strings.TrimSpace(brandHint)
	if err := validations.ValidateMediaAnalysis(ctx, validations.MediaAnalysisRequest{
		SourceURL: sourceURL,
		BrandHint: brandHint,
	}); err != nil {
		return domainMedia.Result{}, err
	}
	if service.analyzer == nil {
		return domainMedia.Result{}, domainMedia.ErrAnalysisDisabled
	}
	if kind == domainMedia.KindVideo && !service.analyzer.SupportsVideo() {
		return domainMedia.Result{}, domainMedia.ErrUnsupportedKind
	}

	fp := fingerprint.Compute(string(kind), sourceURL)

	if !forceRefresh {
		entry, err := service.store.Get(ctx, fp)
		if err == nil {
			if entry.Analysis != nil {
				return domainMedia.Result{Entry: *entry, Cached: true}, nil
			}
			// Cached before analysis was configured: analyze the stored
			// bytes without a second download.
			return service.analyzeCached(ctx, entry)
		}
		if err != domainMedia.ErrEntryNotFound {
			return domainMedia.Result{}, err
		}
	}

	fetched, err := service.fetcher.Fetch(ctx, sourceURL)
	if err != nil {
		return domainMedia.Result{}, err
	}

	analysis, err := service.analyze(ctx, kind, fetched.Data, fetched.ContentType)
	if err != nil {
		// Nothing is cached when analysis fails, so the next call retries
		// the full pipeline.
		return domainMedia.Result{}, err
	}

	width, height := 0, 0
	if kind == domainMedia.KindImage {
		width, height = probeDimensions(fetched.Data)
	}

	entry, created, err := service.store.Put(ctx, mediacache.PutRequest{
		Fingerprint: fp,
		Kind:        kind,
		SourceURL:   sourceURL,
		ContentType: fetched.ContentType,
		BrandHint:   brandHint,
		Width:       width,
		Height:      height,
		Analysis:    analysis,
		Data:        fetched.Data,
	})
	if err != nil {
		return domainMedia.Result{}, err
	}
	if !created {
		// A concurrent caller or a force refresh raced us in; refresh the
		// existing entry's analysis with what we just computed.
		entry, err = service.store.UpdateAnalysis(ctx, fp, analysis)
		if err != nil {
			return domainMedia.Result{}, err
		}
		return domainMedia.Result{Entry: *entry, Cached: true}, nil
	}
	return domainMedia.Result{Entry: *entry, Cached: false}, nil
}

func (service serviceMedia) analyzeCached(ctx context.Context, entry *domainMedia.Entry) (domainMedia.Result, error) {
	data, err := service.store.ReadBlob(entry)
	if err != nil {
		return domainMedia.Result{}, err
	}
	analysis, err := service.analyze(ctx, entry.Kind, data, entry.ContentType)
	if err != nil {
		return domainMedia.Result{}, err
	}
	updated, err := service.store.UpdateAnalysis(ctx, entry.Fingerprint, analysis)
	if err != nil {
		return domainMedia.Result{}, err
	}
	return domainMedia.Result{Entry: *updated, Cached: true}, nil
}

func (service serviceMedia) analyze(ctx context.Context, kind domainMedia.Kind, data []byte, contentType string) (*domainMedia.Analysis, error) {
	switch kind {
	case domainMedia.KindVideo:
		va, err := service.analyzer.AnalyzeVideo(ctx, data, contentType)
		if err != nil {
			return nil, err
		}
		return &domainMedia.Analysis{Video: va}, nil
	default:
		ia, err := service.analyzer.AnalyzeImage(ctx, data, contentType)
		if err != nil {
			return nil, err
		}
		return &domainMedia.Analysis{Image: ia}, nil
	}
}

// probeDimensions decodes the image just for its bounds. Failure is not
// fatal; some CDN payloads decode fine in browsers but not here.
func probeDimensions(data []byte) (int, int) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		logrus.WithError(err).Debug("[MEDIA] Could not probe image dimensions")
		return 0, 0
	}
	bounds := img.Bounds()
	return bounds.Dx(), bounds.Dy()
}

func (service serviceMedia) SearchCached(ctx context.Context, filter domainMedia.SearchFilter) ([]domainMedia.Entry, error) {
	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, domainMedia.ErrUnsupportedKind
	}
	return service.store.Search(ctx, filter)
}

func (service serviceMedia) Stats(ctx context.Context) (domainMedia.Stats, error) {
	return service.store.Stats(ctx)
}

func (service serviceMedia) Cleanup(ctx context.Context, maxAgeDays int, maxSizeMB int64) (domainMedia.CleanupResult, error) {
	if maxAgeDays <= 0 {
		maxAgeDays = service.policy.MaxAgeDays
	}
	if maxSizeMB <= 0 {
		maxSizeMB = service.policy.MaxSizeMB
	}
	if err := validations.ValidateCacheCleanup(ctx, validations.CacheCleanupRequest{
		MaxAgeDays: maxAgeDays,
		MaxSizeMB:  maxSizeMB,
	}); err != nil {
		return domainMedia.CleanupResult{}, err
	}

	maxAge := time.Duration(maxAgeDays) * 24 * time.Hour
	return service.store.Cleanup(ctx, maxAge, maxSizeMB*1024*1024)
}

// StartBackgroundCleanup runs the retention policy on a timer until the
// context is cancelled.
func (service serviceMedia) StartBackgroundCleanup(ctx context.Context) {
	interval := time.Duration(service.policy.CleanupIntervalMins) * time.Minute
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := service.Cleanup(ctx, 0, 0); err != nil {
					logrus.WithError(err).Error("[CACHE] Background cleanup failed")
				}
			}
		}
	}()
}
