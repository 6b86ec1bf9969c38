// Package mediacache is the disk backed cache for ad creatives: blobs in a
// sharded directory tree, metadata and analysis in a GORM database.
package mediacache

import (
	"context"
	"fmt"
	"time"

	"github.com/adlytic/meta-ads-mcp/domains/media"
	"github.com/adlytic/meta-ads-mcp/mediacache/repository"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const cleanupBatchSize = 100

// Store combines the blob store and the metadata repository behind the
// invariants the rest of the system relies on: a metadata row is only
// visible once its blob is fully published, Put is idempotent per
// fingerprint, and writers to the same fingerprint are serialized.
type Store struct {
	blobs *BlobStore
	repo  *repository.EntryGormRepository
	locks *keyedMutex

	// now is swappable in tests.
	now func() time.Time
}

func NewStore(cacheRoot string, db *gorm.DB) *Store {
	return &Store{
		blobs: NewBlobStore(cacheRoot),
		repo:  repository.NewEntryGormRepository(db),
		locks: newKeyedMutex(),
		now:   time.Now,
	}
}

// Init migrates the metadata schema.
func (s *Store) Init(ctx context.Context) error {
	return s.repo.InitSchema(ctx)
}

func (s *Store) Root() string {
	return s.blobs.Root()
}

// PutRequest carries everything needed to admit one asset into the cache.
type PutRequest struct {
	Fingerprint string
	Kind        media.Kind
	SourceURL   string
	ContentType string
	BrandHint   string
	Width       int
	Height      int
	Analysis    *media.Analysis
	Data        []byte
}

// Get returns the entry for a fingerprint. A metadata row whose blob has
// vanished from disk is dropped and reported as a miss.
func (s *Store) Get(ctx context.Context, fp string) (*media.Entry, error) {
	entry, err := s.repo.Get(ctx, fp)
	if err != nil {
		return nil, err
	}
	if !s.blobs.Exists(entry.StoredPath) {
		logrus.Warnf("[CACHE] Entry %s lost its blob at %s, evicting stale row", fp, entry.StoredPath)
		if delErr := s.repo.Delete(ctx, fp); delErr != nil {
			return nil, delErr
		}
		return nil, media.ErrEntryNotFound
	}
	return entry, nil
}

// Put admits an asset. If the fingerprint is already cached the existing
// entry is returned untouched, CreatedAt included. The blob is published
// before the row is inserted; an insert failure rolls the blob back so
// neither half outlives the other.
func (s *Store) Put(ctx context.Context, req PutRequest) (*media.Entry, bool, error) {
	if !req.Kind.Valid() {
		return nil, false, media.ErrUnsupportedKind
	}

	s.locks.Lock(req.Fingerprint)
	defer s.locks.Unlock(req.Fingerprint)

	if existing, err := s.Get(ctx, req.Fingerprint); err == nil {
		return existing, false, nil
	} else if err != media.ErrEntryNotFound {
		return nil, false, err
	}

	path, err := s.blobs.WriteAtomic(req.Kind, req.Fingerprint, req.ContentType, req.Data)
	if err != nil {
		return nil, false, fmt.Errorf("store blob %s: %w", req.Fingerprint, err)
	}

	now := s.now().UTC()
	entry := &media.Entry{
		Fingerprint: req.Fingerprint,
		Kind:        req.Kind,
		SourceURL:   req.SourceURL,
		StoredPath:  path,
		ContentType: req.ContentType,
		SizeBytes:   int64(len(req.Data)),
		BrandHint:   req.BrandHint,
		Width:       req.Width,
		Height:      req.Height,
		CreatedAt:   now,
	}
	if req.Analysis != nil {
		entry.Analysis = req.Analysis
		entry.DominantColors = req.Analysis.DominantColors()
		entry.HasPeople = req.Analysis.HasPeople()
		entry.TextContent = req.Analysis.TextContent()
		analyzedAt := now
		entry.AnalyzedAt = &analyzedAt
	}

	if err := s.repo.Insert(ctx, entry); err != nil {
		if rmErr := s.blobs.Remove(path); rmErr != nil {
			logrus.WithError(rmErr).Warnf("[CACHE] Could not remove orphaned blob %s", path)
		}
		return nil, false, fmt.Errorf("store entry %s: %w", req.Fingerprint, err)
	}
	return entry, true, nil
}

// ReadBlob returns the stored bytes for an entry.
func (s *Store) ReadBlob(entry *media.Entry) ([]byte, error) {
	return s.blobs.Read(entry.StoredPath)
}

// UpdateAnalysis attaches provider output to a cached entry and returns the
// refreshed entry.
func (s *Store) UpdateAnalysis(ctx context.Context, fp string, analysis *media.Analysis) (*media.Entry, error) {
	s.locks.Lock(fp)
	defer s.locks.Unlock(fp)

	if err := s.repo.UpdateAnalysis(ctx, fp, analysis, s.now().UTC()); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, fp)
}

func (s *Store) Search(ctx context.Context, filter media.SearchFilter) ([]media.Entry, error) {
	return s.repo.Search(ctx, filter)
}

func (s *Store) Stats(ctx context.Context) (media.Stats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return stats, err
	}
	stats.HumanSize = humanize.Bytes(uint64(stats.TotalSizeBytes))
	stats.CacheDir = s.blobs.Root()
	return stats, nil
}

// Cleanup removes entries oldest first until no entry is older than maxAge
// and the total size is within maxBytes. An entry is removed when either
// bound is still violated; younger entries survive once both hold.
func (s *Store) Cleanup(ctx context.Context, maxAge time.Duration, maxBytes int64) (media.CleanupResult, error) {
	var result media.CleanupResult

	_, totalSize, err := s.repo.Totals(ctx)
	if err != nil {
		return result, err
	}

	cutoff := s.now().UTC().Add(-maxAge)
	var cursor *media.Entry

	for {
		batch, err := s.repo.OldestBatch(ctx, cleanupBatchSize, cursor)
		if err != nil {
			return result, err
		}
		if len(batch) == 0 {
			break
		}

		done := false
		for i := range batch {
			entry := batch[i]
			tooOld := entry.CreatedAt.Before(cutoff)
			overBudget := totalSize > maxBytes
			if !tooOld && !overBudget {
				done = true
				break
			}
			if err := s.removeEntry(ctx, &entry); err != nil {
				return result, err
			}
			totalSize -= entry.SizeBytes
			result.RemovedCount++
			result.FreedBytes += entry.SizeBytes
			cursor = &entry
		}
		if done || len(batch) < cleanupBatchSize {
			break
		}
	}

	remaining, remainingSize, err := s.repo.Totals(ctx)
	if err != nil {
		return result, err
	}
	result.RemainingEntries = remaining
	result.RemainingBytes = remainingSize

	if result.RemovedCount > 0 {
		logrus.Infof("[CACHE] Cleanup removed %d entries, freed %s", result.RemovedCount, humanize.Bytes(uint64(result.FreedBytes)))
	}
	return result, nil
}

// removeEntry drops the metadata row first so the entry is never visible
// without its blob; a leftover file is reclaimed by a later cleanup pass.
func (s *Store) removeEntry(ctx context.Context, entry *media.Entry) error {
	s.locks.Lock(entry.Fingerprint)
	defer s.locks.Unlock(entry.Fingerprint)

	if err := s.repo.Delete(ctx, entry.Fingerprint); err != nil {
		return fmt.Errorf("delete entry %s: %w", entry.Fingerprint, err)
	}
	if err := s.blobs.Remove(entry.StoredPath); err != nil {
		logrus.WithError(err).Warnf("[CACHE] Could not remove blob %s", entry.StoredPath)
	}
	return nil
}
