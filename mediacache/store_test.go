package mediacache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/adlytic/meta-ads-mcp/domains/media"
	"github.com/adlytic/meta-ads-mcp/pkg/fingerprint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	db, err := gorm.Open(sqlite.Open(filepath.Join(dir, "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	store := NewStore(filepath.Join(dir, "cache"), db)
	require.NoError(t, store.Init(context.Background()))
	return store
}

func imageReq(url string, data []byte) PutRequest {
	return PutRequest{
		Fingerprint: fingerprint.Compute("image", url),
		Kind:        media.KindImage,
		SourceURL:   url,
		ContentType: "image/jpeg",
		Data:        data,
	}
}

func TestPutAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	req := imageReq("https://cdn.test/a.jpg", []byte("payload"))
	entry, created, err := store.Put(ctx, req)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, req.Fingerprint, entry.Fingerprint)
	assert.Equal(t, int64(7), entry.SizeBytes)

	data, err := os.ReadFile(entry.StoredPath)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	got, err := store.Get(ctx, req.Fingerprint)
	require.NoError(t, err)
	assert.Equal(t, entry.Fingerprint, got.Fingerprint)
	assert.Equal(t, entry.StoredPath, got.StoredPath)
}

func TestPutIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }

	req := imageReq("https://cdn.test/a.jpg", []byte("original"))
	first, created, err := store.Put(ctx, req)
	require.NoError(t, err)
	require.True(t, created)

	// A later put of the same fingerprint with different bytes must not
	// touch the stored entry.
	store.now = func() time.Time { return base.Add(48 * time.Hour) }
	req.Data = []byte("different bytes entirely")
	second, created, err := store.Put(ctx, req)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Equal(t, first.SizeBytes, second.SizeBytes)

	data, err := store.ReadBlob(second)
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))
}

func TestGetEvictsStaleRow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	req := imageReq("https://cdn.test/gone.jpg", []byte("x"))
	entry, _, err := store.Put(ctx, req)
	require.NoError(t, err)

	require.NoError(t, os.Remove(entry.StoredPath))

	_, err = store.Get(ctx, req.Fingerprint)
	assert.ErrorIs(t, err, media.ErrEntryNotFound)

	// The stale row is gone too, so the miss is stable.
	_, err = store.Get(ctx, req.Fingerprint)
	assert.ErrorIs(t, err, media.ErrEntryNotFound)
}

func TestWriteAtomicFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	blobs := NewBlobStore(dir)

	fp := fingerprint.Compute("image", "https://cdn.test/blocked.jpg")
	// Occupy the shard directory path with a file so the write cannot land.
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "images"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "images", fingerprint.Shard(fp)), []byte{}, 0644))

	_, err := blobs.WriteAtomic(media.KindImage, fp, "image/jpeg", []byte("data"))
	require.Error(t, err)

	// No temp files and no destination file may survive the failure.
	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			assert.NotContains(t, filepath.Base(path), "tmp-")
			assert.NotContains(t, filepath.Base(path), fp)
		}
		return nil
	})
	require.NoError(t, err)
}

func TestPutFailureLeavesNoBlob(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sqlDB, err := store.repo.DB().DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, _, err = store.Put(ctx, imageReq("https://cdn.test/fail.jpg", []byte("data")))
	require.Error(t, err)

	// The cache directory must hold no published or temp blobs.
	found := 0
	_ = filepath.Walk(store.Root(), func(path string, info os.FileInfo, walkErr error) error {
		if walkErr == nil && info != nil && !info.IsDir() {
			found++
		}
		return nil
	})
	assert.Zero(t, found)
}

func putAged(t *testing.T, store *Store, url string, size int, age time.Duration, base time.Time) *media.Entry {
	t.Helper()
	store.now = func() time.Time { return base.Add(-age) }
	entry, created, err := store.Put(context.Background(), imageReq(url, make([]byte, size)))
	require.NoError(t, err)
	require.True(t, created)
	return entry
}

func TestCleanupAgeAndSizeBounds(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	old := putAged(t, store, "https://cdn.test/old.jpg", 100, 10*24*time.Hour, base)
	putAged(t, store, "https://cdn.test/mid.jpg", 200, 5*24*time.Hour, base)
	putAged(t, store, "https://cdn.test/new.jpg", 300, 1*24*time.Hour, base)

	store.now = func() time.Time { return base }
	result, err := store.Cleanup(ctx, 7*24*time.Hour, 1000)
	require.NoError(t, err)

	// Only the 10 day old entry violates a bound: total size 600 is within
	// the 1000 byte budget.
	assert.Equal(t, int64(1), result.RemovedCount)
	assert.Equal(t, int64(100), result.FreedBytes)
	assert.Equal(t, int64(2), result.RemainingEntries)
	assert.Equal(t, int64(500), result.RemainingBytes)

	_, err = store.Get(ctx, old.Fingerprint)
	assert.ErrorIs(t, err, media.ErrEntryNotFound)
	assert.NoFileExists(t, old.StoredPath)
}

func TestCleanupSizeBoundRemovesOldestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	putAged(t, store, "https://cdn.test/1.jpg", 400, 3*time.Hour, base)
	putAged(t, store, "https://cdn.test/2.jpg", 400, 2*time.Hour, base)
	newest := putAged(t, store, "https://cdn.test/3.jpg", 400, 1*time.Hour, base)

	store.now = func() time.Time { return base }
	result, err := store.Cleanup(ctx, 24*time.Hour, 500)
	require.NoError(t, err)

	assert.Equal(t, int64(2), result.RemovedCount)
	assert.Equal(t, int64(800), result.FreedBytes)
	assert.Equal(t, int64(1), result.RemainingEntries)
	assert.Equal(t, int64(400), result.RemainingBytes)

	// The newest entry survives.
	_, err = store.Get(ctx, newest.Fingerprint)
	assert.NoError(t, err)
}

func TestCleanupNoop(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	putAged(t, store, "https://cdn.test/fresh.jpg", 100, time.Hour, base)

	store.now = func() time.Time { return base }
	result, err := store.Cleanup(ctx, 24*time.Hour, 1000)
	require.NoError(t, err)
	assert.Zero(t, result.RemovedCount)
	assert.Zero(t, result.FreedBytes)
	assert.Equal(t, int64(1), result.RemainingEntries)
}

func TestSearchConjunctionAndOrdering(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	put := func(url, brand string, kind media.Kind, analysis *media.Analysis, age time.Duration) *media.Entry {
		store.now = func() time.Time { return base.Add(-age) }
		req := PutRequest{
			Fingerprint: fingerprint.Compute(string(kind), url),
			Kind:        kind,
			SourceURL:   url,
			ContentType: "image/jpeg",
			BrandHint:   brand,
			Analysis:    analysis,
			Data:        []byte("x"),
		}
		entry, _, err := store.Put(ctx, req)
		require.NoError(t, err)
		return entry
	}

	redNike := &media.Analysis{Image: &media.ImageAnalysis{
		DominantColors: []string{"red", "white"},
		TextElements:   []media.TextElement{{Content: "Just Do It", Category: "headline"}},
	}}
	bluePeople := &media.Analysis{Image: &media.ImageAnalysis{
		DominantColors:    []string{"blue"},
		PeopleDescription: "two runners on a track",
	}}

	a := put("https://cdn.test/nike1.jpg", "Nike", media.KindImage, redNike, 3*time.Hour)
	b := put("https://cdn.test/nike2.jpg", "Nike", media.KindImage, bluePeople, 2*time.Hour)
	put("https://cdn.test/adidas.mp4", "Adidas", media.KindVideo, nil, 1*time.Hour)

	// Brand alone.
	results, err := store.Search(ctx, media.SearchFilter{Brand: "nike"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	// Newest first.
	assert.Equal(t, b.Fingerprint, results[0].Fingerprint)
	assert.Equal(t, a.Fingerprint, results[1].Fingerprint)

	// Brand AND keyword is a conjunction.
	results, err = store.Search(ctx, media.SearchFilter{Brand: "nike", Keyword: "red"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, a.Fingerprint, results[0].Fingerprint)

	// Keyword matches detected text, case insensitively.
	results, err = store.Search(ctx, media.SearchFilter{Keyword: "just do it"})
	require.NoError(t, err)
	require.Len(t, results, 1)

	// "people" keyword matches the has_people flag.
	results, err = store.Search(ctx, media.SearchFilter{Keyword: "people"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, b.Fingerprint, results[0].Fingerprint)

	// Kind filter plus limit.
	results, err = store.Search(ctx, media.SearchFilter{Kind: media.KindVideo})
	require.NoError(t, err)
	require.Len(t, results, 1)

	results, err = store.Search(ctx, media.SearchFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, results, 2)

	// No match at all.
	results, err = store.Search(ctx, media.SearchFilter{Brand: "puma"})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchTieBreakOnEqualCreatedAt(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	fixed := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	for _, url := range []string{"https://cdn.test/x.jpg", "https://cdn.test/y.jpg", "https://cdn.test/z.jpg"} {
		_, _, err := store.Put(ctx, imageReq(url, []byte("x")))
		require.NoError(t, err)
	}

	results, err := store.Search(ctx, media.SearchFilter{})
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i := 1; i < len(results); i++ {
		assert.True(t, strings.Compare(results[i-1].Fingerprint, results[i].Fingerprint) < 0,
			"equal timestamps must order by fingerprint ascending")
	}
}

func TestUpdateAnalysis(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }

	req := imageReq("https://cdn.test/plain.jpg", []byte("x"))
	entry, _, err := store.Put(ctx, req)
	require.NoError(t, err)
	assert.Nil(t, entry.Analysis)
	assert.Nil(t, entry.AnalyzedAt)

	store.now = func() time.Time { return base.Add(time.Hour) }
	analysis := &media.Analysis{Image: &media.ImageAnalysis{
		DominantColors:    []string{"Green", " black "},
		PeopleDescription: "a smiling barista",
		TextElements:      []media.TextElement{{Content: "50% off"}, {Content: "today only"}},
	}}
	updated, err := store.UpdateAnalysis(ctx, req.Fingerprint, analysis)
	require.NoError(t, err)

	assert.Equal(t, []string{"green", "black"}, updated.DominantColors)
	assert.True(t, updated.HasPeople)
	assert.Equal(t, "50% off today only", updated.TextContent)
	require.NotNil(t, updated.AnalyzedAt)
	assert.Equal(t, base, updated.CreatedAt)
	require.NotNil(t, updated.Analysis)
	assert.Equal(t, "a smiling barista", updated.Analysis.Image.PeopleDescription)
}

func TestStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }

	_, _, err := store.Put(ctx, imageReq("https://cdn.test/a.jpg", make([]byte, 10)))
	require.NoError(t, err)
	_, _, err = store.Put(ctx, PutRequest{
		Fingerprint: fingerprint.Compute("video", "https://cdn.test/v.mp4"),
		Kind:        media.KindVideo,
		SourceURL:   "https://cdn.test/v.mp4",
		ContentType: "video/mp4",
		Analysis:    &media.Analysis{Video: &media.VideoAnalysis{NarrativeSummary: "short clip"}},
		Data:        make([]byte, 30),
	})
	require.NoError(t, err)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalEntries)
	assert.Equal(t, int64(1), stats.AnalyzedEntries)
	assert.Equal(t, int64(40), stats.TotalSizeBytes)
	assert.Equal(t, int64(10), stats.ByKind["image"].SizeBytes)
	assert.Equal(t, int64(30), stats.ByKind["video"].SizeBytes)
	assert.NotEmpty(t, stats.HumanSize)
	assert.Equal(t, store.Root(), stats.CacheDir)
}
