package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/adlytic/meta-ads-mcp/domains/media"
	"gorm.io/gorm"
)

// --- Persistence Model ---

type entryModel struct {
	Fingerprint    string `gorm:"primaryKey;size:64"`
	Kind           string `gorm:"index:idx_media_entries_kind;not null"`
	SourceURL      string `gorm:"type:text;not null"`
	StoredPath     string `gorm:"type:text;not null"`
	ContentType    string
	SizeBytes      int64  `gorm:"not null"`
	BrandHint      string `gorm:"index:idx_media_entries_brand"`
	Width          int
	Height         int
	AnalysisJSON   string `gorm:"type:text"`
	DominantColors string `gorm:"type:text"` // comma separated, lowercase
	HasPeople      bool
	TextContent    string     `gorm:"type:text"`
	CreatedAt      time.Time  `gorm:"index:idx_media_entries_created;not null"`
	AnalyzedAt     *time.Time `gorm:"column:analyzed_at"`
}

func (entryModel) TableName() string {
	return "media_entries"
}

// --- Repository Implementation ---

type EntryGormRepository struct {
	db *gorm.DB
}

func NewEntryGormRepository(db *gorm.DB) *EntryGormRepository {
	return &EntryGormRepository{db: db}
}

// DB exposes the underlying connection for lifecycle management.
func (r *EntryGormRepository) DB() *gorm.DB {
	return r.db
}

func (r *EntryGormRepository) InitSchema(ctx context.Context) error {
	// GORM AutoMigrate handles creation and schema updates
	return r.db.WithContext(ctx).AutoMigrate(&entryModel{})
}

// CRUD

func (r *EntryGormRepository) Insert(ctx context.Context, entry *media.Entry) error {
	model, err := toEntryModel(entry)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Create(&model)
	if result.Error != nil {
		if strings.Contains(result.Error.Error(), "UNIQUE constraint failed") || strings.Contains(result.Error.Error(), "duplicate key value") {
			return fmt.Errorf("entry %s already exists", entry.Fingerprint)
		}
		return result.Error
	}
	return nil
}

func (r *EntryGormRepository) Get(ctx context.Context, fp string) (*media.Entry, error) {
	var m entryModel
	if err := r.db.WithContext(ctx).First(&m, "fingerprint = ?", fp).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, media.ErrEntryNotFound
		}
		return nil, err
	}
	return fromEntryModel(m)
}

// UpdateAnalysis attaches provider output to an already cached entry,
// refreshing the denormalized lookup columns. CreatedAt is untouched.
func (r *EntryGormRepository) UpdateAnalysis(ctx context.Context, fp string, analysis *media.Analysis, analyzedAt time.Time) error {
	raw, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}
	updates := map[string]any{
		"analysis_json":   string(raw),
		"dominant_colors": joinColors(analysis.DominantColors()),
		"has_people":      analysis.HasPeople(),
		"text_content":    analysis.TextContent(),
		"analyzed_at":     analyzedAt,
	}
	result := r.db.WithContext(ctx).Model(&entryModel{}).Where("fingerprint = ?", fp).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return media.ErrEntryNotFound
	}
	return nil
}

func (r *EntryGormRepository) Delete(ctx context.Context, fp string) error {
	return r.db.WithContext(ctx).Delete(&entryModel{}, "fingerprint = ?", fp).Error
}

// Queries

// Search applies every set filter as a conjunction and returns newest
// entries first, fingerprint as tie break so ordering stays deterministic.
func (r *EntryGormRepository) Search(ctx context.Context, filter media.SearchFilter) ([]media.Entry, error) {
	q := r.db.WithContext(ctx).Model(&entryModel{})

	if filter.Brand != "" {
		q = q.Where("LOWER(brand_hint) LIKE ?", "%"+strings.ToLower(filter.Brand)+"%")
	}
	if filter.Kind != "" {
		q = q.Where("kind = ?", string(filter.Kind))
	}
	if kw := strings.ToLower(strings.TrimSpace(filter.Keyword)); kw != "" {
		like := "%" + kw + "%"
		if kw == "people" || kw == "person" {
			q = q.Where("(LOWER(text_content) LIKE ? OR LOWER(dominant_colors) LIKE ? OR has_people = ?)", like, like, true)
		} else {
			q = q.Where("(LOWER(text_content) LIKE ? OR LOWER(dominant_colors) LIKE ?)", like, like)
		}
	}

	q = q.Order("created_at DESC").Order("fingerprint ASC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var models []entryModel
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}
	entries := make([]media.Entry, 0, len(models))
	for _, m := range models {
		e, err := fromEntryModel(m)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, nil
}

// OldestBatch returns up to limit entries ordered oldest first. Cleanup
// consumes the cache through repeated calls instead of loading it whole.
func (r *EntryGormRepository) OldestBatch(ctx context.Context, limit int, after *media.Entry) ([]media.Entry, error) {
	q := r.db.WithContext(ctx).Model(&entryModel{}).
		Order("created_at ASC").Order("fingerprint ASC").Limit(limit)
	if after != nil {
		q = q.Where("(created_at > ?) OR (created_at = ? AND fingerprint > ?)", after.CreatedAt, after.CreatedAt, after.Fingerprint)
	}
	var models []entryModel
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}
	entries := make([]media.Entry, 0, len(models))
	for _, m := range models {
		e, err := fromEntryModel(m)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, nil
}

func (r *EntryGormRepository) Totals(ctx context.Context) (count int64, sizeBytes int64, err error) {
	type row struct {
		Count int64
		Size  int64
	}
	var res row
	err = r.db.WithContext(ctx).Model(&entryModel{}).
		Select("COUNT(*) AS count, COALESCE(SUM(size_bytes), 0) AS size").
		Scan(&res).Error
	if err != nil {
		return 0, 0, err
	}
	return res.Count, res.Size, nil
}

func (r *EntryGormRepository) Stats(ctx context.Context) (media.Stats, error) {
	stats := media.Stats{ByKind: map[string]media.KindStats{}}

	type kindRow struct {
		Kind  string
		Count int64
		Size  int64
	}
	var rows []kindRow
	err := r.db.WithContext(ctx).Model(&entryModel{}).
		Select("kind, COUNT(*) AS count, COALESCE(SUM(size_bytes), 0) AS size").
		Group("kind").
		Scan(&rows).Error
	if err != nil {
		return stats, err
	}
	for _, row := range rows {
		stats.ByKind[row.Kind] = media.KindStats{Count: row.Count, SizeBytes: row.Size}
		stats.TotalEntries += row.Count
		stats.TotalSizeBytes += row.Size
	}

	err = r.db.WithContext(ctx).Model(&entryModel{}).
		Where("analyzed_at IS NOT NULL").
		Count(&stats.AnalyzedEntries).Error
	if err != nil {
		return stats, err
	}
	return stats, nil
}

// --- Mapping ---

func toEntryModel(e *media.Entry) (entryModel, error) {
	m := entryModel{
		Fingerprint:    e.Fingerprint,
		Kind:           string(e.Kind),
		SourceURL:      e.SourceURL,
		StoredPath:     e.StoredPath,
		ContentType:    e.ContentType,
		SizeBytes:      e.SizeBytes,
		BrandHint:      e.BrandHint,
		Width:          e.Width,
		Height:         e.Height,
		DominantColors: joinColors(e.DominantColors),
		HasPeople:      e.HasPeople,
		TextContent:    e.TextContent,
		CreatedAt:      e.CreatedAt,
		AnalyzedAt:     e.AnalyzedAt,
	}
	if e.Analysis != nil {
		raw, err := json.Marshal(e.Analysis)
		if err != nil {
			return m, fmt.Errorf("marshal analysis: %w", err)
		}
		m.AnalysisJSON = string(raw)
	}
	return m, nil
}

func fromEntryModel(m entryModel) (*media.Entry, error) {
	e := &media.Entry{
		Fingerprint: m.Fingerprint,
		Kind:        media.Kind(m.Kind),
		SourceURL:   m.SourceURL,
		StoredPath:  m.StoredPath,
		ContentType: m.ContentType,
		SizeBytes:   m.SizeBytes,
		BrandHint:   m.BrandHint,
		Width:       m.Width,
		Height:      m.Height,
		HasPeople:   m.HasPeople,
		TextContent: m.TextContent,
		CreatedAt:   m.CreatedAt,
		AnalyzedAt:  m.AnalyzedAt,
	}
	if m.DominantColors != "" {
		e.DominantColors = strings.Split(m.DominantColors, ",")
	}
	if m.AnalysisJSON != "" {
		var analysis media.Analysis
		if err := json.Unmarshal([]byte(m.AnalysisJSON), &analysis); err != nil {
			return nil, fmt.Errorf("unmarshal analysis for %s: %w", m.Fingerprint, err)
		}
		e.Analysis = &analysis
	}
	return e, nil
}

func joinColors(colors []string) string {
	cleaned := make([]string, 0, len(colors))
	for _, c := range colors {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" {
			cleaned = append(cleaned, c)
		}
	}
	return strings.Join(cleaned, ",")
}
