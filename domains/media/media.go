package media

import (
	"context"
	"time"
)

type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

func (k Kind) Valid() bool {
	return k == KindImage || k == KindVideo
}

// TextElement is a piece of text detected inside an ad creative.
type TextElement struct {
	Content  string `json:"content"`
	Category string `json:"category"` // headline, body, cta, logo_text, disclaimer, other
}

type ImageAnalysis struct {
	OverallDescription string        `json:"overall_description"`
	TextElements       []TextElement `json:"text_elements"`
	PeopleDescription  string        `json:"people_description"`
	BrandElements      string        `json:"brand_elements"`
	Composition        string        `json:"composition"`
	DominantColors     []string      `json:"dominant_colors"`
	BackgroundColor    string        `json:"background_color"`
	VisualElements     []string      `json:"visual_elements"`
	AspectRatio        string        `json:"aspect_ratio"`
	Quality            string        `json:"quality"`
	LayoutPositioning  string        `json:"layout_positioning"`
}

type VideoScene struct {
	TimestampRange string `json:"timestamp_range"`
	Description    string `json:"description"`
}

type VideoAnalysis struct {
	NarrativeSummary  string        `json:"narrative_summary"`
	Scenes            []VideoScene  `json:"scenes"`
	DetectedText      []TextElement `json:"detected_text"`
	DominantColors    []string      `json:"dominant_colors"`
	PeopleDescription string        `json:"people_description"`
	CallToAction      string        `json:"call_to_action"`
}

// Analysis holds the provider output for whichever kind the entry is.
// Exactly one of the two pointers is set on an analyzed entry.
type Analysis struct {
	Image *ImageAnalysis `json:"image,omitempty"`
	Video *VideoAnalysis `json:"video,omitempty"`
}

// DominantColors returns the color list of whichever analysis is present.
func (a *Analysis) DominantColors() []string {
	if a == nil {
		return nil
	}
	if a.Image != nil {
		return a.Image.DominantColors
	}
	if a.Video != nil {
		return a.Video.DominantColors
	}
	return nil
}

// HasPeople reports whether the analysis found people in the creative.
func (a *Analysis) HasPeople() bool {
	if a == nil {
		return false
	}
	desc := ""
	if a.Image != nil {
		desc = a.Image.PeopleDescription
	} else if a.Video != nil {
		desc = a.Video.PeopleDescription
	}
	return desc != "" && desc != "none" && desc != "no people"
}

// TextContent flattens every detected text element into one searchable string.
func (a *Analysis) TextContent() string {
	if a == nil {
		return ""
	}
	var elems []TextElement
	if a.Image != nil {
		elems = a.Image.TextElements
	} else if a.Video != nil {
		elems = a.Video.DetectedText
	}
	out := ""
	for _, e := range elems {
		if e.Content == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += e.Content
	}
	return out
}

// Entry is one cached media asset: the stored file plus its metadata row.
type Entry struct {
	Fingerprint    string     `json:"fingerprint"`
	Kind           Kind       `json:"kind"`
	SourceURL      string     `json:"source_url"`
	StoredPath     string     `json:"stored_path"`
	ContentType    string     `json:"content_type"`
	SizeBytes      int64      `json:"size_bytes"`
	BrandHint      string     `json:"brand_hint,omitempty"`
	Width          int        `json:"width,omitempty"`
	Height         int        `json:"height,omitempty"`
	Analysis       *Analysis  `json:"analysis,omitempty"`
	DominantColors []string   `json:"dominant_colors,omitempty"`
	HasPeople      bool       `json:"has_people"`
	TextContent    string     `json:"text_content,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	AnalyzedAt     *time.Time `json:"analyzed_at,omitempty"`
}

// Result is what the media tools return: the entry plus whether it was
// served from cache.
type Result struct {
	Entry
	Cached bool `json:"cached"`
}

// SearchFilter narrows cached entries. Every set field must match
// (conjunction); empty fields are ignored.
type SearchFilter struct {
	Brand   string `json:"brand,omitempty"`
	Kind    Kind   `json:"kind,omitempty"`
	Keyword string `json:"keyword,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

type KindStats struct {
	Count     int64 `json:"count"`
	SizeBytes int64 `json:"size_bytes"`
}

type Stats struct {
	TotalEntries    int64                `json:"total_entries"`
	AnalyzedEntries int64                `json:"analyzed_entries"`
	TotalSizeBytes  int64                `json:"total_size_bytes"`
	HumanSize       string               `json:"human_size"`
	ByKind          map[string]KindStats `json:"by_kind"`
	CacheDir        string               `json:"cache_dir,omitempty"`
}

type CleanupResult struct {
	RemovedCount     int64 `json:"removed_count"`
	FreedBytes       int64 `json:"freed_bytes"`
	RemainingEntries int64 `json:"remaining_entries"`
	RemainingBytes   int64 `json:"remaining_bytes"`
}

type IMediaUsecase interface {
	// GetAdImage returns the cached analysis for an image URL, fetching and
	// analyzing it on a miss.
	GetAdImage(ctx context.Context, sourceURL, brandHint string, forceRefresh bool) (Result, error)
	// GetAdVideo does the same for a video URL.
	GetAdVideo(ctx context.Context, sourceURL, brandHint string, forceRefresh bool) (Result, error)
	SearchCached(ctx context.Context, filter SearchFilter) ([]Entry, error)
	Stats(ctx context.Context) (Stats, error)
	Cleanup(ctx context.Context, maxAgeDays int, maxSizeMB int64) (CleanupResult, error)
	// AnalysisEnabled reports whether an analysis provider is configured.
	AnalysisEnabled() bool
	StartBackgroundCleanup(ctx context.Context)
}
