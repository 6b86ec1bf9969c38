package adlibrary

import "context"

// Company is a Facebook page returned by the company search endpoint.
type Company struct {
	Name   string `json:"name"`
	PageID string `json:"page_id"`
}

// Card is one creative of a DCO (dynamic creative optimization) ad.
type Card struct {
	ImageURL string `json:"image_url,omitempty"`
	Body     string `json:"body,omitempty"`
}

// Ad is a single Ad Library entry, flattened from the upstream snapshot.
type Ad struct {
	ArchiveID     string   `json:"ad_archive_id"`
	PageID        string   `json:"page_id,omitempty"`
	PageName      string   `json:"page_name,omitempty"`
	Body          string   `json:"body,omitempty"`
	DisplayFormat string   `json:"display_format"` // IMAGE, VIDEO or DCO
	StartDate     string   `json:"start_date,omitempty"`
	EndDate       string   `json:"end_date,omitempty"`
	ImageURLs     []string `json:"image_urls,omitempty"`
	VideoURLs     []string `json:"video_urls,omitempty"`
	Cards         []Card   `json:"cards,omitempty"`
	Platforms     []string `json:"publisher_platforms,omitempty"`
	CTAText       string   `json:"cta_text,omitempty"`
	LinkURL       string   `json:"link_url,omitempty"`
}

// AdsPage is one bounded slice of a company's ads.
type AdsPage struct {
	Ads        []Ad   `json:"ads"`
	TotalCount int    `json:"total_count"`
	Cursor     string `json:"cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
}

// Display formats reported by the Ad Library snapshot.
const (
	FormatImage = "IMAGE"
	FormatVideo = "VIDEO"
	FormatDCO   = "DCO"
)

// MaxAdsPerRequest caps the limit accepted by GetCompanyAds.
const MaxAdsPerRequest = 100

type IAdLibraryUsecase interface {
	SearchCompanies(ctx context.Context, query string) ([]Company, error)
	// GetCompanyAds pages through the upstream cursor until limit ads are
	// collected or the listing ends. Country, when set, is a two-letter
	// ISO 3166-1 code.
	GetCompanyAds(ctx context.Context, pageID string, limit int, country string) (AdsPage, error)
}
