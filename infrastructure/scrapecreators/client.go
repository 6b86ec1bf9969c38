// Package scrapecreators wraps the ScrapeCreators Facebook Ad Library API,
// the upstream that serves company search and ad listings.
package scrapecreators

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/adlytic/meta-ads-mcp/domains/adlibrary"
	pkgError "github.com/adlytic/meta-ads-mcp/pkg/error"
)

const httpTimeout = 15 * time.Second

var httpClient = &http.Client{Timeout: httpTimeout}

type Client struct {
	baseURL string
	apiKey  string
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey}
}

// --- Wire types ---

type companySearchResponse struct {
	SearchResults []struct {
		Name   string `json:"name"`
		PageID string `json:"page_id"`
	} `json:"searchResults"`
}

type adsResponse struct {
	Results []adResult `json:"results"`
	Cursor  string     `json:"cursor"`
}

type adResult struct {
	AdArchiveID string   `json:"ad_archive_id"`
	PageID      string   `json:"page_id"`
	PageName    string   `json:"page_name"`
	StartDate   int64    `json:"start_date"`
	EndDate     int64    `json:"end_date"`
	Platforms   []string `json:"publisher_platform"`
	Snapshot    snapshot `json:"snapshot"`
}

type snapshot struct {
	DisplayFormat string `json:"display_format"`
	Title         string `json:"title"`
	CTAText       string `json:"cta_text"`
	LinkURL       string `json:"link_url"`
	PageName      string `json:"page_name"`
	Body          struct {
		Text string `json:"text"`
	} `json:"body"`
	Images []struct {
		ResizedImageURL  string `json:"resized_image_url"`
		OriginalImageURL string `json:"original_image_url"`
	} `json:"images"`
	Videos []struct {
		VideoSDURL string `json:"video_sd_url"`
		VideoHDURL string `json:"video_hd_url"`
	} `json:"videos"`
	Cards []struct {
		ResizedImageURL  string `json:"resized_image_url"`
		OriginalImageURL string `json:"original_image_url"`
		Body             string `json:"body"`
	} `json:"cards"`
}

// --- API calls ---

// SearchCompanies resolves a brand name to Facebook pages with their IDs.
func (c *Client) SearchCompanies(ctx context.Context, query string) ([]adlibrary.Company, error) {
	endpoint := fmt.Sprintf("%s/v1/facebook/adLibrary/search/companies?query=%s",
		c.baseURL, url.QueryEscape(query))

	var resp companySearchResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}

	companies := make([]adlibrary.Company, 0, len(resp.SearchResults))
	for _, r := range resp.SearchResults {
		if r.PageID == "" {
			continue
		}
		companies = append(companies, adlibrary.Company{Name: r.Name, PageID: r.PageID})
	}
	return companies, nil
}

// AdsPage is one upstream page of a company's ads plus the continuation
// cursor, empty when the listing is exhausted.
type AdsPage struct {
	Ads    []adlibrary.Ad
	Cursor string
}

// FetchAdsPage retrieves a single page of ads for a page ID. Country, when
// set, filters by the two-letter code the Ad Library uses.
func (c *Client) FetchAdsPage(ctx context.Context, pageID, cursor, country string) (AdsPage, error) {
	params := url.Values{}
	params.Set("pageId", pageID)
	if cursor != "" {
		params.Set("cursor", cursor)
	}
	if country != "" {
		params.Set("country", country)
	}
	endpoint := fmt.Sprintf("%s/v1/facebook/adLibrary/company/ads?%s", c.baseURL, params.Encode())

	var resp adsResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return AdsPage{}, err
	}

	page := AdsPage{Cursor: resp.Cursor}
	for _, r := range resp.Results {
		page.Ads = append(page.Ads, mapAd(r))
	}
	return page, nil
}

func mapAd(r adResult) adlibrary.Ad {
	ad := adlibrary.Ad{
		ArchiveID:     r.AdArchiveID,
		PageID:        r.PageID,
		PageName:      r.PageName,
		Body:          r.Snapshot.Body.Text,
		DisplayFormat: strings.ToUpper(r.Snapshot.DisplayFormat),
		Platforms:     r.Platforms,
		CTAText:       r.Snapshot.CTAText,
		LinkURL:       r.Snapshot.LinkURL,
	}
	if ad.PageName == "" {
		ad.PageName = r.Snapshot.PageName
	}
	if r.StartDate > 0 {
		ad.StartDate = time.Unix(r.StartDate, 0).UTC().Format("2006-01-02")
	}
	if r.EndDate > 0 {
		ad.EndDate = time.Unix(r.EndDate, 0).UTC().Format("2006-01-02")
	}

	switch ad.DisplayFormat {
	case adlibrary.FormatImage:
		for _, img := range r.Snapshot.Images {
			if u := firstNonEmpty(img.ResizedImageURL, img.OriginalImageURL); u != "" {
				ad.ImageURLs = append(ad.ImageURLs, u)
			}
		}
	case adlibrary.FormatVideo:
		for _, v := range r.Snapshot.Videos {
			if u := firstNonEmpty(v.VideoSDURL, v.VideoHDURL); u != "" {
				ad.VideoURLs = append(ad.VideoURLs, u)
			}
		}
	case adlibrary.FormatDCO:
		for _, card := range r.Snapshot.Cards {
			u := firstNonEmpty(card.ResizedImageURL, card.OriginalImageURL)
			if u == "" && card.Body == "" {
				continue
			}
			ad.Cards = append(ad.Cards, adlibrary.Card{ImageURL: u, Body: card.Body})
		}
	}
	return ad
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// getJSON performs an authenticated GET and decodes the JSON response.
func (c *Client) getJSON(ctx context.Context, endpoint string, dest interface{}) error {
	if c.apiKey == "" {
		return pkgError.ValidationError("SCRAPECREATORS_API_KEY is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := httpClient.Do(req)
	if err != nil {
		return pkgError.UpstreamError(fmt.Sprintf("ad library request failed: %v", err))
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if resp.StatusCode >= 400 {
		snippet := string(data)
		if len(snippet) > 512 {
			snippet = snippet[:512]
		}
		return pkgError.UpstreamError(fmt.Sprintf("ad library request failed: status=%d body=%s", resp.StatusCode, snippet))
	}

	if dest != nil {
		if err := json.Unmarshal(data, dest); err != nil {
			return pkgError.UpstreamError(fmt.Sprintf("ad library returned malformed JSON: %v", err))
		}
	}
	return nil
}
