package scrapecreators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgError "github.com/adlytic/meta-ads-mcp/pkg/error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchCompanies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/facebook/adLibrary/search/companies", r.URL.Path)
		assert.Equal(t, "nike", r.URL.Query().Get("query"))
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		w.Write([]byte(`{"searchResults":[
			{"name":"Nike","page_id":"15087023444"},
			{"name":"Nike Running","page_id":"138265226204"},
			{"name":"Ghost Page","page_id":""}
		]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	companies, err := client.SearchCompanies(context.Background(), "nike")
	require.NoError(t, err)

	// Results without a page ID are unusable downstream and dropped.
	require.Len(t, companies, 2)
	assert.Equal(t, "Nike", companies[0].Name)
	assert.Equal(t, "15087023444", companies[0].PageID)
}

func TestFetchAdsPageMapsFormats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/facebook/adLibrary/company/ads", r.URL.Path)
		assert.Equal(t, "15087023444", r.URL.Query().Get("pageId"))
		assert.Equal(t, "US", r.URL.Query().Get("country"))
		w.Write([]byte(`{"cursor":"next-123","results":[
			{
				"ad_archive_id":"111","page_id":"15087023444","page_name":"Nike",
				"start_date":1767225600,"end_date":1769904000,
				"publisher_platform":["facebook","instagram"],
				"snapshot":{
					"display_format":"image",
					"body":{"text":"New drop"},
					"cta_text":"Shop Now","link_url":"https://nike.test",
					"images":[{"resized_image_url":"https://cdn.test/a.jpg"},{"original_image_url":"https://cdn.test/b.jpg"}]
				}
			},
			{
				"ad_archive_id":"222",
				"snapshot":{
					"display_format":"VIDEO",
					"videos":[{"video_sd_url":"https://cdn.test/v_sd.mp4","video_hd_url":"https://cdn.test/v_hd.mp4"}]
				}
			},
			{
				"ad_archive_id":"333",
				"snapshot":{
					"display_format":"DCO",
					"cards":[
						{"resized_image_url":"https://cdn.test/c1.jpg","body":"Card one"},
						{"body":"Text only card"},
						{}
					]
				}
			}
		]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	page, err := client.FetchAdsPage(context.Background(), "15087023444", "", "US")
	require.NoError(t, err)

	assert.Equal(t, "next-123", page.Cursor)
	require.Len(t, page.Ads, 3)

	img := page.Ads[0]
	assert.Equal(t, "111", img.ArchiveID)
	assert.Equal(t, "IMAGE", img.DisplayFormat)
	assert.Equal(t, "New drop", img.Body)
	assert.Equal(t, "2026-01-01", img.StartDate)
	assert.Equal(t, []string{"https://cdn.test/a.jpg", "https://cdn.test/b.jpg"}, img.ImageURLs)
	assert.Equal(t, "Shop Now", img.CTAText)

	vid := page.Ads[1]
	assert.Equal(t, "VIDEO", vid.DisplayFormat)
	assert.Equal(t, []string{"https://cdn.test/v_sd.mp4"}, vid.VideoURLs)

	dco := page.Ads[2]
	assert.Equal(t, "DCO", dco.DisplayFormat)
	require.Len(t, dco.Cards, 2)
	assert.Equal(t, "https://cdn.test/c1.jpg", dco.Cards[0].ImageURL)
	assert.Equal(t, "Text only card", dco.Cards[1].Body)
}

func TestFetchAdsPagePassesCursor(t *testing.T) {
	var gotCursor string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCursor = r.URL.Query().Get("cursor")
		w.Write([]byte(`{"results":[],"cursor":""}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "k")
	_, err := client.FetchAdsPage(context.Background(), "1", "abc", "")
	require.NoError(t, err)
	assert.Equal(t, "abc", gotCursor)
}

func TestUpstreamErrorsAreTyped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid api key"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "bad-key")
	_, err := client.SearchCompanies(context.Background(), "nike")
	require.Error(t, err)

	var generic pkgError.GenericError
	require.ErrorAs(t, err, &generic)
	assert.Equal(t, "UPSTREAM_UNAVAILABLE", generic.ErrCode())
	assert.Contains(t, err.Error(), "status=401")
}

func TestMalformedJSONIsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"searchResults": [`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "k")
	_, err := client.SearchCompanies(context.Background(), "nike")
	require.Error(t, err)

	var generic pkgError.GenericError
	require.ErrorAs(t, err, &generic)
	assert.Equal(t, "UPSTREAM_UNAVAILABLE", generic.ErrCode())
}

func TestMissingAPIKeyFailsFast(t *testing.T) {
	client := NewClient("http://localhost:1", "")
	_, err := client.SearchCompanies(context.Background(), "nike")
	require.Error(t, err)

	var generic pkgError.GenericError
	require.ErrorAs(t, err, &generic)
	assert.Equal(t, "VALIDATION_ERROR", generic.ErrCode())
}
