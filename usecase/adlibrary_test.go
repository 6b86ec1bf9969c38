package usecase

import (
	"context"
	"fmt"
	"testing"

	domainAdLibrary "github.com/adlytic/meta-ads-mcp/domains/adlibrary"
	"github.com/adlytic/meta-ads-mcp/infrastructure/scrapecreators"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdClient struct {
	pages       map[string]scrapecreators.AdsPage // keyed by cursor, "" for first page
	gotCountry  string
	pagesServed int
}

func (f *fakeAdClient) SearchCompanies(ctx context.Context, query string) ([]domainAdLibrary.Company, error) {
	return []domainAdLibrary.Company{{Name: "Nike", PageID: "15087023444"}}, nil
}

func (f *fakeAdClient) FetchAdsPage(ctx context.Context, pageID, cursor, country string) (scrapecreators.AdsPage, error) {
	f.gotCountry = country
	f.pagesServed++
	page, ok := f.pages[cursor]
	if !ok {
		return scrapecreators.AdsPage{}, fmt.Errorf("unexpected cursor %q", cursor)
	}
	return page, nil
}

func makeAds(prefix string, n int) []domainAdLibrary.Ad {
	ads := make([]domainAdLibrary.Ad, n)
	for i := range ads {
		ads[i] = domainAdLibrary.Ad{ArchiveID: fmt.Sprintf("%s-%d", prefix, i), DisplayFormat: "IMAGE"}
	}
	return ads
}

func TestGetCompanyAdsPagesThroughCursor(t *testing.T) {
	client := &fakeAdClient{pages: map[string]scrapecreators.AdsPage{
		"":   {Ads: makeAds("p1", 30), Cursor: "c2"},
		"c2": {Ads: makeAds("p2", 30), Cursor: "c3"},
		"c3": {Ads: makeAds("p3", 30), Cursor: ""},
	}}
	service := NewAdLibraryService(client)

	page, err := service.GetCompanyAds(context.Background(), "15087023444", 75, "us")
	require.NoError(t, err)

	assert.Equal(t, 75, page.TotalCount)
	assert.Len(t, page.Ads, 75)
	assert.True(t, page.HasMore)
	assert.Equal(t, 3, client.pagesServed)
	// Country is normalized to uppercase before hitting the API.
	assert.Equal(t, "US", client.gotCountry)
	assert.Equal(t, "p1-0", page.Ads[0].ArchiveID)
	assert.Equal(t, "p3-14", page.Ads[74].ArchiveID)
}

func TestGetCompanyAdsStopsWhenListingEnds(t *testing.T) {
	client := &fakeAdClient{pages: map[string]scrapecreators.AdsPage{
		"": {Ads: makeAds("only", 7), Cursor: ""},
	}}
	service := NewAdLibraryService(client)

	page, err := service.GetCompanyAds(context.Background(), "15087023444", 50, "")
	require.NoError(t, err)
	assert.Equal(t, 7, page.TotalCount)
	assert.False(t, page.HasMore)
	assert.Equal(t, 1, client.pagesServed)
}

func TestGetCompanyAdsValidation(t *testing.T) {
	service := NewAdLibraryService(&fakeAdClient{})
	ctx := context.Background()

	_, err := service.GetCompanyAds(ctx, "", 10, "")
	assert.Error(t, err, "page id is required")

	_, err = service.GetCompanyAds(ctx, "123", 101, "")
	assert.Error(t, err, "limit above 100 is rejected")

	_, err = service.GetCompanyAds(ctx, "123", 10, "USA")
	assert.Error(t, err, "three letter country is rejected")
}

func TestSearchCompaniesTrimsQuery(t *testing.T) {
	service := NewAdLibraryService(&fakeAdClient{})

	companies, err := service.SearchCompanies(context.Background(), "  nike  ")
	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.Equal(t, "15087023444", companies[0].PageID)

	_, err = service.SearchCompanies(context.Background(), "   ")
	assert.Error(t, err)
}
