package usecase

import (
	"context"
	"strings"

	domainAdLibrary "github.com/adlytic/meta-ads-mcp/domains/adlibrary"
	"github.com/adlytic/meta-ads-mcp/infrastructure/scrapecreators"
	"github.com/adlytic/meta-ads-mcp/validations"
	"github.com/sirupsen/logrus"
)

const defaultAdsLimit = 20

// adsPageFetcher is the slice of the upstream client this service needs.
type adsPageFetcher interface {
	SearchCompanies(ctx context.Context, query string) ([]domainAdLibrary.Company, error)
	FetchAdsPage(ctx context.Context, pageID, cursor, country string) (scrapecreators.AdsPage, error)
}

type serviceAdLibrary struct {
	client adsPageFetcher
}

func NewAdLibraryService(client adsPageFetcher) domainAdLibrary.IAdLibraryUsecase {
	return &serviceAdLibrary{client: client}
}

func (service serviceAdLibrary) SearchCompanies(ctx context.Context, query string) ([]domainAdLibrary.Company, error) {
	query = strings.TrimSpace(query)
	if err := validations.ValidateCompanySearch(ctx, validations.CompanySearchRequest{Query: query}); err != nil {
		return nil, err
	}

	companies, err := service.client.SearchCompanies(ctx, query)
	if err != nil {
		return nil, err
	}
	logrus.Debugf("[ADLIBRARY] Company search %q returned %d pages", query, len(companies))
	return companies, nil
}

func (service serviceAdLibrary) GetCompanyAds(ctx context.Context, pageID string, limit int, country string) (domainAdLibrary.AdsPage, error) {
	pageID = strings.TrimSpace(pageID)
	country = strings.ToUpper(strings.TrimSpace(country))
	if limit <= 0 {
		limit = defaultAdsLimit
	}

	if err := validations.ValidateCompanyAds(ctx, validations.CompanyAdsRequest{
		PageID:  pageID,
		Limit:   limit,
		Country: country,
	}); err != nil {
		return domainAdLibrary.AdsPage{}, err
	}

	result := domainAdLibrary.AdsPage{Ads: []domainAdLibrary.Ad{}}
	cursor := ""
	for len(result.Ads) < limit {
		page, err := service.client.FetchAdsPage(ctx, pageID, cursor, country)
		if err != nil {
			return domainAdLibrary.AdsPage{}, err
		}
		result.Ads = append(result.Ads, page.Ads...)
		cursor = page.Cursor
		if cursor == "" || len(page.Ads) == 0 {
			break
		}
	}

	if len(result.Ads) > limit {
		result.Ads = result.Ads[:limit]
		result.HasMore = true
	} else if cursor != "" {
		result.HasMore = true
	}
	result.TotalCount = len(result.Ads)
	result.Cursor = cursor

	logrus.Debugf("[ADLIBRARY] Page %s returned %d ads (has_more=%v)", pageID, result.TotalCount, result.HasMore)
	return result, nil
}
