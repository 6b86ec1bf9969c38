package validations

import (
	"context"

	domainAdLibrary "github.com/adlytic/meta-ads-mcp/domains/adlibrary"
	pkgError "github.com/adlytic/meta-ads-mcp/pkg/error"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

type CompanySearchRequest struct {
	Query string
}

func ValidateCompanySearch(ctx context.Context, request CompanySearchRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Query, validation.Required, validation.Length(2, 256)),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

type CompanyAdsRequest struct {
	PageID  string
	Limit   int
	Country string
}

func ValidateCompanyAds(ctx context.Context, request CompanyAdsRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.PageID, validation.Required, is.Digit),
		validation.Field(&request.Limit, validation.Required, validation.Min(1), validation.Max(domainAdLibrary.MaxAdsPerRequest)),
		validation.Field(&request.Country, validation.Length(2, 2), is.Alpha),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
