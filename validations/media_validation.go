package validations

import (
	"context"

	pkgError "github.com/adlytic/meta-ads-mcp/pkg/error"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

type MediaAnalysisRequest struct {
	SourceURL string
	BrandHint string
}

func ValidateMediaAnalysis(ctx context.Context, request MediaAnalysisRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.SourceURL, validation.Required, is.URL),
		validation.Field(&request.BrandHint, validation.Length(0, 256)),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

type CacheCleanupRequest struct {
	MaxAgeDays int
	MaxSizeMB  int64
}

func ValidateCacheCleanup(ctx context.Context, request CacheCleanupRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.MaxAgeDays, validation.Required, validation.Min(1)),
		validation.Field(&request.MaxSizeMB, validation.Required, validation.Min(int64(1))),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
