// Package mediafetch downloads ad creatives from their CDN URLs.
package mediafetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgError "github.com/adlytic/meta-ads-mcp/pkg/error"
)

// Fetcher pulls media bytes over HTTP with a size ceiling so a hostile or
// mislabeled URL cannot exhaust disk or memory.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
}

func NewFetcher(timeout time.Duration, maxBytes int64) *Fetcher {
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
	}
}

// Result is a downloaded asset with the content type the server reported,
// falling back to sniffing when the header is missing or generic.
type Result struct {
	Data        []byte
	ContentType string
}

func (f *Fetcher) Fetch(ctx context.Context, sourceURL string) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return Result{}, pkgError.ValidationError(fmt.Sprintf("invalid media URL: %v", err))
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return Result{}, pkgError.UpstreamError(fmt.Sprintf("media download failed: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return Result{}, pkgError.UpstreamError(fmt.Sprintf("media download failed: status=%d url=%s", resp.StatusCode, sourceURL))
	}
	if resp.ContentLength > f.maxBytes {
		return Result{}, pkgError.ValidationError(fmt.Sprintf("media exceeds %d byte limit", f.maxBytes))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return Result{}, pkgError.UpstreamError(fmt.Sprintf("media download interrupted: %v", err))
	}
	if int64(len(data)) > f.maxBytes {
		return Result{}, pkgError.ValidationError(fmt.Sprintf("media exceeds %d byte limit", f.maxBytes))
	}
	if len(data) == 0 {
		return Result{}, pkgError.UpstreamError("media download returned an empty body")
	}

	ct := strings.TrimSpace(resp.Header.Get("Content-Type"))
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(data)
	}
	return Result{Data: data, ContentType: ct}, nil
}
