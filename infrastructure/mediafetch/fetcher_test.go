package mediafetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pkgError "github.com/adlytic/meta-ads-mcp/pkg/error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchReturnsBytesAndContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("fake png bytes"))
	}))
	defer server.Close()

	f := NewFetcher(5*time.Second, 1024)
	res, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "image/png", res.ContentType)
	assert.Equal(t, "fake png bytes", string(res.Data))
}

func TestFetchSniffsMissingContentType(t *testing.T) {
	// A real JPEG magic number so sniffing has something to recognize.
	jpeg := append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, make([]byte, 64)...)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(jpeg)
	}))
	defer server.Close()

	f := NewFetcher(5*time.Second, 1024)
	res, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", res.ContentType)
}

func TestFetchRejectsOversizedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 2048))
	}))
	defer server.Close()

	f := NewFetcher(5*time.Second, 1024)
	_, err := f.Fetch(context.Background(), server.URL)
	require.Error(t, err)

	var generic pkgError.GenericError
	require.ErrorAs(t, err, &generic)
	assert.Equal(t, "VALIDATION_ERROR", generic.ErrCode())
}

func TestFetchUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := NewFetcher(5*time.Second, 1024)
	_, err := f.Fetch(context.Background(), server.URL)
	require.Error(t, err)

	var generic pkgError.GenericError
	require.ErrorAs(t, err, &generic)
	assert.Equal(t, "UPSTREAM_UNAVAILABLE", generic.ErrCode())
}
