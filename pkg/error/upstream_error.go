package error

import "net/http"

// UpstreamError marks failures of an external dependency (the Ad Library
// API, a media host, or an analysis provider).
type UpstreamError string

func (err UpstreamError) Error() string {
	return string(err)
}

func (err UpstreamError) ErrCode() string {
	return "UPSTREAM_UNAVAILABLE"
}

func (err UpstreamError) StatusCode() int {
	return http.StatusBadGateway
}
