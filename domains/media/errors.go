package media

import "errors"

var (
	ErrEntryNotFound    = errors.New("media entry not found")
	ErrUnsupportedKind  = errors.New("unsupported media kind")
	ErrAnalysisDisabled = errors.New("media analysis is not configured")
)
