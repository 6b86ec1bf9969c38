package media

import "context"

// Analyzer is an AI provider able to describe ad creatives. Video support
// is optional; callers must check SupportsVideo before sending one.
type Analyzer interface {
	Name() string
	AnalyzeImage(ctx context.Context, data []byte, mimeType string) (*ImageAnalysis, error)
	AnalyzeVideo(ctx context.Context, data []byte, mimeType string) (*VideoAnalysis, error)
	SupportsVideo() bool
}
