package config

import (
	"os"
	"strconv"
	"strings"
)

var (
	AppVersion  = "v1.2.0"
	AppPort     = "3000"
	AppDebug    = false
	AppBasePath = ""

	McpPort = "8080"
	McpHost = "localhost"

	PathStorages   = "storages"
	PathMediaCache = "storages/mediacache"

	DBDriver = "sqlite"

	// ScrapeCreators Ad Library API
	ScrapeCreatorsAPIKey  = ""
	ScrapeCreatorsBaseURL = "https://api.scrapecreators.com"

	// Media analysis providers. Gemini is the default and the only one able
	// to analyze video; OpenAI covers images.
	AnalyzerProvider = "gemini"
	GeminiAPIKey     = ""
	GeminiModel      = "gemini-2.5-flash"
	OpenAIAPIKey     = ""
	OpenAIModel      = "gpt-4o"

	// Media cache policy defaults, overridable per cleanup call.
	CacheMaxAgeDays                = 30
	CacheMaxSizeMB           int64 = 5120
	CacheCleanupIntervalMins       = 60

	MaxDownloadBytes int64 = 100 * 1024 * 1024 // 100MB
	FetchTimeoutSecs       = 30
)

func init() {
	if v := strings.TrimSpace(os.Getenv("SCRAPECREATORS_API_KEY")); v != "" {
		ScrapeCreatorsAPIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("SCRAPECREATORS_BASE_URL")); v != "" {
		ScrapeCreatorsBaseURL = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); v != "" {
		GeminiAPIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("GEMINI_MODEL")); v != "" {
		GeminiModel = v
	}
	if v := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); v != "" {
		OpenAIAPIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("OPENAI_MODEL")); v != "" {
		OpenAIModel = v
	}
	if v := strings.TrimSpace(os.Getenv("MEDIA_ANALYZER_PROVIDER")); v != "" {
		AnalyzerProvider = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("MEDIA_CACHE_DIR")); v != "" {
		PathMediaCache = v
	}
	if v := strings.TrimSpace(os.Getenv("MEDIA_CACHE_MAX_AGE_DAYS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			CacheMaxAgeDays = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("MEDIA_CACHE_MAX_SIZE_MB")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			CacheMaxSizeMB = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("MEDIA_CACHE_CLEANUP_INTERVAL_MINS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			CacheCleanupIntervalMins = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("MEDIA_MAX_DOWNLOAD_BYTES")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			MaxDownloadBytes = n
		}
	}
}
