package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Config holds all application configuration in a structured way.
type Config struct {
	App      AppConfig
	MCP      MCPConfig
	Paths    PathsConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Fetch    FetchConfig
	Analyzer AnalyzerConfig
	APIKeys  APIKeysConfig
}

type AppConfig struct {
	Version            string
	Port               string
	Debug              bool
	Environment        string
	BasePath           string
	BaseUrl            string
	CorsAllowedOrigins []string
}

type MCPConfig struct {
	Port string
	Host string
}

type PathsConfig struct {
	Storages   string
	MediaCache string
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string // File path for SQLite, DB Name for Postgres
}

// CacheConfig carries the retention policy defaults for the media cache.
// Cleanup calls may override age and size per invocation.
type CacheConfig struct {
	MaxAgeDays          int
	MaxSizeMB           int64
	CleanupIntervalMins int
}

type FetchConfig struct {
	MaxDownloadBytes int64
	TimeoutSecs      int
}

type AnalyzerConfig struct {
	Provider    string
	GeminiModel string
	OpenAIModel string
}

type APIKeysConfig struct {
	ScrapeCreators string
	Gemini         string
	OpenAI         string
}

// Global provides access to the loaded configuration globally.
var Global *Config

// LoadConfig loads configuration from environment variables or defaults.
func LoadConfig() (*Config, error) {
	debug := false
	if v := os.Getenv("APP_DEBUG"); v == "true" || v == "1" || v == "on" {
		debug = true
	} else if v := os.Getenv("DEBUG"); v == "true" || v == "1" {
		debug = true
	}

	corsOrigins := []string{"http://localhost:3000", "http://localhost:5173"}
	if v := os.Getenv("APP_CORS_ALLOWED_ORIGINS"); v != "" {
		corsOrigins = strings.Split(v, ",")
	}

	appCfg := AppConfig{
		Version:            "v1.2.0",
		Port:               getEnv("APP_PORT", "3000"),
		Debug:              debug,
		Environment:        getEnv("APP_ENV", "development"),
		BasePath:           getEnv("APP_BASE_PATH", ""),
		BaseUrl:            getEnv("APP_BASE_URL", "http://localhost:3000"),
		CorsAllowedOrigins: corsOrigins,
	}

	pathsCfg := PathsConfig{
		Storages:   getEnv("APP_BASE_DIR", "storages"),
		MediaCache: getEnv("MEDIA_CACHE_DIR", filepath.Join("storages", "mediacache")),
	}

	dbDriver := getEnv("DB_DRIVER", "sqlite")
	dbCfg := DatabaseConfig{
		Driver:   dbDriver,
		Name:     getEnv("DB_NAME", filepath.Join(pathsCfg.MediaCache, "media_cache.db")),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
	}

	cacheCfg := CacheConfig{
		MaxAgeDays:          getEnvInt("MEDIA_CACHE_MAX_AGE_DAYS", 30),
		MaxSizeMB:           getEnvInt64("MEDIA_CACHE_MAX_SIZE_MB", 5120),
		CleanupIntervalMins: getEnvInt("MEDIA_CACHE_CLEANUP_INTERVAL_MINS", 60),
	}

	fetchCfg := FetchConfig{
		MaxDownloadBytes: getEnvInt64("MEDIA_MAX_DOWNLOAD_BYTES", 100*1024*1024),
		TimeoutSecs:      getEnvInt("MEDIA_FETCH_TIMEOUT_SECS", 30),
	}

	analyzerCfg := AnalyzerConfig{
		Provider:    strings.ToLower(getEnv("MEDIA_ANALYZER_PROVIDER", "gemini")),
		GeminiModel: getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		OpenAIModel: getEnv("OPENAI_MODEL", "gpt-4o"),
	}

	cfg := &Config{
		App:      appCfg,
		MCP:      MCPConfig{Port: getEnv("MCP_PORT", "8080"), Host: getEnv("MCP_HOST", "localhost")},
		Paths:    pathsCfg,
		Database: dbCfg,
		Cache:    cacheCfg,
		Fetch:    fetchCfg,
		Analyzer: analyzerCfg,
		APIKeys: APIKeysConfig{
			ScrapeCreators: getEnv("SCRAPECREATORS_API_KEY", ""),
			Gemini:         getEnv("GEMINI_API_KEY", ""),
			OpenAI:         getEnv("OPENAI_API_KEY", ""),
		},
	}

	Global = cfg
	return cfg, nil
}
