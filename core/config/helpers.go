package config

import (
	"os"
	"strconv"
)

// GetAllSettings returns a map of all dynamic settings currently loaded in memory.
func GetAllSettings() map[string]any {
	if Global == nil {
		return map[string]any{}
	}
	return map[string]any{
		"media_cache_dir":                   Global.Paths.MediaCache,
		"media_cache_max_age_days":          Global.Cache.MaxAgeDays,
		"media_cache_max_size_mb":           Global.Cache.MaxSizeMB,
		"media_cache_cleanup_interval_mins": Global.Cache.CleanupIntervalMins,
		"media_analyzer_provider":           Global.Analyzer.Provider,
		"media_max_download_bytes":          Global.Fetch.MaxDownloadBytes,
		"app_debug":                         Global.App.Debug,
		"app_version":                       Global.App.Version,
	}
}

// Helpers
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
