package mcp

import (
	"context"
	"fmt"

	domainMedia "github.com/adlytic/meta-ads-mcp/domains/media"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type MediaHandler struct {
	mediaService domainMedia.IMediaUsecase
}

func InitMcpMedia(mediaService domainMedia.IMediaUsecase) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// AddMediaTools registers the cache tools unconditionally; the analysis
// tools only appear when an analysis provider is configured.
func (h *MediaHandler) AddMediaTools(mcpServer *server.MCPServer) {
	if h.mediaService.AnalysisEnabled() {
		mcpServer.AddTool(h.toolGetAdImage(), h.handleGetAdImage)
		mcpServer.AddTool(h.toolGetAdVideo(), h.handleGetAdVideo)
	}
	mcpServer.AddTool(h.toolSearchCachedMedia(), h.handleSearchCachedMedia)
	mcpServer.AddTool(h.toolGetCacheStats(), h.handleGetCacheStats)
	mcpServer.AddTool(h.toolCleanupCache(), h.handleCleanupCache)
}

func (h *MediaHandler) toolGetAdImage() mcp.Tool {
	return mcp.NewTool(
		"analyze_ad_image",
		mcp.WithDescription("Download an ad image, analyze its creative content with AI and cache the result. Repeated calls for the same URL are served from the cache."),
		mcp.WithTitleAnnotation("Analyze Ad Image"),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithString("image_url",
			mcp.Description("The image URL, as returned by get_meta_ads."),
			mcp.Required(),
		),
		mcp.WithString("brand_hint",
			mcp.Description("Optional brand or company name to tag the cached entry with."),
		),
		mcp.WithBoolean("force_refresh",
			mcp.Description("Re-download and re-analyze even when a cached analysis exists."),
		),
	)
}

func (h *MediaHandler) handleGetAdImage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.handleGetMedia(ctx, request, "image_url", h.mediaService.GetAdImage)
}

func (h *MediaHandler) toolGetAdVideo() mcp.Tool {
	return mcp.NewTool(
		"analyze_ad_video",
		mcp.WithDescription("Download an ad video, analyze its scenes, on-screen text and narrative with AI and cache the result."),
		mcp.WithTitleAnnotation("Analyze Ad Video"),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithString("video_url",
			mcp.Description("The video URL, as returned by get_meta_ads."),
			mcp.Required(),
		),
		mcp.WithString("brand_hint",
			mcp.Description("Optional brand or company name to tag the cached entry with."),
		),
		mcp.WithBoolean("force_refresh",
			mcp.Description("Re-download and re-analyze even when a cached analysis exists."),
		),
	)
}

func (h *MediaHandler) handleGetAdVideo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.handleGetMedia(ctx, request, "video_url", h.mediaService.GetAdVideo)
}

func (h *MediaHandler) handleGetMedia(ctx context.Context, request mcp.CallToolRequest, urlArg string, get func(context.Context, string, string, bool) (domainMedia.Result, error)) (*mcp.CallToolResult, error) {
	sourceURL, err := request.RequireString(urlArg)
	if err != nil {
		return nil, err
	}

	args := request.GetArguments()
	brandHint := ""
	if raw, ok := args["brand_hint"]; ok {
		if s, ok := raw.(string); ok {
			brandHint = s
		}
	}
	forceRefresh := false
	if raw, ok := args["force_refresh"]; ok {
		forceRefresh, err = toBool(raw)
		if err != nil {
			return nil, err
		}
	}

	result, err := get(ctx, sourceURL, brandHint, forceRefresh)
	if err != nil {
		return nil, err
	}

	origin := "analyzed"
	if result.Cached {
		origin = "served from cache"
	}
	fallback := fmt.Sprintf("Ad %s %s (fingerprint %s)", result.Kind, origin, result.Fingerprint)
	return mcp.NewToolResultStructured(result, fallback), nil
}

func (h *MediaHandler) toolSearchCachedMedia() mcp.Tool {
	return mcp.NewTool(
		"search_cached_media",
		mcp.WithDescription("Search previously analyzed ad media by brand, media type or keyword (detected text, colors, people). All given filters must match."),
		mcp.WithTitleAnnotation("Search Cached Media"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithString("brand_hint",
			mcp.Description("Filter by the brand hint the entries were tagged with."),
		),
		mcp.WithString("media_kind",
			mcp.Description("Filter by media kind: image or video."),
		),
		mcp.WithString("keyword",
			mcp.Description("Match against detected text and dominant colors; 'people' matches entries showing people."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of entries to return."),
		),
	)
}

func (h *MediaHandler) handleSearchCachedMedia(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	filter := domainMedia.SearchFilter{}
	if raw, ok := args["brand_hint"]; ok {
		if s, ok := raw.(string); ok {
			filter.Brand = s
		}
	}
	if raw, ok := args["media_kind"]; ok {
		if s, ok := raw.(string); ok {
			filter.Kind = domainMedia.Kind(s)
		}
	}
	if raw, ok := args["keyword"]; ok {
		if s, ok := raw.(string); ok {
			filter.Keyword = s
		}
	}
	if raw, ok := args["limit"]; ok {
		limit, err := toInt(raw)
		if err != nil {
			return nil, err
		}
		filter.Limit = limit
	}

	entries, err := h.mediaService.SearchCached(ctx, filter)
	if err != nil {
		return nil, err
	}

	fallback := fmt.Sprintf("Found %d cached media entries", len(entries))
	return mcp.NewToolResultStructured(entries, fallback), nil
}

func (h *MediaHandler) toolGetCacheStats() mcp.Tool {
	return mcp.NewTool(
		"get_cache_stats",
		mcp.WithDescription("Report how many media entries are cached, how much disk they use and how many carry an AI analysis."),
		mcp.WithTitleAnnotation("Cache Statistics"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
	)
}

func (h *MediaHandler) handleGetCacheStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.mediaService.Stats(ctx)
	if err != nil {
		return nil, err
	}

	fallback := fmt.Sprintf("%d entries using %s", stats.TotalEntries, stats.HumanSize)
	return mcp.NewToolResultStructured(stats, fallback), nil
}

func (h *MediaHandler) toolCleanupCache() mcp.Tool {
	return mcp.NewTool(
		"cleanup_media_cache",
		mcp.WithDescription("Remove cached media that exceeds the age limit, and the oldest entries past the size budget. Omitted limits fall back to the configured policy."),
		mcp.WithTitleAnnotation("Clean Up Cache"),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithNumber("max_age_days",
			mcp.Description("Remove entries older than this many days."),
		),
		mcp.WithNumber("max_size_mb",
			mcp.Description("Remove oldest entries until the cache fits in this many megabytes."),
		),
	)
}

func (h *MediaHandler) handleCleanupCache(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	maxAgeDays := 0
	if raw, ok := args["max_age_days"]; ok {
		v, err := toInt(raw)
		if err != nil {
			return nil, err
		}
		maxAgeDays = v
	}
	var maxSizeMB int64
	if raw, ok := args["max_size_mb"]; ok {
		v, err := toInt(raw)
		if err != nil {
			return nil, err
		}
		maxSizeMB = int64(v)
	}

	result, err := h.mediaService.Cleanup(ctx, maxAgeDays, maxSizeMB)
	if err != nil {
		return nil, err
	}

	fallback := fmt.Sprintf("Removed %d entries, freed %d bytes", result.RemovedCount, result.FreedBytes)
	return mcp.NewToolResultStructured(result, fallback), nil
}
