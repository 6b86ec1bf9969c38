package mcp

import (
	"context"
	"fmt"
	"strconv"

	domainAdLibrary "github.com/adlytic/meta-ads-mcp/domains/adlibrary"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type AdLibraryHandler struct {
	adLibraryService domainAdLibrary.IAdLibraryUsecase
}

func InitMcpAdLibrary(adLibraryService domainAdLibrary.IAdLibraryUsecase) *AdLibraryHandler {
	return &AdLibraryHandler{adLibraryService: adLibraryService}
}

func (h *AdLibraryHandler) AddAdLibraryTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(h.toolGetMetaPlatformID(), h.handleGetMetaPlatformID)
	mcpServer.AddTool(h.toolGetMetaAds(), h.handleGetMetaAds)
}

type platformIDResponse struct {
	PlatformIDs  map[string]string `json:"platform_ids"`
	TotalResults int               `json:"total_results"`
}

func (h *AdLibraryHandler) toolGetMetaPlatformID() mcp.Tool {
	return mcp.NewTool(
		"get_meta_platform_id",
		mcp.WithDescription("Search the Meta Ad Library for companies or brands and return their platform IDs. Use this before get_meta_ads to resolve a brand name to its page ID."),
		mcp.WithTitleAnnotation("Get Meta Platform ID"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithArray("brand_names",
			mcp.Description("Company or brand names to search for in the Meta Ad Library."),
			mcp.Required(),
			mcp.Items(map[string]any{"type": "string"}),
		),
	)
}

func (h *AdLibraryHandler) handleGetMetaPlatformID(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	brandNames, err := toStringSlice(request.GetArguments()["brand_names"])
	if err != nil {
		return nil, err
	}
	if len(brandNames) == 0 {
		return nil, fmt.Errorf("brand_names must contain at least one name")
	}

	resp := platformIDResponse{PlatformIDs: map[string]string{}}
	for _, name := range brandNames {
		companies, err := h.adLibraryService.SearchCompanies(ctx, name)
		if err != nil {
			return nil, err
		}
		for _, company := range companies {
			resp.PlatformIDs[company.Name] = company.PageID
		}
	}
	resp.TotalResults = len(resp.PlatformIDs)

	fallback := fmt.Sprintf("Found %d matching brands", resp.TotalResults)
	return mcp.NewToolResultStructured(resp, fallback), nil
}

// trimmedAd is the compact ad record returned when trim is on: one record per
// creative, DCO cards expanded.
type trimmedAd struct {
	AdID      string `json:"ad_id"`
	MediaType string `json:"media_type"`
	MediaURL  string `json:"media_url"`
	Body      string `json:"body,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

type trimmedAdsResponse struct {
	Ads     []trimmedAd `json:"ads"`
	Count   int         `json:"count"`
	HasMore bool        `json:"has_more"`
	Cursor  string      `json:"cursor,omitempty"`
}

func (h *AdLibraryHandler) toolGetMetaAds() mcp.Tool {
	return mcp.NewTool(
		"get_meta_ads",
		mcp.WithDescription("Retrieve currently running ads for a brand by its Meta platform ID, including creative URLs for images, videos and DCO cards."),
		mcp.WithTitleAnnotation("Get Meta Ads"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithString("platform_id",
			mcp.Description("The Meta platform ID, as returned by get_meta_platform_id."),
			mcp.Required(),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of ads to return (1-100, default 20)."),
		),
		mcp.WithString("country",
			mcp.Description("Optional two-letter ISO country code to filter ads by delivery country."),
		),
		mcp.WithBoolean("trim",
			mcp.Description("Return compact ad records with one creative per entry (default true). Set to false for full ad metadata."),
		),
	)
}

func (h *AdLibraryHandler) handleGetMetaAds(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	platformID, err := request.RequireString("platform_id")
	if err != nil {
		return nil, err
	}

	args := request.GetArguments()
	limit := 0
	if raw, ok := args["limit"]; ok {
		limit, err = toInt(raw)
		if err != nil {
			return nil, err
		}
	}
	country := ""
	if raw, ok := args["country"]; ok {
		if s, ok := raw.(string); ok {
			country = s
		}
	}
	trim := true
	if raw, ok := args["trim"]; ok {
		trim, err = toBool(raw)
		if err != nil {
			return nil, err
		}
	}

	page, err := h.adLibraryService.GetCompanyAds(ctx, platformID, limit, country)
	if err != nil {
		return nil, err
	}

	if !trim {
		fallback := fmt.Sprintf("Found %d ads for platform %s", page.TotalCount, platformID)
		return mcp.NewToolResultStructured(page, fallback), nil
	}

	resp := trimmedAdsResponse{
		Ads:     trimAds(page.Ads),
		HasMore: page.HasMore,
		Cursor:  page.Cursor,
	}
	resp.Count = len(resp.Ads)

	fallback := fmt.Sprintf("Found %d ad creatives for platform %s", resp.Count, platformID)
	return mcp.NewToolResultStructured(resp, fallback), nil
}

// trimAds flattens ads into one record per creative URL.
func trimAds(ads []domainAdLibrary.Ad) []trimmedAd {
	trimmed := make([]trimmedAd, 0, len(ads))
	for _, ad := range ads {
		base := trimmedAd{
			AdID:      ad.ArchiveID,
			MediaType: ad.DisplayFormat,
			Body:      ad.Body,
			StartDate: ad.StartDate,
			EndDate:   ad.EndDate,
		}
		switch ad.DisplayFormat {
		case domainAdLibrary.FormatDCO:
			for _, card := range ad.Cards {
				record := base
				record.MediaURL = card.ImageURL
				if card.Body != "" {
					record.Body = card.Body
				}
				trimmed = append(trimmed, record)
			}
		case domainAdLibrary.FormatVideo:
			for _, url := range ad.VideoURLs {
				record := base
				record.MediaURL = url
				trimmed = append(trimmed, record)
			}
		default:
			for _, url := range ad.ImageURLs {
				record := base
				record.MediaURL = url
				trimmed = append(trimmed, record)
			}
		}
	}
	return trimmed
}

func toStringSlice(value any) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected string list item, got %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	case string:
		return []string{v}, nil
	default:
		return nil, fmt.Errorf("unsupported string list value type %T", value)
	}
}

func toInt(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case float64:
		return int(v), nil
	case string:
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("unable to parse integer value %q", v)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("unsupported integer value type %T", value)
	}
}

func toBool(value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return false, fmt.Errorf("unable to parse boolean value %q", v)
		}
		return parsed, nil
	case float64:
		return v != 0, nil
	case int:
		return v != 0, nil
	default:
		return false, fmt.Errorf("unsupported boolean value type %T", value)
	}
}
