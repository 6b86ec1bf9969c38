// Package openai analyzes ad images with the OpenAI chat completions API.
// Videos are not supported here; chat completions cannot take raw video.
package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/adlytic/meta-ads-mcp/domains/media"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

type Analyzer struct {
	apiKey string
	model  string
}

func NewAnalyzer(apiKey, model string) *Analyzer {
	if model == "" {
		model = "gpt-4o"
	}
	return &Analyzer{apiKey: apiKey, model: model}
}

func (a *Analyzer) Name() string {
	return "openai"
}

func (a *Analyzer) SupportsVideo() bool {
	return false
}

const imagePrompt = `Analyze this Facebook/Meta advertisement image and extract every marketing-relevant detail: the overall creative, all visible text elements with their role (headline, body, cta, logo_text, disclaimer, other), people shown (or "none"), brand elements, composition, layout positioning, dominant colors as lowercase names, background color, notable visual elements, aspect ratio and production quality.
Return result in the specified JSON format.`

func (a *Analyzer) AnalyzeImage(ctx context.Context, data []byte, mimeType string) (*media.ImageAnalysis, error) {
	client := openai.NewClient(option.WithAPIKey(a.apiKey))

	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
	contentParts := []openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(imagePrompt),
		openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: dataURL,
		}),
	}

	textElement := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"content":  map[string]any{"type": "string"},
			"category": map[string]any{"type": "string"},
		},
		"required":             []string{"content", "category"},
		"additionalProperties": false,
	}
	stringArray := map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"overall_description": map[string]any{"type": "string"},
			"text_elements":       map[string]any{"type": "array", "items": textElement},
			"people_description":  map[string]any{"type": "string"},
			"brand_elements":      map[string]any{"type": "string"},
			"composition":         map[string]any{"type": "string"},
			"dominant_colors":     stringArray,
			"background_color":    map[string]any{"type": "string"},
			"visual_elements":     stringArray,
			"aspect_ratio":        map[string]any{"type": "string"},
			"quality":             map[string]any{"type": "string"},
			"layout_positioning":  map[string]any{"type": "string"},
		},
		"required": []string{
			"overall_description", "text_elements", "people_description", "brand_elements",
			"composition", "dominant_colors", "background_color", "visual_elements",
			"aspect_ratio", "quality", "layout_positioning",
		},
		"additionalProperties": false,
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(a.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(contentParts),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "ad_image_analysis",
					Schema: any(schema),
					Strict: openai.Bool(true),
				},
			},
		},
	}

	completion, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai image analysis: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("openai image analysis: empty response")
	}

	var analysis media.ImageAnalysis
	if err := json.Unmarshal([]byte(completion.Choices[0].Message.Content), &analysis); err != nil {
		return nil, fmt.Errorf("openai image analysis: malformed response: %w", err)
	}
	return &analysis, nil
}

// AnalyzeVideo always fails; callers must route videos to a provider whose
// SupportsVideo is true.
func (a *Analyzer) AnalyzeVideo(ctx context.Context, data []byte, mimeType string) (*media.VideoAnalysis, error) {
	return nil, fmt.Errorf("openai provider does not support video analysis")
}
