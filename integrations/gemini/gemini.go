// Package gemini analyzes ad creatives with the Gemini API. Images go in as
// inline data; videos are pushed through the Files API first because inline
// payloads are capped well below typical ad video sizes.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/adlytic/meta-ads-mcp/domains/media"
	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

const (
	filePollInterval = 2 * time.Second
	filePollTimeout  = 3 * time.Minute
)

type Analyzer struct {
	apiKey string
	model  string
}

func NewAnalyzer(apiKey, model string) *Analyzer {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &Analyzer{apiKey: apiKey, model: model}
}

func (a *Analyzer) Name() string {
	return "gemini"
}

func (a *Analyzer) SupportsVideo() bool {
	return true
}

func (a *Analyzer) newClient(ctx context.Context) (*genai.Client, error) {
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  a.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
}

const imagePrompt = `You are analyzing a Facebook/Meta advertisement image. Extract every marketing-relevant detail:
1. Describe the overall creative.
2. List every visible text element with its role (headline, body, cta, logo_text, disclaimer, other).
3. Describe any people shown, or "none".
4. Identify brand elements (logos, product shots, brand colors).
5. Describe the composition and layout positioning of the elements.
6. List the dominant colors as simple lowercase color names.

Return a JSON object matching the requested schema.`

func (a *Analyzer) AnalyzeImage(ctx context.Context, data []byte, mimeType string) (*media.ImageAnalysis, error) {
	client, err := a.newClient(ctx)
	if err != nil {
		return nil, err
	}

	contents := []*genai.Content{
		{
			Role: genai.RoleUser,
			Parts: []*genai.Part{
				{Text: imagePrompt},
				{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}},
			},
		},
	}

	result, err := client.Models.GenerateContent(ctx, a.model, contents, imageGenConfig())
	if err != nil {
		return nil, fmt.Errorf("gemini image analysis: %w", err)
	}
	if result == nil {
		return nil, fmt.Errorf("gemini image analysis: empty result")
	}

	var analysis media.ImageAnalysis
	if err := json.Unmarshal([]byte(result.Text()), &analysis); err != nil {
		return nil, fmt.Errorf("gemini image analysis: malformed response: %w", err)
	}
	return &analysis, nil
}

const videoPrompt = `You are analyzing a Facebook/Meta video advertisement. Extract every marketing-relevant detail:
1. Summarize the narrative of the ad.
2. Break the video into scenes with approximate timestamp ranges.
3. List every piece of on-screen text with its role (headline, body, cta, logo_text, disclaimer, other).
4. Describe any people shown, or "none".
5. List the dominant colors as simple lowercase color names.
6. State the call to action, if any.

Return a JSON object matching the requested schema.`

func (a *Analyzer) AnalyzeVideo(ctx context.Context, data []byte, mimeType string) (*media.VideoAnalysis, error) {
	client, err := a.newClient(ctx)
	if err != nil {
		return nil, err
	}

	file, err := client.Files.Upload(ctx, bytes.NewReader(data), &genai.UploadFileConfig{MIMEType: mimeType})
	if err != nil {
		return nil, fmt.Errorf("gemini video upload: %w", err)
	}
	defer func() {
		// Uploaded files expire upstream anyway; deleting early is tidier.
		delCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := client.Files.Delete(delCtx, file.Name, nil); err != nil {
			logrus.WithError(err).Warnf("[GEMINI] Could not delete uploaded file %s", file.Name)
		}
	}()

	file, err = a.waitForFile(ctx, client, file)
	if err != nil {
		return nil, err
	}

	contents := []*genai.Content{
		{
			Role: genai.RoleUser,
			Parts: []*genai.Part{
				{Text: videoPrompt},
				genai.NewPartFromURI(file.URI, file.MIMEType),
			},
		},
	}

	result, err := client.Models.GenerateContent(ctx, a.model, contents, videoGenConfig())
	if err != nil {
		return nil, fmt.Errorf("gemini video analysis: %w", err)
	}
	if result == nil {
		return nil, fmt.Errorf("gemini video analysis: empty result")
	}

	var analysis media.VideoAnalysis
	if err := json.Unmarshal([]byte(result.Text()), &analysis); err != nil {
		return nil, fmt.Errorf("gemini video analysis: malformed response: %w", err)
	}
	return &analysis, nil
}

// waitForFile polls until the uploaded video finishes server side processing.
func (a *Analyzer) waitForFile(ctx context.Context, client *genai.Client, file *genai.File) (*genai.File, error) {
	deadline := time.Now().Add(filePollTimeout)
	for file.State == genai.FileStateProcessing {
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("gemini video upload: processing timed out after %s", filePollTimeout)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(filePollInterval):
		}
		var err error
		file, err = client.Files.Get(ctx, file.Name, nil)
		if err != nil {
			return nil, fmt.Errorf("gemini video upload: poll failed: %w", err)
		}
	}
	if file.State == genai.FileStateFailed {
		return nil, fmt.Errorf("gemini video upload: server side processing failed")
	}
	return file, nil
}

func textElementSchema(desc string) *genai.Schema {
	return &genai.Schema{
		Type: "array",
		Items: &genai.Schema{
			Type: "object",
			Properties: map[string]*genai.Schema{
				"content":  {Type: "string", Description: "The text exactly as it appears"},
				"category": {Type: "string", Description: "headline, body, cta, logo_text, disclaimer or other"},
			},
			Required: []string{"content", "category"},
		},
		Description: desc,
	}
}

func colorsSchema() *genai.Schema {
	return &genai.Schema{
		Type:        "array",
		Items:       &genai.Schema{Type: "string"},
		Description: "Dominant colors as simple lowercase names, most prominent first",
	}
}

func imageGenConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseJsonSchema: &genai.Schema{
			Type: "object",
			Properties: map[string]*genai.Schema{
				"overall_description": {Type: "string", Description: "What the ad shows and sells"},
				"text_elements":       textElementSchema("Every visible text element"),
				"people_description":  {Type: "string", Description: "Who appears in the image, or 'none'"},
				"brand_elements":      {Type: "string", Description: "Logos, products and brand colors"},
				"composition":         {Type: "string", Description: "Visual composition of the creative"},
				"dominant_colors":     colorsSchema(),
				"background_color":    {Type: "string"},
				"visual_elements":     {Type: "array", Items: &genai.Schema{Type: "string"}},
				"aspect_ratio":        {Type: "string", Description: "e.g. square, portrait, landscape"},
				"quality":             {Type: "string", Description: "Production quality assessment"},
				"layout_positioning":  {Type: "string", Description: "Where the key elements sit in the frame"},
			},
			Required: []string{"overall_description", "text_elements", "people_description", "dominant_colors"},
		},
	}
}

func videoGenConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseJsonSchema: &genai.Schema{
			Type: "object",
			Properties: map[string]*genai.Schema{
				"narrative_summary": {Type: "string", Description: "The story the ad tells"},
				"scenes": {
					Type: "array",
					Items: &genai.Schema{
						Type: "object",
						Properties: map[string]*genai.Schema{
							"timestamp_range": {Type: "string", Description: "e.g. 0:00-0:04"},
							"description":     {Type: "string"},
						},
						Required: []string{"timestamp_range", "description"},
					},
				},
				"detected_text":      textElementSchema("Every piece of on-screen text"),
				"dominant_colors":    colorsSchema(),
				"people_description": {Type: "string", Description: "Who appears in the video, or 'none'"},
				"call_to_action":     {Type: "string", Description: "The CTA, or empty if none"},
			},
			Required: []string{"narrative_summary", "scenes", "people_description", "dominant_colors"},
		},
	}
}
