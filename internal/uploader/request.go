package uploader

import (
	models "io.winapps.snapquip/internal/models/analyze_image"
)

const (
	DefaultModel     = "claude-3-5-sonnet-20241022"
	DefaultMaxTokens = 1024
	DefaultPrompt    = "Take a look at this photo and reply with one short, witty remark about it. Keep it to a single sentence."
)

// RequestOptions overrides the fixed model, token budget and prompt
type RequestOptions struct {
	Model     string
	MaxTokens int
	Prompt    string
}

func (o RequestOptions) withDefaults() RequestOptions {
	if o.Model == "" {
		o.Model = DefaultModel
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = DefaultMaxTokens
	}
	if o.Prompt == "" {
		o.Prompt = DefaultPrompt
	}
	return o
}

// BuildRequest builds the single-turn analysis request for file
func BuildRequest(file File, opts RequestOptions) models.AnalysisRequest {
	opts = opts.withDefaults()
	return models.AnalysisRequest{
		Model:     opts.Model,
		MaxTokens: opts.MaxTokens,
		Messages: []models.Message{
			{
				Role: models.RoleUser,
				Content: []models.ContentPart{
					models.NewImagePart(file.MediaType, Encode(file.Data)),
					models.NewTextPart(opts.Prompt),
				},
			},
		},
	}
}
