package inference

import (
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// NewClaudeInferencer creates an inferencer against Anthropic's
// OpenAI-compatible endpoint.
func NewClaudeInferencer(apiKey string, model string) *OpenAIInferencer {
	if model == "" {
		model = "claude-3-5-haiku-latest"
	}
	client := openai.NewClient(
		option.WithBaseURL("https://api.anthropic.com/v1"),
		option.WithAPIKey(apiKey),
	)
	return &OpenAIInferencer{
		client: &client,
		apiKey: apiKey,
		model:  model,
		name:   "claude",
	}
}
