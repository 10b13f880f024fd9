package inference

import (
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// NewGroqInferencer creates an inferencer against Groq's OpenAI-compatible API.
func NewGroqInferencer(apiKey string, model string) *OpenAIInferencer {
	if model == "" {
		model = "llama-3.3-70b-versatile"
	}
	client := openai.NewClient(
		option.WithBaseURL("https://api.groq.com/openai/v1"),
		option.WithAPIKey(apiKey),
	)
	return &OpenAIInferencer{
		client: &client,
		apiKey: apiKey,
		model:  model,
		name:   "groq",
	}
}
