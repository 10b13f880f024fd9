package inference

import (
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// NewOllamaInferencer creates an inferencer against a local Ollama instance
// via its OpenAI-compatible /v1 surface. Ollama needs no API key.
func NewOllamaInferencer(baseURL string, model string) *OpenAIInferencer {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if !strings.HasSuffix(baseURL, "/v1") {
		baseURL = strings.TrimSuffix(baseURL, "/") + "/v1"
	}
	if model == "" {
		model = "llama3.1"
	}
	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey("ollama"),
	)
	return &OpenAIInferencer{
		client: &client,
		apiKey: "ollama",
		model:  model,
		name:   "ollama",
	}
}
