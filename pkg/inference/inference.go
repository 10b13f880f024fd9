package inference

import (
	"context"

	"github.com/openai/openai-go/v3"
)

// Inferencer runs one text generation call against a provider. Implementations
// make exactly one attempt; retrying is the caller's decision (and nothing in
// this service retries).
type Inferencer interface {
	// Infer sends a system+user exchange and returns the raw model output.
	Infer(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string) (string, error)
	// Name is the provider identifier used in response bookkeeping.
	Name() string
	// Model is the configured model identifier.
	Model() string
}

// Visioner analyzes one or more images alongside a text prompt. A non-nil
// jsonSchema constrains the output to that JSON shape on providers that
// support schema-constrained generation.
type Visioner interface {
	AnalyzeImages(ctx context.Context, prompt string, images []Image, jsonSchema any) (string, error)
	Name() string
	Model() string
}

// Image is raw image data with its MIME type.
type Image struct {
	Data []byte
	MIME string
}
