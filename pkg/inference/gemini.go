package inference

import (
	"cmp"
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"google.golang.org/genai"
)

// GeminiInferencer implements both Inferencer and Visioner. It is the
// unified vision provider for fingerprint analysis and poster comparison.
type GeminiInferencer struct {
	client *genai.Client
	apiKey string
	model  string
}

func NewGeminiInferencer(apiKey string, model string) (*GeminiInferencer, error) {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, err
	}
	return &GeminiInferencer{
		client: client,
		apiKey: apiKey,
		model:  model,
	}, nil
}

func (o *GeminiInferencer) Name() string  { return "gemini" }
func (o *GeminiInferencer) Model() string { return o.model }

// Infer sends text to Gemini, reusing the OpenAI param struct for budget
// and model overrides so callers stay provider-agnostic.
func (o *GeminiInferencer) Infer(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string) (string, error) {
	if params == nil {
		params = new(openai.ChatCompletionNewParams)
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleModel),
		ResponseMIMEType:  "application/json",
		MaxOutputTokens:   int32(cmp.Or(params.MaxCompletionTokens.Value, 4096)),
	}

	result, err := o.client.Models.GenerateContent(
		ctx,
		cmp.Or(params.Model, o.model),
		genai.Text(user),
		config,
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return result.Text(), nil
}

// AnalyzeImages sends the prompt plus inline image parts in one call.
func (o *GeminiInferencer) AnalyzeImages(ctx context.Context, prompt string, images []Image, jsonSchema any) (string, error) {
	if len(images) == 0 {
		return "", errors.New("no images to analyze")
	}

	parts := make([]*genai.Part, 0, len(images)+1)
	parts = append(parts, genai.NewPartFromText(prompt))
	for _, img := range images {
		mime := cmp.Or(img.MIME, "image/png")
		parts = append(parts, genai.NewPartFromBytes(img.Data, mime))
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType:   "application/json",
		ResponseJsonSchema: jsonSchema,
		MaxOutputTokens:    2048,
	}

	result, err := o.client.Models.GenerateContent(
		ctx,
		o.model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		config,
	)
	if err != nil {
		return "", fmt.Errorf("failed to analyze images: %w", err)
	}

	return result.Text(), nil
}
