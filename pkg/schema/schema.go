package schema

import (
	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go/v3"
)

func generateSchema[T any]() any {
	r := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return r.Reflect(v)
}

var (
	FingerprintSchema = generateSchema[Fingerprint]()
	SelectionSchema   = generateSchema[PosterSelection]()
)

// PosterSelection is the model's answer when comparing candidate posters.
type PosterSelection struct {
	SelectedIndex *int   `json:"selectedIndex" jsonschema_description:"Zero-based index of the best candidate image"`
	Confidence    *int   `json:"confidence" jsonschema_description:"Confidence from 0 to 100"`
	Reasoning     string `json:"reasoning,omitempty" jsonschema_description:"Short justification for the choice"`
}

// FingerprintResponseFormat constrains the vision model to the
// Fingerprint JSON shape on OpenAI-compatible providers.
func FingerprintResponseFormat() openai.ChatCompletionNewParamsResponseFormatUnion {
	p := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "visual_fingerprint",
		Description: openai.String("Classified visual attributes extracted from an image"),
		Schema:      FingerprintSchema,
		Strict:      openai.Bool(true),
	}
	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: p},
	}
}

// SelectionResponseFormat constrains poster comparison output.
func SelectionResponseFormat() openai.ChatCompletionNewParamsResponseFormatUnion {
	p := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "poster_selection",
		Description: openai.String("Best poster candidate with confidence"),
		Schema:      SelectionSchema,
		Strict:      openai.Bool(true),
	}
	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: p},
	}
}
