package server

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fable/pkg/schema"
)

func TestBuildFallbackPromptShape(t *testing.T) {
	app := schema.Appearance{
		Gender:    "female",
		Age:       "27",
		SkinColor: "olive",
		BodyType:  "athletic",
		Hair:      "long red",
		Eyes:      "green",
		Other:     "scar over left brow",
	}
	prompt := BuildFallbackPrompt(app, map[string]string{"mood": "stormy"}, "standing on a cliff")

	assert.True(t, strings.HasPrefix(prompt, "Full-body character illustration"))
	assert.Contains(t, prompt, "long red hair")
	assert.Contains(t, prompt, "green eyes")
	assert.Contains(t, prompt, "olive skin")
	assert.Contains(t, prompt, "athletic build")
	assert.Contains(t, prompt, "stormy")
	assert.Contains(t, prompt, "standing on a cliff")
	assert.NotContains(t, prompt, ",,")
	assert.NotContains(t, prompt, "  ")
	assert.LessOrEqual(t, len(prompt), 1500)
}

func TestBuildFallbackPromptIsDeterministic(t *testing.T) {
	app := schema.Appearance{Hair: "silver", Eyes: "amber"}
	sel := map[string]string{"b": "beta", "a": "alpha", "c": "gamma"}

	first := BuildFallbackPrompt(app, sel, "")
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, BuildFallbackPrompt(app, sel, ""))
	}
}

func TestBuildFallbackPromptCapsLength(t *testing.T) {
	app := schema.Appearance{Other: strings.Repeat("ornate golden armor, ", 200)}
	prompt := BuildFallbackPrompt(app, nil, strings.Repeat("misty forest, ", 100))

	assert.LessOrEqual(t, len(prompt), 1500)
	assert.True(t, strings.HasPrefix(prompt, "Full-body character illustration"))
	assert.NotContains(t, prompt, ",,")
	assert.False(t, strings.HasSuffix(prompt, ","))
}

func TestBuildFallbackPromptEmptyAppearance(t *testing.T) {
	prompt := BuildFallbackPrompt(schema.Appearance{}, nil, "")
	assert.Equal(t, "Full-body character illustration", prompt)
}

func TestCharacterPromptRequiresAppearance(t *testing.T) {
	s := newTestServer()

	rec := doJSON(s, http.MethodPost, "/api/generate/character-prompt", `{"enhance":false}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "appearance is required")
}

func TestCharacterPromptFallbackWithoutEnhance(t *testing.T) {
	s := newTestServer()

	rec := doJSON(s, http.MethodPost, "/api/generate/character-prompt",
		`{"appearance":{"hair":"red","eyes":"blue"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[characterPromptResp](t, rec)
	assert.True(t, resp.UsedFallback)
	assert.True(t, strings.HasPrefix(resp.Prompt, "Full-body character illustration"))
	assert.Contains(t, resp.Prompt, "red hair")
	assert.Empty(t, resp.Provider)
}

func TestCharacterPromptEnhanced(t *testing.T) {
	s := newTestServer()
	s.Text = &fakeInferencer{out: "A vivid full-body rendering of a red-haired adventurer."}

	rec := doJSON(s, http.MethodPost, "/api/generate/character-prompt",
		`{"appearance":{"hair":"red"},"enhance":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[characterPromptResp](t, rec)
	assert.False(t, resp.UsedFallback)
	assert.Equal(t, "fake", resp.Provider)
	assert.Equal(t, "fake-model", resp.Model)
	assert.Contains(t, resp.Prompt, "red-haired")
}

func TestCharacterPromptFallsBackOnProviderError(t *testing.T) {
	s := newTestServer()
	s.Text = &fakeInferencer{err: errors.New("upstream down")}

	rec := doJSON(s, http.MethodPost, "/api/generate/character-prompt",
		`{"appearance":{"hair":"red"},"enhance":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[characterPromptResp](t, rec)
	assert.True(t, resp.UsedFallback)
	assert.True(t, strings.HasPrefix(resp.Prompt, "Full-body character illustration"))
}

func TestGenerateSceneValidation(t *testing.T) {
	s := newTestServer()
	s.Text = &fakeInferencer{out: "The rain had not stopped for three days."}

	rec := doJSON(s, http.MethodPost, "/api/generate/scene", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "beat_id is required")

	rec = doJSON(s, http.MethodPost, "/api/generate/scene", `{"beat_id":"missing"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenerateSceneFromBeat(t *testing.T) {
	s := newTestServer()
	s.Text = &fakeInferencer{out: "The rain had not stopped for three days."}

	rec := doJSON(s, http.MethodPost, "/api/beats",
		`{"project_id":"p","act":1,"title":"the storm breaks"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	beatID := decode[map[string]any](t, rec)["id"].(string)

	rec = doJSON(s, http.MethodPost, "/api/generate/scene", `{"beat_id":"`+beatID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[generateSceneResp](t, rec)
	assert.Equal(t, "The rain had not stopped for three days.", resp.Scene)
	assert.Equal(t, "fake", resp.Provider)
	assert.Greater(t, resp.Tokens, 0)
}
