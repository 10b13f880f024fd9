package server

import (
	"encoding/json"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/openai/openai-go/v3"

	"fable/pkg/schema"
	"fable/pkg/utils"
)

const (
	maxPromptChars   = 1500
	maxSceneCtxRunes = 8192 * 4
)

type characterPromptReq struct {
	Appearance *schema.Appearance `json:"appearance"`
	Selections map[string]string  `json:"selections,omitempty"`
	BasePrompt string             `json:"basePrompt,omitempty"`
	Enhance    bool               `json:"enhance,omitempty"`
}

type characterPromptResp struct {
	Prompt       string `json:"prompt"`
	UsedFallback bool   `json:"usedFallback"`
	Provider     string `json:"provider,omitempty"`
	Model        string `json:"model,omitempty"`
}

// POST /api/generate/character-prompt
func (s *Server) handleCharacterPrompt(c echo.Context) error {
	var req characterPromptReq
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if req.Appearance == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "appearance is required")
	}

	fallback := BuildFallbackPrompt(*req.Appearance, req.Selections, req.BasePrompt)

	if !req.Enhance {
		return c.JSON(http.StatusOK, characterPromptResp{Prompt: fallback, UsedFallback: true})
	}
	if s.Text == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "no text provider configured")
	}

	input := describeAppearance(*req.Appearance, req.Selections, req.BasePrompt)
	params := &openai.ChatCompletionNewParams{
		MaxCompletionTokens: openai.Int(1024),
		Temperature:         openai.Float(0.7),
	}
	out, err := s.Text.Infer(c.Request().Context(), params, characterPromptSystem, input)
	if err != nil {
		log.Warn("character prompt enhancement failed, using fallback", "error", err)
		return c.JSON(http.StatusOK, characterPromptResp{Prompt: fallback, UsedFallback: true})
	}
	out = strings.TrimSpace(utils.StripReasoning(out))
	if out == "" {
		return c.JSON(http.StatusOK, characterPromptResp{Prompt: fallback, UsedFallback: true})
	}

	return c.JSON(http.StatusOK, characterPromptResp{
		Prompt:   out,
		Provider: s.Text.Name(),
		Model:    s.Text.Model(),
	})
}

// BuildFallbackPrompt composes a deterministic image prompt from the
// supplied descriptors. The result always opens with a full-body framing
// clause, contains no doubled commas or stray whitespace, and is capped
// at 1500 characters.
func BuildFallbackPrompt(app schema.Appearance, selections map[string]string, basePrompt string) string {
	parts := []string{"Full-body character illustration"}

	add := func(v string) {
		v = strings.TrimSpace(v)
		if v != "" {
			parts = append(parts, v)
		}
	}

	if app.Gender != "" {
		add(app.Gender + " character")
	}
	if app.Age != "" {
		add(app.Age + " years old")
	}
	if app.SkinColor != "" {
		add(app.SkinColor + " skin")
	}
	if app.BodyType != "" {
		add(app.BodyType + " build")
	}
	if app.Hair != "" {
		add(app.Hair + " hair")
	}
	if app.Eyes != "" {
		add(app.Eyes + " eyes")
	}
	add(app.Other)

	for _, key := range sortedKeys(selections) {
		add(selections[key])
	}
	add(basePrompt)

	prompt := strings.Join(parts, ", ")
	prompt = strings.ReplaceAll(prompt, ",,", ",")
	prompt = strings.Join(strings.Fields(prompt), " ")

	if len(prompt) > maxPromptChars {
		cut := prompt[:maxPromptChars]
		if i := strings.LastIndex(cut, ","); i > 0 {
			cut = cut[:i]
		}
		prompt = strings.TrimRight(cut, ", ")
	}
	return prompt
}

func sortedKeys(m map[string]string) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func describeAppearance(app schema.Appearance, selections map[string]string, basePrompt string) string {
	var b strings.Builder
	bin, _ := json.MarshalIndent(app, "", "  ")
	b.WriteString("Character appearance:\n")
	b.Write(bin)
	if len(selections) > 0 {
		b.WriteString("\n\nStyle selections:\n")
		for _, k := range sortedKeys(selections) {
			b.WriteString("- " + k + ": " + selections[k] + "\n")
		}
	}
	if basePrompt != "" {
		b.WriteString("\nBase prompt to build on: " + basePrompt)
	}
	return b.String()
}

type generateSceneReq struct {
	BeatID       string   `json:"beat_id"`
	SceneID      string   `json:"scene_id,omitempty"`
	CharacterIDs []string `json:"character_ids,omitempty"`
	Direction    string   `json:"direction,omitempty"`
}

type generateSceneResp struct {
	Scene    string `json:"scene"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Tokens   int    `json:"tokens"`
}

// POST /api/generate/scene
func (s *Server) handleGenerateScene(c echo.Context) error {
	var req generateSceneReq
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if err := required("beat_id", req.BeatID); err != nil {
		return err
	}
	if s.Text == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "no text provider configured")
	}

	ctx := c.Request().Context()
	beat, err := s.Beats.GetBeat(ctx, req.BeatID)
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString("Plot beat (act " + strconv.Itoa(beat.Act) + "): " + beat.Title + "\n")
	if beat.Summary != "" {
		b.WriteString(beat.Summary + "\n")
	}
	for _, id := range req.CharacterIDs {
		ch, err := s.Store.GetCharacter(ctx, id)
		if err != nil {
			log.Warn("scene generation: character lookup failed", "character", id, "error", err)
			continue
		}
		bin, _ := json.MarshalIndent(ch, "", "  ")
		b.WriteString("\nCharacter:\n")
		b.Write(bin)
		b.WriteString("\n")
	}
	if req.Direction != "" {
		b.WriteString("\nDirection: " + req.Direction)
	}

	input := b.String()
	if chunks := utils.ChunkText(input, maxSceneCtxRunes); len(chunks) > 0 {
		input = chunks[0]
	}

	budget := utils.NumTokens(input) * 2
	if budget < 1024 {
		budget = 1024
	}
	params := &openai.ChatCompletionNewParams{
		MaxCompletionTokens: openai.Int(int64(budget)),
		Temperature:         openai.Float(0.8),
	}
	out, err := s.Text.Infer(ctx, params, scenePromptSystem, input)
	if err != nil {
		log.Error("scene generation failed", "beat", req.BeatID, "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "scene generation failed: "+err.Error())
	}
	out = strings.TrimSpace(utils.StripReasoning(out))
	if out == "" {
		return echo.NewHTTPError(http.StatusBadGateway, "empty scene result")
	}

	if req.SceneID != "" {
		scene, err := s.Store.GetScene(ctx, req.SceneID)
		if err != nil {
			return err
		}
		scene.Content = out
		if err := s.Store.UpdateScene(ctx, &scene); err != nil {
			return err
		}
	}

	return c.JSON(http.StatusOK, generateSceneResp{
		Scene:    out,
		Provider: s.Text.Name(),
		Model:    s.Text.Model(),
		Tokens:   utils.NumTokens(out),
	})
}
