package server

import (
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/openai/openai-go/v3"

	"fable/pkg/diff"
	"fable/pkg/schema"
	"fable/pkg/utils"
)

const (
	maxReviseSelectionRunes = 8192 * 4
	maxReviseHistoryEntries = 50
)

type reviseReq struct {
	Prompt    string `json:"prompt"`
	Selection string `json:"selection,omitempty"`
}

type reviseResp struct {
	Result     string                 `json:"result"`
	Diff       diff.StringDiff        `json:"diff"`
	Similarity float64                `json:"similarity"`
	Revision   schema.SceneRevision   `json:"revision"`
	History    []schema.SceneRevision `json:"history"`
}

// POST /api/scenes/:id/revise
func (s *Server) handlePostRevise(c echo.Context) error {
	var req reviseReq
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if err := required("prompt", req.Prompt); err != nil {
		return err
	}
	if s.Text == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "no text provider configured")
	}

	ctx := c.Request().Context()
	scene, err := s.Store.GetScene(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	selection := req.Selection
	wholeScene := selection == ""
	if wholeScene {
		selection = scene.Content
	}
	if strings.TrimSpace(selection) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "selection is required for a scene with no content")
	}
	if runes := []rune(selection); len(runes) > maxReviseSelectionRunes {
		selection = string(runes[:maxReviseSelectionRunes])
	}

	params := &openai.ChatCompletionNewParams{
		MaxCompletionTokens: openai.Int(int64(max(len(selection)*2, 4096))),
		Temperature:         openai.Float(0.25),
		TopP:                openai.Float(1.0),
	}
	system := reviseSystemPrompt + "\n\nInstruction: " + req.Prompt
	result, err := s.Text.Infer(ctx, params, system, selection)
	if err != nil {
		log.Error("scene revision failed", "scene", scene.ID, "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "revision inference failed")
	}
	result = strings.TrimSpace(utils.StripReasoning(result))
	if result == "" {
		return echo.NewHTTPError(http.StatusBadGateway, "empty revision result")
	}

	if wholeScene {
		scene.Content = result
		if err := s.Store.UpdateScene(ctx, &scene); err != nil {
			return err
		}
	}

	rev := schema.SceneRevision{
		SceneID:  scene.ID,
		Prompt:   req.Prompt,
		Original: selection,
		Result:   result,
	}
	if err := s.Store.AddRevision(ctx, &rev); err != nil {
		return err
	}

	history, err := s.Store.ListRevisions(ctx, scene.ID)
	if err != nil {
		return err
	}
	if len(history) > maxReviseHistoryEntries {
		history = history[len(history)-maxReviseHistoryEntries:]
	}

	log.Info("revision complete", "scene", scene.ID, "entries", len(history))

	return c.JSON(http.StatusOK, reviseResp{
		Result:     result,
		Diff:       diff.Words(selection, result),
		Similarity: utils.Similarity(selection, result),
		Revision:   rev,
		History:    history,
	})
}
