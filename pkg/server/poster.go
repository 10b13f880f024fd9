package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"fable/pkg/inference"
	"fable/pkg/schema"
	"fable/pkg/utils"
)

const posterTimeout = 120 * time.Second

type posterSelectReq struct {
	ImageURLs []string `json:"imageUrls"`
	Criteria  string   `json:"criteria,omitempty"`
}

type posterSelectResp struct {
	SelectedIndex int    `json:"selectedIndex"`
	Confidence    int    `json:"confidence"`
	Reasoning     string `json:"reasoning,omitempty"`
	Provider      string `json:"provider"`
	Model         string `json:"model"`
}

// POST /api/poster/select
func (s *Server) handlePosterSelect(c echo.Context) error {
	var req posterSelectReq
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if len(req.ImageURLs) < 2 {
		return echo.NewHTTPError(http.StatusBadRequest, "imageUrls requires at least 2 entries")
	}
	if s.Vision == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "no vision provider configured")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), posterTimeout)
	defer cancel()

	images := make([]inference.Image, len(req.ImageURLs))
	g, gctx := errgroup.WithContext(ctx)
	for i, url := range req.ImageURLs {
		g.Go(func() error {
			img, err := fetchImage(gctx, url)
			if err != nil {
				return err
			}
			images[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return echo.NewHTTPError(http.StatusGatewayTimeout, "poster analysis timed out")
		}
		log.Error("poster: image fetch failed", "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "failed fetching images: "+err.Error())
	}

	prompt := posterSelectPrompt
	if req.Criteria != "" {
		prompt += "\n\nCriteria: " + req.Criteria
	}

	out, err := s.Vision.AnalyzeImages(ctx, prompt, images, schema.SelectionSchema)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return echo.NewHTTPError(http.StatusGatewayTimeout, "poster analysis timed out")
		}
		if strings.Contains(err.Error(), "Rate limit") {
			return echo.NewHTTPError(http.StatusTooManyRequests, "provider rate limited")
		}
		log.Error("poster: vision analysis failed", "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "vision analysis failed: "+err.Error())
	}

	if !json.Valid([]byte(utils.ExtractJSON(utils.CleanJSON(utils.StripReasoning(out))))) {
		if repaired := s.repairJSON(ctx, out, schema.SelectionResponseFormat()); repaired != "" {
			out = repaired
		}
	}

	index, confidence, reasoning := ParseSelectionResponse(out, len(req.ImageURLs))
	return c.JSON(http.StatusOK, posterSelectResp{
		SelectedIndex: index,
		Confidence:    confidence,
		Reasoning:     reasoning,
		Provider:      s.Vision.Name(),
		Model:         s.Vision.Model(),
	})
}

// ParseSelectionResponse extracts the selected index and confidence from
// the model's answer. A missing index defaults to 0, missing confidence
// to 70, and the index is clamped to the candidate range. Unparseable
// output degrades to those defaults rather than failing the request.
func ParseSelectionResponse(raw string, posterCount int) (index, confidence int, reasoning string) {
	confidence = 70

	raw = utils.ExtractJSON(utils.CleanJSON(utils.StripReasoning(raw)))
	var sel schema.PosterSelection
	if err := json.Unmarshal([]byte(raw), &sel); err != nil {
		log.Warn("poster: selection parse failed, using defaults", "error", err)
		return 0, confidence, ""
	}

	if sel.SelectedIndex != nil {
		index = *sel.SelectedIndex
	}
	if sel.Confidence != nil {
		confidence = *sel.Confidence
	}
	if index < 0 {
		index = 0
	}
	if posterCount > 0 && index > posterCount-1 {
		index = posterCount - 1
	}
	return index, confidence, sel.Reasoning
}
