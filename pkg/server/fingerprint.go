package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/openai/openai-go/v3"

	"fable/pkg/inference"
	"fable/pkg/schema"
	"fable/pkg/utils"
)

const maxImageBytes = 20 << 20

type fingerprintReq struct {
	ImageURL string `json:"imageUrl"`
}

type fingerprintResp struct {
	Fingerprint schema.Fingerprint `json:"fingerprint"`
	Provider    string             `json:"provider"`
	Model       string             `json:"model"`
}

// POST /api/analyze/fingerprint
func (s *Server) handleFingerprint(c echo.Context) error {
	var req fingerprintReq
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if err := required("imageUrl", req.ImageURL); err != nil {
		return err
	}
	if s.Vision == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "no vision provider configured")
	}

	ctx := c.Request().Context()
	img, err := fetchImage(ctx, req.ImageURL)
	if err != nil {
		log.Error("fingerprint: image fetch failed", "url", req.ImageURL, "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "failed fetching image: "+err.Error())
	}

	out, err := s.Vision.AnalyzeImages(ctx, fingerprintPrompt, []inference.Image{img}, schema.FingerprintSchema)
	if err != nil {
		log.Error("fingerprint: vision analysis failed", "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "vision analysis failed: "+err.Error())
	}

	out = utils.ExtractJSON(utils.CleanJSON(utils.StripReasoning(out)))
	var fp schema.Fingerprint
	if err := json.Unmarshal([]byte(out), &fp); err != nil {
		repaired := s.repairJSON(ctx, out, schema.FingerprintResponseFormat())
		if repaired == "" || json.Unmarshal([]byte(repaired), &fp) != nil {
			log.Error("fingerprint: parse failed", "error", err, "output", utils.LimitStr(out, 200))
			return echo.NewHTTPError(http.StatusBadGateway, "failed parsing fingerprint response")
		}
	}

	return c.JSON(http.StatusOK, fingerprintResp{
		Fingerprint: schema.ValidateFingerprint(fp),
		Provider:    s.Vision.Name(),
		Model:       s.Vision.Model(),
	})
}

// repairJSON asks the text provider to rewrite malformed model output into
// the given response shape. One attempt; empty string means no repair.
func (s *Server) repairJSON(ctx context.Context, raw string, format openai.ChatCompletionNewParamsResponseFormatUnion) string {
	if s.Text == nil || raw == "" {
		return ""
	}
	params := &openai.ChatCompletionNewParams{
		ResponseFormat:      format,
		MaxCompletionTokens: openai.Int(1024),
		Temperature:         openai.Float(0),
	}
	out, err := s.Text.Infer(ctx, params, fixJSONPrompt, raw)
	if err != nil {
		log.Warn("json repair failed", "provider", s.Text.Name(), "error", err)
		return ""
	}
	return utils.ExtractJSON(utils.CleanJSON(utils.StripReasoning(out)))
}

func fetchImage(ctx context.Context, url string) (inference.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return inference.Image{}, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return inference.Image{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return inference.Image{}, fmt.Errorf("status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return inference.Image{}, err
	}
	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = http.DetectContentType(data)
	}
	return inference.Image{Data: data, MIME: mime}, nil
}
