package server

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/gen2brain/webp"
	"github.com/labstack/echo/v4"

	"fable/pkg/schema"
	"fable/pkg/utils"
)

func ensureImageDir() error {
	path := filepath.Join("images", "avatars")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, 0755)
	}
	return nil
}

// saveToWebP re-encodes the generated image as WebP and writes it to the
// avatar cache directory.
func saveToWebP(r io.Reader, filename string) ([]byte, error) {
	if err := ensureImageDir(); err != nil {
		return nil, fmt.Errorf("failed to create image dir: %w", err)
	}

	imgBytes, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	buf := new(bytes.Buffer)
	if err := webp.Encode(buf, img, webp.Options{Lossless: false, Quality: 100}); err != nil {
		return nil, fmt.Errorf("failed to encode webp: %w", err)
	}

	fullPath := filepath.Join("images", "avatars", filename)
	if err := os.WriteFile(fullPath, buf.Bytes(), 0644); err != nil {
		return nil, fmt.Errorf("failed to write file %s: %w", fullPath, err)
	}
	return buf.Bytes(), nil
}

type avatarJob struct {
	CharacterID string
	Style       string
	Prompt      string
	Force       bool
}

type avatarReq struct {
	Style  string `json:"style,omitempty"`
	Prompt string `json:"prompt,omitempty"`
	Force  bool   `json:"force,omitempty"`
}

// POST /api/characters/:id/avatar
func (s *Server) handlePostAvatar(c echo.Context) error {
	var req avatarReq
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if s.Queue == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "image generation not configured")
	}

	ch, err := s.Store.GetCharacter(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	prompt := req.Prompt
	if prompt == "" {
		prompt = BuildFallbackPrompt(ch.Appearance, nil, "")
	}
	if req.Style != "" {
		prompt += ", " + req.Style + " style"
	}

	key := avatarKey(ch.ID, req.Style)
	s.avatarParams.Store(key, avatarJob{
		CharacterID: ch.ID,
		Style:       req.Style,
		Prompt:      prompt,
		Force:       req.Force,
	})

	var data []byte
	if req.Force {
		data, err = s.AvatarFlight.Force(key)
	} else {
		data, err = s.AvatarFlight.Get(key)
	}
	if err != nil {
		log.Error("avatar generation failed", "character", ch.ID, "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "generation failed: "+err.Error())
	}

	c.Response().Header().Set(echo.HeaderContentType, "image/webp")
	c.Response().WriteHeader(http.StatusOK)
	_, err = c.Response().Write(data)
	return err
}

func avatarKey(characterID, style string) string {
	safeID := utils.SanitizeFilename(characterID)
	safeStyle := utils.SanitizeFilename(style)
	if safeStyle == "" {
		safeStyle = "default"
	}
	return fmt.Sprintf("%s-%s.webp", safeID, safeStyle)
}

// generateAndCacheAvatar is the flight cache's work function. The key is
// the cache filename; the full request parameters travel via avatarParams.
func (s *Server) generateAndCacheAvatar(key string) ([]byte, error) {
	val, ok := s.avatarParams.Load(key)
	if !ok {
		return nil, fmt.Errorf("no avatar parameters for %s", key)
	}
	job := val.(avatarJob)

	fullPath := filepath.Join("images", "avatars", key)
	if !job.Force {
		if data, err := os.ReadFile(fullPath); err == nil {
			log.Info("avatar cache hit", "file", key)
			return data, nil
		}
	} else {
		log.Info("force regenerating avatar", "character", job.CharacterID)
	}

	if s.Queue == nil {
		return nil, fmt.Errorf("queue not configured")
	}

	log.Info("generating avatar", "character", job.CharacterID, "style", job.Style)

	imgReq := schema.DefaultImageRequest()
	imgReq.Prompt = job.Prompt

	respCh, errCh, err := s.Queue.Add(imgReq)
	if err != nil {
		return nil, fmt.Errorf("queue add failed: %w", err)
	}

	select {
	case <-s.Ctx.Done():
		return nil, s.Ctx.Err()
	case err := <-errCh:
		return nil, fmt.Errorf("generation failed: %w", err)
	case images := <-respCh:
		if len(images) == 0 {
			return nil, fmt.Errorf("no images generated")
		}
		data, err := saveToWebP(images[0], key)
		if err != nil {
			return nil, fmt.Errorf("failed to save webp: %w", err)
		}

		entry := schema.AvatarTimelineEntry{
			CharacterID: job.CharacterID,
			ImagePath:   fullPath,
			Style:       job.Style,
			Prompt:      job.Prompt,
			Provider:    "leonardo",
		}
		if err := s.Store.AppendAvatar(s.Ctx, &entry); err != nil {
			log.Warn("failed recording avatar timeline entry", "character", job.CharacterID, "error", err)
		}
		return data, nil
	}
}

type avatarBatchReq struct {
	CharacterIDs []string `json:"character_ids"`
	Style        string   `json:"style,omitempty"`
}

// POST /api/avatars/batch streams per-character progress over SSE.
func (s *Server) handlePostAvatarBatch(c echo.Context) error {
	var req avatarBatchReq
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if len(req.CharacterIDs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "character_ids is required")
	}
	if s.Queue == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "image generation not configured")
	}

	ctx := c.Request().Context()
	w := utils.NewSSEWriter(c)
	defer w.Close()

	done := 0
	for i, id := range req.CharacterIDs {
		if ctx.Err() != nil {
			break
		}
		_ = w.Event("progress", map[string]any{
			"characterId": id,
			"index":       i,
			"total":       len(req.CharacterIDs),
		})

		ch, err := s.Store.GetCharacter(ctx, id)
		if err != nil {
			_ = w.Event("error", map[string]string{"characterId": id, "error": err.Error()})
			continue
		}

		prompt := BuildFallbackPrompt(ch.Appearance, nil, "")
		if req.Style != "" {
			prompt += ", " + req.Style + " style"
		}
		key := avatarKey(ch.ID, req.Style)
		s.avatarParams.Store(key, avatarJob{CharacterID: ch.ID, Style: req.Style, Prompt: prompt})

		if _, err := s.AvatarFlight.Get(key); err != nil {
			log.Error("batch avatar generation failed", "character", id, "error", err)
			_ = w.Event("error", map[string]string{"characterId": id, "error": err.Error()})
			continue
		}
		done++
		_ = w.Event("generated", map[string]string{"characterId": id, "file": key})
	}

	_ = w.Event("done", map[string]int{"generated": done, "requested": len(req.CharacterIDs)})
	return nil
}
