package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type providerStatus struct {
	Available bool   `json:"available"`
	Name      string `json:"name,omitempty"`
	Model     string `json:"model,omitempty"`
}

// GET /api/providers reports availability. Always 200; an unconfigured
// provider is reported, not an error.
func (s *Server) handleGetProviders(c echo.Context) error {
	text := providerStatus{}
	if s.Text != nil {
		text = providerStatus{Available: true, Name: s.Text.Name(), Model: s.Text.Model()}
	}
	vision := providerStatus{}
	if s.Vision != nil {
		vision = providerStatus{Available: true, Name: s.Vision.Name(), Model: s.Vision.Model()}
	}

	return c.JSON(http.StatusOK, map[string]providerStatus{
		"text":   text,
		"vision": vision,
		"image":  {Available: s.Queue != nil, Name: "leonardo"},
		"audio":  {Available: s.Audio.Available(), Name: "elevenlabs"},
	})
}
