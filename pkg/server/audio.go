package server

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
)

// POST /api/audio/isolate accepts a multipart "audio" file and returns
// the isolated speech track.
func (s *Server) handleAudioIsolate(c echo.Context) error {
	if !s.Audio.Available() {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "audio isolation not configured")
	}

	fh, err := c.FormFile("audio")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "audio file is required")
	}
	src, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed reading audio file")
	}
	defer src.Close()

	out, err := s.Audio.Isolate(c.Request().Context(), fh.Filename, src)
	if err != nil {
		log.Error("audio isolation failed", "file", fh.Filename, "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "audio isolation failed: "+err.Error())
	}

	return c.Blob(http.StatusOK, "audio/mpeg", out)
}
