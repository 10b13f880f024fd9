package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"fable/pkg/schema"
)

func (s *Server) handleCreateBeat(c echo.Context) error {
	var b schema.Beat
	if err := bindJSON(c, &b); err != nil {
		return err
	}
	if err := required("title", b.Title); err != nil {
		return err
	}
	if err := required("project_id", b.ProjectID); err != nil {
		return err
	}
	if b.Act < 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "act must be at least 1")
	}
	if err := s.Beats.CreateBeat(c.Request().Context(), &b); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, b)
}

func (s *Server) handleListBeats(c echo.Context) error {
	out, err := s.Beats.ListBeats(c.Request().Context(), c.QueryParam("project_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetBeat(c echo.Context) error {
	b, err := s.Beats.GetBeat(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, b)
}

func (s *Server) handleUpdateBeat(c echo.Context) error {
	var b schema.Beat
	if err := bindJSON(c, &b); err != nil {
		return err
	}
	b.ID = c.Param("id")
	if err := required("title", b.Title); err != nil {
		return err
	}
	if err := s.Beats.UpdateBeat(c.Request().Context(), &b); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, b)
}

func (s *Server) handleDeleteBeat(c echo.Context) error {
	if err := s.Beats.DeleteBeat(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type beatDependencyReq struct {
	DependsOn string `json:"depends_on"`
}

func (s *Server) handleAddBeatDependency(c echo.Context) error {
	var req beatDependencyReq
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if err := required("depends_on", req.DependsOn); err != nil {
		return err
	}
	beatID := c.Param("id")
	if beatID == req.DependsOn {
		return echo.NewHTTPError(http.StatusBadRequest, "a beat cannot depend on itself")
	}
	if err := s.Beats.AddBeatDependency(c.Request().Context(), beatID, req.DependsOn); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, schema.BeatDependency{BeatID: beatID, DependsOn: req.DependsOn})
}

func (s *Server) handleListBeatDependencies(c echo.Context) error {
	out, err := s.Beats.ListBeatDependencies(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleRemoveBeatDependency(c echo.Context) error {
	if err := s.Beats.RemoveBeatDependency(c.Request().Context(), c.Param("id"), c.Param("dependsOn")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handlePacing(c echo.Context) error {
	projectID := c.QueryParam("project_id")
	if err := required("project_id", projectID); err != nil {
		return err
	}
	report, err := s.Beats.Pacing(c.Request().Context(), projectID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}
