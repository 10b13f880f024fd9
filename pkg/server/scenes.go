package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"fable/pkg/schema"
)

func (s *Server) handleCreateScene(c echo.Context) error {
	var sc schema.Scene
	if err := bindJSON(c, &sc); err != nil {
		return err
	}
	if err := required("title", sc.Title); err != nil {
		return err
	}
	if err := required("project_id", sc.ProjectID); err != nil {
		return err
	}
	if err := s.Store.CreateScene(c.Request().Context(), &sc); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, sc)
}

func (s *Server) handleListScenes(c echo.Context) error {
	out, err := s.Store.ListScenes(c.Request().Context(), c.QueryParam("project_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetScene(c echo.Context) error {
	sc, err := s.Store.GetScene(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sc)
}

func (s *Server) handleUpdateScene(c echo.Context) error {
	var sc schema.Scene
	if err := bindJSON(c, &sc); err != nil {
		return err
	}
	sc.ID = c.Param("id")
	if err := required("title", sc.Title); err != nil {
		return err
	}
	if err := s.Store.UpdateScene(c.Request().Context(), &sc); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sc)
}

func (s *Server) handleDeleteScene(c echo.Context) error {
	if err := s.Store.DeleteScene(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// --- choices ---

func (s *Server) handleCreateChoice(c echo.Context) error {
	var ch schema.SceneChoice
	if err := bindJSON(c, &ch); err != nil {
		return err
	}
	ch.SceneID = c.Param("id")
	if err := required("label", ch.Label); err != nil {
		return err
	}
	if err := s.Store.CreateChoice(c.Request().Context(), &ch); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, ch)
}

func (s *Server) handleListChoices(c echo.Context) error {
	out, err := s.Store.ListChoices(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

type reorderReq struct {
	SceneID   string   `json:"scene_id"`
	ChoiceIDs []string `json:"choice_ids"`
}

// Registered both as PATCH /api/scene-choices (scene_id in the body) and
// PATCH /api/scenes/:id/choices. Rewrites choice order to follow the given
// id sequence; persisted order values become 0..n-1.
func (s *Server) handleReorderChoices(c echo.Context) error {
	var req reorderReq
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if id := c.Param("id"); id != "" {
		req.SceneID = id
	}
	if err := required("scene_id", req.SceneID); err != nil {
		return err
	}
	if len(req.ChoiceIDs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "choice_ids is required")
	}
	ctx := c.Request().Context()
	if err := s.Store.ReorderChoices(ctx, req.SceneID, req.ChoiceIDs); err != nil {
		return err
	}
	out, err := s.Store.ListChoices(ctx, req.SceneID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleDeleteChoice(c echo.Context) error {
	if err := s.Store.DeleteChoice(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleListRevisions(c echo.Context) error {
	out, err := s.Store.ListRevisions(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}
