package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"fable/pkg/schema"
)

func bindJSON(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	return nil
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, field+" is required")
	}
	return nil
}

// --- projects ---

func (s *Server) handleCreateProject(c echo.Context) error {
	var p schema.Project
	if err := bindJSON(c, &p); err != nil {
		return err
	}
	if err := required("name", p.Name); err != nil {
		return err
	}
	if err := s.Store.CreateProject(c.Request().Context(), &p); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

func (s *Server) handleListProjects(c echo.Context) error {
	out, err := s.Store.ListProjects(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetProject(c echo.Context) error {
	p, err := s.Store.GetProject(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) handleUpdateProject(c echo.Context) error {
	var p schema.Project
	if err := bindJSON(c, &p); err != nil {
		return err
	}
	p.ID = c.Param("id")
	if err := required("name", p.Name); err != nil {
		return err
	}
	if err := s.Store.UpdateProject(c.Request().Context(), &p); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) handleDeleteProject(c echo.Context) error {
	if err := s.Store.DeleteProject(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// --- characters ---

func (s *Server) handleCreateCharacter(c echo.Context) error {
	var ch schema.Character
	if err := bindJSON(c, &ch); err != nil {
		return err
	}
	if err := required("name", ch.Name); err != nil {
		return err
	}
	if err := required("project_id", ch.ProjectID); err != nil {
		return err
	}
	if err := s.Store.CreateCharacter(c.Request().Context(), &ch); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, ch)
}

func (s *Server) handleListCharacters(c echo.Context) error {
	out, err := s.Store.ListCharacters(c.Request().Context(), c.QueryParam("project_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetCharacter(c echo.Context) error {
	ch, err := s.Store.GetCharacter(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ch)
}

func (s *Server) handleUpdateCharacter(c echo.Context) error {
	var ch schema.Character
	if err := bindJSON(c, &ch); err != nil {
		return err
	}
	ch.ID = c.Param("id")
	if err := required("name", ch.Name); err != nil {
		return err
	}
	if err := s.Store.UpdateCharacter(c.Request().Context(), &ch); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ch)
}

func (s *Server) handleDeleteCharacter(c echo.Context) error {
	if err := s.Store.DeleteCharacter(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// --- traits ---

func (s *Server) handleCreateTrait(c echo.Context) error {
	var t schema.Trait
	if err := bindJSON(c, &t); err != nil {
		return err
	}
	t.CharacterID = c.Param("id")
	if err := required("name", t.Name); err != nil {
		return err
	}
	if err := s.Store.CreateTrait(c.Request().Context(), &t); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, t)
}

func (s *Server) handleListTraits(c echo.Context) error {
	out, err := s.Store.ListTraits(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetTrait(c echo.Context) error {
	out, err := s.Store.GetTrait(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleDeleteTrait(c echo.Context) error {
	if err := s.Store.DeleteTrait(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// --- outfits ---

func (s *Server) handleCreateOutfit(c echo.Context) error {
	var o schema.Outfit
	if err := bindJSON(c, &o); err != nil {
		return err
	}
	o.CharacterID = c.Param("id")
	if err := required("name", o.Name); err != nil {
		return err
	}
	if err := s.Store.CreateOutfit(c.Request().Context(), &o); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, o)
}

func (s *Server) handleListOutfits(c echo.Context) error {
	out, err := s.Store.ListOutfits(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetOutfit(c echo.Context) error {
	out, err := s.Store.GetOutfit(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleDeleteOutfit(c echo.Context) error {
	if err := s.Store.DeleteOutfit(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// --- accessories ---

func (s *Server) handleCreateAccessory(c echo.Context) error {
	var a schema.Accessory
	if err := bindJSON(c, &a); err != nil {
		return err
	}
	a.CharacterID = c.Param("id")
	if err := required("name", a.Name); err != nil {
		return err
	}
	if err := s.Store.CreateAccessory(c.Request().Context(), &a); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

func (s *Server) handleListAccessories(c echo.Context) error {
	out, err := s.Store.ListAccessories(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetAccessory(c echo.Context) error {
	out, err := s.Store.GetAccessory(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleDeleteAccessory(c echo.Context) error {
	if err := s.Store.DeleteAccessory(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// --- outfit-accessory links ---

type linkAccessoryReq struct {
	AccessoryID string `json:"accessory_id"`
}

func (s *Server) handleLinkAccessory(c echo.Context) error {
	var req linkAccessoryReq
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if err := required("accessory_id", req.AccessoryID); err != nil {
		return err
	}
	if err := s.Store.LinkAccessory(c.Request().Context(), c.Param("id"), req.AccessoryID); err != nil {
		return err
	}
	return c.NoContent(http.StatusCreated)
}

func (s *Server) handleListOutfitAccessories(c echo.Context) error {
	out, err := s.Store.ListOutfitAccessories(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleUnlinkAccessory(c echo.Context) error {
	if err := s.Store.UnlinkAccessory(c.Request().Context(), c.Param("id"), c.Param("accessoryId")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// --- avatar timeline ---

func (s *Server) handleListAvatarTimeline(c echo.Context) error {
	out, err := s.Store.ListAvatarTimeline(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// --- voices ---

func (s *Server) handleCreateVoice(c echo.Context) error {
	var v schema.Voice
	if err := bindJSON(c, &v); err != nil {
		return err
	}
	if err := required("name", v.Name); err != nil {
		return err
	}
	if err := required("project_id", v.ProjectID); err != nil {
		return err
	}
	if err := s.Store.CreateVoice(c.Request().Context(), &v); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, v)
}

func (s *Server) handleListVoices(c echo.Context) error {
	out, err := s.Store.ListVoices(c.Request().Context(), c.QueryParam("project_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetVoice(c echo.Context) error {
	v, err := s.Store.GetVoice(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v)
}

func (s *Server) handleDeleteVoice(c echo.Context) error {
	if err := s.Store.DeleteVoice(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// --- assets ---

func (s *Server) handleCreateAsset(c echo.Context) error {
	var a schema.Asset
	if err := bindJSON(c, &a); err != nil {
		return err
	}
	if err := required("kind", a.Kind); err != nil {
		return err
	}
	if err := required("url", a.URL); err != nil {
		return err
	}
	if err := required("project_id", a.ProjectID); err != nil {
		return err
	}
	if err := s.Store.CreateAsset(c.Request().Context(), &a); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

func (s *Server) handleListAssets(c echo.Context) error {
	out, err := s.Store.ListAssets(c.Request().Context(), c.QueryParam("project_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetAsset(c echo.Context) error {
	a, err := s.Store.GetAsset(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (s *Server) handleDeleteAsset(c echo.Context) error {
	if err := s.Store.DeleteAsset(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
