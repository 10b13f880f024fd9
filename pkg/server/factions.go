package server

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"fable/pkg/schema"
)

func (s *Server) handleCreateFaction(c echo.Context) error {
	var f schema.Faction
	if err := bindJSON(c, &f); err != nil {
		return err
	}
	if err := required("name", f.Name); err != nil {
		return err
	}
	if err := required("project_id", f.ProjectID); err != nil {
		return err
	}
	if err := s.Store.CreateFaction(c.Request().Context(), &f); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, f)
}

func (s *Server) handleListFactions(c echo.Context) error {
	out, err := s.Store.ListFactions(c.Request().Context(), c.QueryParam("project_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetFaction(c echo.Context) error {
	f, err := s.Store.GetFaction(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, f)
}

func (s *Server) handleUpdateFaction(c echo.Context) error {
	var f schema.Faction
	if err := bindJSON(c, &f); err != nil {
		return err
	}
	f.ID = c.Param("id")
	if err := required("name", f.Name); err != nil {
		return err
	}
	if err := s.Store.UpdateFaction(c.Request().Context(), &f); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, f)
}

func (s *Server) handleDeleteFaction(c echo.Context) error {
	if err := s.Store.DeleteFaction(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// handleFactionSummary fans the sub-resource queries out concurrently.
// A failing sub-query is logged and its section left empty; only a
// missing faction fails the request.
func (s *Server) handleFactionSummary(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	faction, err := s.Store.GetFaction(ctx, id)
	if err != nil {
		return err
	}

	summary := schema.FactionSummary{
		Faction:       faction,
		Members:       []schema.FactionMember{},
		Relationships: []schema.FactionRelationship{},
		Lore:          []schema.FactionLore{},
		Events:        []schema.FactionEvent{},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := s.Store.ListFactionMembers(gctx, id)
		if err != nil {
			log.Warn("faction summary: members query failed", "faction", id, "error", err)
			return nil
		}
		summary.Members = out
		return nil
	})
	g.Go(func() error {
		out, err := s.Store.ListFactionRelationships(gctx, id)
		if err != nil {
			log.Warn("faction summary: relationships query failed", "faction", id, "error", err)
			return nil
		}
		summary.Relationships = out
		return nil
	})
	g.Go(func() error {
		out, err := s.Store.ListFactionLore(gctx, id)
		if err != nil {
			log.Warn("faction summary: lore query failed", "faction", id, "error", err)
			return nil
		}
		summary.Lore = out
		return nil
	})
	g.Go(func() error {
		out, err := s.Store.ListFactionEvents(gctx, id)
		if err != nil {
			log.Warn("faction summary: events query failed", "faction", id, "error", err)
			return nil
		}
		summary.Events = out
		return nil
	})
	_ = g.Wait()

	return c.JSON(http.StatusOK, summary)
}

// --- members ---

func (s *Server) handleAddFactionMember(c echo.Context) error {
	var m schema.FactionMember
	if err := bindJSON(c, &m); err != nil {
		return err
	}
	m.FactionID = c.Param("id")
	if err := required("character_id", m.CharacterID); err != nil {
		return err
	}
	if err := s.Store.AddFactionMember(c.Request().Context(), &m); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, m)
}

func (s *Server) handleListFactionMembers(c echo.Context) error {
	out, err := s.Store.ListFactionMembers(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleRemoveFactionMember(c echo.Context) error {
	if err := s.Store.RemoveFactionMember(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// --- relationships ---

func (s *Server) handleAddFactionRelationship(c echo.Context) error {
	var r schema.FactionRelationship
	if err := bindJSON(c, &r); err != nil {
		return err
	}
	r.FactionID = c.Param("id")
	if err := required("other_faction_id", r.OtherID); err != nil {
		return err
	}
	if err := required("kind", r.Kind); err != nil {
		return err
	}
	if err := s.Store.AddFactionRelationship(c.Request().Context(), &r); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, r)
}

func (s *Server) handleListFactionRelationships(c echo.Context) error {
	out, err := s.Store.ListFactionRelationships(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleRemoveFactionRelationship(c echo.Context) error {
	if err := s.Store.RemoveFactionRelationship(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// --- lore ---

func (s *Server) handleAddFactionLore(c echo.Context) error {
	var l schema.FactionLore
	if err := bindJSON(c, &l); err != nil {
		return err
	}
	l.FactionID = c.Param("id")
	if err := required("title", l.Title); err != nil {
		return err
	}
	if err := required("body", l.Body); err != nil {
		return err
	}
	if err := s.Store.AddFactionLore(c.Request().Context(), &l); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, l)
}

func (s *Server) handleListFactionLore(c echo.Context) error {
	out, err := s.Store.ListFactionLore(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// --- events ---

func (s *Server) handleAddFactionEvent(c echo.Context) error {
	var e schema.FactionEvent
	if err := bindJSON(c, &e); err != nil {
		return err
	}
	e.FactionID = c.Param("id")
	if err := required("title", e.Title); err != nil {
		return err
	}
	if err := s.Store.AddFactionEvent(c.Request().Context(), &e); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, e)
}

func (s *Server) handleListFactionEvents(c echo.Context) error {
	out, err := s.Store.ListFactionEvents(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}
