package server

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"fable/pkg/audio/elevenlabs"
	"fable/pkg/flight"
	"fable/pkg/inference"
	"fable/pkg/queue"
	"fable/pkg/store"
	"fable/pkg/tasks"
)

type Server struct {
	Echo   *echo.Echo
	Ctx    context.Context
	Text   inference.Inferencer
	Vision inference.Visioner
	Store  store.Store
	Beats  store.BeatStore
	Tasks  *tasks.Registry
	Queue  queue.Queue
	Audio  *elevenlabs.Client

	AvatarFlight *flight.Cache[string, []byte]
	avatarParams sync.Map
}

func NewServer(ctx context.Context, st store.Store, beats store.BeatStore) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		Echo:  e,
		Ctx:   ctx,
		Store: st,
		Beats: beats,
		Tasks: tasks.NewRegistry(),
	}
	s.AvatarFlight = flight.NewCache(s.generateAndCacheAvatar)

	e.HTTPErrorHandler = s.errorHandler
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.Echo.GET("/", s.handleGetRoot)

	api := s.Echo.Group("/api")

	api.GET("/providers", s.handleGetProviders)

	api.POST("/projects", s.handleCreateProject)
	api.GET("/projects", s.handleListProjects)
	api.GET("/projects/:id", s.handleGetProject)
	api.PUT("/projects/:id", s.handleUpdateProject)
	api.DELETE("/projects/:id", s.handleDeleteProject)

	api.POST("/characters", s.handleCreateCharacter)
	api.GET("/characters", s.handleListCharacters)
	api.GET("/characters/:id", s.handleGetCharacter)
	api.PUT("/characters/:id", s.handleUpdateCharacter)
	api.DELETE("/characters/:id", s.handleDeleteCharacter)

	api.POST("/characters/:id/traits", s.handleCreateTrait)
	api.GET("/characters/:id/traits", s.handleListTraits)
	api.GET("/traits/:id", s.handleGetTrait)
	api.DELETE("/traits/:id", s.handleDeleteTrait)

	api.POST("/characters/:id/outfits", s.handleCreateOutfit)
	api.GET("/characters/:id/outfits", s.handleListOutfits)
	api.GET("/outfits/:id", s.handleGetOutfit)
	api.DELETE("/outfits/:id", s.handleDeleteOutfit)

	api.POST("/characters/:id/accessories", s.handleCreateAccessory)
	api.GET("/characters/:id/accessories", s.handleListAccessories)
	api.GET("/accessories/:id", s.handleGetAccessory)
	api.DELETE("/accessories/:id", s.handleDeleteAccessory)

	api.POST("/outfits/:id/accessories", s.handleLinkAccessory)
	api.GET("/outfits/:id/accessories", s.handleListOutfitAccessories)
	api.DELETE("/outfits/:id/accessories/:accessoryId", s.handleUnlinkAccessory)

	api.GET("/characters/:id/avatar-timeline", s.handleListAvatarTimeline)
	api.POST("/characters/:id/avatar", s.handlePostAvatar)
	api.POST("/avatars/batch", s.handlePostAvatarBatch)

	api.POST("/voices", s.handleCreateVoice)
	api.GET("/voices", s.handleListVoices)
	api.GET("/voices/:id", s.handleGetVoice)
	api.DELETE("/voices/:id", s.handleDeleteVoice)

	api.POST("/assets", s.handleCreateAsset)
	api.GET("/assets", s.handleListAssets)
	api.GET("/assets/:id", s.handleGetAsset)
	api.DELETE("/assets/:id", s.handleDeleteAsset)

	api.POST("/scenes", s.handleCreateScene)
	api.GET("/scenes", s.handleListScenes)
	api.GET("/scenes/:id", s.handleGetScene)
	api.PUT("/scenes/:id", s.handleUpdateScene)
	api.DELETE("/scenes/:id", s.handleDeleteScene)
	api.POST("/scenes/:id/revise", s.handlePostRevise)
	api.GET("/scenes/:id/revisions", s.handleListRevisions)

	api.POST("/scenes/:id/choices", s.handleCreateChoice)
	api.GET("/scenes/:id/choices", s.handleListChoices)
	api.PATCH("/scenes/:id/choices", s.handleReorderChoices)
	api.PATCH("/scene-choices", s.handleReorderChoices)
	api.DELETE("/scene-choices/:id", s.handleDeleteChoice)

	api.POST("/factions", s.handleCreateFaction)
	api.GET("/factions", s.handleListFactions)
	api.GET("/factions/:id", s.handleGetFaction)
	api.PUT("/factions/:id", s.handleUpdateFaction)
	api.DELETE("/factions/:id", s.handleDeleteFaction)
	api.GET("/factions/:id/summary", s.handleFactionSummary)

	api.POST("/factions/:id/members", s.handleAddFactionMember)
	api.GET("/factions/:id/members", s.handleListFactionMembers)
	api.DELETE("/faction-members/:id", s.handleRemoveFactionMember)

	api.POST("/factions/:id/relationships", s.handleAddFactionRelationship)
	api.GET("/factions/:id/relationships", s.handleListFactionRelationships)
	api.DELETE("/faction-relationships/:id", s.handleRemoveFactionRelationship)

	api.POST("/factions/:id/lore", s.handleAddFactionLore)
	api.GET("/factions/:id/lore", s.handleListFactionLore)

	api.POST("/factions/:id/events", s.handleAddFactionEvent)
	api.GET("/factions/:id/events", s.handleListFactionEvents)

	api.POST("/beats", s.handleCreateBeat)
	api.GET("/beats", s.handleListBeats)
	api.GET("/beats/:id", s.handleGetBeat)
	api.PUT("/beats/:id", s.handleUpdateBeat)
	api.DELETE("/beats/:id", s.handleDeleteBeat)
	api.POST("/beats/:id/dependencies", s.handleAddBeatDependency)
	api.GET("/beats/:id/dependencies", s.handleListBeatDependencies)
	api.DELETE("/beats/:id/dependencies/:dependsOn", s.handleRemoveBeatDependency)
	api.GET("/beats/pacing", s.handlePacing)

	api.POST("/generate/character-prompt", s.handleCharacterPrompt)
	api.POST("/generate/scene", s.handleGenerateScene)
	api.POST("/analyze/fingerprint", s.handleFingerprint)
	api.POST("/poster/select", s.handlePosterSelect)
	api.POST("/audio/isolate", s.handleAudioIsolate)

	api.POST("/cli/tasks", s.handlePostTask)
	api.GET("/cli/tasks", s.handleListTasks)
}

// errorHandler maps storage sentinels and timeouts that escape handlers
// onto the HTTP taxonomy, then defers to echo's default rendering.
func (s *Server) errorHandler(err error, c echo.Context) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		err = echo.NewHTTPError(http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrConflict):
		err = echo.NewHTTPError(http.StatusConflict, "conflict")
	case errors.Is(err, context.DeadlineExceeded):
		err = echo.NewHTTPError(http.StatusGatewayTimeout, "upstream timed out")
	}
	s.Echo.DefaultHTTPErrorHandler(err, c)
}

func (s *Server) Start(addr string) error {
	log.Info("server listening", "addr", addr)
	return s.Echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Info("shutting down server")
	if s.Queue != nil {
		s.Queue.Stop()
	}
	return s.Echo.Shutdown(ctx)
}

func (s *Server) handleGetRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"service": "Fable Story API",
		"status":  "ok",
	})
}
