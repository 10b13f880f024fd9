// Package store defines the persistence boundary. The entity graph lives in
// Postgres; beats and their dependencies live in a local SQLite file. Both
// backends implement the interfaces here, and tests use the memory store.
package store

import (
	"context"
	"errors"

	"fable/pkg/schema"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// Store is the Postgres-backed entity graph.
type Store interface {
	CreateProject(ctx context.Context, p *schema.Project) error
	GetProject(ctx context.Context, id string) (schema.Project, error)
	ListProjects(ctx context.Context) ([]schema.Project, error)
	UpdateProject(ctx context.Context, p *schema.Project) error
	DeleteProject(ctx context.Context, id string) error

	CreateCharacter(ctx context.Context, c *schema.Character) error
	GetCharacter(ctx context.Context, id string) (schema.Character, error)
	ListCharacters(ctx context.Context, projectID string) ([]schema.Character, error)
	UpdateCharacter(ctx context.Context, c *schema.Character) error
	DeleteCharacter(ctx context.Context, id string) error

	CreateTrait(ctx context.Context, t *schema.Trait) error
	GetTrait(ctx context.Context, id string) (schema.Trait, error)
	ListTraits(ctx context.Context, characterID string) ([]schema.Trait, error)
	DeleteTrait(ctx context.Context, id string) error

	CreateOutfit(ctx context.Context, o *schema.Outfit) error
	GetOutfit(ctx context.Context, id string) (schema.Outfit, error)
	ListOutfits(ctx context.Context, characterID string) ([]schema.Outfit, error)
	DeleteOutfit(ctx context.Context, id string) error

	CreateAccessory(ctx context.Context, a *schema.Accessory) error
	GetAccessory(ctx context.Context, id string) (schema.Accessory, error)
	ListAccessories(ctx context.Context, characterID string) ([]schema.Accessory, error)
	DeleteAccessory(ctx context.Context, id string) error

	// LinkAccessory returns ErrConflict if the pair already exists.
	LinkAccessory(ctx context.Context, outfitID, accessoryID string) error
	UnlinkAccessory(ctx context.Context, outfitID, accessoryID string) error
	ListOutfitAccessories(ctx context.Context, outfitID string) ([]schema.OutfitAccessory, error)

	// AppendAvatar assigns the next sequence number for the character.
	AppendAvatar(ctx context.Context, e *schema.AvatarTimelineEntry) error
	ListAvatarTimeline(ctx context.Context, characterID string) ([]schema.AvatarTimelineEntry, error)

	CreateVoice(ctx context.Context, v *schema.Voice) error
	GetVoice(ctx context.Context, id string) (schema.Voice, error)
	ListVoices(ctx context.Context, projectID string) ([]schema.Voice, error)
	DeleteVoice(ctx context.Context, id string) error

	CreateAsset(ctx context.Context, a *schema.Asset) error
	GetAsset(ctx context.Context, id string) (schema.Asset, error)
	ListAssets(ctx context.Context, projectID string) ([]schema.Asset, error)
	DeleteAsset(ctx context.Context, id string) error

	CreateScene(ctx context.Context, s *schema.Scene) error
	GetScene(ctx context.Context, id string) (schema.Scene, error)
	ListScenes(ctx context.Context, projectID string) ([]schema.Scene, error)
	UpdateScene(ctx context.Context, s *schema.Scene) error
	DeleteScene(ctx context.Context, id string) error

	CreateChoice(ctx context.Context, c *schema.SceneChoice) error
	ListChoices(ctx context.Context, sceneID string) ([]schema.SceneChoice, error)
	DeleteChoice(ctx context.Context, id string) error
	// ReorderChoices rewrites order to 0..n-1 following choiceIDs.
	ReorderChoices(ctx context.Context, sceneID string, choiceIDs []string) error

	AddRevision(ctx context.Context, r *schema.SceneRevision) error
	ListRevisions(ctx context.Context, sceneID string) ([]schema.SceneRevision, error)

	CreateFaction(ctx context.Context, f *schema.Faction) error
	GetFaction(ctx context.Context, id string) (schema.Faction, error)
	ListFactions(ctx context.Context, projectID string) ([]schema.Faction, error)
	UpdateFaction(ctx context.Context, f *schema.Faction) error
	DeleteFaction(ctx context.Context, id string) error

	AddFactionMember(ctx context.Context, m *schema.FactionMember) error
	ListFactionMembers(ctx context.Context, factionID string) ([]schema.FactionMember, error)
	RemoveFactionMember(ctx context.Context, id string) error

	AddFactionRelationship(ctx context.Context, r *schema.FactionRelationship) error
	ListFactionRelationships(ctx context.Context, factionID string) ([]schema.FactionRelationship, error)
	RemoveFactionRelationship(ctx context.Context, id string) error

	AddFactionLore(ctx context.Context, l *schema.FactionLore) error
	ListFactionLore(ctx context.Context, factionID string) ([]schema.FactionLore, error)

	AddFactionEvent(ctx context.Context, e *schema.FactionEvent) error
	ListFactionEvents(ctx context.Context, factionID string) ([]schema.FactionEvent, error)
}

// BeatStore is the SQLite-backed beat subset.
type BeatStore interface {
	CreateBeat(ctx context.Context, b *schema.Beat) error
	GetBeat(ctx context.Context, id string) (schema.Beat, error)
	ListBeats(ctx context.Context, projectID string) ([]schema.Beat, error)
	UpdateBeat(ctx context.Context, b *schema.Beat) error
	DeleteBeat(ctx context.Context, id string) error

	// AddBeatDependency returns ErrConflict on a duplicate edge and
	// ErrNotFound if either beat is missing.
	AddBeatDependency(ctx context.Context, beatID, dependsOn string) error
	ListBeatDependencies(ctx context.Context, beatID string) ([]schema.BeatDependency, error)
	RemoveBeatDependency(ctx context.Context, beatID, dependsOn string) error

	Pacing(ctx context.Context, projectID string) (schema.PacingReport, error)
}
