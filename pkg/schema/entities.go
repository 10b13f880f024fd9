package schema

import "time"

type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Character struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	Name        string     `json:"name"`
	Role        string     `json:"role,omitempty"`
	Backstory   string     `json:"backstory,omitempty"`
	Appearance  Appearance `json:"appearance"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Appearance holds the physical descriptors used for prompt composition.
type Appearance struct {
	Gender    string `json:"gender,omitempty"`
	Age       string `json:"age,omitempty"`
	SkinColor string `json:"skinColor,omitempty"`
	BodyType  string `json:"bodyType,omitempty"`
	Hair      string `json:"hair,omitempty"`
	Eyes      string `json:"eyes,omitempty"`
	Other     string `json:"other,omitempty"`
}

type Trait struct {
	ID          string    `json:"id"`
	CharacterID string    `json:"character_id"`
	Name        string    `json:"name"`
	Value       string    `json:"value,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Outfit struct {
	ID          string    `json:"id"`
	CharacterID string    `json:"character_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Accessory struct {
	ID          string    `json:"id"`
	CharacterID string    `json:"character_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// OutfitAccessory links an accessory to an outfit. The pair is unique;
// linking twice is a conflict.
type OutfitAccessory struct {
	OutfitID    string    `json:"outfit_id"`
	AccessoryID string    `json:"accessory_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// AvatarTimelineEntry is one row of the append-only avatar history,
// ordered by Seq.
type AvatarTimelineEntry struct {
	ID          string    `json:"id"`
	CharacterID string    `json:"character_id"`
	Seq         int       `json:"seq"`
	ImagePath   string    `json:"image_path"`
	Style       string    `json:"style,omitempty"`
	Prompt      string    `json:"prompt,omitempty"`
	Provider    string    `json:"provider,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Voice struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	Name        string    `json:"name"`
	ProviderID  string    `json:"provider_id,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Asset struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Kind      string    `json:"kind"`
	URL       string    `json:"url"`
	Meta      string    `json:"meta,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Scene struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content,omitempty"`
	BeatID    string    `json:"beat_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SceneChoice struct {
	ID        string    `json:"id"`
	SceneID   string    `json:"scene_id"`
	Label     string    `json:"label"`
	NextScene string    `json:"next_scene_id,omitempty"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"created_at"`
}

// SceneRevision records one LLM-assisted edit of scene prose.
type SceneRevision struct {
	ID        string    `json:"id"`
	SceneID   string    `json:"scene_id"`
	Prompt    string    `json:"prompt"`
	Original  string    `json:"original"`
	Result    string    `json:"result"`
	CreatedAt time.Time `json:"created_at"`
}

type Faction struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Name      string    `json:"name"`
	Motto     string    `json:"motto,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type FactionMember struct {
	ID          string    `json:"id"`
	FactionID   string    `json:"faction_id"`
	CharacterID string    `json:"character_id"`
	Rank        string    `json:"rank,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type FactionRelationship struct {
	ID        string    `json:"id"`
	FactionID string    `json:"faction_id"`
	OtherID   string    `json:"other_faction_id"`
	Kind      string    `json:"kind"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type FactionLore struct {
	ID        string    `json:"id"`
	FactionID string    `json:"faction_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type FactionEvent struct {
	ID        string    `json:"id"`
	FactionID string    `json:"faction_id"`
	Title     string    `json:"title"`
	Occurred  string    `json:"occurred,omitempty"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// FactionSummary aggregates a faction with all of its sub-resources.
// Sub-query failures are non-fatal; missing sections are empty.
type FactionSummary struct {
	Faction       Faction               `json:"faction"`
	Members       []FactionMember       `json:"members"`
	Relationships []FactionRelationship `json:"relationships"`
	Lore          []FactionLore         `json:"lore"`
	Events        []FactionEvent        `json:"events"`
}

// Beat is a narrative plot point. Beats live in the local SQLite database
// rather than Postgres.
type Beat struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Act       int       `json:"act"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary,omitempty"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

type BeatDependency struct {
	BeatID    string `json:"beat_id"`
	DependsOn string `json:"depends_on"`
}

// PacingReport describes beat distribution per act.
type PacingReport struct {
	ProjectID string         `json:"project_id"`
	PerAct    map[int]int    `json:"per_act"`
	Total     int            `json:"total"`
	Warnings  []string       `json:"warnings,omitempty"`
}
