// Package memory implements store.Store and store.BeatStore with
// mutex-guarded maps. It backs handler tests and local development
// without a database.
package memory

import (
	"cmp"
	"context"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"fable/pkg/schema"
	"fable/pkg/store"
)

type Store struct {
	mu sync.RWMutex

	projects    map[string]schema.Project
	characters  map[string]schema.Character
	traits      map[string]schema.Trait
	outfits     map[string]schema.Outfit
	accessories map[string]schema.Accessory
	links       map[[2]string]schema.OutfitAccessory
	avatars     map[string][]schema.AvatarTimelineEntry
	voices      map[string]schema.Voice
	assets      map[string]schema.Asset
	scenes      map[string]schema.Scene
	choices     map[string]schema.SceneChoice
	revisions   map[string][]schema.SceneRevision
	factions    map[string]schema.Faction
	members     map[string]schema.FactionMember
	relations   map[string]schema.FactionRelationship
	lore        map[string][]schema.FactionLore
	events      map[string][]schema.FactionEvent

	beats    map[string]schema.Beat
	beatDeps map[[2]string]struct{}

	seq int
}

func New() *Store {
	return &Store{
		projects:    make(map[string]schema.Project),
		characters:  make(map[string]schema.Character),
		traits:      make(map[string]schema.Trait),
		outfits:     make(map[string]schema.Outfit),
		accessories: make(map[string]schema.Accessory),
		links:       make(map[[2]string]schema.OutfitAccessory),
		avatars:     make(map[string][]schema.AvatarTimelineEntry),
		voices:      make(map[string]schema.Voice),
		assets:      make(map[string]schema.Asset),
		scenes:      make(map[string]schema.Scene),
		choices:     make(map[string]schema.SceneChoice),
		revisions:   make(map[string][]schema.SceneRevision),
		factions:    make(map[string]schema.Faction),
		members:     make(map[string]schema.FactionMember),
		relations:   make(map[string]schema.FactionRelationship),
		lore:        make(map[string][]schema.FactionLore),
		events:      make(map[string][]schema.FactionEvent),
		beats:       make(map[string]schema.Beat),
		beatDeps:    make(map[[2]string]struct{}),
	}
}

func (s *Store) newID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

func (s *Store) now() time.Time {
	// Monotonic-ish ordering for same-instant inserts in tests.
	s.seq++
	return time.Now().UTC().Add(time.Duration(s.seq) * time.Microsecond)
}

// --- projects ---

func (s *Store) CreateProject(_ context.Context, p *schema.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.newID(p.ID)
	p.CreatedAt = s.now()
	p.UpdatedAt = p.CreatedAt
	s.projects[p.ID] = *p
	return nil
}

func (s *Store) GetProject(_ context.Context, id string) (schema.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	if !ok {
		return schema.Project{}, store.ErrNotFound
	}
	return p, nil
}

func (s *Store) ListProjects(_ context.Context) ([]schema.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]schema.Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, p)
	}
	sortByCreated(out, func(p schema.Project) time.Time { return p.CreatedAt })
	return out, nil
}

func (s *Store) UpdateProject(_ context.Context, p *schema.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.projects[p.ID]
	if !ok {
		return store.ErrNotFound
	}
	p.CreatedAt = cur.CreatedAt
	p.UpdatedAt = s.now()
	s.projects[p.ID] = *p
	return nil
}

func (s *Store) DeleteProject(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.projects, id)
	return nil
}

// --- characters ---

func (s *Store) CreateCharacter(_ context.Context, c *schema.Character) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.newID(c.ID)
	c.CreatedAt = s.now()
	c.UpdatedAt = c.CreatedAt
	s.characters[c.ID] = *c
	return nil
}

func (s *Store) GetCharacter(_ context.Context, id string) (schema.Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.characters[id]
	if !ok {
		return schema.Character{}, store.ErrNotFound
	}
	return c, nil
}

func (s *Store) ListCharacters(_ context.Context, projectID string) ([]schema.Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []schema.Character
	for _, c := range s.characters {
		if projectID == "" || c.ProjectID == projectID {
			out = append(out, c)
		}
	}
	sortByCreated(out, func(c schema.Character) time.Time { return c.CreatedAt })
	return out, nil
}

func (s *Store) UpdateCharacter(_ context.Context, c *schema.Character) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.characters[c.ID]
	if !ok {
		return store.ErrNotFound
	}
	c.CreatedAt = cur.CreatedAt
	c.UpdatedAt = s.now()
	s.characters[c.ID] = *c
	return nil
}

func (s *Store) DeleteCharacter(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.characters[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.characters, id)
	return nil
}

// --- traits ---

func (s *Store) CreateTrait(_ context.Context, t *schema.Trait) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.newID(t.ID)
	t.CreatedAt = s.now()
	s.traits[t.ID] = *t
	return nil
}

func (s *Store) GetTrait(_ context.Context, id string) (schema.Trait, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.traits[id]
	if !ok {
		return schema.Trait{}, store.ErrNotFound
	}
	return t, nil
}

func (s *Store) ListTraits(_ context.Context, characterID string) ([]schema.Trait, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []schema.Trait
	for _, t := range s.traits {
		if t.CharacterID == characterID {
			out = append(out, t)
		}
	}
	sortByCreated(out, func(t schema.Trait) time.Time { return t.CreatedAt })
	return out, nil
}

func (s *Store) DeleteTrait(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.traits[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.traits, id)
	return nil
}

// --- outfits ---

func (s *Store) CreateOutfit(_ context.Context, o *schema.Outfit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o.ID = s.newID(o.ID)
	o.CreatedAt = s.now()
	s.outfits[o.ID] = *o
	return nil
}

func (s *Store) GetOutfit(_ context.Context, id string) (schema.Outfit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.outfits[id]
	if !ok {
		return schema.Outfit{}, store.ErrNotFound
	}
	return o, nil
}

func (s *Store) ListOutfits(_ context.Context, characterID string) ([]schema.Outfit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []schema.Outfit
	for _, o := range s.outfits {
		if o.CharacterID == characterID {
			out = append(out, o)
		}
	}
	sortByCreated(out, func(o schema.Outfit) time.Time { return o.CreatedAt })
	return out, nil
}

func (s *Store) DeleteOutfit(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.outfits[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.outfits, id)
	return nil
}

// --- accessories ---

func (s *Store) CreateAccessory(_ context.Context, a *schema.Accessory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.newID(a.ID)
	a.CreatedAt = s.now()
	s.accessories[a.ID] = *a
	return nil
}

func (s *Store) GetAccessory(_ context.Context, id string) (schema.Accessory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accessories[id]
	if !ok {
		return schema.Accessory{}, store.ErrNotFound
	}
	return a, nil
}

func (s *Store) ListAccessories(_ context.Context, characterID string) ([]schema.Accessory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []schema.Accessory
	for _, a := range s.accessories {
		if a.CharacterID == characterID {
			out = append(out, a)
		}
	}
	sortByCreated(out, func(a schema.Accessory) time.Time { return a.CreatedAt })
	return out, nil
}

func (s *Store) DeleteAccessory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accessories[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.accessories, id)
	return nil
}

func (s *Store) LinkAccessory(_ context.Context, outfitID, accessoryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.outfits[outfitID]; !ok {
		return store.ErrNotFound
	}
	if _, ok := s.accessories[accessoryID]; !ok {
		return store.ErrNotFound
	}
	key := [2]string{outfitID, accessoryID}
	if _, ok := s.links[key]; ok {
		return store.ErrConflict
	}
	s.links[key] = schema.OutfitAccessory{
		OutfitID:    outfitID,
		AccessoryID: accessoryID,
		CreatedAt:   s.now(),
	}
	return nil
}

func (s *Store) UnlinkAccessory(_ context.Context, outfitID, accessoryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]string{outfitID, accessoryID}
	if _, ok := s.links[key]; !ok {
		return store.ErrNotFound
	}
	delete(s.links, key)
	return nil
}

func (s *Store) ListOutfitAccessories(_ context.Context, outfitID string) ([]schema.OutfitAccessory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []schema.OutfitAccessory
	for _, l := range s.links {
		if l.OutfitID == outfitID {
			out = append(out, l)
		}
	}
	sortByCreated(out, func(l schema.OutfitAccessory) time.Time { return l.CreatedAt })
	return out, nil
}

// --- avatar timeline ---

func (s *Store) AppendAvatar(_ context.Context, e *schema.AvatarTimelineEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.newID(e.ID)
	e.Seq = len(s.avatars[e.CharacterID])
	e.CreatedAt = s.now()
	s.avatars[e.CharacterID] = append(s.avatars[e.CharacterID], *e)
	return nil
}

func (s *Store) ListAvatarTimeline(_ context.Context, characterID string) ([]schema.AvatarTimelineEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.avatars[characterID]), nil
}

// --- voices ---

func (s *Store) CreateVoice(_ context.Context, v *schema.Voice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v.ID = s.newID(v.ID)
	v.CreatedAt = s.now()
	s.voices[v.ID] = *v
	return nil
}

func (s *Store) GetVoice(_ context.Context, id string) (schema.Voice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.voices[id]
	if !ok {
		return schema.Voice{}, store.ErrNotFound
	}
	return v, nil
}

func (s *Store) ListVoices(_ context.Context, projectID string) ([]schema.Voice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []schema.Voice
	for _, v := range s.voices {
		if projectID == "" || v.ProjectID == projectID {
			out = append(out, v)
		}
	}
	sortByCreated(out, func(v schema.Voice) time.Time { return v.CreatedAt })
	return out, nil
}

func (s *Store) DeleteVoice(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.voices[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.voices, id)
	return nil
}

// --- assets ---

func (s *Store) CreateAsset(_ context.Context, a *schema.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.newID(a.ID)
	a.CreatedAt = s.now()
	s.assets[a.ID] = *a
	return nil
}

func (s *Store) GetAsset(_ context.Context, id string) (schema.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assets[id]
	if !ok {
		return schema.Asset{}, store.ErrNotFound
	}
	return a, nil
}

func (s *Store) ListAssets(_ context.Context, projectID string) ([]schema.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []schema.Asset
	for _, a := range s.assets {
		if projectID == "" || a.ProjectID == projectID {
			out = append(out, a)
		}
	}
	sortByCreated(out, func(a schema.Asset) time.Time { return a.CreatedAt })
	return out, nil
}

func (s *Store) DeleteAsset(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assets[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.assets, id)
	return nil
}

// --- scenes ---

func (s *Store) CreateScene(_ context.Context, sc *schema.Scene) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc.ID = s.newID(sc.ID)
	sc.CreatedAt = s.now()
	sc.UpdatedAt = sc.CreatedAt
	s.scenes[sc.ID] = *sc
	return nil
}

func (s *Store) GetScene(_ context.Context, id string) (schema.Scene, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sc, ok := s.scenes[id]
	if !ok {
		return schema.Scene{}, store.ErrNotFound
	}
	return sc, nil
}

func (s *Store) ListScenes(_ context.Context, projectID string) ([]schema.Scene, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []schema.Scene
	for _, sc := range s.scenes {
		if projectID == "" || sc.ProjectID == projectID {
			out = append(out, sc)
		}
	}
	sortByCreated(out, func(sc schema.Scene) time.Time { return sc.CreatedAt })
	return out, nil
}

func (s *Store) UpdateScene(_ context.Context, sc *schema.Scene) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.scenes[sc.ID]
	if !ok {
		return store.ErrNotFound
	}
	sc.CreatedAt = cur.CreatedAt
	sc.UpdatedAt = s.now()
	s.scenes[sc.ID] = *sc
	return nil
}

func (s *Store) DeleteScene(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.scenes[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.scenes, id)
	return nil
}

// --- scene choices ---

func (s *Store) CreateChoice(_ context.Context, c *schema.SceneChoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.newID(c.ID)
	c.CreatedAt = s.now()
	n := 0
	for _, other := range s.choices {
		if other.SceneID == c.SceneID {
			n++
		}
	}
	c.Order = n
	s.choices[c.ID] = *c
	return nil
}

func (s *Store) ListChoices(_ context.Context, sceneID string) ([]schema.SceneChoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []schema.SceneChoice
	for _, c := range s.choices {
		if c.SceneID == sceneID {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b schema.SceneChoice) int {
		if a.Order != b.Order {
			return cmp.Compare(a.Order, b.Order)
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

func (s *Store) DeleteChoice(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.choices[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.choices, id)
	return nil
}

func (s *Store) ReorderChoices(_ context.Context, sceneID string, choiceIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, id := range choiceIDs {
		c, ok := s.choices[id]
		if !ok || c.SceneID != sceneID {
			return store.ErrNotFound
		}
		c.Order = i
		s.choices[id] = c
	}
	return nil
}

// --- scene revisions ---

func (s *Store) AddRevision(_ context.Context, r *schema.SceneRevision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.newID(r.ID)
	r.CreatedAt = s.now()
	s.revisions[r.SceneID] = append(s.revisions[r.SceneID], *r)
	return nil
}

func (s *Store) ListRevisions(_ context.Context, sceneID string) ([]schema.SceneRevision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.revisions[sceneID]), nil
}

// --- factions ---

func (s *Store) CreateFaction(_ context.Context, f *schema.Faction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f.ID = s.newID(f.ID)
	f.CreatedAt = s.now()
	f.UpdatedAt = f.CreatedAt
	s.factions[f.ID] = *f
	return nil
}

func (s *Store) GetFaction(_ context.Context, id string) (schema.Faction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.factions[id]
	if !ok {
		return schema.Faction{}, store.ErrNotFound
	}
	return f, nil
}

func (s *Store) ListFactions(_ context.Context, projectID string) ([]schema.Faction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []schema.Faction
	for _, f := range s.factions {
		if projectID == "" || f.ProjectID == projectID {
			out = append(out, f)
		}
	}
	sortByCreated(out, func(f schema.Faction) time.Time { return f.CreatedAt })
	return out, nil
}

func (s *Store) UpdateFaction(_ context.Context, f *schema.Faction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.factions[f.ID]
	if !ok {
		return store.ErrNotFound
	}
	f.CreatedAt = cur.CreatedAt
	f.UpdatedAt = s.now()
	s.factions[f.ID] = *f
	return nil
}

func (s *Store) DeleteFaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.factions[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.factions, id)
	return nil
}

func (s *Store) AddFactionMember(_ context.Context, m *schema.FactionMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = s.newID(m.ID)
	m.CreatedAt = s.now()
	s.members[m.ID] = *m
	return nil
}

func (s *Store) ListFactionMembers(_ context.Context, factionID string) ([]schema.FactionMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []schema.FactionMember
	for _, m := range s.members {
		if m.FactionID == factionID {
			out = append(out, m)
		}
	}
	sortByCreated(out, func(m schema.FactionMember) time.Time { return m.CreatedAt })
	return out, nil
}

func (s *Store) RemoveFactionMember(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.members, id)
	return nil
}

func (s *Store) AddFactionRelationship(_ context.Context, r *schema.FactionRelationship) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.newID(r.ID)
	r.CreatedAt = s.now()
	s.relations[r.ID] = *r
	return nil
}

func (s *Store) ListFactionRelationships(_ context.Context, factionID string) ([]schema.FactionRelationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []schema.FactionRelationship
	for _, r := range s.relations {
		if r.FactionID == factionID {
			out = append(out, r)
		}
	}
	sortByCreated(out, func(r schema.FactionRelationship) time.Time { return r.CreatedAt })
	return out, nil
}

func (s *Store) RemoveFactionRelationship(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.relations[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.relations, id)
	return nil
}

func (s *Store) AddFactionLore(_ context.Context, l *schema.FactionLore) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.ID = s.newID(l.ID)
	l.CreatedAt = s.now()
	s.lore[l.FactionID] = append(s.lore[l.FactionID], *l)
	return nil
}

func (s *Store) ListFactionLore(_ context.Context, factionID string) ([]schema.FactionLore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.lore[factionID]), nil
}

func (s *Store) AddFactionEvent(_ context.Context, e *schema.FactionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.newID(e.ID)
	e.CreatedAt = s.now()
	s.events[e.FactionID] = append(s.events[e.FactionID], *e)
	return nil
}

func (s *Store) ListFactionEvents(_ context.Context, factionID string) ([]schema.FactionEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.events[factionID]), nil
}

// --- beats ---

func (s *Store) CreateBeat(_ context.Context, b *schema.Beat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = s.newID(b.ID)
	b.CreatedAt = s.now()
	s.beats[b.ID] = *b
	return nil
}

func (s *Store) GetBeat(_ context.Context, id string) (schema.Beat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.beats[id]
	if !ok {
		return schema.Beat{}, store.ErrNotFound
	}
	return b, nil
}

func (s *Store) ListBeats(_ context.Context, projectID string) ([]schema.Beat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []schema.Beat
	for _, b := range s.beats {
		if projectID == "" || b.ProjectID == projectID {
			out = append(out, b)
		}
	}
	slices.SortFunc(out, func(a, b schema.Beat) int {
		if a.Act != b.Act {
			return cmp.Compare(a.Act, b.Act)
		}
		return cmp.Compare(a.Position, b.Position)
	})
	return out, nil
}

func (s *Store) UpdateBeat(_ context.Context, b *schema.Beat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.beats[b.ID]
	if !ok {
		return store.ErrNotFound
	}
	b.CreatedAt = cur.CreatedAt
	s.beats[b.ID] = *b
	return nil
}

func (s *Store) DeleteBeat(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.beats[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.beats, id)
	return nil
}

func (s *Store) AddBeatDependency(_ context.Context, beatID, dependsOn string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.beats[beatID]; !ok {
		return store.ErrNotFound
	}
	if _, ok := s.beats[dependsOn]; !ok {
		return store.ErrNotFound
	}
	key := [2]string{beatID, dependsOn}
	if _, ok := s.beatDeps[key]; ok {
		return store.ErrConflict
	}
	s.beatDeps[key] = struct{}{}
	return nil
}

func (s *Store) ListBeatDependencies(_ context.Context, beatID string) ([]schema.BeatDependency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []schema.BeatDependency
	for key := range s.beatDeps {
		if key[0] == beatID {
			out = append(out, schema.BeatDependency{BeatID: key[0], DependsOn: key[1]})
		}
	}
	slices.SortFunc(out, func(a, b schema.BeatDependency) int {
		return cmp.Compare(a.DependsOn, b.DependsOn)
	})
	return out, nil
}

func (s *Store) RemoveBeatDependency(_ context.Context, beatID, dependsOn string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]string{beatID, dependsOn}
	if _, ok := s.beatDeps[key]; !ok {
		return store.ErrNotFound
	}
	delete(s.beatDeps, key)
	return nil
}

func (s *Store) Pacing(_ context.Context, projectID string) (schema.PacingReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report := schema.PacingReport{ProjectID: projectID, PerAct: make(map[int]int)}
	for _, b := range s.beats {
		if b.ProjectID != projectID {
			continue
		}
		report.PerAct[b.Act]++
		report.Total++
	}
	for act, n := range report.PerAct {
		if n == 1 {
			report.Warnings = append(report.Warnings, warnSparseAct(act))
		}
	}
	slices.Sort(report.Warnings)
	return report, nil
}

func warnSparseAct(act int) string {
	return "act " + strconv.Itoa(act) + " has a single beat"
}

func sortByCreated[T any](in []T, created func(T) time.Time) {
	slices.SortFunc(in, func(a, b T) int {
		return created(a).Compare(created(b))
	})
}
