package postgres

import (
	"context"

	"fable/pkg/schema"
	"fable/pkg/store"
)

// --- voices ---

func (s *Store) CreateVoice(ctx context.Context, v *schema.Voice) error {
	v.ID = newID(v.ID)
	const q = `
INSERT INTO voices (id, project_id, name, provider_id, description)
VALUES ($1, $2, $3, $4, $5)
RETURNING created_at;
`
	return mapErr(s.pool.QueryRow(ctx, q, v.ID, v.ProjectID, v.Name, v.ProviderID, v.Description).
		Scan(&v.CreatedAt))
}

func (s *Store) GetVoice(ctx context.Context, id string) (schema.Voice, error) {
	const q = `SELECT id, project_id, name, provider_id, description, created_at FROM voices WHERE id = $1`
	var v schema.Voice
	err := s.pool.QueryRow(ctx, q, id).
		Scan(&v.ID, &v.ProjectID, &v.Name, &v.ProviderID, &v.Description, &v.CreatedAt)
	return v, mapErr(err)
}

func (s *Store) ListVoices(ctx context.Context, projectID string) ([]schema.Voice, error) {
	const q = `
SELECT id, project_id, name, provider_id, description, created_at
FROM voices WHERE project_id = $1 OR $1 = '' ORDER BY created_at;
`
	rows, err := s.pool.Query(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []schema.Voice
	for rows.Next() {
		var v schema.Voice
		if err := rows.Scan(&v.ID, &v.ProjectID, &v.Name, &v.ProviderID, &v.Description, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) DeleteVoice(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "voices", id)
}

// --- assets ---

func (s *Store) CreateAsset(ctx context.Context, a *schema.Asset) error {
	a.ID = newID(a.ID)
	const q = `
INSERT INTO assets (id, project_id, kind, url, meta)
VALUES ($1, $2, $3, $4, $5)
RETURNING created_at;
`
	return mapErr(s.pool.QueryRow(ctx, q, a.ID, a.ProjectID, a.Kind, a.URL, a.Meta).
		Scan(&a.CreatedAt))
}

func (s *Store) GetAsset(ctx context.Context, id string) (schema.Asset, error) {
	const q = `SELECT id, project_id, kind, url, meta, created_at FROM assets WHERE id = $1`
	var a schema.Asset
	err := s.pool.QueryRow(ctx, q, id).
		Scan(&a.ID, &a.ProjectID, &a.Kind, &a.URL, &a.Meta, &a.CreatedAt)
	return a, mapErr(err)
}

func (s *Store) ListAssets(ctx context.Context, projectID string) ([]schema.Asset, error) {
	const q = `
SELECT id, project_id, kind, url, meta, created_at
FROM assets WHERE project_id = $1 OR $1 = '' ORDER BY created_at;
`
	rows, err := s.pool.Query(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []schema.Asset
	for rows.Next() {
		var a schema.Asset
		if err := rows.Scan(&a.ID, &a.ProjectID, &a.Kind, &a.URL, &a.Meta, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) DeleteAsset(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "assets", id)
}

// --- scenes ---

func (s *Store) CreateScene(ctx context.Context, sc *schema.Scene) error {
	sc.ID = newID(sc.ID)
	const q = `
INSERT INTO scenes (id, project_id, title, content, beat_id)
VALUES ($1, $2, $3, $4, $5)
RETURNING created_at, updated_at;
`
	return mapErr(s.pool.QueryRow(ctx, q, sc.ID, sc.ProjectID, sc.Title, sc.Content, sc.BeatID).
		Scan(&sc.CreatedAt, &sc.UpdatedAt))
}

func (s *Store) GetScene(ctx context.Context, id string) (schema.Scene, error) {
	const q = `
SELECT id, project_id, title, content, beat_id, created_at, updated_at
FROM scenes WHERE id = $1;
`
	var sc schema.Scene
	err := s.pool.QueryRow(ctx, q, id).
		Scan(&sc.ID, &sc.ProjectID, &sc.Title, &sc.Content, &sc.BeatID, &sc.CreatedAt, &sc.UpdatedAt)
	return sc, mapErr(err)
}

func (s *Store) ListScenes(ctx context.Context, projectID string) ([]schema.Scene, error) {
	const q = `
SELECT id, project_id, title, content, beat_id, created_at, updated_at
FROM scenes WHERE project_id = $1 OR $1 = '' ORDER BY created_at;
`
	rows, err := s.pool.Query(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []schema.Scene
	for rows.Next() {
		var sc schema.Scene
		if err := rows.Scan(&sc.ID, &sc.ProjectID, &sc.Title, &sc.Content, &sc.BeatID, &sc.CreatedAt, &sc.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func (s *Store) UpdateScene(ctx context.Context, sc *schema.Scene) error {
	const q = `
UPDATE scenes SET title = $2, content = $3, beat_id = $4, updated_at = now()
WHERE id = $1
RETURNING created_at, updated_at;
`
	return mapErr(s.pool.QueryRow(ctx, q, sc.ID, sc.Title, sc.Content, sc.BeatID).
		Scan(&sc.CreatedAt, &sc.UpdatedAt))
}

func (s *Store) DeleteScene(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "scenes", id)
}

// --- scene choices ---

func (s *Store) CreateChoice(ctx context.Context, c *schema.SceneChoice) error {
	c.ID = newID(c.ID)
	const q = `
INSERT INTO scene_choices (id, scene_id, label, next_scene_id, ord)
VALUES ($1, $2, $3, $4,
	(SELECT COALESCE(MAX(ord) + 1, 0) FROM scene_choices WHERE scene_id = $2))
RETURNING ord, created_at;
`
	return mapErr(s.pool.QueryRow(ctx, q, c.ID, c.SceneID, c.Label, c.NextScene).
		Scan(&c.Order, &c.CreatedAt))
}

func (s *Store) ListChoices(ctx context.Context, sceneID string) ([]schema.SceneChoice, error) {
	const q = `
SELECT id, scene_id, label, next_scene_id, ord, created_at
FROM scene_choices WHERE scene_id = $1 ORDER BY ord, created_at;
`
	rows, err := s.pool.Query(ctx, q, sceneID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []schema.SceneChoice
	for rows.Next() {
		var c schema.SceneChoice
		if err := rows.Scan(&c.ID, &c.SceneID, &c.Label, &c.NextScene, &c.Order, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) DeleteChoice(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "scene_choices", id)
}

func (s *Store) ReorderChoices(ctx context.Context, sceneID string, choiceIDs []string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i, id := range choiceIDs {
		tag, err := tx.Exec(ctx,
			`UPDATE scene_choices SET ord = $1 WHERE id = $2 AND scene_id = $3`,
			i, id, sceneID)
		if err != nil {
			return mapErr(err)
		}
		if tag.RowsAffected() == 0 {
			return store.ErrNotFound
		}
	}
	return tx.Commit(ctx)
}

// --- scene revisions ---

func (s *Store) AddRevision(ctx context.Context, r *schema.SceneRevision) error {
	r.ID = newID(r.ID)
	const q = `
INSERT INTO scene_revisions (id, scene_id, prompt, original, result)
VALUES ($1, $2, $3, $4, $5)
RETURNING created_at;
`
	return mapErr(s.pool.QueryRow(ctx, q, r.ID, r.SceneID, r.Prompt, r.Original, r.Result).
		Scan(&r.CreatedAt))
}

func (s *Store) ListRevisions(ctx context.Context, sceneID string) ([]schema.SceneRevision, error) {
	const q = `
SELECT id, scene_id, prompt, original, result, created_at
FROM scene_revisions WHERE scene_id = $1 ORDER BY created_at;
`
	rows, err := s.pool.Query(ctx, q, sceneID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []schema.SceneRevision
	for rows.Next() {
		var r schema.SceneRevision
		if err := rows.Scan(&r.ID, &r.SceneID, &r.Prompt, &r.Original, &r.Result, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// --- factions ---

func (s *Store) CreateFaction(ctx context.Context, f *schema.Faction) error {
	f.ID = newID(f.ID)
	const q = `
INSERT INTO factions (id, project_id, name, motto)
VALUES ($1, $2, $3, $4)
RETURNING created_at, updated_at;
`
	return mapErr(s.pool.QueryRow(ctx, q, f.ID, f.ProjectID, f.Name, f.Motto).
		Scan(&f.CreatedAt, &f.UpdatedAt))
}

func (s *Store) GetFaction(ctx context.Context, id string) (schema.Faction, error) {
	const q = `
SELECT id, project_id, name, motto, created_at, updated_at
FROM factions WHERE id = $1;
`
	var f schema.Faction
	err := s.pool.QueryRow(ctx, q, id).
		Scan(&f.ID, &f.ProjectID, &f.Name, &f.Motto, &f.CreatedAt, &f.UpdatedAt)
	return f, mapErr(err)
}

func (s *Store) ListFactions(ctx context.Context, projectID string) ([]schema.Faction, error) {
	const q = `
SELECT id, project_id, name, motto, created_at, updated_at
FROM factions WHERE project_id = $1 OR $1 = '' ORDER BY created_at;
`
	rows, err := s.pool.Query(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []schema.Faction
	for rows.Next() {
		var f schema.Faction
		if err := rows.Scan(&f.ID, &f.ProjectID, &f.Name, &f.Motto, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *Store) UpdateFaction(ctx context.Context, f *schema.Faction) error {
	const q = `
UPDATE factions SET name = $2, motto = $3, updated_at = now()
WHERE id = $1
RETURNING created_at, updated_at;
`
	return mapErr(s.pool.QueryRow(ctx, q, f.ID, f.Name, f.Motto).
		Scan(&f.CreatedAt, &f.UpdatedAt))
}

func (s *Store) DeleteFaction(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "factions", id)
}

func (s *Store) AddFactionMember(ctx context.Context, m *schema.FactionMember) error {
	m.ID = newID(m.ID)
	const q = `
INSERT INTO faction_members (id, faction_id, character_id, rank)
VALUES ($1, $2, $3, $4)
RETURNING created_at;
`
	return mapErr(s.pool.QueryRow(ctx, q, m.ID, m.FactionID, m.CharacterID, m.Rank).
		Scan(&m.CreatedAt))
}

func (s *Store) ListFactionMembers(ctx context.Context, factionID string) ([]schema.FactionMember, error) {
	const q = `
SELECT id, faction_id, character_id, rank, created_at
FROM faction_members WHERE faction_id = $1 ORDER BY created_at;
`
	rows, err := s.pool.Query(ctx, q, factionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []schema.FactionMember
	for rows.Next() {
		var m schema.FactionMember
		if err := rows.Scan(&m.ID, &m.FactionID, &m.CharacterID, &m.Rank, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) RemoveFactionMember(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "faction_members", id)
}

func (s *Store) AddFactionRelationship(ctx context.Context, r *schema.FactionRelationship) error {
	r.ID = newID(r.ID)
	const q = `
INSERT INTO faction_relationships (id, faction_id, other_faction_id, kind, notes)
VALUES ($1, $2, $3, $4, $5)
RETURNING created_at;
`
	return mapErr(s.pool.QueryRow(ctx, q, r.ID, r.FactionID, r.OtherID, r.Kind, r.Notes).
		Scan(&r.CreatedAt))
}

func (s *Store) ListFactionRelationships(ctx context.Context, factionID string) ([]schema.FactionRelationship, error) {
	const q = `
SELECT id, faction_id, other_faction_id, kind, notes, created_at
FROM faction_relationships WHERE faction_id = $1 ORDER BY created_at;
`
	rows, err := s.pool.Query(ctx, q, factionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []schema.FactionRelationship
	for rows.Next() {
		var r schema.FactionRelationship
		if err := rows.Scan(&r.ID, &r.FactionID, &r.OtherID, &r.Kind, &r.Notes, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) RemoveFactionRelationship(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "faction_relationships", id)
}

func (s *Store) AddFactionLore(ctx context.Context, l *schema.FactionLore) error {
	l.ID = newID(l.ID)
	const q = `
INSERT INTO faction_lore (id, faction_id, title, body)
VALUES ($1, $2, $3, $4)
RETURNING created_at;
`
	return mapErr(s.pool.QueryRow(ctx, q, l.ID, l.FactionID, l.Title, l.Body).
		Scan(&l.CreatedAt))
}

func (s *Store) ListFactionLore(ctx context.Context, factionID string) ([]schema.FactionLore, error) {
	const q = `
SELECT id, faction_id, title, body, created_at
FROM faction_lore WHERE faction_id = $1 ORDER BY created_at;
`
	rows, err := s.pool.Query(ctx, q, factionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []schema.FactionLore
	for rows.Next() {
		var l schema.FactionLore
		if err := rows.Scan(&l.ID, &l.FactionID, &l.Title, &l.Body, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) AddFactionEvent(ctx context.Context, e *schema.FactionEvent) error {
	e.ID = newID(e.ID)
	const q = `
INSERT INTO faction_events (id, faction_id, title, occurred, details)
VALUES ($1, $2, $3, $4, $5)
RETURNING created_at;
`
	return mapErr(s.pool.QueryRow(ctx, q, e.ID, e.FactionID, e.Title, e.Occurred, e.Details).
		Scan(&e.CreatedAt))
}

func (s *Store) ListFactionEvents(ctx context.Context, factionID string) ([]schema.FactionEvent, error) {
	const q = `
SELECT id, faction_id, title, occurred, details, created_at
FROM faction_events WHERE faction_id = $1 ORDER BY created_at;
`
	rows, err := s.pool.Query(ctx, q, factionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []schema.FactionEvent
	for rows.Next() {
		var e schema.FactionEvent
		if err := rows.Scan(&e.ID, &e.FactionID, &e.Title, &e.Occurred, &e.Details, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
