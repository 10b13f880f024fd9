// Package postgres implements store.Store on a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"fable/pkg/schema"
	"fable/pkg/store"
)

type Store struct {
	pool *pgxpool.Pool
}

// Open connects to Postgres and pings it. The caller owns Close.
func Open(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, ddl)
	return err
}

const ddl = `
CREATE TABLE IF NOT EXISTS projects (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS characters (
	id UUID PRIMARY KEY,
	project_id UUID NOT NULL,
	name TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT '',
	backstory TEXT NOT NULL DEFAULT '',
	gender TEXT NOT NULL DEFAULT '',
	age TEXT NOT NULL DEFAULT '',
	skin_color TEXT NOT NULL DEFAULT '',
	body_type TEXT NOT NULL DEFAULT '',
	hair TEXT NOT NULL DEFAULT '',
	eyes TEXT NOT NULL DEFAULT '',
	other TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS traits (
	id UUID PRIMARY KEY,
	character_id UUID NOT NULL,
	name TEXT NOT NULL,
	value TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS outfits (
	id UUID PRIMARY KEY,
	character_id UUID NOT NULL,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS accessories (
	id UUID PRIMARY KEY,
	character_id UUID NOT NULL,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS outfit_accessories (
	outfit_id UUID NOT NULL REFERENCES outfits(id) ON DELETE CASCADE,
	accessory_id UUID NOT NULL REFERENCES accessories(id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (outfit_id, accessory_id)
);

CREATE TABLE IF NOT EXISTS avatar_timeline (
	id UUID PRIMARY KEY,
	character_id UUID NOT NULL,
	seq INT NOT NULL,
	image_path TEXT NOT NULL,
	style TEXT NOT NULL DEFAULT '',
	prompt TEXT NOT NULL DEFAULT '',
	provider TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (character_id, seq)
);

CREATE TABLE IF NOT EXISTS voices (
	id UUID PRIMARY KEY,
	project_id UUID NOT NULL,
	name TEXT NOT NULL,
	provider_id TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS assets (
	id UUID PRIMARY KEY,
	project_id UUID NOT NULL,
	kind TEXT NOT NULL,
	url TEXT NOT NULL,
	meta TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS scenes (
	id UUID PRIMARY KEY,
	project_id UUID NOT NULL,
	title TEXT NOT NULL,
	content TEXT NOT NULL DEFAULT '',
	beat_id TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS scene_choices (
	id UUID PRIMARY KEY,
	scene_id UUID NOT NULL,
	label TEXT NOT NULL,
	next_scene_id TEXT NOT NULL DEFAULT '',
	ord INT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS scene_revisions (
	id UUID PRIMARY KEY,
	scene_id UUID NOT NULL,
	prompt TEXT NOT NULL,
	original TEXT NOT NULL,
	result TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS factions (
	id UUID PRIMARY KEY,
	project_id UUID NOT NULL,
	name TEXT NOT NULL,
	motto TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS faction_members (
	id UUID PRIMARY KEY,
	faction_id UUID NOT NULL,
	character_id UUID NOT NULL,
	rank TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS faction_relationships (
	id UUID PRIMARY KEY,
	faction_id UUID NOT NULL,
	other_faction_id UUID NOT NULL,
	kind TEXT NOT NULL,
	notes TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS faction_lore (
	id UUID PRIMARY KEY,
	faction_id UUID NOT NULL,
	title TEXT NOT NULL,
	body TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS faction_events (
	id UUID PRIMARY KEY,
	faction_id UUID NOT NULL,
	title TEXT NOT NULL,
	occurred TEXT NOT NULL DEFAULT '',
	details TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

func newID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

// mapErr converts pgx errors into the store sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return store.ErrConflict
	}
	return err
}

// --- projects ---

func (s *Store) CreateProject(ctx context.Context, p *schema.Project) error {
	p.ID = newID(p.ID)
	const q = `
INSERT INTO projects (id, name, description)
VALUES ($1, $2, $3)
RETURNING created_at, updated_at;
`
	return mapErr(s.pool.QueryRow(ctx, q, p.ID, p.Name, p.Description).
		Scan(&p.CreatedAt, &p.UpdatedAt))
}

func (s *Store) GetProject(ctx context.Context, id string) (schema.Project, error) {
	const q = `
SELECT id, name, description, created_at, updated_at
FROM projects WHERE id = $1;
`
	var p schema.Project
	err := s.pool.QueryRow(ctx, q, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	return p, mapErr(err)
}

func (s *Store) ListProjects(ctx context.Context) ([]schema.Project, error) {
	const q = `
SELECT id, name, description, created_at, updated_at
FROM projects ORDER BY created_at;
`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []schema.Project
	for rows.Next() {
		var p schema.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) UpdateProject(ctx context.Context, p *schema.Project) error {
	const q = `
UPDATE projects SET name = $2, description = $3, updated_at = now()
WHERE id = $1
RETURNING created_at, updated_at;
`
	return mapErr(s.pool.QueryRow(ctx, q, p.ID, p.Name, p.Description).
		Scan(&p.CreatedAt, &p.UpdatedAt))
}

func (s *Store) DeleteProject(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "projects", id)
}

func (s *Store) deleteByID(ctx context.Context, table, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// --- characters ---

func (s *Store) CreateCharacter(ctx context.Context, c *schema.Character) error {
	c.ID = newID(c.ID)
	const q = `
INSERT INTO characters (id, project_id, name, role, backstory, gender, age, skin_color, body_type, hair, eyes, other)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING created_at, updated_at;
`
	a := c.Appearance
	return mapErr(s.pool.QueryRow(ctx, q,
		c.ID, c.ProjectID, c.Name, c.Role, c.Backstory,
		a.Gender, a.Age, a.SkinColor, a.BodyType, a.Hair, a.Eyes, a.Other).
		Scan(&c.CreatedAt, &c.UpdatedAt))
}

func scanCharacter(row pgx.Row) (schema.Character, error) {
	var c schema.Character
	a := &c.Appearance
	err := row.Scan(&c.ID, &c.ProjectID, &c.Name, &c.Role, &c.Backstory,
		&a.Gender, &a.Age, &a.SkinColor, &a.BodyType, &a.Hair, &a.Eyes, &a.Other,
		&c.CreatedAt, &c.UpdatedAt)
	return c, err
}

const characterColumns = `id, project_id, name, role, backstory, gender, age, skin_color, body_type, hair, eyes, other, created_at, updated_at`

func (s *Store) GetCharacter(ctx context.Context, id string) (schema.Character, error) {
	c, err := scanCharacter(s.pool.QueryRow(ctx,
		`SELECT `+characterColumns+` FROM characters WHERE id = $1`, id))
	return c, mapErr(err)
}

func (s *Store) ListCharacters(ctx context.Context, projectID string) ([]schema.Character, error) {
	q := `SELECT ` + characterColumns + ` FROM characters`
	args := []any{}
	if projectID != "" {
		q += ` WHERE project_id = $1`
		args = append(args, projectID)
	}
	q += ` ORDER BY created_at`

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []schema.Character
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) UpdateCharacter(ctx context.Context, c *schema.Character) error {
	const q = `
UPDATE characters
SET name = $2, role = $3, backstory = $4, gender = $5, age = $6,
    skin_color = $7, body_type = $8, hair = $9, eyes = $10, other = $11,
    updated_at = now()
WHERE id = $1
RETURNING created_at, updated_at;
`
	a := c.Appearance
	return mapErr(s.pool.QueryRow(ctx, q,
		c.ID, c.Name, c.Role, c.Backstory,
		a.Gender, a.Age, a.SkinColor, a.BodyType, a.Hair, a.Eyes, a.Other).
		Scan(&c.CreatedAt, &c.UpdatedAt))
}

func (s *Store) DeleteCharacter(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "characters", id)
}

// --- traits ---

func (s *Store) CreateTrait(ctx context.Context, t *schema.Trait) error {
	t.ID = newID(t.ID)
	const q = `
INSERT INTO traits (id, character_id, name, value)
VALUES ($1, $2, $3, $4)
RETURNING created_at;
`
	return mapErr(s.pool.QueryRow(ctx, q, t.ID, t.CharacterID, t.Name, t.Value).
		Scan(&t.CreatedAt))
}

func (s *Store) GetTrait(ctx context.Context, id string) (schema.Trait, error) {
	const q = `SELECT id, character_id, name, value, created_at FROM traits WHERE id = $1`
	var t schema.Trait
	err := s.pool.QueryRow(ctx, q, id).
		Scan(&t.ID, &t.CharacterID, &t.Name, &t.Value, &t.CreatedAt)
	return t, mapErr(err)
}

func (s *Store) ListTraits(ctx context.Context, characterID string) ([]schema.Trait, error) {
	const q = `
SELECT id, character_id, name, value, created_at
FROM traits WHERE character_id = $1 ORDER BY created_at;
`
	rows, err := s.pool.Query(ctx, q, characterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []schema.Trait
	for rows.Next() {
		var t schema.Trait
		if err := rows.Scan(&t.ID, &t.CharacterID, &t.Name, &t.Value, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) DeleteTrait(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "traits", id)
}

// --- outfits ---

func (s *Store) CreateOutfit(ctx context.Context, o *schema.Outfit) error {
	o.ID = newID(o.ID)
	const q = `
INSERT INTO outfits (id, character_id, name, description)
VALUES ($1, $2, $3, $4)
RETURNING created_at;
`
	return mapErr(s.pool.QueryRow(ctx, q, o.ID, o.CharacterID, o.Name, o.Description).
		Scan(&o.CreatedAt))
}

func (s *Store) GetOutfit(ctx context.Context, id string) (schema.Outfit, error) {
	const q = `SELECT id, character_id, name, description, created_at FROM outfits WHERE id = $1`
	var o schema.Outfit
	err := s.pool.QueryRow(ctx, q, id).
		Scan(&o.ID, &o.CharacterID, &o.Name, &o.Description, &o.CreatedAt)
	return o, mapErr(err)
}

func (s *Store) ListOutfits(ctx context.Context, characterID string) ([]schema.Outfit, error) {
	const q = `
SELECT id, character_id, name, description, created_at
FROM outfits WHERE character_id = $1 ORDER BY created_at;
`
	rows, err := s.pool.Query(ctx, q, characterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []schema.Outfit
	for rows.Next() {
		var o schema.Outfit
		if err := rows.Scan(&o.ID, &o.CharacterID, &o.Name, &o.Description, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *Store) DeleteOutfit(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "outfits", id)
}

// --- accessories ---

func (s *Store) CreateAccessory(ctx context.Context, a *schema.Accessory) error {
	a.ID = newID(a.ID)
	const q = `
INSERT INTO accessories (id, character_id, name, description)
VALUES ($1, $2, $3, $4)
RETURNING created_at;
`
	return mapErr(s.pool.QueryRow(ctx, q, a.ID, a.CharacterID, a.Name, a.Description).
		Scan(&a.CreatedAt))
}

func (s *Store) GetAccessory(ctx context.Context, id string) (schema.Accessory, error) {
	const q = `SELECT id, character_id, name, description, created_at FROM accessories WHERE id = $1`
	var a schema.Accessory
	err := s.pool.QueryRow(ctx, q, id).
		Scan(&a.ID, &a.CharacterID, &a.Name, &a.Description, &a.CreatedAt)
	return a, mapErr(err)
}

func (s *Store) ListAccessories(ctx context.Context, characterID string) ([]schema.Accessory, error) {
	const q = `
SELECT id, character_id, name, description, created_at
FROM accessories WHERE character_id = $1 ORDER BY created_at;
`
	rows, err := s.pool.Query(ctx, q, characterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []schema.Accessory
	for rows.Next() {
		var a schema.Accessory
		if err := rows.Scan(&a.ID, &a.CharacterID, &a.Name, &a.Description, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) DeleteAccessory(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "accessories", id)
}

func (s *Store) LinkAccessory(ctx context.Context, outfitID, accessoryID string) error {
	const q = `INSERT INTO outfit_accessories (outfit_id, accessory_id) VALUES ($1, $2)`
	_, err := s.pool.Exec(ctx, q, outfitID, accessoryID)
	// A missing outfit or accessory surfaces as an FK violation.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
		return store.ErrNotFound
	}
	return mapErr(err)
}

func (s *Store) UnlinkAccessory(ctx context.Context, outfitID, accessoryID string) error {
	const q = `DELETE FROM outfit_accessories WHERE outfit_id = $1 AND accessory_id = $2`
	tag, err := s.pool.Exec(ctx, q, outfitID, accessoryID)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListOutfitAccessories(ctx context.Context, outfitID string) ([]schema.OutfitAccessory, error) {
	const q = `
SELECT outfit_id, accessory_id, created_at
FROM outfit_accessories WHERE outfit_id = $1 ORDER BY created_at;
`
	rows, err := s.pool.Query(ctx, q, outfitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []schema.OutfitAccessory
	for rows.Next() {
		var l schema.OutfitAccessory
		if err := rows.Scan(&l.OutfitID, &l.AccessoryID, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// --- avatar timeline ---

func (s *Store) AppendAvatar(ctx context.Context, e *schema.AvatarTimelineEntry) error {
	e.ID = newID(e.ID)
	const q = `
INSERT INTO avatar_timeline (id, character_id, seq, image_path, style, prompt, provider)
VALUES ($1, $2,
	(SELECT COALESCE(MAX(seq) + 1, 0) FROM avatar_timeline WHERE character_id = $2),
	$3, $4, $5, $6)
RETURNING seq, created_at;
`
	return mapErr(s.pool.QueryRow(ctx, q,
		e.ID, e.CharacterID, e.ImagePath, e.Style, e.Prompt, e.Provider).
		Scan(&e.Seq, &e.CreatedAt))
}

func (s *Store) ListAvatarTimeline(ctx context.Context, characterID string) ([]schema.AvatarTimelineEntry, error) {
	const q = `
SELECT id, character_id, seq, image_path, style, prompt, provider, created_at
FROM avatar_timeline WHERE character_id = $1 ORDER BY seq;
`
	rows, err := s.pool.Query(ctx, q, characterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []schema.AvatarTimelineEntry
	for rows.Next() {
		var e schema.AvatarTimelineEntry
		if err := rows.Scan(&e.ID, &e.CharacterID, &e.Seq, &e.ImagePath, &e.Style, &e.Prompt, &e.Provider, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
