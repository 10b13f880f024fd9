// Package sqlite implements store.BeatStore on a local SQLite file.
// Beats and their dependency graph deliberately live apart from the
// Postgres entity graph.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"fable/pkg/schema"
	"fable/pkg/store"
)

type Store struct {
	db *sql.DB
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS beats (
	id TEXT PRIMARY KEY,
	project_id TEXT NOT NULL,
	act INTEGER NOT NULL DEFAULT 1,
	title TEXT NOT NULL,
	summary TEXT NOT NULL DEFAULT '',
	position INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS beat_dependencies (
	beat_id TEXT NOT NULL REFERENCES beats(id) ON DELETE CASCADE,
	depends_on TEXT NOT NULL REFERENCES beats(id) ON DELETE CASCADE,
	PRIMARY KEY (beat_id, depends_on)
);

CREATE INDEX IF NOT EXISTS idx_beats_project ON beats(project_id);
`

// Open opens (creating if needed) the beat database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// modernc's driver is not safe for concurrent writes over
	// multiple connections.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreateBeat(ctx context.Context, b *schema.Beat) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Act <= 0 {
		b.Act = 1
	}
	b.CreatedAt = time.Now().UTC()
	const q = `
INSERT INTO beats (id, project_id, act, title, summary, position, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?);
`
	_, err := s.db.ExecContext(ctx, q,
		b.ID, b.ProjectID, b.Act, b.Title, b.Summary, b.Position, b.CreatedAt)
	return err
}

func (s *Store) GetBeat(ctx context.Context, id string) (schema.Beat, error) {
	const q = `
SELECT id, project_id, act, title, summary, position, created_at
FROM beats WHERE id = ?;
`
	var b schema.Beat
	err := s.db.QueryRowContext(ctx, q, id).
		Scan(&b.ID, &b.ProjectID, &b.Act, &b.Title, &b.Summary, &b.Position, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return schema.Beat{}, store.ErrNotFound
	}
	return b, err
}

func (s *Store) ListBeats(ctx context.Context, projectID string) ([]schema.Beat, error) {
	q := `
SELECT id, project_id, act, title, summary, position, created_at
FROM beats`
	args := []any{}
	if projectID != "" {
		q += ` WHERE project_id = ?`
		args = append(args, projectID)
	}
	q += ` ORDER BY act, position, created_at;`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []schema.Beat
	for rows.Next() {
		var b schema.Beat
		if err := rows.Scan(&b.ID, &b.ProjectID, &b.Act, &b.Title, &b.Summary, &b.Position, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) UpdateBeat(ctx context.Context, b *schema.Beat) error {
	const q = `
UPDATE beats SET act = ?, title = ?, summary = ?, position = ? WHERE id = ?;
`
	res, err := s.db.ExecContext(ctx, q, b.Act, b.Title, b.Summary, b.Position, b.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteBeat(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM beats WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) AddBeatDependency(ctx context.Context, beatID, dependsOn string) error {
	const q = `INSERT INTO beat_dependencies (beat_id, depends_on) VALUES (?, ?);`
	_, err := s.db.ExecContext(ctx, q, beatID, dependsOn)
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return store.ErrConflict
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return store.ErrNotFound
	}
	return err
}

func (s *Store) ListBeatDependencies(ctx context.Context, beatID string) ([]schema.BeatDependency, error) {
	const q = `
SELECT beat_id, depends_on FROM beat_dependencies
WHERE beat_id = ? ORDER BY depends_on;
`
	rows, err := s.db.QueryContext(ctx, q, beatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []schema.BeatDependency
	for rows.Next() {
		var d schema.BeatDependency
		if err := rows.Scan(&d.BeatID, &d.DependsOn); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) RemoveBeatDependency(ctx context.Context, beatID, dependsOn string) error {
	const q = `DELETE FROM beat_dependencies WHERE beat_id = ? AND depends_on = ?;`
	res, err := s.db.ExecContext(ctx, q, beatID, dependsOn)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) Pacing(ctx context.Context, projectID string) (schema.PacingReport, error) {
	const q = `
SELECT act, COUNT(*) FROM beats WHERE project_id = ? GROUP BY act;
`
	rows, err := s.db.QueryContext(ctx, q, projectID)
	if err != nil {
		return schema.PacingReport{}, err
	}
	defer rows.Close()

	report := schema.PacingReport{ProjectID: projectID, PerAct: make(map[int]int)}
	for rows.Next() {
		var act, n int
		if err := rows.Scan(&act, &n); err != nil {
			return schema.PacingReport{}, err
		}
		report.PerAct[act] = n
		report.Total += n
	}
	if err := rows.Err(); err != nil {
		return schema.PacingReport{}, err
	}

	for act, n := range report.PerAct {
		if n == 1 {
			report.Warnings = append(report.Warnings, "act "+strconv.Itoa(act)+" has a single beat")
		}
	}
	sort.Strings(report.Warnings)
	return report, nil
}
