package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Entry is one row of the results index, keyed by (slug, mode).
type Entry struct {
	Slug            string    `json:"slug"`
	Mode            string    `json:"mode"`
	Title           string    `json:"title"`
	Artist          string    `json:"artist"`
	Outcome         string    `json:"outcome"`
	Coverage        float64   `json:"coverage"`
	Eligible        bool      `json:"eligible"`
	GrassinessScore int       `json:"grassiness_score"`
	GrassinessTier  string    `json:"grassiness_tier"`
	RunID           string    `json:"run_id"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Index is the SQLite results index.
type Index struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS songs (
	slug             TEXT NOT NULL,
	mode             TEXT NOT NULL,
	title            TEXT NOT NULL,
	artist           TEXT NOT NULL,
	outcome          TEXT NOT NULL,
	coverage         REAL NOT NULL DEFAULT 0,
	eligible         INTEGER NOT NULL DEFAULT 0,
	grassiness_score INTEGER NOT NULL DEFAULT 0,
	grassiness_tier  TEXT NOT NULL DEFAULT '',
	run_id           TEXT NOT NULL,
	updated_at       TEXT NOT NULL,
	PRIMARY KEY (slug, mode)
);
CREATE INDEX IF NOT EXISTS idx_songs_title ON songs(title);
`

// OpenIndex opens or creates the index at path.
func OpenIndex(path string) (*Index, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index schema: %w", err)
	}
	return &Index{db: db}, nil
}

func (x *Index) Close() error {
	if x == nil {
		return nil
	}
	return x.db.Close()
}

// Upsert writes entries in one transaction. A nil index ignores the write.
func (x *Index) Upsert(ctx context.Context, entries []Entry) error {
	if x == nil || len(entries) == 0 {
		return nil
	}
	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO songs (slug, mode, title, artist, outcome, coverage, eligible,
			grassiness_score, grassiness_tier, run_id, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (slug, mode) DO UPDATE SET
			title = excluded.title,
			artist = excluded.artist,
			outcome = excluded.outcome,
			coverage = excluded.coverage,
			eligible = excluded.eligible,
			grassiness_score = excluded.grassiness_score,
			grassiness_tier = excluded.grassiness_tier,
			run_id = excluded.run_id,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		if e.UpdatedAt.IsZero() {
			e.UpdatedAt = time.Now().UTC()
		}
		_, err := stmt.ExecContext(ctx, e.Slug, e.Mode, e.Title, e.Artist, e.Outcome, e.Coverage,
			boolInt(e.Eligible), e.GrassinessScore, e.GrassinessTier, e.RunID,
			e.UpdatedAt.UTC().Format(time.RFC3339))
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("index %s: %w", e.Slug, err)
		}
	}
	return tx.Commit()
}

const selectColumns = `slug, mode, title, artist, outcome, coverage, eligible,
	grassiness_score, grassiness_tier, run_id, updated_at`

// List returns every entry ordered by slug and mode.
func (x *Index) List(ctx context.Context) ([]Entry, error) {
	if x == nil {
		return nil, errNoIndex
	}
	rows, err := x.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM songs ORDER BY slug, mode`)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

// Get returns the entries for one slug; ok is false when there are none.
func (x *Index) Get(ctx context.Context, slug string) ([]Entry, bool, error) {
	if x == nil {
		return nil, false, errNoIndex
	}
	rows, err := x.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM songs WHERE slug = ? ORDER BY mode`, slug)
	if err != nil {
		return nil, false, err
	}
	out, err := scanEntries(rows)
	if err != nil {
		return nil, false, err
	}
	return out, len(out) > 0, nil
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	defer rows.Close()
	out := []Entry{}
	for rows.Next() {
		var e Entry
		var eligible int
		var updated string
		if err := rows.Scan(&e.Slug, &e.Mode, &e.Title, &e.Artist, &e.Outcome, &e.Coverage,
			&eligible, &e.GrassinessScore, &e.GrassinessTier, &e.RunID, &updated); err != nil {
			return nil, err
		}
		e.Eligible = eligible != 0
		t, err := time.Parse(time.RFC3339, updated)
		if err != nil {
			return nil, fmt.Errorf("row %s: %w", e.Slug, err)
		}
		e.UpdatedAt = t
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

var errNoIndex = errors.New("results index disabled")

// OptionalIndex opens path, or returns nil when path is empty.
func OptionalIndex(path string) (*Index, error) {
	if path == "" {
		return nil, nil
	}
	return OpenIndex(path)
}

// IsDisabled reports the error returned by readers when no index is set.
func IsDisabled(err error) bool { return errors.Is(err, errNoIndex) }

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
