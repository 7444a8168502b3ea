package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const catalogSchema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    model TEXT NOT NULL,
    created_at TEXT NOT NULL,
    seed INTEGER NOT NULL,
    generations INTEGER NOT NULL,
    replicates INTEGER NOT NULL,
    params TEXT,   -- JSON
    metrics TEXT   -- JSON
);
CREATE INDEX IF NOT EXISTS idx_runs_model ON runs(model);
`

// timeLayout has fixed width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Catalog indexes run metadata in SQLite so runs can be listed and filtered
// without walking the run directories.
type Catalog struct {
	db *sql.DB
}

func OpenCatalog(ctx context.Context, path string) (*Catalog, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, catalogSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize catalog schema: %w", err)
	}
	return &Catalog{db: db}, nil
}

func (c *Catalog) Close() error { return c.db.Close() }

func (c *Catalog) Add(ctx context.Context, meta *RunMetadata) error {
	params, err := json.Marshal(meta.Params)
	if err != nil {
		return err
	}
	metrics, err := json.Marshal(meta.Metrics)
	if err != nil {
		return err
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs (id, model, created_at, seed, generations, replicates, params, metrics)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.ID, meta.Model, meta.Timestamp.UTC().Format(timeLayout),
		meta.Seed, meta.Generations, meta.Replicates, string(params), string(metrics),
	)
	if err != nil {
		return fmt.Errorf("failed to add run %s: %w", meta.ID, err)
	}
	return nil
}

// List returns runs oldest first. An empty model lists every run.
func (c *Catalog) List(ctx context.Context, model string) ([]RunMetadata, error) {
	query := `SELECT id, model, created_at, seed, generations, replicates, params, metrics FROM runs`
	var args []any
	if model != "" {
		query += ` WHERE model = ?`
		args = append(args, model)
	}
	query += ` ORDER BY created_at, id`

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := make([]RunMetadata, 0)
	for rows.Next() {
		var meta RunMetadata
		var created string
		var params, metrics sql.NullString
		if err := rows.Scan(&meta.ID, &meta.Model, &created, &meta.Seed, &meta.Generations, &meta.Replicates, &params, &metrics); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if meta.Timestamp, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("run %s: bad timestamp: %w", meta.ID, err)
		}
		if params.Valid && params.String != "" {
			if err := json.Unmarshal([]byte(params.String), &meta.Params); err != nil {
				return nil, fmt.Errorf("run %s: bad params: %w", meta.ID, err)
			}
		}
		if metrics.Valid && metrics.String != "" {
			if err := json.Unmarshal([]byte(metrics.String), &meta.Metrics); err != nil {
				return nil, fmt.Errorf("run %s: bad metrics: %w", meta.ID, err)
			}
		}
		runs = append(runs, meta)
	}
	return runs, rows.Err()
}

func (c *Catalog) Remove(ctx context.Context, id string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	return err
}

// Sync indexes every run directory in the store that the catalog has not seen.
func (c *Catalog) Sync(ctx context.Context, s *Store) (int, error) {
	runs, err := s.List()
	if err != nil {
		return 0, err
	}

	added := 0
	for i := range runs {
		var exists int
		if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, runs[i].ID).Scan(&exists); err != nil {
			return added, fmt.Errorf("failed to look up run %s: %w", runs[i].ID, err)
		}
		if exists > 0 {
			continue
		}
		if err := c.Add(ctx, &runs[i]); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}
