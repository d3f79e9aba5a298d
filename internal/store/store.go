// Package store persists AnalysisResult snapshots keyed by RunID, so the
// API server can serve a past analysis back to a caller without rerunning
// the analyzer.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/alevsk/iamgraph/internal/analyzer"
)

const schema = `
CREATE TABLE IF NOT EXISTS analysis_runs (
	run_id     TEXT PRIMARY KEY,
	result     JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Store persists and retrieves AnalysisResult snapshots. A nil *Store (as
// returned when store.dsn is unset) makes every method a no-op, so callers
// never need to branch on whether persistence is enabled.
type Store struct {
	db *sqlx.DB
}

// Open connects to dsn and ensures the schema exists. An empty dsn returns
// (nil, nil): persistence is disabled, not an error, per §6.4.
func Open(dsn string) (*Store, error) {
	if dsn == "" {
		return nil, nil
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: failed to connect: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}

// SaveRun persists r under its own RunID.
func (s *Store) SaveRun(ctx context.Context, r *analyzer.AnalysisResult) error {
	if s == nil {
		return nil
	}
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("store: failed to marshal result: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analysis_runs (run_id, result) VALUES ($1, $2)
		 ON CONFLICT (run_id) DO UPDATE SET result = EXCLUDED.result`,
		r.RunID, body,
	)
	return err
}

// GetRun retrieves a previously saved AnalysisResult by run ID. Returns
// (nil, nil) if no run with that ID was ever saved.
func (s *Store) GetRun(ctx context.Context, runID string) (*analyzer.AnalysisResult, error) {
	if s == nil {
		return nil, nil
	}

	var body []byte
	err := s.db.QueryRowContext(ctx, `SELECT result FROM analysis_runs WHERE run_id = $1`, runID).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: failed to fetch run %s: %w", runID, err)
	}

	var result analyzer.AnalysisResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("store: failed to unmarshal run %s: %w", runID, err)
	}
	return &result, nil
}

// ListRunIDs returns the most recently saved run IDs, newest first.
func (s *Store) ListRunIDs(ctx context.Context, limit int) ([]string, error) {
	if s == nil {
		return nil, nil
	}
	var ids []string
	err := s.db.SelectContext(ctx, &ids,
		`SELECT run_id FROM analysis_runs ORDER BY created_at DESC LIMIT $1`, limit)
	return ids, err
}
