package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/fbsql/internal/ir"
)

// ErrRunNotFound is returned by GetRun for an unknown id.
var ErrRunNotFound = errors.New("run not found")

// StatementRecord is a journalled statement. Bindings holds the canonical
// JSON array that was hashed into ID.
type StatementRecord struct {
	ID       string  `json:"id"`
	RunID    string  `json:"run_id"`
	Seq      int     `json:"seq"`
	Kind     ir.Kind `json:"kind"`
	Source   string  `json:"source"`
	SQL      string  `json:"sql"`
	Bindings string  `json:"bindings"`
}

// ListRuns returns every run, oldest first. Returns an empty slice (not
// nil) for an empty journal.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, engine_version, variant, definition_hash, created_at
		FROM runs
		ORDER BY created_at ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun returns the run with id.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, engine_version, variant, definition_hash, created_at
		FROM runs WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

// ReadStatements returns the statements of a run in seq order.
func (s *Store) ReadStatements(ctx context.Context, runID string) ([]StatementRecord, error) {
	return s.queryStatements(ctx, `
		SELECT id, run_id, seq, kind, source, sql, bindings
		FROM statements
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
}

// StatementsForSource returns every journalled statement of one
// definition across runs, oldest run first.
func (s *Store) StatementsForSource(ctx context.Context, source string) ([]StatementRecord, error) {
	return s.queryStatements(ctx, `
		SELECT s.id, s.run_id, s.seq, s.kind, s.source, s.sql, s.bindings
		FROM statements s
		JOIN runs r ON r.id = s.run_id
		WHERE s.source = ?
		ORDER BY r.created_at ASC, r.id COLLATE BINARY ASC, s.seq ASC
	`, source)
}

func (s *Store) queryStatements(ctx context.Context, query string, arg string) ([]StatementRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query statements: %w", err)
	}
	defer rows.Close()

	out := []StatementRecord{}
	for rows.Next() {
		var (
			r    StatementRecord
			kind string
		)
		if err := rows.Scan(&r.ID, &r.RunID, &r.Seq, &kind, &r.Source, &r.SQL, &r.Bindings); err != nil {
			return nil, fmt.Errorf("scan statement: %w", err)
		}
		r.Kind = ir.Kind(kind)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate statements: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run     Run
		created string
	)
	if err := row.Scan(&run.ID, &run.EngineVersion, &run.Variant, &run.DefinitionHash, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return Run{}, fmt.Errorf("scan run %s: created_at: %w", run.ID, err)
	}
	run.CreatedAt = t
	return run, nil
}
