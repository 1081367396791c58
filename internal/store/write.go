package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/fbsql/internal/ir"
)

// timeLayout has a fixed width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Run is one recorded compilation.
type Run struct {
	ID             string    `json:"id"`
	EngineVersion  string    `json:"engine_version"`
	Variant        string    `json:"variant"`
	DefinitionHash string    `json:"definition_hash"`
	CreatedAt      time.Time `json:"created_at"`
}

// RecordRun stores statements under a new run and returns it.
func (s *Store) RecordRun(ctx context.Context, engineVersion, variant string, statements []ir.Statement) (Run, error) {
	hash, err := ir.DefinitionHash(variant, statements)
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}
	run := Run{
		ID:             s.ids.Generate(),
		EngineVersion:  engineVersion,
		Variant:        variant,
		DefinitionHash: hash,
		CreatedAt:      s.clock.Now().UTC(),
	}
	if err := s.WriteRun(ctx, run, statements); err != nil {
		return Run{}, err
	}
	return run, nil
}

// WriteRun inserts run and its statements in one transaction.
// Uses ON CONFLICT DO NOTHING for idempotency - writing the same run twice
// leaves the journal unchanged.
func (s *Store) WriteRun(ctx context.Context, run Run, statements []ir.Statement) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, engine_version, variant, definition_hash, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, run.ID, run.EngineVersion, run.Variant, run.DefinitionHash, run.CreatedAt.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO statements (id, run_id, seq, kind, source, sql, bindings)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	defer stmt.Close()

	for _, st := range statements {
		id, err := ir.StatementID(run.ID, st)
		if err != nil {
			return fmt.Errorf("write statement %d: %w", st.Seq, err)
		}
		bindings, err := st.CanonicalBindings()
		if err != nil {
			return fmt.Errorf("write statement %d: %w", st.Seq, err)
		}
		if _, err := stmt.ExecContext(ctx, id, run.ID, st.Seq, string(st.Kind), st.Source, st.SQL, bindings); err != nil {
			return fmt.Errorf("write statement %d: %w", st.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: commit: %w", err)
	}
	return nil
}
