// Package executor runs compiled statements against a Firebird server
// through database/sql.
//
// The executor never builds SQL itself: it asks for the engine version,
// picks the matching grammars and executes the ir.Statement values they
// produce, logging each one at Debug and counting them.
package executor

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/fbsql/internal/grammar"
	"github.com/roach88/fbsql/internal/ir"
	"github.com/roach88/fbsql/internal/querysql"
)

// Executor runs statements on one database handle.
type Executor struct {
	db            *sql.DB
	logger        *slog.Logger
	stats         *Stats
	slowThreshold time.Duration

	// mu guards version, which is filled on first use.
	mu      sync.Mutex
	version string
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger replaces slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// WithSlowThreshold counts statements slower than d as slow and logs them
// at Warn. Zero disables the check.
func WithSlowThreshold(d time.Duration) Option {
	return func(e *Executor) { e.slowThreshold = d }
}

// WithEngineVersion skips the server version query.
func WithEngineVersion(v string) Option {
	return func(e *Executor) { e.version = v }
}

// New wraps an open database handle.
func New(db *sql.DB, opts ...Option) *Executor {
	e := &Executor{
		db:            db,
		logger:        slog.Default(),
		stats:         &Stats{},
		slowThreshold: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Open connects with cfg. The Firebird driver must be registered by the
// binary (a blank import of github.com/nakagami/firebirdsql).
func Open(ctx context.Context, cfg *Config, opts ...Option) (*Executor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("executor: %w", err)
	}
	db, err := sql.Open(DriverName, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("executor: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("executor: connect %s: %w", cfg.Database, err)
	}
	if cfg.Version != "" {
		opts = append(opts, WithEngineVersion(cfg.Version))
	}
	return New(db, opts...), nil
}

// Stats returns the statement counters.
func (e *Executor) Stats() StatsSnapshot {
	return e.stats.Snapshot()
}

// Close logs the counters and closes the handle.
func (e *Executor) Close() error {
	e.logger.Info("executor closed", "stats", e.stats.Snapshot().String())
	return e.db.Close()
}

// EngineVersion returns the configured version or asks the server for it.
// The server pads the value; it is trimmed. Concurrent callers share one
// server round trip.
func (e *Executor) EngineVersion(ctx context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.version != "" {
		return e.version, nil
	}
	var version sql.NullString
	start := time.Now()
	err := e.db.QueryRowContext(ctx, querysql.EngineVersionSQL).Scan(&version)
	e.observe(ctx, true, "engine-version", querysql.EngineVersionSQL, nil, start, err)
	if err != nil {
		return "", fmt.Errorf("executor: engine version: %w", err)
	}
	e.version = strings.TrimSpace(version.String)
	return e.version, nil
}

// Grammars looks up the engine version and returns the grammars for it.
func (e *Executor) Grammars(ctx context.Context, opts grammar.Options) (*grammar.Set, error) {
	version, err := e.EngineVersion(ctx)
	if err != nil {
		return nil, err
	}
	set, err := grammar.ForVersion(version, opts)
	if err != nil {
		return nil, fmt.Errorf("executor: %w", err)
	}
	e.logger.Debug("grammar selected", "engine_version", version, "variant", set.Variant.String())
	return set, nil
}

// Exec executes one statement.
func (e *Executor) Exec(ctx context.Context, st ir.Statement) (sql.Result, error) {
	args := NormalizeArgs(st.Bindings)
	start := time.Now()
	res, err := e.db.ExecContext(ctx, st.SQL, args...)
	e.observe(ctx, false, st.Source, st.SQL, args, start, err)
	if err != nil {
		return nil, fmt.Errorf("executor: %s (seq %d): %w", st.Source, st.Seq, err)
	}
	return res, nil
}

// Query runs one statement that returns rows. The caller closes them.
func (e *Executor) Query(ctx context.Context, st ir.Statement) (*sql.Rows, error) {
	args := NormalizeArgs(st.Bindings)
	start := time.Now()
	rows, err := e.db.QueryContext(ctx, st.SQL, args...)
	e.observe(ctx, true, st.Source, st.SQL, args, start, err)
	if err != nil {
		return nil, fmt.Errorf("executor: %s (seq %d): %w", st.Source, st.Seq, err)
	}
	return rows, nil
}

// Run executes statements in order and stops at the first failure. It
// returns how many statements succeeded. Each statement commits on its
// own: DDL must be committed before later statements can see it.
func (e *Executor) Run(ctx context.Context, statements []ir.Statement) (int, error) {
	for i, st := range statements {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if _, err := e.Exec(ctx, st); err != nil {
			return i, err
		}
	}
	return len(statements), nil
}

// TableExists reports whether table exists, using g's catalogue query.
func (e *Executor) TableExists(ctx context.Context, g *querysql.Grammar, table string) (bool, error) {
	sqlText, args := g.CompileTableExists(table)
	return e.exists(ctx, "table-exists", sqlText, args)
}

// SequenceExists reports whether sequence exists.
func (e *Executor) SequenceExists(ctx context.Context, g *querysql.Grammar, sequence string) (bool, error) {
	sqlText, args := g.CompileSequenceExists(sequence)
	return e.exists(ctx, "sequence-exists", sqlText, args)
}

func (e *Executor) exists(ctx context.Context, source, sqlText string, args []any) (bool, error) {
	start := time.Now()
	rows, err := e.db.QueryContext(ctx, sqlText, args...)
	e.observe(ctx, true, source, sqlText, args, start, err)
	if err != nil {
		return false, fmt.Errorf("executor: %s: %w", source, err)
	}
	defer rows.Close()
	found := rows.Next()
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("executor: %s: %w", source, err)
	}
	return found, nil
}

// Columns lists the columns of table in position order. The catalogue pads
// names to the field width; they are trimmed here.
func (e *Executor) Columns(ctx context.Context, g *querysql.Grammar, table string) ([]string, error) {
	sqlText, args := g.CompileColumnListing(table)
	start := time.Now()
	rows, err := e.db.QueryContext(ctx, sqlText, args...)
	e.observe(ctx, true, "column-listing", sqlText, args, start, err)
	if err != nil {
		return nil, fmt.Errorf("executor: column listing: %w", err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("executor: column listing: %w", err)
		}
		cols = append(cols, strings.TrimSpace(name))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("executor: column listing: %w", err)
	}
	return cols, nil
}

func (e *Executor) observe(ctx context.Context, query bool, source, sqlText string, args []any, start time.Time, err error) {
	d := time.Since(start)
	e.stats.record(query, d, e.slowThreshold, err)
	e.logger.DebugContext(ctx, "statement", "source", source, "sql", sqlText, "args", args, "duration", d)
	if err != nil {
		e.logger.DebugContext(ctx, "statement failed", "source", source, "error", err)
	}
	if e.slowThreshold > 0 && d > e.slowThreshold {
		e.logger.WarnContext(ctx, "slow statement", "source", source, "duration", d)
	}
}

// NormalizeArgs converts bindings to values the driver accepts: UUIDs
// become their 36-character text form and booleans become 1 or 0, which
// every engine generation stores in a SMALLINT or CHAR(1) column.
func NormalizeArgs(bindings []any) []any {
	if len(bindings) == 0 {
		return nil
	}
	out := make([]any, len(bindings))
	for i, b := range bindings {
		switch v := b.(type) {
		case uuid.UUID:
			out[i] = v.String()
		case bool:
			if v {
				out[i] = 1
			} else {
				out[i] = 0
			}
		default:
			out[i] = b
		}
	}
	return out
}
