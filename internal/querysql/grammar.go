// Package querysql compiles queryir queries into Firebird SQL text and an
// ordered binding list, one Grammar per dialect variant.
package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/fbsql/internal/dialect"
	"github.com/roach88/fbsql/internal/ident"
	"github.com/roach88/fbsql/internal/queryir"
)

// DualTable is the engine's single-row pseudo table.
const DualTable = "RDB$DATABASE"

// AggregateAlias names the single column of an aggregate select.
const AggregateAlias = "aggregate"

// EngineVersionSQL asks the server for its version. It is variant
// independent because it runs before a grammar is chosen.
const EngineVersionSQL = "SELECT RDB$GET_CONTEXT('SYSTEM', 'ENGINE_VERSION') AS VAL FROM RDB$DATABASE"

// Grammar compiles queries for one dialect variant.
//
// A Grammar holds only configuration fixed at construction, so one value
// may be shared by any number of goroutines.
type Grammar struct {
	variant  dialect.Variant
	features dialect.Features
	prefix   string
	pipeline []selectComponent
}

// Option configures a Grammar.
type Option func(*Grammar)

// WithTablePrefix prepends prefix to every table name the grammar emits,
// including the table part of derived sequence names.
func WithTablePrefix(prefix string) Option {
	return func(g *Grammar) {
		g.prefix = prefix
	}
}

// New returns the query grammar for v.
func New(v dialect.Variant, opts ...Option) (*Grammar, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("querysql: unknown grammar variant %d", int(v))
	}
	g := &Grammar{
		variant:  v,
		features: v.Features(),
		pipeline: selectPipeline(v),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Variant reports the dialect variant g compiles for.
func (g *Grammar) Variant() dialect.Variant {
	return g.variant
}

// TablePrefix reports the configured table prefix.
func (g *Grammar) TablePrefix() string {
	return g.prefix
}

// wrapTable quotes a table reference after applying the prefix.
func (g *Grammar) wrapTable(table string) string {
	return ident.Wrap(g.prefix + table)
}

// parameter returns the placeholder for value, appending it to args, or
// the inlined text when value is a raw expression.
func parameter(value any, args *[]any) string {
	if expr, ok := value.(queryir.Expr); ok {
		return string(expr)
	}
	*args = append(*args, value)
	return "?"
}

// parameterize joins the placeholders for values with ", ".
func parameterize(values []any, args *[]any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = parameter(v, args)
	}
	return strings.Join(parts, ", ")
}

// joinFragments joins the non-empty fragments with single spaces.
func joinFragments(fragments []string) string {
	var parts []string
	for _, f := range fragments {
		if f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, " ")
}
