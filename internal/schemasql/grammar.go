// Package schemasql compiles schemair blueprints into Firebird DDL.
//
// Each variant carries an explicit table from command name to compile
// function. A name mapped to nil, or not mapped at all, is skipped: the
// variant cannot express that command and the blueprint degrades instead
// of failing. Supports reports the table entry so callers can see which
// commands a variant drops.
package schemasql

import (
	"fmt"

	"github.com/roach88/fbsql/internal/dialect"
	"github.com/roach88/fbsql/internal/ident"
	"github.com/roach88/fbsql/internal/schemair"
)

// table is the compile-time view of a blueprint.
type table struct {
	bp *schemair.Blueprint
	// identity is true when the blueprint asks for identity columns and
	// the variant has them.
	identity bool
}

type commandFn func(g *Grammar, t table, c *schemair.Command) (string, error)

type sequenceFn func(g *Grammar, s *schemair.SequenceBlueprint) ([]string, error)

// Grammar compiles schema blueprints for one variant. It is immutable
// after New and safe for concurrent use.
type Grammar struct {
	variant   dialect.Variant
	features  dialect.Features
	prefix    string
	policy    ident.Policy
	commands  map[schemair.CommandName]commandFn
	sequences map[schemair.SequenceCommand]sequenceFn
}

// Option configures a Grammar.
type Option func(*Grammar)

// WithTablePrefix prepends prefix to table names, to derived sequence and
// trigger names and to default constraint names.
func WithTablePrefix(prefix string) Option {
	return func(g *Grammar) {
		g.prefix = prefix
	}
}

// New returns the schema grammar for v.
func New(v dialect.Variant, opts ...Option) (*Grammar, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("schemasql: unknown grammar variant %d", int(v))
	}
	f := v.Features()
	g := &Grammar{
		variant:   v,
		features:  f,
		commands:  commandTable(f),
		sequences: sequenceTable(f),
	}
	if f.UpperCaseNames {
		g.policy = ident.Policy{Case: ident.CaseUpper}
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func commandTable(f dialect.Features) map[schemair.CommandName]commandFn {
	t := map[schemair.CommandName]commandFn{
		schemair.CmdCreate:                  compileCreate,
		schemair.CmdDrop:                    compileDrop,
		schemair.CmdDropIfExists:            nil,
		schemair.CmdAdd:                     compileAdd,
		schemair.CmdPrimary:                 compilePrimary,
		schemair.CmdUnique:                  compileUnique,
		schemair.CmdIndex:                   compileIndex,
		schemair.CmdForeign:                 compileForeign,
		schemair.CmdDropForeign:             compileDropForeign,
		schemair.CmdDropColumn:              compileDropColumn,
		schemair.CmdDropPrimary:             compileDropPrimary,
		schemair.CmdDropUnique:              compileDropUnique,
		schemair.CmdDropIndex:               compileDropIndex,
		schemair.CmdRename:                  nil,
		schemair.CmdSequenceForTable:        compileSequenceForTable,
		schemair.CmdTriggerForAutoincrement: compileTriggerForAutoincrement,
		schemair.CmdDropSequenceForTable:    nil,
	}
	// Without EXECUTE BLOCK the generator cannot be dropped conditionally,
	// and an unconditional DROP GENERATOR fails the whole migration for any
	// table that never had one. Dropping a table there leaves its generator
	// behind; drop it with an explicit sequence blueprint.
	if f.ExecuteBlock {
		t[schemair.CmdDropIfExists] = compileDropIfExists
		t[schemair.CmdDropSequenceForTable] = compileDropSequenceForTable
	}
	return t
}

func sequenceTable(f dialect.Features) map[schemair.SequenceCommand]sequenceFn {
	t := map[schemair.SequenceCommand]sequenceFn{
		schemair.CmdCreateSequence:       compileCreateSequence,
		schemair.CmdAlterSequence:        compileAlterSequence,
		schemair.CmdDropSequence:         compileDropSequence,
		schemair.CmdDropSequenceIfExists: nil,
	}
	if f.ExecuteBlock {
		t[schemair.CmdDropSequenceIfExists] = compileDropSequenceIfExists
	}
	return t
}

// Variant reports the dialect variant g compiles for.
func (g *Grammar) Variant() dialect.Variant {
	return g.variant
}

// TablePrefix reports the configured table prefix.
func (g *Grammar) TablePrefix() string {
	return g.prefix
}

// Supports reports whether the variant compiles the named table command.
func (g *Grammar) Supports(name schemair.CommandName) bool {
	return g.commands[name] != nil
}

// SupportsSequence reports whether the variant compiles the named
// sequence command.
func (g *Grammar) SupportsSequence(name schemair.SequenceCommand) bool {
	return g.sequences[name] != nil
}

// Identity reports whether b gets identity columns on this variant.
func (g *Grammar) Identity(b *schemair.Blueprint) bool {
	return b.UseIdentity && g.features.IdentityColumns
}

// Compile expands b's implied commands and compiles each command in order.
// Commands the variant cannot express are skipped.
func (g *Grammar) Compile(b *schemair.Blueprint) ([]string, error) {
	if b == nil || b.Table == "" {
		return nil, dialect.MissingTable("schema")
	}
	t := table{bp: b, identity: g.Identity(b)}

	var statements []string
	for _, c := range b.Expand(t.identity) {
		sql, ok, err := g.compileCommand(t, c)
		if err != nil {
			return nil, err
		}
		if ok {
			statements = append(statements, sql)
		}
	}
	return statements, nil
}

// CompileCommand compiles a single command of b without expansion. ok is
// false when the variant skips the command.
func (g *Grammar) CompileCommand(b *schemair.Blueprint, c *schemair.Command) (sql string, ok bool, err error) {
	if b == nil || b.Table == "" {
		return "", false, dialect.MissingTable("schema")
	}
	return g.compileCommand(table{bp: b, identity: g.Identity(b)}, c)
}

func (g *Grammar) compileCommand(t table, c *schemair.Command) (string, bool, error) {
	fn := g.commands[c.Name]
	if fn == nil {
		return "", false, nil
	}
	sql, err := fn(g, t, c)
	if err != nil {
		return "", false, fmt.Errorf("schemasql: %s %s: %w", c.Name, t.bp.Table, err)
	}
	return sql, true, nil
}

// CompileSequence expands s and compiles its commands in order.
func (g *Grammar) CompileSequence(s *schemair.SequenceBlueprint) ([]string, error) {
	if s == nil || s.Name == "" {
		return nil, &dialect.ConfigError{
			Code:    dialect.CodeMissingSequence,
			Field:   "sequence",
			Message: "sequence blueprint has no name",
		}
	}
	var statements []string
	for _, name := range s.Expand() {
		fn := g.sequences[name]
		if fn == nil {
			continue
		}
		sqls, err := fn(g, s)
		if err != nil {
			return nil, fmt.Errorf("schemasql: %s %s: %w", name, s.Name, err)
		}
		statements = append(statements, sqls...)
	}
	return statements, nil
}

func (g *Grammar) wrapTable(name string) string {
	return ident.Wrap(g.prefix + name)
}

// sequenceForTable and triggerForTable use the same derivation as the
// query grammar's next-value lookup.
func (g *Grammar) sequenceForTable(tableName string) string {
	return ident.SequenceName(g.prefix + tableName)
}

func (g *Grammar) triggerForTable(tableName string) string {
	return ident.TriggerName(g.prefix + tableName)
}

// indexName returns the explicit name of c, truncated, or the conventional
// name for kind folded by the variant policy.
func (g *Grammar) indexName(t table, c *schemair.Command, kind string) (string, error) {
	if c.Index != "" {
		return ident.Truncate(c.Index), nil
	}
	if len(c.Columns) == 0 {
		return "", &dialect.ConfigError{
			Code:    dialect.CodeBadValues,
			Field:   string(c.Name),
			Message: "a name or at least one column is required",
		}
	}
	return g.policy.IndexName(g.prefix, t.bp.Table, c.Columns, kind), nil
}
