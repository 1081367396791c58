package compiler

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue/token"

	"github.com/roach88/fbsql/internal/dialect"
	"github.com/roach88/fbsql/internal/grammar"
	"github.com/roach88/fbsql/internal/ir"
)

// EmitOptions controls Emit.
type EmitOptions struct {
	// SkipUnsupported records definitions the variant cannot express as
	// skipped instead of failing.
	SkipUnsupported bool
}

// Emitted is the output of Emit for one variant.
type Emitted struct {
	Variant    dialect.Variant
	Statements []ir.Statement
	// Skipped lists the sources left out because of SkipUnsupported.
	Skipped []string
}

// Emit compiles defs with the grammars in set: tables, then sequences,
// then queries, each in declaration order. Statements are numbered from 1.
func Emit(set *grammar.Set, defs *Definitions, opts EmitOptions) (*Emitted, error) {
	out := &Emitted{Variant: set.Variant}
	add := func(kind ir.Kind, source, sql string, args []any) {
		out.Statements = append(out.Statements, ir.Statement{
			Seq:      len(out.Statements) + 1,
			Kind:     kind,
			Source:   source,
			SQL:      sql,
			Bindings: args,
		})
	}
	// fail reports whether err stops the run.
	fail := func(source string, pos token.Pos, err error) error {
		if opts.SkipUnsupported && errors.Is(err, dialect.ErrUnsupported) {
			out.Skipped = append(out.Skipped, source)
			return nil
		}
		if pos.IsValid() {
			return fmt.Errorf("%s:%d:%d: %s: %w", pos.Filename(), pos.Line(), pos.Column(), source, err)
		}
		return fmt.Errorf("%s: %w", source, err)
	}

	for _, t := range defs.Tables {
		source := SectionTable + ":" + t.Blueprint.Table
		stmts, err := set.Schema.Compile(t.Blueprint)
		if err != nil {
			if err := fail(source, t.Pos, err); err != nil {
				return nil, err
			}
			continue
		}
		for _, sql := range stmts {
			add(ir.KindSchema, source, sql, nil)
		}
	}

	for _, s := range defs.Sequences {
		source := SectionSequence + ":" + s.Blueprint.Name
		stmts, err := set.Schema.CompileSequence(s.Blueprint)
		if err != nil {
			if err := fail(source, s.Pos, err); err != nil {
				return nil, err
			}
			continue
		}
		for _, sql := range stmts {
			add(ir.KindSequence, source, sql, nil)
		}
	}

	for _, q := range defs.Queries {
		source := SectionQuery + ":" + q.Def.Name
		sql, args, err := CompileQueryDef(set, q.Def)
		if err != nil {
			if err := fail(source, q.Pos, err); err != nil {
				return nil, err
			}
			continue
		}
		add(ir.KindQuery, source, sql, args)
	}
	return out, nil
}

// CompileQueryDef compiles one query definition with set.Query.
func CompileQueryDef(set *grammar.Set, def *QueryDef) (string, []any, error) {
	g := set.Query
	switch def.Op {
	case OpSelect:
		return g.CompileSelect(def.Query)
	case OpInsert:
		return g.CompileInsert(def.Query, def.Values)
	case OpInsertGetID:
		return g.CompileInsertGetID(def.Query, def.Values, def.Returning, def.InTransaction)
	case OpUpdate:
		return g.CompileUpdate(def.Query, def.Assignments)
	case OpDelete:
		return g.CompileDelete(def.Query)
	case OpTruncate:
		sql, err := g.CompileTruncate(def.Query)
		return sql, nil, err
	case OpProcedure:
		return g.CompileExecProcedure(def.Routine, def.Args)
	case OpFunction:
		return g.CompileExecFunction(def.Routine, def.Args)
	case OpContext:
		return g.CompileGetContext(def.Namespace, def.Variable)
	case OpNextValue:
		sql, err := g.CompileNextSequenceValue(def.Query, def.Sequence, def.Increment)
		return sql, nil, err
	default:
		return "", nil, fmt.Errorf("unknown operation %q", def.Op)
	}
}
