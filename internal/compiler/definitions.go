package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/token"

	"github.com/roach88/fbsql/internal/schemair"
)

// Top-level sections of a definitions value.
const (
	SectionTable    = "table"
	SectionSequence = "sequence"
	SectionQuery    = "query"
)

// Table is a compiled table definition with its source position.
type Table struct {
	Blueprint *schemair.Blueprint
	Pos       token.Pos
}

// Sequence is a compiled sequence definition with its source position.
type Sequence struct {
	Blueprint *schemair.SequenceBlueprint
	Pos       token.Pos
}

// Query is a compiled query definition with its source position.
type Query struct {
	Def *QueryDef
	Pos token.Pos
}

// DefinitionError ties a compile failure to the definition it came from.
type DefinitionError struct {
	Section string
	Name    string
	Err     error
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("%s.%s: %v", e.Section, e.Name, e.Err)
}

func (e *DefinitionError) Unwrap() error { return e.Err }

// Definitions holds every definition of one CUE value in declaration
// order. Tables come first when compiled to statements, so a table
// declared before another may be referenced by its foreign keys.
type Definitions struct {
	Tables    []Table
	Sequences []Sequence
	Queries   []Query
}

// Len returns the number of definitions.
func (d *Definitions) Len() int {
	return len(d.Tables) + len(d.Sequences) + len(d.Queries)
}

// CompileDefinitions compiles the table, sequence and query sections of v.
// With failFast it stops at the first error; otherwise every definition
// is attempted and all errors are returned.
func CompileDefinitions(v cue.Value, failFast bool) (*Definitions, []error) {
	if err := v.Err(); err != nil {
		return nil, []error{formatCUEError(err)}
	}

	defs := &Definitions{}
	var errs []error

	sections := []struct {
		name    string
		compile func(cue.Value) error
	}{
		{SectionTable, func(d cue.Value) error {
			b, err := CompileTable(d)
			if err == nil {
				defs.Tables = append(defs.Tables, Table{Blueprint: b, Pos: d.Pos()})
			}
			return err
		}},
		{SectionSequence, func(d cue.Value) error {
			s, err := CompileSequence(d)
			if err == nil {
				defs.Sequences = append(defs.Sequences, Sequence{Blueprint: s, Pos: d.Pos()})
			}
			return err
		}},
		{SectionQuery, func(d cue.Value) error {
			q, err := CompileQuery(d)
			if err == nil {
				defs.Queries = append(defs.Queries, Query{Def: q, Pos: d.Pos()})
			}
			return err
		}},
	}

	for _, sec := range sections {
		sv, ok := lookup(v, sec.name)
		if !ok {
			continue
		}
		iter, err := sv.Fields()
		if err != nil {
			errs = append(errs, fieldError(sv, sec.name, "must be a struct of named definitions"))
			if failFast {
				return defs, errs
			}
			continue
		}
		for iter.Next() {
			if err := sec.compile(iter.Value()); err != nil {
				errs = append(errs, &DefinitionError{Section: sec.name, Name: iter.Selector().Unquoted(), Err: err})
				if failFast {
					return defs, errs
				}
			}
		}
	}
	return defs, errs
}
