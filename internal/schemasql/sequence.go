package schemasql

import (
	"fmt"

	"github.com/roach88/fbsql/internal/dialect"
	"github.com/roach88/fbsql/internal/ident"
	"github.com/roach88/fbsql/internal/schemair"
)

// Variants without sequences use the generator statements. A generator
// stores no step, so a non-default increment cannot be expressed there.

func (g *Grammar) sequenceName(s *schemair.SequenceBlueprint) string {
	return ident.Prefixed(g.prefix, s.Name)
}

func compileCreateSequence(g *Grammar, s *schemair.SequenceBlueprint) ([]string, error) {
	name := ident.Quote(g.sequenceName(s))
	if !g.features.Sequences {
		if s.Increment() != 1 {
			return nil, dialect.Unsupported(g.variant, "sequence increment")
		}
		out := []string{"CREATE GENERATOR " + name}
		if s.Start() != 0 {
			out = append(out, fmt.Sprintf("SET GENERATOR %s TO %d", name, s.Start()))
		}
		return out, nil
	}

	sql := "CREATE SEQUENCE " + name
	if s.Start() != 0 {
		sql += fmt.Sprintf(" START WITH %d", s.Start())
	}
	if s.Increment() != 1 {
		sql += fmt.Sprintf(" INCREMENT BY %d", s.Increment())
	}
	return []string{sql}, nil
}

func compileAlterSequence(g *Grammar, s *schemair.SequenceBlueprint) ([]string, error) {
	name := ident.Quote(g.sequenceName(s))
	restart, withValue := s.Restarting()
	if !g.features.Sequences {
		if s.Increment() != 1 {
			return nil, dialect.Unsupported(g.variant, "sequence increment")
		}
		var value int64
		if withValue {
			value = s.Start()
		}
		return []string{fmt.Sprintf("SET GENERATOR %s TO %d", name, value)}, nil
	}

	sql := "ALTER SEQUENCE " + name
	if restart {
		sql += " RESTART"
		if withValue {
			sql += fmt.Sprintf(" WITH %d", s.Start())
		}
	}
	if s.Increment() != 1 {
		sql += fmt.Sprintf(" INCREMENT BY %d", s.Increment())
	}
	return []string{sql}, nil
}

func compileDropSequence(g *Grammar, s *schemair.SequenceBlueprint) ([]string, error) {
	keyword := "GENERATOR"
	if g.features.Sequences {
		keyword = "SEQUENCE"
	}
	return []string{"DROP " + keyword + " " + ident.Quote(g.sequenceName(s))}, nil
}

func compileDropSequenceIfExists(g *Grammar, s *schemair.SequenceBlueprint) ([]string, error) {
	name := g.sequenceName(s)
	return []string{existenceBlock("RDB$GENERATORS", "RDB$GENERATOR_NAME", name, "DROP SEQUENCE "+ident.Quote(name))}, nil
}
