package schemasql

import (
	"fmt"
	"strings"

	"github.com/roach88/fbsql/internal/dialect"
	"github.com/roach88/fbsql/internal/ident"
	"github.com/roach88/fbsql/internal/schemair"
)

func compileCreate(g *Grammar, t table, _ *schemair.Command) (string, error) {
	columns, err := g.columnDefinitions(t)
	if err != nil {
		return "", err
	}
	if len(columns) == 0 {
		return "", &dialect.ConfigError{
			Code:    dialect.CodeBadValues,
			Field:   "columns",
			Message: "create requires at least one column",
		}
	}

	sql := "CREATE TABLE "
	if t.bp.Temporary {
		sql = "CREATE GLOBAL TEMPORARY TABLE "
	}
	sql += g.wrapTable(t.bp.Table) + " (" + strings.Join(columns, ", ") + ")"

	if t.bp.Temporary {
		if t.bp.PreserveRows {
			sql += " ON COMMIT PRESERVE ROWS"
		} else {
			sql += " ON COMMIT DELETE ROWS"
		}
	}
	return sql, nil
}

func compileDrop(g *Grammar, t table, _ *schemair.Command) (string, error) {
	return "DROP TABLE " + g.wrapTable(t.bp.Table), nil
}

func compileDropIfExists(g *Grammar, t table, _ *schemair.Command) (string, error) {
	name := g.prefix + t.bp.Table
	return existenceBlock("RDB$RELATIONS", "RDB$RELATION_NAME", name, "DROP TABLE "+ident.Quote(name)), nil
}

func compileAdd(g *Grammar, t table, _ *schemair.Command) (string, error) {
	columns, err := g.columnDefinitions(t)
	if err != nil {
		return "", err
	}
	for i, col := range columns {
		columns[i] = "ADD " + col
	}
	return "ALTER TABLE " + g.wrapTable(t.bp.Table) + " " + strings.Join(columns, ", "), nil
}

func compilePrimary(g *Grammar, t table, c *schemair.Command) (string, error) {
	columns := ident.WrapAll(c.Columns)
	if c.Index != "" {
		return fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s PRIMARY KEY (%s)",
			g.wrapTable(t.bp.Table), ident.Quote(ident.Truncate(c.Index)), columns), nil
	}
	return fmt.Sprintf("ALTER TABLE %s ADD PRIMARY KEY (%s)", g.wrapTable(t.bp.Table), columns), nil
}

func compileUnique(g *Grammar, t table, c *schemair.Command) (string, error) {
	name, err := g.indexName(t, c, "unique")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s UNIQUE (%s)",
		g.wrapTable(t.bp.Table), ident.Quote(name), ident.WrapAll(c.Columns)), nil
}

func compileIndex(g *Grammar, t table, c *schemair.Command) (string, error) {
	name, err := g.indexName(t, c, "index")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CREATE INDEX %s ON %s (%s)",
		ident.Quote(name), g.wrapTable(t.bp.Table), ident.WrapAll(c.Columns)), nil
}

func compileForeign(g *Grammar, t table, c *schemair.Command) (string, error) {
	if c.On == "" {
		return "", &dialect.ConfigError{
			Code:    dialect.CodeMissingTable,
			Field:   "foreign.on",
			Message: "foreign key has no referenced table",
		}
	}
	name, err := g.indexName(t, c, "foreign")
	if err != nil {
		return "", err
	}
	references := c.References
	if len(references) == 0 {
		references = []string{"id"}
	}

	sql := fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
		g.wrapTable(t.bp.Table), ident.Quote(name), ident.WrapAll(c.Columns),
		g.wrapTable(c.On), ident.WrapAll(references))
	if c.OnDelete != "" {
		sql += " ON DELETE " + strings.ToUpper(c.OnDelete)
	}
	if c.OnUpdate != "" {
		sql += " ON UPDATE " + strings.ToUpper(c.OnUpdate)
	}
	return sql, nil
}

func compileDropForeign(g *Grammar, t table, c *schemair.Command) (string, error) {
	return g.dropConstraint(t, c, "foreign")
}

func compileDropUnique(g *Grammar, t table, c *schemair.Command) (string, error) {
	return g.dropConstraint(t, c, "unique")
}

func compileDropPrimary(g *Grammar, t table, c *schemair.Command) (string, error) {
	// The engine names unnamed primary keys itself (INTEG_n), so there is
	// no conventional name to fall back to.
	if c.Index == "" {
		return "", &dialect.ConfigError{
			Code:    dialect.CodeBadValues,
			Field:   string(c.Name),
			Message: "dropping a primary key requires its constraint name",
		}
	}
	return g.dropConstraint(t, c, "primary")
}

func (g *Grammar) dropConstraint(t table, c *schemair.Command, kind string) (string, error) {
	name, err := g.indexName(t, c, kind)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s", g.wrapTable(t.bp.Table), ident.Quote(name)), nil
}

func compileDropIndex(g *Grammar, t table, c *schemair.Command) (string, error) {
	name, err := g.indexName(t, c, "index")
	if err != nil {
		return "", err
	}
	return "DROP INDEX " + ident.Quote(name), nil
}

func compileDropColumn(g *Grammar, t table, c *schemair.Command) (string, error) {
	if len(c.Columns) == 0 {
		return "", &dialect.ConfigError{
			Code:    dialect.CodeBadValues,
			Field:   string(c.Name),
			Message: "no columns to drop",
		}
	}
	drops := make([]string, len(c.Columns))
	for i, col := range c.Columns {
		drops[i] = "DROP " + ident.Wrap(col)
	}
	return "ALTER TABLE " + g.wrapTable(t.bp.Table) + " " + strings.Join(drops, ", "), nil
}

func compileSequenceForTable(g *Grammar, t table, _ *schemair.Command) (string, error) {
	keyword := "GENERATOR"
	if g.features.Sequences {
		keyword = "SEQUENCE"
	}
	return "CREATE " + keyword + " " + ident.Quote(g.sequenceForTable(t.bp.Table)), nil
}

func compileTriggerForAutoincrement(g *Grammar, t table, c *schemair.Command) (string, error) {
	if len(c.Columns) == 0 {
		return "", &dialect.ConfigError{
			Code:    dialect.CodeBadValues,
			Field:   string(c.Name),
			Message: "no auto-increment column",
		}
	}
	column := ident.Quote(c.Columns[0])
	sequence := ident.Quote(g.sequenceForTable(t.bp.Table))

	next := "NEXT VALUE FOR " + sequence
	if !g.features.Sequences {
		next = "GEN_ID(" + sequence + ", 1)"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE OR ALTER TRIGGER %s FOR %s\n", ident.Quote(g.triggerForTable(t.bp.Table)), g.wrapTable(t.bp.Table))
	b.WriteString("ACTIVE BEFORE INSERT\n")
	b.WriteString("AS\n")
	b.WriteString("BEGIN\n")
	fmt.Fprintf(&b, "  IF (NEW.%s IS NULL) THEN \n", column)
	fmt.Fprintf(&b, "    NEW.%s = %s;\n", column, next)
	b.WriteString("END")
	return b.String(), nil
}

func compileDropSequenceForTable(g *Grammar, t table, _ *schemair.Command) (string, error) {
	name := g.sequenceForTable(t.bp.Table)
	return existenceBlock("RDB$GENERATORS", "RDB$GENERATOR_NAME", name, "DROP SEQUENCE "+ident.Quote(name)), nil
}

// existenceBlock runs statement only when name exists in the system
// relation. Both the name and the statement are embedded as string
// literals.
func existenceBlock(relation, column, name, statement string) string {
	var b strings.Builder
	b.WriteString("EXECUTE BLOCK\n")
	b.WriteString("AS\n")
	b.WriteString("BEGIN\n")
	fmt.Fprintf(&b, "  IF (EXISTS(SELECT * FROM %s WHERE %s = %s)) THEN\n", relation, column, quoteString(name))
	fmt.Fprintf(&b, "    EXECUTE STATEMENT %s;\n", quoteString(statement))
	b.WriteString("END")
	return b.String()
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
