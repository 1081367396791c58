package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/fbsql/internal/dialect"
	"github.com/roach88/fbsql/internal/ident"
	"github.com/roach88/fbsql/internal/queryir"
)

// DefaultReturning is the key column insert-get-id returns when the caller
// does not name one.
const DefaultReturning = "id"

// CompileInsert compiles an INSERT of values into q.From.
//
// A single row uses VALUES. The engine has no multi-row VALUES, so several
// rows become INSERT ... SELECT ... FROM RDB$DATABASE UNION ALL ..., each
// placeholder cast to TYPE OF COLUMN so the server can type it. No columns
// at all gives DEFAULT VALUES.
func (g *Grammar) CompileInsert(q *queryir.Query, values queryir.Values) (string, []any, error) {
	if q == nil || q.From == "" {
		return "", nil, dialect.MissingTable("insert")
	}
	if len(values.Columns) == 0 {
		return "INSERT INTO " + g.wrapTable(q.From) + " DEFAULT VALUES", nil, nil
	}
	if err := checkRows(values); err != nil {
		return "", nil, err
	}

	var args []any
	head := fmt.Sprintf("INSERT INTO %s (%s)", g.wrapTable(q.From), ident.WrapAll(values.Columns))
	if len(values.Rows) == 1 {
		return head + " VALUES (" + parameterize(values.Rows[0], &args) + ")", args, nil
	}
	if !g.features.TypedCasts {
		return "", nil, dialect.Unsupported(g.variant, "multi-row insert")
	}

	selects := make([]string, len(values.Rows))
	for i, row := range values.Rows {
		cells := make([]string, len(row))
		for j, value := range row {
			placeholder := parameter(value, &args)
			if placeholder == "?" {
				placeholder = fmt.Sprintf("CAST(? AS TYPE OF COLUMN %s.%s)", g.wrapTable(q.From), ident.Quote(values.Columns[j]))
			}
			cells[j] = placeholder
		}
		selects[i] = "SELECT " + strings.Join(cells, ", ") + " FROM " + DualTable
	}
	return head + " " + strings.Join(selects, " UNION ALL "), args, nil
}

// CompileInsertGetID compiles a single-row INSERT ... RETURNING column.
//
// On variants that carry the client driver defect the statement is then
// rewritten into an EXECUTE BLOCK that runs the base INSERT dynamically.
// The inner execution uses an autonomous transaction unless inTransaction
// reports that the caller already has one open.
func (g *Grammar) CompileInsertGetID(q *queryir.Query, values queryir.Values, column string, inTransaction bool) (string, []any, error) {
	if !g.features.Returning {
		return "", nil, dialect.Unsupported(g.variant, "insert-get-id")
	}
	if q == nil || q.From == "" {
		return "", nil, dialect.MissingTable("insert-get-id")
	}
	if len(values.Columns) > 0 && len(values.Rows) != 1 {
		return "", nil, &dialect.ConfigError{
			Code:    dialect.CodeBadValues,
			Field:   "values",
			Message: fmt.Sprintf("insert-get-id takes exactly one row, got %d", len(values.Rows)),
		}
	}
	if column == "" {
		column = DefaultReturning
	}

	base, args, err := g.CompileInsert(q, values)
	if err != nil {
		return "", nil, err
	}
	base += " RETURNING " + ident.Wrap(column)

	if !g.features.WrapInsertReturning {
		return base, args, nil
	}
	return g.wrapInsertReturning(q.From, values, column, base, inTransaction), args, nil
}

// wrapInsertReturning is the second stage of insert-get-id: it embeds the
// compiled base statement into an anonymous block with one typed input
// parameter per bound column and a typed output for the returned column.
func (g *Grammar) wrapInsertReturning(table string, values queryir.Values, column, base string, inTransaction bool) string {
	wrappedTable := g.wrapTable(table)

	var declared, passed []string
	if len(values.Rows) == 1 {
		for i, name := range values.Columns {
			if _, raw := values.Rows[0][i].(queryir.Expr); raw {
				continue
			}
			declared = append(declared, fmt.Sprintf("  %s TYPE OF COLUMN %s.%s = ?", ident.Quote(name), wrappedTable, ident.Quote(name)))
			passed = append(passed, ident.Quote(name))
		}
	}

	var b strings.Builder
	b.WriteString("EXECUTE BLOCK")
	if len(declared) > 0 {
		b.WriteString(" (\n")
		b.WriteString(strings.Join(declared, ",\n"))
		b.WriteString("\n)")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "RETURNS (%s TYPE OF COLUMN %s.%s)\n", ident.Quote(column), wrappedTable, ident.Quote(column))
	b.WriteString("AS\n")
	b.WriteString("  DECLARE STMT VARCHAR(8191);\n")
	b.WriteString("BEGIN\n")
	fmt.Fprintf(&b, "  STMT = %s;\n", quoteString(base))
	b.WriteString("  EXECUTE STATEMENT (STMT)")
	if len(passed) > 0 {
		b.WriteString(" (" + strings.Join(passed, ", ") + ")")
	}
	b.WriteString("\n")
	if !inTransaction {
		b.WriteString("  WITH AUTONOMOUS TRANSACTION\n")
	}
	fmt.Fprintf(&b, "  INTO %s;\n", ident.Quote(column))
	b.WriteString("  SUSPEND;\n")
	b.WriteString("END")
	return b.String()
}

// CompileUpdate compiles UPDATE q.From SET ... WHERE .... The SET values
// are bound before the where values.
func (g *Grammar) CompileUpdate(q *queryir.Query, assignments []queryir.Assignment) (string, []any, error) {
	if q == nil || q.From == "" {
		return "", nil, dialect.MissingTable("update")
	}
	if len(assignments) == 0 {
		return "", nil, &dialect.ConfigError{
			Code:    dialect.CodeBadValues,
			Field:   "values",
			Message: "update requires at least one assignment",
		}
	}

	var args []any
	sets := make([]string, len(assignments))
	for i, a := range assignments {
		sets[i] = ident.Wrap(a.Column) + " = " + parameter(a.Value, &args)
	}
	wheres, err := g.compileWheres(q, &args)
	if err != nil {
		return "", nil, err
	}
	sql := joinFragments([]string{"UPDATE " + g.wrapTable(q.From), "SET " + strings.Join(sets, ", "), wheres})
	return sql, args, nil
}

// CompileDelete compiles DELETE FROM q.From WHERE ....
func (g *Grammar) CompileDelete(q *queryir.Query) (string, []any, error) {
	if q == nil || q.From == "" {
		return "", nil, dialect.MissingTable("delete")
	}
	var args []any
	wheres, err := g.compileWheres(q, &args)
	if err != nil {
		return "", nil, err
	}
	return joinFragments([]string{"DELETE FROM " + g.wrapTable(q.From), wheres}), args, nil
}

// CompileTruncate empties q.From. The engine has no TRUNCATE statement.
func (g *Grammar) CompileTruncate(q *queryir.Query) (string, error) {
	if q == nil || q.From == "" {
		return "", dialect.MissingTable("truncate")
	}
	return "DELETE FROM " + g.wrapTable(q.From), nil
}

func checkRows(values queryir.Values) error {
	if len(values.Rows) == 0 {
		return &dialect.ConfigError{
			Code:    dialect.CodeBadValues,
			Field:   "values",
			Message: "insert requires at least one row",
		}
	}
	for i, row := range values.Rows {
		if len(row) != len(values.Columns) {
			return &dialect.ConfigError{
				Code:    dialect.CodeBadValues,
				Field:   fmt.Sprintf("values.rows[%d]", i),
				Message: fmt.Sprintf("row has %d values for %d columns", len(row), len(values.Columns)),
			}
		}
	}
	return nil
}

// quoteString renders s as a string literal.
func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
