package querysql

import "github.com/roach88/fbsql/internal/ident"

// System catalogue lookups. Each takes the object name as its only binding.

// CompileTableExists returns the relation lookup and its binding.
func (g *Grammar) CompileTableExists(table string) (string, []any) {
	return "SELECT * FROM RDB$RELATIONS WHERE RDB$RELATION_NAME = ?", []any{g.prefix + table}
}

// CompileSequenceExists returns the generator lookup and its binding. The
// name is prefixed and truncated the way CREATE SEQUENCE stores it.
func (g *Grammar) CompileSequenceExists(sequence string) (string, []any) {
	return "SELECT * FROM RDB$GENERATORS WHERE RDB$GENERATOR_NAME = ?", []any{ident.Prefixed(g.prefix, sequence)}
}

// CompileColumnListing lists the columns of table in declaration order.
// RDB$FIELD_NAME is a blank-padded CHAR, so callers trim the values.
func (g *Grammar) CompileColumnListing(table string) (string, []any) {
	return `SELECT RDB$FIELD_NAME AS "column_name" FROM RDB$RELATION_FIELDS ` +
		`WHERE RDB$RELATION_NAME = ? ORDER BY RDB$FIELD_POSITION`, []any{g.prefix + table}
}

// CompileEngineVersion returns EngineVersionSQL.
func (g *Grammar) CompileEngineVersion() string {
	return EngineVersionSQL
}
