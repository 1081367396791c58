package querysql

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/fbsql/internal/dialect"
)

func TestCatalogQueries(t *testing.T) {
	g := grammarFor(t, dialect.LegacyRows, WithTablePrefix("app_"))

	sql, args := g.CompileTableExists("users")
	assert.Equal(t, "SELECT * FROM RDB$RELATIONS WHERE RDB$RELATION_NAME = ?", sql)
	assert.Equal(t, []any{"app_users"}, args)

	sql, args = g.CompileSequenceExists("invoice_no")
	assert.Equal(t, "SELECT * FROM RDB$GENERATORS WHERE RDB$GENERATOR_NAME = ?", sql)
	assert.Equal(t, []any{"app_invoice_no"}, args)

	_, args = g.CompileSequenceExists("invoice_numbers_for_accounting_dept")
	assert.Equal(t, []any{"app_invoice_numbers_for_account"}, args)

	sql, args = g.CompileColumnListing("users")
	assert.Equal(t, `SELECT RDB$FIELD_NAME AS "column_name" FROM RDB$RELATION_FIELDS WHERE RDB$RELATION_NAME = ? ORDER BY RDB$FIELD_POSITION`, sql)
	assert.Equal(t, []any{"app_users"}, args)

	assert.Equal(t, EngineVersionSQL, g.CompileEngineVersion())
}
