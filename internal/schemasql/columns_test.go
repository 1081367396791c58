package schemasql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fbsql/internal/dialect"
	"github.com/roach88/fbsql/internal/schemair"
)

func TestColumnType_CoversCatalogue(t *testing.T) {
	for _, v := range dialect.Variants() {
		g := grammarFor(t, v)
		for _, typ := range schemair.Types() {
			sql, err := g.ColumnType(&schemair.Column{Name: "c", Type: typ})
			require.NoError(t, err, "%s on %s", typ, v)
			assert.NotEmpty(t, sql)
		}
	}
}

func TestColumnType(t *testing.T) {
	g := grammarFor(t, dialect.ModernFetch)

	tests := []struct {
		column schemair.Column
		want   string
	}{
		{schemair.Column{Type: schemair.TypeChar, Length: 2}, "CHAR(2)"},
		{schemair.Column{Type: schemair.TypeString, Length: 80}, "VARCHAR(80)"},
		{schemair.Column{Type: schemair.TypeText}, "BLOB SUB_TYPE TEXT"},
		{schemair.Column{Type: schemair.TypeLongText}, "BLOB SUB_TYPE TEXT"},
		{schemair.Column{Type: schemair.TypeBigInteger}, "BIGINT"},
		{schemair.Column{Type: schemair.TypeTinyInteger}, "SMALLINT"},
		{schemair.Column{Type: schemair.TypeDouble}, "DOUBLE PRECISION"},
		{schemair.Column{Type: schemair.TypeDecimal, Total: 12, Places: 4}, "DECIMAL(12, 4)"},
		{schemair.Column{Type: schemair.TypeDecimal}, "DECIMAL(8, 2)"},
		{schemair.Column{Type: schemair.TypeBoolean}, "CHAR(1)"},
		{schemair.Column{Name: "state", Type: schemair.TypeEnum, Allowed: []string{"a", "b"}}, `VARCHAR(255) CHECK ("state" IN ('a', 'b'))`},
		{schemair.Column{Type: schemair.TypeJSON}, "VARCHAR(8191)"},
		{schemair.Column{Type: schemair.TypeJSONB}, "VARCHAR(8191) CHARACTER SET OCTETS"},
		{schemair.Column{Type: schemair.TypeDateTimeTz}, "TIMESTAMP"},
		{schemair.Column{Type: schemair.TypeTimeTz}, "TIME"},
		{schemair.Column{Type: schemair.TypeTimestampTz, CurrentTime: true}, "TIMESTAMP DEFAULT CURRENT_TIMESTAMP"},
		{schemair.Column{Type: schemair.TypeBinary}, "BLOB SUB_TYPE BINARY"},
		{schemair.Column{Type: schemair.TypeUUID}, "CHAR(36)"},
		{schemair.Column{Type: schemair.TypeIPAddress}, "VARCHAR(45)"},
		{schemair.Column{Type: schemair.TypeMACAddress}, "VARCHAR(17)"},
	}
	for _, tt := range tests {
		t.Run(string(tt.column.Type), func(t *testing.T) {
			got, err := g.ColumnType(&tt.column)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
