package schemasql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/fbsql/internal/dialect"
	"github.com/roach88/fbsql/internal/ident"
	"github.com/roach88/fbsql/internal/queryir"
	"github.com/roach88/fbsql/internal/schemair"
)

type typeFn func(c *schemair.Column) string

func fixed(sql string) typeFn {
	return func(*schemair.Column) string { return sql }
}

// types maps every logical type to its native text. Booleans stay
// CHAR(1) on every engine generation: the client driver has no native
// boolean binding.
var types = map[schemair.Type]typeFn{
	schemair.TypeChar:          func(c *schemair.Column) string { return fmt.Sprintf("CHAR(%d)", length(c)) },
	schemair.TypeString:        func(c *schemair.Column) string { return fmt.Sprintf("VARCHAR(%d)", length(c)) },
	schemair.TypeText:          fixed("BLOB SUB_TYPE TEXT"),
	schemair.TypeMediumText:    fixed("BLOB SUB_TYPE TEXT"),
	schemair.TypeLongText:      fixed("BLOB SUB_TYPE TEXT"),
	schemair.TypeInteger:       fixed("INTEGER"),
	schemair.TypeBigInteger:    fixed("BIGINT"),
	schemair.TypeMediumInteger: fixed("INTEGER"),
	schemair.TypeSmallInteger:  fixed("SMALLINT"),
	schemair.TypeTinyInteger:   fixed("SMALLINT"),
	schemair.TypeFloat:         fixed("FLOAT"),
	schemair.TypeDouble:        fixed("DOUBLE PRECISION"),
	schemair.TypeDecimal:       typeDecimal,
	schemair.TypeBoolean:       fixed("CHAR(1)"),
	schemair.TypeEnum:          typeEnum,
	schemair.TypeJSON:          fixed("VARCHAR(8191)"),
	schemair.TypeJSONB:         fixed("VARCHAR(8191) CHARACTER SET OCTETS"),
	schemair.TypeDate:          fixed("DATE"),
	schemair.TypeDateTime:      fixed("TIMESTAMP"),
	schemair.TypeDateTimeTz:    fixed("TIMESTAMP"),
	schemair.TypeTime:          fixed("TIME"),
	schemair.TypeTimeTz:        fixed("TIME"),
	schemair.TypeTimestamp:     typeTimestamp,
	schemair.TypeTimestampTz:   typeTimestamp,
	schemair.TypeBinary:        fixed("BLOB SUB_TYPE BINARY"),
	schemair.TypeUUID:          fixed("CHAR(36)"),
	schemair.TypeIPAddress:     fixed("VARCHAR(45)"),
	schemair.TypeMACAddress:    fixed("VARCHAR(17)"),
}

func length(c *schemair.Column) int {
	if c.Length <= 0 {
		return schemair.DefaultStringLength
	}
	return c.Length
}

func typeDecimal(c *schemair.Column) string {
	total, places := c.Total, c.Places
	if total <= 0 {
		total, places = 8, 2
	}
	return fmt.Sprintf("DECIMAL(%d, %d)", total, places)
}

func typeEnum(c *schemair.Column) string {
	allowed := make([]string, len(c.Allowed))
	for i, a := range c.Allowed {
		allowed[i] = quoteString(a)
	}
	return fmt.Sprintf("VARCHAR(255) CHECK (%s IN (%s))", ident.Quote(c.Name), strings.Join(allowed, ", "))
}

func typeTimestamp(c *schemair.Column) string {
	if c.CurrentTime {
		return "TIMESTAMP DEFAULT CURRENT_TIMESTAMP"
	}
	return "TIMESTAMP"
}

// ColumnType returns the native type text for c.
func (g *Grammar) ColumnType(c *schemair.Column) (string, error) {
	fn, ok := types[c.Type]
	if !ok {
		return "", &dialect.ConfigError{
			Code:    dialect.CodeUnmappedType,
			Field:   "columns." + c.Name,
			Message: fmt.Sprintf("no native type for %q", c.Type),
		}
	}
	return fn(c), nil
}

type modifierFn func(t table, c *schemair.Column) string

// modifiers run in this order for every column.
var modifiers = []modifierFn{
	modifyCharset,
	modifyCollate,
	modifyIncrement,
	modifyNullable,
	modifyDefault,
}

func modifyCharset(_ table, c *schemair.Column) string {
	if c.CharacterSet == "" {
		return ""
	}
	return " CHARACTER SET " + c.CharacterSet
}

func modifyCollate(_ table, c *schemair.Column) string {
	if c.Collation == "" {
		return ""
	}
	return " COLLATE " + c.Collation
}

func modifyIncrement(t table, c *schemair.Column) string {
	if !c.AutoIncrement || !c.Type.Serial() {
		return ""
	}
	if t.identity {
		return " GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY"
	}
	return " PRIMARY KEY"
}

func modifyNullable(_ table, c *schemair.Column) string {
	if c.AllowNull {
		return ""
	}
	return " NOT NULL"
}

func modifyDefault(_ table, c *schemair.Column) string {
	if c.Default == nil {
		return ""
	}
	return " DEFAULT " + defaultValue(c.Default)
}

// defaultValue renders a column default. Expressions pass through,
// booleans follow the CHAR(1) mapping and strings are quoted.
func defaultValue(v any) string {
	switch v := v.(type) {
	case queryir.Expr:
		return string(v)
	case bool:
		if v {
			return "'1'"
		}
		return "'0'"
	case string:
		return quoteString(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return quoteString(fmt.Sprint(v))
	}
}

// ColumnDefinition compiles one column of b.
func (g *Grammar) ColumnDefinition(b *schemair.Blueprint, c *schemair.Column) (string, error) {
	return g.columnDefinition(table{bp: b, identity: g.Identity(b)}, c)
}

func (g *Grammar) columnDefinition(t table, c *schemair.Column) (string, error) {
	typ, err := g.ColumnType(c)
	if err != nil {
		return "", err
	}
	sql := ident.Quote(c.Name) + " " + typ
	for _, m := range modifiers {
		sql += m(t, c)
	}
	return sql, nil
}

func (g *Grammar) columnDefinitions(t table) ([]string, error) {
	cols := t.bp.Columns()
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		def, err := g.columnDefinition(t, c)
		if err != nil {
			return nil, err
		}
		out = append(out, def)
	}
	return out, nil
}
