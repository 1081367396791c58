// Package schemair is the abstract form of table and sequence DDL.
//
// A Blueprint collects columns and commands for one table; a
// SequenceBlueprint does the same for a standalone sequence. Both are
// plain values: the schema grammar reads them, expands the implied
// commands into a fresh slice and never mutates them.
package schemair

import "fmt"

// Type is a logical column type from the fixed catalogue.
type Type string

const (
	TypeChar          Type = "char"
	TypeString        Type = "string"
	TypeText          Type = "text"
	TypeMediumText    Type = "mediumText"
	TypeLongText      Type = "longText"
	TypeInteger       Type = "integer"
	TypeBigInteger    Type = "bigInteger"
	TypeMediumInteger Type = "mediumInteger"
	TypeSmallInteger  Type = "smallInteger"
	TypeTinyInteger   Type = "tinyInteger"
	TypeFloat         Type = "float"
	TypeDouble        Type = "double"
	TypeDecimal       Type = "decimal"
	TypeBoolean       Type = "boolean"
	TypeEnum          Type = "enum"
	TypeJSON          Type = "json"
	TypeJSONB         Type = "jsonb"
	TypeDate          Type = "date"
	TypeDateTime      Type = "dateTime"
	TypeDateTimeTz    Type = "dateTimeTz"
	TypeTime          Type = "time"
	TypeTimeTz        Type = "timeTz"
	TypeTimestamp     Type = "timestamp"
	TypeTimestampTz   Type = "timestampTz"
	TypeBinary        Type = "binary"
	TypeUUID          Type = "uuid"
	TypeIPAddress     Type = "ipAddress"
	TypeMACAddress    Type = "macAddress"
)

// Types lists the whole catalogue in declaration order.
func Types() []Type {
	return []Type{
		TypeChar, TypeString, TypeText, TypeMediumText, TypeLongText,
		TypeInteger, TypeBigInteger, TypeMediumInteger, TypeSmallInteger, TypeTinyInteger,
		TypeFloat, TypeDouble, TypeDecimal, TypeBoolean, TypeEnum,
		TypeJSON, TypeJSONB,
		TypeDate, TypeDateTime, TypeDateTimeTz, TypeTime, TypeTimeTz, TypeTimestamp, TypeTimestampTz,
		TypeBinary, TypeUUID, TypeIPAddress, TypeMACAddress,
	}
}

// ParseType resolves a catalogue name.
func ParseType(name string) (Type, error) {
	for _, t := range Types() {
		if string(t) == name {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown column type %q", name)
}

// Serial reports whether t can carry an auto-increment column.
func (t Type) Serial() bool {
	switch t {
	case TypeInteger, TypeBigInteger, TypeMediumInteger, TypeSmallInteger, TypeTinyInteger:
		return true
	}
	return false
}

// DefaultStringLength applies to String columns declared without a length.
const DefaultStringLength = 255

// Column is one column definition.
//
// Default holds a literal (string, bool, integer or float) or a
// queryir.Expr that is emitted verbatim; nil means no default.
type Column struct {
	Name          string
	Type          Type
	Length        int
	Total         int
	Places        int
	Allowed       []string
	AllowNull     bool
	Default       any
	AutoIncrement bool
	CharacterSet  string
	Collation     string
	CurrentTime   bool

	PrimaryKey bool
	UniqueKey  bool
	Indexed    bool
}

// Nullable allows NULL values.
func (c *Column) Nullable() *Column {
	c.AllowNull = true
	return c
}

// DefaultTo sets the column default.
func (c *Column) DefaultTo(value any) *Column {
	c.Default = value
	return c
}

// Charset sets the column character set.
func (c *Column) Charset(charset string) *Column {
	c.CharacterSet = charset
	return c
}

// Collate sets the column collation.
func (c *Column) Collate(collation string) *Column {
	c.Collation = collation
	return c
}

// UseCurrent defaults a timestamp column to CURRENT_TIMESTAMP.
func (c *Column) UseCurrent() *Column {
	c.CurrentTime = true
	return c
}

// Primary adds a single-column primary key command for c.
func (c *Column) Primary() *Column {
	c.PrimaryKey = true
	return c
}

// Unique adds a single-column unique constraint command for c.
func (c *Column) Unique() *Column {
	c.UniqueKey = true
	return c
}

// Index adds a single-column index command for c.
func (c *Column) Index() *Column {
	c.Indexed = true
	return c
}
