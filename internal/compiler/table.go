package compiler

import (
	"cuelang.org/go/cue"

	"github.com/roach88/fbsql/internal/schemair"
)

// Table actions.
const (
	ActionCreate       = "create"
	ActionAlter        = "alter"
	ActionDrop         = "drop"
	ActionDropIfExists = "dropIfExists"
	ActionRename       = "rename"
)

// CompileTable parses a table definition into a Blueprint.
//
//	table: users: {
//		columns: [
//			{name: "id", type: "increments"},
//			{name: "email", type: "string", length: 120, unique: true},
//		]
//		index: [{columns: ["email", "created_at"]}]
//	}
//
// The action defaults to create. Commands are queued drops first, then
// primary, unique, index and foreign, so an alter that replaces a
// constraint drops the old one before adding the new.
func CompileTable(v cue.Value) (*schemair.Blueprint, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	b := schemair.New(label(v), nil)
	if b.Table == "" {
		return nil, fieldError(v, "table", "table name is required")
	}

	var err error
	if b.Temporary, err = boolField(v, "temporary"); err != nil {
		return nil, err
	}
	if b.PreserveRows, err = boolField(v, "preserveRows"); err != nil {
		return nil, err
	}
	if b.UseIdentity, err = boolField(v, "identity"); err != nil {
		return nil, err
	}

	action, err := stringField(v, "action")
	if err != nil {
		return nil, err
	}
	switch action {
	case "", ActionCreate:
		b.Create()
	case ActionAlter:
	case ActionDrop:
		b.Drop()
	case ActionDropIfExists:
		b.DropIfExists()
	case ActionRename:
		to, err := stringField(v, "to")
		if err != nil {
			return nil, err
		}
		if to == "" {
			return nil, fieldError(v, "to", "rename requires a target name")
		}
		b.Rename(to)
	default:
		return nil, fieldError(v, "action", "unknown table action %q", action)
	}

	if err := each(v, "columns", func(i int, c cue.Value) error {
		return compileColumn(b, c)
	}); err != nil {
		return nil, err
	}

	if err := compileDrops(b, v); err != nil {
		return nil, err
	}
	if err := compileKeys(b, v); err != nil {
		return nil, err
	}
	return b, nil
}

func compileColumn(b *schemair.Blueprint, v cue.Value) error {
	name, err := stringField(v, "name")
	if err != nil {
		return err
	}
	if name == "" {
		return fieldError(v, "columns.name", "column name is required")
	}
	typeName, err := stringField(v, "type")
	if err != nil {
		return err
	}

	var col *schemair.Column
	switch typeName {
	case "increments":
		col = b.Increments(name)
	case "bigIncrements":
		col = b.BigIncrements(name)
	default:
		t, err := schemair.ParseType(typeName)
		if err != nil {
			return fieldError(v, "columns.type", "%v", err)
		}
		col = b.AddColumn(t, name)
	}

	if n, err := intField(v, "length"); err != nil {
		return err
	} else if n > 0 {
		col.Length = int(n)
	}
	if n, err := intField(v, "total"); err != nil {
		return err
	} else if n > 0 {
		col.Total = int(n)
	}
	if n, err := intField(v, "places"); err != nil {
		return err
	} else if n > 0 {
		col.Places = int(n)
	}
	if col.Allowed, err = stringList(v, "allowed"); err != nil {
		return err
	}

	flags := []struct {
		field string
		dst   *bool
	}{
		{"nullable", &col.AllowNull},
		{"autoIncrement", &col.AutoIncrement},
		{"useCurrent", &col.CurrentTime},
		{"primary", &col.PrimaryKey},
		{"unique", &col.UniqueKey},
		{"index", &col.Indexed},
	}
	for _, f := range flags {
		set, err := boolField(v, f.field)
		if err != nil {
			return err
		}
		if set {
			*f.dst = true
		}
	}

	if col.CharacterSet, err = stringField(v, "charset"); err != nil {
		return err
	}
	if col.Collation, err = stringField(v, "collation"); err != nil {
		return err
	}
	if d, ok := lookup(v, "default"); ok {
		if col.Default, err = literal(d, "columns.default"); err != nil {
			return err
		}
	}
	return nil
}

func compileDrops(b *schemair.Blueprint, v cue.Value) error {
	drops := []struct {
		field string
		add   func(name string)
	}{
		{"dropForeign", func(n string) { b.DropForeign(n) }},
		{"dropIndex", func(n string) { b.DropIndex(n) }},
		{"dropUnique", func(n string) { b.DropUnique(n) }},
		{"dropPrimary", func(n string) { b.DropPrimary(n) }},
	}
	for _, d := range drops {
		names, err := stringList(v, d.field)
		if err != nil {
			return err
		}
		for _, n := range names {
			d.add(n)
		}
	}

	cols, err := stringList(v, "dropColumns")
	if err != nil {
		return err
	}
	if len(cols) > 0 {
		b.DropColumn(cols...)
	}
	return nil
}

// compileKeys reads primary, unique, index and foreign. Each entry is a
// column list or {columns, name}; foreign entries add on, references,
// onDelete and onUpdate.
func compileKeys(b *schemair.Blueprint, v cue.Value) error {
	if p, ok := lookup(v, "primary"); ok {
		if _, err := keyCommand(p, "primary", b.Primary); err != nil {
			return err
		}
	}

	keys := []struct {
		field string
		add   func(...string) *schemair.Command
	}{
		{"unique", b.Unique},
		{"index", b.Index},
	}
	for _, k := range keys {
		if err := each(v, k.field, func(_ int, e cue.Value) error {
			_, err := keyCommand(e, k.field, k.add)
			return err
		}); err != nil {
			return err
		}
	}

	return each(v, "foreign", func(_ int, e cue.Value) error {
		c, err := keyCommand(e, "foreign", b.Foreign)
		if err != nil {
			return err
		}
		on, err := stringField(e, "on")
		if err != nil {
			return err
		}
		refs, err := stringList(e, "references")
		if err != nil {
			return err
		}
		onDelete, err := stringField(e, "onDelete")
		if err != nil {
			return err
		}
		onUpdate, err := stringField(e, "onUpdate")
		if err != nil {
			return err
		}
		c.ReferencesOn(on, refs...).Actions(onDelete, onUpdate)
		return nil
	})
}

func keyCommand(v cue.Value, field string, add func(...string) *schemair.Command) (*schemair.Command, error) {
	var (
		cols []string
		name string
		err  error
	)
	if k := v.Kind(); k == cue.ListKind || k == cue.StringKind {
		cols, err = stringsOf(v, field)
	} else {
		cols, err = stringList(v, "columns")
		if err == nil {
			name, err = stringField(v, "name")
		}
	}
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fieldError(v, field, "at least one column is required")
	}
	return add(cols...).Named(name), nil
}
