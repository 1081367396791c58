package schemair

// CommandName identifies a schema command. The schema grammar maps each
// name to a compile function or to nothing.
type CommandName string

const (
	CmdCreate       CommandName = "create"
	CmdDrop         CommandName = "drop"
	CmdDropIfExists CommandName = "dropIfExists"
	CmdAdd          CommandName = "add"
	CmdPrimary      CommandName = "primary"
	CmdUnique       CommandName = "unique"
	CmdIndex        CommandName = "index"
	CmdForeign      CommandName = "foreign"
	CmdDropForeign  CommandName = "dropForeign"
	CmdDropColumn   CommandName = "dropColumn"
	CmdDropPrimary  CommandName = "dropPrimary"
	CmdDropUnique   CommandName = "dropUnique"
	CmdDropIndex    CommandName = "dropIndex"
	CmdRename       CommandName = "rename"

	// Implied commands, appended by Expand.
	CmdSequenceForTable        CommandName = "sequenceForTable"
	CmdTriggerForAutoincrement CommandName = "triggerForAutoincrement"
	CmdDropSequenceForTable    CommandName = "dropSequenceForTable"
)

// CommandNames lists every table command, implied ones last.
func CommandNames() []CommandName {
	return []CommandName{
		CmdCreate, CmdDrop, CmdDropIfExists, CmdAdd,
		CmdPrimary, CmdUnique, CmdIndex, CmdForeign,
		CmdDropForeign, CmdDropColumn, CmdDropPrimary, CmdDropUnique, CmdDropIndex,
		CmdRename,
		CmdSequenceForTable, CmdTriggerForAutoincrement, CmdDropSequenceForTable,
	}
}

// Command is one queued schema operation.
type Command struct {
	Name CommandName
	// Index names the constraint or index. Empty means the grammar
	// derives the conventional name from the table and columns.
	Index   string
	Columns []string

	// Foreign keys.
	On         string
	References []string
	OnDelete   string
	OnUpdate   string

	// To is the new name of a rename.
	To string
}

// Named sets the constraint or index name.
func (c *Command) Named(name string) *Command {
	c.Index = name
	return c
}

// ReferencesOn sets the referenced table and columns of a foreign key.
func (c *Command) ReferencesOn(table string, columns ...string) *Command {
	c.On = table
	c.References = columns
	return c
}

// Actions sets the ON DELETE and ON UPDATE actions of a foreign key.
// Empty strings leave the clause out.
func (c *Command) Actions(onDelete, onUpdate string) *Command {
	c.OnDelete = onDelete
	c.OnUpdate = onUpdate
	return c
}

// Blueprint describes the desired schema change for one table.
type Blueprint struct {
	Table string

	// Temporary creates a global temporary table; PreserveRows keeps its
	// rows across commits.
	Temporary    bool
	PreserveRows bool
	// UseIdentity asks for identity columns. Variants without them fall
	// back to the sequence and trigger emulation.
	UseIdentity bool

	columns  []*Column
	commands []*Command
}

// New returns a blueprint for table after running fn on it.
func New(table string, fn func(*Blueprint)) *Blueprint {
	b := &Blueprint{Table: table}
	if fn != nil {
		fn(b)
	}
	return b
}

// Columns returns the declared columns in order.
func (b *Blueprint) Columns() []*Column {
	return b.columns
}

// Commands returns the explicitly queued commands in order.
func (b *Blueprint) Commands() []*Command {
	return b.commands
}

// AutoIncrementColumn returns the first auto-increment column.
func (b *Blueprint) AutoIncrementColumn() (*Column, bool) {
	for _, c := range b.columns {
		if c.AutoIncrement {
			return c, true
		}
	}
	return nil, false
}

// Creating reports whether a create command is queued.
func (b *Blueprint) Creating() bool {
	return b.has(CmdCreate)
}

// Dropping reports whether a drop or dropIfExists command is queued.
func (b *Blueprint) Dropping() bool {
	return b.has(CmdDrop) || b.has(CmdDropIfExists)
}

func (b *Blueprint) has(name CommandName) bool {
	for _, c := range b.commands {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Expand returns the command list with the implied commands added:
//
//   - add, in front, when columns are declared outside a create;
//   - primary, unique and index for columns flagged fluently;
//   - sequenceForTable and triggerForAutoincrement when an auto-increment
//     column exists and identity is false;
//   - dropSequenceForTable when dropping and identity is false.
//
// identity is whether identity columns are in effect: requested by the
// blueprint and available on the variant. The blueprint is not modified,
// so each compile expands exactly once.
func (b *Blueprint) Expand(identity bool) []*Command {
	var out []*Command
	if len(b.columns) > 0 && !b.Creating() {
		out = append(out, &Command{Name: CmdAdd})
	}
	out = append(out, b.commands...)

	for _, c := range b.columns {
		if c.PrimaryKey {
			out = append(out, &Command{Name: CmdPrimary, Columns: []string{c.Name}})
		}
		if c.UniqueKey {
			out = append(out, &Command{Name: CmdUnique, Columns: []string{c.Name}})
		}
		if c.Indexed {
			out = append(out, &Command{Name: CmdIndex, Columns: []string{c.Name}})
		}
	}

	if !identity {
		if c, ok := b.AutoIncrementColumn(); ok {
			out = append(out,
				&Command{Name: CmdSequenceForTable},
				&Command{Name: CmdTriggerForAutoincrement, Columns: []string{c.Name}},
			)
		}
		if b.Dropping() {
			out = append(out, &Command{Name: CmdDropSequenceForTable})
		}
	}
	return out
}

func (b *Blueprint) addCommand(name CommandName, columns ...string) *Command {
	c := &Command{Name: name, Columns: columns}
	b.commands = append(b.commands, c)
	return c
}

// Create queues CREATE TABLE.
func (b *Blueprint) Create() *Command { return b.addCommand(CmdCreate) }

// Drop queues DROP TABLE.
func (b *Blueprint) Drop() *Command { return b.addCommand(CmdDrop) }

// DropIfExists queues an existence-checked DROP TABLE.
func (b *Blueprint) DropIfExists() *Command { return b.addCommand(CmdDropIfExists) }

// Rename queues a table rename.
func (b *Blueprint) Rename(to string) *Command {
	c := b.addCommand(CmdRename)
	c.To = to
	return c
}

// Primary queues a primary key over columns.
func (b *Blueprint) Primary(columns ...string) *Command { return b.addCommand(CmdPrimary, columns...) }

// Unique queues a unique constraint over columns.
func (b *Blueprint) Unique(columns ...string) *Command { return b.addCommand(CmdUnique, columns...) }

// Index queues a plain index over columns.
func (b *Blueprint) Index(columns ...string) *Command { return b.addCommand(CmdIndex, columns...) }

// Foreign queues a foreign key over columns.
func (b *Blueprint) Foreign(columns ...string) *Command { return b.addCommand(CmdForeign, columns...) }

// DropForeign queues dropping the named foreign key.
func (b *Blueprint) DropForeign(name string) *Command {
	return b.addCommand(CmdDropForeign).Named(name)
}

// DropColumn queues dropping columns.
func (b *Blueprint) DropColumn(columns ...string) *Command {
	return b.addCommand(CmdDropColumn, columns...)
}

// DropPrimary queues dropping the named primary key constraint.
func (b *Blueprint) DropPrimary(name string) *Command {
	return b.addCommand(CmdDropPrimary).Named(name)
}

// DropUnique queues dropping a unique constraint.
func (b *Blueprint) DropUnique(name string) *Command {
	return b.addCommand(CmdDropUnique).Named(name)
}

// DropIndex queues dropping an index.
func (b *Blueprint) DropIndex(name string) *Command {
	return b.addCommand(CmdDropIndex).Named(name)
}

// AddColumn declares a column of type t.
func (b *Blueprint) AddColumn(t Type, name string) *Column {
	c := &Column{Name: name, Type: t}
	b.columns = append(b.columns, c)
	return c
}

// Increments declares an auto-increment INTEGER key.
func (b *Blueprint) Increments(name string) *Column {
	c := b.AddColumn(TypeInteger, name)
	c.AutoIncrement = true
	return c
}

// BigIncrements declares an auto-increment BIGINT key.
func (b *Blueprint) BigIncrements(name string) *Column {
	c := b.AddColumn(TypeBigInteger, name)
	c.AutoIncrement = true
	return c
}

func (b *Blueprint) Char(name string, length int) *Column {
	c := b.AddColumn(TypeChar, name)
	c.Length = length
	return c
}

// Varchar declares a string column; a zero length means
// DefaultStringLength.
func (b *Blueprint) Varchar(name string, length int) *Column {
	if length <= 0 {
		length = DefaultStringLength
	}
	c := b.AddColumn(TypeString, name)
	c.Length = length
	return c
}

func (b *Blueprint) Text(name string) *Column          { return b.AddColumn(TypeText, name) }
func (b *Blueprint) MediumText(name string) *Column    { return b.AddColumn(TypeMediumText, name) }
func (b *Blueprint) LongText(name string) *Column      { return b.AddColumn(TypeLongText, name) }
func (b *Blueprint) Integer(name string) *Column       { return b.AddColumn(TypeInteger, name) }
func (b *Blueprint) BigInteger(name string) *Column    { return b.AddColumn(TypeBigInteger, name) }
func (b *Blueprint) MediumInteger(name string) *Column { return b.AddColumn(TypeMediumInteger, name) }
func (b *Blueprint) SmallInteger(name string) *Column  { return b.AddColumn(TypeSmallInteger, name) }
func (b *Blueprint) TinyInteger(name string) *Column   { return b.AddColumn(TypeTinyInteger, name) }
func (b *Blueprint) Float(name string) *Column         { return b.AddColumn(TypeFloat, name) }
func (b *Blueprint) Double(name string) *Column        { return b.AddColumn(TypeDouble, name) }
func (b *Blueprint) Boolean(name string) *Column       { return b.AddColumn(TypeBoolean, name) }
func (b *Blueprint) JSON(name string) *Column          { return b.AddColumn(TypeJSON, name) }
func (b *Blueprint) JSONB(name string) *Column         { return b.AddColumn(TypeJSONB, name) }
func (b *Blueprint) Date(name string) *Column          { return b.AddColumn(TypeDate, name) }
func (b *Blueprint) DateTime(name string) *Column      { return b.AddColumn(TypeDateTime, name) }
func (b *Blueprint) DateTimeTz(name string) *Column    { return b.AddColumn(TypeDateTimeTz, name) }
func (b *Blueprint) Time(name string) *Column          { return b.AddColumn(TypeTime, name) }
func (b *Blueprint) TimeTz(name string) *Column        { return b.AddColumn(TypeTimeTz, name) }
func (b *Blueprint) Timestamp(name string) *Column     { return b.AddColumn(TypeTimestamp, name) }
func (b *Blueprint) TimestampTz(name string) *Column   { return b.AddColumn(TypeTimestampTz, name) }
func (b *Blueprint) Binary(name string) *Column        { return b.AddColumn(TypeBinary, name) }
func (b *Blueprint) UUID(name string) *Column          { return b.AddColumn(TypeUUID, name) }
func (b *Blueprint) IPAddress(name string) *Column     { return b.AddColumn(TypeIPAddress, name) }
func (b *Blueprint) MACAddress(name string) *Column    { return b.AddColumn(TypeMACAddress, name) }

func (b *Blueprint) Decimal(name string, total, places int) *Column {
	c := b.AddColumn(TypeDecimal, name)
	c.Total = total
	c.Places = places
	return c
}

// Enum declares a VARCHAR column restricted to allowed.
func (b *Blueprint) Enum(name string, allowed ...string) *Column {
	c := b.AddColumn(TypeEnum, name)
	c.Allowed = allowed
	return c
}

// Timestamps declares nullable created_at and updated_at columns.
func (b *Blueprint) Timestamps() {
	b.Timestamp("created_at").Nullable()
	b.Timestamp("updated_at").Nullable()
}
