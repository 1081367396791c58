package queryir

// Query is the abstract statement shared by select, update and delete
// compilation.
//
// Semantics:
//
//	SELECT <aggregate | columns> FROM <from> <joins>
//	WHERE <wheres> GROUP BY <groups> HAVING <havings>
//	ORDER BY <orders> <limit/offset> <unions> <lock>
//
// When Aggregate is set it alone determines the select list; Columns and
// Distinct then only influence the aggregate's argument. Limit and Offset
// are ignored when zero or negative.
type Query struct {
	From      string
	Columns   []string
	Distinct  bool
	Aggregate *Aggregate
	Joins     []Join
	Wheres    []Where
	Groups    []string
	Havings   []Where
	Orders    []Order
	Limit     int
	Offset    int
	Lock      Lock
	Unions    []Union
}

// Table starts a query against table.
func Table(table string) *Query {
	return &Query{From: table}
}

// Select sets the column list.
func (q *Query) Select(columns ...string) *Query {
	q.Columns = columns
	return q
}

// Where appends an AND-connected predicate.
func (q *Query) Where(p Predicate) *Query {
	q.Wheres = append(q.Wheres, Where{Boolean: And, Predicate: p})
	return q
}

// OrWhere appends an OR-connected predicate.
func (q *Query) OrWhere(p Predicate) *Query {
	q.Wheres = append(q.Wheres, Where{Boolean: Or, Predicate: p})
	return q
}

// Having appends an AND-connected having predicate.
func (q *Query) Having(p Predicate) *Query {
	q.Havings = append(q.Havings, Where{Boolean: And, Predicate: p})
	return q
}

// OrderBy appends an ordering.
func (q *Query) OrderBy(column string, dir Direction) *Query {
	q.Orders = append(q.Orders, Order{Column: column, Direction: dir})
	return q
}

// Join appends a join whose ON clause compares two columns.
func (q *Query) Join(typ JoinType, table, first, operator, second string) *Query {
	q.Joins = append(q.Joins, Join{
		Type:  typ,
		Table: table,
		On:    []Where{{Boolean: And, Predicate: ColumnCompare{First: first, Operator: operator, Second: second}}},
	})
	return q
}

// Take sets the limit.
func (q *Query) Take(n int) *Query {
	q.Limit = n
	return q
}

// Skip sets the offset.
func (q *Query) Skip(n int) *Query {
	q.Offset = n
	return q
}

// Boolean connects a predicate to the one before it.
type Boolean string

const (
	And Boolean = "and"
	Or  Boolean = "or"
)

// Where is one connected predicate. The connector of the first entry in a
// list is dropped on compilation. An empty Boolean means And.
type Where struct {
	Boolean   Boolean
	Predicate Predicate
}

// Expr is raw SQL that is inlined instead of bound.
type Expr string

// Predicate is a where/having/join condition.
//
// This is a sealed interface - only types in this package implement it.
type Predicate interface {
	predicateNode()
}

// Basic compares a column with a value: col op ?
//
// A value of type Expr is inlined. The "between" operator takes a
// two-element []any.
type Basic struct {
	Column   string
	Operator string
	Value    any
}

// ColumnCompare compares two columns: first op second.
type ColumnCompare struct {
	First    string
	Operator string
	Second   string
}

// Nested groups predicates in parentheses.
type Nested struct {
	Wheres []Where
}

// Null tests for NULL, or NOT NULL when Not is set.
type Null struct {
	Column string
	Not    bool
}

// In tests membership in a value list.
type In struct {
	Column string
	Values []any
	Not    bool
}

// InQuery tests membership in a subquery.
type InQuery struct {
	Column string
	Query  *Query
	Not    bool
}

// Between tests an inclusive range.
type Between struct {
	Column string
	Low    any
	High   any
	Not    bool
}

// Exists tests whether a subquery returns rows.
type Exists struct {
	Query *Query
	Not   bool
}

// DatePart compares one extracted component of a date or time column:
// EXTRACT(part FROM col) op ?
type DatePart struct {
	Part     string
	Column   string
	Operator string
	Value    any
}

// Date compares the date portion of a timestamp column.
type Date struct {
	Column   string
	Operator string
	Value    any
}

// Raw is literal SQL with its own bindings.
type Raw struct {
	SQL      string
	Bindings []any
}

func (Basic) predicateNode()         {}
func (ColumnCompare) predicateNode() {}
func (Nested) predicateNode()        {}
func (Null) predicateNode()          {}
func (In) predicateNode()            {}
func (InQuery) predicateNode()       {}
func (Between) predicateNode()       {}
func (Exists) predicateNode()        {}
func (DatePart) predicateNode()      {}
func (Date) predicateNode()          {}
func (Raw) predicateNode()           {}

// Aggregate replaces the select list with fn(columns) AS "aggregate".
type Aggregate struct {
	Function string
	Columns  []string
}

// JoinType is the join keyword.
type JoinType string

const (
	InnerJoin JoinType = "inner"
	LeftJoin  JoinType = "left"
	RightJoin JoinType = "right"
	FullJoin  JoinType = "full"
	CrossJoin JoinType = "cross"
)

// Join adds a table with its ON conditions. Cross joins have none.
type Join struct {
	Type  JoinType
	Table string
	On    []Where
}

// Direction is the sort order of an Order.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Order sorts by Column, or by Raw when set.
type Order struct {
	Column    string
	Direction Direction
	Raw       Expr
}

// Union appends another select.
type Union struct {
	Query *Query
	All   bool
}

// Lock is the row-locking clause.
//
// This is a sealed interface - only types in this package implement it.
type Lock interface {
	lockNode()
}

// ForUpdate emits FOR UPDATE when true and nothing when false.
type ForUpdate bool

// LockClause is emitted verbatim.
type LockClause string

func (ForUpdate) lockNode()  {}
func (LockClause) lockNode() {}

// Values is the row set of an INSERT. Every row has one value per column,
// in column order.
type Values struct {
	Columns []string
	Rows    [][]any
}

// Row builds a single-row Values; values follow the order of columns.
func Row(columns []string, values ...any) Values {
	return Values{Columns: columns, Rows: [][]any{values}}
}

// Assignment is one SET entry of an UPDATE.
type Assignment struct {
	Column string
	Value  any
}
