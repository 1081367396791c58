package compiler

import (
	"slices"

	"cuelang.org/go/cue"

	"github.com/roach88/fbsql/internal/queryir"
)

// Operation is the statement a query definition compiles to.
type Operation string

const (
	OpSelect      Operation = "select"
	OpInsert      Operation = "insert"
	OpInsertGetID Operation = "insertGetId"
	OpUpdate      Operation = "update"
	OpDelete      Operation = "delete"
	OpTruncate    Operation = "truncate"
	OpProcedure   Operation = "procedure"
	OpFunction    Operation = "function"
	OpContext     Operation = "context"
	OpNextValue   Operation = "nextValue"
)

// Operations lists every operation.
func Operations() []Operation {
	return []Operation{
		OpSelect, OpInsert, OpInsertGetID, OpUpdate, OpDelete, OpTruncate,
		OpProcedure, OpFunction, OpContext, OpNextValue,
	}
}

// QueryDef is one named query definition.
type QueryDef struct {
	Name string
	Op   Operation

	Query *queryir.Query

	// Insert rows and update assignments.
	Values      queryir.Values
	Assignments []queryir.Assignment

	// Insert-get-id.
	Returning     string
	InTransaction bool

	// Procedures and functions.
	Routine string
	Args    []any

	// Context variables.
	Namespace string
	Variable  string

	// Next sequence value. An empty Sequence derives the name from the
	// query table.
	Sequence  string
	Increment int
}

// CompileQuery parses a query definition.
//
//	query: active_users: {
//		from:    "users"
//		columns: ["id", "email"]
//		where: [
//			{column: "status", op: "=", value: "active"},
//			{isNull: "deleted_at"},
//		]
//		orders: [{column: "email"}]
//		limit:  10
//	}
//
// op defaults to select. Inserts take values as a list of objects whose
// field order fixes the column order; updates take set as one object.
func CompileQuery(v cue.Value) (*QueryDef, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	def := &QueryDef{Name: label(v), Op: OpSelect}
	if def.Name == "" {
		return nil, fieldError(v, "query", "query name is required")
	}

	op, err := stringField(v, "op")
	if err != nil {
		return nil, err
	}
	if op != "" {
		def.Op = Operation(op)
	}
	if !validOperation(def.Op) {
		return nil, fieldError(v, "op", "unknown operation %q", op)
	}

	switch def.Op {
	case OpProcedure, OpFunction:
		if def.Routine, err = stringField(v, "name"); err != nil {
			return nil, err
		}
		if def.Routine == "" {
			return nil, fieldError(v, "name", "%s requires a name", def.Op)
		}
		def.Args, err = literalList(v, "args")
		return def, err
	case OpContext:
		if def.Namespace, err = stringField(v, "namespace"); err != nil {
			return nil, err
		}
		if def.Variable, err = stringField(v, "variable"); err != nil {
			return nil, err
		}
		if def.Namespace == "" || def.Variable == "" {
			return nil, fieldError(v, "context", "namespace and variable are required")
		}
		return def, nil
	}

	if def.Query, err = compileQueryBody(v, "query"); err != nil {
		return nil, err
	}

	switch def.Op {
	case OpInsert, OpInsertGetID:
		if def.Values, err = compileValues(v); err != nil {
			return nil, err
		}
		if def.Returning, err = stringField(v, "returning"); err != nil {
			return nil, err
		}
		if def.InTransaction, err = boolField(v, "inTransaction"); err != nil {
			return nil, err
		}
	case OpUpdate:
		if def.Assignments, err = compileAssignments(v); err != nil {
			return nil, err
		}
		if len(def.Assignments) == 0 {
			return nil, fieldError(v, "set", "update requires at least one assignment")
		}
	case OpNextValue:
		if def.Sequence, err = stringField(v, "sequence"); err != nil {
			return nil, err
		}
		n, err := intField(v, "increment")
		if err != nil {
			return nil, err
		}
		def.Increment = int(n)
	}
	return def, nil
}

func validOperation(op Operation) bool {
	for _, o := range Operations() {
		if o == op {
			return true
		}
	}
	return false
}

// compileQueryBody reads the select-shaped part shared by every
// table-based operation and by subqueries.
func compileQueryBody(v cue.Value, field string) (*queryir.Query, error) {
	from, err := stringField(v, "from")
	if err != nil {
		return nil, err
	}
	q := queryir.Table(from)

	if q.Columns, err = stringList(v, "columns"); err != nil {
		return nil, err
	}
	if q.Distinct, err = boolField(v, "distinct"); err != nil {
		return nil, err
	}
	if a, ok := lookup(v, "aggregate"); ok {
		fn, err := stringField(a, "function")
		if err != nil {
			return nil, err
		}
		cols, err := stringList(a, "columns")
		if err != nil {
			return nil, err
		}
		if fn == "" {
			return nil, fieldError(a, field+".aggregate", "function is required")
		}
		if len(cols) == 0 {
			cols = []string{"*"}
		}
		q.Aggregate = &queryir.Aggregate{Function: fn, Columns: cols}
	}

	if err := each(v, "joins", func(_ int, j cue.Value) error {
		join, err := compileJoin(j, field+".joins")
		if err != nil {
			return err
		}
		q.Joins = append(q.Joins, join)
		return nil
	}); err != nil {
		return nil, err
	}

	if q.Wheres, err = compileWheres(v, "where"); err != nil {
		return nil, err
	}
	if q.Groups, err = stringList(v, "groups"); err != nil {
		return nil, err
	}
	if q.Havings, err = compileWheres(v, "having"); err != nil {
		return nil, err
	}

	if err := each(v, "orders", func(_ int, o cue.Value) error {
		order, err := compileOrder(o)
		if err != nil {
			return err
		}
		q.Orders = append(q.Orders, order)
		return nil
	}); err != nil {
		return nil, err
	}

	limit, err := intField(v, "limit")
	if err != nil {
		return nil, err
	}
	offset, err := intField(v, "offset")
	if err != nil {
		return nil, err
	}
	q.Take(int(limit)).Skip(int(offset))

	if l, ok := lookup(v, "lock"); ok {
		switch l.Kind() {
		case cue.BoolKind:
			b, _ := l.Bool()
			q.Lock = queryir.ForUpdate(b)
		case cue.StringKind:
			s, _ := l.String()
			q.Lock = queryir.LockClause(s)
		default:
			return nil, fieldError(l, field+".lock", "must be a boolean or a string")
		}
	}

	if err := each(v, "unions", func(_ int, u cue.Value) error {
		sub, ok := lookup(u, "query")
		if !ok {
			return fieldError(u, field+".unions", "query is required")
		}
		uq, err := compileQueryBody(sub, field+".unions.query")
		if err != nil {
			return err
		}
		all, err := boolField(u, "all")
		if err != nil {
			return err
		}
		q.Unions = append(q.Unions, queryir.Union{Query: uq, All: all})
		return nil
	}); err != nil {
		return nil, err
	}

	if errs := queryir.Validate(q); len(errs) > 0 {
		return nil, fieldError(v, errs[0].Field, "%s", errs[0].Error())
	}
	return q, nil
}

func compileJoin(v cue.Value, field string) (queryir.Join, error) {
	typ, err := stringField(v, "type")
	if err != nil {
		return queryir.Join{}, err
	}
	if typ == "" {
		typ = string(queryir.InnerJoin)
	}
	table, err := stringField(v, "table")
	if err != nil {
		return queryir.Join{}, err
	}
	join := queryir.Join{Type: queryir.JoinType(typ), Table: table}

	if _, ok := lookup(v, "first"); ok {
		first, err := stringField(v, "first")
		if err != nil {
			return join, err
		}
		second, err := stringField(v, "second")
		if err != nil {
			return join, err
		}
		op, err := stringField(v, "operator")
		if err != nil {
			return join, err
		}
		if op == "" {
			op = "="
		}
		join.On = append(join.On, queryir.Where{
			Boolean:   queryir.And,
			Predicate: queryir.ColumnCompare{First: first, Operator: op, Second: second},
		})
	}
	on, err := compileWheres(v, "on")
	if err != nil {
		return join, err
	}
	join.On = append(join.On, on...)
	return join, nil
}

func compileOrder(v cue.Value) (queryir.Order, error) {
	raw, err := stringField(v, "raw")
	if err != nil {
		return queryir.Order{}, err
	}
	if raw != "" {
		return queryir.Order{Raw: queryir.Expr(raw)}, nil
	}
	col, err := stringField(v, "column")
	if err != nil {
		return queryir.Order{}, err
	}
	dir, err := stringField(v, "direction")
	if err != nil {
		return queryir.Order{}, err
	}
	if dir == "" {
		dir = string(queryir.Asc)
	}
	return queryir.Order{Column: col, Direction: queryir.Direction(dir)}, nil
}

// compileValues reads insert rows. Every row must name the same columns
// as the first.
func compileValues(v cue.Value) (queryir.Values, error) {
	var values queryir.Values
	err := each(v, "values", func(i int, row cue.Value) error {
		cols, vals, err := fieldsOf(row, "values")
		if err != nil {
			return err
		}
		if i == 0 {
			values.Columns = cols
		} else if !slices.Equal(values.Columns, cols) {
			return fieldError(row, "values", "row %d does not match the columns of the first row", i)
		}
		values.Rows = append(values.Rows, vals)
		return nil
	})
	return values, err
}

func compileAssignments(v cue.Value) ([]queryir.Assignment, error) {
	set, ok := lookup(v, "set")
	if !ok {
		return nil, nil
	}
	cols, vals, err := fieldsOf(set, "set")
	if err != nil {
		return nil, err
	}
	out := make([]queryir.Assignment, len(cols))
	for i := range cols {
		out[i] = queryir.Assignment{Column: cols[i], Value: vals[i]}
	}
	return out, nil
}

// fieldsOf returns the labels and literal values of a struct in
// declaration order.
func fieldsOf(v cue.Value, field string) ([]string, []any, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, nil, fieldError(v, field, "must be an object")
	}
	var (
		cols []string
		vals []any
	)
	for iter.Next() {
		val, err := literal(iter.Value(), field+"."+iter.Selector().String())
		if err != nil {
			return nil, nil, err
		}
		cols = append(cols, iter.Selector().Unquoted())
		vals = append(vals, val)
	}
	return cols, vals, nil
}
