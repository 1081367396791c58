package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/fbsql/internal/dialect"
	"github.com/roach88/fbsql/internal/ident"
	"github.com/roach88/fbsql/internal/queryir"
)

// maxRowsBound closes an open-ended ROWS range.
const maxRowsBound = 2147483647

// selectComponent compiles one clause of a select. An empty result omits
// the clause from the output.
type selectComponent func(g *Grammar, q *queryir.Query, args *[]any) (string, error)

// selectPipeline returns the clause order of v. FIRST/SKIP sit between
// SELECT and the select list; ROWS and OFFSET/FETCH trail ORDER BY.
func selectPipeline(v dialect.Variant) []selectComponent {
	selectList := []selectComponent{
		(*Grammar).compileAggregateList,
		(*Grammar).compileColumns,
	}
	body := []selectComponent{
		(*Grammar).compileFrom,
		(*Grammar).compileJoins,
		(*Grammar).compileWheres,
		(*Grammar).compileGroups,
		(*Grammar).compileHavings,
		(*Grammar).compileOrders,
	}
	tail := []selectComponent{
		(*Grammar).compileUnions,
		(*Grammar).compileLockComponent,
	}

	pipeline := []selectComponent{(*Grammar).compileSelectKeyword}
	switch v {
	case dialect.LegacyFirstSkip:
		pipeline = append(pipeline, (*Grammar).compileLimitComponent, (*Grammar).compileOffsetComponent)
		pipeline = append(pipeline, selectList...)
		pipeline = append(pipeline, body...)
	case dialect.LegacyRows:
		pipeline = append(pipeline, selectList...)
		pipeline = append(pipeline, body...)
		pipeline = append(pipeline, (*Grammar).compileLimitComponent, (*Grammar).compileOffsetComponent)
	default:
		pipeline = append(pipeline, selectList...)
		pipeline = append(pipeline, body...)
		pipeline = append(pipeline, (*Grammar).compileOffsetComponent, (*Grammar).compileLimitComponent)
	}
	return append(pipeline, tail...)
}

// CompileSelect compiles q into a SELECT statement and its bindings. The
// bindings follow clause order: joins, wheres, havings, unions.
func (g *Grammar) CompileSelect(q *queryir.Query) (string, []any, error) {
	if q == nil {
		return "", nil, fmt.Errorf("cannot compile nil query")
	}
	var args []any
	sql, err := g.compileSelect(q, &args)
	if err != nil {
		return "", nil, err
	}
	return sql, args, nil
}

func (g *Grammar) compileSelect(q *queryir.Query, args *[]any) (string, error) {
	if q.From == "" {
		return "", dialect.MissingTable("select")
	}
	fragments := make([]string, 0, len(g.pipeline))
	for _, component := range g.pipeline {
		fragment, err := component(g, q, args)
		if err != nil {
			return "", err
		}
		fragments = append(fragments, fragment)
	}
	return joinFragments(fragments), nil
}

// CompileAggregate emits SELECT fn([DISTINCT] cols) AS "aggregate", or ""
// when q has no aggregate. DISTINCT is never applied to the wildcard.
func (g *Grammar) CompileAggregate(q *queryir.Query) string {
	list := g.aggregateList(q)
	if list == "" {
		return ""
	}
	return "SELECT " + list
}

// CompileLimit emits the limit keyword of the variant, or "" when no
// limit is set.
func (g *Grammar) CompileLimit(q *queryir.Query) string {
	if q.Limit <= 0 {
		return ""
	}
	switch g.variant {
	case dialect.LegacyFirstSkip:
		return fmt.Sprintf("FIRST %d", q.Limit)
	case dialect.LegacyRows:
		if q.Offset > 0 {
			return fmt.Sprintf("ROWS %d", q.Offset+1)
		}
		return fmt.Sprintf("ROWS %d", q.Limit)
	default:
		return fmt.Sprintf("FETCH FIRST %d ROWS ONLY", q.Limit)
	}
}

// CompileOffset emits the offset keyword of the variant, or "" when no
// offset is set. On LegacyRows it completes the range CompileLimit opened.
func (g *Grammar) CompileOffset(q *queryir.Query) string {
	if q.Offset <= 0 {
		return ""
	}
	switch g.variant {
	case dialect.LegacyFirstSkip:
		return fmt.Sprintf("SKIP %d", q.Offset)
	case dialect.LegacyRows:
		if q.Limit > 0 {
			return fmt.Sprintf("TO %d", q.Offset+q.Limit)
		}
		return fmt.Sprintf("ROWS %d TO %d", q.Offset+1, maxRowsBound)
	default:
		return fmt.Sprintf("OFFSET %d ROWS", q.Offset)
	}
}

// CompileLock emits a LockClause verbatim, FOR UPDATE for ForUpdate(true)
// and nothing otherwise.
func (g *Grammar) CompileLock(q *queryir.Query) string {
	switch lock := q.Lock.(type) {
	case queryir.LockClause:
		return string(lock)
	case queryir.ForUpdate:
		if lock {
			return "FOR UPDATE"
		}
	}
	return ""
}

func (g *Grammar) compileSelectKeyword(*queryir.Query, *[]any) (string, error) {
	return "SELECT", nil
}

func (g *Grammar) compileLimitComponent(q *queryir.Query, _ *[]any) (string, error) {
	return g.CompileLimit(q), nil
}

func (g *Grammar) compileOffsetComponent(q *queryir.Query, _ *[]any) (string, error) {
	return g.CompileOffset(q), nil
}

func (g *Grammar) compileLockComponent(q *queryir.Query, _ *[]any) (string, error) {
	return g.CompileLock(q), nil
}

func (g *Grammar) compileAggregateList(q *queryir.Query, _ *[]any) (string, error) {
	return g.aggregateList(q), nil
}

func (g *Grammar) aggregateList(q *queryir.Query) string {
	if q.Aggregate == nil {
		return ""
	}
	column := ident.Wildcard
	if len(q.Aggregate.Columns) > 0 {
		column = ident.WrapAll(q.Aggregate.Columns)
	}
	if q.Distinct && column != ident.Wildcard {
		column = "DISTINCT " + column
	}
	return fmt.Sprintf("%s(%s) AS %s", strings.ToUpper(q.Aggregate.Function), column, ident.Quote(AggregateAlias))
}

// compileColumns is suppressed entirely when an aggregate owns the select
// list.
func (g *Grammar) compileColumns(q *queryir.Query, _ *[]any) (string, error) {
	if q.Aggregate != nil {
		return "", nil
	}
	columns := ident.Wildcard
	if len(q.Columns) > 0 {
		columns = ident.WrapAll(q.Columns)
	}
	if q.Distinct {
		return "DISTINCT " + columns, nil
	}
	return columns, nil
}

func (g *Grammar) compileFrom(q *queryir.Query, _ *[]any) (string, error) {
	return "FROM " + g.wrapTable(q.From), nil
}

var joinKeywords = map[queryir.JoinType]string{
	"":                "INNER JOIN",
	queryir.InnerJoin: "INNER JOIN",
	queryir.LeftJoin:  "LEFT JOIN",
	queryir.RightJoin: "RIGHT JOIN",
	queryir.FullJoin:  "FULL JOIN",
	queryir.CrossJoin: "CROSS JOIN",
}

func (g *Grammar) compileJoins(q *queryir.Query, args *[]any) (string, error) {
	parts := make([]string, 0, len(q.Joins))
	for _, join := range q.Joins {
		keyword, ok := joinKeywords[join.Type]
		if !ok {
			return "", fmt.Errorf("unsupported join type: %q", join.Type)
		}
		clause := keyword + " " + g.wrapTable(join.Table)
		if join.Type != queryir.CrossJoin && len(join.On) > 0 {
			on, err := g.compileConditions(join.On, args)
			if err != nil {
				return "", fmt.Errorf("compile join %s: %w", join.Table, err)
			}
			clause += " ON " + on
		}
		parts = append(parts, clause)
	}
	return strings.Join(parts, " "), nil
}

func (g *Grammar) compileWheres(q *queryir.Query, args *[]any) (string, error) {
	conditions, err := g.compileConditions(q.Wheres, args)
	if err != nil || conditions == "" {
		return "", err
	}
	return "WHERE " + conditions, nil
}

func (g *Grammar) compileGroups(q *queryir.Query, _ *[]any) (string, error) {
	if len(q.Groups) == 0 {
		return "", nil
	}
	return "GROUP BY " + ident.WrapAll(q.Groups), nil
}

func (g *Grammar) compileHavings(q *queryir.Query, args *[]any) (string, error) {
	conditions, err := g.compileConditions(q.Havings, args)
	if err != nil || conditions == "" {
		return "", err
	}
	return "HAVING " + conditions, nil
}

func (g *Grammar) compileOrders(q *queryir.Query, _ *[]any) (string, error) {
	if len(q.Orders) == 0 {
		return "", nil
	}
	parts := make([]string, len(q.Orders))
	for i, order := range q.Orders {
		if order.Raw != "" {
			parts[i] = string(order.Raw)
			continue
		}
		dir := order.Direction
		if dir == "" {
			dir = queryir.Asc
		}
		parts[i] = ident.Wrap(order.Column) + " " + strings.ToUpper(string(dir))
	}
	return "ORDER BY " + strings.Join(parts, ", "), nil
}

func (g *Grammar) compileUnions(q *queryir.Query, args *[]any) (string, error) {
	parts := make([]string, 0, len(q.Unions))
	for i, union := range q.Unions {
		if union.Query == nil {
			return "", fmt.Errorf("union %d: cannot compile nil query", i)
		}
		sql, err := g.compileSelect(union.Query, args)
		if err != nil {
			return "", fmt.Errorf("compile union %d: %w", i, err)
		}
		keyword := "UNION"
		if union.All {
			keyword = "UNION ALL"
		}
		parts = append(parts, keyword+" "+sql)
	}
	return strings.Join(parts, " "), nil
}
