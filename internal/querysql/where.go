package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/fbsql/internal/dialect"
	"github.com/roach88/fbsql/internal/ident"
	"github.com/roach88/fbsql/internal/queryir"
)

// compileConditions joins the compiled predicates with their connectors,
// dropping the connector of the first one. Predicates that compile to
// nothing (an empty Nested) are skipped.
func (g *Grammar) compileConditions(wheres []queryir.Where, args *[]any) (string, error) {
	var b strings.Builder
	for i, where := range wheres {
		sql, err := g.compilePredicate(where.Predicate, args)
		if err != nil {
			return "", fmt.Errorf("compile predicate %d: %w", i, err)
		}
		if sql == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(" ")
			b.WriteString(connector(where.Boolean))
			b.WriteString(" ")
		}
		b.WriteString(sql)
	}
	return b.String(), nil
}

func connector(b queryir.Boolean) string {
	if b == queryir.Or {
		return "OR"
	}
	return "AND"
}

func operator(op string) string {
	return strings.ToUpper(strings.TrimSpace(op))
}

// compilePredicate compiles one predicate. Values are appended to args in
// the order their placeholders appear.
func (g *Grammar) compilePredicate(p queryir.Predicate, args *[]any) (string, error) {
	switch pred := p.(type) {
	case queryir.Basic:
		return g.compileBasic(pred, args)
	case queryir.ColumnCompare:
		return fmt.Sprintf("%s %s %s", ident.Wrap(pred.First), operator(pred.Operator), ident.Wrap(pred.Second)), nil
	case queryir.Nested:
		inner, err := g.compileConditions(pred.Wheres, args)
		if err != nil || inner == "" {
			return "", err
		}
		return "(" + inner + ")", nil
	case queryir.Null:
		if pred.Not {
			return ident.Wrap(pred.Column) + " IS NOT NULL", nil
		}
		return ident.Wrap(pred.Column) + " IS NULL", nil
	case queryir.In:
		return g.compileIn(pred, args), nil
	case queryir.InQuery:
		if pred.Query == nil {
			return "", fmt.Errorf("in: cannot compile nil query")
		}
		sub, err := g.compileSelect(pred.Query, args)
		if err != nil {
			return "", err
		}
		keyword := "IN"
		if pred.Not {
			keyword = "NOT IN"
		}
		return fmt.Sprintf("%s %s (%s)", ident.Wrap(pred.Column), keyword, sub), nil
	case queryir.Between:
		keyword := "BETWEEN"
		if pred.Not {
			keyword = "NOT BETWEEN"
		}
		low := parameter(pred.Low, args)
		high := parameter(pred.High, args)
		return fmt.Sprintf("%s %s %s AND %s", ident.Wrap(pred.Column), keyword, low, high), nil
	case queryir.Exists:
		if pred.Query == nil {
			return "", fmt.Errorf("exists: cannot compile nil query")
		}
		sub, err := g.compileSelect(pred.Query, args)
		if err != nil {
			return "", err
		}
		if pred.Not {
			return "NOT EXISTS (" + sub + ")", nil
		}
		return "EXISTS (" + sub + ")", nil
	case queryir.DatePart:
		return fmt.Sprintf("EXTRACT(%s FROM %s) %s %s",
			strings.ToUpper(pred.Part), ident.Wrap(pred.Column), operator(pred.Operator), parameter(pred.Value, args)), nil
	case queryir.Date:
		return fmt.Sprintf("CAST(%s AS DATE) %s %s",
			ident.Wrap(pred.Column), operator(pred.Operator), parameter(pred.Value, args)), nil
	case queryir.Raw:
		*args = append(*args, pred.Bindings...)
		return pred.SQL, nil
	case nil:
		return "", fmt.Errorf("cannot compile nil predicate")
	default:
		return "", fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func (g *Grammar) compileBasic(pred queryir.Basic, args *[]any) (string, error) {
	op := operator(pred.Operator)
	column := ident.Wrap(pred.Column)
	if op == "BETWEEN" {
		bounds, ok := pred.Value.([]any)
		if !ok || len(bounds) != 2 {
			return "", &dialect.ConfigError{
				Code:    dialect.CodeBadValues,
				Field:   pred.Column,
				Message: "between expects exactly two values",
			}
		}
		low := parameter(bounds[0], args)
		high := parameter(bounds[1], args)
		return fmt.Sprintf("%s BETWEEN %s AND %s", column, low, high), nil
	}
	return fmt.Sprintf("%s %s %s", column, op, parameter(pred.Value, args)), nil
}

// compileIn renders an empty list as a constant condition: IN () matches
// nothing, NOT IN () matches everything.
func (g *Grammar) compileIn(pred queryir.In, args *[]any) string {
	if len(pred.Values) == 0 {
		if pred.Not {
			return "1 = 1"
		}
		return "0 = 1"
	}
	keyword := "IN"
	if pred.Not {
		keyword = "NOT IN"
	}
	return fmt.Sprintf("%s %s (%s)", ident.Wrap(pred.Column), keyword, parameterize(pred.Values, args))
}
