package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/fbsql/internal/queryir"
)

// compileWheres reads a predicate list. Each entry is an object whose
// keys select the predicate form; or: true connects it with OR.
//
//	{column: "age", op: ">=", value: 18}
//	{column: "a", op: "=", other: "b"}
//	{isNull: "deleted_at"}          {notNull: "deleted_at"}
//	{column: "id", anyOf: [1, 2]}   {column: "id", noneOf: [3]}
//	{column: "id", inQuery: {...}}  {column: "id", notInQuery: {...}}
//	{column: "n", between: [1, 9]}  {column: "n", notBetween: [1, 9]}
//	{exists: {...}}                 {notExists: {...}}
//	{datePart: "year", column: "born", op: "=", value: 1990}
//	{date: "created_at", op: ">", value: "2024-01-01"}
//	{raw: "x = ?", bindings: [1]}
//	{nested: [...]}
func compileWheres(v cue.Value, path string) ([]queryir.Where, error) {
	var out []queryir.Where
	err := each(v, path, func(i int, w cue.Value) error {
		field := fmt.Sprintf("%s[%d]", path, i)
		p, err := compilePredicate(w, field)
		if err != nil {
			return err
		}
		or, err := boolField(w, "or")
		if err != nil {
			return err
		}
		b := queryir.And
		if or {
			b = queryir.Or
		}
		out = append(out, queryir.Where{Boolean: b, Predicate: p})
		return nil
	})
	return out, err
}

func compilePredicate(v cue.Value, field string) (queryir.Predicate, error) {
	column, err := stringField(v, "column")
	if err != nil {
		return nil, err
	}
	op, err := stringField(v, "op")
	if err != nil {
		return nil, err
	}

	if nested, ok := lookup(v, "nested"); ok {
		wheres, err := compileWheres(v, "nested")
		if err != nil {
			return nil, err
		}
		if len(wheres) == 0 {
			return nil, fieldError(nested, field, "nested must not be empty")
		}
		return queryir.Nested{Wheres: wheres}, nil
	}
	if raw, ok := lookup(v, "raw"); ok {
		sql, err := raw.String()
		if err != nil {
			return nil, fieldError(raw, field+".raw", "must be a string")
		}
		bindings, err := literalList(v, "bindings")
		if err != nil {
			return nil, err
		}
		return queryir.Raw{SQL: sql, Bindings: bindings}, nil
	}

	for _, k := range []struct {
		key string
		not bool
	}{{"isNull", false}, {"notNull", true}} {
		if _, ok := lookup(v, k.key); ok {
			col, err := stringField(v, k.key)
			if err != nil {
				return nil, err
			}
			return queryir.Null{Column: col, Not: k.not}, nil
		}
	}

	for _, k := range []struct {
		key string
		not bool
	}{{"exists", false}, {"notExists", true}} {
		if sub, ok := lookup(v, k.key); ok {
			q, err := compileQueryBody(sub, field+"."+k.key)
			if err != nil {
				return nil, err
			}
			return queryir.Exists{Query: q, Not: k.not}, nil
		}
	}

	for _, k := range []struct {
		key string
		not bool
	}{{"inQuery", false}, {"notInQuery", true}} {
		if sub, ok := lookup(v, k.key); ok {
			q, err := compileQueryBody(sub, field+"."+k.key)
			if err != nil {
				return nil, err
			}
			return queryir.InQuery{Column: column, Query: q, Not: k.not}, nil
		}
	}

	for _, k := range []struct {
		key string
		not bool
	}{{"anyOf", false}, {"noneOf", true}} {
		if _, ok := lookup(v, k.key); ok {
			values, err := literalList(v, k.key)
			if err != nil {
				return nil, err
			}
			return queryir.In{Column: column, Values: values, Not: k.not}, nil
		}
	}

	for _, k := range []struct {
		key string
		not bool
	}{{"between", false}, {"notBetween", true}} {
		if r, ok := lookup(v, k.key); ok {
			bounds, err := literalList(v, k.key)
			if err != nil {
				return nil, err
			}
			if len(bounds) != 2 {
				return nil, fieldError(r, field+"."+k.key, "needs exactly two bounds")
			}
			return queryir.Between{Column: column, Low: bounds[0], High: bounds[1], Not: k.not}, nil
		}
	}

	if other, ok := lookup(v, "other"); ok {
		second, err := other.String()
		if err != nil {
			return nil, fieldError(other, field+".other", "must be a string")
		}
		return queryir.ColumnCompare{First: column, Operator: defaultOp(op), Second: second}, nil
	}

	value, err := predicateValue(v, field)
	if err != nil {
		return nil, err
	}
	if _, ok := lookup(v, "datePart"); ok {
		part, err := stringField(v, "datePart")
		if err != nil {
			return nil, err
		}
		return queryir.DatePart{Part: part, Column: column, Operator: defaultOp(op), Value: value}, nil
	}
	if _, ok := lookup(v, "date"); ok {
		col, err := stringField(v, "date")
		if err != nil {
			return nil, err
		}
		return queryir.Date{Column: col, Operator: defaultOp(op), Value: value}, nil
	}
	if column == "" {
		return nil, fieldError(v, field, "unrecognised predicate")
	}
	return queryir.Basic{Column: column, Operator: defaultOp(op), Value: value}, nil
}

func predicateValue(v cue.Value, field string) (any, error) {
	f, ok := lookup(v, "value")
	if !ok {
		return nil, nil
	}
	return literal(f, field+".value")
}

func defaultOp(op string) string {
	if op == "" {
		return "="
	}
	return op
}
