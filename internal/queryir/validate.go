package queryir

import (
	"fmt"
	"strings"
)

// Validation error codes.
const (
	CodeUnknownOperator  = "E101"
	CodeMissingColumn    = "E102"
	CodeUnknownDatePart  = "E103"
	CodeUnknownJoinType  = "E104"
	CodeUnknownDirection = "E105"
)

// ValidationError describes one malformed part of a Query.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Operators is the comparison operator set accepted in Basic, DatePart,
// Date and ColumnCompare predicates. Matching is case-insensitive.
var Operators = []string{
	"=", "<", ">", "<=", ">=", "<>", "!=",
	"like", "not like",
	"between",
	"containing",
	"starting with",
	"similar to", "not similar to",
}

// DateParts are the components EXTRACT accepts.
var DateParts = []string{"year", "month", "day", "hour", "minute", "second", "weekday", "yearday"}

// IsOperator reports whether op is in Operators.
func IsOperator(op string) bool {
	return contains(Operators, strings.ToLower(strings.TrimSpace(op)))
}

// IsDatePart reports whether part is in DateParts.
func IsDatePart(part string) bool {
	return contains(DateParts, strings.ToLower(part))
}

// Validate walks q and every nested query and returns all problems found.
// It returns nil for a well-formed query.
func Validate(q *Query) []ValidationError {
	v := &validator{}
	v.validateQuery(q, "query")
	return v.errs
}

type validator struct {
	errs []ValidationError
}

func (v *validator) add(code, field, format string, args ...any) {
	v.errs = append(v.errs, ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
		Code:    code,
	})
}

func (v *validator) validateQuery(q *Query, path string) {
	if q == nil {
		return
	}
	for i, j := range q.Joins {
		field := fmt.Sprintf("%s.joins[%d]", path, i)
		switch j.Type {
		case InnerJoin, LeftJoin, RightJoin, FullJoin, CrossJoin:
		default:
			v.add(CodeUnknownJoinType, field, "unknown join type %q", j.Type)
		}
		v.validateWheres(j.On, field+".on")
	}
	v.validateWheres(q.Wheres, path+".wheres")
	v.validateWheres(q.Havings, path+".havings")
	for i, o := range q.Orders {
		switch o.Direction {
		case "", Asc, Desc:
		default:
			v.add(CodeUnknownDirection, fmt.Sprintf("%s.orders[%d]", path, i), "unknown direction %q", o.Direction)
		}
	}
	for i, u := range q.Unions {
		v.validateQuery(u.Query, fmt.Sprintf("%s.unions[%d]", path, i))
	}
}

func (v *validator) validateWheres(wheres []Where, path string) {
	for i, w := range wheres {
		v.validatePredicate(w.Predicate, fmt.Sprintf("%s[%d]", path, i))
	}
}

func (v *validator) validatePredicate(p Predicate, field string) {
	switch pred := p.(type) {
	case Basic:
		v.requireColumn(pred.Column, field)
		v.checkOperator(pred.Operator, field)
	case ColumnCompare:
		v.requireColumn(pred.First, field)
		v.requireColumn(pred.Second, field)
		v.checkOperator(pred.Operator, field)
	case DatePart:
		v.requireColumn(pred.Column, field)
		v.checkOperator(pred.Operator, field)
		if !IsDatePart(pred.Part) {
			v.add(CodeUnknownDatePart, field, "unknown date part %q", pred.Part)
		}
	case Date:
		v.requireColumn(pred.Column, field)
		v.checkOperator(pred.Operator, field)
	case Null:
		v.requireColumn(pred.Column, field)
	case In:
		v.requireColumn(pred.Column, field)
	case Between:
		v.requireColumn(pred.Column, field)
	case InQuery:
		v.requireColumn(pred.Column, field)
		v.validateQuery(pred.Query, field+".query")
	case Exists:
		v.validateQuery(pred.Query, field+".query")
	case Nested:
		v.validateWheres(pred.Wheres, field+".wheres")
	}
}

func (v *validator) requireColumn(column, field string) {
	if strings.TrimSpace(column) == "" {
		v.add(CodeMissingColumn, field, "column is required")
	}
}

func (v *validator) checkOperator(op, field string) {
	if !IsOperator(op) {
		v.add(CodeUnknownOperator, field, "unsupported operator %q", op)
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
