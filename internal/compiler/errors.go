package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/fbsql/internal/queryir"
)

// CompileError represents a definition error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}

func fieldError(v cue.Value, field, format string, args ...any) *CompileError {
	return &CompileError{Field: field, Message: fmt.Sprintf(format, args...), Pos: v.Pos()}
}

// label returns the last selector of v's path, the definition name.
func label(v cue.Value) string {
	sels := v.Path().Selectors()
	if len(sels) == 0 {
		return ""
	}
	sel := sels[len(sels)-1]
	if sel.LabelType() == cue.StringLabel {
		return sel.Unquoted()
	}
	return sel.String()
}

// lookup returns the field labelled name and whether it is present.
func lookup(v cue.Value, name string) (cue.Value, bool) {
	f := v.LookupPath(cue.MakePath(cue.Str(name)))
	return f, f.Exists()
}

func stringField(v cue.Value, path string) (string, error) {
	f, ok := lookup(v, path)
	if !ok {
		return "", nil
	}
	s, err := f.String()
	if err != nil {
		return "", fieldError(f, path, "must be a string")
	}
	return s, nil
}

func intField(v cue.Value, path string) (int64, error) {
	f, ok := lookup(v, path)
	if !ok {
		return 0, nil
	}
	n, err := f.Int64()
	if err != nil {
		return 0, fieldError(f, path, "must be an integer")
	}
	return n, nil
}

func boolField(v cue.Value, path string) (bool, error) {
	f, ok := lookup(v, path)
	if !ok {
		return false, nil
	}
	b, err := f.Bool()
	if err != nil {
		return false, fieldError(f, path, "must be a boolean")
	}
	return b, nil
}

func stringList(v cue.Value, path string) ([]string, error) {
	f, ok := lookup(v, path)
	if !ok {
		return nil, nil
	}
	return stringsOf(f, path)
}

// stringsOf reads v as a list of strings. A single string is accepted
// where a list is expected.
func stringsOf(v cue.Value, field string) ([]string, error) {
	if s, err := v.String(); err == nil {
		return []string{s}, nil
	}
	iter, err := v.List()
	if err != nil {
		return nil, fieldError(v, field, "must be a string or a list of strings")
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, fieldError(iter.Value(), field, "list elements must be strings")
		}
		out = append(out, s)
	}
	return out, nil
}

// literal converts a concrete CUE scalar into a binding value. Floats are
// kept as float64; structs of the form {expr: "..."} become raw SQL.
func literal(v cue.Value, field string) (any, error) {
	switch v.Kind() {
	case cue.NullKind:
		return nil, nil
	case cue.StringKind:
		return v.String()
	case cue.BoolKind:
		return v.Bool()
	case cue.IntKind:
		return v.Int64()
	case cue.FloatKind, cue.NumberKind:
		return v.Float64()
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		var out []any
		for iter.Next() {
			elem, err := literal(iter.Value(), field)
			if err != nil {
				return nil, err
			}
			out = append(out, elem)
		}
		return out, nil
	case cue.StructKind:
		if e, ok := lookup(v, "expr"); ok {
			s, err := e.String()
			if err != nil {
				return nil, fieldError(e, field+".expr", "must be a string")
			}
			return queryir.Expr(s), nil
		}
		return nil, fieldError(v, field, "objects are only allowed as {expr: \"...\"}")
	default:
		return nil, fieldError(v, field, "value must be concrete, got %v", v.IncompleteKind())
	}
}

func literalList(v cue.Value, path string) ([]any, error) {
	f, ok := lookup(v, path)
	if !ok {
		return nil, nil
	}
	val, err := literal(f, path)
	if err != nil {
		return nil, err
	}
	if list, ok := val.([]any); ok {
		return list, nil
	}
	return []any{val}, nil
}

// each calls fn for every element of the list at path.
func each(v cue.Value, path string, fn func(i int, elem cue.Value) error) error {
	f, ok := lookup(v, path)
	if !ok {
		return nil
	}
	iter, err := f.List()
	if err != nil {
		return fieldError(f, path, "must be a list")
	}
	for i := 0; iter.Next(); i++ {
		if err := fn(i, iter.Value()); err != nil {
			return err
		}
	}
	return nil
}
