package querysql

import (
	"fmt"

	"github.com/roach88/fbsql/internal/dialect"
	"github.com/roach88/fbsql/internal/ident"
	"github.com/roach88/fbsql/internal/queryir"
)

// CompileExecProcedure emits EXECUTE PROCEDURE "name"(?, ...). The values
// become the binding list in order.
func (g *Grammar) CompileExecProcedure(name string, values []any) (string, []any, error) {
	if name == "" {
		return "", nil, &dialect.ConfigError{Code: dialect.CodeBadValues, Field: "procedure", Message: "procedure name is required"}
	}
	var args []any
	sql := "EXECUTE PROCEDURE " + ident.Wrap(name)
	if len(values) > 0 {
		sql += "(" + parameterize(values, &args) + ")"
	}
	return sql, args, nil
}

// CompileExecFunction emits SELECT "name"(?, ...) AS VAL FROM RDB$DATABASE.
func (g *Grammar) CompileExecFunction(name string, values []any) (string, []any, error) {
	if name == "" {
		return "", nil, &dialect.ConfigError{Code: dialect.CodeBadValues, Field: "function", Message: "function name is required"}
	}
	var args []any
	sql := fmt.Sprintf("SELECT %s(%s) AS VAL FROM %s", ident.Wrap(name), parameterize(values, &args), DualTable)
	return sql, args, nil
}

// CompileGetContext reads one context variable. The namespace and the
// variable name are bound.
func (g *Grammar) CompileGetContext(namespace, name string) (string, []any, error) {
	if !g.features.ContextVariables {
		return "", nil, dialect.Unsupported(g.variant, "context variables")
	}
	if namespace == "" || name == "" {
		return "", nil, &dialect.ConfigError{Code: dialect.CodeBadValues, Field: "context", Message: "namespace and name are required"}
	}
	return "SELECT RDB$GET_CONTEXT(?, ?) AS VAL FROM " + DualTable, []any{namespace, name}, nil
}

// CompileNextSequenceValue reads the next value of sequence. When sequence
// is empty it is derived from q.From with ident.SequenceName, the same
// derivation the schema grammar uses when it creates the sequence.
// A non-zero increment selects GEN_ID(seq, increment); generator-only
// variants always use GEN_ID.
func (g *Grammar) CompileNextSequenceValue(q *queryir.Query, sequence string, increment int) (string, error) {
	if sequence == "" {
		if q == nil || q.From == "" {
			return "", &dialect.ConfigError{
				Code:    dialect.CodeMissingSequence,
				Field:   "sequence",
				Message: "no sequence name given and no table to derive one from",
			}
		}
		sequence = ident.SequenceName(g.prefix + q.From)
	} else {
		sequence = ident.Prefixed(g.prefix, sequence)
	}

	if increment == 0 && g.features.Sequences {
		return fmt.Sprintf("SELECT NEXT VALUE FOR %s AS ID FROM %s", ident.Quote(sequence), DualTable), nil
	}
	if increment == 0 {
		increment = 1
	}
	return fmt.Sprintf("SELECT GEN_ID(%s, %d) AS ID FROM %s", ident.Quote(sequence), increment, DualTable), nil
}
