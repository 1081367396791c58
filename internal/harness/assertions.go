package harness

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/fbsql/internal/ir"
	"github.com/roach88/fbsql/internal/store"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Variant  string
	Expected string
	Actual   string
	// Statements are the variant's output, printed for context.
	Statements []ir.Statement
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s", e.Type)
	if e.Variant != "" {
		fmt.Fprintf(&buf, " [%s]", e.Variant)
	}
	buf.WriteByte('\n')
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Statements) > 0 {
		fmt.Fprintf(&buf, "\nStatements:\n")
		for _, s := range e.Statements {
			fmt.Fprintf(&buf, "  [%d] %s %s\n", s.Seq, s.Source, s.SQL)
		}
	}
	return buf.String()
}

// AssertionContext gives assertions access to the journal.
type AssertionContext struct {
	Store *store.Store
	Ctx   context.Context
}

// EvaluateAssertions checks every assertion against result and returns a
// message per failure.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		outputs, err := selectOutputs(result, a)
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertion[%d]: %v", i, err))
			continue
		}
		for _, out := range outputs {
			if err := evaluate(out, a, actx); err != nil {
				errs = append(errs, err.Error())
			}
		}
	}
	return errs
}

func selectOutputs(result *Result, a Assertion) ([]VariantOutput, error) {
	if a.Variant == "" {
		return result.Outputs, nil
	}
	out, ok := result.Output(a.Variant)
	if !ok {
		return nil, fmt.Errorf("variant %s was not compiled", a.Variant)
	}
	return []VariantOutput{out}, nil
}

func evaluate(out VariantOutput, a Assertion, actx *AssertionContext) error {
	if a.Type == AssertCompileError {
		return assertCompileError(out, a)
	}
	if out.Error != "" {
		return &AssertionError{
			Type:     a.Type,
			Variant:  out.Variant,
			Expected: "successful compilation",
			Actual:   out.Error,
		}
	}

	switch a.Type {
	case AssertStatementSQL:
		return assertStatementSQL(out, a)
	case AssertStatementContains:
		return assertStatementContains(out, a)
	case AssertStatementOrder:
		return assertStatementOrder(out, a)
	case AssertStatementCount:
		return assertStatementCount(out, a)
	case AssertBindings:
		return assertBindings(out, a)
	case AssertSkipped:
		return assertSkipped(out, a)
	case AssertJournalCount:
		if actx == nil || actx.Store == nil {
			return fmt.Errorf("%s requires a journal", a.Type)
		}
		return assertJournalCount(actx.Ctx, actx.Store, out, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func statementsFor(out VariantOutput, source string) []ir.Statement {
	var stmts []ir.Statement
	for _, s := range out.Statements {
		if s.Source == source {
			stmts = append(stmts, s)
		}
	}
	return stmts
}

// assertStatementSQL passes when some statement of the source matches
// exactly.
func assertStatementSQL(out VariantOutput, a Assertion) error {
	stmts := statementsFor(out, a.Source)
	for _, s := range stmts {
		if s.SQL == a.SQL {
			return nil
		}
	}
	actual := "no statements"
	if len(stmts) > 0 {
		texts := make([]string, len(stmts))
		for i, s := range stmts {
			texts[i] = s.SQL
		}
		actual = strings.Join(texts, "\n          ")
	}
	return &AssertionError{
		Type:       a.Type,
		Variant:    out.Variant,
		Expected:   fmt.Sprintf("%s: %s", a.Source, a.SQL),
		Actual:     actual,
		Statements: out.Statements,
	}
}

func assertStatementContains(out VariantOutput, a Assertion) error {
	stmts := statementsFor(out, a.Source)
	if len(stmts) == 0 {
		return &AssertionError{
			Type:       a.Type,
			Variant:    out.Variant,
			Expected:   fmt.Sprintf("statements for %s", a.Source),
			Actual:     "none",
			Statements: out.Statements,
		}
	}
	for _, s := range stmts {
		if !strings.Contains(s.SQL, a.Contains) {
			return &AssertionError{
				Type:       a.Type,
				Variant:    out.Variant,
				Expected:   fmt.Sprintf("%s statement %d to contain %q", a.Source, s.Seq, a.Contains),
				Actual:     s.SQL,
				Statements: out.Statements,
			}
		}
	}
	return nil
}

// assertStatementOrder checks the first statement of each source appears
// in the given order. Other sources may appear in between.
func assertStatementOrder(out VariantOutput, a Assertion) error {
	positions := make(map[string]int)
	for _, s := range out.Statements {
		if _, seen := positions[s.Source]; !seen {
			positions[s.Source] = s.Seq
		}
	}

	for _, source := range a.Sources {
		if _, ok := positions[source]; !ok {
			return &AssertionError{
				Type:       a.Type,
				Variant:    out.Variant,
				Expected:   fmt.Sprintf("all sources present: %v", a.Sources),
				Actual:     fmt.Sprintf("missing source: %s", source),
				Statements: out.Statements,
			}
		}
	}
	for i := 1; i < len(a.Sources); i++ {
		prev, curr := a.Sources[i-1], a.Sources[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     a.Type,
				Variant:  out.Variant,
				Expected: fmt.Sprintf("sources in order: %v", a.Sources),
				Actual: fmt.Sprintf("%s (seq %d) should be before %s (seq %d)",
					prev, positions[prev], curr, positions[curr]),
				Statements: out.Statements,
			}
		}
	}
	return nil
}

func assertStatementCount(out VariantOutput, a Assertion) error {
	n := len(statementsFor(out, a.Source))
	if n != a.Count {
		return &AssertionError{
			Type:       a.Type,
			Variant:    out.Variant,
			Expected:   fmt.Sprintf("%d statements for %s", a.Count, a.Source),
			Actual:     fmt.Sprintf("%d statements", n),
			Statements: out.Statements,
		}
	}
	return nil
}

// assertBindings compares bindings by their canonical form, so 3 from
// YAML equals int64(3) from the compiler.
func assertBindings(out VariantOutput, a Assertion) error {
	want, err := canonicalBindings(a.Bindings)
	if err != nil {
		return fmt.Errorf("%s: expected bindings: %w", a.Type, err)
	}
	stmts := statementsFor(out, a.Source)
	var seen []string
	for _, s := range stmts {
		got, err := canonicalBindings(s.Bindings)
		if err != nil {
			return fmt.Errorf("%s: %s: %w", a.Type, a.Source, err)
		}
		if bytes.Equal(got, want) {
			return nil
		}
		seen = append(seen, string(got))
	}
	return &AssertionError{
		Type:       a.Type,
		Variant:    out.Variant,
		Expected:   fmt.Sprintf("%s bound with %s", a.Source, want),
		Actual:     fmt.Sprintf("%v", seen),
		Statements: out.Statements,
	}
}

func canonicalBindings(values []any) ([]byte, error) {
	arr, err := ir.FromBindings(values)
	if err != nil {
		return nil, err
	}
	return ir.MarshalCanonical(arr)
}

func assertSkipped(out VariantOutput, a Assertion) error {
	want := slices.Clone(a.Sources)
	got := slices.Clone(out.Skipped)
	slices.Sort(want)
	slices.Sort(got)
	if !slices.Equal(want, got) {
		return &AssertionError{
			Type:     a.Type,
			Variant:  out.Variant,
			Expected: fmt.Sprintf("skipped %v", want),
			Actual:   fmt.Sprintf("skipped %v", got),
		}
	}
	return nil
}

func assertCompileError(out VariantOutput, a Assertion) error {
	if out.Error == "" {
		return &AssertionError{
			Type:       a.Type,
			Variant:    out.Variant,
			Expected:   fmt.Sprintf("compilation to fail with %q", a.Contains),
			Actual:     fmt.Sprintf("compiled %d statements", len(out.Statements)),
			Statements: out.Statements,
		}
	}
	if !strings.Contains(out.Error, a.Contains) {
		return &AssertionError{
			Type:     a.Type,
			Variant:  out.Variant,
			Expected: fmt.Sprintf("error containing %q", a.Contains),
			Actual:   out.Error,
		}
	}
	return nil
}

// assertJournalCount reads back the statements journaled for the source
// in this variant's run.
func assertJournalCount(ctx context.Context, st *store.Store, out VariantOutput, a Assertion) error {
	records, err := st.StatementsForSource(ctx, a.Source)
	if err != nil {
		return fmt.Errorf("%s: %w", a.Type, err)
	}
	n := 0
	for _, r := range records {
		if r.RunID == out.RunID {
			n++
		}
	}
	if n != a.Count {
		return &AssertionError{
			Type:     a.Type,
			Variant:  out.Variant,
			Expected: fmt.Sprintf("%d journaled statements for %s in run %s", a.Count, a.Source, out.RunID),
			Actual:   fmt.Sprintf("%d", n),
		}
	}
	return nil
}
