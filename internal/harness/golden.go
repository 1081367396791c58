package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/fbsql/internal/ir"
)

// Snapshot renders a result as canonical JSON: per variant, every
// statement with its bindings, the skipped sources and any compile error.
// Run ids are left out so the snapshot depends only on the definitions.
func Snapshot(name string, result *Result) ([]byte, error) {
	variants := make(ir.IRArray, len(result.Outputs))
	for i, out := range result.Outputs {
		stmts := make(ir.IRArray, len(out.Statements))
		for j, s := range out.Statements {
			bindings, err := ir.FromBindings(s.Bindings)
			if err != nil {
				return nil, err
			}
			stmts[j] = ir.IRObject{
				"seq":      ir.IRInt(s.Seq),
				"kind":     ir.IRString(s.Kind),
				"source":   ir.IRString(s.Source),
				"sql":      ir.IRString(s.SQL),
				"bindings": bindings,
			}
		}
		skipped := make(ir.IRArray, len(out.Skipped))
		for j, s := range out.Skipped {
			skipped[j] = ir.IRString(s)
		}

		obj := ir.IRObject{
			"variant":    ir.IRString(out.Variant),
			"statements": stmts,
			"skipped":    skipped,
		}
		if out.Error != "" {
			obj["error"] = ir.IRString(out.Error)
		}
		variants[i] = obj
	}

	return ir.MarshalCanonical(ir.IRObject{
		"scenario": ir.IRString(name),
		"variants": variants,
	})
}

// RunWithGolden runs a scenario and compares its snapshot with
// testdata/golden/<name>.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result with its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	snapshot, err := Snapshot(name, result)
	if err != nil {
		return err
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, snapshot)
	return nil
}
