package harness

import "github.com/roach88/fbsql/internal/ir"

// VariantOutput is what one variant produced for a scenario.
type VariantOutput struct {
	Variant    string         `json:"variant"`
	RunID      string         `json:"run_id,omitempty"`
	Statements []ir.Statement `json:"statements"`
	Skipped    []string       `json:"skipped,omitempty"`
	// Error is set when compilation failed; Statements is then empty.
	Error string `json:"error,omitempty"`
}

// Result is the outcome of a scenario.
type Result struct {
	// Pass is true when every assertion held.
	Pass    bool            `json:"pass"`
	Outputs []VariantOutput `json:"outputs"`
	Errors  []string        `json:"errors,omitempty"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Outputs: []VariantOutput{},
		Errors:  []string{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Output returns the output for variant, if it was compiled.
func (r *Result) Output(variant string) (VariantOutput, bool) {
	for _, o := range r.Outputs {
		if o.Variant == variant {
			return o, true
		}
	}
	return VariantOutput{}, false
}
