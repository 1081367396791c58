package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/fbsql/internal/compiler"
	"github.com/roach88/fbsql/internal/dialect"
	"github.com/roach88/fbsql/internal/grammar"
	"github.com/roach88/fbsql/internal/store"
	"github.com/roach88/fbsql/internal/testutil"
)

// Harness compiles one scenario and journals the output.
type Harness struct {
	store  *store.Store
	logger *slog.Logger
}

// Run compiles a scenario for each of its variants, records every
// successful compilation in a fresh in-memory journal and evaluates the
// assertions.
//
// A scenario whose definitions do not load or compile is an error, not a
// failed result. A variant that cannot compile them is recorded in its
// VariantOutput so compile_error assertions can inspect it.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunWithLogger is Run with a caller-supplied logger.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	st, err := store.Open(":memory:",
		store.WithIDGenerator(testutil.NewSequenceIDs("run")),
		store.WithClock(testutil.NewStepClock()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{store: st, logger: logger}
	ctx := context.Background()

	defs, err := loadDefinitions(scenario)
	if err != nil {
		return nil, err
	}
	sets, err := h.grammars(scenario)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	for _, set := range sets {
		out, err := h.compile(ctx, scenario, set, defs)
		if err != nil {
			return nil, err
		}
		result.Outputs = append(result.Outputs, out)
	}

	actx := &AssertionContext{Store: st, Ctx: ctx}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}
	return result, nil
}

func loadDefinitions(s *Scenario) (*compiler.Definitions, error) {
	var (
		defs *compiler.Definitions
		errs []error
	)
	if s.Source != "" {
		defs, errs = compiler.CompileDefinitions(cuecontext.New().CompileString(s.Source), false)
	} else {
		defs, errs = compiler.LoadDefinitions(s.BaseDir, false, s.Definitions...)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, errs[0])
	}
	return defs, nil
}

func (h *Harness) grammars(s *Scenario) ([]*grammar.Set, error) {
	opts := grammar.Options{TablePrefix: s.TablePrefix}
	if s.EngineVersion != "" {
		set, err := grammar.ForVersion(s.EngineVersion, opts)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
		}
		return []*grammar.Set{set}, nil
	}
	if len(s.Variants) == 0 {
		return grammar.All(opts)
	}

	sets := make([]*grammar.Set, 0, len(s.Variants))
	for _, name := range s.Variants {
		v, err := dialect.ParseVariant(name)
		if err != nil {
			return nil, err
		}
		set, err := grammar.ForVariant(v, opts)
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}
	return sets, nil
}

func (h *Harness) compile(ctx context.Context, s *Scenario, set *grammar.Set, defs *compiler.Definitions) (VariantOutput, error) {
	out := VariantOutput{Variant: set.Variant.String()}

	emitted, err := compiler.Emit(set, defs, compiler.EmitOptions{SkipUnsupported: s.SkipUnsupported})
	if err != nil {
		out.Error = err.Error()
		h.logger.Info("variant failed", "scenario", s.Name, "variant", out.Variant, "error", err)
		return out, nil
	}
	out.Statements = emitted.Statements
	out.Skipped = emitted.Skipped

	version := s.EngineVersion
	if version == "" {
		version = "any"
	}
	run, err := h.store.RecordRun(ctx, version, out.Variant, emitted.Statements)
	if err != nil {
		return out, fmt.Errorf("scenario %s: journal %s: %w", s.Name, out.Variant, err)
	}
	out.RunID = run.ID

	h.logger.Info("variant compiled",
		"scenario", s.Name,
		"variant", out.Variant,
		"run_id", run.ID,
		"statements", len(out.Statements),
		"skipped", len(out.Skipped),
	)
	return out, nil
}
