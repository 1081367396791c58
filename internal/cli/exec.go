package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/fbsql/internal/compiler"
	"github.com/roach88/fbsql/internal/executor"
	"github.com/roach88/fbsql/internal/grammar"
	"github.com/roach88/fbsql/internal/ir"
	"github.com/roach88/fbsql/internal/store"
)

// ExecOptions holds flags for the exec command.
type ExecOptions struct {
	*RootOptions
	Config          string
	IncludeQueries  bool
	SkipUnsupported bool

	// Open connects to the server. Tests replace it; nil uses
	// executor.Open.
	Open func(ctx context.Context, cfg *executor.Config, opts ...executor.Option) (*executor.Executor, error)
}

// ExecResult is the output of the exec command.
type ExecResult struct {
	EngineVersion string   `json:"engine_version"`
	Variant       string   `json:"variant"`
	RunID         string   `json:"run_id,omitempty"`
	Executed      int      `json:"executed"`
	Total         int      `json:"total"`
	Skipped       []string `json:"skipped,omitempty"`
	Stats         string   `json:"stats"`
}

// NewExecCommand creates the exec command.
func NewExecCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExecOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "exec <defs-dir>",
		Short: "Execute schema definitions against a server",
		Long: `Connect with the profile in --config, ask the server for its engine
version, compile the definitions for that version and execute the table
and sequence statements in order. Query definitions run too with
--include-queries.

Execution stops at the first failing statement; earlier statements stay
committed.

Examples:
  fbsql exec ./defs --config fbsql.yaml
  fbsql exec ./defs --config fbsql.yaml --journal ./fbsql.db -v`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "fbsql.yaml", "connection profile (YAML)")
	cmd.Flags().BoolVar(&opts.IncludeQueries, "include-queries", false, "also execute query definitions")
	cmd.Flags().BoolVar(&opts.SkipUnsupported, "skip-unsupported", false, "skip definitions the server's variant cannot express")

	return cmd
}

func runExec(ctx context.Context, opts *ExecOptions, defsDir string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := opts.logger()

	cfg, err := executor.LoadConfig(opts.Config)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeConnect, err.Error(), err)
	}

	loadResult, loadErrors := LoadDefinitions(defsDir, LoadModeCollectAll)
	if len(loadErrors) > 0 {
		return outputCompileErrors(formatter, loadErrors)
	}

	open := opts.Open
	if open == nil {
		open = executor.Open
	}
	ex, err := open(ctx, cfg, executor.WithLogger(logger))
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeConnect, err.Error(), err)
	}
	defer ex.Close()

	set, err := ex.Grammars(ctx, grammar.Options{TablePrefix: cfg.TablePrefix})
	if err != nil {
		return formatter.fail(ExitCommandError, ErrorCode(err), err.Error(), err)
	}
	version, _ := ex.EngineVersion(ctx)

	emitted, err := compiler.Emit(set, loadResult.Definitions, compiler.EmitOptions{SkipUnsupported: opts.SkipUnsupported})
	if err != nil {
		return outputCompileErrors(formatter, []error{err})
	}
	stmts := selectStatements(emitted.Statements, opts.IncludeQueries)

	result := ExecResult{
		EngineVersion: version,
		Variant:       set.Variant.String(),
		Total:         len(stmts),
		Skipped:       emitted.Skipped,
	}

	if opts.Journal != "" {
		runID, err := journalStatements(ctx, opts.Journal, version, result.Variant, stmts)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeJournal, err.Error(), err)
		}
		result.RunID = runID
	}

	logger.Info("executing", "variant", result.Variant, "engine_version", version, "statements", len(stmts))
	n, runErr := ex.Run(ctx, stmts)
	result.Executed = n
	result.Stats = ex.Stats().String()

	if runErr != nil {
		if formatter.JSON() {
			_ = formatter.encode(CLIResponse{
				Status: "error",
				Data:   result,
				Error:  &CLIError{Code: ErrCodeExecFailed, Message: runErr.Error()},
				RunID:  result.RunID,
			})
		} else {
			fmt.Fprintf(formatter.Writer, "✗ Executed %d of %d statement(s)\n", n, len(stmts))
			fmt.Fprintf(formatter.Writer, "  %s: %v\n", ErrCodeExecFailed, runErr)
		}
		return WrapExitError(ExitFailure, "statement failed", runErr)
	}

	if formatter.JSON() {
		return formatter.encode(CLIResponse{Status: "ok", Data: result, RunID: result.RunID})
	}
	w := formatter.Writer
	fmt.Fprintf(w, "✓ Executed %d statement(s) on %s (%s)\n", n, version, result.Variant)
	for _, src := range result.Skipped {
		fmt.Fprintf(w, "  skipped %s\n", src)
	}
	if result.RunID != "" {
		fmt.Fprintf(w, "  recorded as run %s\n", result.RunID)
	}
	formatter.VerboseLog("%s", result.Stats)
	return nil
}

// selectStatements keeps schema and sequence statements, plus queries
// when asked.
func selectStatements(stmts []ir.Statement, includeQueries bool) []ir.Statement {
	if includeQueries {
		return stmts
	}
	out := make([]ir.Statement, 0, len(stmts))
	for _, s := range stmts {
		if s.Kind != ir.KindQuery {
			out = append(out, s)
		}
	}
	return out
}

func journalStatements(ctx context.Context, path, version, variant string, stmts []ir.Statement) (string, error) {
	st, err := store.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening journal: %w", err)
	}
	defer st.Close()

	run, err := st.RecordRun(ctx, version, variant, stmts)
	if err != nil {
		return "", err
	}
	return run.ID, nil
}
