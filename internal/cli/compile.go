package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/fbsql/internal/compiler"
	"github.com/roach88/fbsql/internal/grammar"
	"github.com/roach88/fbsql/internal/ir"
	"github.com/roach88/fbsql/internal/store"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output          string
	AllVariants     bool
	TablePrefix     string
	SkipUnsupported bool
}

// VariantResult is the compiled output for one variant.
type VariantResult struct {
	Variant    string         `json:"variant"`
	RunID      string         `json:"run_id,omitempty"`
	Statements []ir.Statement `json:"statements"`
	Skipped    []string       `json:"skipped,omitempty"`
}

// CompilationResult is the output of the compile command.
type CompilationResult struct {
	EngineVersion string          `json:"engine_version,omitempty"`
	Tables        int             `json:"tables"`
	Sequences     int             `json:"sequences"`
	Queries       int             `json:"queries"`
	Variants      []VariantResult `json:"variants"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <defs-dir>",
		Short: "Compile CUE definitions to Firebird SQL",
		Long: `Compile the table, sequence and query definitions in a directory to
SQL statements for one engine generation, or for all of them.

The variant follows --engine-version unless --all-variants is given.
With --journal every compiled variant is recorded as a run.

Examples:
  fbsql compile ./defs
  fbsql compile ./defs --engine-version 2.5
  fbsql compile ./defs --all-variants --format json
  fbsql compile ./defs --journal ./fbsql.db --skip-unsupported`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the result as JSON to this file")
	cmd.Flags().BoolVar(&opts.AllVariants, "all-variants", false, "compile for every engine generation")
	cmd.Flags().StringVar(&opts.TablePrefix, "table-prefix", "", "prefix applied to every table name")
	cmd.Flags().BoolVar(&opts.SkipUnsupported, "skip-unsupported", false, "skip definitions the variant cannot express")

	return cmd
}

func runCompile(ctx context.Context, opts *CompileOptions, defsDir string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := opts.logger()

	loadResult, loadErrors := LoadDefinitions(defsDir, LoadModeCollectAll)
	if len(loadErrors) > 0 {
		return outputCompileErrors(formatter, loadErrors)
	}
	defs := loadResult.Definitions
	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, defsDir)

	sets, err := selectGrammars(opts)
	if err != nil {
		return outputCompileErrors(formatter, []error{err})
	}

	// Each variant compiles independently; results keep the set order.
	results := make([]*compiler.Emitted, len(sets))
	g, _ := errgroup.WithContext(ctx)
	for i, set := range sets {
		g.Go(func() error {
			out, err := compiler.Emit(set, defs, compiler.EmitOptions{SkipUnsupported: opts.SkipUnsupported})
			if err != nil {
				return fmt.Errorf("%s: %w", set.Variant, err)
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return outputCompileErrors(formatter, []error{err})
	}

	result := &CompilationResult{
		Tables:    len(defs.Tables),
		Sequences: len(defs.Sequences),
		Queries:   len(defs.Queries),
	}
	if !opts.AllVariants {
		result.EngineVersion = opts.EngineVersion
	}
	for _, out := range results {
		logger.Debug("variant compiled", "variant", out.Variant.String(), "statements", len(out.Statements), "skipped", len(out.Skipped))
		result.Variants = append(result.Variants, VariantResult{
			Variant:    out.Variant.String(),
			Statements: out.Statements,
			Skipped:    out.Skipped,
		})
	}

	if opts.Journal != "" {
		if err := recordRuns(ctx, opts, result); err != nil {
			return formatter.fail(ExitCommandError, ErrCodeJournal, err.Error(), err)
		}
	}

	if opts.Output != "" {
		if err := writeResultToFile(result, opts.Output); err != nil {
			return formatter.fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), err)
		}
	}

	return outputCompileSuccess(formatter, result, opts.Output)
}

// selectGrammars returns every variant, or the one --engine-version picks.
func selectGrammars(opts *CompileOptions) ([]*grammar.Set, error) {
	gopts := grammar.Options{TablePrefix: opts.TablePrefix}
	if opts.AllVariants {
		return grammar.All(gopts)
	}
	version := opts.EngineVersion
	if version == "" {
		version = DefaultEngineVersion
	}
	set, err := grammar.ForVersion(version, gopts)
	if err != nil {
		return nil, err
	}
	return []*grammar.Set{set}, nil
}

func recordRuns(ctx context.Context, opts *CompileOptions, result *CompilationResult) error {
	st, err := store.Open(opts.Journal)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer st.Close()

	version := result.EngineVersion
	if version == "" {
		version = "any"
	}
	for i := range result.Variants {
		v := &result.Variants[i]
		run, err := st.RecordRun(ctx, version, v.Variant, v.Statements)
		if err != nil {
			return fmt.Errorf("recording %s: %w", v.Variant, err)
		}
		v.RunID = run.ID
		opts.logger().Info("run recorded", "run_id", run.ID, "variant", v.Variant, "statements", len(v.Statements))
	}
	return nil
}

func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, outputFile string) error {
	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Compiled %d table(s), %d sequence(s), %d query(ies)\n",
		result.Tables, result.Sequences, result.Queries)

	for _, v := range result.Variants {
		fmt.Fprintf(w, "\n%s (%d statement(s))", v.Variant, len(v.Statements))
		if v.RunID != "" {
			fmt.Fprintf(w, " run %s", v.RunID)
		}
		fmt.Fprintln(w)
		for _, s := range v.Statements {
			fmt.Fprintf(w, "  [%d] %s\n", s.Seq, s.Source)
			fmt.Fprintf(w, "      %s\n", indentSQL(s.SQL))
			if len(s.Bindings) > 0 {
				bindings, err := s.CanonicalBindings()
				if err != nil {
					bindings = fmt.Sprint(s.Bindings)
				}
				fmt.Fprintf(w, "      bindings: %s\n", bindings)
			}
		}
		for _, src := range v.Skipped {
			fmt.Fprintf(w, "  skipped %s: not supported by %s\n", src, v.Variant)
		}
	}

	if outputFile != "" {
		fmt.Fprintf(w, "\nWrote statements to %s\n", outputFile)
	}
	return nil
}

// indentSQL keeps multi-line statements (EXECUTE BLOCK bodies) aligned.
func indentSQL(sql string) string {
	return strings.ReplaceAll(sql, "\n", "\n      ")
}

// outputCompileErrors prints every error and returns exit code 2.
func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	if formatter.JSON() {
		cliErrors := make([]CLIError, len(errs))
		for i, err := range errs {
			cliErrors[i] = CLIError{Code: ErrorCode(err), Message: err.Error()}
		}
		if err := formatter.encode(CLIResponse{
			Status: "error",
			Error:  &cliErrors[0],
			Data:   cliErrors,
		}); err != nil {
			return err
		}
		return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Compilation failed")
	fmt.Fprintln(formatter.Writer)
	for _, err := range errs {
		if pos := errorPos(err); pos.IsValid() {
			fmt.Fprintf(formatter.Writer, "%s:%d:%d\n", pos.Filename(), pos.Line(), pos.Column())
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", ErrorCode(err), errorMessage(err))
	}
	return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
}

// errorMessage drops the position prefix a LoadError repeats.
func errorMessage(err error) string {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Message
	}
	return err.Error()
}

func writeResultToFile(result *CompilationResult, filename string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	return os.WriteFile(filename, data, 0o644)
}
