package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/fbsql/internal/store"
)

// JournalOptions holds flags for the journal command.
type JournalOptions struct {
	*RootOptions
	Source string
}

// RunListing is the journal command's output for one run.
type RunListing struct {
	Run        store.Run               `json:"run"`
	Statements []store.StatementRecord `json:"statements,omitempty"`
}

// NewJournalCommand creates the journal command.
func NewJournalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &JournalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "journal <db> [run-id]",
		Short: "List recorded runs and statements",
		Long: `List the runs in a statement journal, the statements of one run, or
with --source every recorded statement of one definition across runs.

Examples:
  fbsql journal ./fbsql.db
  fbsql journal ./fbsql.db 0190a5a4-7c6b-7d2e-9f1a-1b2c3d4e5f60
  fbsql journal ./fbsql.db --source table:users --format json`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := ""
			if len(args) == 2 {
				runID = args[1]
			}
			return runJournal(opts, args[0], runID, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Source, "source", "", "list statements of one definition, e.g. table:users")

	return cmd
}

func runJournal(opts *JournalOptions, path, runID string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()

	// store.Open creates missing files; a journal must already exist.
	if _, err := os.Stat(path); err != nil {
		return formatter.fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("journal not found: %s", path), err)
	}
	st, err := store.Open(path)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeJournal, err.Error(), err)
	}
	defer st.Close()

	switch {
	case opts.Source != "":
		records, err := st.StatementsForSource(ctx, opts.Source)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeJournal, err.Error(), err)
		}
		if formatter.JSON() {
			return formatter.Success(records)
		}
		fmt.Fprintf(formatter.Writer, "%s: %d statement(s)\n", opts.Source, len(records))
		for _, r := range records {
			fmt.Fprintf(formatter.Writer, "  run %s [%d] %s\n", r.RunID, r.Seq, r.SQL)
		}
		return nil

	case runID != "":
		run, err := st.GetRun(ctx, runID)
		if errors.Is(err, store.ErrRunNotFound) {
			return formatter.fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("run %s not found", runID), err)
		}
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeJournal, err.Error(), err)
		}
		records, err := st.ReadStatements(ctx, runID)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeJournal, err.Error(), err)
		}
		listing := RunListing{Run: run, Statements: records}
		if formatter.JSON() {
			return formatter.Success(listing)
		}
		printRun(formatter, run)
		for _, r := range records {
			fmt.Fprintf(formatter.Writer, "  [%d] %s %s\n", r.Seq, r.Source, r.SQL)
			if r.Bindings != "[]" {
				fmt.Fprintf(formatter.Writer, "      bindings: %s\n", r.Bindings)
			}
		}
		return nil

	default:
		runs, err := st.ListRuns(ctx)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeJournal, err.Error(), err)
		}
		if formatter.JSON() {
			return formatter.Success(runs)
		}
		if len(runs) == 0 {
			fmt.Fprintln(formatter.Writer, "No runs recorded.")
			return nil
		}
		for _, run := range runs {
			printRun(formatter, run)
		}
		return nil
	}
}

func printRun(f *OutputFormatter, run store.Run) {
	fmt.Fprintf(f.Writer, "%s  %s  %s  engine %s\n",
		run.ID, run.CreatedAt.Format("2006-01-02 15:04:05"), run.Variant, run.EngineVersion)
	f.VerboseLog("  definition hash %s", run.DefinitionHash)
}
