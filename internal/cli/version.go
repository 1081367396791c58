package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/fbsql/internal/dialect"
)

// VersionInfo describes the variant an engine version selects.
type VersionInfo struct {
	EngineVersion string           `json:"engine_version"`
	Major         int              `json:"major"`
	Variant       string           `json:"variant"`
	Features      dialect.Features `json:"features"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version [engine-version]",
		Short: "Show the grammar variant for an engine version",
		Long: `Show which grammar variant an engine version selects and what that
variant can emit. Without an argument --engine-version is used.

Examples:
  fbsql version 2.5.9
  fbsql version "WI-V3.0.10.33601 Firebird 3.0"`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			version := rootOpts.EngineVersion
			if len(args) == 1 {
				version = args[0]
			}
			return runVersion(rootOpts, version, cmd)
		},
	}
}

func runVersion(opts *RootOptions, version string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	major, err := dialect.MajorVersion(version)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrorCode(err), err.Error(), err)
	}
	variant, err := dialect.ForVersion(version)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrorCode(err), err.Error(), err)
	}

	info := VersionInfo{
		EngineVersion: version,
		Major:         major,
		Variant:       variant.String(),
		Features:      variant.Features(),
	}
	if formatter.JSON() {
		return formatter.Success(info)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "%s → %s (major %d)\n", version, info.Variant, major)
	f := info.Features
	for _, row := range []struct {
		name string
		on   bool
	}{
		{"sequences", f.Sequences},
		{"execute block", f.ExecuteBlock},
		{"returning", f.Returning},
		{"typed casts", f.TypedCasts},
		{"context variables", f.ContextVariables},
		{"identity columns", f.IdentityColumns},
		{"upper-case names", f.UpperCaseNames},
	} {
		mark := "✗"
		if row.on {
			mark = "✓"
		}
		fmt.Fprintf(w, "  %s %s\n", mark, row.name)
	}
	return nil
}
