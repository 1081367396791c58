// Command fbsql compiles CUE definitions into Firebird SQL and applies
// them to a server.
package main

import (
	"errors"
	"fmt"
	"os"

	_ "github.com/nakagami/firebirdsql"

	"github.com/roach88/fbsql/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
