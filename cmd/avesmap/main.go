package main

import (
	"fmt"
	"os"

	"github.com/Cris19111/Coordinartes-Animal-Classification/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// Commands silence cobra's own error printing and format their
		// errors on stdout; keep a terse copy on stderr for scripts.
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
