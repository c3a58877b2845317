// Command harmonize filters and harmonizes extracted practice-effect tables.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/harmonize/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
