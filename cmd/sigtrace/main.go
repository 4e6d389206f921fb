// Command sigtrace is the entry point for the signal debugging CLI.
package main

import (
	"fmt"
	"os"

	"github.com/mwaldron/sigtrace/internal/cli"
)

func main() {
	root := cli.NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
