package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mwaldron/sigtrace/internal/netlist"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
}

// validateResult is the JSON payload for a validation run.
type validateResult struct {
	File    string   `json:"file"`
	Valid   bool     `json:"valid"`
	Modules []string `json:"modules,omitempty"`
	Top     string   `json:"top,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <netlist.json>",
		Short: "Validate a netlist against its schema",
		Long: `Validate a Yosys JSON netlist: first against the structural schema
(port directions, bit references, cell shapes), then through the full
loader, which also resolves every cell connection.

Exit codes:
  0 - netlist is valid
  1 - validation failed
  2 - file unreadable

Examples:
  sigtrace validate design.json
  sigtrace validate design.json --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read netlist", err)
	}

	if err := netlist.ValidateSchema(data); err != nil {
		return WrapExitError(ExitFailure, "schema validation failed", err)
	}
	g, err := netlist.Parse(data)
	if err != nil {
		return WrapExitError(ExitFailure, "netlist validation failed", err)
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), validateResult{
			File:    path,
			Valid:   true,
			Modules: g.ListModules(),
			Top:     g.TopModule(),
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: valid (%d module(s), top %s)\n",
		path, len(g.ListModules()), g.TopModule())
	return nil
}
