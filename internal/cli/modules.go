package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ModulesOptions holds flags for the modules command.
type ModulesOptions struct {
	*RootOptions
	InputOptions
}

// moduleResult is one module in the JSON payload.
type moduleResult struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Top         bool   `json:"top,omitempty"`
}

// NewModulesCommand creates the modules command.
func NewModulesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ModulesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "modules",
		Short: "List netlist modules",
		Long: `List every module in the netlist, sorted by name. The top module
(from the top attribute, or the first module when unmarked) is flagged.
Flattened hierarchical names are shown with their original source name
when the netlist carries one.

Examples:
  sigtrace modules --netlist design.json
  sigtrace modules --netlist design.json --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModules(opts, cmd)
		},
	}

	addInputFlags(cmd, &opts.InputOptions, false, true)

	return cmd
}

func runModules(opts *ModulesOptions, cmd *cobra.Command) error {
	if err := opts.resolveInputs(); err != nil {
		return err
	}
	g, err := loadGraph(opts.Netlist)
	if err != nil {
		return err
	}

	top := g.TopModule()
	var results []moduleResult
	for _, name := range g.ListModules() {
		results = append(results, moduleResult{
			Name:        name,
			DisplayName: g.ModuleDisplayName(name),
			Top:         name == top,
		})
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), results)
	}
	for _, r := range results {
		line := r.Name
		if r.DisplayName != r.Name {
			line += "  (" + r.DisplayName + ")"
		}
		if r.Top {
			line += "  [top]"
		}
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	return nil
}
