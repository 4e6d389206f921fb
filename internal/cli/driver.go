package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mwaldron/sigtrace/internal/netlist"
)

// DriverOptions holds flags for the driver command.
type DriverOptions struct {
	*RootOptions
	InputOptions
	Module string
}

// NewDriverCommand creates the driver command.
func NewDriverCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DriverOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "driver <signal>",
		Short: "Show the cell driving a signal",
		Long: `Resolve the cell that drives a signal within a module. A signal
with no driving cell is reported as a boundary: a module input port or an
undriven net. Multiple drivers on the same bit are listed as a conflict.

Without --module the top module is searched.

Examples:
  sigtrace driver wfull --netlist design.json
  sigtrace driver wfull --netlist design.json --module wptr_full --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDriver(opts, args[0], cmd)
		},
	}

	addInputFlags(cmd, &opts.InputOptions, false, true)
	cmd.Flags().StringVar(&opts.Module, "module", "", "module to search (default: top module)")

	return cmd
}

func runDriver(opts *DriverOptions, signal string, cmd *cobra.Command) error {
	if err := opts.resolveInputs(); err != nil {
		return err
	}
	g, err := loadGraph(opts.Netlist)
	if err != nil {
		return err
	}
	module := opts.Module
	if module == "" {
		module = g.TopModule()
	}

	drv, err := g.DriverOf(module, signal)
	if err != nil {
		return wrapQueryError(err)
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), drv)
	}
	printDriverText(cmd, drv)
	return nil
}

func printDriverText(cmd *cobra.Command, drv *netlist.Driver) {
	w := cmd.OutOrStdout()
	if drv.Boundary {
		fmt.Fprintf(w, "%s.%s: boundary (%s)\n", drv.Module, drv.Signal, drv.BoundaryKind)
		return
	}
	fmt.Fprintf(w, "%s.%s driven by %s (%s) via %s\n",
		drv.Module, drv.Signal, drv.Cell, drv.CellType, drv.OutputPort)
	if drv.StateHolding {
		fmt.Fprintln(w, "  state-holding")
	}
	for _, in := range drv.Inputs {
		fmt.Fprintf(w, "  %s <- %s\n", in.Port, strings.Join(in.Signals, ", "))
	}
	if len(drv.Conflicts) > 0 {
		for _, c := range drv.Conflicts {
			fmt.Fprintf(w, "  conflict on bit %d: %s\n", c.Bit, strings.Join(c.Cells, ", "))
		}
	}
	if drv.Src != "" {
		fmt.Fprintf(w, "  src: %s\n", drv.Src)
	}
}
