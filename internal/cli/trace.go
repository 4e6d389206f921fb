package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mwaldron/sigtrace/internal/netlist"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	InputOptions
	Module     string
	Depth      int
	MultiCycle bool
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <signal>",
		Short: "Walk a signal's fan-in cone backward",
		Long: `Walk backward from a signal through the cells that drive it,
breadth first, up to the given depth. Depth counts hops beyond the
immediate driver, so --depth 0 shows exactly the direct driver.

State-holding cells (flip-flops, latches) end the walk: their value was
settled in a prior clock cycle. Pass --multi-cycle to continue through
them from their data inputs.

A truncated result means the depth limit or a combinational loop cut the
cone short; it is reported, not an error.

Examples:
  sigtrace trace wfull --netlist design.json --depth 3
  sigtrace trace wfull --netlist design.json --depth 5 --multi-cycle --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTraceCmd(opts, args[0], cmd)
		},
	}

	addInputFlags(cmd, &opts.InputOptions, false, true)
	cmd.Flags().StringVar(&opts.Module, "module", "", "module to search (default: top module)")
	cmd.Flags().IntVar(&opts.Depth, "depth", 3, "maximum hops beyond the immediate driver")
	cmd.Flags().BoolVar(&opts.MultiCycle, "multi-cycle", false, "continue through state-holding cells")

	return cmd
}

func runTraceCmd(opts *TraceOptions, signal string, cmd *cobra.Command) error {
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

	var traceOpts []netlist.TraceOption
	if opts.MultiCycle {
		traceOpts = append(traceOpts, netlist.WithMultiCycle())
	}
	tr, err := g.BackwardTrace(module, signal, opts.Depth, traceOpts...)
	if err != nil {
		return wrapQueryError(err)
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), tr)
	}
	printTraceText(cmd, tr)
	return nil
}

func printTraceText(cmd *cobra.Command, tr *netlist.Trace) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "backward trace of %s.%s\n", tr.Module, tr.Target)
	for _, n := range tr.Nodes {
		marker := ""
		if n.StateHolding {
			marker = "  [state]"
		}
		fmt.Fprintf(w, "  [%d] %s <- %s (%s)%s\n", n.Depth, n.Signal, n.Cell, n.CellType, marker)
		fmt.Fprintf(w, "      inputs: %s\n", strings.Join(n.InputSignals, ", "))
		if len(n.Conflicts) > 0 {
			fmt.Fprintf(w, "      conflict: driven by %s\n", strings.Join(n.Conflicts, ", "))
		}
		if n.Src != "" {
			fmt.Fprintf(w, "      src: %s\n", n.Src)
		}
	}
	if tr.Truncated {
		fmt.Fprintln(w, "  (truncated)")
	}
}
