package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mwaldron/sigtrace/internal/netlist"
)

// FanInOptions holds flags for the fanin command.
type FanInOptions struct {
	*RootOptions
	InputOptions
	Module     string
	Depth      int
	MultiCycle bool
}

// fanInResult is the JSON payload for a fanin query.
type fanInResult struct {
	Module  string   `json:"module"`
	Signal  string   `json:"signal"`
	Depth   int      `json:"depth"`
	Signals []string `json:"signals"`
}

// NewFanInCommand creates the fanin command.
func NewFanInCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FanInOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "fanin <signal>",
		Short: "Show the flattened fan-in signal set",
		Long: `Show the sorted, de-duplicated set of signals feeding a target,
collected from a backward trace at the given depth.

Examples:
  sigtrace fanin wfull --netlist design.json --depth 3
  sigtrace fanin wfull --netlist design.json --depth 3 --multi-cycle`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFanIn(opts, args[0], cmd)
		},
	}

	addInputFlags(cmd, &opts.InputOptions, false, true)
	cmd.Flags().StringVar(&opts.Module, "module", "", "module to search (default: top module)")
	cmd.Flags().IntVar(&opts.Depth, "depth", 3, "maximum hops beyond the immediate driver")
	cmd.Flags().BoolVar(&opts.MultiCycle, "multi-cycle", false, "continue through state-holding cells")

	return cmd
}

func runFanIn(opts *FanInOptions, signal string, cmd *cobra.Command) error {
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
	signals, err := g.FanIn(module, signal, opts.Depth, traceOpts...)
	if err != nil {
		return wrapQueryError(err)
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), fanInResult{
			Module:  module,
			Signal:  signal,
			Depth:   opts.Depth,
			Signals: signals,
		})
	}
	for _, s := range signals {
		fmt.Fprintln(cmd.OutOrStdout(), s)
	}
	return nil
}
