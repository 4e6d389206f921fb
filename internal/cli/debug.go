package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mwaldron/sigtrace/internal/debug"
)

// DebugOptions holds flags for the debug command.
type DebugOptions struct {
	*RootOptions
	InputOptions
	Module      string
	Depth       int
	MultiCycle  bool
	WindowStart uint64
	WindowEnd   uint64
}

// NewDebugCommand creates the debug command.
func NewDebugCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DebugOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "debug <signal> <time>",
		Short: "Cross-reference structure and behavior for one signal",
		Long: `Produce a full debug report for a signal at an instant: its value,
a backward trace through its drivers, and for every fan-in signal the
value held at that instant plus its activity over the report window.

The window defaults to [0, time]. Signals that stayed constant while
siblings in the same cone toggled are flagged as suspicious; the flag is
advisory and never filters data.

A target present in only one of the two inputs is an error: the mismatch
is surfaced, not papered over.

Examples:
  sigtrace debug wfull 400000 --vcd dump.vcd --netlist design.json
  sigtrace debug wfull 400000 --vcd dump.vcd --netlist design.json --depth 5 --format json
  sigtrace debug wfull 400000 --vcd dump.vcd --netlist design.json --window-start 300000 --window-end 400000`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDebug(opts, args[0], args[1], cmd)
		},
	}

	addInputFlags(cmd, &opts.InputOptions, true, true)
	cmd.Flags().StringVar(&opts.Module, "module", "", "module to search (default: top module)")
	cmd.Flags().IntVar(&opts.Depth, "depth", 3, "maximum hops beyond the immediate driver")
	cmd.Flags().BoolVar(&opts.MultiCycle, "multi-cycle", false, "continue through state-holding cells")
	cmd.Flags().Uint64Var(&opts.WindowStart, "window-start", 0, "activity window start")
	cmd.Flags().Uint64Var(&opts.WindowEnd, "window-end", 0, "activity window end (default: query time)")

	return cmd
}

func runDebug(opts *DebugOptions, signal, timeArg string, cmd *cobra.Command) error {
	t, err := parseTime(timeArg)
	if err != nil {
		return err
	}
	if err := opts.resolveInputs(); err != nil {
		return err
	}
	d, err := loadDebugger(&opts.InputOptions)
	if err != nil {
		return err
	}

	var reportOpts []debug.ReportOption
	if opts.Module != "" {
		reportOpts = append(reportOpts, debug.WithModule(opts.Module))
	}
	if opts.MultiCycle {
		reportOpts = append(reportOpts, debug.WithMultiCycleTrace())
	}
	if cmd.Flags().Changed("window-start") || cmd.Flags().Changed("window-end") {
		end := opts.WindowEnd
		if !cmd.Flags().Changed("window-end") {
			end = t
		}
		reportOpts = append(reportOpts, debug.WithWindow(opts.WindowStart, end))
	}

	report, err := d.Debug(signal, t, opts.Depth, reportOpts...)
	if err != nil {
		return wrapQueryError(err)
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), report)
	}
	printReportText(cmd, report)
	return nil
}

func printReportText(cmd *cobra.Command, r *debug.Report) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "report %s\n", r.Token)
	module := r.Module
	if r.ModuleDisplay != "" && r.ModuleDisplay != r.Module {
		module += " (" + r.ModuleDisplay + ")"
	}
	fmt.Fprintf(w, "%s.%s @ %d = %s\n", module, r.Signal, r.Time, r.Value)
	fmt.Fprintf(w, "window: [%d, %d]\n\n", r.Window.Start, r.Window.End)

	printTraceText(cmd, r.Trace)

	if len(r.FanIn) == 0 {
		return
	}
	fmt.Fprintln(w, "\nfan-in:")
	for _, e := range r.FanIn {
		if !e.InWaveform {
			fmt.Fprintf(w, "  %s: not in waveform\n", e.Signal)
			continue
		}
		line := fmt.Sprintf("  %s = %s  (%d change(s))", e.Signal, e.Value, e.Transitions)
		if e.DriverCell != "" {
			line += fmt.Sprintf("  <- %s (%s)", e.DriverCell, e.DriverType)
		}
		if e.Suspicious {
			line += "  SUSPICIOUS: " + e.Reason
		}
		fmt.Fprintln(w, line)
	}
}
