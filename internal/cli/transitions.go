package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mwaldron/sigtrace/internal/vcd"
)

// TransitionsOptions holds flags for the transitions command.
type TransitionsOptions struct {
	*RootOptions
	InputOptions
}

// transitionsResult is the JSON payload for a transitions query.
type transitionsResult struct {
	Signal      string           `json:"signal"`
	Start       uint64           `json:"start"`
	End         uint64           `json:"end"`
	Transitions []vcd.Transition `json:"transitions"`
}

// NewTransitionsCommand creates the transitions command.
func NewTransitionsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TransitionsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "transitions <signal> <start> <end>",
		Short: "List a signal's changes within a window",
		Long: `List every recorded value change of a signal within the inclusive
time window [start, end].

Examples:
  sigtrace transitions fifo_tb.dut.wfull 0 400000 --vcd dump.vcd
  sigtrace transitions clk 0 1000000 --vcd dump.vcd --format json`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransitions(opts, args, cmd)
		},
	}

	addInputFlags(cmd, &opts.InputOptions, true, false)

	return cmd
}

func runTransitions(opts *TransitionsOptions, args []string, cmd *cobra.Command) error {
	start, err := parseTime(args[1])
	if err != nil {
		return err
	}
	end, err := parseTime(args[2])
	if err != nil {
		return err
	}
	if err := opts.resolveInputs(); err != nil {
		return err
	}
	w, err := loadWaveform(opts.VCD)
	if err != nil {
		return err
	}

	trs, err := w.TransitionsIn(args[0], start, end)
	if err != nil {
		return wrapQueryError(err)
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), transitionsResult{
			Signal:      args[0],
			Start:       start,
			End:         end,
			Transitions: trs,
		})
	}
	if len(trs) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "no changes of %s in [%d, %d]\n", args[0], start, end)
		return nil
	}
	for _, tr := range trs {
		fmt.Fprintf(cmd.OutOrStdout(), "#%d  %s\n", tr.Time, tr.Value)
	}
	return nil
}
