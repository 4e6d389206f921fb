package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ValueOptions holds flags for the value command.
type ValueOptions struct {
	*RootOptions
	InputOptions
}

// valueResult is the JSON payload for a value query.
type valueResult struct {
	Signal string `json:"signal"`
	Time   uint64 `json:"time"`
	Value  string `json:"value"`
}

// NewValueCommand creates the value command.
func NewValueCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValueOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "value <signal> <time>",
		Short: "Show a signal's value at an instant",
		Long: `Show the value a signal held at the given timestamp.

The value is the most recent change at or before the timestamp; before the
first recorded change every bit reads x.

Examples:
  sigtrace value fifo_tb.dut.wfull 325000 --vcd dump.vcd
  sigtrace value wfull 325000 --vcd dump.vcd --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValue(opts, args[0], args[1], cmd)
		},
	}

	addInputFlags(cmd, &opts.InputOptions, true, false)

	return cmd
}

func runValue(opts *ValueOptions, signal, timeArg string, cmd *cobra.Command) error {
	t, err := parseTime(timeArg)
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

	v, err := w.ValueAt(signal, t)
	if err != nil {
		return wrapQueryError(err)
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), valueResult{Signal: signal, Time: t, Value: string(v)})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s @ %d = %s\n", signal, t, v)
	return nil
}
