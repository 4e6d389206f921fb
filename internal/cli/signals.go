package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// SignalsOptions holds flags for the signals command.
type SignalsOptions struct {
	*RootOptions
	InputOptions
	Pattern string
}

// NewSignalsCommand creates the signals command.
func NewSignalsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SignalsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "signals",
		Short: "List or search waveform signals",
		Long: `List every signal recorded in the waveform, or search by pattern.

Patterns containing glob metacharacters (* ? [ {) match against the full
hierarchical path; plain patterns match as case-insensitive substrings.

Examples:
  sigtrace signals --vcd dump.vcd
  sigtrace signals --vcd dump.vcd --pattern 'fifo_tb.dut.*'
  sigtrace signals --vcd dump.vcd --pattern wfull --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSignals(opts, cmd)
		},
	}

	addInputFlags(cmd, &opts.InputOptions, true, false)
	cmd.Flags().StringVar(&opts.Pattern, "pattern", "", "glob or substring pattern")

	return cmd
}

func runSignals(opts *SignalsOptions, cmd *cobra.Command) error {
	if err := opts.resolveInputs(); err != nil {
		return err
	}
	w, err := loadWaveform(opts.VCD)
	if err != nil {
		return err
	}

	if opts.Pattern == "" {
		paths := w.ListSignals()
		if opts.Format == "json" {
			return writeJSON(cmd.OutOrStdout(), paths)
		}
		for _, p := range paths {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	}

	infos, err := w.FindSignals(opts.Pattern)
	if err != nil {
		return wrapQueryError(err)
	}
	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), infos)
	}
	for _, info := range infos {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  width=%d  changes=%d\n",
			info.Path, info.Kind, info.Width, info.Changes)
	}
	return nil
}
