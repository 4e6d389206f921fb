package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mwaldron/sigtrace/internal/store"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	InputOptions
	Database string
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export waveform and netlist to SQLite",
		Long: `Parse both inputs and write them to a SQLite database: signals and
their full change timelines, modules, cells, and driver conflicts.
Re-exporting the same inputs into an existing database is a no-op.

Examples:
  sigtrace export --vcd dump.vcd --netlist design.json --db out.db
  sigtrace export --vcd dump.vcd --netlist design.json --db out.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	addInputFlags(cmd, &opts.InputOptions, true, true)
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to output SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	if err := opts.resolveInputs(); err != nil {
		return err
	}
	w, err := loadWaveform(opts.VCD)
	if err != nil {
		return err
	}
	g, err := loadGraph(opts.Netlist)
	if err != nil {
		return err
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if err := st.ExportWaveform(ctx, w); err != nil {
		return WrapExitError(ExitCommandError, "failed to export waveform", err)
	}
	if err := st.ExportNetlist(ctx, g); err != nil {
		return WrapExitError(ExitCommandError, "failed to export netlist", err)
	}

	counts, err := st.Summary(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to summarize export", err)
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), counts)
	}
	fmt.Fprintf(cmd.OutOrStdout(),
		"exported %d signal(s), %d change(s), %d module(s), %d cell(s), %d conflict(s) to %s\n",
		counts.Signals, counts.ValueChanges, counts.Modules, counts.Cells, counts.Conflicts,
		opts.Database)
	return nil
}
