package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mwaldron/sigtrace/internal/debug"
	"github.com/mwaldron/sigtrace/internal/netlist"
	"github.com/mwaldron/sigtrace/internal/vcd"
)

// defaultConfigFile is the project config looked up when input flags are
// omitted.
const defaultConfigFile = "sigtrace.yaml"

// ProjectConfig supplies default input paths so repeated queries against
// one design don't repeat the flags. Paths resolve relative to the config
// file's directory.
type ProjectConfig struct {
	VCD     string `yaml:"vcd"`
	Netlist string `yaml:"netlist"`
}

// InputOptions holds the input file flags shared by query commands.
type InputOptions struct {
	VCD     string
	Netlist string
	Config  string

	needVCD     bool
	needNetlist bool
}

// addInputFlags registers --config plus whichever of --vcd/--netlist the
// command consumes.
func addInputFlags(cmd *cobra.Command, opts *InputOptions, needVCD, needNetlist bool) {
	opts.needVCD = needVCD
	opts.needNetlist = needNetlist
	cmd.Flags().StringVar(&opts.Config, "config", defaultConfigFile, "project config supplying default input paths")
	if needVCD {
		cmd.Flags().StringVar(&opts.VCD, "vcd", "", "path to VCD waveform dump")
	}
	if needNetlist {
		cmd.Flags().StringVar(&opts.Netlist, "netlist", "", "path to Yosys JSON netlist")
	}
}

// resolveInputs fills missing input paths from the project config. A path
// still missing afterwards is a command error.
func (opts *InputOptions) resolveInputs() error {
	if (opts.VCD != "" || !opts.needVCD) && (opts.Netlist != "" || !opts.needNetlist) {
		return nil
	}

	data, err := os.ReadFile(opts.Config)
	switch {
	case err == nil:
		var cfg ProjectConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return WrapExitError(ExitCommandError, "failed to parse "+opts.Config, err)
		}
		dir := filepath.Dir(opts.Config)
		if opts.VCD == "" && cfg.VCD != "" {
			opts.VCD = resolvePath(dir, cfg.VCD)
		}
		if opts.Netlist == "" && cfg.Netlist != "" {
			opts.Netlist = resolvePath(dir, cfg.Netlist)
		}
	case !os.IsNotExist(err):
		return WrapExitError(ExitCommandError, "failed to read "+opts.Config, err)
	}

	if opts.needVCD && opts.VCD == "" {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("waveform input missing: pass --vcd or set vcd in %s", opts.Config))
	}
	if opts.needNetlist && opts.Netlist == "" {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("netlist input missing: pass --netlist or set netlist in %s", opts.Config))
	}
	return nil
}

func resolvePath(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// loadWaveform reads and parses a VCD file. Unreadable or malformed input
// is a command error (exit 2).
func loadWaveform(path string) (*vcd.Waveform, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to read waveform", err)
	}
	w, err := vcd.Parse(data)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to parse waveform", err)
	}
	return w, nil
}

// loadGraph reads and parses a Yosys JSON netlist.
func loadGraph(path string) (*netlist.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to read netlist", err)
	}
	g, err := netlist.Parse(data)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to parse netlist", err)
	}
	return g, nil
}

// loadDebugger builds the full cross-referencing debugger from both inputs.
func loadDebugger(opts *InputOptions) (*debug.Debugger, error) {
	w, err := loadWaveform(opts.VCD)
	if err != nil {
		return nil, err
	}
	g, err := loadGraph(opts.Netlist)
	if err != nil {
		return nil, err
	}
	return debug.New(w, g), nil
}

// wrapQueryError maps a query failure to exit 1. Unknown signals and
// modules land here; the typed cause stays visible in the message.
func wrapQueryError(err error) error {
	return WrapExitError(ExitFailure, "query failed", err)
}

// parseTime parses a decimal timestamp argument.
func parseTime(arg string) (uint64, error) {
	t, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, WrapExitError(ExitCommandError, "invalid timestamp "+strconv.Quote(arg), err)
	}
	return t, nil
}
