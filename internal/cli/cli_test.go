package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const testDump = `$timescale 1ps $end
$scope module fifo_tb $end
$scope module dut $end
$var wire 1 ! clk $end
$var wire 1 " winc $end
$var wire 4 # wq2_rptr [3:0] $end
$var wire 4 $ wgraynext [3:0] $end
$var wire 1 % wfull_val $end
$var wire 1 & wfull $end
$upscope $end
$upscope $end
$enddefinitions $end
#0
0!
1"
b0000 #
b0000 $
0%
0&
#100000
1!
b0010 $
#200000
0!
b0100 $
#325000
1!
b0000 $
1%
#400000
1&
`

const testNetlist = `{
  "modules": {
    "wptr_full": {
      "attributes": {"top": "00000000000000000000000000000001"},
      "ports": {
        "clk": {"direction": "input", "bits": [2]},
        "winc": {"direction": "input", "bits": [3]},
        "wq2_rptr": {"direction": "input", "bits": [5, 6, 7, 8]},
        "wgraynext": {"direction": "input", "bits": [10, 11, 12, 13]},
        "wfull": {"direction": "output", "bits": [44]}
      },
      "cells": {
        "cmp1": {
          "type": "$eq",
          "port_directions": {"A": "input", "B": "input", "Y": "output"},
          "connections": {"A": [10, 11, 12, 13], "B": [5, 6, 7, 8], "Y": [43]}
        },
        "wfull_reg": {
          "type": "$dff",
          "port_directions": {"CLK": "input", "D": "input", "Q": "output"},
          "connections": {"CLK": [2], "D": [43], "Q": [44]}
        }
      },
      "netnames": {
        "clk": {"bits": [2]},
        "wfull_val": {"bits": [43]},
        "wfull": {"bits": [44]}
      }
    }
  }
}`

// writeInputs drops the waveform and netlist fixtures into a temp dir.
func writeInputs(t *testing.T) (vcdPath, netPath string) {
	t.Helper()
	dir := t.TempDir()
	vcdPath = filepath.Join(dir, "fifo.vcd")
	netPath = filepath.Join(dir, "fifo.json")
	require.NoError(t, os.WriteFile(vcdPath, []byte(testDump), 0o644))
	require.NoError(t, os.WriteFile(netPath, []byte(testNetlist), 0o644))
	return vcdPath, netPath
}

// execute runs a command with the given args and captures stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}
