package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textOpts() *RootOptions { return &RootOptions{Format: "text"} }
func jsonOpts() *RootOptions { return &RootOptions{Format: "json"} }

func TestSignalsCommand_List(t *testing.T) {
	vcdPath, _ := writeInputs(t)

	out, err := execute(t, NewSignalsCommand(textOpts()), "--vcd", vcdPath)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 6)
	assert.Equal(t, "fifo_tb.dut.clk", lines[0])
}

func TestSignalsCommand_Pattern(t *testing.T) {
	vcdPath, _ := writeInputs(t)

	out, err := execute(t, NewSignalsCommand(textOpts()), "--vcd", vcdPath, "--pattern", "wfull")
	require.NoError(t, err)
	assert.Contains(t, out, "fifo_tb.dut.wfull")
	assert.Contains(t, out, "fifo_tb.dut.wfull_val")
	assert.NotContains(t, out, "clk")
}

func TestSignalsCommand_MissingInput(t *testing.T) {
	// No --vcd and no sigtrace.yaml anywhere near the test working dir.
	cmd := NewSignalsCommand(textOpts())
	_, err := execute(t, cmd, "--config", filepath.Join(t.TempDir(), "sigtrace.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "waveform input missing")
}

func TestSignalsCommand_ProjectConfig(t *testing.T) {
	vcdPath, netPath := writeInputs(t)
	dir := filepath.Dir(vcdPath)
	cfg := "vcd: " + filepath.Base(vcdPath) + "\nnetlist: " + filepath.Base(netPath) + "\n"
	cfgPath := filepath.Join(dir, "sigtrace.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	out, err := execute(t, NewSignalsCommand(textOpts()), "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "fifo_tb.dut.clk")
}

func TestValueCommand(t *testing.T) {
	vcdPath, _ := writeInputs(t)

	out, err := execute(t, NewValueCommand(textOpts()), "wfull", "400000", "--vcd", vcdPath)
	require.NoError(t, err)
	assert.Contains(t, out, "wfull @ 400000 = 1")
}

func TestValueCommand_UnknownSignal(t *testing.T) {
	vcdPath, _ := writeInputs(t)

	_, err := execute(t, NewValueCommand(textOpts()), "no_such", "0", "--vcd", vcdPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestValueCommand_BadTimestamp(t *testing.T) {
	vcdPath, _ := writeInputs(t)

	_, err := execute(t, NewValueCommand(textOpts()), "wfull", "soon", "--vcd", vcdPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTransitionsCommand(t *testing.T) {
	vcdPath, _ := writeInputs(t)

	out, err := execute(t, NewTransitionsCommand(textOpts()), "clk", "0", "400000", "--vcd", vcdPath)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 4)
	assert.Equal(t, "#0  0", lines[0])
	assert.Equal(t, "#325000  1", lines[3])
}

func TestModulesCommand(t *testing.T) {
	_, netPath := writeInputs(t)

	out, err := execute(t, NewModulesCommand(textOpts()), "--netlist", netPath)
	require.NoError(t, err)
	assert.Contains(t, out, "wptr_full")
	assert.Contains(t, out, "[top]")
}

func TestDriverCommand(t *testing.T) {
	_, netPath := writeInputs(t)

	out, err := execute(t, NewDriverCommand(textOpts()), "wfull_val", "--netlist", netPath)
	require.NoError(t, err)
	assert.Contains(t, out, "driven by cmp1 ($eq) via Y")
}

func TestDriverCommand_Boundary(t *testing.T) {
	_, netPath := writeInputs(t)

	out, err := execute(t, NewDriverCommand(textOpts()), "winc", "--netlist", netPath)
	require.NoError(t, err)
	assert.Contains(t, out, "boundary (input_port)")
}

func TestTraceCommand(t *testing.T) {
	_, netPath := writeInputs(t)

	out, err := execute(t, NewTraceCommand(textOpts()), "wfull", "--netlist", netPath, "--depth", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "[0] wfull <- wfull_reg ($dff)  [state]")
	assert.NotContains(t, out, "cmp1", "single-cycle trace stops at the register")
}

func TestTraceCommand_MultiCycle(t *testing.T) {
	_, netPath := writeInputs(t)

	out, err := execute(t, NewTraceCommand(textOpts()),
		"wfull", "--netlist", netPath, "--depth", "3", "--multi-cycle")
	require.NoError(t, err)
	assert.Contains(t, out, "wfull_reg")
	assert.Contains(t, out, "cmp1")
}

func TestFanInCommand(t *testing.T) {
	_, netPath := writeInputs(t)

	out, err := execute(t, NewFanInCommand(textOpts()),
		"wfull", "--netlist", netPath, "--depth", "3", "--multi-cycle")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, []string{"clk", "wfull_val", "wgraynext", "wq2_rptr"}, lines)
}

func TestDebugCommand_JSON(t *testing.T) {
	vcdPath, netPath := writeInputs(t)

	out, err := execute(t, NewDebugCommand(jsonOpts()),
		"wfull", "400000", "--vcd", vcdPath, "--netlist", netPath)
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Token  string `json:"token"`
			Value  string `json:"value"`
			Module string `json:"module"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "1", resp.Data.Value)
	assert.Equal(t, "wptr_full", resp.Data.Module)
	assert.NotEmpty(t, resp.Data.Token)
}

func TestDebugCommand_Mismatch(t *testing.T) {
	vcdPath, netPath := writeInputs(t)

	// In the netlist but absent from the dump is a hard failure.
	_, err := execute(t, NewDebugCommand(textOpts()),
		"wgraynext", "0", "--vcd", vcdPath, "--netlist", netPath, "--depth", "0")
	require.NoError(t, err) // wgraynext is in both inputs

	_, err = execute(t, NewDebugCommand(textOpts()),
		"no_such", "0", "--vcd", vcdPath, "--netlist", netPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestValidateCommand(t *testing.T) {
	_, netPath := writeInputs(t)

	out, err := execute(t, NewValidateCommand(textOpts()), netPath)
	require.NoError(t, err)
	assert.Contains(t, out, "valid")
	assert.Contains(t, out, "top wptr_full")
}

func TestValidateCommand_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"modules": {`), 0o644))

	_, err := execute(t, NewValidateCommand(textOpts()), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestExportCommand(t *testing.T) {
	vcdPath, netPath := writeInputs(t)
	dbPath := filepath.Join(t.TempDir(), "out.db")

	out, err := execute(t, NewExportCommand(jsonOpts()),
		"--vcd", vcdPath, "--netlist", netPath, "--db", dbPath)
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Signals      int `json:"signals"`
			ValueChanges int `json:"value_changes"`
			Modules      int `json:"modules"`
			Cells        int `json:"cells"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 6, resp.Data.Signals)
	assert.Equal(t, 14, resp.Data.ValueChanges)
	assert.Equal(t, 1, resp.Data.Modules)
	assert.Equal(t, 2, resp.Data.Cells)
}

func writeScenarioDir(t *testing.T, wantValue string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fifo.vcd"), []byte(testDump), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fifo.json"), []byte(testNetlist), 0o644))

	scenDir := filepath.Join(dir, "scenarios")
	require.NoError(t, os.Mkdir(scenDir, 0o755))
	scenario := `name: fifo-smoke
waveform: ../fifo.vcd
netlist: ../fifo.json
checks:
  - type: value
    signal: wfull
    time: 400000
    want: "` + wantValue + `"
`
	require.NoError(t, os.WriteFile(filepath.Join(scenDir, "fifo_smoke.yaml"), []byte(scenario), 0o644))
	return scenDir
}

func TestTestCommand_Pass(t *testing.T) {
	scenDir := writeScenarioDir(t, "1")

	out, err := execute(t, NewTestCommand(textOpts()), scenDir)
	require.NoError(t, err)
	assert.Contains(t, out, "PASS fifo-smoke")
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestTestCommand_Fail(t *testing.T) {
	scenDir := writeScenarioDir(t, "0")

	out, err := execute(t, NewTestCommand(textOpts()), scenDir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "FAIL fifo-smoke")
	assert.Contains(t, out, "value mismatch")
}

func TestTestCommand_MissingDir(t *testing.T) {
	_, err := execute(t, NewTestCommand(textOpts()), filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommand_FilterExcludesAll(t *testing.T) {
	scenDir := writeScenarioDir(t, "1")

	out, err := execute(t, NewTestCommand(textOpts()), scenDir, "--filter", "other-*")
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}
