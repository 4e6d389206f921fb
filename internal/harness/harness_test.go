package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioPath = "testdata/scenarios/fifo_full.yaml"

func TestLoad_ResolvesRelativePaths(t *testing.T) {
	s, err := Load(scenarioPath)
	require.NoError(t, err)

	assert.Equal(t, "fifo-full", s.Name)
	assert.Equal(t, filepath.Join("testdata", "fifo.vcd"), s.Waveform)
	assert.Equal(t, filepath.Join("testdata", "fifo.json"), s.Netlist)
	assert.Equal(t, "golden-fifo", s.Token)
	assert.Len(t, s.Checks, 8)
	require.NotNil(t, s.Report)
	assert.Equal(t, "wfull", s.Report.Signal)
}

func TestLoad_MissingName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("waveform: a.vcd\nnetlist: a.json\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing name")
}

func TestLoad_UnknownCheckType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	content := "name: x\nwaveform: a.vcd\nnetlist: a.json\nchecks:\n  - type: bogus\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown type "bogus"`)
}

func TestRun_ScenarioPasses(t *testing.T) {
	s, err := Load(scenarioPath)
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)

	assert.True(t, result.Passed(), "failures: %v", result.Failures)
	require.NotNil(t, result.Report)
	assert.Equal(t, "golden-fifo", result.Report.Token)
	assert.Equal(t, "1", result.Report.Value)
}

func TestRun_CheckFailureRecorded(t *testing.T) {
	s := &Scenario{
		Name:     "failing",
		Waveform: "testdata/fifo.vcd",
		Netlist:  "testdata/fifo.json",
		Token:    "t",
		Checks: []Check{
			{Type: CheckValue, Signal: "wfull", Time: 400000, Want: "0"},
			{Type: CheckDriver, Module: "wptr_full", Signal: "clk", Cell: "cmp1"},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)

	assert.False(t, result.Passed())
	require.Len(t, result.Failures, 2)
	assert.Contains(t, result.Failures[0], "value mismatch")
	assert.Contains(t, result.Failures[1], "boundary (input_port)")
}

func TestRun_UnknownSignalCheckFails(t *testing.T) {
	s := &Scenario{
		Name:     "unknown-signal",
		Waveform: "testdata/fifo.vcd",
		Netlist:  "testdata/fifo.json",
		Token:    "t",
		Checks: []Check{
			{Type: CheckValue, Signal: "no_such", Time: 0, Want: "0"},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Passed())
}

func TestRun_MissingWaveform(t *testing.T) {
	s := &Scenario{
		Name:     "missing",
		Waveform: filepath.Join(t.TempDir(), "nope.vcd"),
		Netlist:  "testdata/fifo.json",
	}

	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read waveform")
}

func TestRunGolden_FifoFull(t *testing.T) {
	require.NoError(t, RunGolden(t, scenarioPath))
}

func TestAssertGolden_RequiresReport(t *testing.T) {
	err := AssertGolden(t, "no-report", &Result{Scenario: "no-report"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no report step")
}
