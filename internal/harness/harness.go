// Package harness runs declarative conformance scenarios against the
// debugger. A scenario names a waveform dump and a netlist, a list of
// query checks, and optionally a debug report compared against a golden
// snapshot.
//
// Scenarios are plain YAML, so regression cases collected from real
// debugging sessions can be replayed without writing Go.
package harness

import (
	"fmt"
	"os"

	"github.com/mwaldron/sigtrace/internal/debug"
	"github.com/mwaldron/sigtrace/internal/netlist"
	"github.com/mwaldron/sigtrace/internal/vcd"
)

// Result is the outcome of one scenario run.
type Result struct {
	// Scenario is the name of the scenario that produced this result.
	Scenario string

	// Failures holds one message per failed check. Empty means pass.
	Failures []string

	// Report is the debug report produced by the scenario's report step,
	// nil when the scenario has none.
	Report *debug.Report
}

// Passed reports whether every check succeeded.
func (r *Result) Passed() bool { return len(r.Failures) == 0 }

// Run executes a scenario: parse both inputs, validate the netlist against
// its schema, evaluate every check, and produce the report step if present.
//
// Check failures are collected in the result, not returned as errors;
// errors are reserved for scenarios that cannot run at all (unreadable
// inputs, parse failures, unknown signals in the report step).
func Run(scenario *Scenario) (*Result, error) {
	waveData, err := os.ReadFile(scenario.Waveform)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: failed to read waveform: %w", scenario.Name, err)
	}
	netData, err := os.ReadFile(scenario.Netlist)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: failed to read netlist: %w", scenario.Name, err)
	}

	wave, err := vcd.Parse(waveData)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	if err := netlist.ValidateSchema(netData); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	graph, err := netlist.Parse(netData)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	d := debug.New(wave, graph,
		debug.WithTokenGenerator(debug.FixedGenerator{Token: scenario.Token}))

	result := &Result{Scenario: scenario.Name}
	for i, check := range scenario.Checks {
		if err := evaluateCheck(d, check); err != nil {
			result.Failures = append(result.Failures,
				fmt.Sprintf("check %d (%s): %v", i, check.Type, err))
		}
	}

	if scenario.Report != nil {
		report, err := runReportStep(d, scenario.Report)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: report step: %w", scenario.Name, err)
		}
		result.Report = report
	}
	return result, nil
}

func runReportStep(d *debug.Debugger, step *ReportStep) (*debug.Report, error) {
	var opts []debug.ReportOption
	if step.Module != "" {
		opts = append(opts, debug.WithModule(step.Module))
	}
	if step.MultiCycle {
		opts = append(opts, debug.WithMultiCycleTrace())
	}
	return d.Debug(step.Signal, step.Time, step.Depth, opts...)
}
