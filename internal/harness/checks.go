package harness

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/mwaldron/sigtrace/internal/debug"
	"github.com/mwaldron/sigtrace/internal/netlist"
)

// CheckError is returned when a check's query succeeded but its outcome
// did not match the expectation.
type CheckError struct {
	Type     string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *CheckError) Error() string {
	return fmt.Sprintf("%s mismatch: expected %s, got %s", e.Type, e.Expected, e.Actual)
}

// evaluateCheck runs one check against the debugger. Query errors (unknown
// signal, unknown module) are reported as check failures too: a scenario
// that queries a missing signal is itself a regression worth catching.
func evaluateCheck(d *debug.Debugger, check Check) error {
	switch check.Type {
	case CheckValue:
		return checkValue(d, check)
	case CheckTransitions:
		return checkTransitions(d, check)
	case CheckDriver:
		return checkDriver(d, check)
	case CheckTrace:
		return checkTrace(d, check)
	case CheckFanIn:
		return checkFanIn(d, check)
	}
	return fmt.Errorf("unknown check type %q", check.Type)
}

func checkValue(d *debug.Debugger, check Check) error {
	v, err := d.GetValue(check.Signal, check.Time)
	if err != nil {
		return err
	}
	if string(v) != check.Want {
		return &CheckError{
			Type:     CheckValue,
			Expected: fmt.Sprintf("%s = %q at %d", check.Signal, check.Want, check.Time),
			Actual:   fmt.Sprintf("%q", string(v)),
		}
	}
	return nil
}

func checkTransitions(d *debug.Debugger, check Check) error {
	trs, err := d.GetTransitions(check.Signal, check.From, check.To)
	if err != nil {
		return err
	}
	if len(trs) != check.Count {
		return &CheckError{
			Type:     CheckTransitions,
			Expected: fmt.Sprintf("%d changes of %s in [%d, %d]", check.Count, check.Signal, check.From, check.To),
			Actual:   fmt.Sprintf("%d changes", len(trs)),
		}
	}
	return nil
}

func checkDriver(d *debug.Debugger, check Check) error {
	drv, err := d.FindDriver(check.Module, check.Signal)
	if err != nil {
		return err
	}
	if drv.Boundary {
		return &CheckError{
			Type:     CheckDriver,
			Expected: fmt.Sprintf("%s driven by cell %s", check.Signal, check.Cell),
			Actual:   fmt.Sprintf("boundary (%s)", drv.BoundaryKind),
		}
	}
	if drv.Cell != check.Cell {
		return &CheckError{
			Type:     CheckDriver,
			Expected: fmt.Sprintf("%s driven by cell %s", check.Signal, check.Cell),
			Actual:   fmt.Sprintf("cell %s", drv.Cell),
		}
	}
	return nil
}

func checkTrace(d *debug.Debugger, check Check) error {
	var opts []netlist.TraceOption
	if check.MultiCycle {
		opts = append(opts, netlist.WithMultiCycle())
	}
	tr, err := d.BackwardTrace(check.Module, check.Signal, check.Depth, opts...)
	if err != nil {
		return err
	}

	cells := make([]string, len(tr.Nodes))
	for i, n := range tr.Nodes {
		cells[i] = n.Cell
	}
	if check.Cells != nil && !reflect.DeepEqual(cells, check.Cells) {
		return &CheckError{
			Type:     CheckTrace,
			Expected: fmt.Sprintf("cells [%s]", strings.Join(check.Cells, ", ")),
			Actual:   fmt.Sprintf("cells [%s]", strings.Join(cells, ", ")),
		}
	}
	if check.Complete != nil && *check.Complete == tr.Truncated {
		return &CheckError{
			Type:     CheckTrace,
			Expected: fmt.Sprintf("complete=%v", *check.Complete),
			Actual:   fmt.Sprintf("truncated=%v", tr.Truncated),
		}
	}
	return nil
}

func checkFanIn(d *debug.Debugger, check Check) error {
	var opts []netlist.TraceOption
	if check.MultiCycle {
		opts = append(opts, netlist.WithMultiCycle())
	}
	tr, err := d.BackwardTrace(check.Module, check.Signal, check.Depth, opts...)
	if err != nil {
		return err
	}
	got := fanInOf(tr)
	if !reflect.DeepEqual(got, check.Signals) {
		return &CheckError{
			Type:     CheckFanIn,
			Expected: fmt.Sprintf("[%s]", strings.Join(check.Signals, ", ")),
			Actual:   fmt.Sprintf("[%s]", strings.Join(got, ", ")),
		}
	}
	return nil
}

// fanInOf mirrors the graph's fan-in flattening, reusing the trace already
// computed with the check's options.
func fanInOf(tr *netlist.Trace) []string {
	seen := make(map[string]bool)
	var out []string
	for _, n := range tr.Nodes {
		for _, in := range n.InputSignals {
			if !seen[in] {
				seen[in] = true
				out = append(out, in)
			}
		}
	}
	sort.Strings(out)
	return out
}
