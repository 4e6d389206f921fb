package debug

import (
	"fmt"

	"github.com/mwaldron/sigtrace/internal/netlist"
)

// Window is the time span a report's activity statistics cover.
type Window struct {
	Start uint64 `json:"start"`
	End   uint64 `json:"end"`
}

// FanInEntry pairs one cone signal with the value it held at the report
// instant and its activity within the report window.
type FanInEntry struct {
	Signal string `json:"signal"`

	// InWaveform is false when the netlist signal has no waveform
	// counterpart. The mismatch is surfaced explicitly - Value stays empty
	// rather than pretending "unknown".
	InWaveform bool   `json:"in_waveform"`
	Value      string `json:"value,omitempty"`

	DriverCell   string `json:"driver_cell,omitempty"`
	DriverType   string `json:"driver_type,omitempty"`
	StateHolding bool   `json:"state_holding,omitempty"`

	// Transitions counts recorded changes inside the report window.
	Transitions int `json:"transitions"`

	// Suspicious is an advisory hint: the signal stayed constant over the
	// window while a sibling in the same cone toggled. Never authoritative.
	Suspicious bool   `json:"suspicious,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// Report is the full cross-referenced answer for one debug call.
type Report struct {
	Token         string `json:"token"`
	Signal        string `json:"signal"`
	Module        string `json:"module"`
	ModuleDisplay string `json:"module_display,omitempty"`
	Time          uint64 `json:"time"`
	Value         string `json:"value"`

	Window Window         `json:"window"`
	Trace  *netlist.Trace `json:"trace"`
	FanIn  []FanInEntry   `json:"fan_in"`
}

type reportConfig struct {
	module     string
	window     *Window
	multiCycle bool
}

// ReportOption configures a Debug call.
type ReportOption func(*reportConfig)

// WithModule overrides the netlist module searched. Default is the graph's
// top module.
func WithModule(module string) ReportOption {
	return func(c *reportConfig) { c.module = module }
}

// WithWindow overrides the activity window used for transition counts and
// anomaly flagging. Default is [0, t].
func WithWindow(start, end uint64) ReportOption {
	return func(c *reportConfig) { c.window = &Window{Start: start, End: end} }
}

// WithMultiCycleTrace expands past state elements by re-rooting at their
// data inputs.
func WithMultiCycleTrace() ReportOption {
	return func(c *reportConfig) { c.multiCycle = true }
}

// Debug cross-references structure and behavior: a backward trace of the
// target plus, for the target and every fan-in signal, the value held at
// time t.
//
// A target present in the netlist but missing from the waveform (or vice
// versa) fails with the respective typed not-found error - the mismatch is
// never silently reported as "unknown".
func (d *Debugger) Debug(signal string, t uint64, depth int, opts ...ReportOption) (*Report, error) {
	cfg := reportConfig{module: d.graph.TopModule()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.module == "" {
		return nil, fmt.Errorf("netlist has no modules to search")
	}
	window := Window{Start: 0, End: t}
	if cfg.window != nil {
		window = *cfg.window
	}

	var traceOpts []netlist.TraceOption
	if cfg.multiCycle {
		traceOpts = append(traceOpts, netlist.WithMultiCycle())
	}
	tr, err := d.graph.BackwardTrace(cfg.module, signal, depth, traceOpts...)
	if err != nil {
		return nil, err
	}

	value, err := d.wave.ValueAt(signal, t)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Token:         d.tokens.Generate(),
		Signal:        signal,
		Module:        cfg.module,
		ModuleDisplay: d.graph.ModuleDisplayName(cfg.module),
		Time:          t,
		Value:         string(value),
		Window:        window,
		Trace:         tr,
	}

	report.FanIn = d.fanInEntries(cfg.module, tr, t, window)
	flagSuspicious(report.FanIn)
	return report, nil
}

// fanInEntries resolves every distinct input signal of the trace, in first
// appearance order, against the waveform.
func (d *Debugger) fanInEntries(module string, tr *netlist.Trace, t uint64, window Window) []FanInEntry {
	drivers := make(map[string]netlist.TraceNode, len(tr.Nodes))
	for _, node := range tr.Nodes {
		drivers[node.Signal] = node
	}

	seen := make(map[string]bool)
	var entries []FanInEntry
	for _, node := range tr.Nodes {
		for _, in := range node.InputSignals {
			if seen[in] {
				continue
			}
			seen[in] = true

			entry := FanInEntry{Signal: in}
			if dn, ok := drivers[in]; ok {
				entry.DriverCell = dn.Cell
				entry.DriverType = dn.CellType
				entry.StateHolding = dn.StateHolding
			}

			if v, err := d.wave.ValueAt(in, t); err == nil {
				entry.InWaveform = true
				entry.Value = string(v)
				if trs, err := d.wave.TransitionsIn(in, window.Start, window.End); err == nil {
					entry.Transitions = len(trs)
				}
			}
			entries = append(entries, entry)
		}
	}
	return entries
}

// flagSuspicious marks constant signals in a cone where siblings toggled.
// Advisory only: it annotates, never filters or alters the data.
func flagSuspicious(entries []FanInEntry) {
	toggling := 0
	for _, e := range entries {
		if e.InWaveform && e.Transitions > 1 {
			toggling++
		}
	}
	if toggling == 0 {
		return
	}
	for i := range entries {
		e := &entries[i]
		if e.InWaveform && e.Transitions <= 1 {
			e.Suspicious = true
			e.Reason = fmt.Sprintf("held %s across the window while %d sibling(s) toggled", e.Value, toggling)
		}
	}
}
