// Package debug cross-references a waveform store with a netlist graph:
// given a signal and an instant, it pairs the structural fan-in cone with
// the value every cone signal held at that instant.
//
// Debugger is also the query facade consumed by external callers (CLI,
// agent tooling, report generators). Every method returns structured data,
// never rendered text; rendering is the caller's concern.
package debug

import (
	"github.com/mwaldron/sigtrace/internal/netlist"
	"github.com/mwaldron/sigtrace/internal/vcd"
)

// Debugger holds read-only references to the two stores. It never mutates
// them; concurrent calls are safe without coordination.
type Debugger struct {
	wave   *vcd.Waveform
	graph  *netlist.Graph
	tokens TokenGenerator
}

// Option configures a Debugger.
type Option func(*Debugger)

// WithTokenGenerator replaces the report token source. Tests use
// FixedGenerator for stable output.
func WithTokenGenerator(g TokenGenerator) Option {
	return func(d *Debugger) { d.tokens = g }
}

// New creates a Debugger over an already-built waveform and netlist.
func New(wave *vcd.Waveform, graph *netlist.Graph, opts ...Option) *Debugger {
	d := &Debugger{
		wave:   wave,
		graph:  graph,
		tokens: UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Waveform exposes the underlying waveform store.
func (d *Debugger) Waveform() *vcd.Waveform { return d.wave }

// Graph exposes the underlying netlist graph.
func (d *Debugger) Graph() *netlist.Graph { return d.graph }

// ListSignals returns all waveform signal paths, sorted.
func (d *Debugger) ListSignals() []string {
	return d.wave.ListSignals()
}

// FindSignals matches waveform signals by glob or substring pattern.
func (d *Debugger) FindSignals(pattern string) ([]vcd.SignalInfo, error) {
	return d.wave.FindSignals(pattern)
}

// GetValue returns a signal's value at time t.
func (d *Debugger) GetValue(signal string, t uint64) (vcd.BitVector, error) {
	return d.wave.ValueAt(signal, t)
}

// GetTransitions returns a signal's changes within [start, end].
func (d *Debugger) GetTransitions(signal string, start, end uint64) ([]vcd.Transition, error) {
	return d.wave.TransitionsIn(signal, start, end)
}

// ListModules returns all netlist module names, sorted.
func (d *Debugger) ListModules() []string {
	return d.graph.ListModules()
}

// FindDriver resolves the cell driving a signal within a module.
func (d *Debugger) FindDriver(module, signal string) (*netlist.Driver, error) {
	return d.graph.DriverOf(module, signal)
}

// BackwardTrace computes a signal's fan-in cone.
func (d *Debugger) BackwardTrace(module, signal string, depth int, opts ...netlist.TraceOption) (*netlist.Trace, error) {
	return d.graph.BackwardTrace(module, signal, depth, opts...)
}

// FanIn returns the de-duplicated fan-in signal set.
func (d *Debugger) FanIn(module, signal string, depth int) ([]string, error) {
	return d.graph.FanIn(module, signal, depth)
}

// Conflicts returns every multiple-driver conflict in the netlist.
func (d *Debugger) Conflicts() []netlist.Conflict {
	return d.graph.Conflicts()
}
