package vcd

import (
	"strings"
)

// BitVector is a signal value as a string of 0/1/x/z runes, MSB first,
// always exactly as wide as the signal's declared width.
type BitVector string

// Unknown reports whether any bit of the vector is x.
func (v BitVector) Unknown() bool {
	return strings.ContainsRune(string(v), 'x')
}

// HighZ reports whether any bit of the vector is z.
func (v BitVector) HighZ() bool {
	return strings.ContainsRune(string(v), 'z')
}

// allUnknown returns the declared initial value for a signal: width x bits.
func allUnknown(width int) BitVector {
	return BitVector(strings.Repeat("x", width))
}

// Change is one recorded value change: the signal took Value at time Time
// and held it until the next change.
type Change struct {
	Time  uint64
	Value BitVector
}

// Transition is a Change annotated with the signal's declared width.
// Width is a store-wide signal property, identical on every entry.
type Transition struct {
	Time  uint64    `json:"time"`
	Value BitVector `json:"value"`
	Width int       `json:"width"`
}

// Signal is one declared signal with its full change timeline.
//
// INVARIANT: changes is strictly increasing by Time. Duplicate timestamps
// in the source collapse at parse time, last record in file order winning.
type Signal struct {
	// ID is the compact identifier used in the dump body. Opaque, not
	// guaranteed unique across dumps.
	ID string

	// Name is the leaf signal name, e.g. "wfull".
	Name string

	// Scope is the hierarchical scope path, outermost first.
	Scope []string

	// Path is the canonical full hierarchical name, scope segments and
	// leaf joined with dots.
	Path string

	// Width is the declared bit width (>= 1).
	Width int

	// Kind is the declared var type: wire, reg, integer, real, ...
	Kind string

	changes []Change
}

// SignalInfo is the queryable summary of a declared signal.
type SignalInfo struct {
	Path    string `json:"path"`
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Width   int    `json:"width"`
	Changes int    `json:"changes"`
}

func (s *Signal) info() SignalInfo {
	return SignalInfo{
		Path:    s.Path,
		Name:    s.Name,
		Kind:    s.Kind,
		Width:   s.Width,
		Changes: len(s.changes),
	}
}

// Waveform is the indexed, immutable store built from one dump.
type Waveform struct {
	// Timescale is the dump's declared timescale, e.g. "1ps". Informational
	// only - queries stay in native units.
	Timescale string

	// Date and Version are the dump header's free-text metadata.
	Date    string
	Version string

	byPath map[string]*Signal   // canonical path -> signal
	byName map[string][]*Signal // leaf name -> signals in declaration order
	byID   map[string]*Signal   // dump identifier -> signal

	paths []string // sorted canonical paths
}

// SignalCount returns the number of declared signals.
func (w *Waveform) SignalCount() int {
	return len(w.byPath)
}

// ListSignals returns all full hierarchical signal names, sorted.
func (w *Waveform) ListSignals() []string {
	out := make([]string, len(w.paths))
	copy(out, w.paths)
	return out
}

// Signal resolves a name to its declaration info. The name may be a full
// hierarchical path or a bare leaf name; a bare name resolves to the first
// matching signal in declaration order.
func (w *Waveform) Signal(name string) (SignalInfo, error) {
	s, err := w.lookup(name)
	if err != nil {
		return SignalInfo{}, err
	}
	return s.info(), nil
}

// lookup resolves full paths first, then leaf names.
func (w *Waveform) lookup(name string) (*Signal, error) {
	key := canonicalName(name)
	if s, ok := w.byPath[key]; ok {
		return s, nil
	}
	if list, ok := w.byName[key]; ok && len(list) > 0 {
		return list[0], nil
	}
	return nil, &SignalNotFoundError{Name: name}
}
