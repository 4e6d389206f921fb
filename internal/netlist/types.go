package netlist

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Direction classifies a port as seen from the cell or module it belongs to.
type Direction string

const (
	Input  Direction = "input"
	Output Direction = "output"
	Inout  Direction = "inout"
)

// SourceLoc is HDL source provenance parsed from an "src" attribute of the
// form "file:line.col-line.col".
type SourceLoc struct {
	File      string `json:"file"`
	StartLine int    `json:"start_line"`
	StartCol  int    `json:"start_col"`
	EndLine   int    `json:"end_line"`
	EndCol    int    `json:"end_col"`
}

// String renders the location back in its attribute form.
func (l *SourceLoc) String() string {
	if l == nil {
		return ""
	}
	return fmt.Sprintf("%s:%d.%d-%d.%d", l.File, l.StartLine, l.StartCol, l.EndLine, l.EndCol)
}

// parseSourceLoc parses "file:line.col-line.col". Unparseable strings yield
// nil - provenance is optional metadata, never a load failure.
func parseSourceLoc(s string) *SourceLoc {
	// Yosys may pack several locations separated by '|'; keep the first.
	if i := strings.IndexByte(s, '|'); i >= 0 {
		s = s[:i]
	}
	colon := strings.LastIndexByte(s, ':')
	if colon <= 0 {
		return nil
	}
	loc := &SourceLoc{File: s[:colon]}
	span := s[colon+1:]
	from, to, ok := strings.Cut(span, "-")
	if !ok {
		to = from
	}
	var err1, err2 error
	loc.StartLine, loc.StartCol, err1 = parseLineCol(from)
	loc.EndLine, loc.EndCol, err2 = parseLineCol(to)
	if err1 != nil || err2 != nil {
		return nil
	}
	return loc
}

func parseLineCol(s string) (int, int, error) {
	lineStr, colStr, ok := strings.Cut(s, ".")
	if !ok {
		colStr = "0"
	}
	line, err := strconv.Atoi(lineStr)
	if err != nil {
		return 0, 0, err
	}
	col, err := strconv.Atoi(colStr)
	if err != nil {
		return 0, 0, err
	}
	return line, col, nil
}

// BitRef is one element of a connection's bit list: either a net bit-id or
// a constant driver ("0"/"1"/"x"/"z").
type BitRef struct {
	ID       int
	Const    byte
	Constant bool
}

// String renders the ref for diagnostics.
func (b BitRef) String() string {
	if b.Constant {
		return string(b.Const)
	}
	return strconv.Itoa(b.ID)
}

// Port is a module boundary connection.
type Port struct {
	Name      string
	Direction Direction
	Bits      []BitRef
}

// Net is one named wire (or wire bundle) inside a module.
type Net struct {
	Name     string
	Bits     []BitRef
	Src      *SourceLoc
	HideName bool
}

// Cell is one logic element instance inside a module.
//
// INVARIANT: PortOrder preserves the exact declaration order of the
// connections object in the source document; trace expansion depends on it
// for reproducible output.
type Cell struct {
	Name        string
	Type        string
	Directions  map[string]Direction
	PortOrder   []string
	Connections map[string][]BitRef
	Src         *SourceLoc
}

// stateHoldingTypes tags clocked/state-holding RTL primitive types whose
// output was determined in a prior time step. The tracer treats them as
// causal boundaries.
var stateHoldingTypes = map[string]bool{
	"$dff": true, "$dffe": true, "$dffsr": true, "$dffsre": true,
	"$adff": true, "$adffe": true, "$aldff": true, "$aldffe": true,
	"$sdff": true, "$sdffe": true, "$sdffce": true,
	"$dlatch": true, "$adlatch": true, "$dlatchsr": true,
	"$sr": true, "$ff": true, "$mem": true, "$mem_v2": true,
}

// StateHolding reports whether the cell's type is a clocked or
// state-holding primitive, including technology-mapped hard cells whose
// names carry DFF/LATCH tags.
func (c *Cell) StateHolding() bool {
	if stateHoldingTypes[c.Type] {
		return true
	}
	u := strings.ToUpper(strings.TrimPrefix(c.Type, "$"))
	return strings.Contains(u, "DFF") || strings.Contains(u, "LATCH")
}

// InputPorts returns the cell's input port names in declaration order.
func (c *Cell) InputPorts() []string {
	var out []string
	for _, p := range c.PortOrder {
		if c.Directions[p] == Input {
			out = append(out, p)
		}
	}
	return out
}

// dataInputPort picks the data input of a state-holding cell for
// multi-cycle re-rooting: the port named D when present, otherwise the
// first input that is not a clock/reset/enable line.
func (c *Cell) dataInputPort() string {
	if _, ok := c.Connections["D"]; ok && c.Directions["D"] == Input {
		return "D"
	}
	control := map[string]bool{
		"CLK": true, "C": true, "CLOCK": true, "RST": true, "ARST": true,
		"SRST": true, "ALOAD": true, "EN": true, "CE": true, "SET": true,
		"CLR": true,
	}
	for _, p := range c.InputPorts() {
		if !control[strings.ToUpper(p)] {
			return p
		}
	}
	return ""
}

// Conflict records a bit-id driven by more than one cell output port.
// Conflicts are data, not errors: diagnosing them is often the purpose of
// the trace.
type Conflict struct {
	Module string   `json:"module"`
	Bit    int      `json:"bit"`
	Cells  []string `json:"cells"` // sorted driving cell names
}

// driverRef names one (cell, output port) pair driving a bit.
type driverRef struct {
	cell *Cell
	port string
}

// Module is one parsed module with its derived indices.
type Module struct {
	Name string

	// DisplayName is the hdlname attribute when present, else Name.
	DisplayName string

	// Top is set when the module carries the synthesis top attribute.
	Top bool

	Src *SourceLoc

	Ports     map[string]*Port
	PortOrder []string // sorted
	Cells     map[string]*Cell
	CellOrder []string // sorted
	Nets      map[string]*Net
	NetOrder  []string // sorted

	// bitSignals maps a bit-id to every signal name aliasing it, sorted by
	// (length, lexicographic) so the canonical alias is the first entry.
	bitSignals map[int][]string

	// bitDrivers maps a bit-id to its driving (cell, port) pairs, sorted by
	// cell name. More than one entry is a multiple-driver conflict.
	bitDrivers map[int][]driverRef

	// boundary marks bits that enter the module through input/inout ports.
	boundary map[int]bool

	conflicts []Conflict
}

// signalBits resolves a signal name to its bit-ids, checking netnames
// first, then ports.
func (m *Module) signalBits(signal string) ([]BitRef, error) {
	if n, ok := m.Nets[signal]; ok {
		return n.Bits, nil
	}
	if p, ok := m.Ports[signal]; ok {
		return p.Bits, nil
	}
	return nil, &SignalNotFoundError{Module: m.Name, Signal: signal}
}

// aliasOf returns the canonical signal name for a bit: the shortest alias,
// ties broken lexicographically.
func (m *Module) aliasOf(bit int) (string, bool) {
	names := m.bitSignals[bit]
	if len(names) == 0 {
		return "", false
	}
	return names[0], true
}

// Aliases returns every signal name sharing the bit.
func (m *Module) Aliases(bit int) []string {
	names := m.bitSignals[bit]
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// Conflicts returns the module's multiple-driver conflicts, sorted by bit.
func (m *Module) Conflicts() []Conflict {
	out := make([]Conflict, len(m.conflicts))
	copy(out, m.conflicts)
	return out
}

// isInputPort reports whether the signal is a module input or inout port.
func (m *Module) isInputPort(signal string) bool {
	p, ok := m.Ports[signal]
	return ok && (p.Direction == Input || p.Direction == Inout)
}

// Graph is the whole parsed netlist.
type Graph struct {
	Creator string

	modules map[string]*Module
	order   []string // sorted module names
	top     string
}

// ListModules returns all module names, sorted.
func (g *Graph) ListModules() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Module resolves a module by name.
func (g *Graph) Module(name string) (*Module, error) {
	m, ok := g.modules[name]
	if !ok {
		return nil, &ModuleNotFoundError{Module: name}
	}
	return m, nil
}

// TopModule returns the module tagged with the top attribute, falling back
// to the first module in sorted order. Empty graph returns "".
func (g *Graph) TopModule() string {
	if g.top != "" {
		return g.top
	}
	if len(g.order) > 0 {
		return g.order[0]
	}
	return ""
}

// ModuleDisplayName maps an internal module name to its hdlname attribute
// when one exists.
func (g *Graph) ModuleDisplayName(name string) string {
	if m, ok := g.modules[name]; ok {
		return m.DisplayName
	}
	return name
}

// ListSignals returns every signal name (nets and ports) in a module,
// sorted and de-duplicated.
func (g *Graph) ListSignals(module string) ([]string, error) {
	m, err := g.Module(module)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(m.Nets)+len(m.Ports))
	var out []string
	for _, name := range m.NetOrder {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	for _, name := range m.PortOrder {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Conflicts returns every multiple-driver conflict in the netlist, sorted
// by module then bit.
func (g *Graph) Conflicts() []Conflict {
	var out []Conflict
	for _, name := range g.order {
		out = append(out, g.modules[name].conflicts...)
	}
	return out
}
