package netlist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
)

// rawDocument mirrors the producer JSON shape. Object key order is
// irrelevant except for cell connections, which carry declaration order
// (see orderedConnections).
type rawDocument struct {
	Creator string               `json:"creator"`
	Modules map[string]rawModule `json:"modules"`
}

type rawModule struct {
	Attributes map[string]any     `json:"attributes"`
	Ports      map[string]rawPort `json:"ports"`
	Cells      map[string]rawCell `json:"cells"`
	Netnames   map[string]rawNet  `json:"netnames"`
}

type rawPort struct {
	Direction string            `json:"direction"`
	Bits      []json.RawMessage `json:"bits"`
}

type rawCell struct {
	Type           string             `json:"type"`
	Attributes     map[string]any     `json:"attributes"`
	PortDirections map[string]string  `json:"port_directions"`
	Connections    orderedConnections `json:"connections"`
}

type rawNet struct {
	Bits       []json.RawMessage `json:"bits"`
	HideName   any               `json:"hide_name"`
	Attributes map[string]any    `json:"attributes"`
}

// orderedConnections decodes a JSON object while recording its key order.
// encoding/json maps discard order; the trace contract requires visiting a
// cell's ports exactly as the file declares them.
type orderedConnections struct {
	order []string
	bits  map[string][]json.RawMessage
}

// UnmarshalJSON implements json.Unmarshaler with a token-level walk.
func (o *orderedConnections) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("connections must be an object, got %v", tok)
	}

	o.bits = make(map[string][]json.RawMessage)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key := keyTok.(string)

		var bits []json.RawMessage
		if err := dec.Decode(&bits); err != nil {
			return fmt.Errorf("connection %q: %w", key, err)
		}
		if _, dup := o.bits[key]; !dup {
			o.order = append(o.order, key)
		}
		o.bits[key] = bits
	}
	_, err = dec.Token() // closing '}'
	return err
}

// Parse builds a Graph from a fully-buffered netlist document.
//
// Per module it derives the bit->alias and bit->driver indices. A bit
// referenced by a cell or port that resolves to no netname and no module
// boundary is a fatal *UnresolvedBitError. Multiple-driver conflicts are
// recorded, never fatal, and never silently resolved.
func Parse(data []byte) (*Graph, error) {
	var doc rawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, decodeError(err)
	}
	if len(doc.Modules) == 0 {
		return nil, &ParseError{Offset: -1, Message: "document declares no modules"}
	}

	g := &Graph{
		Creator: doc.Creator,
		modules: make(map[string]*Module, len(doc.Modules)),
	}
	for name := range doc.Modules {
		g.order = append(g.order, name)
	}
	sort.Strings(g.order)

	for _, name := range g.order {
		m, err := buildModule(name, doc.Modules[name])
		if err != nil {
			return nil, err
		}
		g.modules[name] = m
		if m.Top && g.top == "" {
			g.top = name
		}
	}

	slog.Debug("parsed netlist",
		"creator", g.Creator,
		"modules", len(g.modules),
		"top", g.top,
		"conflicts", len(g.Conflicts()))

	return g, nil
}

func decodeError(err error) *ParseError {
	var syn *json.SyntaxError
	if errors.As(err, &syn) {
		return &ParseError{Offset: syn.Offset, Message: syn.Error()}
	}
	var typ *json.UnmarshalTypeError
	if errors.As(err, &typ) {
		return &ParseError{Offset: typ.Offset, Message: typ.Error()}
	}
	return &ParseError{Offset: -1, Message: err.Error()}
}

func buildModule(name string, raw rawModule) (*Module, error) {
	m := &Module{
		Name:        name,
		DisplayName: name,
		Ports:       make(map[string]*Port, len(raw.Ports)),
		Cells:       make(map[string]*Cell, len(raw.Cells)),
		Nets:        make(map[string]*Net, len(raw.Netnames)),
		bitSignals:  make(map[int][]string),
		bitDrivers:  make(map[int][]driverRef),
		boundary:    make(map[int]bool),
	}

	if hdl := attrString(raw.Attributes, "hdlname"); hdl != "" {
		m.DisplayName = hdl
	}
	if _, ok := raw.Attributes["top"]; ok {
		m.Top = true
	}
	if src := attrString(raw.Attributes, "src"); src != "" {
		m.Src = parseSourceLoc(src)
	}

	known := make(map[int]bool) // bits appearing in any netname or port

	for pname, rp := range raw.Ports {
		bits, err := parseBits(name, "", pname, rp.Bits)
		if err != nil {
			return nil, err
		}
		p := &Port{Name: pname, Direction: Direction(rp.Direction), Bits: bits}
		m.Ports[pname] = p
		m.PortOrder = append(m.PortOrder, pname)
		for _, b := range bits {
			if b.Constant {
				continue
			}
			known[b.ID] = true
			addAlias(m.bitSignals, b.ID, pname)
			if p.Direction == Input || p.Direction == Inout {
				m.boundary[b.ID] = true
			}
		}
	}
	sort.Strings(m.PortOrder)

	for nname, rn := range raw.Netnames {
		bits, err := parseBits(name, "", nname, rn.Bits)
		if err != nil {
			return nil, err
		}
		n := &Net{Name: nname, Bits: bits, HideName: attrTruthy(rn.HideName)}
		if src := attrString(rn.Attributes, "src"); src != "" {
			n.Src = parseSourceLoc(src)
		}
		m.Nets[nname] = n
		m.NetOrder = append(m.NetOrder, nname)
		for _, b := range bits {
			if b.Constant {
				continue
			}
			known[b.ID] = true
			addAlias(m.bitSignals, b.ID, nname)
		}
	}
	sort.Strings(m.NetOrder)

	for cname, rc := range raw.Cells {
		c := &Cell{
			Name:        cname,
			Type:        rc.Type,
			Directions:  make(map[string]Direction, len(rc.PortDirections)),
			PortOrder:   rc.Connections.order,
			Connections: make(map[string][]BitRef, len(rc.Connections.bits)),
		}
		for p, d := range rc.PortDirections {
			c.Directions[p] = Direction(d)
		}
		if src := attrString(rc.Attributes, "src"); src != "" {
			c.Src = parseSourceLoc(src)
		}

		for _, port := range c.PortOrder {
			bits, err := parseBits(name, cname, port, rc.Connections.bits[port])
			if err != nil {
				return nil, err
			}
			c.Connections[port] = bits
			for _, b := range bits {
				if b.Constant {
					continue
				}
				if !known[b.ID] && !m.boundary[b.ID] {
					return nil, &UnresolvedBitError{Module: name, Cell: cname, Port: port, Bit: b.ID}
				}
				if c.Directions[port] == Output {
					m.bitDrivers[b.ID] = append(m.bitDrivers[b.ID], driverRef{cell: c, port: port})
				}
			}
		}

		m.Cells[cname] = c
		m.CellOrder = append(m.CellOrder, cname)
	}
	sort.Strings(m.CellOrder)

	// Deterministic driver order, and conflict records for multiply-driven
	// bits.
	var conflictBits []int
	for bit, drivers := range m.bitDrivers {
		sort.Slice(drivers, func(i, j int) bool {
			if drivers[i].cell.Name != drivers[j].cell.Name {
				return drivers[i].cell.Name < drivers[j].cell.Name
			}
			return drivers[i].port < drivers[j].port
		})
		if len(drivers) > 1 {
			conflictBits = append(conflictBits, bit)
		}
	}
	sort.Ints(conflictBits)
	for _, bit := range conflictBits {
		cells := make([]string, 0, len(m.bitDrivers[bit]))
		for _, d := range m.bitDrivers[bit] {
			cells = append(cells, d.cell.Name)
		}
		m.conflicts = append(m.conflicts, Conflict{Module: name, Bit: bit, Cells: dedupSorted(cells)})
	}

	// Canonical alias first: shortest name, ties lexicographic.
	for bit, names := range m.bitSignals {
		sort.Slice(names, func(i, j int) bool {
			if len(names[i]) != len(names[j]) {
				return len(names[i]) < len(names[j])
			}
			return names[i] < names[j]
		})
		m.bitSignals[bit] = dedupOrdered(names)
	}

	return m, nil
}

func parseBits(module, cell, port string, raw []json.RawMessage) ([]BitRef, error) {
	bits := make([]BitRef, 0, len(raw))
	for _, rm := range raw {
		var id int
		if err := json.Unmarshal(rm, &id); err == nil {
			bits = append(bits, BitRef{ID: id})
			continue
		}
		var s string
		if err := json.Unmarshal(rm, &s); err == nil {
			if len(s) == 1 && (s[0] == '0' || s[0] == '1' || s[0] == 'x' || s[0] == 'z') {
				bits = append(bits, BitRef{Const: s[0], Constant: true})
				continue
			}
			return nil, &ParseError{Offset: -1, Message: fmt.Sprintf(
				"module %s: %s connection %q has invalid constant bit %q", module, cellOrPort(cell), port, s)}
		}
		return nil, &ParseError{Offset: -1, Message: fmt.Sprintf(
			"module %s: %s connection %q has non-integer bit %s", module, cellOrPort(cell), port, string(rm))}
	}
	return bits, nil
}

func cellOrPort(cell string) string {
	if cell == "" {
		return "port"
	}
	return "cell " + cell
}

func addAlias(idx map[int][]string, bit int, name string) {
	for _, n := range idx[bit] {
		if n == name {
			return
		}
	}
	idx[bit] = append(idx[bit], name)
}

func attrString(attrs map[string]any, key string) string {
	if attrs == nil {
		return ""
	}
	if s, ok := attrs[key].(string); ok {
		return s
	}
	return ""
}

// attrTruthy interprets the producer's loose attribute encodings: numbers,
// numeric strings, bools.
func attrTruthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		for _, r := range t {
			if r == '1' {
				return true
			}
		}
		return false
	}
	return false
}

func dedupSorted(names []string) []string {
	sort.Strings(names)
	return dedupOrdered(names)
}

func dedupOrdered(names []string) []string {
	if len(names) == 0 {
		return names
	}
	out := names[:1]
	for _, n := range names[1:] {
		if n != out[len(out)-1] {
			out = append(out, n)
		}
	}
	return out
}
