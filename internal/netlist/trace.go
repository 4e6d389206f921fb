package netlist

import "sort"

// PortConn is one input port of a driving cell with the signal names
// connected to it, in bit order.
type PortConn struct {
	Port    string   `json:"port"`
	Signals []string `json:"signals"`
}

// Driver is the answer to a driver_of query: either a cell driver or a
// boundary terminal. Boundary is a valid, expected terminal case - a
// module input port or an undriven net - not an error.
type Driver struct {
	Module string `json:"module"`
	Signal string `json:"signal"`

	Boundary     bool   `json:"boundary"`
	BoundaryKind string `json:"boundary_kind,omitempty"` // "input_port" | "undriven"

	Cell         string     `json:"cell,omitempty"`
	CellType     string     `json:"cell_type,omitempty"`
	OutputPort   string     `json:"output_port,omitempty"`
	StateHolding bool       `json:"state_holding,omitempty"`
	Inputs       []PortConn `json:"inputs,omitempty"`
	Conflicts    []Conflict `json:"conflicts,omitempty"`
	Src          string     `json:"src,omitempty"`
}

// TraceNode is one step of a backward trace: a signal together with the
// cell that drives it. Nodes are ephemeral - owned by the caller, holding
// no references back into the graph.
type TraceNode struct {
	Signal string `json:"signal"`
	Depth  int    `json:"depth"`

	Cell         string   `json:"cell"`
	CellType     string   `json:"cell_type"`
	OutputPort   string   `json:"output_port,omitempty"`
	StateHolding bool     `json:"state_holding,omitempty"`
	InputSignals []string `json:"input_signals"`
	Conflicts    []string `json:"conflicts,omitempty"` // all driving cells when multiply driven
	Src          string   `json:"src,omitempty"`
}

// Trace is the ordered result of a backward trace. Truncated distinguishes
// a partial cone (depth limit or cycle-guard fired) from a complete one;
// truncation is a normal outcome, never an error.
type Trace struct {
	Module    string      `json:"module"`
	Target    string      `json:"target"`
	Nodes     []TraceNode `json:"nodes"`
	Truncated bool        `json:"truncated"`
}

type traceConfig struct {
	multiCycle bool
}

// TraceOption configures a backward trace.
type TraceOption func(*traceConfig)

// WithMultiCycle re-enters the BFS at each state element's data input as a
// fresh root. By default state-holding cells are causal boundaries: their
// value was settled in a prior time step, so same-cycle causality stops
// there.
func WithMultiCycle() TraceOption {
	return func(c *traceConfig) { c.multiCycle = true }
}

// DriverOf resolves the cell driving a signal within a module.
func (g *Graph) DriverOf(module, signal string) (*Driver, error) {
	m, err := g.Module(module)
	if err != nil {
		return nil, err
	}
	bits, err := m.signalBits(signal)
	if err != nil {
		return nil, err
	}
	return m.driverOf(signal, bits), nil
}

// driverOf inspects the signal's bits LSB-first and describes the first
// cell driver found, or the boundary terminal when none exists.
func (m *Module) driverOf(signal string, bits []BitRef) *Driver {
	for _, b := range bits {
		if b.Constant {
			continue
		}
		drivers := m.bitDrivers[b.ID]
		if len(drivers) == 0 {
			continue
		}

		d := drivers[0]
		out := &Driver{
			Module:       m.Name,
			Signal:       signal,
			Cell:         d.cell.Name,
			CellType:     d.cell.Type,
			OutputPort:   d.port,
			StateHolding: d.cell.StateHolding(),
			Inputs:       m.cellInputs(d.cell),
			Src:          d.cell.Src.String(),
		}
		if len(drivers) > 1 {
			out.Conflicts = m.conflictsForBit(b.ID)
		}
		return out
	}

	kind := "undriven"
	if m.isInputPort(signal) {
		kind = "input_port"
	}
	var src string
	if n, ok := m.Nets[signal]; ok {
		src = n.Src.String()
	}
	return &Driver{
		Module:       m.Name,
		Signal:       signal,
		Boundary:     true,
		BoundaryKind: kind,
		Src:          src,
	}
}

// cellInputs lists the cell's input ports in declaration order, each with
// the canonical names of its connected signals.
func (m *Module) cellInputs(c *Cell) []PortConn {
	var out []PortConn
	for _, port := range c.PortOrder {
		if c.Directions[port] != Input {
			continue
		}
		conn := PortConn{Port: port}
		seen := make(map[string]bool)
		for _, b := range c.Connections[port] {
			if b.Constant {
				continue
			}
			if name, ok := m.aliasOf(b.ID); ok && !seen[name] {
				seen[name] = true
				conn.Signals = append(conn.Signals, name)
			}
		}
		out = append(out, conn)
	}
	return out
}

func (m *Module) conflictsForBit(bit int) []Conflict {
	var out []Conflict
	for _, c := range m.conflicts {
		if c.Bit == bit {
			out = append(out, c)
		}
	}
	return out
}

// BackwardTrace computes the fan-in cone of a signal by breadth-first
// expansion over the driver index.
//
// Semantics:
//   - A node is emitted for every cell-driven signal reached; boundary
//     signals terminate silently (they still appear as input_signals of
//     their consumers).
//   - maxDepth counts hops beyond the target's immediate driver, so
//     maxDepth 0 returns exactly the direct driver.
//   - Each bit-id is visited at most once per call; revisiting - through
//     combinational feedback or reconvergent fan-out - truncates that
//     branch and marks the result truncated.
//   - State-holding cells are included but not expanded past, unless
//     WithMultiCycle re-roots at their data input.
//
// Repeated calls with identical arguments return identical output.
func (g *Graph) BackwardTrace(module, signal string, maxDepth int, opts ...TraceOption) (*Trace, error) {
	var cfg traceConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	m, err := g.Module(module)
	if err != nil {
		return nil, err
	}
	if _, err := m.signalBits(signal); err != nil {
		return nil, err
	}

	tr := &Trace{Module: module, Target: signal}
	visited := make(map[int]bool)

	type item struct {
		signal string
		depth  int
	}
	queue := []item{{signal: signal, depth: 0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		bits, err := m.signalBits(cur.signal)
		if err != nil {
			// Enqueued names come from the alias index; an unknown name here
			// can only be the root, handled above.
			continue
		}

		fresh := false
		for _, b := range bits {
			if !b.Constant && !visited[b.ID] {
				fresh = true
				visited[b.ID] = true
			}
		}
		if !fresh {
			// Cycle-guard: every bit of this net was already expanded.
			tr.Truncated = true
			continue
		}

		d := m.driverOf(cur.signal, bits)
		if d.Boundary {
			continue
		}

		node := TraceNode{
			Signal:       cur.signal,
			Depth:        cur.depth,
			Cell:         d.Cell,
			CellType:     d.CellType,
			OutputPort:   d.OutputPort,
			StateHolding: d.StateHolding,
			Src:          d.Src,
		}
		for _, conn := range d.Inputs {
			node.InputSignals = append(node.InputSignals, conn.Signals...)
		}
		node.InputSignals = dedupStable(node.InputSignals)
		for _, c := range d.Conflicts {
			node.Conflicts = append(node.Conflicts, c.Cells...)
		}
		node.Conflicts = dedupSorted(node.Conflicts)
		tr.Nodes = append(tr.Nodes, node)

		cell := m.Cells[d.Cell]
		if d.StateHolding && !cfg.multiCycle {
			// Causal boundary: the register's value was decided in a prior
			// cycle. Its inputs stay visible on the node, unexpanded.
			continue
		}

		next := node.InputSignals
		nextDepth := cur.depth + 1
		if d.StateHolding && cfg.multiCycle {
			// Multi-cycle opt-in: restart from the data input as a fresh
			// root. The shared visited set still bounds the walk.
			next = nil
			if dp := cell.dataInputPort(); dp != "" {
				seen := make(map[string]bool)
				for _, b := range cell.Connections[dp] {
					if b.Constant {
						continue
					}
					if name, ok := m.aliasOf(b.ID); ok && !seen[name] {
						seen[name] = true
						next = append(next, name)
					}
				}
			}
			nextDepth = 0
		}

		for _, in := range next {
			if nextDepth > maxDepth {
				tr.Truncated = true
				continue
			}
			queue = append(queue, item{signal: in, depth: nextDepth})
		}
	}

	return tr, nil
}

// FanIn flattens the trace's input-signal fields into a sorted,
// de-duplicated set of signal names.
func (g *Graph) FanIn(module, signal string, maxDepth int, opts ...TraceOption) ([]string, error) {
	tr, err := g.BackwardTrace(module, signal, maxDepth, opts...)
	if err != nil {
		return nil, err
	}
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
	return out, nil
}

func dedupStable(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := names[:0]
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
