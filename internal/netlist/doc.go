// Package netlist parses structural JSON netlists (the shape emitted by
// synthesis tools such as Yosys) into per-module driver indices and
// answers backward-trace queries over them.
//
// A Graph is built once by Parse and immutable afterwards: the bit->signal
// alias index and bit->driver index are derived at construction, and every
// query - DriverOf, BackwardTrace, FanIn - is a pure function over those
// indices, safe for concurrent use. Trace state (BFS queue, visited set)
// is per call.
package netlist
