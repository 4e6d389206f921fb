// Package vcd parses Value Change Dump files into an immutable,
// random-access store of per-signal timelines.
//
// A Waveform is built once by Parse and never mutated afterwards. All
// queries are pure functions over the built indices and are safe for
// concurrent use without locking.
//
// The store performs no unit conversion: timestamps are the dump's native
// timescale units and values are the dump's literal bit radix.
package vcd
