package vcd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// ValueAt returns the value in effect at time t: the value introduced by
// the latest change with timestamp <= t. Before the first recorded change
// the signal's declared initial value (all-unknown) is returned.
//
// Lookup is O(log n) in the signal's change count.
func (w *Waveform) ValueAt(name string, t uint64) (BitVector, error) {
	s, err := w.lookup(name)
	if err != nil {
		return "", err
	}

	// First index whose change is strictly after t.
	idx := sort.Search(len(s.changes), func(i int) bool {
		return s.changes[i].Time > t
	})
	if idx == 0 {
		return allUnknown(s.Width), nil
	}
	return s.changes[idx-1].Value, nil
}

// TransitionsIn returns the recorded changes with start <= time <= end,
// in time order. An empty result is valid: no activity in the window.
func (w *Waveform) TransitionsIn(name string, start, end uint64) ([]Transition, error) {
	if start > end {
		return nil, fmt.Errorf("invalid window: start %d > end %d", start, end)
	}
	s, err := w.lookup(name)
	if err != nil {
		return nil, err
	}

	lo := sort.Search(len(s.changes), func(i int) bool {
		return s.changes[i].Time >= start
	})
	hi := sort.Search(len(s.changes), func(i int) bool {
		return s.changes[i].Time > end
	})

	out := make([]Transition, 0, hi-lo)
	for _, c := range s.changes[lo:hi] {
		out = append(out, Transition{Time: c.Time, Value: c.Value, Width: s.Width})
	}
	return out, nil
}

// FindSignals returns the signals whose full hierarchical name matches the
// pattern. Patterns containing glob metacharacters match as globs; plain
// patterns match as case-insensitive substrings. Results are sorted by
// path; an empty result is not an error.
func (w *Waveform) FindSignals(pattern string) ([]SignalInfo, error) {
	match, err := compileMatcher(pattern)
	if err != nil {
		return nil, err
	}

	var out []SignalInfo
	for _, path := range w.paths {
		if match(path) {
			out = append(out, w.byPath[path].info())
		}
	}
	return out, nil
}

func compileMatcher(pattern string) (func(string) bool, error) {
	if strings.ContainsAny(pattern, "*?[{") {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
		return g.Match, nil
	}
	needle := strings.ToLower(pattern)
	return func(path string) bool {
		return strings.Contains(strings.ToLower(path), needle)
	}, nil
}
