package harness

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines one conformance scenario: a waveform and netlist pair,
// a list of query checks against them, and an optional debug report whose
// JSON rendering is compared against a golden file.
type Scenario struct {
	// Name uniquely identifies this scenario. It doubles as the golden
	// file name, so keep it filesystem-safe.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Waveform is the path to the value change dump, relative to the
	// scenario file location.
	Waveform string `yaml:"waveform"`

	// Netlist is the path to the synthesized JSON netlist, relative to the
	// scenario file location.
	Netlist string `yaml:"netlist"`

	// Token is the fixed report token used for deterministic golden file
	// comparison. Defaults to "test-report-default" when empty.
	Token string `yaml:"token,omitempty"`

	// Checks are evaluated in order; every failure is recorded, none stops
	// the run.
	Checks []Check `yaml:"checks,omitempty"`

	// Report, when present, produces the debug report snapshotted by
	// RunGolden.
	Report *ReportStep `yaml:"report,omitempty"`
}

// Check is one query with its expected outcome.
type Check struct {
	// Type selects the query:
	//   - "value": signal value at an instant
	//   - "transitions": change count within [from, to]
	//   - "driver": driving cell of a signal
	//   - "trace": backward trace cells and completeness
	//   - "fan_in": flattened fan-in signal set
	Type string `yaml:"type"`

	Signal string `yaml:"signal,omitempty"`
	Module string `yaml:"module,omitempty"`

	// Time is the query instant (value).
	Time uint64 `yaml:"time,omitempty"`

	// From and To bound the window (transitions).
	From uint64 `yaml:"from,omitempty"`
	To   uint64 `yaml:"to,omitempty"`

	// Depth bounds the walk (trace, fan_in).
	Depth int `yaml:"depth,omitempty"`

	// MultiCycle expands past state elements (trace, fan_in).
	MultiCycle bool `yaml:"multi_cycle,omitempty"`

	// Want is the expected value (value).
	Want string `yaml:"want,omitempty"`

	// Count is the expected number of changes (transitions).
	Count int `yaml:"count,omitempty"`

	// Cell is the expected driving cell (driver).
	Cell string `yaml:"cell,omitempty"`

	// Cells is the expected node cell sequence (trace).
	Cells []string `yaml:"cells,omitempty"`

	// Complete, when set, asserts on trace truncation (trace).
	Complete *bool `yaml:"complete,omitempty"`

	// Signals is the expected fan-in set, sorted (fan_in).
	Signals []string `yaml:"signals,omitempty"`
}

// Check type constants.
const (
	CheckValue       = "value"
	CheckTransitions = "transitions"
	CheckDriver      = "driver"
	CheckTrace       = "trace"
	CheckFanIn       = "fan_in"
)

// ReportStep describes the debug call whose report is snapshotted.
type ReportStep struct {
	Signal     string `yaml:"signal"`
	Module     string `yaml:"module,omitempty"`
	Time       uint64 `yaml:"time"`
	Depth      int    `yaml:"depth"`
	MultiCycle bool   `yaml:"multi_cycle,omitempty"`
}

// Load reads and validates a scenario file. Waveform and netlist paths are
// resolved relative to the scenario file's directory.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario file %s: %w", path, err)
	}

	if s.Name == "" {
		return nil, fmt.Errorf("scenario %s: missing name", path)
	}
	if s.Waveform == "" {
		return nil, fmt.Errorf("scenario %s: missing waveform path", s.Name)
	}
	if s.Netlist == "" {
		return nil, fmt.Errorf("scenario %s: missing netlist path", s.Name)
	}
	for i, c := range s.Checks {
		switch c.Type {
		case CheckValue, CheckTransitions, CheckDriver, CheckTrace, CheckFanIn:
		default:
			return nil, fmt.Errorf("scenario %s: check %d has unknown type %q", s.Name, i, c.Type)
		}
	}

	if s.Token == "" {
		s.Token = "test-report-default"
	}

	dir := filepath.Dir(path)
	if !filepath.IsAbs(s.Waveform) {
		s.Waveform = filepath.Join(dir, s.Waveform)
	}
	if !filepath.IsAbs(s.Netlist) {
		s.Netlist = filepath.Join(dir, s.Netlist)
	}
	return &s, nil
}
