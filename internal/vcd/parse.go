package vcd

import (
	"bufio"
	"bytes"
	"log/slog"
	"sort"
	"strconv"
	"strings"
)

// Parse builds a Waveform from a fully-buffered dump.
//
// Parsing is two-phase: the header declares a scope tree and, per leaf, a
// signal with identifier/name/width; the body is a sequence of timestamp
// markers each followed by value-change records. Any structural violation
// fails the whole load with a *ParseError - a failed Parse yields no
// usable store.
func Parse(data []byte) (*Waveform, error) {
	p := &parser{
		w: &Waveform{
			byPath: make(map[string]*Signal),
			byName: make(map[string][]*Signal),
			byID:   make(map[string]*Signal),
		},
	}

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for sc.Scan() {
		p.line++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		var err error
		if p.inBody {
			err = p.bodyLine(line)
		} else {
			err = p.headerLine(line)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, newParseError(MalformedHeader, p.line, "read failed: %v", err)
	}

	p.finalize()

	slog.Debug("parsed waveform",
		"signals", p.w.SignalCount(),
		"timescale", p.w.Timescale,
		"last_time", p.time)

	return p.w, nil
}

type parser struct {
	w      *Waveform
	line   int
	scopes []string
	inBody bool

	// meta accumulates multi-line $date/$version/$timescale text until the
	// closing $end. metaDst is nil for directives whose text is discarded.
	meta    []string
	metaDst *string
	inMeta  bool

	time    uint64
	sawTime bool
}

func (p *parser) headerLine(line string) error {
	if p.inMeta {
		return p.metaLine(line)
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case "$scope":
		// $scope <type> <name> $end
		if len(fields) < 4 || fields[len(fields)-1] != "$end" {
			return newParseError(MalformedHeader, p.line, "malformed $scope: %s", line)
		}
		p.scopes = append(p.scopes, fields[2])
		return nil

	case "$upscope":
		if len(p.scopes) == 0 {
			return newParseError(UnbalancedScope, p.line, "$upscope without matching $scope")
		}
		p.scopes = p.scopes[:len(p.scopes)-1]
		return nil

	case "$var":
		return p.varDecl(fields, line)

	case "$enddefinitions":
		p.inBody = true
		return nil

	case "$date":
		return p.beginMeta(fields, &p.w.Date)
	case "$version":
		return p.beginMeta(fields, &p.w.Version)
	case "$timescale":
		return p.beginMeta(fields, &p.w.Timescale)
	case "$comment":
		return p.beginMeta(fields, nil)
	}

	if strings.HasPrefix(fields[0], "$") {
		// Unknown directive: consume its text up to $end.
		return p.beginMeta(fields, nil)
	}
	return newParseError(MalformedHeader, p.line, "unexpected token before $enddefinitions: %s", fields[0])
}

// beginMeta starts a free-text directive. The directive text may sit on the
// same line ("$timescale 1ps $end") or span following lines.
func (p *parser) beginMeta(fields []string, dst *string) error {
	rest := fields[1:]
	if len(rest) > 0 && rest[len(rest)-1] == "$end" {
		if dst != nil {
			*dst = strings.Join(rest[:len(rest)-1], " ")
		}
		return nil
	}
	p.inMeta = true
	p.metaDst = dst
	p.meta = p.meta[:0]
	if len(rest) > 0 {
		p.meta = append(p.meta, strings.Join(rest, " "))
	}
	return nil
}

func (p *parser) metaLine(line string) error {
	if idx := strings.Index(line, "$end"); idx >= 0 {
		if text := strings.TrimSpace(line[:idx]); text != "" {
			p.meta = append(p.meta, text)
		}
		if p.metaDst != nil {
			*p.metaDst = strings.Join(p.meta, " ")
		}
		p.inMeta = false
		p.metaDst = nil
		return nil
	}
	p.meta = append(p.meta, line)
	return nil
}

// varDecl handles "$var <type> <width> <id> <name> [msb:lsb] $end".
func (p *parser) varDecl(fields []string, line string) error {
	if len(fields) < 6 || fields[len(fields)-1] != "$end" {
		return newParseError(MalformedHeader, p.line, "malformed $var: %s", line)
	}

	width, err := strconv.Atoi(fields[2])
	if err != nil || width < 1 {
		return newParseError(MalformedHeader, p.line, "invalid $var width %q", fields[2])
	}

	name := fields[4]
	// A bit range may be attached to the name or stand as its own field.
	if i := strings.IndexByte(name, '['); i > 0 {
		name = name[:i]
	}

	scope := make([]string, len(p.scopes))
	copy(scope, p.scopes)

	s := &Signal{
		ID:    fields[3],
		Name:  name,
		Scope: scope,
		Path:  canonicalName(strings.Join(append(scope, name), ".")),
		Width: width,
		Kind:  fields[1],
	}

	if _, dup := p.w.byPath[s.Path]; !dup {
		p.w.byPath[s.Path] = s
	}
	key := canonicalName(s.Name)
	p.w.byName[key] = append(p.w.byName[key], s)

	// The same identifier may be declared under several names (aliased
	// vars). Changes accumulate on the first declaration; aliases pick up
	// the shared timeline in finalize.
	if _, ok := p.w.byID[s.ID]; !ok {
		p.w.byID[s.ID] = s
	}
	return nil
}

func (p *parser) bodyLine(line string) error {
	switch {
	case line[0] == '#':
		t, err := strconv.ParseUint(line[1:], 10, 64)
		if err != nil {
			return newParseError(MalformedTimestamp, p.line, "invalid timestamp marker %q", line)
		}
		if p.sawTime && t < p.time {
			return newParseError(MalformedTimestamp, p.line, "timestamp %d moves backwards (previous %d)", t, p.time)
		}
		p.time = t
		p.sawTime = true
		return nil

	case line[0] == '$':
		// $dumpvars/$dumpon/$dumpoff/$dumpall/$end framing tokens.
		return nil

	case line[0] == 'b' || line[0] == 'B':
		fields := strings.Fields(line)
		if len(fields) != 2 || len(fields[0]) < 2 {
			return newParseError(MalformedValue, p.line, "malformed vector change: %s", line)
		}
		return p.appendChange(fields[1], fields[0][1:], false)

	case line[0] == 'r' || line[0] == 'R':
		fields := strings.Fields(line)
		if len(fields) != 2 || len(fields[0]) < 2 {
			return newParseError(MalformedValue, p.line, "malformed real change: %s", line)
		}
		return p.appendChange(fields[1], fields[0][1:], true)

	case strings.IndexByte("01xXzZ", line[0]) >= 0:
		if len(line) < 2 {
			return newParseError(MalformedValue, p.line, "scalar change without identifier: %s", line)
		}
		return p.appendChange(line[1:], line[:1], false)
	}

	return newParseError(MalformedValue, p.line, "unrecognized value-change record: %s", line)
}

func (p *parser) appendChange(id, literal string, raw bool) error {
	s, ok := p.w.byID[id]
	if !ok {
		return newParseError(MalformedHeader, p.line, "value change references undeclared identifier %q", id)
	}

	var v BitVector
	if raw || s.Kind == "real" {
		v = BitVector(literal)
	} else {
		nv, err := normalize(literal, s.Width, p.line)
		if err != nil {
			return err
		}
		v = nv
	}

	// Last write wins for duplicate timestamps: a sampler observes the
	// settled value at end of timestep.
	if n := len(s.changes); n > 0 && s.changes[n-1].Time == p.time {
		s.changes[n-1].Value = v
		return nil
	}
	s.changes = append(s.changes, Change{Time: p.time, Value: v})
	return nil
}

// normalize lower-cases a literal, validates its alphabet, and adjusts it
// to the declared width. Leading zero padding and repeated x/z extension
// strip freely; any other width disagreement is a MalformedValue.
func normalize(literal string, width, line int) (BitVector, error) {
	v := strings.ToLower(literal)
	for _, r := range v {
		if r != '0' && r != '1' && r != 'x' && r != 'z' {
			return "", newParseError(MalformedValue, line, "invalid bit %q in vector %q", r, literal)
		}
	}

	for len(v) > width {
		switch {
		case v[0] == '0':
			v = v[1:]
		case (v[0] == 'x' || v[0] == 'z') && v[1] == v[0]:
			v = v[1:]
		default:
			return "", newParseError(MalformedValue, line,
				"vector %q is %d bits wide, signal declares %d", literal, len(v), width)
		}
	}

	if len(v) < width {
		ext := byte('0')
		if v[0] == 'x' || v[0] == 'z' {
			ext = v[0]
		}
		v = strings.Repeat(string(ext), width-len(v)) + v
	}
	return BitVector(v), nil
}

func (p *parser) finalize() {
	share := func(s *Signal) {
		// Alias declarations share the primary declaration's timeline.
		if primary := p.w.byID[s.ID]; primary != nil && s != primary && len(s.changes) == 0 {
			s.changes = primary.changes
		}
	}
	for _, s := range p.w.byPath {
		share(s)
	}
	for _, list := range p.w.byName {
		for _, s := range list {
			share(s)
		}
	}
	paths := make([]string, 0, len(p.w.byPath))
	for path := range p.w.byPath {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	p.w.paths = paths
}
