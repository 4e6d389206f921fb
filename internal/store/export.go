package store

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/mwaldron/sigtrace/internal/netlist"
	"github.com/mwaldron/sigtrace/internal/vcd"
)

// ExportWaveform writes every signal and its full timeline in one
// transaction. Rows are idempotent via ON CONFLICT DO NOTHING, so
// re-exporting the same dump is a no-op.
func (s *Store) ExportWaveform(ctx context.Context, w *vcd.Waveform) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("export waveform: %w", err)
	}
	defer tx.Rollback()

	for _, kv := range [][2]string{
		{"timescale", w.Timescale},
		{"dump_date", w.Date},
		{"dump_version", w.Version},
	} {
		if kv[1] == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			kv[0], kv[1]); err != nil {
			return fmt.Errorf("export waveform meta: %w", err)
		}
	}

	sigStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO signals (path, name, kind, width, changes)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("export waveform: %w", err)
	}
	defer sigStmt.Close()

	chgStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO value_changes (signal_path, time, value)
		VALUES (?, ?, ?)
		ON CONFLICT(signal_path, time) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("export waveform: %w", err)
	}
	defer chgStmt.Close()

	for _, path := range w.ListSignals() {
		info, err := w.Signal(path)
		if err != nil {
			return fmt.Errorf("export waveform: %w", err)
		}
		if _, err := sigStmt.ExecContext(ctx, info.Path, info.Name, info.Kind, info.Width, info.Changes); err != nil {
			return fmt.Errorf("export signal %s: %w", path, err)
		}

		transitions, err := w.TransitionsIn(path, 0, math.MaxUint64)
		if err != nil {
			return fmt.Errorf("export signal %s: %w", path, err)
		}
		for _, tr := range transitions {
			if _, err := chgStmt.ExecContext(ctx, info.Path, int64(tr.Time), string(tr.Value)); err != nil {
				return fmt.Errorf("export signal %s change at %d: %w", path, tr.Time, err)
			}
		}
	}

	return tx.Commit()
}

// ExportNetlist writes modules, cells, and multiple-driver conflicts in
// one transaction.
func (s *Store) ExportNetlist(ctx context.Context, g *netlist.Graph) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("export netlist: %w", err)
	}
	defer tx.Rollback()

	top := g.TopModule()
	for _, name := range g.ListModules() {
		isTop := 0
		if name == top {
			isTop = 1
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO modules (name, display_name, is_top)
			VALUES (?, ?, ?)
			ON CONFLICT(name) DO NOTHING
		`, name, g.ModuleDisplayName(name), isTop); err != nil {
			return fmt.Errorf("export module %s: %w", name, err)
		}

		m, err := g.Module(name)
		if err != nil {
			return fmt.Errorf("export module %s: %w", name, err)
		}
		for _, cname := range m.CellOrder {
			c := m.Cells[cname]
			stateHolding := 0
			if c.StateHolding() {
				stateHolding = 1
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO cells (module, name, type, state_holding, src)
				VALUES (?, ?, ?, ?, ?)
				ON CONFLICT(module, name) DO NOTHING
			`, name, c.Name, c.Type, stateHolding, c.Src.String()); err != nil {
				return fmt.Errorf("export cell %s.%s: %w", name, cname, err)
			}
		}
	}

	for _, conflict := range g.Conflicts() {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO conflicts (module, bit, cells)
			VALUES (?, ?, ?)
			ON CONFLICT(module, bit) DO NOTHING
		`, conflict.Module, conflict.Bit, strings.Join(conflict.Cells, ",")); err != nil {
			return fmt.Errorf("export conflict %s/%d: %w", conflict.Module, conflict.Bit, err)
		}
	}

	return tx.Commit()
}
