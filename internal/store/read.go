package store

import (
	"context"
	"fmt"

	"github.com/mwaldron/sigtrace/internal/vcd"
)

// Counts summarizes an export for CLI output and sanity checks.
type Counts struct {
	Signals      int `json:"signals"`
	ValueChanges int `json:"value_changes"`
	Modules      int `json:"modules"`
	Cells        int `json:"cells"`
	Conflicts    int `json:"conflicts"`
}

// Summary returns row counts per table.
func (s *Store) Summary(ctx context.Context) (Counts, error) {
	var c Counts
	for _, q := range []struct {
		table string
		dst   *int
	}{
		{"signals", &c.Signals},
		{"value_changes", &c.ValueChanges},
		{"modules", &c.Modules},
		{"cells", &c.Cells},
		{"conflicts", &c.Conflicts},
	} {
		row := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+q.table)
		if err := row.Scan(q.dst); err != nil {
			return Counts{}, fmt.Errorf("count %s: %w", q.table, err)
		}
	}
	return c, nil
}

// ChangesFor reads back a signal's exported timeline in time order.
func (s *Store) ChangesFor(ctx context.Context, path string) ([]vcd.Change, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT time, value
		FROM value_changes
		WHERE signal_path = ?
		ORDER BY time ASC
	`, path)
	if err != nil {
		return nil, fmt.Errorf("query changes: %w", err)
	}
	defer rows.Close()

	var changes []vcd.Change
	for rows.Next() {
		var t int64
		var v string
		if err := rows.Scan(&t, &v); err != nil {
			return nil, fmt.Errorf("scan change: %w", err)
		}
		changes = append(changes, vcd.Change{Time: uint64(t), Value: vcd.BitVector(v)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate changes: %w", err)
	}
	return changes, nil
}
