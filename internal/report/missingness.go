// Package report builds the data-quality outputs of a run: the per-column
// missingness table and the run metadata record.
package report

import (
	"sort"

	"dataflow/internal/table"
)

// Missingness returns one row per column of t with its null count and null
// fraction, most-missing first. Columns with equal fractions keep their
// order. p_missing is null when t has no rows.
//
// Output columns: column (string), n_missing (int), p_missing (float).
func Missingness(t table.Table) table.Table {
	type entry struct {
		name string
		n    int64
		p    table.Opt[float64]
	}
	rows := t.NumRows()
	entries := make([]entry, 0, t.NumCols())
	for _, c := range t.Columns() {
		var n int64
		for i := 0; i < c.Len(); i++ {
			if c.IsNull(i) {
				n++
			}
		}
		e := entry{name: c.Name(), n: n}
		if rows > 0 {
			e.p = table.Some(float64(n) / float64(rows))
		}
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].p.V > entries[j].p.V
	})

	names := make([]table.Opt[string], len(entries))
	counts := make([]table.Opt[int64], len(entries))
	fracs := make([]table.Opt[float64], len(entries))
	for i, e := range entries {
		names[i] = table.Some(e.name)
		counts[i] = table.Some(e.n)
		fracs[i] = e.p
	}
	return table.MustNew(
		table.Strings("column", names),
		table.Ints("n_missing", counts),
		table.Floats("p_missing", fracs),
	)
}
