package table

import (
	"fmt"
	"slices"
)

// Table is an ordered collection of equally long, uniquely named columns.
// The zero value is an empty table with no columns and no rows.
type Table struct {
	cols   []Column
	byName map[string]int
	rows   int
}

// New builds a table from cols. All columns must have the same length and
// distinct names.
func New(cols ...Column) (Table, error) {
	t := Table{byName: make(map[string]int, len(cols))}
	for i, c := range cols {
		if c == nil {
			return Table{}, fmt.Errorf("table: column %d is nil", i)
		}
		if i == 0 {
			t.rows = c.Len()
		} else if c.Len() != t.rows {
			return Table{}, fmt.Errorf("table: column %q has %d rows, want %d", c.Name(), c.Len(), t.rows)
		}
		if _, dup := t.byName[c.Name()]; dup {
			return Table{}, fmt.Errorf("table: duplicate column %q", c.Name())
		}
		t.byName[c.Name()] = i
	}
	t.cols = slices.Clone(cols)
	return t, nil
}

// MustNew is New for statically known inputs; it panics on error.
func MustNew(cols ...Column) Table {
	t, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t Table) NumRows() int { return t.rows }
func (t Table) NumCols() int { return len(t.cols) }

// Columns returns the columns in order.
func (t Table) Columns() []Column { return slices.Clone(t.cols) }

// ColumnNames returns the column names in order.
func (t Table) ColumnNames() []string {
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.Name()
	}
	return out
}

// Has reports whether a column named name exists.
func (t Table) Has(name string) bool {
	_, ok := t.byName[name]
	return ok
}

// Column returns the column named name.
func (t Table) Column(name string) (Column, bool) {
	i, ok := t.byName[name]
	if !ok {
		return nil, false
	}
	return t.cols[i], true
}

// With returns a table where c replaces the same-named column (keeping its
// position) or, if no such column exists, is appended.
func (t Table) With(c Column) (Table, error) {
	if len(t.cols) > 0 && c.Len() != t.rows {
		return Table{}, fmt.Errorf("table: column %q has %d rows, want %d", c.Name(), c.Len(), t.rows)
	}
	cols := slices.Clone(t.cols)
	if i, ok := t.byName[c.Name()]; ok {
		cols[i] = c
	} else {
		cols = append(cols, c)
	}
	return New(cols...)
}

// Without returns a table with the named columns dropped. Unknown names are
// ignored.
func (t Table) Without(names ...string) Table {
	cols := make([]Column, 0, len(t.cols))
	for _, c := range t.cols {
		if !slices.Contains(names, c.Name()) {
			cols = append(cols, c)
		}
	}
	if len(cols) == 0 {
		return Table{}
	}
	out, _ := New(cols...)
	return out
}

// Select returns a table with only the named columns, in the given order.
func (t Table) Select(names ...string) (Table, error) {
	cols := make([]Column, 0, len(names))
	for _, n := range names {
		c, ok := t.Column(n)
		if !ok {
			return Table{}, fmt.Errorf("table: column %q not found", n)
		}
		cols = append(cols, c)
	}
	return New(cols...)
}

// Take gathers rows by index into a new table; -1 yields an all-null row.
func (t Table) Take(idx []int) Table {
	cols := make([]Column, len(t.cols))
	for i, c := range t.cols {
		cols[i] = c.Take(idx)
	}
	out := Table{cols: cols, byName: t.byName, rows: len(idx)}
	return out
}

// Row returns the i-th row as untyped values aligned with ColumnNames.
func (t Table) Row(i int) []any {
	out := make([]any, len(t.cols))
	for j, c := range t.cols {
		out[j] = c.Value(i)
	}
	return out
}

// Get returns the named column as a *Series[T].
func Get[T any](t Table, name string) (*Series[T], error) {
	c, ok := t.Column(name)
	if !ok {
		return nil, fmt.Errorf("table: column %q not found", name)
	}
	s, ok := c.(*Series[T])
	if !ok {
		return nil, fmt.Errorf("table: column %q is %s", name, c.Kind())
	}
	return s, nil
}

// Float64s reads an int or float column as nullable floats.
func Float64s(t Table, name string) ([]Opt[float64], error) {
	c, ok := t.Column(name)
	if !ok {
		return nil, fmt.Errorf("table: column %q not found", name)
	}
	switch s := c.(type) {
	case *Series[float64]:
		return s.Values(), nil
	case *Series[int64]:
		out := make([]Opt[float64], s.Len())
		for i, v := range s.vals {
			if v.Valid {
				out[i] = Some(float64(v.V))
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("table: column %q is %s, want numeric", name, c.Kind())
}
