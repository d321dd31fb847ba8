// Package table implements the in-memory, column-oriented table that flows
// between pipeline stages. Tables and their columns are immutable values: every
// operation that changes shape or content returns a new Table and leaves the
// receiver untouched, so stages can share columns without copying them.
//
// Missing values are represented explicitly with Opt[T] rather than with
// sentinel values (empty strings, NaN, zero times).
package table

import (
	"fmt"
	"slices"
	"strconv"
	"time"
)

// Kind is the logical type of a column.
type Kind uint8

const (
	KindString Kind = iota
	KindFloat
	KindInt
	KindBool
	KindTimestamp
	KindDate
)

// String returns the lower-case name used in configs and error messages.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindTimestamp:
		return "timestamp"
	case KindDate:
		return "date"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// ParseKind maps a config type name onto a Kind. Common aliases are accepted.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "string", "text":
		return KindString, nil
	case "float", "float64", "double", "real":
		return KindFloat, nil
	case "int", "int64", "integer":
		return KindInt, nil
	case "bool", "boolean":
		return KindBool, nil
	case "timestamp", "datetime":
		return KindTimestamp, nil
	case "date":
		return KindDate, nil
	}
	return 0, fmt.Errorf("table: unknown kind %q", s)
}

// Opt is a nullable value. The zero value is null.
type Opt[T any] struct {
	V     T
	Valid bool
}

// Some returns a non-null Opt holding v.
func Some[T any](v T) Opt[T] { return Opt[T]{V: v, Valid: true} }

// Null returns a null Opt.
func Null[T any]() Opt[T] { return Opt[T]{} }

// Get returns the value and whether it is present.
func (o Opt[T]) Get() (T, bool) { return o.V, o.Valid }

// Column is the kind-erased view of a Series used by Table.
type Column interface {
	Name() string
	Kind() Kind
	Len() int
	IsNull(i int) bool
	// Value returns the cell as an untyped value, or nil when null. Timestamps
	// and dates are returned as time.Time.
	Value(i int) any
	// Renamed returns the same data under a different name.
	Renamed(name string) Column
	// Take gathers rows by index; an index of -1 produces a null cell.
	Take(idx []int) Column
}

// Series is a named column of nullable values of a single kind.
type Series[T any] struct {
	name string
	kind Kind
	vals []Opt[T]
}

// Strings builds a string column. vals is copied.
func Strings(name string, vals []Opt[string]) *Series[string] {
	return newSeries(name, KindString, vals)
}

// Floats builds a float column. vals is copied.
func Floats(name string, vals []Opt[float64]) *Series[float64] {
	return newSeries(name, KindFloat, vals)
}

// Ints builds an int column. vals is copied.
func Ints(name string, vals []Opt[int64]) *Series[int64] {
	return newSeries(name, KindInt, vals)
}

// Bools builds a bool column. vals is copied.
func Bools(name string, vals []Opt[bool]) *Series[bool] {
	return newSeries(name, KindBool, vals)
}

// Timestamps builds a timestamp column. vals is copied.
func Timestamps(name string, vals []Opt[time.Time]) *Series[time.Time] {
	return newSeries(name, KindTimestamp, vals)
}

// Dates builds a calendar date column. Values are truncated to midnight in
// their own location. vals is copied.
func Dates(name string, vals []Opt[time.Time]) *Series[time.Time] {
	s := newSeries(name, KindDate, vals)
	for i, v := range s.vals {
		if v.Valid {
			y, m, d := v.V.Date()
			s.vals[i].V = time.Date(y, m, d, 0, 0, 0, 0, v.V.Location())
		}
	}
	return s
}

// BoolsFrom builds a non-null bool column from plain values.
func BoolsFrom(name string, vals []bool) *Series[bool] {
	out := make([]Opt[bool], len(vals))
	for i, v := range vals {
		out[i] = Some(v)
	}
	return &Series[bool]{name: name, kind: KindBool, vals: out}
}

func newSeries[T any](name string, kind Kind, vals []Opt[T]) *Series[T] {
	return &Series[T]{name: name, kind: kind, vals: slices.Clone(vals)}
}

func (s *Series[T]) Name() string      { return s.name }
func (s *Series[T]) Kind() Kind        { return s.kind }
func (s *Series[T]) Len() int          { return len(s.vals) }
func (s *Series[T]) IsNull(i int) bool { return !s.vals[i].Valid }

// At returns the i-th cell.
func (s *Series[T]) At(i int) Opt[T] { return s.vals[i] }

// Values returns a copy of the cells.
func (s *Series[T]) Values() []Opt[T] { return slices.Clone(s.vals) }

// NullCount returns the number of null cells.
func (s *Series[T]) NullCount() int {
	n := 0
	for _, v := range s.vals {
		if !v.Valid {
			n++
		}
	}
	return n
}

func (s *Series[T]) Value(i int) any {
	if !s.vals[i].Valid {
		return nil
	}
	return s.vals[i].V
}

func (s *Series[T]) Renamed(name string) Column {
	return &Series[T]{name: name, kind: s.kind, vals: s.vals}
}

func (s *Series[T]) Take(idx []int) Column {
	out := make([]Opt[T], len(idx))
	for i, j := range idx {
		if j >= 0 {
			out[i] = s.vals[j]
		}
	}
	return &Series[T]{name: s.name, kind: s.kind, vals: out}
}

// Map applies fn to every non-null cell and returns a new column of kind k
// named name. Null cells stay null.
func Map[T, U any](s *Series[T], name string, k Kind, fn func(T) Opt[U]) *Series[U] {
	out := make([]Opt[U], len(s.vals))
	for i, v := range s.vals {
		if v.Valid {
			out[i] = fn(v.V)
		}
	}
	return &Series[U]{name: name, kind: k, vals: out}
}
