// Package join implements a left outer join that validates key cardinality
// before any row is produced.
package join

import (
	"fmt"
	"time"

	"dataflow/internal/table"
)

// Validate is the cardinality a join is expected to have.
type Validate string

const (
	OneToOne   Validate = "one_to_one"
	OneToMany  Validate = "one_to_many"
	ManyToOne  Validate = "many_to_one"
	ManyToMany Validate = "many_to_many"
)

// ParseValidate accepts the policy names above and the short forms "1:1",
// "1:m", "m:1" and "m:m". The empty string is ManyToOne.
func ParseValidate(s string) (Validate, error) {
	switch s {
	case "", string(ManyToOne), "m:1":
		return ManyToOne, nil
	case string(OneToOne), "1:1":
		return OneToOne, nil
	case string(OneToMany), "1:m":
		return OneToMany, nil
	case string(ManyToMany), "m:m":
		return ManyToMany, nil
	}
	return "", fmt.Errorf("join: unknown validate policy %q", s)
}

// Side names the table whose keys broke the policy.
type Side string

const (
	Left  Side = "left"
	Right Side = "right"
)

// JoinValidationError reports duplicate join keys on a side the policy
// requires to be unique.
type JoinValidationError struct {
	Validate   Validate
	Side       Side
	Key        string
	Duplicates int // rows taking part in a duplicate group
}

func (e *JoinValidationError) Error() string {
	return fmt.Sprintf("join: %s: %s key %q is not unique (%d duplicate rows)", e.Validate, e.Side, e.Key, e.Duplicates)
}

// Options configures SafeLeftJoin. Zero values mean many_to_one and
// suffixes ("_left", "_right").
type Options struct {
	Validate Validate
	Suffixes [2]string
}

// DefaultSuffixes resolve non-key column collisions.
var DefaultSuffixes = [2]string{"_left", "_right"}

// SafeLeftJoin returns every row of left exactly once per match (exactly once
// under many_to_one), followed by the non-key columns of right. Unmatched
// rows and null keys get nulls on the right. Non-key columns present on both
// sides are renamed with the suffixes.
func SafeLeftJoin(left, right table.Table, on string, opts Options) (table.Table, error) {
	if opts.Validate == "" {
		opts.Validate = ManyToOne
	}
	if opts.Suffixes == [2]string{} {
		opts.Suffixes = DefaultSuffixes
	}
	if opts.Suffixes[0] == opts.Suffixes[1] {
		return table.Table{}, fmt.Errorf("join: suffixes must differ, got %q twice", opts.Suffixes[0])
	}

	lk, ok := left.Column(on)
	if !ok {
		return table.Table{}, fmt.Errorf("join: left has no column %q", on)
	}
	rk, ok := right.Column(on)
	if !ok {
		return table.Table{}, fmt.Errorf("join: right has no column %q", on)
	}
	if lk.Kind() != rk.Kind() {
		return table.Table{}, fmt.Errorf("join: key %q is %s on the left and %s on the right", on, lk.Kind(), rk.Kind())
	}

	leftIdx := index(lk)
	rightIdx := index(rk)

	checkLeft := opts.Validate == OneToOne || opts.Validate == OneToMany
	checkRight := opts.Validate == OneToOne || opts.Validate == ManyToOne
	if checkLeft {
		if n := duplicates(leftIdx); n > 0 {
			return table.Table{}, &JoinValidationError{Validate: opts.Validate, Side: Left, Key: on, Duplicates: n}
		}
	}
	if checkRight {
		if n := duplicates(rightIdx); n > 0 {
			return table.Table{}, &JoinValidationError{Validate: opts.Validate, Side: Right, Key: on, Duplicates: n}
		}
	}

	var li, ri []int
	for i := 0; i < lk.Len(); i++ {
		matches := []int(nil)
		if !lk.IsNull(i) {
			matches = rightIdx[keyOf(lk.Value(i))]
		}
		if len(matches) == 0 {
			li = append(li, i)
			ri = append(ri, -1)
			continue
		}
		for _, j := range matches {
			li = append(li, i)
			ri = append(ri, j)
		}
	}

	lt := left.Take(li)
	rt := right.Without(on).Take(ri)

	cols := make([]table.Column, 0, lt.NumCols()+rt.NumCols())
	for _, c := range lt.Columns() {
		if c.Name() != on && right.Has(c.Name()) {
			c = c.Renamed(c.Name() + opts.Suffixes[0])
		}
		cols = append(cols, c)
	}
	for _, c := range rt.Columns() {
		if left.Has(c.Name()) {
			c = c.Renamed(c.Name() + opts.Suffixes[1])
		}
		cols = append(cols, c)
	}
	out, err := table.New(cols...)
	if err != nil {
		return table.Table{}, fmt.Errorf("join: %w", err)
	}
	return out, nil
}

// index groups the row numbers of non-null keys.
func index(c table.Column) map[any][]int {
	m := make(map[any][]int, c.Len())
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			continue
		}
		k := keyOf(c.Value(i))
		m[k] = append(m[k], i)
	}
	return m
}

func duplicates(m map[any][]int) int {
	n := 0
	for _, rows := range m {
		if len(rows) > 1 {
			n += len(rows)
		}
	}
	return n
}

func keyOf(v any) any {
	if t, ok := v.(time.Time); ok {
		return t.UnixNano()
	}
	return v
}
