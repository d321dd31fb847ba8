// Package quality contains fail-fast structural checks that run before a
// stage relies on their guarantee. Checks never modify their input; each
// returns a typed error (see errors.go) that callers can match with errors.As.
package quality

import (
	"fmt"

	"dataflow/internal/table"
)

// RequireColumns fails with a *SchemaError naming every column in names that
// is absent from t. label identifies the table in the message.
func RequireColumns(t table.Table, label string, names ...string) error {
	var missing []string
	for _, n := range names {
		if !t.Has(n) {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Table: label, Missing: missing}
	}
	return nil
}

// AssertNonEmpty fails with an *EmptyDatasetError when t has no rows.
func AssertNonEmpty(t table.Table, label string) error {
	if t.NumRows() == 0 {
		return &EmptyDatasetError{Label: label}
	}
	return nil
}

// AssertUniqueKey fails with a *KeyViolationError when the key column has
// duplicate non-null values, or any null value when allowNull is false.
func AssertUniqueKey(t table.Table, key string, allowNull bool) error {
	c, ok := t.Column(key)
	if !ok {
		return &SchemaError{Missing: []string{key}}
	}

	nulls := 0
	counts := make(map[any]int, c.Len())
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			nulls++
			continue
		}
		counts[keyValue(c.Value(i))]++
	}
	if !allowNull && nulls > 0 {
		return &KeyViolationError{Key: key, Nulls: nulls}
	}

	dups := 0
	for _, n := range counts {
		if n > 1 {
			dups += n
		}
	}
	if dups > 0 {
		return &KeyViolationError{Key: key, Duplicates: dups}
	}
	return nil
}

// Range is an inclusive numeric range; either side may be unbounded.
type Range struct {
	Lo table.Opt[float64]
	Hi table.Opt[float64]
}

// AtLeast returns a range bounded below by lo.
func AtLeast(lo float64) Range { return Range{Lo: table.Some(lo)} }

// Between returns the closed range [lo, hi].
func Between(lo, hi float64) Range { return Range{Lo: table.Some(lo), Hi: table.Some(hi)} }

// AssertInRange fails with a *RangeError when a non-null value lies outside
// r. The lower bound is checked first. Nulls are ignored.
func AssertInRange(values []table.Opt[float64], r Range, label string) error {
	var below, above int
	for _, v := range values {
		if !v.Valid {
			continue
		}
		if r.Lo.Valid && v.V < r.Lo.V {
			below++
		}
		if r.Hi.Valid && v.V > r.Hi.V {
			above++
		}
	}
	if below > 0 {
		return &RangeError{Label: label, Bound: BoundLower, Limit: r.Lo.V, Count: below}
	}
	if above > 0 {
		return &RangeError{Label: label, Bound: BoundUpper, Limit: r.Hi.V, Count: above}
	}
	return nil
}

// AssertColumnInRange is AssertInRange over a numeric column of t.
func AssertColumnInRange(t table.Table, col string, r Range) error {
	vals, err := table.Float64s(t, col)
	if err != nil {
		return fmt.Errorf("quality: %w", err)
	}
	return AssertInRange(vals, r, col)
}

// keyValue normalizes time values so equal instants compare equal as map keys.
func keyValue(v any) any {
	if tv, ok := v.(interface{ UnixNano() int64 }); ok {
		return tv.UnixNano()
	}
	return v
}
