package builtin

import (
	"fmt"

	"dataflow/internal/stats"
	"dataflow/internal/table"
)

// OutlierSuffix is appended to a column name to form its outlier-flag column.
const OutlierSuffix = "__is_outlier"

// Winsorize clips a numeric column to its [Lower, Upper] quantiles in place
// (same name and position). The result is always a float column.
type Winsorize struct {
	Column string
	Lower  float64
	Upper  float64
}

func (w Winsorize) Apply(in table.Table) (table.Table, error) {
	vals, err := table.Float64s(in, w.Column)
	if err != nil {
		return table.Table{}, fmt.Errorf("winsorize: %w", err)
	}
	clipped, err := stats.Winsorize(vals, w.Lower, w.Upper)
	if err != nil {
		return table.Table{}, fmt.Errorf("winsorize: %s: %w", w.Column, err)
	}
	return in.With(table.Floats(w.Column, clipped))
}

// OutlierFlag adds "<Column>__is_outlier", true where a value lies strictly
// outside the IQR bounds with multiplier K computed on the non-null values.
// Nulls are never flagged.
type OutlierFlag struct {
	Column string
	K      float64
}

func (o OutlierFlag) Apply(in table.Table) (table.Table, error) {
	vals, err := table.Float64s(in, o.Column)
	if err != nil {
		return table.Table{}, fmt.Errorf("outlier flag: %w", err)
	}
	flags := make([]bool, len(vals))
	if lo, hi, ok := stats.IQRBounds(vals, o.K); ok {
		for i, v := range vals {
			flags[i] = v.Valid && (v.V < lo || v.V > hi)
		}
	}
	return in.With(table.BoolsFrom(o.Column+OutlierSuffix, flags))
}
