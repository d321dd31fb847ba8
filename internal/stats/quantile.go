// Package stats implements the order statistics used by the outlier stage:
// linear-interpolation quantiles, IQR bounds and winsorization over nullable
// float vectors. Null entries are ignored by every computation.
package stats

import (
	"fmt"
	"math"
	"slices"

	"dataflow/internal/table"
)

// NonNull returns the present values of vals in their original order.
func NonNull(vals []table.Opt[float64]) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if v.Valid {
			out = append(out, v.V)
		}
	}
	return out
}

// Quantile returns the q-quantile of sorted using linear interpolation
// between the two closest ranks: h = (n-1)q, x[floor(h)] + frac(h)*(x[floor(h)+1]-x[floor(h)]).
// sorted must be ascending and non-empty.
func Quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	h := float64(n-1) * q
	f := math.Floor(h)
	i := int(f)
	if i >= n-1 {
		return sorted[n-1]
	}
	return sorted[i] + (h-f)*(sorted[i+1]-sorted[i])
}

// Quantiles computes each q in qs over the non-null values of vals. ok is
// false when vals has no non-null value.
func Quantiles(vals []table.Opt[float64], qs ...float64) (out []float64, ok bool, err error) {
	for _, q := range qs {
		if q < 0 || q > 1 || math.IsNaN(q) {
			return nil, false, fmt.Errorf("stats: quantile %v outside [0, 1]", q)
		}
	}
	xs := NonNull(vals)
	if len(xs) == 0 {
		return nil, false, nil
	}
	slices.Sort(xs)
	out = make([]float64, len(qs))
	for i, q := range qs {
		out[i] = Quantile(xs, q)
	}
	return out, true, nil
}

// IQRBounds returns (Q1 - k*IQR, Q3 + k*IQR) over the non-null values of
// vals. ok is false when there is nothing to compute on.
func IQRBounds(vals []table.Opt[float64], k float64) (lo, hi float64, ok bool) {
	qs, ok, _ := Quantiles(vals, 0.25, 0.75)
	if !ok {
		return 0, 0, false
	}
	iqr := qs[1] - qs[0]
	return qs[0] - k*iqr, qs[1] + k*iqr, true
}

// Winsorize clips every non-null value to [quantile(lo), quantile(hi)].
// Length, order and nulls are preserved. A vector without non-null values is
// returned unchanged.
func Winsorize(vals []table.Opt[float64], lo, hi float64) ([]table.Opt[float64], error) {
	if lo > hi {
		return nil, fmt.Errorf("stats: winsorize lower quantile %v above upper %v", lo, hi)
	}
	bounds, ok, err := Quantiles(vals, lo, hi)
	if err != nil {
		return nil, err
	}
	out := slices.Clone(vals)
	if !ok {
		return out, nil
	}
	for i, v := range out {
		if v.Valid {
			out[i].V = min(max(v.V, bounds[0]), bounds[1])
		}
	}
	return out, nil
}
