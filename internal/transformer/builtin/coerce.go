package builtin

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"dataflow/internal/table"
)

// Coerce casts columns to their canonical kinds. Values that cannot be
// represented in the target kind become null; Coerce never fails because of
// a bad value. Columns already of the target kind are left as they are, so
// applying Coerce twice is the same as applying it once.
type Coerce struct {
	Kinds map[string]table.Kind // column -> target kind
}

func (c Coerce) Apply(in table.Table) (table.Table, error) {
	names := make([]string, 0, len(c.Kinds))
	for n := range c.Kinds {
		names = append(names, n)
	}
	sort.Strings(names)

	out := in
	for _, name := range names {
		col, ok := in.Column(name)
		if !ok {
			continue
		}
		k := c.Kinds[name]
		if col.Kind() == k {
			continue
		}
		cast, err := castColumn(col, k)
		if err != nil {
			return table.Table{}, err
		}
		if out, err = out.With(cast); err != nil {
			return table.Table{}, err
		}
	}
	return out, nil
}

func castColumn(col table.Column, k table.Kind) (table.Column, error) {
	n := col.Len()
	src := col.Kind()
	switch k {
	case table.KindString:
		vals := make([]table.Opt[string], n)
		for i := 0; i < n; i++ {
			vals[i] = toString(col.Value(i), src)
		}
		return table.Strings(col.Name(), vals), nil
	case table.KindFloat:
		vals := make([]table.Opt[float64], n)
		for i := 0; i < n; i++ {
			vals[i] = toFloat(col.Value(i))
		}
		return table.Floats(col.Name(), vals), nil
	case table.KindInt:
		vals := make([]table.Opt[int64], n)
		for i := 0; i < n; i++ {
			vals[i] = toInt(col.Value(i))
		}
		return table.Ints(col.Name(), vals), nil
	case table.KindBool:
		vals := make([]table.Opt[bool], n)
		for i := 0; i < n; i++ {
			vals[i] = toBool(col.Value(i))
		}
		return table.Bools(col.Name(), vals), nil
	}
	return nil, fmt.Errorf("coerce: column %q: cast to %s not supported, use ParseDatetime", col.Name(), k)
}

func toString(v any, src table.Kind) table.Opt[string] {
	switch x := v.(type) {
	case nil:
		return table.Null[string]()
	case string:
		return table.Some(x)
	case float64:
		return table.Some(strconv.FormatFloat(x, 'g', -1, 64))
	case int64:
		return table.Some(strconv.FormatInt(x, 10))
	case bool:
		return table.Some(strconv.FormatBool(x))
	case time.Time:
		if src == table.KindDate {
			return table.Some(x.Format(time.DateOnly))
		}
		return table.Some(x.Format(time.RFC3339Nano))
	}
	return table.Some(fmt.Sprint(v))
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toFloat(v any) table.Opt[float64] {
	switch x := v.(type) {
	case string:
		if f, ok := parseFloat(x); ok {
			return table.Some(f)
		}
	case int64:
		return table.Some(float64(x))
	case float64:
		return table.Some(x)
	case bool:
		if x {
			return table.Some(1.0)
		}
		return table.Some(0.0)
	}
	return table.Null[float64]()
}

// integral reports f as an int64 when it has no fractional part and fits.
func integral(f float64) (int64, bool) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func toInt(v any) table.Opt[int64] {
	switch x := v.(type) {
	case string:
		s := strings.TrimSpace(x)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return table.Some(i)
		}
		if f, ok := parseFloat(s); ok {
			if i, ok := integral(f); ok {
				return table.Some(i)
			}
		}
	case int64:
		return table.Some(x)
	case float64:
		if i, ok := integral(x); ok {
			return table.Some(i)
		}
	case bool:
		if x {
			return table.Some[int64](1)
		}
		return table.Some[int64](0)
	}
	return table.Null[int64]()
}

func toBool(v any) table.Opt[bool] {
	switch x := v.(type) {
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(x)); err == nil {
			return table.Some(b)
		}
	case bool:
		return table.Some(x)
	case int64:
		return table.Some(x != 0)
	case float64:
		return table.Some(x != 0)
	}
	return table.Null[bool]()
}
