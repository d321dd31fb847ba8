package builtin

import (
	"fmt"
	"strings"
	"time"

	"dataflow/internal/table"
)

// DefaultLayouts are tried in order by ParseDatetime when none are configured.
// Layouts without a zone are read as UTC.
var DefaultLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05-0700",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	time.DateOnly,
	"2006/01/02 15:04:05",
	"2006/01/02",
}

// ParseDatetime replaces a text column with a timestamp column. Values that
// match none of the layouts become null. With UTC set every result is
// converted to UTC; otherwise the parsed offset is kept.
type ParseDatetime struct {
	Column  string
	Layouts []string
	UTC     bool
}

func (p ParseDatetime) Apply(in table.Table) (table.Table, error) {
	c, ok := in.Column(p.Column)
	if !ok {
		return table.Table{}, fmt.Errorf("parse datetime: column %q not found", p.Column)
	}
	layouts := p.Layouts
	if len(layouts) == 0 {
		layouts = DefaultLayouts
	}

	var out *table.Series[time.Time]
	switch s := c.(type) {
	case *table.Series[string]:
		out = table.Map(s, p.Column, table.KindTimestamp, func(v string) table.Opt[time.Time] {
			ts, ok := ParseTime(v, layouts)
			if !ok {
				return table.Null[time.Time]()
			}
			if p.UTC {
				ts = ts.UTC()
			}
			return table.Some(ts)
		})
	case *table.Series[time.Time]:
		if !p.UTC {
			return in, nil
		}
		out = table.Map(s, p.Column, table.KindTimestamp, func(v time.Time) table.Opt[time.Time] {
			return table.Some(v.UTC())
		})
	default:
		return table.Table{}, fmt.Errorf("parse datetime: column %q is %s", p.Column, c.Kind())
	}
	return in.With(out)
}

// ParseTime tries layouts in order on the trimmed value.
func ParseTime(s string, layouts []string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range layouts {
		if ts, err := time.Parse(l, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// TimeParts derives date, year, month ("YYYY-MM"), dow (weekday name) and
// hour from a timestamp column. Derived cells are null where the source is.
// No zone conversion happens here.
type TimeParts struct {
	Column string
}

func (tp TimeParts) Apply(in table.Table) (table.Table, error) {
	ts, err := table.Get[time.Time](in, tp.Column)
	if err != nil {
		return table.Table{}, fmt.Errorf("time parts: %w", err)
	}
	if ts.Kind() != table.KindTimestamp {
		return table.Table{}, fmt.Errorf("time parts: column %q is %s, want timestamp", tp.Column, ts.Kind())
	}

	date := table.Dates("date", ts.Values())
	year := table.Map(ts, "year", table.KindInt, func(t time.Time) table.Opt[int64] { return table.Some(int64(t.Year())) })
	month := table.Map(ts, "month", table.KindString, func(t time.Time) table.Opt[string] { return table.Some(t.Format("2006-01")) })
	dow := table.Map(ts, "dow", table.KindString, func(t time.Time) table.Opt[string] { return table.Some(t.Weekday().String()) })
	hour := table.Map(ts, "hour", table.KindInt, func(t time.Time) table.Opt[int64] { return table.Some(int64(t.Hour())) })

	out := in
	for _, c := range []table.Column{date, year, month, dow, hour} {
		if out, err = out.With(c); err != nil {
			return table.Table{}, err
		}
	}
	return out, nil
}
