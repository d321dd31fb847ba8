// Package csvfile writes tables as comma-separated text with a header row.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"dataflow/internal/datasource"
	"dataflow/internal/table"
)

// TimestampLayout is used for timestamp cells.
const TimestampLayout = "2006-01-02 15:04:05.999999-07:00"

// Write encodes t into w: a header row followed by one line per row. Nulls
// are written as empty cells. No index column is added.
func Write(t table.Table, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.ColumnNames()); err != nil {
		return fmt.Errorf("csvfile: header: %w", err)
	}
	cols := t.Columns()
	rec := make([]string, len(cols))
	for i := 0; i < t.NumRows(); i++ {
		for j, c := range cols {
			rec[j] = Format(c.Value(i), c.Kind())
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("csvfile: row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csvfile: flush: %w", err)
	}
	return nil
}

// WriteSink encodes t into dst.
func WriteSink(ctx context.Context, t table.Table, dst datasource.Sink) error {
	return dst.Write(ctx, func(w io.Writer) error { return Write(t, w) })
}

// Format renders one cell; nil is the empty string.
func Format(v any, k table.Kind) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		if k == table.KindDate {
			return x.Format(time.DateOnly)
		}
		return x.Format(TimestampLayout)
	}
	return fmt.Sprint(v)
}
