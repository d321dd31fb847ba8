// Package parquet persists tables as Apache Parquet files through the Arrow
// columnar format. Column kinds map onto Arrow types one to one; timestamps
// are stored as UTC microseconds and dates as Date32.
package parquet

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	pq "github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"dataflow/internal/datasource"
	"dataflow/internal/table"
)

// Pool is the Go memory allocator used by Arrow.
var Pool = memory.NewGoAllocator()

// rowGroupSize caps the rows per parquet row group.
const rowGroupSize = 64 * 1024

var timestampType = &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}

func arrowType(k table.Kind) (arrow.DataType, error) {
	switch k {
	case table.KindString:
		return arrow.BinaryTypes.String, nil
	case table.KindFloat:
		return arrow.PrimitiveTypes.Float64, nil
	case table.KindInt:
		return arrow.PrimitiveTypes.Int64, nil
	case table.KindBool:
		return arrow.FixedWidthTypes.Boolean, nil
	case table.KindTimestamp:
		return timestampType, nil
	case table.KindDate:
		return arrow.FixedWidthTypes.Date32, nil
	}
	return nil, fmt.Errorf("parquet: no arrow type for kind %s", k)
}

// Schema returns the Arrow schema that t is written with.
func Schema(t table.Table) (*arrow.Schema, error) {
	fields := make([]arrow.Field, 0, t.NumCols())
	for _, c := range t.Columns() {
		dt, err := arrowType(c.Kind())
		if err != nil {
			return nil, fmt.Errorf("parquet: column %q: %w", c.Name(), err)
		}
		fields = append(fields, arrow.Field{Name: c.Name(), Type: dt, Nullable: true})
	}
	return arrow.NewSchema(fields, nil), nil
}

// Write encodes t as a single parquet file into w. No index column is added.
func Write(t table.Table, w io.Writer) error {
	schema, err := Schema(t)
	if err != nil {
		return err
	}
	b := array.NewRecordBuilder(Pool, schema)
	defer b.Release()

	for i, c := range t.Columns() {
		if err := appendColumn(b.Field(i), c); err != nil {
			return fmt.Errorf("parquet: column %q: %w", c.Name(), err)
		}
	}
	rec := b.NewRecord()
	defer rec.Release()

	tbl := array.NewTableFromRecords(schema, []arrow.Record{rec})
	defer tbl.Release()

	props := pq.NewWriterProperties(pq.WithCompression(compress.Codecs.Snappy))
	arrProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())
	// The wrapper hides any Close method of w; the caller owns w.
	if err := pqarrow.WriteTable(tbl, struct{ io.Writer }{w}, rowGroupSize, props, arrProps); err != nil {
		return fmt.Errorf("parquet: write: %w", err)
	}
	return nil
}

func appendColumn(fb array.Builder, c table.Column) error {
	n := c.Len()
	switch bld := fb.(type) {
	case *array.StringBuilder:
		for i := 0; i < n; i++ {
			if v, ok := c.Value(i).(string); ok {
				bld.Append(v)
			} else {
				bld.AppendNull()
			}
		}
	case *array.Float64Builder:
		for i := 0; i < n; i++ {
			if v, ok := c.Value(i).(float64); ok {
				bld.Append(v)
			} else {
				bld.AppendNull()
			}
		}
	case *array.Int64Builder:
		for i := 0; i < n; i++ {
			if v, ok := c.Value(i).(int64); ok {
				bld.Append(v)
			} else {
				bld.AppendNull()
			}
		}
	case *array.BooleanBuilder:
		for i := 0; i < n; i++ {
			if v, ok := c.Value(i).(bool); ok {
				bld.Append(v)
			} else {
				bld.AppendNull()
			}
		}
	case *array.TimestampBuilder:
		for i := 0; i < n; i++ {
			if v, ok := c.Value(i).(time.Time); ok {
				bld.Append(arrow.Timestamp(v.UnixMicro()))
			} else {
				bld.AppendNull()
			}
		}
	case *array.Date32Builder:
		for i := 0; i < n; i++ {
			if v, ok := c.Value(i).(time.Time); ok {
				y, m, d := v.Date()
				bld.Append(arrow.Date32FromTime(time.Date(y, m, d, 0, 0, 0, 0, time.UTC)))
			} else {
				bld.AppendNull()
			}
		}
	default:
		return fmt.Errorf("unsupported builder %T", fb)
	}
	return nil
}

// Read decodes a parquet file. Columns of types outside the table kinds
// (narrow integers, float32, large strings) are widened.
func Read(ctx context.Context, r pq.ReaderAtSeeker) (table.Table, error) {
	tbl, err := pqarrow.ReadTable(ctx, r, pq.NewReaderProperties(Pool), pqarrow.ArrowReadProperties{}, Pool)
	if err != nil {
		return table.Table{}, fmt.Errorf("parquet: read: %w", err)
	}
	defer tbl.Release()

	cols := make([]table.Column, 0, tbl.NumCols())
	for i := 0; i < int(tbl.NumCols()); i++ {
		col := tbl.Column(i)
		c, err := readColumn(col.Name(), col.DataType(), col.Data().Chunks())
		if err != nil {
			return table.Table{}, fmt.Errorf("parquet: column %q: %w", col.Name(), err)
		}
		cols = append(cols, c)
	}
	out, err := table.New(cols...)
	if err != nil {
		return table.Table{}, fmt.Errorf("parquet: %w", err)
	}
	return out, nil
}

// ReadSource opens src and decodes it with Read. Sources that cannot seek
// are buffered in memory first.
func ReadSource(ctx context.Context, src datasource.Source) (table.Table, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return table.Table{}, err
	}
	defer rc.Close()

	if ras, ok := rc.(pq.ReaderAtSeeker); ok {
		return Read(ctx, ras)
	}
	buf, err := io.ReadAll(rc)
	if err != nil {
		return table.Table{}, fmt.Errorf("parquet: read: %w", err)
	}
	return Read(ctx, bytes.NewReader(buf))
}

// WriteSink encodes t into dst.
func WriteSink(ctx context.Context, t table.Table, dst datasource.Sink) error {
	return dst.Write(ctx, func(w io.Writer) error { return Write(t, w) })
}

func readColumn(name string, dt arrow.DataType, chunks []arrow.Array) (table.Column, error) {
	switch dt.ID() {
	case arrow.STRING, arrow.LARGE_STRING:
		return table.Strings(name, collect(chunks, func(a arrow.Array, i int) string {
			if s, ok := a.(*array.String); ok {
				return s.Value(i)
			}
			return a.(*array.LargeString).Value(i)
		})), nil
	case arrow.FLOAT64:
		return table.Floats(name, collect(chunks, func(a arrow.Array, i int) float64 { return a.(*array.Float64).Value(i) })), nil
	case arrow.FLOAT32:
		return table.Floats(name, collect(chunks, func(a arrow.Array, i int) float64 { return float64(a.(*array.Float32).Value(i)) })), nil
	case arrow.INT64:
		return table.Ints(name, collect(chunks, func(a arrow.Array, i int) int64 { return a.(*array.Int64).Value(i) })), nil
	case arrow.INT32:
		return table.Ints(name, collect(chunks, func(a arrow.Array, i int) int64 { return int64(a.(*array.Int32).Value(i)) })), nil
	case arrow.INT16:
		return table.Ints(name, collect(chunks, func(a arrow.Array, i int) int64 { return int64(a.(*array.Int16).Value(i)) })), nil
	case arrow.INT8:
		return table.Ints(name, collect(chunks, func(a arrow.Array, i int) int64 { return int64(a.(*array.Int8).Value(i)) })), nil
	case arrow.BOOL:
		return table.Bools(name, collect(chunks, func(a arrow.Array, i int) bool { return a.(*array.Boolean).Value(i) })), nil
	case arrow.TIMESTAMP:
		unit := dt.(*arrow.TimestampType).Unit
		return table.Timestamps(name, collect(chunks, func(a arrow.Array, i int) time.Time {
			return a.(*array.Timestamp).Value(i).ToTime(unit).UTC()
		})), nil
	case arrow.DATE32:
		return table.Dates(name, collect(chunks, func(a arrow.Array, i int) time.Time { return a.(*array.Date32).Value(i).ToTime() })), nil
	}
	return nil, fmt.Errorf("unsupported arrow type %s", dt)
}

func collect[T any](chunks []arrow.Array, at func(arrow.Array, int) T) []table.Opt[T] {
	n := 0
	for _, c := range chunks {
		n += c.Len()
	}
	out := make([]table.Opt[T], 0, n)
	for _, c := range chunks {
		for i := 0; i < c.Len(); i++ {
			if c.IsNull(i) {
				out = append(out, table.Opt[T]{})
				continue
			}
			out = append(out, table.Some(at(c, i)))
		}
	}
	return out
}
