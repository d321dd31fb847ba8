package storage

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"dataflow/internal/metrics"
	"dataflow/internal/table"
)

// CopyFn is a backend's bulk insert: rows are aligned to columns and the
// return value is the count the backend reports as written. Backends use
// their fastest path (COPY, bulk copy, or prepared INSERTs in one
// transaction).
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadTable writes t through copyFn in windows of batchSize rows. Each window
// is a freshly allocated slice, so backends may keep it. It returns the rows
// reported so far together with the first error, including ctx.Err() when
// ctx is done between batches.
func LoadTable(ctx context.Context, job string, t table.Table, batchSize int, copyFn CopyFn) (int64, error) {
	if batchSize <= 0 {
		return 0, errors.New("storage: batch size must be > 0")
	}
	if copyFn == nil {
		return 0, errors.New("storage: nil copy function")
	}

	columns := t.ColumnNames()
	start := time.Now()
	var total int64
	for lo, batch := 0, 1; lo < t.NumRows(); lo, batch = lo+batchSize, batch+1 {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		hi := min(lo+batchSize, t.NumRows())
		rows := make([][]any, 0, hi-lo)
		for i := lo; i < hi; i++ {
			rows = append(rows, t.Row(i))
		}

		n, err := copyFn(ctx, columns, rows)
		total += n
		if err != nil {
			log.Error().Err(err).Int("batch", batch).Int64("total", total).Msg("storage: copy failed")
			return total, err
		}
		metrics.RecordBatches(job, 1)
		log.Debug().
			Int("batch", batch).
			Int64("rows", n).
			Int64("total", total).
			Dur("elapsed", time.Since(start).Truncate(time.Millisecond)).
			Msg("storage: batch written")
	}
	return total, nil
}
