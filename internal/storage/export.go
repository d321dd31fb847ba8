package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"dataflow/internal/table"
)

// DefaultBatchSize is used when ExportOptions.BatchSize is not positive.
const DefaultBatchSize = 5000

// ExportOptions controls ExportTable.
type ExportOptions struct {
	BatchSize int
	// Truncate empties the destination before loading so reruns replace
	// rather than append.
	Truncate bool
	// Job labels metrics.
	Job string
}

// ExportTable creates fqn for t when missing, optionally truncates it and
// bulk-loads every row through LoadTable. It returns the number of rows
// the backend reported as written.
func ExportTable(ctx context.Context, kind string, repo Repository, fqn string, t table.Table, opts ExportOptions) (int64, error) {
	if repo == nil {
		return 0, fmt.Errorf("storage: export %s: nil repository", fqn)
	}
	if err := EnsureTable(ctx, kind, repo, fqn, t); err != nil {
		return 0, fmt.Errorf("storage: export %s: ensure table: %w", fqn, err)
	}
	if opts.Truncate {
		if err := repo.Truncate(ctx, fqn); err != nil {
			return 0, fmt.Errorf("storage: export %s: truncate: %w", fqn, err)
		}
	}
	batch := opts.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}

	n, err := LoadTable(ctx, opts.Job, t, batch, func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
		return repo.CopyFrom(ctx, fqn, columns, rows)
	})
	if err != nil {
		return n, fmt.Errorf("storage: export %s: %w", fqn, err)
	}
	log.Info().Str("table", fqn).Str("kind", kind).Int64("rows", n).Msg("storage: export complete")
	return n, nil
}
