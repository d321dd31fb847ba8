package etl

import (
	"context"
	"fmt"

	"dataflow/internal/config"
	"dataflow/internal/metrics"
	"dataflow/internal/storage"
	"dataflow/internal/table"
)

// newRepository opens the warehouse; tests replace it.
var newRepository = storage.New

// Export copies users, orders_clean and analytics_table into the warehouse
// configured by p.Storage, creating the tables when missing. Table names
// carry p.Storage.TablePrefix.
func Export(ctx context.Context, p config.Pipeline, out Outputs) error {
	s := p.Storage
	repo, err := newRepository(ctx, storage.Config{Kind: s.Kind, DSN: s.DSN})
	if err != nil {
		return fmt.Errorf("open %s: %w", s.Kind, err)
	}
	defer repo.Close()

	opts := storage.ExportOptions{BatchSize: s.BatchSize, Truncate: s.Truncate, Job: p.Job}
	for _, e := range []struct {
		name string
		t    table.Table
	}{
		{"users", out.Users},
		{"orders_clean", out.OrdersClean},
		{"analytics_table", out.Analytics},
	} {
		n, err := storage.ExportTable(ctx, s.Kind, repo, s.TablePrefix+e.name, e.t, opts)
		if err != nil {
			return err
		}
		metrics.RecordRows(p.Job, "exported", n)
	}
	return nil
}
