// Package sqlite is the single-file warehouse backend, registered as
// storage kind "sqlite".
package sqlite

import (
	"context"
	"fmt"

	"dataflow/internal/storage"
	sqliteddl "dataflow/internal/storage/sqlite/ddl"
	"dataflow/internal/table"
)

var newRepository = NewRepository

// wrappedRepo ties the cleanup func from NewRepository to Close.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

var _ storage.Repository = (*wrappedRepo)(nil)

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})

	storage.RegisterDDL("sqlite",
		func(ctx context.Context, repo storage.Repository, fqn string, t table.Table) error {
			if err := sqliteddl.Dialect.EnsureTable(ctx, repo, fqn, t); err != nil {
				return fmt.Errorf("apply DDL: %w", err)
			}
			return nil
		})
}
