// Package postgres is the Postgres warehouse backend, registered as storage
// kind "postgres". Rows are loaded with COPY through pgx.
package postgres

import (
	"context"
	"fmt"

	"dataflow/internal/storage"
	pgddl "dataflow/internal/storage/postgres/ddl"
	"dataflow/internal/table"
)

var newRepository = NewRepository

// wrappedRepo ties the pool cleanup from NewRepository to Close.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

var _ storage.Repository = (*wrappedRepo)(nil)

func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})

	storage.RegisterDDL("postgres",
		func(ctx context.Context, repo storage.Repository, fqn string, t table.Table) error {
			if err := pgddl.Dialect.EnsureTable(ctx, repo, fqn, t); err != nil {
				return fmt.Errorf("apply DDL: %w", err)
			}
			return nil
		})
}
