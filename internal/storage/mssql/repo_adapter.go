// Package mssql wires the SQL Server backend into the storage factory and
// registers its DDL bootstrapper.
package mssql

import (
	"context"
	"fmt"

	"dataflow/internal/storage"
	msddl "dataflow/internal/storage/mssql/ddl"
	"dataflow/internal/table"
)

var newRepository = NewRepository

var _ storage.Repository = (*wrappedRepo)(nil)

func init() {
	storage.Register("mssql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})

	storage.RegisterDDL("mssql",
		func(ctx context.Context, repo storage.Repository, fqn string, t table.Table) error {
			if err := msddl.Dialect.EnsureTable(ctx, repo, fqn, t); err != nil {
				return fmt.Errorf("apply DDL: %w", err)
			}
			return nil
		})
}

type wrappedRepo struct {
	*Repository
	closeFn func()
}

func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}
