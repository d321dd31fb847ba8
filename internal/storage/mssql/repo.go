// Package mssql is the SQL Server warehouse backend, registered as storage
// kind "mssql". Rows are loaded through the go-mssqldb bulk copy API.
package mssql

import (
	"context"
	"database/sql"
	"fmt"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	msddl "dataflow/internal/storage/mssql/ddl"
)

type Config struct {
	DSN string
}

// Repository writes pipeline tables to one SQL Server database.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository parses and pings cfg.DSN. The returned func closes the pool.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if _, err := msdsn.Parse(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("mssql: dsn: %w", err)
	}
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("mssql: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("mssql: ping: %w", err)
	}
	return &Repository{db: db, cfg: cfg}, func() { _ = db.Close() }, nil
}

// CopyFrom bulk-copies one batch into tbl in a single transaction; either
// the whole batch lands or none of it does.
func (r *Repository) CopyFrom(ctx context.Context, tbl string, columns []string, rows [][]any) (n int64, err error) {
	if len(rows) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("mssql: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, mssql.CopyIn(msddl.Dialect.QuoteFQN(tbl), mssql.BulkOptions{}, columns...))
	if err != nil {
		return 0, fmt.Errorf("mssql: prepare bulk copy into %s: %w", tbl, err)
	}
	for i, row := range rows {
		if _, err = stmt.ExecContext(ctx, row...); err != nil {
			_ = stmt.Close()
			return 0, fmt.Errorf("mssql: %s row %d: %w", tbl, i, err)
		}
	}
	// An argument-less Exec flushes the bulk copy.
	res, err := stmt.ExecContext(ctx)
	if cerr := stmt.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("mssql: flush %s: %w", tbl, err)
	}
	if n, err = res.RowsAffected(); err != nil {
		return 0, fmt.Errorf("mssql: rows affected: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("mssql: commit: %w", err)
	}
	return n, nil
}

func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	_, err := r.db.ExecContext(ctx, sqlText)
	return err
}

// Truncate empties tbl before a rerun.
func (r *Repository) Truncate(ctx context.Context, tbl string) error {
	return r.Exec(ctx, truncateSQL(tbl))
}

// Count returns the number of rows in tbl.
func (r *Repository) Count(ctx context.Context, tbl string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT_BIG(*) FROM "+msddl.Dialect.QuoteFQN(tbl)).Scan(&n)
	return n, err
}

func truncateSQL(tbl string) string {
	return "TRUNCATE TABLE " + msddl.Dialect.QuoteFQN(tbl)
}
