// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) causes the init functions of each concrete storage backend to run,
// which in turn register their factories and DDL bootstrappers with the
// storage package.
//
// Importing this package makes the following storage kinds available:
//
//   - "postgres" (dataflow/internal/storage/postgres)
//   - "mssql"    (dataflow/internal/storage/mssql)
//   - "sqlite"   (dataflow/internal/storage/sqlite)
//
// Typical usage (in cmd/etl or a similar wiring layer):
//
//	import _ "dataflow/internal/storage/all"
//
//	repo, err := storage.New(ctx, storage.Config{Kind: p.Storage.Kind, DSN: p.Storage.DSN})
//	if err != nil {
//	    // handle error
//	}
//	defer repo.Close()
//	n, err := storage.ExportTable(ctx, p.Storage.Kind, repo, "analytics", t, opts)
package all

import (
	_ "dataflow/internal/storage/mssql"
	_ "dataflow/internal/storage/postgres"
	_ "dataflow/internal/storage/sqlite"
)
