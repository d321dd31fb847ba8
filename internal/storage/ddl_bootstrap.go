package storage

import (
	"context"
	"fmt"
	"sync"

	"dataflow/internal/table"
)

// DDLBootstrapper creates fqn for t through repo when it does not exist,
// using the backend's type mapping and quoting.
type DDLBootstrapper func(ctx context.Context, repo Repository, fqn string, t table.Table) error

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBootstrapper{}
)

// RegisterDDL registers (or replaces) the bootstrapper for kind. Backends
// call it from init.
func RegisterDDL(kind string, fn DDLBootstrapper) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// EnsureTable runs the bootstrapper registered for kind.
func EnsureTable(ctx context.Context, kind string, repo Repository, fqn string, t table.Table) error {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("storage: no DDL bootstrapper for kind %q", kind)
	}
	return fn(ctx, repo, fqn, t)
}
