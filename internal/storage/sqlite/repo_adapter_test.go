package sqlite

import (
	"context"
	"strings"
	"testing"

	"dataflow/internal/storage"
	"dataflow/internal/table"
)

// TestRegisteredFactoryUsesHookAndClose swaps newRepository, so it does not
// run in parallel.
func TestRegisteredFactoryUsesHookAndClose(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	fake := &Repository{}
	var gotDSN string
	closed := false
	newRepository = func(_ context.Context, cfg Config) (*Repository, func(), error) {
		gotDSN = cfg.DSN
		return fake, func() { closed = true }, nil
	}

	repo, err := storage.New(context.Background(), storage.Config{Kind: "sqlite", DSN: "warehouse.db"})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	if w, ok := repo.(*wrappedRepo); !ok || w.Repository != fake {
		t.Fatalf("storage.New() = %T, want *wrappedRepo around the hook result", repo)
	}
	if gotDSN != "warehouse.db" {
		t.Fatalf("hook DSN = %q", gotDSN)
	}
	repo.Close()
	if !closed {
		t.Fatalf("Close did not call the cleanup func")
	}
}

// TestRegisteredDDLCreatesTable runs the registered bootstrapper against a
// real in-memory database and checks the table accepts a row.
func TestRegisteredDDLCreatesTable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := &wrappedRepo{Repository: newMemRepo(t)}

	users := table.MustNew(
		table.Strings("user_id", []table.Opt[string]{table.Some("1")}),
		table.Strings("country", []table.Opt[string]{table.Null[string]()}),
	)
	if err := storage.EnsureTable(ctx, "sqlite", repo, "users", users); err != nil {
		t.Fatalf("EnsureTable: %v", err)
	}
	// Idempotent on rerun.
	if err := storage.EnsureTable(ctx, "sqlite", repo, "users", users); err != nil {
		t.Fatalf("EnsureTable (again): %v", err)
	}
	if _, err := repo.CopyFrom(ctx, "users", users.ColumnNames(), [][]any{users.Row(0)}); err != nil {
		t.Fatalf("CopyFrom: %v", err)
	}
	n, err := repo.Count(ctx, "users")
	if err != nil || n != 1 {
		t.Fatalf("Count = %d (err %v), want 1", n, err)
	}
	if err := storage.EnsureTable(ctx, "sqlite", repo, "", users); err == nil || !strings.Contains(err.Error(), "FQN") {
		t.Fatalf("EnsureTable(empty name) error = %v, want FQN error", err)
	}
}
