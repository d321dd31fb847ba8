package builtin

import (
	"reflect"
	"testing"
	"time"

	"dataflow/internal/table"
)

func day(d int) table.Opt[time.Time] {
	return table.Some(time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC))
}

func dedupInput() table.Table {
	return table.MustNew(
		table.Strings("order_id", strs("A", "A", "B", "A", "C", "C")),
		table.Strings("status", strs("new", "paid", "new", "shipped", "x", "y")),
		table.Timestamps("created_at", []table.Opt[time.Time]{day(1), day(3), day(2), day(2), {}, day(1)}),
	)
}

func TestDedupeLatest_KeepsMaxTimestampPerKey(t *testing.T) {
	t.Parallel()

	out, err := DedupeLatest{Keys: []string{"order_id"}, By: "created_at"}.Apply(dedupInput())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	ids, _ := table.Get[string](out, "order_id")
	status, _ := table.Get[string](out, "status")
	if want := strs("A", "B", "C"); !reflect.DeepEqual(ids.Values(), want) {
		t.Fatalf("order_id = %v, want %v", ids.Values(), want)
	}
	// A: latest is day 3 ("paid"); C: null timestamp loses to day 1 ("y").
	if want := strs("paid", "new", "y"); !reflect.DeepEqual(status.Values(), want) {
		t.Fatalf("status = %v, want %v", status.Values(), want)
	}
}

func TestDedupeLatest_TiesKeepFirst(t *testing.T) {
	t.Parallel()

	in := table.MustNew(
		table.Strings("k", strs("x", "x")),
		table.Strings("v", strs("first", "second")),
		table.Timestamps("ts", []table.Opt[time.Time]{day(1), day(1)}),
	)
	out, err := DedupeLatest{Keys: []string{"k"}, By: "ts"}.Apply(in)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	v, _ := table.Get[string](out, "v")
	if want := strs("first"); !reflect.DeepEqual(v.Values(), want) {
		t.Fatalf("v = %v, want %v", v.Values(), want)
	}
}

func TestDedupeLatest_NullKeyDistinctFromEmpty(t *testing.T) {
	t.Parallel()

	in := table.MustNew(
		table.Strings("k", strs("", "<null>", "")),
		table.Timestamps("ts", []table.Opt[time.Time]{day(1), day(2), day(3)}),
	)
	out, err := DedupeLatest{Keys: []string{"k"}, By: "ts"}.Apply(in)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.NumRows() != 2 {
		t.Fatalf("NumRows() = %d, want 2", out.NumRows())
	}
}

func TestDedupeLatest_NoKeysIsNoop(t *testing.T) {
	t.Parallel()

	in := dedupInput()
	out, err := DedupeLatest{By: "created_at"}.Apply(in)
	if err != nil || out.NumRows() != in.NumRows() {
		t.Fatalf("Apply without keys = %d rows, %v; want %d rows", out.NumRows(), err, in.NumRows())
	}
	if _, err := (DedupeLatest{Keys: []string{"nope"}, By: "created_at"}).Apply(in); err == nil {
		t.Fatalf("Apply with absent key: error = nil, want non-nil")
	}
}
