package transformer

import (
	"errors"
	"reflect"
	"testing"

	"dataflow/internal/table"
)

/*
addColumn appends a constant string column. Used to verify that output of
one step flows into the next.
*/
type addColumn struct {
	name, val string
}

func (a addColumn) Apply(in table.Table) (table.Table, error) {
	vals := make([]table.Opt[string], in.NumRows())
	for i := range vals {
		vals[i] = table.Some(a.val)
	}
	return in.With(table.Strings(a.name, vals))
}

/*
counter increments *calls whenever Apply is invoked.
*/
type counter struct{ calls *int }

func (c counter) Apply(in table.Table) (table.Table, error) {
	*c.calls++
	return in, nil
}

func base() table.Table {
	return table.MustNew(table.Strings("id", []table.Opt[string]{table.Some("1"), table.Some("2")}))
}

func TestChain_AppliesInOrder(t *testing.T) {
	t.Parallel()

	calls := 0
	c := Chain{addColumn{"a", "x"}, counter{&calls}, addColumn{"b", "y"}}
	out, err := c.Apply(base())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if calls != 1 {
		t.Fatalf("counter calls = %d, want 1", calls)
	}
	if got, want := out.ColumnNames(), []string{"id", "a", "b"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("ColumnNames() = %v, want %v", got, want)
	}
}

func TestChain_StopsAtFirstError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	calls := 0
	c := Chain{
		Func(func(in table.Table) (table.Table, error) { return table.Table{}, boom }),
		counter{&calls},
	}
	if _, err := c.Apply(base()); !errors.Is(err, boom) {
		t.Fatalf("Apply error = %v, want wrapping %v", err, boom)
	}
	if calls != 0 {
		t.Fatalf("steps after the failing one ran %d times, want 0", calls)
	}
}

func TestChain_EmptyIsIdentity(t *testing.T) {
	t.Parallel()

	in := base()
	out, err := Chain(nil).Apply(in)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !reflect.DeepEqual(out.ColumnNames(), in.ColumnNames()) || out.NumRows() != in.NumRows() {
		t.Fatalf("empty chain changed the table")
	}
}
