package table

import (
	"reflect"
	"testing"
	"time"
)

func TestNew_RejectsMismatchedLengthsAndDuplicates(t *testing.T) {
	t.Parallel()

	a := Strings("a", []Opt[string]{Some("x"), Some("y")})
	b := Ints("b", []Opt[int64]{Some[int64](1)})
	if _, err := New(a, b); err == nil {
		t.Fatalf("New with mismatched lengths: error = nil, want non-nil")
	}
	if _, err := New(a, a.Renamed("a")); err == nil {
		t.Fatalf("New with duplicate names: error = nil, want non-nil")
	}
}

func TestWith_ReplacesInPlaceOrAppends(t *testing.T) {
	t.Parallel()

	tbl := MustNew(
		Strings("a", []Opt[string]{Some("x")}),
		Strings("b", []Opt[string]{Some("y")}),
	)

	replaced, err := tbl.With(Ints("a", []Opt[int64]{Some[int64](7)}))
	if err != nil {
		t.Fatalf("With: %v", err)
	}
	if got, want := replaced.ColumnNames(), []string{"a", "b"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("ColumnNames() = %v, want %v", got, want)
	}
	if c, _ := replaced.Column("a"); c.Kind() != KindInt {
		t.Fatalf("replaced column kind = %s, want int", c.Kind())
	}

	// Receiver is untouched.
	if c, _ := tbl.Column("a"); c.Kind() != KindString {
		t.Fatalf("original column kind = %s, want string", c.Kind())
	}

	appended, err := tbl.With(BoolsFrom("c", []bool{true}))
	if err != nil {
		t.Fatalf("With: %v", err)
	}
	if got, want := appended.ColumnNames(), []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("ColumnNames() = %v, want %v", got, want)
	}

	if _, err := tbl.With(BoolsFrom("d", []bool{true, false})); err == nil {
		t.Fatalf("With wrong length: error = nil, want non-nil")
	}
}

func TestTake_NegativeIndexYieldsNull(t *testing.T) {
	t.Parallel()

	tbl := MustNew(Strings("a", []Opt[string]{Some("x"), Some("y")}))
	got := tbl.Take([]int{1, -1, 0})

	if got.NumRows() != 3 {
		t.Fatalf("NumRows() = %d, want 3", got.NumRows())
	}
	s, err := Get[string](got, "a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	want := []Opt[string]{Some("y"), Null[string](), Some("x")}
	if !reflect.DeepEqual(s.Values(), want) {
		t.Fatalf("values = %v, want %v", s.Values(), want)
	}
}

func TestGet_KindMismatch(t *testing.T) {
	t.Parallel()

	tbl := MustNew(Strings("a", []Opt[string]{Some("x")}))
	if _, err := Get[float64](tbl, "a"); err == nil {
		t.Fatalf("Get[float64] on string column: error = nil, want non-nil")
	}
	if _, err := Get[string](tbl, "missing"); err == nil {
		t.Fatalf("Get on missing column: error = nil, want non-nil")
	}
}

func TestFloat64s_ReadsInts(t *testing.T) {
	t.Parallel()

	tbl := MustNew(Ints("q", []Opt[int64]{Some[int64](2), Null[int64]()}))
	got, err := Float64s(tbl, "q")
	if err != nil {
		t.Fatalf("Float64s: %v", err)
	}
	want := []Opt[float64]{Some(2.0), Null[float64]()}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Float64s = %v, want %v", got, want)
	}
}

func TestDates_TruncatesToMidnight(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 1, 5, 10, 30, 0, 0, time.UTC)
	d := Dates("date", []Opt[time.Time]{Some(ts)})
	want := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	if got := d.At(0).V; !got.Equal(want) {
		t.Fatalf("date = %v, want %v", got, want)
	}
}

func TestWithout_AndSelect(t *testing.T) {
	t.Parallel()

	tbl := MustNew(
		Strings("a", []Opt[string]{Some("x")}),
		Strings("b", []Opt[string]{Some("y")}),
		Strings("c", []Opt[string]{Some("z")}),
	)
	if got := tbl.Without("b").ColumnNames(); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Fatalf("Without(b) = %v, want [a c]", got)
	}
	sel, err := tbl.Select("c", "a")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got := sel.ColumnNames(); !reflect.DeepEqual(got, []string{"c", "a"}) {
		t.Fatalf("Select(c, a) = %v, want [c a]", got)
	}
	if _, err := tbl.Select("nope"); err == nil {
		t.Fatalf("Select(nope): error = nil, want non-nil")
	}
}
