package etl

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"dataflow/internal/config"
	"dataflow/internal/join"
	"dataflow/internal/quality"
	"dataflow/internal/schema"
	"dataflow/internal/table"
)

func strs(vals ...string) []table.Opt[string] {
	out := make([]table.Opt[string], len(vals))
	for i, v := range vals {
		if v != "<null>" {
			out[i] = table.Some(v)
		}
	}
	return out
}

type orderRow struct {
	id, user, amount, qty, createdAt, status string
}

func rawOrders(rows ...orderRow) table.Table {
	var id, user, amount, qty, ts, status []string
	for _, r := range rows {
		id = append(id, r.id)
		user = append(user, r.user)
		amount = append(amount, r.amount)
		qty = append(qty, r.qty)
		ts = append(ts, r.createdAt)
		status = append(status, r.status)
	}
	return table.MustNew(
		table.Strings("order_id", strs(id...)),
		table.Strings("user_id", strs(user...)),
		table.Strings("amount", strs(amount...)),
		table.Strings("quantity", strs(qty...)),
		table.Strings("created_at", strs(ts...)),
		table.Strings("status", strs(status...)),
	)
}

func rawUsers(ids, countries []string) table.Table {
	signup := make([]string, len(ids))
	for i := range signup {
		signup[i] = "2023-01-01"
	}
	return table.MustNew(
		table.Strings("user_id", strs(ids...)),
		table.Strings("country", strs(countries...)),
		table.Strings("signup_date", strs(signup...)),
	)
}

func mustGet[T any](t *testing.T, tbl table.Table, col string) []table.Opt[T] {
	t.Helper()
	s, err := table.Get[T](tbl, col)
	if err != nil {
		t.Fatalf("Get %s: %v", col, err)
	}
	return s.Values()
}

/*
TestTransform_SingleOrderScenario pushes one order and its user through the
whole transform and checks every derived field of the analytics row.
*/
func TestTransform_SingleOrderScenario(t *testing.T) {
	t.Parallel()

	in := Inputs{
		Orders: rawOrders(orderRow{"A", "1", "10", "2", "2024-01-05T10:00:00Z", " Paid "}),
		Users:  rawUsers([]string{"1"}, []string{"US"}),
	}
	out, err := Transform(config.Default(), in)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}

	a := out.Analytics
	if a.NumRows() != 1 {
		t.Fatalf("analytics rows = %d, want 1", a.NumRows())
	}
	checks := []struct {
		col  string
		got  any
		want any
	}{
		{"status_clean", mustGet[string](t, a, "status_clean")[0], table.Some("paid")},
		{"amount__isna", mustGet[bool](t, a, "amount__isna")[0], table.Some(false)},
		{"year", mustGet[int64](t, a, "year")[0], table.Some[int64](2024)},
		{"month", mustGet[string](t, a, "month")[0], table.Some("2024-01")},
		{"dow", mustGet[string](t, a, "dow")[0], table.Some("Friday")},
		{"hour", mustGet[int64](t, a, "hour")[0], table.Some[int64](10)},
		{"country", mustGet[string](t, a, "country")[0], table.Some("US")},
		{"amount", mustGet[float64](t, a, "amount")[0], table.Some(10.0)},
		{"amount__is_outlier", mustGet[bool](t, a, "amount__is_outlier")[0], table.Some(false)},
	}
	for _, c := range checks {
		if !reflect.DeepEqual(c.got, c.want) {
			t.Errorf("%s = %v, want %v", c.col, c.got, c.want)
		}
	}

	ts := mustGet[time.Time](t, a, "created_at")[0]
	if !ts.Valid || !ts.V.Equal(time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)) || ts.V.Location() != time.UTC {
		t.Errorf("created_at = %v, want 2024-01-05 10:00 UTC", ts)
	}

	// Orders keeps the enforced, uncleaned shape for the missingness report.
	if out.Orders.Has("status_clean") {
		t.Errorf("Orders has status_clean; want schema-enforced orders only")
	}
	if got := out.OrdersClean.NumRows(); got != 1 {
		t.Errorf("OrdersClean rows = %d, want 1", got)
	}
}

func TestTransform_BadAmountBecomesNullAndIsFlagged(t *testing.T) {
	t.Parallel()

	in := Inputs{
		Orders: rawOrders(
			orderRow{"A", "1", "1", "1", "2024-01-05T10:00:00Z", "paid"},
			orderRow{"B", "1", "bad", "1", "2024-01-05T11:00:00Z", "paid"},
			orderRow{"C", "2", "3", "1", "garbage", "paid"},
		),
		Users: rawUsers([]string{"1", "2"}, []string{"US", "<null>"}),
	}
	out, err := Transform(config.Default(), in)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}

	amount := mustGet[float64](t, out.Orders, "amount")
	if want := []table.Opt[float64]{table.Some(1.0), {}, table.Some(3.0)}; !reflect.DeepEqual(amount, want) {
		t.Fatalf("enforced amount = %v, want %v", amount, want)
	}
	flags := mustGet[bool](t, out.OrdersClean, "amount__isna")
	if want := []table.Opt[bool]{table.Some(false), table.Some(true), table.Some(false)}; !reflect.DeepEqual(flags, want) {
		t.Fatalf("amount__isna = %v, want %v", flags, want)
	}
	// Unparseable timestamps become null, and so do their parts.
	if ts := mustGet[time.Time](t, out.Analytics, "created_at")[2]; ts.Valid {
		t.Fatalf("created_at[2] = %v, want null", ts)
	}
	if dow := mustGet[string](t, out.Analytics, "dow")[2]; dow.Valid {
		t.Fatalf("dow[2] = %v, want null", dow)
	}
}

func TestTransform_WinsorizesBeforeFlagging(t *testing.T) {
	t.Parallel()

	in := Inputs{
		Orders: rawOrders(
			orderRow{"A", "1", "10", "1", "2024-01-05", "paid"},
			orderRow{"B", "1", "<null>", "1", "2024-01-05", "paid"},
			orderRow{"C", "1", "30", "1", "2024-01-05", "paid"},
		),
		Users: rawUsers([]string{"1"}, []string{"US"}),
	}
	out, err := Transform(config.Default(), in)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	amount := mustGet[float64](t, out.Analytics, "amount")
	// q(0.01) = 10.2 and q(0.99) = 29.8 over [10, 30].
	if math.Abs(amount[0].V-10.2) > 1e-9 || math.Abs(amount[2].V-29.8) > 1e-9 || amount[1].Valid {
		t.Fatalf("winsorized amount = %v, want [10.2 null 29.8]", amount)
	}
	flags := mustGet[bool](t, out.Analytics, "amount__is_outlier")
	for i, f := range flags {
		if f.V {
			t.Fatalf("amount__is_outlier[%d] = true, want false", i)
		}
	}
}

/*
TestTransform_FailFast checks that each structural violation aborts the
transform with its typed error.
*/
func TestTransform_FailFast(t *testing.T) {
	t.Parallel()

	okOrders := rawOrders(orderRow{"A", "1", "10", "2", "2024-01-05T10:00:00Z", "paid"})
	okUsers := rawUsers([]string{"1"}, []string{"US"})

	tests := []struct {
		name   string
		in     Inputs
		mutate func(p *config.Pipeline)
		check  func(t *testing.T, err error)
	}{
		{
			name: "orders without status",
			in:   Inputs{Orders: okOrders.Without("status"), Users: okUsers},
			check: func(t *testing.T, err error) {
				var se *quality.SchemaError
				if !errors.As(err, &se) || !reflect.DeepEqual(se.Missing, []string{"status"}) {
					t.Fatalf("err = %v, want SchemaError listing status", err)
				}
			},
		},
		{
			name: "empty users",
			in:   Inputs{Orders: okOrders, Users: rawUsers(nil, nil)},
			check: func(t *testing.T, err error) {
				var ee *quality.EmptyDatasetError
				if !errors.As(err, &ee) || ee.Label != "users" {
					t.Fatalf("err = %v, want EmptyDatasetError{users}", err)
				}
			},
		},
		{
			name: "duplicate user ids",
			in:   Inputs{Orders: okOrders, Users: rawUsers([]string{"1", "1"}, []string{"US", "CA"})},
			check: func(t *testing.T, err error) {
				var ke *quality.KeyViolationError
				if !errors.As(err, &ke) || ke.Duplicates != 2 {
					t.Fatalf("err = %v, want KeyViolationError with 2 duplicates", err)
				}
			},
		},
		{
			name: "negative quantity",
			in:   Inputs{Orders: rawOrders(orderRow{"A", "1", "10", "-2", "2024-01-05", "paid"}), Users: okUsers},
			check: func(t *testing.T, err error) {
				var re *quality.RangeError
				if !errors.As(err, &re) || re.Label != "quantity" || re.Bound != quality.BoundLower {
					t.Fatalf("err = %v, want lower-bound RangeError on quantity", err)
				}
			},
		},
		{
			name: "one_to_one with repeated order users",
			in: Inputs{
				Orders: rawOrders(
					orderRow{"A", "1", "10", "1", "2024-01-05", "paid"},
					orderRow{"B", "1", "12", "1", "2024-01-06", "paid"},
				),
				Users: okUsers,
			},
			mutate: func(p *config.Pipeline) { p.Transform.Join.Validate = "1:1" },
			check: func(t *testing.T, err error) {
				var je *join.JoinValidationError
				if !errors.As(err, &je) || je.Side != join.Left {
					t.Fatalf("err = %v, want JoinValidationError on the left side", err)
				}
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := config.Default()
			if tt.mutate != nil {
				tt.mutate(&p)
			}
			_, err := Transform(p, tt.in)
			if err == nil {
				t.Fatalf("Transform: error = nil")
			}
			tt.check(t, err)
		})
	}
}

func TestCleanOrders_AppliesStatusMapping(t *testing.T) {
	t.Parallel()

	orders, err := Enforce(rawOrders(
		orderRow{"A", "1", "1", "1", "2024-01-05", "  PAYED "},
		orderRow{"B", "1", "1", "1", "2024-01-05", "<null>"},
	), schema.Orders)
	if err != nil {
		t.Fatalf("Enforce: %v", err)
	}
	tr := config.Default().Transform
	tr.StatusMapping = map[string]string{"payed": "paid"}

	clean, err := CleanOrders(tr, orders)
	if err != nil {
		t.Fatalf("CleanOrders: %v", err)
	}
	got := mustGet[string](t, clean, "status_clean")
	if want := []table.Opt[string]{table.Some("paid"), {}}; !reflect.DeepEqual(got, want) {
		t.Fatalf("status_clean = %v, want %v", got, want)
	}
}
