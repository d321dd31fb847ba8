package report

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

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

func TestMissingness_CountsAndOrder(t *testing.T) {
	t.Parallel()

	in := table.MustNew(
		table.Strings("order_id", strs("A", "B", "C", "D")),
		table.Strings("status", strs("<null>", "x", "<null>", "y")),
		table.Floats("amount", []table.Opt[float64]{{}, {}, {}, table.Some(1.0)}),
		table.Strings("user_id", strs("1", "<null>", "3", "4")),
		table.Strings("country", strs("US", "<null>", "US", "US")),
	)
	rep := Missingness(in)

	if rep.NumRows() != in.NumCols() {
		t.Fatalf("NumRows() = %d, want %d", rep.NumRows(), in.NumCols())
	}
	cols, _ := table.Get[string](rep, "column")
	if want := strs("amount", "status", "user_id", "country", "order_id"); !reflect.DeepEqual(cols.Values(), want) {
		t.Fatalf("column = %v, want %v", cols.Values(), want)
	}
	n, _ := table.Get[int64](rep, "n_missing")
	p, _ := table.Get[float64](rep, "p_missing")
	wantN := []int64{3, 2, 1, 1, 0}
	for i, w := range wantN {
		if n.At(i).V != w {
			t.Fatalf("n_missing[%d] = %d, want %d", i, n.At(i).V, w)
		}
		if got, want := p.At(i).V, float64(w)/4; !p.At(i).Valid || got != want {
			t.Fatalf("p_missing[%d] = %v, want %v", i, p.At(i), want)
		}
	}
}

func TestMissingness_EmptyTable(t *testing.T) {
	t.Parallel()

	rep := Missingness(table.MustNew(table.Strings("a", nil), table.Strings("b", nil)))
	if rep.NumRows() != 2 {
		t.Fatalf("NumRows() = %d, want 2", rep.NumRows())
	}
	p, _ := table.Get[float64](rep, "p_missing")
	if p.NullCount() != 2 {
		t.Fatalf("p_missing = %v, want all null", p.Values())
	}
}

func TestNewRunMeta(t *testing.T) {
	t.Parallel()

	ts := []table.Opt[time.Time]{table.Some(time.Now()), {}, table.Some(time.Now()), table.Some(time.Now())}
	analytics := table.MustNew(
		table.Timestamps("created_at", ts),
		table.Strings("country", strs("US", "US", "<null>", "DE")),
	)
	now := time.Date(2024, 1, 5, 10, 0, 0, 123456000, time.FixedZone("CET", 3600))
	m, err := NewRunMeta(analytics, "created_at", "country", now)
	if err != nil {
		t.Fatalf("NewRunMeta: %v", err)
	}
	if m.RowsOut != 4 || m.MissingCreatedAt != 1 || m.CountryMatchRate != 0.75 {
		t.Fatalf("RunMeta = %+v", m)
	}
	if m.TimestampUTC != "2024-01-05T09:00:00.123456+00:00" {
		t.Fatalf("TimestampUTC = %q", m.TimestampUTC)
	}
	if _, err := uuid.Parse(m.RunID); err != nil {
		t.Fatalf("RunID %q: %v", m.RunID, err)
	}
	if _, err := NewRunMeta(analytics, "nope", "country", now); err == nil {
		t.Fatalf("absent column: error = nil, want non-nil")
	}
}

func TestNewRunMeta_EmptyAnalytics(t *testing.T) {
	t.Parallel()

	analytics := table.MustNew(table.Timestamps("created_at", nil), table.Strings("country", nil))
	m, err := NewRunMeta(analytics, "created_at", "country", time.Now())
	if err != nil {
		t.Fatalf("NewRunMeta: %v", err)
	}
	if m.RowsOut != 0 || m.CountryMatchRate != 0 {
		t.Fatalf("RunMeta = %+v, want zero rows and rate", m)
	}
}

func TestRunMeta_Encode(t *testing.T) {
	t.Parallel()

	m := RunMeta{RunID: "r", TimestampUTC: "t", RowsOut: 1, MissingCreatedAt: 0, CountryMatchRate: 1}
	var buf bytes.Buffer
	if err := m.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(buf.String(), "\n  \"rows_out\": 1") {
		t.Fatalf("Encode output not indented: %s", buf.String())
	}
	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for _, k := range []string{"timestamp_utc", "rows_out", "missing_created_at", "country_match_rate", "run_id"} {
		if _, ok := got[k]; !ok {
			t.Fatalf("key %q missing in %v", k, got)
		}
	}
}
