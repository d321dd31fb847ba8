package etl

import (
	"fmt"

	"dataflow/internal/config"
	"dataflow/internal/join"
	"dataflow/internal/metrics"
	"dataflow/internal/quality"
	"dataflow/internal/schema"
	"dataflow/internal/table"
	"dataflow/internal/transformer"
	"dataflow/internal/transformer/builtin"
)

// Outputs are the tables produced by Transform.
type Outputs struct {
	Orders      table.Table // schema-enforced orders, before cleaning
	OrdersClean table.Table // cleaned and time-expanded orders
	Users       table.Table
	Analytics   table.Table // orders joined with users, winsorized and flagged
}

// Transform runs the whole transform on the raw inputs: the structural gate,
// schema enforcement, cleaning, temporal expansion, the validated join and
// the outlier steps.
func Transform(p config.Pipeline, in Inputs) (Outputs, error) {
	if err := gateInputs(in.Orders, in.Users); err != nil {
		return Outputs{}, err
	}
	orders, err := Enforce(in.Orders, schema.Orders)
	if err != nil {
		return Outputs{}, err
	}
	users, err := Enforce(in.Users, schema.Users)
	if err != nil {
		return Outputs{}, err
	}
	clean, err := CleanOrders(p.Transform, orders)
	if err != nil {
		return Outputs{}, err
	}
	clean, err = ExpandTime(p.Job, p.Transform, clean)
	if err != nil {
		return Outputs{}, err
	}
	analytics, err := BuildAnalytics(p.Job, p.Transform, clean, users)
	if err != nil {
		return Outputs{}, err
	}
	return Outputs{Orders: orders, OrdersClean: clean, Users: users, Analytics: analytics}, nil
}

func gateInputs(orders, users table.Table) error {
	if err := quality.RequireColumns(orders, schema.Orders.Name, schema.Orders.Required()...); err != nil {
		return err
	}
	if err := quality.RequireColumns(users, schema.Users.Name, schema.Users.Required()...); err != nil {
		return err
	}
	if err := quality.AssertNonEmpty(orders, schema.Orders.Name); err != nil {
		return err
	}
	return quality.AssertNonEmpty(users, schema.Users.Name)
}

// Enforce casts the typed columns of c. Bad values become nulls.
func Enforce(t table.Table, c schema.Contract) (table.Table, error) {
	out, err := builtin.Coerce{Kinds: c.Kinds()}.Apply(t)
	if err != nil {
		return table.Table{}, fmt.Errorf("enforce %s: %w", c.Name, err)
	}
	return out, nil
}

// CleanOrders adds status_clean (normalized, then mapped), the missing flags
// and checks that amount and quantity are non-negative.
func CleanOrders(t config.Transform, orders table.Table) (table.Table, error) {
	chain := transformer.Chain{
		builtin.NormalizeText{Column: "status", Output: "status_clean"},
		builtin.Mapping{Column: "status_clean", Values: t.StatusMapping},
		builtin.MissingFlags{Columns: t.MissingFlags},
		builtin.NonNegative{Columns: []string{"amount", "quantity"}},
	}
	return chain.Apply(orders)
}

// ExpandTime parses the time column to UTC, adds the calendar parts and,
// when dedupe keys are configured, keeps the latest row per key.
func ExpandTime(job string, t config.Transform, orders table.Table) (table.Table, error) {
	chain := transformer.Chain{
		builtin.ParseDatetime{Column: t.TimeColumn, Layouts: t.Layouts, UTC: true},
		builtin.TimeParts{Column: t.TimeColumn},
	}
	out, err := chain.Apply(orders)
	if err != nil {
		return table.Table{}, err
	}
	if len(t.Dedupe.Keys) == 0 {
		return out, nil
	}
	deduped, err := builtin.DedupeLatest{Keys: t.Dedupe.Keys, By: t.Dedupe.By}.Apply(out)
	if err != nil {
		return table.Table{}, err
	}
	metrics.RecordRows(job, "dedupe_dropped", int64(out.NumRows()-deduped.NumRows()))
	return deduped, nil
}

// BuildAnalytics left-joins orders onto users by user_id, checks that no
// row was gained or lost, winsorizes and flags the outlier column.
func BuildAnalytics(job string, t config.Transform, orders, users table.Table) (table.Table, error) {
	if err := quality.AssertUniqueKey(users, "user_id", false); err != nil {
		return table.Table{}, err
	}
	opts, err := joinOptions(t.Join)
	if err != nil {
		return table.Table{}, err
	}
	joined, err := join.SafeLeftJoin(orders, users, "user_id", opts)
	if err != nil {
		return table.Table{}, err
	}
	if joined.NumRows() != orders.NumRows() {
		return table.Table{}, fmt.Errorf("join changed the row count: %d orders, %d joined", orders.NumRows(), joined.NumRows())
	}

	chain := transformer.Chain{
		builtin.Winsorize{Column: t.Winsorize.Column, Lower: t.Winsorize.Lower, Upper: t.Winsorize.Upper},
		builtin.OutlierFlag{Column: t.Outlier.Column, K: t.Outlier.K},
	}
	out, err := chain.Apply(joined)
	if err != nil {
		return table.Table{}, err
	}
	metrics.RecordRows(job, "analytics_out", int64(out.NumRows()))
	metrics.RecordRows(job, "outliers", countTrue(out, t.Outlier.Column+builtin.OutlierSuffix))
	return out, nil
}

func joinOptions(j config.Join) (join.Options, error) {
	v, err := join.ParseValidate(j.Validate)
	if err != nil {
		return join.Options{}, err
	}
	opts := join.Options{Validate: v}
	switch len(j.Suffixes) {
	case 0:
	case 2:
		opts.Suffixes = [2]string{j.Suffixes[0], j.Suffixes[1]}
	default:
		return join.Options{}, fmt.Errorf("join: want two suffixes, got %d", len(j.Suffixes))
	}
	return opts, nil
}

func countTrue(t table.Table, col string) int64 {
	s, err := table.Get[bool](t, col)
	if err != nil {
		return 0
	}
	var n int64
	for _, v := range s.Values() {
		if v.Valid && v.V {
			n++
		}
	}
	return n
}
