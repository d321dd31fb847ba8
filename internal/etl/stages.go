package etl

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"dataflow/internal/config"
	"dataflow/internal/quality"
	"dataflow/internal/schema"
	"dataflow/internal/table"
)

// The staged flows split Run into three independently runnable steps that
// hand over through data/processed: Load enforces the schema, Clean adds the
// cleaning columns and the missingness report, Build produces the analytics
// table from the cleaned parquet files.

// Load reads the raw CSVs, enforces the orders schema and writes
// orders.parquet and users.parquet.
func Load(ctx context.Context, p config.Pipeline) error {
	paths := config.MakePaths(p.Root)
	var in Inputs
	if err := stage(p.Job, StageLoadInputs, func() (err error) {
		in, err = LoadInputs(ctx, p, paths)
		return err
	}); err != nil {
		return err
	}
	return stage(p.Job, StageLoad, func() error {
		orders, err := Enforce(in.Orders, schema.Orders)
		if err != nil {
			return err
		}
		if err := writeParquet(ctx, orders, filepath.Join(paths.Processed, OrdersFile)); err != nil {
			return err
		}
		if err := writeParquet(ctx, in.Users, filepath.Join(paths.Processed, UsersFile)); err != nil {
			return err
		}
		log.Info().
			Int("orders", orders.NumRows()).
			Int("users", in.Users.NumRows()).
			Str("dir", paths.Processed).
			Msg("etl: load written")
		return nil
	})
}

// Clean reads the raw CSVs, runs the structural gate, enforces the schema,
// writes the missingness report and the cleaned orders_clean.parquet and
// users.parquet.
func Clean(ctx context.Context, p config.Pipeline) error {
	paths := config.MakePaths(p.Root)
	var in Inputs
	if err := stage(p.Job, StageLoadInputs, func() (err error) {
		in, err = LoadInputs(ctx, p, paths)
		return err
	}); err != nil {
		return err
	}
	return stage(p.Job, StageClean, func() error {
		if err := gateInputs(in.Orders, in.Users); err != nil {
			return err
		}
		orders, err := Enforce(in.Orders, schema.Orders)
		if err != nil {
			return err
		}
		clean, err := CleanOrders(p.Transform, orders)
		if err != nil {
			return err
		}
		users, err := Enforce(in.Users, schema.Users)
		if err != nil {
			return err
		}

		// Nothing is written until every check has passed.
		if err := writeMissingness(ctx, orders, paths); err != nil {
			return err
		}
		if err := writeParquet(ctx, clean, filepath.Join(paths.Processed, OrdersCleanFile)); err != nil {
			return err
		}
		if err := writeParquet(ctx, users, filepath.Join(paths.Processed, UsersFile)); err != nil {
			return err
		}
		log.Info().Int("orders", clean.NumRows()).Int("users", users.NumRows()).Msg("etl: clean written")
		return nil
	})
}

// Build reads orders_clean.parquet and users.parquet, validates them, and
// writes analytics_table.parquet. It returns the analytics table.
func Build(ctx context.Context, p config.Pipeline) (table.Table, error) {
	paths := config.MakePaths(p.Root)
	var analytics table.Table
	err := stage(p.Job, StageBuild, func() error {
		orders, err := readParquet(ctx, filepath.Join(paths.Processed, OrdersCleanFile))
		if err != nil {
			return err
		}
		users, err := readParquet(ctx, filepath.Join(paths.Processed, UsersFile))
		if err != nil {
			return err
		}
		if err := gateInputs(orders, users); err != nil {
			return err
		}
		// Ids written by other tools may come back numeric.
		if orders, err = Enforce(orders, schema.Orders); err != nil {
			return err
		}
		if users, err = Enforce(users, schema.Users); err != nil {
			return err
		}
		if err := quality.AssertUniqueKey(users, "user_id", false); err != nil {
			return err
		}
		if orders, err = ExpandTime(p.Job, p.Transform, orders); err != nil {
			return err
		}
		if analytics, err = BuildAnalytics(p.Job, p.Transform, orders, users); err != nil {
			return err
		}
		return writeParquet(ctx, analytics, filepath.Join(paths.Processed, AnalyticsFile))
	})
	if err != nil {
		return table.Table{}, err
	}
	return analytics, nil
}
