package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"dataflow/internal/config"
	"dataflow/internal/etl"
)

func newRunCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, done, err := o.prepare(cmd)
			if err != nil {
				return err
			}
			defer done()

			start := time.Now()
			meta, err := etl.Run(cmd.Context(), p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rows_out=%d missing_created_at=%d country_match_rate=%.4f run_id=%s\n",
				meta.RowsOut, meta.MissingCreatedAt, meta.CountryMatchRate, meta.RunID)
			log.Debug().Dur("took", time.Since(start).Truncate(time.Millisecond)).Msg("etl: completed")
			return nil
		},
	}
}

// stageCmd builds a command that runs one staged flow.
func stageCmd(o *options, use, short string, fn func(cmd *cobra.Command, p config.Pipeline) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, done, err := o.prepare(cmd)
			if err != nil {
				return err
			}
			defer done()
			return fn(cmd, p)
		},
	}
}

func newLoadCmd(o *options) *cobra.Command {
	return stageCmd(o, "load", "Read the raw CSVs, enforce the schema and write orders/users parquet",
		func(cmd *cobra.Command, p config.Pipeline) error {
			return etl.Load(cmd.Context(), p)
		})
}

func newCleanCmd(o *options) *cobra.Command {
	return stageCmd(o, "clean", "Gate and clean the raw inputs, write the missingness report and orders_clean",
		func(cmd *cobra.Command, p config.Pipeline) error {
			return etl.Clean(cmd.Context(), p)
		})
}

func newBuildCmd(o *options) *cobra.Command {
	return stageCmd(o, "build", "Build analytics_table from the cleaned parquet files",
		func(cmd *cobra.Command, p config.Pipeline) error {
			t, err := etl.Build(cmd.Context(), p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rows_out=%d\n", t.NumRows())
			return nil
		})
}

func newValidateCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := o.pipeline()
			if err != nil {
				return err
			}
			if err := validate(p, o.source(), cmd.ErrOrStderr()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration is valid: %s\n", o.source())
			return nil
		},
	}
}
