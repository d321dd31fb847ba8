package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"dataflow/internal/config"
	"dataflow/internal/etl"
)

// runPipeline is the job the scheduler fires; tests replace it.
var runPipeline = func(ctx context.Context, p config.Pipeline) error {
	_, err := etl.Run(ctx, p)
	return err
}

func newScheduleCmd(o *options) *cobra.Command {
	var (
		expr   string
		runNow bool
	)
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the full pipeline on a cron schedule until interrupted",
		Long: `schedule runs the pipeline whenever the standard 5-field cron expression
fires (--cron, or "schedule" in the config). A run that is still going when
the next one is due makes the next one skip. Stop with Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, done, err := o.prepare(cmd)
			if err != nil {
				return err
			}
			defer done()

			if expr != "" {
				p.Schedule = expr
			}
			if strings.TrimSpace(p.Schedule) == "" {
				return errors.New("schedule: no cron expression (use --cron or set schedule in the config)")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return schedule(ctx, p, runNow)
		},
	}
	cmd.Flags().StringVar(&expr, "cron", "", "cron expression (overrides the config)")
	cmd.Flags().BoolVar(&runNow, "now", false, "also run once immediately")
	return cmd
}

// schedule blocks until ctx is done, running the pipeline on p.Schedule.
// Failed runs are logged; the scheduler keeps going.
func schedule(ctx context.Context, p config.Pipeline, runNow bool) error {
	c := cron.New(cron.WithChain(
		cron.Recover(cronLogger{}),
		cron.SkipIfStillRunning(cronLogger{}),
	))
	job := func() {
		if err := runPipeline(ctx, p); err != nil {
			log.Error().Err(err).Str("job", p.Job).Msg("schedule: run failed")
		}
	}
	id, err := c.AddFunc(p.Schedule, job)
	if err != nil {
		return fmt.Errorf("schedule: invalid cron expression %q: %w", p.Schedule, err)
	}
	c.Start()
	log.Info().Str("job", p.Job).Str("cron", p.Schedule).Time("next", c.Entry(id).Next).Msg("schedule: started")

	if runNow {
		c.Entry(id).WrappedJob.Run()
	}

	<-ctx.Done()
	log.Info().Msg("schedule: stopping")
	<-c.Stop().Done()
	return nil
}

// cronLogger routes cron's own logging to zerolog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
