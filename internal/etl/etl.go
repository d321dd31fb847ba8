// Package etl wires the pipeline stages together: it reads the raw inputs,
// runs the quality gate and the transforms, writes the processed outputs and
// the run metadata, and optionally exports the results to a warehouse.
//
// Every stage is timed and recorded through the metrics package; failures
// are wrapped with the stage name and returned unchanged otherwise, so
// callers can still match the typed quality and join errors with errors.As.
package etl

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"dataflow/internal/config"
	"dataflow/internal/metrics"
	"dataflow/internal/report"
)

// Stage names used in logs and metrics.
const (
	StageLoadInputs  = "load_inputs"
	StageTransform   = "transform"
	StageLoadOutputs = "load_outputs"
	StageRunMeta     = "run_meta"
	StageExport      = "export"

	// Staged flows.
	StageLoad  = "load"
	StageClean = "clean"
	StageBuild = "build"
)

// nowFn is the wall clock; tests replace it.
var nowFn = time.Now

// stage runs fn, records its outcome and duration and logs the result.
func stage(job, name string, fn func() error) error {
	start := nowFn()
	err := fn()
	d := nowFn().Sub(start)
	metrics.RecordStage(job, name, err, d)
	if err != nil {
		log.Error().Err(err).Str("job", job).Str("stage", name).Dur("took", d).Msg("etl: stage failed")
		return fmt.Errorf("etl: %s: %w", name, err)
	}
	log.Info().Str("job", job).Str("stage", name).Dur("took", d).Msg("etl: stage done")
	return nil
}

// Run executes the full pipeline for p: inputs are read from data/raw under
// p.Root, the outputs are written to data/processed and reports/, and the
// run metadata is returned. When p.Storage is enabled the processed tables
// are exported last.
func Run(ctx context.Context, p config.Pipeline) (report.RunMeta, error) {
	paths := config.MakePaths(p.Root)
	log.Info().Str("job", p.Job).Str("root", paths.Root).Msg("etl: run started")

	var (
		in   Inputs
		out  Outputs
		meta report.RunMeta
	)
	if err := stage(p.Job, StageLoadInputs, func() (err error) {
		in, err = LoadInputs(ctx, p, paths)
		return err
	}); err != nil {
		return report.RunMeta{}, err
	}
	if err := stage(p.Job, StageTransform, func() (err error) {
		out, err = Transform(p, in)
		return err
	}); err != nil {
		return report.RunMeta{}, err
	}
	if err := stage(p.Job, StageLoadOutputs, func() error {
		return LoadOutputs(ctx, out, paths)
	}); err != nil {
		return report.RunMeta{}, err
	}
	if err := stage(p.Job, StageRunMeta, func() (err error) {
		meta, err = WriteRunMeta(ctx, paths, out.Analytics, p.Transform.TimeColumn)
		return err
	}); err != nil {
		return report.RunMeta{}, err
	}
	recordMeta(p.Job, meta)

	if p.Storage.Enabled() {
		if err := stage(p.Job, StageExport, func() error {
			return Export(ctx, p, out)
		}); err != nil {
			return meta, err
		}
	}

	log.Info().
		Str("job", p.Job).
		Str("run_id", meta.RunID).
		Int("rows_out", meta.RowsOut).
		Int("missing_created_at", meta.MissingCreatedAt).
		Float64("country_match_rate", meta.CountryMatchRate).
		Msg("etl: run complete")
	return meta, nil
}

func recordMeta(job string, m report.RunMeta) {
	metrics.RecordValue(job, "rows_out", float64(m.RowsOut))
	metrics.RecordValue(job, "missing_created_at", float64(m.MissingCreatedAt))
	metrics.RecordValue(job, "country_match_rate", m.CountryMatchRate)
}
