// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from the pipeline.
//
//   - Backend is a narrow interface over counters, timings (histograms) and
//     run-level gauges.
//   - A global, pluggable backend defaults to a no-op implementation, so the
//     Record helpers are always safe to call even when nothing is configured.
//   - Concrete systems (Prometheus Pushgateway, Datadog) live in subpackages,
//     mirroring the storage abstraction.
//
// Stages report through RecordStage; row counts per dataset through
// RecordRows; warehouse batches through RecordBatches; and the run metadata
// (rows_out, country_match_rate, ...) through RecordValue.
package metrics

import (
	"sync"
	"time"
)

// Metric names emitted by the Record helpers.
const (
	StageTotal    = "pipeline_stage_total"
	StageDuration = "pipeline_stage_duration_seconds"
	RowsTotal     = "pipeline_rows_total"
	BatchesTotal  = "pipeline_batches_total"
	RunValue      = "pipeline_run_value"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// SetGauge records the latest value of a gauge.
	SetGauge(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) SetGauge(string, float64, Labels)         {}
func (nopBackend) Flush() error                             { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// Flush delegates to the current backend.
func Flush() error {
	return current().Flush()
}

// RecordStage measures latency and success/failure of one pipeline stage
// (load, clean, build, export, ...).
func RecordStage(job, stage string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"stage":  stage,
		"status": status,
	}

	b := current()
	b.IncCounter(StageTotal, 1, lbls)
	b.ObserveHistogram(StageDuration, d.Seconds(), lbls)
}

// RecordRows increments the row counter for a dataset, e.g. "orders_in",
// "users_in", "analytics_out", "dedupe_dropped" or "exported".
func RecordRows(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(RowsTotal, float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordBatches increments the warehouse batch counter for the given job.
func RecordBatches(job string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(BatchesTotal, float64(delta), Labels{
		"job": job,
	})
}

// RecordValue sets a named run-level gauge such as "rows_out" or
// "country_match_rate".
func RecordValue(job, name string, value float64) {
	current().SetGauge(RunValue, value, Labels{
		"job":  job,
		"name": name,
	})
}
