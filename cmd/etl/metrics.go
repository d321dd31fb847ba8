package main

import (
	"github.com/rs/zerolog/log"

	"dataflow/internal/config"
	"dataflow/internal/metrics"
	"dataflow/internal/metrics/datadog"
	"dataflow/internal/metrics/prompush"
)

// setupMetrics installs the backend named by p.Metrics and returns the
// function that flushes it. A backend that fails to initialize is logged and
// metrics stay disabled.
func setupMetrics(p config.Pipeline) func() {
	m := p.Metrics
	flush := func() {
		if err := metrics.Flush(); err != nil {
			log.Warn().Err(err).Msg("metrics: flush error")
		}
	}

	switch m.Backend {
	case "pushgateway":
		b, err := prompush.NewBackend(p.Job, m.PushgatewayURL)
		if err != nil {
			log.Warn().Err(err).Msg("metrics: failed to init prom push backend; using nop")
			return func() {}
		}
		log.Debug().Str("url", m.PushgatewayURL).Str("job", p.Job).Msg("metrics: pushgateway enabled")
		metrics.SetBackend(b)
		return flush

	case "datadog":
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       m.DatadogAddr,
			Namespace:  m.Namespace,
			GlobalTags: []string{"job:" + p.Job},
		})
		if err != nil {
			log.Warn().Err(err).Msg("metrics: failed to init datadog backend; using nop")
			return func() {}
		}
		log.Debug().Str("addr", m.DatadogAddr).Msg("metrics: datadog enabled")
		metrics.SetBackend(b)
		return func() {
			flush()
			if err := b.Close(); err != nil {
				log.Warn().Err(err).Msg("metrics: datadog close error")
			}
		}

	default:
		log.Debug().Str("backend", m.Backend).Msg("metrics: disabled")
		return func() {}
	}
}
