package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables that override the pipeline file.
const (
	EnvRoot           = "ETL_ROOT"
	EnvMetricsBackend = "METRICS_BACKEND"
	EnvPushgatewayURL = "PUSHGATEWAY_URL"
	EnvDatadogAddr    = "DATADOG_ADDR"
	EnvLogLevel       = "LOG_LEVEL"
	EnvLogFormat      = "LOG_FORMAT"
	EnvStorageDSN     = "STORAGE_DSN"
)

// LoadDotEnv loads KEY=VALUE pairs from files into the process environment
// without overriding variables that are already set. Missing files are
// skipped; with no arguments ".env" is tried.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}

// ApplyEnv overrides p from getenv (os.Getenv when nil). Empty values are
// ignored.
func ApplyEnv(p *Pipeline, getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&p.Root, EnvRoot)
	set(&p.Metrics.Backend, EnvMetricsBackend)
	set(&p.Metrics.PushgatewayURL, EnvPushgatewayURL)
	set(&p.Metrics.DatadogAddr, EnvDatadogAddr)
	set(&p.Log.Level, EnvLogLevel)
	set(&p.Log.Format, EnvLogFormat)
	set(&p.Storage.DSN, EnvStorageDSN)
}
