package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"dataflow/internal/config"
	"dataflow/internal/logging"

	// register all backends with the storage factory.
	// config specifies which to use but we need to build in support for all of them.
	_ "dataflow/internal/storage/all"
)

// options are the persistent flags shared by every subcommand.
type options struct {
	configPath     string
	root           string
	metricsBackend string
	pushgatewayURL string
	verbose        bool
}

func newRootCmd() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:   "etl",
		Short: "Batch ETL for orders and users",
		Long: `etl reads orders.csv and users.csv from data/raw, validates and cleans
them, joins orders onto users and writes the analytics table, the
missingness report and the run metadata.

Examples:
  etl run --root /srv/project
  etl run --config configs/pipelines/orders.json -v
  etl clean && etl build
  etl schedule --cron "0 2 * * *"`,
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&o.configPath, "config", "", "pipeline config JSON path (built-in defaults when empty)")
	pf.StringVar(&o.root, "root", "", "project root (overrides env ETL_ROOT and the config)")
	pf.StringVar(&o.metricsBackend, "metrics-backend", "", "metrics backend: none, pushgateway or datadog (overrides env METRICS_BACKEND)")
	pf.StringVar(&o.pushgatewayURL, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	pf.BoolVarP(&o.verbose, "verbose", "v", false, "enable verbose logs")

	cmd.AddCommand(
		newRunCmd(o),
		newLoadCmd(o),
		newCleanCmd(o),
		newBuildCmd(o),
		newValidateCmd(o),
		newScheduleCmd(o),
	)
	return cmd
}

// pipeline resolves the pipeline: config file (or defaults), then env, then
// flags.
func (o *options) pipeline() (config.Pipeline, error) {
	if err := config.LoadDotEnv(); err != nil {
		return config.Pipeline{}, fmt.Errorf("load .env: %w", err)
	}
	p, err := config.Load(o.configPath)
	if err != nil {
		return config.Pipeline{}, err
	}
	config.ApplyEnv(&p, nil)

	if o.root != "" {
		p.Root = o.root
	}
	if o.metricsBackend != "" {
		p.Metrics.Backend = o.metricsBackend
	}
	if o.pushgatewayURL != "" {
		p.Metrics.PushgatewayURL = o.pushgatewayURL
	}
	if o.verbose {
		p.Log.Level = "debug"
	}
	return p, nil
}

// validate prints every issue to w and fails when any is an error.
func validate(p config.Pipeline, source string, w io.Writer) error {
	issues := config.ValidatePipeline(p)
	for _, iss := range issues {
		fmt.Fprintf(w, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		return fmt.Errorf("configuration is invalid: %s", source)
	}
	return nil
}

// prepare resolves and validates the pipeline and installs the logger and
// the metrics backend. The returned func flushes metrics and must be called
// once the command is done.
func (o *options) prepare(cmd *cobra.Command) (config.Pipeline, func(), error) {
	p, err := o.pipeline()
	if err != nil {
		return config.Pipeline{}, nil, err
	}
	if err := validate(p, o.source(), cmd.ErrOrStderr()); err != nil {
		return config.Pipeline{}, nil, err
	}
	logging.Setup(p.Log.Level, p.Log.Format, cmd.ErrOrStderr())
	return p, setupMetrics(p), nil
}

func (o *options) source() string {
	if o.configPath == "" {
		return "built-in defaults"
	}
	return o.configPath
}
