// Package config defines the canonical, JSON-serializable configuration model
// for the pipeline. Pipelines are loaded from disk (configs/pipelines/*.json)
// on top of Default(), then overridden from the environment, and passed
// through the program without additional glue code.
//
// Example (trimmed):
//
//	{
//	  "job": "orders_analytics",
//	  "root": ".",
//	  "inputs": { "orders": "orders.csv", "users": "users.csv" },
//	  "transform": {
//	    "time_column": "created_at",
//	    "winsorize": { "column": "amount", "lower": 0.01, "upper": 0.99 },
//	    "outlier": { "column": "amount", "k": 1.2 }
//	  },
//	  "storage": { "kind": "sqlite", "dsn": "file:warehouse.db" }
//	}
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// Pipeline describes the full pipeline in JSON. It is the top-level object
// decoded from a pipeline file.
type Pipeline struct {
	// Job names the run in logs and metrics.
	Job string `json:"job"`

	// Root is the project root; data/ and reports/ live under it.
	Root string `json:"root"`

	// Inputs names the raw CSV files, relative to data/raw.
	Inputs Inputs `json:"inputs"`

	// Parser configures how the raw CSVs are read.
	Parser Parser `json:"parser"`

	// Transform carries the cleaning and feature parameters.
	Transform Transform `json:"transform"`

	// Storage optionally exports the outputs to a warehouse.
	Storage Storage `json:"storage"`

	Metrics Metrics `json:"metrics"`
	Log     Log     `json:"log"`

	// Schedule is a standard 5-field cron expression used by "etl schedule".
	Schedule string `json:"schedule"`
}

// Inputs holds the raw file names.
type Inputs struct {
	Orders string `json:"orders"`
	Users  string `json:"users"`
}

// Parser holds CSV reader options.
type Parser struct {
	// Comma is the single-character field delimiter.
	Comma string `json:"comma"`

	// NullTokens lists exact cell values read as null. Empty means the
	// parser defaults ("", NA, N/A, null, None).
	NullTokens []string `json:"null_tokens"`
}

// Transform holds the parameters of the cleaning and build stages.
type Transform struct {
	// TimeColumn is parsed as a timestamp and expanded into time parts.
	TimeColumn string `json:"time_column"`

	// Layouts are the accepted timestamp layouts (Go reference time). Empty
	// means the built-in list.
	Layouts []string `json:"layouts"`

	// MissingFlags lists columns that get a "<col>__isna" indicator.
	MissingFlags []string `json:"missing_flags"`

	// StatusMapping optionally rewrites normalized status values.
	StatusMapping map[string]string `json:"status_mapping"`

	Dedupe    Dedupe    `json:"dedupe"`
	Winsorize Winsorize `json:"winsorize"`
	Outlier   Outlier   `json:"outlier"`
	Join      Join      `json:"join"`
}

// Dedupe keeps the latest row per key when Keys is non-empty.
type Dedupe struct {
	Keys []string `json:"keys"`
	By   string   `json:"by"`
}

// Winsorize clips Column to its [Lower, Upper] quantiles.
type Winsorize struct {
	Column string  `json:"column"`
	Lower  float64 `json:"lower"`
	Upper  float64 `json:"upper"`
}

// Outlier flags values outside the IQR fences with multiplier K.
type Outlier struct {
	Column string  `json:"column"`
	K      float64 `json:"k"`
}

// Join configures the orders/users left join.
type Join struct {
	// Validate is the expected cardinality (one_to_one, one_to_many,
	// many_to_one, many_to_many or the short forms 1:1, 1:m, m:1, m:m).
	Validate string `json:"validate"`

	// Suffixes disambiguate colliding non-key columns (left, right).
	Suffixes []string `json:"suffixes"`
}

// Storage selects the optional warehouse export.
type Storage struct {
	// Kind selects the backend: "sqlite", "postgres" or "mssql". Empty or
	// "none" disables the export.
	Kind string `json:"kind"`

	// DSN is the backend connection string.
	DSN string `json:"dsn"`

	// BatchSize bounds the rows per bulk copy.
	BatchSize int `json:"batch_size"`

	// Truncate empties destination tables before loading.
	Truncate bool `json:"truncate"`

	// TablePrefix is prepended to every exported table name, e.g.
	// "analytics." for a schema or "etl_" for a plain prefix.
	TablePrefix string `json:"table_prefix"`
}

// Enabled reports whether an export backend is configured.
func (s Storage) Enabled() bool {
	return s.Kind != "" && s.Kind != "none"
}

// Metrics selects the metrics backend.
type Metrics struct {
	// Backend is "none", "pushgateway" or "datadog".
	Backend        string `json:"backend"`
	PushgatewayURL string `json:"pushgateway_url"`
	DatadogAddr    string `json:"datadog_addr"`
	Namespace      string `json:"namespace"`
}

// Log configures the global logger.
type Log struct {
	Level  string `json:"level"`  // zerolog level name
	Format string `json:"format"` // "console" or "json"
}

// Default returns the pipeline used when no file is given, and the base that
// files are decoded on top of.
func Default() Pipeline {
	return Pipeline{
		Job:    "orders_analytics",
		Root:   ".",
		Inputs: Inputs{Orders: "orders.csv", Users: "users.csv"},
		Parser: Parser{Comma: ","},
		Transform: Transform{
			TimeColumn:   "created_at",
			MissingFlags: []string{"amount", "quantity"},
			Dedupe:       Dedupe{By: "created_at"},
			Winsorize:    Winsorize{Column: "amount", Lower: 0.01, Upper: 0.99},
			Outlier:      Outlier{Column: "amount", K: 1.2},
			Join:         Join{Validate: "many_to_one", Suffixes: []string{"_left", "_right"}},
		},
		Storage: Storage{BatchSize: 5000},
		Metrics: Metrics{Backend: "none"},
		Log:     Log{Level: "info", Format: "console"},
	}
}

// Decode reads a pipeline from JSON on top of Default(). Unknown fields are
// rejected so typos surface instead of silently keeping a default.
func Decode(b []byte) (Pipeline, error) {
	p := Default()
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return Pipeline{}, fmt.Errorf("config: decode: %w", err)
	}
	return p, nil
}

// Load reads and decodes the pipeline file at path. An empty path yields
// Default().
func Load(path string) (Pipeline, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Pipeline{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	p, err := Decode(b)
	if err != nil {
		return Pipeline{}, fmt.Errorf("%w (file %s)", err, path)
	}
	return p, nil
}
