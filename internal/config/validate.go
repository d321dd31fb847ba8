// This file adds a lightweight linter/validator for Pipeline values. It
// performs static checks over a decoded Pipeline and returns a list of issues
// (errors and warnings) that callers can surface in a CLI or tests.

package config

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"dataflow/internal/join"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Pipeline.
//
// Path is a dotted path into the config (e.g. "storage.kind",
// "transform.winsorize.lower"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidatePipeline performs static validation / linting of a Pipeline.
//
// It does not mutate the pipeline. Callers may decide whether to treat
// warnings as fatal or not.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, errorf("job", "job must not be empty; it is used for metrics labeling and identifying runs"))
	}
	if strings.TrimSpace(p.Root) == "" {
		issues = append(issues, errorf("root", "root must not be empty"))
	}
	issues = append(issues, validateInputs(p.Inputs)...)
	issues = append(issues, validateParser(p.Parser)...)
	issues = append(issues, validateTransform(p.Transform)...)
	issues = append(issues, validateStorage(p.Storage)...)
	issues = append(issues, validateMetrics(p.Metrics)...)
	issues = append(issues, validateLog(p.Log)...)

	if s := strings.TrimSpace(p.Schedule); s != "" {
		if _, err := cron.ParseStandard(s); err != nil {
			issues = append(issues, errorf("schedule", "invalid cron expression %q: %v", s, err))
		}
	}
	return issues
}

func errorf(path, format string, args ...any) Issue {
	return Issue{Severity: SeverityError, Path: path, Message: fmt.Sprintf(format, args...)}
}

func warnf(path, format string, args ...any) Issue {
	return Issue{Severity: SeverityWarning, Path: path, Message: fmt.Sprintf(format, args...)}
}

func validateInputs(in Inputs) []Issue {
	var issues []Issue
	if strings.TrimSpace(in.Orders) == "" {
		issues = append(issues, errorf("inputs.orders", "orders input file must not be empty"))
	}
	if strings.TrimSpace(in.Users) == "" {
		issues = append(issues, errorf("inputs.users", "users input file must not be empty"))
	}
	return issues
}

func validateParser(p Parser) []Issue {
	if utf8.RuneCountInString(p.Comma) > 1 {
		return []Issue{errorf("parser.comma", "delimiter must be a single character, got %q", p.Comma)}
	}
	if p.Comma == "\n" || p.Comma == "\r" || p.Comma == `"` {
		return []Issue{errorf("parser.comma", "invalid delimiter %q", p.Comma)}
	}
	return nil
}

func validateTransform(t Transform) []Issue {
	var issues []Issue

	if strings.TrimSpace(t.TimeColumn) == "" {
		issues = append(issues, errorf("transform.time_column", "time_column must not be empty"))
	}

	w := t.Winsorize
	if strings.TrimSpace(w.Column) == "" {
		issues = append(issues, errorf("transform.winsorize.column", "winsorize column must not be empty"))
	}
	if w.Lower < 0 || w.Upper > 1 || w.Lower > w.Upper {
		issues = append(issues, errorf("transform.winsorize", "quantiles must satisfy 0 <= lower <= upper <= 1, got lower=%g upper=%g", w.Lower, w.Upper))
	} else if w.Lower == 0 && w.Upper == 1 {
		issues = append(issues, warnf("transform.winsorize", "lower=0 and upper=1 leave the column unchanged"))
	}

	o := t.Outlier
	if strings.TrimSpace(o.Column) == "" {
		issues = append(issues, errorf("transform.outlier.column", "outlier column must not be empty"))
	}
	if o.K <= 0 {
		issues = append(issues, errorf("transform.outlier.k", "k must be positive, got %g", o.K))
	}

	if len(t.Dedupe.Keys) > 0 && strings.TrimSpace(t.Dedupe.By) == "" {
		issues = append(issues, errorf("transform.dedupe.by", "dedupe keys are set but no ordering column is given"))
	}

	if _, err := join.ParseValidate(t.Join.Validate); err != nil {
		issues = append(issues, errorf("transform.join.validate", "%v", err))
	}
	switch s := t.Join.Suffixes; {
	case len(s) == 0:
	case len(s) != 2:
		issues = append(issues, errorf("transform.join.suffixes", "want exactly two suffixes, got %d", len(s)))
	case s[0] == s[1]:
		issues = append(issues, errorf("transform.join.suffixes", "suffixes must differ, both are %q", s[0]))
	}

	return issues
}

func validateStorage(s Storage) []Issue {
	if !s.Enabled() {
		return nil
	}
	var issues []Issue

	known := map[string]struct{}{
		"postgres": {},
		"mssql":    {},
		"sqlite":   {},
	}
	if _, ok := known[s.Kind]; !ok {
		issues = append(issues, warnf("storage.kind", "unknown storage kind %q; ensure a matching backend is registered", s.Kind))
	}
	if strings.TrimSpace(s.DSN) == "" {
		issues = append(issues, errorf("storage.dsn", "storage.dsn must not be empty when storage.kind=%s", s.Kind))
	}
	if s.BatchSize <= 0 {
		issues = append(issues, warnf("storage.batch_size", "batch_size=%d; the default will be used", s.BatchSize))
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	switch m.Backend {
	case "", "none":
	case "pushgateway":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			return []Issue{errorf("metrics.pushgateway_url", "pushgateway backend requires a URL")}
		}
	case "datadog":
		if strings.TrimSpace(m.DatadogAddr) == "" {
			return []Issue{errorf("metrics.datadog_addr", "datadog backend requires an agent address")}
		}
	default:
		return []Issue{errorf("metrics.backend", "unknown metrics backend %q (want none, pushgateway or datadog)", m.Backend)}
	}
	return nil
}

func validateLog(l Log) []Issue {
	var issues []Issue
	if l.Level != "" {
		if _, err := zerolog.ParseLevel(strings.ToLower(l.Level)); err != nil {
			issues = append(issues, errorf("log.level", "%v", err))
		}
	}
	switch l.Format {
	case "", "console", "json":
	default:
		issues = append(issues, warnf("log.format", "unknown log format %q; console will be used", l.Format))
	}
	return issues
}
