package config

// This file adds a lightweight linter for Config values. It performs static
// checks and returns a list of issues (errors and warnings) that the CLI
// prints before touching any file.

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced to the operator but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding.
//
// Path names the offending setting (e.g. "dir", "files[3]").
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

// HasErrors reports whether any issue has error severity.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate performs static validation of cfg. It does not mutate cfg.
// Missing files are not issues: they are reported per file during the run.
func Validate(cfg Config) []Issue {
	var issues []Issue

	issues = append(issues, validateBaseDir(cfg.BaseDir)...)
	issues = append(issues, validateFiles(cfg.Files)...)
	issues = append(issues, validateLogging(cfg)...)
	issues = append(issues, validateMetrics(cfg)...)

	return issues
}

func validateBaseDir(dir string) []Issue {
	if strings.TrimSpace(dir) == "" {
		return []Issue{{
			Severity: SeverityError,
			Path:     "dir",
			Message:  "base directory must not be empty",
		}}
	}
	fi, err := os.Stat(dir)
	if err != nil {
		return []Issue{{
			Severity: SeverityError,
			Path:     "dir",
			Message:  fmt.Sprintf("cannot stat base directory: %v", err),
		}}
	}
	if !fi.IsDir() {
		return []Issue{{
			Severity: SeverityError,
			Path:     "dir",
			Message:  fmt.Sprintf("%s is not a directory", dir),
		}}
	}
	return nil
}

func validateFiles(files []string) []Issue {
	var issues []Issue

	if len(files) == 0 {
		return []Issue{{
			Severity: SeverityError,
			Path:     "files",
			Message:  "file list must not be empty",
		}}
	}

	seen := make(map[string]int, len(files))
	for i, f := range files {
		path := fmt.Sprintf("files[%d]", i)

		if strings.TrimSpace(f) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path,
				Message:  "entry must not be empty",
			})
			continue
		}
		native := filepath.FromSlash(f)
		if filepath.IsAbs(native) {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path,
				Message:  fmt.Sprintf("%q must be relative to the base directory", f),
			})
			continue
		}
		if clean := filepath.Clean(native); clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     path,
				Message:  fmt.Sprintf("%q resolves outside the base directory", f),
			})
		}
		if j, dup := seen[f]; dup {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     path,
				Message:  fmt.Sprintf("%q duplicates files[%d]; it will be reported twice", f, j),
			})
			continue
		}
		seen[f] = i
	}
	return issues
}

func validateLogging(cfg Config) []Issue {
	if _, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel)); err != nil {
		return []Issue{{
			Severity: SeverityError,
			Path:     "log-level",
			Message:  fmt.Sprintf("unknown log level %q", cfg.LogLevel),
		}}
	}
	return nil
}

func validateMetrics(cfg Config) []Issue {
	switch cfg.MetricsBackend {
	case "", MetricsNone:
		return nil
	case MetricsPushgateway:
		if strings.TrimSpace(cfg.PushgatewayURL) == "" {
			return []Issue{{
				Severity: SeverityError,
				Path:     "pushgateway-url",
				Message:  "pushgateway backend requires a URL",
			}}
		}
	case MetricsDatadog:
		if strings.TrimSpace(cfg.StatsdAddr) == "" {
			return []Issue{{
				Severity: SeverityError,
				Path:     "statsd-addr",
				Message:  "datadog backend requires a DogStatsD address",
			}}
		}
	default:
		// Unknown backends fall back to no metrics rather than blocking the cleanup.
		return []Issue{{
			Severity: SeverityWarning,
			Path:     "metrics-backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; metrics disabled", cfg.MetricsBackend),
		}}
	}
	if strings.TrimSpace(cfg.Job) == "" {
		return []Issue{{
			Severity: SeverityWarning,
			Path:     "job",
			Message:  "job is empty; the backend default will be used",
		}}
	}
	return nil
}
