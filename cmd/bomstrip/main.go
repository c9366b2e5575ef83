// Command bomstrip removes the UTF-8 byte-order mark from the newbase plugin
// sources that editors have been known to save with one.
//
// The files are resolved against the directory holding the binary (or -dir),
// rewritten in place when they start with EF BB BF, and a report is printed
// to stdout. A file that is missing or cannot be rewritten is reported and
// the run moves on; the exit status is 0 whenever the run completed.
//
// Example:
//
//	cd /var/www/glpi/plugins/newbase/tools && ./bomstrip -dir ..
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"bomstrip/internal/config"
	"bomstrip/internal/logging"
	"bomstrip/internal/metrics"
	"bomstrip/internal/metrics/datadog"
	"bomstrip/internal/metrics/prompush"
	"bomstrip/internal/report"
	"bomstrip/internal/stripper"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, os.Getenv))
}

// run is main without the process boundary, returning the exit status.
func run(args []string, stdout, stderr io.Writer, getenv func(string) string) int {
	if _, err := config.LoadEnv(getenv); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	fs := flag.NewFlagSet("bomstrip", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfg, err := config.LoadFromArgs(fs, getenv, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	issues := config.Validate(*cfg)
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		fmt.Fprintf(stderr, "configuration is invalid (dir=%s)\n", cfg.BaseDir)
		return 1
	}
	if cfg.ValidateOnly {
		fmt.Fprintf(stderr, "configuration is valid (dir=%s)\n", cfg.BaseDir)
		return 0
	}

	log, closeLog, err := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
		Console: stderr,
		RunID:   uuid.NewString(),
	})
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	defer closeLog.Close()

	if flush := setupMetrics(cfg, log); flush != nil {
		defer flush()
	}

	log.Debug().
		Str("dir", cfg.BaseDir).
		Str("env_file", cfg.EnvFile).
		Strs("files", cfg.Files).
		Msg("starting bom cleanup")

	rep := stripper.New(log, cfg.Job).Run(cfg.BaseDir, cfg.Files)

	if err := report.Write(stdout, rep); err != nil {
		log.Error().Err(err).Msg("write report")
	}
	return 0
}

// setupMetrics installs the configured backend and returns its flush
// function, or nil when metrics are disabled.
func setupMetrics(cfg *config.Config, log zerolog.Logger) func() {
	var (
		b   metrics.Backend
		err error
	)

	switch cfg.MetricsBackend {
	case config.MetricsPushgateway:
		b, err = newPushBackend(cfg.Job, cfg.PushgatewayURL)
	case config.MetricsDatadog:
		b, err = newDatadogBackend(cfg.StatsdAddr)
	case "", config.MetricsNone:
		log.Debug().Msg("metrics: disabled")
		return nil
	default:
		log.Warn().Str("backend", cfg.MetricsBackend).Msg("metrics: unknown backend; metrics disabled")
		return nil
	}
	if err != nil {
		log.Warn().Err(err).Str("backend", cfg.MetricsBackend).Msg("metrics: init failed; using nop")
		return nil
	}

	log.Debug().Str("backend", cfg.MetricsBackend).Str("job", cfg.Job).Msg("metrics: enabled")
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Warn().Err(err).Msg("metrics: flush error")
		}
	}
}

// The constructors return concrete pointers; wrapping them keeps a failed
// construction from becoming a non-nil interface holding a nil pointer.
func newPushBackend(job, url string) (metrics.Backend, error) {
	b, err := prompush.NewBackend(job, url)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func newDatadogBackend(addr string) (metrics.Backend, error) {
	b, err := datadog.NewBackend(datadog.Config{Addr: addr, GlobalTags: []string{"service:bomstrip"}})
	if err != nil {
		return nil, err
	}
	return b, nil
}
