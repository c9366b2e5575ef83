// Package config centralizes bomstrip configuration.
//
// Tunables come from command-line flags whose defaults are seeded from
// environment variables, which may in turn come from a dotenv file. The list
// of files to clean is compiled in (DefaultFiles) and is deliberately not
// exposed as a flag or variable.
//
// Typical usage:
//
//	if _, err := config.LoadEnv(os.Getenv); err != nil { ... }
//	fs := flag.NewFlagSet("bomstrip", flag.ContinueOnError)
//	cfg, err := config.LoadFromArgs(fs, os.Getenv, os.Args[1:])
//
// Tests pass their own getenv to keep them hermetic:
//
//	fs := flag.NewFlagSet("test", flag.ContinueOnError)
//	getenv := func(k string) string { return testEnv[k] }
//	cfg, err := config.LoadFromArgs(fs, getenv, []string{"-dir=/tmp/plugin"})
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// DefaultFiles lists the newbase plugin sources that editors have been known
// to save with a UTF-8 BOM, relative to the plugin directory, in the order
// they are reported.
var DefaultFiles = []string{
	"src/Config.php",
	"src/Address.php",
	"src/Common.php",
	"src/CompanyData.php",
	"src/System.php",
	"src/Task.php",
	"src/TaskSignature.php",
	"src/Ajax/AddressHandler.php",
	"setup.php",
	"hook.php",
}

// Metrics backend names accepted by -metrics-backend.
const (
	MetricsNone        = "none"
	MetricsPushgateway = "pushgateway"
	MetricsDatadog     = "datadog"
)

// Config holds all process configuration. It is a plain value once loaded.
type Config struct {
	BaseDir string   // Directory the file list is resolved against.
	Files   []string // Relative paths, in report order.

	EnvFile  string // Dotenv file loaded before flags are seeded (BOMSTRIP_ENV_FILE).
	LogLevel string // zerolog level name.
	LogFile  string // Optional rotated log file.

	MetricsBackend string // none, pushgateway or datadog.
	PushgatewayURL string
	StatsdAddr     string
	Job            string // Metrics job name.

	ValidateOnly bool // Validate the configuration and exit.
}

// LoadFromArgs builds a Config by defining flags on fs, seeding each flag's
// default from getenv, and then parsing args.
//
// Precedence:
//  1. Environment values seed each flag's default.
//  2. Explicit CLI flags (in args) override the seeded defaults.
//
// An empty -dir falls back to the directory holding the running executable.
func LoadFromArgs(fs *flag.FlagSet, getenv func(string) string, args []string) (*Config, error) {
	cfg := &Config{Files: append([]string(nil), DefaultFiles...)}

	envOrDefaultFn := func(k, d string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return d
	}

	// The dotenv file has already been applied by the time flags exist, so it
	// is only recorded.
	cfg.EnvFile = EnvFilePath(getenv)

	fs.StringVar(&cfg.BaseDir, "dir", getenv("BOMSTRIP_DIR"), "Plugin directory holding the files (default: the executable's directory)")
	fs.StringVar(&cfg.LogLevel, "log-level", envOrDefaultFn("BOMSTRIP_LOG_LEVEL", "info"), "Log level: debug, info, warn, error")
	fs.StringVar(&cfg.LogFile, "log-file", getenv("BOMSTRIP_LOG_FILE"), "Also write logs to this file (rotated)")

	fs.StringVar(&cfg.MetricsBackend, "metrics-backend", envOrDefaultFn("METRICS_BACKEND", MetricsNone), "Metrics backend: none, pushgateway, datadog")
	fs.StringVar(&cfg.PushgatewayURL, "pushgateway-url", envOrDefaultFn("PUSHGATEWAY_URL", "http://localhost:9091"), "Pushgateway base URL")
	fs.StringVar(&cfg.StatsdAddr, "statsd-addr", envOrDefaultFn("DD_DOGSTATSD_ADDR", "127.0.0.1:8125"), "DogStatsD address")
	fs.StringVar(&cfg.Job, "job", envOrDefaultFn("BOMSTRIP_JOB", "bomstrip"), "Metrics job name")

	fs.BoolVar(&cfg.ValidateOnly, "validate", false, "Validate the configuration and exit")

	if args == nil {
		args = []string{}
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.BaseDir == "" {
		dir, err := ExecutableDir()
		if err != nil {
			return nil, fmt.Errorf("resolve base directory: %w", err)
		}
		cfg.BaseDir = dir
	}
	abs, err := filepath.Abs(cfg.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve base directory %s: %w", cfg.BaseDir, err)
	}
	cfg.BaseDir = abs

	return cfg, nil
}

// EnvFilePath returns the dotenv file named by BOMSTRIP_ENV_FILE, or ".env".
func EnvFilePath(getenv func(string) string) string {
	if p := getenv("BOMSTRIP_ENV_FILE"); p != "" {
		return p
	}
	return ".env"
}

// LoadEnv loads the dotenv file chosen by EnvFilePath into the process
// environment and returns its path. It must run before LoadFromArgs so the
// file's values can seed flag defaults.
func LoadEnv(getenv func(string) string) (string, error) {
	p := EnvFilePath(getenv)
	return p, LoadEnvFile(p)
}

// LoadEnvFile loads path into the process environment. A missing file is
// not an error; existing variables win over the file's values.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// ExecutableDir returns the directory containing the running binary with
// symlinks resolved.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}
