package config

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// TestLoadFromArgs_EnvDefaultsAndFlags validates the precedence model:
// environment seeds defaults, explicit flags override env.
func TestLoadFromArgs_EnvDefaultsAndFlags(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	env := map[string]string{
		"BOMSTRIP_DIR":       dir,
		"BOMSTRIP_LOG_LEVEL": "debug",
		"METRICS_BACKEND":    "pushgateway",
		"PUSHGATEWAY_URL":    "http://gw:9091",
	}
	getenv := func(k string) string { return env[k] }

	cfg, err := LoadFromArgs(newFlagSet(), getenv, []string{"-job=newbase", "-log-level=warn"})
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.BaseDir)
	assert.Equal(t, "warn", cfg.LogLevel, "flag should override env")
	assert.Equal(t, MetricsPushgateway, cfg.MetricsBackend)
	assert.Equal(t, "http://gw:9091", cfg.PushgatewayURL)
	assert.Equal(t, "newbase", cfg.Job)
	assert.Equal(t, ".env", cfg.EnvFile)
}

func TestLoadFromArgs_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFromArgs(newFlagSet(), func(string) string { return "" }, nil)
	require.NoError(t, err)

	exeDir, err := ExecutableDir()
	require.NoError(t, err)

	assert.Equal(t, exeDir, cfg.BaseDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, MetricsNone, cfg.MetricsBackend)
	assert.Equal(t, "bomstrip", cfg.Job)
	assert.False(t, cfg.ValidateOnly)
	assert.Equal(t, DefaultFiles, cfg.Files)
}

func TestLoadFromArgs_RelativeDirIsMadeAbsolute(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFromArgs(newFlagSet(), func(string) string { return "" }, []string{"-dir=plugins/newbase"})
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(cfg.BaseDir), "BaseDir %q should be absolute", cfg.BaseDir)
	assert.Equal(t, "newbase", filepath.Base(cfg.BaseDir))
}

// The file list cannot be changed from the command line.
func TestLoadFromArgs_FileListIsNotAFlag(t *testing.T) {
	t.Parallel()

	_, err := LoadFromArgs(newFlagSet(), func(string) string { return "" }, []string{"-files=a.php"})
	require.Error(t, err)
}

func TestLoadFromArgs_FilesIsACopy(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFromArgs(newFlagSet(), func(string) string { return "" }, []string{"-dir=" + t.TempDir()})
	require.NoError(t, err)

	cfg.Files[0] = "changed.php"
	assert.Equal(t, "src/Config.php", DefaultFiles[0])
}

func TestDefaultFiles(t *testing.T) {
	t.Parallel()

	require.Len(t, DefaultFiles, 10)
	assert.Equal(t, "src/Config.php", DefaultFiles[0])
	assert.Equal(t, "src/Ajax/AddressHandler.php", DefaultFiles[7])
	assert.Equal(t, "hook.php", DefaultFiles[len(DefaultFiles)-1])
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file is ignored", func(t *testing.T) {
		require.NoError(t, LoadEnvFile(filepath.Join(dir, "absent.env")))
	})

	t.Run("empty path is ignored", func(t *testing.T) {
		require.NoError(t, LoadEnvFile(""))
	})

	t.Run("values do not override the environment", func(t *testing.T) {
		p := filepath.Join(dir, "test.env")
		content := "BOMSTRIP_TEST_FROM_FILE=file\nBOMSTRIP_TEST_PRESET=file\n"
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))

		t.Setenv("BOMSTRIP_TEST_PRESET", "env")
		t.Setenv("BOMSTRIP_TEST_FROM_FILE", "")
		require.NoError(t, os.Unsetenv("BOMSTRIP_TEST_FROM_FILE"))

		require.NoError(t, LoadEnvFile(p))
		assert.Equal(t, "file", os.Getenv("BOMSTRIP_TEST_FROM_FILE"))
		assert.Equal(t, "env", os.Getenv("BOMSTRIP_TEST_PRESET"))
	})
}

func TestEnvFilePath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ".env", EnvFilePath(func(string) string { return "" }))
	assert.Equal(t, "/etc/bomstrip.env", EnvFilePath(func(k string) string {
		if k == "BOMSTRIP_ENV_FILE" {
			return "/etc/bomstrip.env"
		}
		return ""
	}))
}

func TestLoadEnv(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bomstrip.env")
	require.NoError(t, os.WriteFile(p, []byte("BOMSTRIP_TEST_LOAD_ENV=loaded\n"), 0o644))

	t.Setenv("BOMSTRIP_TEST_LOAD_ENV", "")
	require.NoError(t, os.Unsetenv("BOMSTRIP_TEST_LOAD_ENV"))

	getenv := func(k string) string {
		if k == "BOMSTRIP_ENV_FILE" {
			return p
		}
		return ""
	}

	got, err := LoadEnv(getenv)
	require.NoError(t, err)
	assert.Equal(t, p, got)
	assert.Equal(t, "loaded", os.Getenv("BOMSTRIP_TEST_LOAD_ENV"))

	cfg, err := LoadFromArgs(newFlagSet(), getenv, []string{"-dir", t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, p, cfg.EnvFile, "the loaded file is the one recorded")
}
