package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ConsoleAndLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, closer, err := New(Options{Level: "warn", Console: &buf, RunID: "run-1"})
	require.NoError(t, err)
	defer closer.Close()

	log.Info().Msg("hidden")
	log.Warn().Str("path", "setup.php").Msg("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
	assert.Contains(t, out, "setup.php")
	assert.Contains(t, out, "run-1")
}

func TestNew_InvalidLevel(t *testing.T) {
	t.Parallel()

	_, closer, err := New(Options{Level: "chatty"})
	require.Error(t, err)
	require.NotNil(t, closer)
	assert.NoError(t, closer.Close())
}

func TestNew_FileSink(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bomstrip.log")
	var console bytes.Buffer

	log, closer, err := New(Options{Level: "debug", File: path, Console: &console})
	require.NoError(t, err)

	log.Debug().Str("outcome", "removed").Msg("file processed")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	line := strings.TrimSpace(string(data))
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry), "log file line %q is not JSON", line)
	assert.Equal(t, "removed", entry["outcome"])
	assert.Equal(t, "debug", entry["level"])
	assert.Contains(t, console.String(), "file processed")
}

func TestNew_NoSinks(t *testing.T) {
	t.Parallel()

	log, closer, err := New(Options{})
	require.NoError(t, err)
	defer closer.Close()
	log.Info().Msg("discarded")
}
