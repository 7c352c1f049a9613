package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zerolog.Disabled, ParseLevel("disabled"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
}

func TestLogDbOperation(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Output: &buf}).Component("sqlite")

	log.LogDbOperation("create_version", "status", 3*time.Millisecond, 1, nil)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "strata", entry["service"])
	assert.Equal(t, "sqlite", entry["component"])
	assert.Equal(t, "create_version", entry["operation"])
	assert.Equal(t, "status", entry["property"])
	assert.EqualValues(t, 1, entry["record_count"])
}

func TestLogDbOperationFailure(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Level: "error", Output: &buf}).LogDbOperation("history", "status", time.Millisecond, 0, errors.New("disk full"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "disk full", entry["error"])
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Level: "info", Output: &buf}).LogDbOperation("history", "status", time.Millisecond, 2, nil)
	assert.Empty(t, buf.String())

	Nop().Info().Msg("dropped")
}
