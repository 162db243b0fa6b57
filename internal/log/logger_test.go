package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/chmirad/internal/download"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "info", JSON: true, Output: &buf})

	l.Debug().Msg("hidden")
	l.Info().Str("product", "maxz").Msg("visible")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "visible", entry["message"])
	assert.Equal(t, "maxz", entry["product"])
	assert.Equal(t, "chmirad", entry["service"])
}

func TestNew_BadLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "loud", JSON: true, Output: &buf})

	l.Debug().Msg("hidden")
	l.Info().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Output: &buf})
	l.Info().Msg("hello console")

	assert.Contains(t, buf.String(), "hello console")
	assert.False(t, json.Valid(buf.Bytes()), "console output should not be JSON")
}

func TestProgressHandler(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "debug", JSON: true, Output: &buf})
	handle := ProgressHandler(l)

	o := download.Outcome{
		Kind:    download.Failed,
		Product: "maxz",
		Time:    time.Date(2025, 1, 7, 8, 20, 0, 0, time.UTC),
		URL:     "https://example.test/maxz.hdf",
		Err:     &download.StatusError{URL: "https://example.test/maxz.hdf", Code: 404},
	}
	handle(download.ProgressEvent{Message: "Error downloading", Level: download.LevelError, Outcome: &o})
	handle(download.ProgressEvent{Message: "Skipping existing", Level: download.LevelVerbose})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var failed map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &failed))
	assert.Equal(t, "error", failed["level"])
	assert.Equal(t, "failed", failed["outcome"])
	assert.Equal(t, "maxz", failed["product"])
	assert.Contains(t, failed["cause"], "404")

	var verbose map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &verbose))
	assert.Equal(t, "debug", verbose["level"])
}
