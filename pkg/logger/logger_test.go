package logger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(&Config{Level: "chatty", Output: "stdout"})
	require.Error(t, err)
}

func TestFileOutputWritesStructuredFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sentinel.log")
	l, err := New(&Config{Level: "debug", Format: "json", Output: path, MaxSizeMB: 1})
	require.NoError(t, err)

	l.Info("watch.sweep reminder",
		String("symbol", "BTC"),
		Int("remaining_s", 200),
		Float64("strength", 71.5),
		Error(errors.New("boom")),
	)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(b)
	assert.Contains(t, out, `"symbol":"BTC"`)
	assert.Contains(t, out, `"remaining_s":200`)
	assert.Contains(t, out, `"error":"boom"`)
	assert.Contains(t, out, `"message":"watch.sweep reminder"`)
}

func TestLevelFiltersDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sentinel.log")
	l, err := New(&Config{Level: "warn", Format: "json", Output: path})
	require.NoError(t, err)

	l.Debug("hidden")
	l.Warn("shown")

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "hidden")
	assert.Contains(t, string(b), "shown")
}
