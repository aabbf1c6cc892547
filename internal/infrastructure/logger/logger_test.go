package logger

import (
	"encoding/json"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/LavaJover/agro-escrow-service/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestSetupWritesJSONToFile(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(previous)
		log.SetOutput(os.Stderr)
	})

	path := filepath.Join(t.TempDir(), "escrow.log")
	logger, closer, err := Setup(config.LogConfig{
		LogLevel:   "warn",
		LogFormat:  "json",
		LogOutput:  path,
		MaxSizeMB:  1,
		MaxBackups: 1,
		MaxAgeDays: 1,
	})
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept", "escrow_id", "esc-1")
	require.NoError(t, closer.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(raw, &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "esc-1", entry["escrow_id"])
	assert.Equal(t, "escrow-service", entry["service"])
}

func TestSetupRejectsUnknownFormat(t *testing.T) {
	_, _, err := Setup(config.LogConfig{LogFormat: "xml"})
	assert.Error(t, err)
}
