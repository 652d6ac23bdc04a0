package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/pasteboard/internal/logging"
)

func TestParseFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, logging.FormatText, logging.ParseFormat("tint"))
	assert.Equal(t, logging.FormatJSON, logging.ParseFormat("JSON"))
	assert.Equal(t, logging.FormatAuto, logging.ParseFormat(""))
	assert.Equal(t, logging.FormatAuto, logging.ParseFormat("xml"))
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want slog.Level
		ok   bool
	}{
		{"debug", slog.LevelDebug, true},
		{"WARN", slog.LevelWarn, true},
		{"warning", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"", slog.LevelInfo, false},
		{"loud", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		got, ok := logging.ParseLevel(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}

	quiet, ok := logging.ParseLevel("quiet")
	assert.True(t, ok)
	assert.Greater(t, quiet, slog.LevelError)
}

func TestNewHandler_JSONWhenNotTTY(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(logging.NewHandler(&buf, logging.FormatAuto, slog.LevelInfo))
	log.Debug("hidden")
	log.Info("clipboard write", "formats", 2)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "clipboard write", rec["msg"])
	assert.EqualValues(t, 2, rec["formats"])
}

func TestNewHandler_Text(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	slog.New(logging.NewHandler(&buf, logging.FormatText, slog.LevelDebug)).Debug("clipboard clear")
	assert.Contains(t, buf.String(), "clipboard clear")
	assert.False(t, json.Valid(buf.Bytes()))
}
