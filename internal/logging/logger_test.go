package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestNew_JSONFormatAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn", "json")

	logger.Info("hidden")
	logger.Warn("shown", "rows", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, float64(3), entry["rows"])
}

func TestFromContext_RequestIDAndStoredLogger(t *testing.T) {
	var buf bytes.Buffer
	base := New(&buf, "info", "json").With("user_id", "u-1")

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	ctx = NewContext(ctx, base)

	WithFields(ctx, "file", "liste.xlsx").Info("import started")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-42", entry["request_id"])
	assert.Equal(t, "u-1", entry["user_id"])
	assert.Equal(t, "liste.xlsx", entry["file"])
}

func TestFromContext_DefaultsWithoutValues(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))
}
