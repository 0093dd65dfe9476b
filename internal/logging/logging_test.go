package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, data string) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(data), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestNew_ContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger, closer := New(Options{Level: "info", Stderr: &buf})
	defer closer.Close()

	ctx := ContextAttrs(context.Background(), slog.String("job_id", "j-1"))
	logger.InfoContext(ctx, "generation started", slog.String("event", "generate_start"))
	logger.With(slog.String("component", "runner")).InfoContext(ctx, "scoped")
	logger.Info("no context")
	logger.Debug("hidden")

	lines := decodeLines(t, buf.String())
	require.Len(t, lines, 3)
	assert.Equal(t, "j-1", lines[0]["job_id"])
	assert.Equal(t, "generate_start", lines[0]["event"])
	assert.Equal(t, "j-1", lines[1]["job_id"])
	assert.Equal(t, "runner", lines[1]["component"])
	assert.NotContains(t, lines[2], "job_id")
}

func TestContextAttrs_DoesNotShareParent(t *testing.T) {
	parent := ContextAttrs(context.Background(), slog.String("a", "1"))
	left := ContextAttrs(parent, slog.String("b", "2"))
	right := ContextAttrs(parent, slog.String("c", "3"))

	assert.Len(t, parent.Value(ctxKey), 1)
	assert.Equal(t, []slog.Attr{slog.String("a", "1"), slog.String("b", "2")}, left.Value(ctxKey))
	assert.Equal(t, []slog.Attr{slog.String("a", "1"), slog.String("c", "3")}, right.Value(ctxKey))
}

func TestNew_File(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "codegen.log")
	logger, closer := New(Options{Level: "debug", File: path, MaxSizeMB: 1, MaxBackups: 3, Stderr: &buf})

	logger.Debug("to both", slog.Int("total", 3))
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, buf.String(), string(data))
	assert.Equal(t, float64(3), decodeLines(t, string(data))[0]["total"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}
