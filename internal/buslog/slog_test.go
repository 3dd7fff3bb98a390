package buslog

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(slog.LevelWarn, &buf)

	logger.Debug("hidden")
	logger.Info("also hidden")
	logger.Warn("shown", "conn", 7)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	require.Contains(t, out, "shown")
	assert.Contains(t, out, "conn=7")
}

func TestColoredHandlerWithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := New(slog.LevelDebug, &buf).With("broker", "b1").WithGroup("conn")

	logger.Info("hello")

	assert.True(t, strings.Contains(buf.String(), "broker=b1"))
}

func TestColoredHandlerGroupQualifiesOnlyLaterAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := New(slog.LevelDebug, &buf).With("broker", "b1").WithGroup("conn")

	logger.Info("hello", "id", 7)

	out := buf.String()
	require.Contains(t, out, "broker=b1")
	require.Contains(t, out, "conn.id=7")
	assert.NotContains(t, out, "conn.broker")
}
