package logging

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(Config{Level: "debug", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	assert.NotNil(t, logger.GetSlog())
	assert.NotNil(t, logger.GetZap())
}

func TestNewLoggerRejectsUnknownFormat(t *testing.T) {
	_, err := NewLogger(Config{Level: "info", Format: "xml", Output: "stderr"})
	assert.Error(t, err)
}

func TestParseLevels(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseSlogLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseSlogLevel("warn"))
	assert.Equal(t, slog.LevelInfo, parseSlogLevel("verbose"))
	assert.Equal(t, "error", parseZapLevel("error").String())
}

func TestNopLoggerHelpers(t *testing.T) {
	logger := NewNopLogger().WithRunID(context.Background(), "run-1")
	ctx := context.Background()

	assert.NotPanics(t, func() {
		logger.LogPhase(ctx, "index", time.Millisecond)
		logger.LogGeneration(ctx, 3, 10.5, 20.25, 40, time.Second)
		logger.LogAssemblyRetry(ctx, 3, 7, 1000)
		logger.LogAssemblyExhausted(ctx, 3, 7, 5000)
		logger.LogRunComplete(ctx, 10, 0, time.Second, true)
	})
	assert.NoError(t, logger.Sync())
}
