package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelError, ParseLogLevel("error"))
	assert.Equal(t, LogLevelWarn, ParseLogLevel("WARN"))
	assert.Equal(t, LogLevelDebug, ParseLogLevel(" debug "))
	assert.Equal(t, LogLevelTrace, ParseLogLevel("TRACE"))
	assert.Equal(t, LogLevelInfo, ParseLogLevel(""))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("verbose"))
}

func TestLogger_RespectsLevel(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewLoggerWithZap(LogLevelWarn, zap.New(core))

	logger.Info("hidden %d", 1)
	logger.Debug("hidden")
	logger.Warn("column %s skipped", "flag")
	logger.Error("contract broken")

	entries := logs.AllUntimed()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
		assert.Equal(t, "column flag skipped", entries[0].Message)
		assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	}
}

func TestLogger_TraceGoesOutAsDebug(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewLoggerWithZap(LogLevelTrace, zap.New(core)).Named("analysis")

	logger.Trace("step %d", 3)

	entries := logs.AllUntimed()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
		assert.Equal(t, "[TRACE] step 3", entries[0].Message)
		assert.Equal(t, "analysis", entries[0].LoggerName)
	}
}

func TestLogger_NilZapIsSafe(t *testing.T) {
	logger := NewLoggerWithZap(LogLevelTrace, nil)
	logger.Error("dropped")
	assert.Equal(t, LogLevelTrace, logger.GetLevel())
}
