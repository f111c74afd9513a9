package log

import (
	"testing"

	"github.com/kataras/golog"
	"github.com/stretchr/testify/assert"
)

func TestNewGologLogger(t *testing.T) {
	logger := NewGologLogger(golog.New())

	assert.NotNil(t, logger)
	assert.Equal(t, LevelInfo, logger.GetLevel())
}

func TestGologLoggerLevelControl(t *testing.T) {
	logger := NewGologLogger(golog.New())

	logger.SetLevel(LevelDebug)
	assert.Equal(t, LevelDebug, logger.GetLevel())

	logger.SetLevel(LevelError)
	assert.Equal(t, LevelError, logger.GetLevel())

	logger.SetLevel(LevelNone)
	assert.Equal(t, LevelNone, logger.GetLevel())
}

func TestGologLoggerLogging(t *testing.T) {
	logger := NewGologLogger(golog.New())
	logger.SetLevel(LevelDebug)

	// Must not panic at any level or format.
	logger.Debug("debug: %s", "test")
	logger.Info("info: %d", 42)
	logger.Warn("warn: %v", map[string]string{"key": "value"})
	logger.Error("error: %f", 3.14)

	logger.SetLevel(LevelError)
	logger.Debug("filtered")
	logger.Info("filtered")
	logger.Warn("filtered")
	logger.Error("logged")
}

func TestGologLoggerImplementsLogger(t *testing.T) {
	var _ Logger = (*GologLogger)(nil)
}
