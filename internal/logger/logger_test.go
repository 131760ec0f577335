package logger

import (
	"testing"

	"github.com/fadilmartias/cv-screener/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewHonoursLogLevel(t *testing.T) {
	log, err := New(&config.AppConfig{Name: "test", Env: "production", LogLevel: "warn"})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
}

func TestNewDevelopmentDefaultsToDebug(t *testing.T) {
	log, err := New(&config.AppConfig{Name: "test", Env: "development"})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(&config.AppConfig{Name: "test", LogLevel: "chatty"})
	assert.Error(t, err)
}
