package logger

import (
	"fmt"
	"strings"

	"github.com/fadilmartias/cv-screener/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger. Production uses JSON output; everything else
// gets the human readable development encoder.
func New(appConfig *config.AppConfig) (*zap.Logger, error) {
	zapConfig := zap.NewDevelopmentConfig()
	if appConfig.IsProduction() {
		zapConfig = zap.NewProductionConfig()
	}

	if lvl := strings.TrimSpace(appConfig.LogLevel); lvl != "" {
		level, err := zapcore.ParseLevel(lvl)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", lvl, err)
		}
		zapConfig.Level = zap.NewAtomicLevelAt(level)
	}

	log, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return log.With(zap.String("app", appConfig.Name)), nil
}
