package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds a production logger for env "production" and a development
// logger otherwise. A non-empty level overrides the default level.
func New(env, level string) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if env == "production" {
		cfg = zap.NewProductionConfig()
	}

	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		cfg.Level = lvl
	}

	return cfg.Build()
}
