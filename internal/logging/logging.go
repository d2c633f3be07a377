package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// Config holds logging configuration.
type Config struct {
	Level       string            `yaml:"level"`
	Format      string            `yaml:"format"` // "json" or "console"
	OutputPath  string            `yaml:"output_path,omitempty"`
	Fields      map[string]string `yaml:"fields,omitempty"`
	Development bool              `yaml:"development,omitempty"`
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "console",
	}
}

// New creates a logger from config. An unknown level falls back to info.
func New(config Config) (*zap.Logger, error) {
	var zapConfig zap.Config

	if config.Development {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
	}

	level, err := zap.ParseAtomicLevel(config.Level)
	if err != nil {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	zapConfig.Level = level

	if config.Format == "console" {
		zapConfig.Encoding = "console"
	} else {
		zapConfig.Encoding = "json"
	}

	if config.OutputPath != "" {
		zapConfig.OutputPaths = []string{config.OutputPath}
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	fields := make([]zap.Field, 0, len(config.Fields))
	for k, v := range config.Fields {
		fields = append(fields, zap.String(k, v))
	}

	return logger.With(fields...), nil
}
