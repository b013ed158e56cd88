package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sq3/hausfinanzierungs-dashboard/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logLevels = map[string]zapcore.Level{
	"debug":   zapcore.DebugLevel,
	"info":    zapcore.InfoLevel,
	"warn":    zapcore.WarnLevel,
	"warning": zapcore.WarnLevel,
	"error":   zapcore.ErrorLevel,
}

// initializeLogger builds the zap logger for a command. A non-empty
// levelOverride (the --log-level flag) replaces the configured level.
func initializeLogger(logging config.LoggingConfig, levelOverride string) (*zap.Logger, error) {
	levelName := firstNonEmpty(levelOverride, logging.Level, "info")
	level, ok := logLevels[levelName]
	if !ok {
		return nil, fmt.Errorf("invalid log level: %s", levelName)
	}

	var zapConfig zap.Config
	switch format := firstNonEmpty(logging.Format, "json"); format {
	case "json":
		zapConfig = zap.NewProductionConfig()
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)

	if path := logging.OutputFile; path != "" {
		if err := ensureLogFile(path); err != nil {
			return nil, err
		}
		zapConfig.OutputPaths = []string{path}
		zapConfig.ErrorOutputPaths = []string{path}
	}

	return zapConfig.Build()
}

// ensureLogFile creates the log file and its parent directory so zap can
// append to it.
func ensureLogFile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create log directory %s: %w", dir, err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return file.Close()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
