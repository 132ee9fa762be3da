// Package logger builds the application's zap logger from configuration.
package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nhle/daybook/internal/model"
)

// New creates a logger from cfg: console encoding for "console", JSON for
// "json". Output goes to cfg.File when set and to stderr otherwise.
func New(cfg model.LogConfig) (*zap.Logger, error) {
	var config zap.Config
	if cfg.Format == "json" {
		config = zap.NewProductionConfig()
		config.Encoding = "json"
		config.EncoderConfig = zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		}
	} else {
		config = zap.NewDevelopmentConfig()
		config.DisableStacktrace = true
	}

	if cfg.Debug {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
		config.OutputPaths = []string{cfg.File}
		config.ErrorOutputPaths = []string{cfg.File}
	}

	log, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return log.Named("daybook"), nil
}

// ForTUI is New with output redirected to a file so log lines never land
// on the terminal the board is drawn on. An empty cfg.File defaults to
// daybook.log next to the config file.
func ForTUI(cfg model.LogConfig) (*zap.Logger, error) {
	if cfg.File == "" {
		cfg.File = filepath.Join(model.DefaultConfigDir(), "daybook.log")
	}
	return New(cfg)
}

// Sync flushes any buffered log entries. It's safe to call Sync() multiple
// times.
func Sync(log *zap.Logger) error {
	if log == nil {
		return nil
	}
	return log.Sync()
}
