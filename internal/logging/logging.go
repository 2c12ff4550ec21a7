// Package logging builds the application logger on top of logrus with
// size-based rotation of the log file.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"raporbot/internal/config"
)

// NewLogger creates a configured logrus logger. Output goes to stdout and,
// outside tests, to a rotated file under the configured logs directory.
func NewLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(string(cfg.LogLevel))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.IsProduction() {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if cfg.IsTest() {
		logger.SetOutput(io.Discard)
		return logger
	}

	if cfg.LogsDirectory != "" {
		rotated := &lumberjack.Logger{
			Filename:   filepath.Join(cfg.LogsDirectory, cfg.AppName+".log"),
			MaxSize:    cfg.LogsMaxSizeInMb,
			MaxBackups: cfg.LogsMaxBackups,
			MaxAge:     cfg.LogsMaxAgeInDays,
		}
		logger.SetOutput(io.MultiWriter(os.Stdout, rotated))
	} else {
		logger.SetOutput(os.Stdout)
	}

	return logger
}
