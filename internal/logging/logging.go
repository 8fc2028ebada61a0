// Package logging routes the standard logger to stderr and an optional
// rotating file.
package logging

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config describes where log output goes.
type Config struct {
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Setup configures the standard logger and returns a function that closes
// the log file, if any.
func Setup(cfg Config) (func() error, error) {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if cfg.File == "" {
		log.SetOutput(os.Stderr)
		return func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		log.SetOutput(os.Stderr)
		return nil, err
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, rotator))
	log.Printf("[logging] writing to %s", cfg.File)

	return func() error {
		log.SetOutput(os.Stderr)
		return rotator.Close()
	}, nil
}
