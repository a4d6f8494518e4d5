// Package logging builds structured loggers.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/robfig/cron/v3"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config configures logger
type Config struct {
	// Level is one of DEBUG, INFO, WARN, ERROR
	Level string `yaml:"level"`
	// Filename is log file path; empty or "-" logs to stderr
	Filename string `yaml:"filename"`
	// Append appends to an existing log file instead of rotating it on start
	Append bool `yaml:"append"`
	// MaxSize is log file max size in MB
	MaxSize int `yaml:"max_size"`
	// MaxBackups is number of backup files
	MaxBackups int `yaml:"max_backups"`
	// MaxAge is number of days to keep backup files
	MaxAge int `yaml:"max_age"`
	// Compress compresses backup files
	Compress bool `yaml:"compress"`
	// RotateSchedule is cron schedule of log file rotation, e.g. "@daily"
	RotateSchedule string `yaml:"rotate_schedule"`
}

// ParseLevel parses log level name
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToUpper(name) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "", "INFO":
		return slog.LevelInfo, nil
	case "WARN":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %q", name)
	}
}

type fileCloser struct {
	lj   *lumberjack.Logger
	cron *cron.Cron
}

func (c *fileCloser) Close() error {
	if c.cron != nil {
		<-c.cron.Stop().Done()
	}

	return c.lj.Close()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New creates new text logger from cfg.
// It returns logger and closer which releases the log file.
func New(cfg Config) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Filename == "" || cfg.Filename == "-" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nopCloser{}, nil
	}

	lj := &lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
		LocalTime:  true,
	}

	if !cfg.Append {
		if err := lj.Rotate(); err != nil {
			return nil, nil, fmt.Errorf("failed to rotate log file: %w", err)
		}
	}

	c := &fileCloser{lj: lj}
	if cfg.RotateSchedule != "" {
		c.cron = cron.New()
		if _, err := c.cron.AddFunc(cfg.RotateSchedule, func() { lj.Rotate() }); err != nil {
			lj.Close()
			return nil, nil, fmt.Errorf("invalid log rotate schedule %q: %w", cfg.RotateSchedule, err)
		}
		c.cron.Start()
	}

	return slog.New(slog.NewTextHandler(lj, opts)), c, nil
}

// Discard returns logger which drops all records
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
