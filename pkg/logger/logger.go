// Package logger provides structured logging for the reconciliation pipeline.
//
// It wraps logrus behind a small Logger interface so packages depend on the
// contract rather than the implementation. A global logger is initialized
// with sensible defaults and can be replaced once configuration is loaded.
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger defines the logging contract used throughout the pipeline.
type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
	WithField(key string, value interface{}) Logger
	WithFields(fields Fields) Logger
	WithError(err error) Logger
	WithComponent(component string) Logger
}

// Fields is a map of key-value pairs for structured logging.
type Fields map[string]interface{}

// Level represents a log verbosity level.
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// Format represents a log output format.
type Format string

const (
	JSONFormat Format = "json"
	TextFormat Format = "text"
)

// Config holds logger configuration.
type Config struct {
	Level  Level     `json:"level"`
	Format Format    `json:"format"`
	Output io.Writer `json:"-"`
}

// DefaultConfig returns the default logger configuration: info-level text
// logging to stderr.
func DefaultConfig() *Config {
	return &Config{
		Level:  InfoLevel,
		Format: TextFormat,
		Output: os.Stderr,
	}
}

// DebugConfig returns a configuration suitable for verbose runs.
func DebugConfig() *Config {
	return &Config{
		Level:  DebugLevel,
		Format: TextFormat,
		Output: os.Stderr,
	}
}

// logrusLogger adapts a logrus entry to the Logger interface.
type logrusLogger struct {
	entry *logrus.Entry
}

// NewLogger creates a Logger from the given configuration.
func NewLogger(config *Config) (Logger, error) {
	if config == nil {
		config = DefaultConfig()
	}

	level, err := logrus.ParseLevel(string(config.Level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %s: %w", config.Level, err)
	}

	base := logrus.New()
	base.SetLevel(level)
	if config.Output != nil {
		base.SetOutput(config.Output)
	} else {
		base.SetOutput(os.Stderr)
	}

	switch config.Format {
	case JSONFormat:
		base.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	default:
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return &logrusLogger{entry: logrus.NewEntry(base)}, nil
}

func (l *logrusLogger) Debug(args ...interface{})                 { l.entry.Debug(args...) }
func (l *logrusLogger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *logrusLogger) Info(args ...interface{})                  { l.entry.Info(args...) }
func (l *logrusLogger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *logrusLogger) Warn(args ...interface{})                  { l.entry.Warn(args...) }
func (l *logrusLogger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *logrusLogger) Error(args ...interface{})                 { l.entry.Error(args...) }
func (l *logrusLogger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }

func (l *logrusLogger) WithField(key string, value interface{}) Logger {
	return &logrusLogger{entry: l.entry.WithField(key, value)}
}

func (l *logrusLogger) WithFields(fields Fields) Logger {
	return &logrusLogger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

func (l *logrusLogger) WithError(err error) Logger {
	return &logrusLogger{entry: l.entry.WithError(err)}
}

func (l *logrusLogger) WithComponent(component string) Logger {
	return l.WithField("component", component)
}

var globalLogger Logger

func init() {
	var err error
	globalLogger, err = NewLogger(DefaultConfig())
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize logger")
	}
}

// SetGlobalLogger replaces the global logger instance.
func SetGlobalLogger(logger Logger) {
	globalLogger = logger
}

// GetGlobalLogger returns the global logger instance.
func GetGlobalLogger() Logger {
	return globalLogger
}
