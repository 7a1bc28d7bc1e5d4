package logger

import (
	"context"
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"
)

type ctxKey struct{}

var defaultLogger = charmlog.NewWithOptions(os.Stdout, charmlog.Options{
	ReportTimestamp: true,
	TimeFormat:      "15:04:05",
	Level:           charmlog.InfoLevel,
})

// Config holds the logger configuration
type Config struct {
	Level      charmlog.Level
	Output     io.Writer
	JSON       bool
	AddSource  bool
	TimeFormat string
}

// DefaultConfig returns the default logger configuration
func DefaultConfig() *Config {
	return &Config{
		Level:      charmlog.InfoLevel,
		Output:     os.Stdout,
		JSON:       false,
		AddSource:  false,
		TimeFormat: "15:04:05",
	}
}

// Init initializes the process-wide logger with the given configuration
func Init(cfg *Config) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	l := charmlog.NewWithOptions(cfg.Output, charmlog.Options{
		ReportCaller:    cfg.AddSource,
		ReportTimestamp: true,
		TimeFormat:      cfg.TimeFormat,
		Level:           cfg.Level,
	})
	if cfg.JSON {
		l.SetFormatter(charmlog.JSONFormatter)
	} else {
		l.SetFormatter(charmlog.TextFormatter)
		l.SetStyles(getDefaultStyles())
	}
	defaultLogger = l
}

// Setup configures the default logger from CLI flag values.
func Setup(logLevel string, logJSON, logSource bool) {
	var level charmlog.Level
	switch logLevel {
	case "debug":
		level = charmlog.DebugLevel
	case "info":
		level = charmlog.InfoLevel
	case "warn":
		level = charmlog.WarnLevel
	case "error":
		level = charmlog.ErrorLevel
	default:
		level = charmlog.InfoLevel
	}
	Init(&Config{
		Level:      level,
		Output:     os.Stdout,
		JSON:       logJSON,
		AddSource:  logSource,
		TimeFormat: "15:04:05",
	})
}

// NewForTests returns a silent logger for use in tests.
func NewForTests() *charmlog.Logger {
	return charmlog.NewWithOptions(io.Discard, charmlog.Options{Level: charmlog.FatalLevel})
}

// ContextWithLogger returns a context carrying the given logger.
func ContextWithLogger(ctx context.Context, l *charmlog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored in the context, or the default logger.
func FromContext(ctx context.Context) *charmlog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*charmlog.Logger); ok && l != nil {
			return l
		}
	}
	return defaultLogger
}

func Debug(msg string, args ...any) {
	defaultLogger.Debug(msg, args...)
}

func Info(msg string, args ...any) {
	defaultLogger.Info(msg, args...)
}

func Warn(msg string, args ...any) {
	defaultLogger.Warn(msg, args...)
}

func Error(msg string, args ...any) {
	defaultLogger.Error(msg, args...)
}

func With(args ...any) *charmlog.Logger {
	return defaultLogger.With(args...)
}
