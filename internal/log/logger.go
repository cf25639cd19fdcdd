// Package log wraps slog with the field vocabulary and component tagging
// used across cambio. Every binary builds its logger here so log lines
// stay greppable by component and field name.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is a slog.Logger carrying a component attribute. The attribute
// is attached once at construction, not on every call.
type Logger struct {
	*slog.Logger
	component string
}

// Config controls handler construction.
type Config struct {
	Level     slog.Level
	Format    string // "text" or "json"
	Output    io.Writer
	Component string
}

// DefaultConfig is text logging at info level on stdout.
func DefaultConfig() Config {
	return Config{
		Level:     slog.LevelInfo,
		Format:    "text",
		Output:    os.Stdout,
		Component: ComponentApp,
	}
}

// FromEnv layers LOG_LEVEL (debug, info, warn, error) and LOG_FORMAT
// (text, json) over the defaults. Unknown values keep the default.
func FromEnv() Config {
	cfg := DefaultConfig()
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		cfg.Level = slog.LevelDebug
	case "warn":
		cfg.Level = slog.LevelWarn
	case "error":
		cfg.Level = slog.LevelError
	}
	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
		cfg.Format = "json"
	}
	return cfg
}

// New builds a Logger from the config.
func New(cfg Config) *Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: cfg.Level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	component := cfg.Component
	if component == "" {
		component = ComponentApp
	}
	return &Logger{
		Logger:    slog.New(handler).With(FieldComponent, component),
		component: component,
	}
}

// WithComponent returns a logger tagged with the given component.
// Tags accumulate, so derive from the root logger rather than chaining.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger:    l.Logger.With(FieldComponent, component),
		component: component,
	}
}

// With returns a logger with extra attributes attached to every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger:    l.Logger.With(args...),
		component: l.component,
	}
}

// Component reports which component this logger is tagged with.
func (l *Logger) Component() string {
	return l.component
}

// SetDefault routes the global slog calls through this logger's handler,
// so packages logging via slog directly share the same output format.
func SetDefault(l *Logger) {
	slog.SetDefault(l.Logger)
}
