// Package logging provides structured logging for the CLI shell and the
// client core.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/orbit-drive/orbit/internal/constants"
)

// Options configures a Logger.
type Options struct {
	// Component is attached to every entry as the "component" field.
	Component string

	// Console is where human-readable output goes. nil means stderr.
	Console io.Writer

	// File enables rotating JSON file output when non-empty.
	File string
}

// Logger wraps zerolog with an optional rotating file sink.
type Logger struct {
	zlog   zerolog.Logger
	output io.Writer
	file   *lumberjack.Logger
}

// NewLogger creates a logger for the given component.
func NewLogger(opts Options) *Logger {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	var output io.Writer = zerolog.ConsoleWriter{
		Out:        console,
		TimeFormat: constants.LogTimeFormat,
	}

	var file *lumberjack.Logger
	if opts.File != "" {
		file = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    constants.LogFileMaxSizeMB,
			MaxBackups: constants.LogFileMaxBackups,
			MaxAge:     constants.LogFileMaxAgeDays,
			Compress:   true,
		}
		output = zerolog.MultiLevelWriter(output, file)
	}

	ctx := zerolog.New(output).With().Timestamp()
	if opts.Component != "" {
		ctx = ctx.Str("component", opts.Component)
	}

	return &Logger{
		zlog:   ctx.Logger(),
		output: output,
		file:   file,
	}
}

// NewComponentLogger creates a console logger tagged with component.
func NewComponentLogger(component string) *Logger {
	return NewLogger(Options{Component: component})
}

// Nop returns a logger that discards everything. Used in tests and as a
// fallback when a component is built without a logger.
func Nop() *Logger {
	return &Logger{zlog: zerolog.Nop(), output: io.Discard}
}

// Named returns a child logger with a different component tag sharing the same sinks.
func (l *Logger) Named(component string) *Logger {
	return &Logger{
		zlog:   l.zlog.With().Str("component", component).Logger(),
		output: l.output,
		file:   l.file,
	}
}

// Info returns an info level event.
func (l *Logger) Info() *zerolog.Event {
	return l.zlog.Info()
}

// Error returns an error level event.
func (l *Logger) Error() *zerolog.Event {
	return l.zlog.Error()
}

// Debug returns a debug level event.
func (l *Logger) Debug() *zerolog.Event {
	return l.zlog.Debug()
}

// Warn returns a warn level event.
func (l *Logger) Warn() *zerolog.Event {
	return l.zlog.Warn()
}

// With creates a child logger context with additional fields.
func (l *Logger) With() zerolog.Context {
	return l.zlog.With()
}

// Output returns the current output writer.
func (l *Logger) Output() io.Writer {
	return l.output
}

// Close flushes and closes the rotating file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Debugf logs a debug message with printf-style formatting.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.zlog.Debug().Msgf(format, args...)
}

// Infof logs an info message with printf-style formatting.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.zlog.Info().Msgf(format, args...)
}

// Errorf logs an error message with printf-style formatting.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.zlog.Error().Msgf(format, args...)
}

// Warnf logs a warning message with printf-style formatting.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.zlog.Warn().Msgf(format, args...)
}

// ParseLevel maps a config string to a zerolog level. Unknown values map to info.
func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// SetGlobalLevel sets the global log level.
func SetGlobalLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
}

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: constants.LogTimeFormat,
	})
}
