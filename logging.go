package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// LogLevel defines severity for logger output.
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// ParseLogLevel maps a config string to a level, defaulting to info.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(s) {
	case "error":
		return LogLevelError
	case "warn", "warning":
		return LogLevelWarn
	case "debug":
		return LogLevelDebug
	default:
		return LogLevelInfo
	}
}

// Logger provides leveled logging over zerolog.
type Logger struct {
	zl zerolog.Logger
}

// NewLogger creates a logger with the desired level and component tag.
func NewLogger(level LogLevel, component string) *Logger {
	zlevel := zerolog.InfoLevel
	switch level {
	case LogLevelError:
		zlevel = zerolog.ErrorLevel
	case LogLevelWarn:
		zlevel = zerolog.WarnLevel
	case LogLevelDebug:
		zlevel = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000000"}
	zl := zerolog.New(writer).Level(zlevel).With().Timestamp().Str("comp", component).Logger()
	return &Logger{zl: zl}
}

// SetLevel adjusts the current logging level.
func (l *Logger) SetLevel(level LogLevel) {
	if l == nil {
		return
	}
	zlevel := zerolog.InfoLevel
	switch level {
	case LogLevelError:
		zlevel = zerolog.ErrorLevel
	case LogLevelWarn:
		zlevel = zerolog.WarnLevel
	case LogLevelDebug:
		zlevel = zerolog.DebugLevel
	}
	l.zl = l.zl.Level(zlevel)
}

// Debugf prints debug messages.
func (l *Logger) Debugf(format string, args ...any) {
	if l == nil {
		return
	}
	l.zl.Debug().Msg(fmt.Sprintf(format, args...))
}

// Infof prints info messages.
func (l *Logger) Infof(format string, args ...any) {
	if l == nil {
		return
	}
	l.zl.Info().Msg(fmt.Sprintf(format, args...))
}

// Warnf prints warning messages.
func (l *Logger) Warnf(format string, args ...any) {
	if l == nil {
		return
	}
	l.zl.Warn().Msg(fmt.Sprintf(format, args...))
}

// Errorf prints error messages.
func (l *Logger) Errorf(format string, args ...any) {
	if l == nil {
		return
	}
	l.zl.Error().Msg(fmt.Sprintf(format, args...))
}

var defaultLogger = NewLogger(LogLevelInfo, "bench")

// GetLogger returns the global logger.
func GetLogger() *Logger {
	return defaultLogger
}

// SetLogger replaces the global logger (primarily for tests).
func SetLogger(l *Logger) {
	if l == nil {
		return
	}
	defaultLogger = l
}
