// Package logger provides a levelled logger for dxcode, backed by zap.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level represents the logging level.
type Level int32

// Log levels.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelNone
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return ""
	}
}

// ParseLevel parses "debug", "info", "warn", "error" or "none".
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "none", "off", "quiet":
		return LevelNone, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level: %q", s)
	}
}

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelInfo:
		return zapcore.InfoLevel
	case LevelWarn:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

// Logger provides logging functionality.
type Logger struct {
	mu     sync.Mutex
	level  atomic.Int32
	json   bool
	prefix string
	sugar  *zap.SugaredLogger
}

var defaultLogger = New(os.Stderr, LevelInfo)

// Default returns the default logger.
func Default() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger.
func SetDefault(l *Logger) {
	defaultLogger = l
}

// New creates a logger writing human-readable lines to output.
// A nil output discards everything.
func New(output io.Writer, level Level) *Logger {
	return newLogger(output, level, false)
}

// NewJSON creates a logger writing JSON lines to output.
func NewJSON(output io.Writer, level Level) *Logger {
	return newLogger(output, level, true)
}

func newLogger(output io.Writer, level Level, json bool) *Logger {
	l := &Logger{json: json, prefix: "dxcode"}
	l.level.Store(int32(level))
	l.build(output)
	return l
}

// build replaces the zap core. Must be called with mu held or before the
// logger is shared.
func (l *Logger) build(output io.Writer) {
	if output == nil {
		output = io.Discard
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")

	var enc zapcore.Encoder
	if l.json {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	enabled := zap.LevelEnablerFunc(func(z zapcore.Level) bool {
		current := Level(l.level.Load())
		return current != LevelNone && z >= current.zapLevel()
	})

	core := zapcore.NewCore(enc, zapcore.AddSync(output), enabled)
	l.sugar = zap.New(core).Named(l.prefix).Sugar()
}

// SetLevel sets the logging level.
func (l *Logger) SetLevel(level Level) {
	l.level.Store(int32(level))
}

// Level returns the current logging level.
func (l *Logger) Level() Level {
	return Level(l.level.Load())
}

// SetOutput sets the output writer.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.build(w)
}

// Sugar exposes the underlying zap logger for structured key/value logging.
func (l *Logger) Sugar() *zap.SugaredLogger {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sugar
}

// With returns a zap logger carrying the given key/value pairs.
func (l *Logger) With(keysAndValues ...any) *zap.SugaredLogger {
	return l.Sugar().With(keysAndValues...)
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.Sugar().Sync()
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...any) {
	l.Sugar().Debugf(format, args...)
}

// Info logs an info message.
func (l *Logger) Info(format string, args ...any) {
	l.Sugar().Infof(format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...any) {
	l.Sugar().Warnf(format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...any) {
	l.Sugar().Errorf(format, args...)
}

// Package-level convenience functions.

// Debug logs a debug message using the default logger.
func Debug(format string, args ...any) {
	defaultLogger.Debug(format, args...)
}

// Info logs an info message using the default logger.
func Info(format string, args ...any) {
	defaultLogger.Info(format, args...)
}

// Warn logs a warning message using the default logger.
func Warn(format string, args ...any) {
	defaultLogger.Warn(format, args...)
}

// Error logs an error message using the default logger.
func Error(format string, args ...any) {
	defaultLogger.Error(format, args...)
}

// SetLevel sets the level of the default logger.
func SetLevel(level Level) {
	defaultLogger.SetLevel(level)
}

// SetOutput sets the output of the default logger.
func SetOutput(w io.Writer) {
	defaultLogger.SetOutput(w)
}

// Disable disables all logging.
func Disable() {
	defaultLogger.SetLevel(LevelNone)
}
