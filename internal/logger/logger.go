// internal/logger/logger.go
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	// Log levels
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

var levelNames = map[LogLevel]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case DEBUG:
		return zapcore.DebugLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// ParseLevel parses a level name case-insensitively
func ParseLevel(s string) (LogLevel, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return INFO, fmt.Errorf("unknown log level %q", s)
	}
	switch {
	case lvl <= zapcore.DebugLevel:
		return DEBUG, nil
	case lvl == zapcore.InfoLevel:
		return INFO, nil
	case lvl == zapcore.WarnLevel:
		return WARN, nil
	default:
		return ERROR, nil
	}
}

// Logger writes levelled messages through zap
type Logger struct {
	mu         sync.Mutex
	level      zap.AtomicLevel
	cores      []zapcore.Core
	showFile   bool
	timeFormat string
	base       *zap.Logger
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// GetLogger returns the default logger instance, writing to stderr
func GetLogger() *Logger {
	once.Do(func() {
		defaultLogger = NewLogger(INFO)
		defaultLogger.SetShowFile(false)
		defaultLogger.AddOutput(DEBUG, os.Stderr)
	})
	return defaultLogger
}

// NewLogger creates a new logger instance with the specified minimum log level
func NewLogger(level LogLevel) *Logger {
	l := &Logger{
		level:      zap.NewAtomicLevelAt(level.zapLevel()),
		timeFormat: "2006-01-02 15:04:05",
		showFile:   true,
	}
	l.rebuild()
	return l
}

func (l *Logger) encoder() zapcore.Encoder {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout(l.timeFormat)
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

// rebuild recreates the zap logger after outputs or options change. Callers hold mu or own l.
func (l *Logger) rebuild() {
	var opts []zap.Option
	if l.showFile {
		opts = append(opts, zap.AddCaller())
	}
	l.base = zap.New(zapcore.NewTee(l.cores...), opts...)
}

// SetLevel changes the minimum log level
func (l *Logger) SetLevel(level LogLevel) {
	l.level.SetLevel(level.zapLevel())
}

// SetTimeFormat sets the time format used in log messages. It applies to outputs added afterwards.
func (l *Logger) SetTimeFormat(format string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.timeFormat = format
}

// SetShowFile enables or disables showing file and line information in logs
func (l *Logger) SetShowFile(show bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.showFile = show
	l.rebuild()
}

// AddOutput adds a writer receiving messages at the given level and above
func (l *Logger) AddOutput(level LogLevel, w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	minimum := level.zapLevel()
	enabler := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= minimum && l.level.Enabled(lvl)
	})
	l.cores = append(l.cores, zapcore.NewCore(l.encoder(), zapcore.AddSync(w), enabler))
	l.rebuild()
}

// AddFileOutput adds a file output for the specified log level
func (l *Logger) AddFileOutput(level LogLevel, filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	l.AddOutput(level, file)
	return nil
}

// With returns a structured logger carrying the given key/value pairs
func (l *Logger) With(keysAndValues ...interface{}) *zap.SugaredLogger {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.base.Sugar().With(keysAndValues...)
}

// logf is called from exactly one wrapper frame, which is skipped when reporting the caller
func (l *Logger) logf(level LogLevel, format string, args ...interface{}) {
	l.mu.Lock()
	sugar := l.base.WithOptions(zap.AddCallerSkip(2)).Sugar()
	l.mu.Unlock()

	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	switch level {
	case DEBUG:
		sugar.Debug(msg)
	case INFO:
		sugar.Info(msg)
	case WARN:
		sugar.Warn(msg)
	case ERROR:
		sugar.Error(msg)
	}
}

// Sync flushes buffered output
func (l *Logger) Sync() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.base.Sync()
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.logf(DEBUG, format, args...)
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.logf(INFO, format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.logf(WARN, format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.logf(ERROR, format, args...)
}

// Global convenience functions that use the default logger

func Debug(format string, args ...interface{}) {
	GetLogger().logf(DEBUG, format, args...)
}

func Info(format string, args ...interface{}) {
	GetLogger().logf(INFO, format, args...)
}

func Warn(format string, args ...interface{}) {
	GetLogger().logf(WARN, format, args...)
}

func Error(format string, args ...interface{}) {
	GetLogger().logf(ERROR, format, args...)
}

// With returns a structured logger from the default logger
func With(keysAndValues ...interface{}) *zap.SugaredLogger {
	return GetLogger().With(keysAndValues...)
}

// SetGlobalLevel sets the level for the default logger
func SetGlobalLevel(level LogLevel) {
	GetLogger().SetLevel(level)
}
