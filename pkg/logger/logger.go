package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel represents the severity level of log messages.
type LogLevel int

// Log level constants defining message severity.
const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

var levelNames = map[LogLevel]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
	FATAL: "FATAL",
}

// LogFormat selects the output encoding of log lines.
type LogFormat int

// Supported log output formats.
const (
	FormatStandard LogFormat = iota
	FormatJSON
)

// ParseLogLevel converts a string log level to its LogLevel constant.
func ParseLogLevel(level string) LogLevel {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	case "FATAL":
		return FATAL
	default:
		return INFO
	}
}

// ParseLogFormat converts a string log format ("standard" or "json") to its constant.
func ParseLogFormat(format string) LogFormat {
	if strings.EqualFold(format, "json") {
		return FormatJSON
	}
	return FormatStandard
}

// Logger provides structured logging with level-based filtering and log rotation.
type Logger struct {
	loggers map[LogLevel]*log.Logger
	out     io.Writer
	level   LogLevel
	format  LogFormat
	mu      sync.RWMutex
}

var instance *Logger
var once sync.Once

// Init initializes the global logger instance with default configuration at INFO level.
func Init(logPath string) {
	once.Do(func() {
		instance = NewLogger(logPath, INFO)
	})
}

// InitWithConfig initializes the global logger instance with custom format and rotation configuration.
func InitWithConfig(logPath string, level LogLevel, format LogFormat, maxSize, maxBackups, maxAge int, compress bool) {
	once.Do(func() {
		instance = NewLoggerWithConfig(logPath, level, format, maxSize, maxBackups, maxAge, compress)
	})
}

// NewLogger creates a new logger instance with default log rotation settings.
func NewLogger(logPath string, level LogLevel) *Logger {
	return NewLoggerWithConfig(logPath, level, FormatStandard, 10, 3, 28, true)
}

// NewLoggerWithConfig creates a new logger instance with custom format and rotation configuration.
func NewLoggerWithConfig(logPath string, level LogLevel, format LogFormat, maxSize, maxBackups, maxAge int, compress bool) *Logger {
	dir := filepath.Dir(logPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Fatalf("cannot create directory log: %v", err)
	}

	if err := os.Chmod(dir, 0755); err != nil {
		log.Fatalf("cannot set privilege directory log: %v", err)
	}

	logFile := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		MaxAge:     maxAge,
		Compress:   compress,
	}

	multiWriter := io.MultiWriter(os.Stdout, logFile)

	logger := &Logger{
		loggers: make(map[LogLevel]*log.Logger),
		out:     multiWriter,
		level:   level,
		format:  format,
	}

	flags := log.LstdFlags | log.Lshortfile
	for lvl, name := range levelNames {
		logger.loggers[lvl] = log.New(multiWriter, "["+name+"] ", flags)
	}

	return logger
}

// SetLevel changes the minimum log level for filtering messages.
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// GetLevel returns the current minimum log level.
func (l *Logger) GetLevel() LogLevel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

func (l *Logger) shouldLog(level LogLevel) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return level >= l.level
}

type jsonEntry struct {
	Time    string `json:"time"`
	Level   string `json:"level"`
	Caller  string `json:"caller"`
	Message string `json:"message"`
}

func (l *Logger) output(level LogLevel, msg string) {
	if l.format == FormatStandard {
		l.loggers[level].Output(3, msg)
		return
	}

	_, file, line, ok := runtime.Caller(2)
	caller := "???"
	if ok {
		caller = fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}
	entry := jsonEntry{
		Time:    time.Now().Format(time.RFC3339),
		Level:   levelNames[level],
		Caller:  caller,
		Message: msg,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		l.loggers[level].Output(3, msg)
		return
	}
	l.mu.Lock()
	l.out.Write(append(data, '\n'))
	l.mu.Unlock()
}

// Debug logs a debug-level message.
func (l *Logger) Debug(v ...interface{}) {
	if l.shouldLog(DEBUG) {
		l.output(DEBUG, fmt.Sprint(v...))
	}
}

// Debugf logs a formatted debug-level message.
func (l *Logger) Debugf(format string, v ...interface{}) {
	if l.shouldLog(DEBUG) {
		l.output(DEBUG, fmt.Sprintf(format, v...))
	}
}

// Info logs an info-level message.
func (l *Logger) Info(v ...interface{}) {
	if l.shouldLog(INFO) {
		l.output(INFO, fmt.Sprint(v...))
	}
}

// Infof logs a formatted info-level message.
func (l *Logger) Infof(format string, v ...interface{}) {
	if l.shouldLog(INFO) {
		l.output(INFO, fmt.Sprintf(format, v...))
	}
}

// Warn logs a warning-level message.
func (l *Logger) Warn(v ...interface{}) {
	if l.shouldLog(WARN) {
		l.output(WARN, fmt.Sprint(v...))
	}
}

// Warnf logs a formatted warning-level message.
func (l *Logger) Warnf(format string, v ...interface{}) {
	if l.shouldLog(WARN) {
		l.output(WARN, fmt.Sprintf(format, v...))
	}
}

func (l *Logger) Error(v ...interface{}) {
	if l.shouldLog(ERROR) {
		l.output(ERROR, fmt.Sprint(v...))
	}
}

// Errorf logs a formatted error-level message.
func (l *Logger) Errorf(format string, v ...interface{}) {
	if l.shouldLog(ERROR) {
		l.output(ERROR, fmt.Sprintf(format, v...))
	}
}

// Fatal logs a fatal-level message and exits the program.
func (l *Logger) Fatal(v ...interface{}) {
	if l.shouldLog(FATAL) {
		l.output(FATAL, fmt.Sprint(v...))
		os.Exit(1)
	}
}

// Fatalf logs a formatted fatal-level message and exits the program.
func (l *Logger) Fatalf(format string, v ...interface{}) {
	if l.shouldLog(FATAL) {
		l.output(FATAL, fmt.Sprintf(format, v...))
		os.Exit(1)
	}
}

// Global convenience functions

// Debug logs a debug-level message using the global logger instance.
func Debug(v ...interface{}) {
	if instance != nil {
		instance.Debug(v...)
	}
}

// Debugf logs a formatted debug-level message using the global logger instance.
func Debugf(format string, v ...interface{}) {
	if instance != nil {
		instance.Debugf(format, v...)
	}
}

// Info logs an info-level message using the global logger instance.
func Info(v ...interface{}) {
	if instance != nil {
		instance.Info(v...)
	}
}

// Infof logs a formatted info-level message using the global logger instance.
func Infof(format string, v ...interface{}) {
	if instance != nil {
		instance.Infof(format, v...)
	}
}

// Warn logs a warning-level message using the global logger instance.
func Warn(v ...interface{}) {
	if instance != nil {
		instance.Warn(v...)
	}
}

// Warnf logs a formatted warning-level message using the global logger instance.
func Warnf(format string, v ...interface{}) {
	if instance != nil {
		instance.Warnf(format, v...)
	}
}

// Error logs an error-level message using the global logger instance.
func Error(v ...interface{}) {
	if instance != nil {
		instance.Error(v...)
	}
}

// Errorf logs a formatted error-level message using the global logger instance.
func Errorf(format string, v ...interface{}) {
	if instance != nil {
		instance.Errorf(format, v...)
	}
}

// Fatal logs a fatal-level message and exits the program using the global logger instance.
func Fatal(v ...interface{}) {
	if instance != nil {
		instance.Fatal(v...)
	}
}

// Fatalf logs a formatted fatal-level message and exits the program using the global logger instance.
func Fatalf(format string, v ...interface{}) {
	if instance != nil {
		instance.Fatalf(format, v...)
	}
}

// SetLevel changes the minimum log level for the global logger instance.
func SetLevel(level LogLevel) {
	if instance != nil {
		instance.SetLevel(level)
	}
}

// GetLevel returns the current minimum log level of the global logger instance.
func GetLevel() LogLevel {
	if instance != nil {
		return instance.GetLevel()
	}
	return INFO
}
