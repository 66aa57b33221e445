package logging

import (
	"log"
	"os"
	"strings"
)

type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

// Logger provides leveled logging on top of the standard logger
type Logger struct {
	level Level
}

// Default is configured from LOG_LEVEL at startup
var Default = NewFromEnv()

func New(level Level) *Logger {
	return &Logger{level: level}
}

// NewFromEnv creates a logger based on LOG_LEVEL environment variable
func NewFromEnv() *Logger {
	return New(ParseLevel(os.Getenv("LOG_LEVEL")))
}

// ParseLevel falls back to INFO for unknown names
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return LevelError
	case "WARN", "WARNING":
		return LevelWarn
	case "DEBUG", "TRACE":
		return LevelDebug
	default:
		return LevelInfo
	}
}

func (l *Logger) Level() Level {
	return l.level
}

func (l *Logger) SetLevel(level Level) {
	l.level = level
}

func (l *Logger) Enabled(level Level) bool {
	return l.level >= level
}

func (l *Logger) Error(format string, args ...interface{}) {
	if l.Enabled(LevelError) {
		log.Printf("[ERROR] "+format, args...)
	}
}

func (l *Logger) Warn(format string, args ...interface{}) {
	if l.Enabled(LevelWarn) {
		log.Printf("[WARN] "+format, args...)
	}
}

func (l *Logger) Info(format string, args ...interface{}) {
	if l.Enabled(LevelInfo) {
		log.Printf("[INFO] "+format, args...)
	}
}

func (l *Logger) Debug(format string, args ...interface{}) {
	if l.Enabled(LevelDebug) {
		log.Printf("[DEBUG] "+format, args...)
	}
}

func Error(format string, args ...interface{}) { Default.Error(format, args...) }
func Warn(format string, args ...interface{})  { Default.Warn(format, args...) }
func Info(format string, args ...interface{})  { Default.Info(format, args...) }
func Debug(format string, args ...interface{}) { Default.Debug(format, args...) }
