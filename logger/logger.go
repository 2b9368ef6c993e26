package logger

import (
	"io"
	"sync"
)

// Logger interface defines core logging methods
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)

	SetLevel(level LogLevel)
	GetLevel() LogLevel
	SetOutput(w io.Writer)
}

var (
	global   Logger = NewNullLogger()
	globalMu sync.RWMutex
)

// SetGlobalLogger replaces the process-wide logger. A nil logger silences output.
func SetGlobalLogger(l Logger) {
	if l == nil {
		l = NewNullLogger()
	}
	globalMu.Lock()
	defer globalMu.Unlock()
	global = l
}

// GetGlobalLogger returns the process-wide logger
func GetGlobalLogger() Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return global
}

// OrGlobal returns l, or the global logger when l is nil.
func OrGlobal(l Logger) Logger {
	if l != nil {
		return l
	}
	return GetGlobalLogger()
}

func Debug(format string, args ...any) { GetGlobalLogger().Debug(format, args...) }
func Info(format string, args ...any)  { GetGlobalLogger().Info(format, args...) }
func Warn(format string, args ...any)  { GetGlobalLogger().Warn(format, args...) }
func Error(format string, args ...any) { GetGlobalLogger().Error(format, args...) }
