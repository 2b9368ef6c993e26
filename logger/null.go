package logger

import "io"

// NullLogger discards everything but remembers its level.
type NullLogger struct {
	level LogLevel
}

func NewNullLogger() *NullLogger {
	return &NullLogger{level: LogLevelNone}
}

func (n *NullLogger) Debug(string, ...any)    {}
func (n *NullLogger) Info(string, ...any)     {}
func (n *NullLogger) Warn(string, ...any)     {}
func (n *NullLogger) Error(string, ...any)    {}
func (n *NullLogger) SetOutput(io.Writer)     {}
func (n *NullLogger) SetLevel(level LogLevel) { n.level = level }
func (n *NullLogger) GetLevel() LogLevel      { return n.level }
