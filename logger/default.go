package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
)

var levelColors = map[LogLevel]*color.Color{
	LogLevelError: color.New(color.FgRed),
	LogLevelWarn:  color.New(color.FgYellow),
	LogLevelInfo:  color.New(color.FgGreen),
	LogLevelDebug: color.New(color.FgHiBlack),
}

// DefaultLogger writes one line per message: timestamp, optional prefix,
// colored level and the formatted message.
type DefaultLogger struct {
	mu     sync.RWMutex
	level  LogLevel
	logger *log.Logger
	prefix string
}

// NewDefaultLogger creates a logger at info level writing to stdout
func NewDefaultLogger(prefix string) *DefaultLogger {
	return &DefaultLogger{
		level:  LogLevelInfo,
		logger: log.New(os.Stdout, "", 0),
		prefix: prefix,
	}
}

func (l *DefaultLogger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *DefaultLogger) GetLevel() LogLevel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

func (l *DefaultLogger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.SetOutput(w)
}

func (l *DefaultLogger) write(level LogLevel, format string, args ...any) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.level < level {
		return
	}

	label := level.String()
	if c, ok := levelColors[level]; ok {
		label = c.Sprint(label)
	}
	stamp := time.Now().Format("15:04:05.000")
	msg := fmt.Sprintf(format, args...)
	if l.prefix != "" {
		l.logger.Printf("%s [%s] %s: %s", stamp, l.prefix, label, msg)
		return
	}
	l.logger.Printf("%s %s: %s", stamp, label, msg)
}

func (l *DefaultLogger) Debug(format string, args ...any) { l.write(LogLevelDebug, format, args...) }
func (l *DefaultLogger) Info(format string, args ...any)  { l.write(LogLevelInfo, format, args...) }
func (l *DefaultLogger) Warn(format string, args ...any)  { l.write(LogLevelWarn, format, args...) }
func (l *DefaultLogger) Error(format string, args ...any) { l.write(LogLevelError, format, args...) }
