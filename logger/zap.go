package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger adapts a zap sugared logger to the Logger interface.
type ZapLogger struct {
	mu    sync.RWMutex
	level LogLevel
	atom  zap.AtomicLevel
	name  string
	sugar *zap.SugaredLogger
}

// NewZapLogger builds a development-style console logger named name.
func NewZapLogger(name string) *ZapLogger {
	z := &ZapLogger{
		level: LogLevelInfo,
		atom:  zap.NewAtomicLevelAt(zapcore.InfoLevel),
		name:  name,
	}
	z.build(os.Stdout)
	return z
}

func (z *ZapLogger) build(w io.Writer) {
	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	core := zapcore.NewCore(enc, zapcore.AddSync(w), z.atom)
	l := zap.New(core)
	if z.name != "" {
		l = l.Named(z.name)
	}
	z.sugar = l.Sugar()
}

func toZapLevel(level LogLevel) zapcore.Level {
	switch level {
	case LogLevelDebug:
		return zapcore.DebugLevel
	case LogLevelInfo:
		return zapcore.InfoLevel
	case LogLevelWarn:
		return zapcore.WarnLevel
	case LogLevelError:
		return zapcore.ErrorLevel
	default:
		// nothing is logged above error through this adapter
		return zapcore.FatalLevel
	}
}

func (z *ZapLogger) SetLevel(level LogLevel) {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.level = level
	z.atom.SetLevel(toZapLevel(level))
}

func (z *ZapLogger) GetLevel() LogLevel {
	z.mu.RLock()
	defer z.mu.RUnlock()
	return z.level
}

func (z *ZapLogger) SetOutput(w io.Writer) {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.build(w)
}

func (z *ZapLogger) logger() *zap.SugaredLogger {
	z.mu.RLock()
	defer z.mu.RUnlock()
	return z.sugar
}

func (z *ZapLogger) Debug(format string, args ...any) { z.logger().Debugf(format, args...) }
func (z *ZapLogger) Info(format string, args ...any)  { z.logger().Infof(format, args...) }
func (z *ZapLogger) Warn(format string, args ...any)  { z.logger().Warnf(format, args...) }
func (z *ZapLogger) Error(format string, args ...any) { z.logger().Errorf(format, args...) }

// Sync flushes buffered entries.
func (z *ZapLogger) Sync() error {
	if err := z.logger().Sync(); err != nil {
		return fmt.Errorf("failed to sync zap logger: %w", err)
	}
	return nil
}

// New returns a logger of the given format ("zap" or anything else for the
// default colored logger) at the given level.
func New(format, prefix string, level LogLevel) Logger {
	var l Logger
	if format == "zap" {
		l = NewZapLogger(prefix)
	} else {
		l = NewDefaultLogger(prefix)
	}
	l.SetLevel(level)
	return l
}
