package logger

import (
	"fmt"
	"strings"
	"time"
)

// DBLogger adds statement logging on top of a Logger
type DBLogger struct {
	Logger
}

func NewDBLogger(l Logger) *DBLogger {
	if l == nil {
		l = NewNullLogger()
	}
	return &DBLogger{Logger: l}
}

// LogSQL logs a statement, its bound arguments and how long it took. Debug only.
func (l *DBLogger) LogSQL(sql string, args []any, duration time.Duration) {
	if l.GetLevel() < LogLevelDebug {
		return
	}
	l.Debug("SQL (%v):\n%s", duration, strings.TrimSpace(sql))
	if len(args) == 0 {
		return
	}
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = fmt.Sprintf("%v", arg)
	}
	l.Debug("Args: [%s]", strings.Join(parts, ", "))
}
