package logger

import (
	"io"
	"os"
)

// Log levels accepted in config (log.level).
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

// New returns a logger writing console-encoded entries to w at the given level.
// A nil writer means stdout.
func New(level string, w io.Writer) *Logger {
	if w == nil {
		w = os.Stdout
	}
	return newZapLogger(level, w)
}
