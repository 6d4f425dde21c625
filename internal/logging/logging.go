// Package logging builds the application's structured logger.
package logging

import (
	"fmt"
	"io"
	stdlog "log"
	"os"

	"github.com/charmbracelet/log"
)

// New creates a [log.Logger] writing to w with timestamps and caller reporting enabled.
//
// The writer defaults to [os.Stderr] and the level to info when level is empty.
func New(w io.Writer, level string) (*log.Logger, error) {
	if w == nil {
		w = os.Stderr
	}

	lvl := log.InfoLevel
	if level != "" {
		parsed, err := log.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("parsing log level: %w", err)
		}
		lvl = parsed
	}

	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		ReportCaller:    true,
		Level:           lvl,
	}), nil
}

// Discard returns a logger that drops everything. Useful as a default in tests.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

// Standard adapts l into a stdlib logger writing at info level, for libraries
// that only accept *log.Logger from the standard library.
func Standard(l *log.Logger) *stdlog.Logger {
	return l.StandardLog(log.StandardLogOptions{ForceLevel: log.InfoLevel})
}
