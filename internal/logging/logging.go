// Package logging wires up the shared structured logger.
package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// New creates a [log.Logger] writing to w with timestamps enabled.
// The writer defaults to [os.Stderr].
func New(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	return log.NewWithOptions(w, log.Options{ReportTimestamp: true})
}

// Discard returns a logger that drops everything; used as the default
// when a component is constructed without a logger.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// ParseLevel maps a config level string to a [log.Level], defaulting
// to info.
func ParseLevel(s string) log.Level {
	switch s {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
