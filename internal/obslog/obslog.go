// Package obslog provides the Generator's warning sink: a narrow
// interface so internal/engine depends on a logging contract rather than
// a concrete library, mirroring how the teacher's Player takes plain
// callback functions instead of binding to a specific output engine.
package obslog

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
)

// Logger is the minimal surface the engine needs: warnings for cycle
// detection and uninitialized voices, informational messages for
// construction-time diagnostics.
type Logger interface {
	Warnf(format string, args ...any)
	Infof(format string, args ...any)
}

type charmLogger struct {
	l *log.Logger
}

// NewDefault returns a Logger writing to stderr at Warn level, the
// Generator's default when no logger is supplied.
func NewDefault() Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{Level: log.WarnLevel})
	return &charmLogger{l: l}
}

func (c *charmLogger) Warnf(format string, args ...any) {
	c.l.Warnf(format, args...)
}

func (c *charmLogger) Infof(format string, args ...any) {
	c.l.Infof(format, args...)
}

// Capturing is a test-injectable Logger that records messages instead of
// writing them anywhere, so tests can assert a warning fired (and how
// many times) without scraping stderr.
type Capturing struct {
	Warnings []string
	Infos    []string
}

// NewCapturing returns an empty Capturing logger.
func NewCapturing() *Capturing {
	return &Capturing{}
}

func (c *Capturing) Warnf(format string, args ...any) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}

func (c *Capturing) Infof(format string, args ...any) {
	c.Infos = append(c.Infos, fmt.Sprintf(format, args...))
}
