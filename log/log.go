// Package log configures the loggers used by modular tools.
package log

import (
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

var debug bool

// Logger is a global interface for modular loggers.
type Logger interface {
	Debug(...interface{})
	Info(...interface{})
}

func init() {
	var err error
	debug, err = strconv.ParseBool(os.Getenv("MODULAR_DEBUG"))
	if err != nil {
		debug = false
	}
}

// GetLogger returns a new logger instance writing to stderr.
func GetLogger() *logrus.Logger {
	return New(os.Stderr)
}

// New returns a logger writing to w. Text output is used for terminals,
// JSON lines otherwise.
func New(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.Out = w
	if isTerminal(w) {
		l.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	} else {
		l.Formatter = &logrus.JSONFormatter{}
	}
	if debug {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

type silent struct{}

// Silent returns a logger that discards everything.
func Silent() Logger {
	return silent{}
}

func (silent) Debug(...interface{}) {}
func (silent) Info(...interface{})  {}
