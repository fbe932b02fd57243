package fdk

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/pkg/errors"
)

// Statter is the interface that stats collectors must implement to get stats
// out of the FDK stages.
type Statter interface {
	Count(name string, value int64, rate float64, tags ...string)
	Gauge(name string, value float64, rate float64, tags ...string)
	Timing(name string, value time.Duration, rate float64, tags ...string)
}

// NopStatter does nothing.
type NopStatter struct{}

// Count does nothing.
func (NopStatter) Count(name string, value int64, rate float64, tags ...string) {}

// Gauge does nothing.
func (NopStatter) Gauge(name string, value float64, rate float64, tags ...string) {}

// Timing does nothing.
func (NopStatter) Timing(name string, value time.Duration, rate float64, tags ...string) {}

// MultiStatter sends every stat to each of its Statters.
type MultiStatter []Statter

// Count implements Statter.
func (ms MultiStatter) Count(name string, value int64, rate float64, tags ...string) {
	for _, s := range ms {
		s.Count(name, value, rate, tags...)
	}
}

// Gauge implements Statter.
func (ms MultiStatter) Gauge(name string, value float64, rate float64, tags ...string) {
	for _, s := range ms {
		s.Gauge(name, value, rate, tags...)
	}
}

// Timing implements Statter.
func (ms MultiStatter) Timing(name string, value time.Duration, rate float64, tags ...string) {
	for _, s := range ms {
		s.Timing(name, value, rate, tags...)
	}
}

// Logger is the interface that loggers must implement to get FDK logs.
type Logger interface {
	Printf(format string, v ...interface{})
	Debugf(format string, v ...interface{})
}

// NopLogger logs nothing.
type NopLogger struct{}

// Printf does nothing.
func (NopLogger) Printf(format string, v ...interface{}) {}

// Debugf does nothing.
func (NopLogger) Debugf(format string, v ...interface{}) {}

// StdLogger only prints on Printf.
type StdLogger struct {
	*log.Logger
}

// Printf implements Logger interface.
func (s StdLogger) Printf(format string, v ...interface{}) {
	s.Logger.Printf(format, v...)
}

// Debugf implements Logger interface, but prints nothing.
func (StdLogger) Debugf(format string, v ...interface{}) {}

// VerboseLogger prints on both Printf and Debugf.
type VerboseLogger struct {
	*log.Logger
}

// Printf implements Logger interface.
func (s VerboseLogger) Printf(format string, v ...interface{}) {
	s.Logger.Printf(format, v...)
}

// Debugf implements Logger interface.
func (s VerboseLogger) Debugf(format string, v ...interface{}) {
	s.Logger.Printf(format, v...)
}

// NewLogger returns a Logger writing to the file at logPath (appending), or
// to stderr if logPath is empty. The returned Closer must be closed when the
// caller is done logging.
func NewLogger(logPath string, verbose bool) (Logger, io.Closer, error) {
	var out io.WriteCloser = nopCloser{os.Stderr}
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			return nil, nil, errors.Wrap(err, "opening log file")
		}
		out = f
	}
	l := log.New(out, "", log.LstdFlags)
	if verbose {
		return VerboseLogger{l}, out, nil
	}
	return StdLogger{l}, out, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
