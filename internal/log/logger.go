package log

import (
	"fmt"
	"io"
	"os"
)

// Level classifies a log line. Debug lines are suppressed unless verbose
// mode is on.
type Level uint8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// tag returns the colored level marker printed in front of each line.
func (l Level) tag() string {
	switch l {
	case LevelDebug:
		return "\033[37m[DBG]\033[0m"
	case LevelWarn:
		return "\033[33m[WRN]\033[0m"
	case LevelError:
		return "\033[31m[ERR]\033[0m"
	default:
		return "\033[36m[INF]\033[0m"
	}
}

// Everything goes to stderr: command results are printed as JSON on stdout
// and must stay parseable by scripts.
var (
	out     io.Writer = os.Stderr
	verbose           = false
)

// SetVerbose enables debug output.
func SetVerbose(v bool) {
	verbose = v
}

// SetOutput redirects log output, mainly for tests.
func SetOutput(w io.Writer) {
	out = w
}

// Debugf logs a debug message when verbose mode is on.
func Debugf(format string, args ...interface{}) {
	if verbose {
		write(LevelDebug, format, args...)
	}
}

// Infof logs an informational message.
func Infof(format string, args ...interface{}) {
	write(LevelInfo, format, args...)
}

// Warnf logs a warning.
func Warnf(format string, args ...interface{}) {
	write(LevelWarn, format, args...)
}

// Errorf logs an error.
func Errorf(format string, args ...interface{}) {
	write(LevelError, format, args...)
}

// Fatalf logs an error and terminates the process.
func Fatalf(format string, args ...interface{}) {
	write(LevelError, format, args...)
	os.Exit(1)
}

func write(level Level, format string, args ...interface{}) {
	fmt.Fprintf(out, "%s %s\n", level.tag(), fmt.Sprintf(format, args...))
}
