// Package logging provides the leveled logger used throughout the server,
// a thin wrapper over the standard library's log.Logger so call sites read
// like plain log.Printf while tests can capture output.
package logging

import (
	"fmt"
	"log"
	"os"
)

// Logger writes leveled messages to an underlying *log.Logger.
type Logger struct {
	out *log.Logger
}

// New returns a Logger writing to os.Stderr with the standard date/time
// prefix.
func New() *Logger {
	return &Logger{out: log.New(os.Stderr, "", log.LstdFlags)}
}

// NewWithOutput returns a Logger writing through l, letting tests inject a
// logger backed by a bytes.Buffer.
func NewWithOutput(l *log.Logger) *Logger {
	return &Logger{out: l}
}

func (l *Logger) Info(format string, args ...any) {
	l.out.Print("INFO  " + fmt.Sprintf(format, args...))
}

func (l *Logger) Warn(format string, args ...any) {
	l.out.Print("WARN  " + fmt.Sprintf(format, args...))
}

func (l *Logger) Error(format string, args ...any) {
	l.out.Print("ERROR " + fmt.Sprintf(format, args...))
}
