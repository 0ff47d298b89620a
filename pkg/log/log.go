// Package log provides colored console output for the conduit CLI and
// optional traffic logging for connections.
package log

import (
	"os"

	"github.com/fatih/color"
)

var red = color.New(color.FgRed).FprintfFunc()
var blue = color.New(color.FgBlue).FprintfFunc()
var yellow = color.New(color.FgYellow).FprintfFunc()

// ErrorMsg prints an error message to stderr in red color.
func ErrorMsg(format string, a ...interface{}) {
	red(os.Stderr, "[!] Error: "+format, a...)
}

// InfoMsg prints an informational message to stderr in blue color.
func InfoMsg(format string, a ...interface{}) {
	blue(os.Stderr, "[+] "+format, a...)
}

// Logger adds gated verbose output on top of the package helpers.
type Logger struct {
	verbose bool
}

// NewLogger returns a logger; verbose messages are dropped unless enabled.
func NewLogger(verbose bool) *Logger {
	return &Logger{verbose: verbose}
}

// ErrorMsg prints an error message to stderr in red color.
func (l *Logger) ErrorMsg(format string, a ...interface{}) {
	ErrorMsg(format, a...)
}

// InfoMsg prints an informational message to stderr in blue color.
func (l *Logger) InfoMsg(format string, a ...interface{}) {
	InfoMsg(format, a...)
}

// VerboseMsg prints a debug message to stderr in yellow when verbose
// logging is enabled.
func (l *Logger) VerboseMsg(format string, a ...interface{}) {
	if l.verbose {
		yellow(os.Stderr, "[*] "+format+"\n", a...)
	}
}
