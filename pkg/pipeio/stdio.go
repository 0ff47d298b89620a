package pipeio

import (
	"os"

	"github.com/muesli/cancelreader"
)

// Stdio exposes the process's standard streams as one ReadWriteCloser.
// Where the platform supports it, reads from stdin are cancelable so a
// Close can unblock a pending read.
type Stdio struct {
	stdin           *os.File
	cancelableStdin cancelreader.CancelReader

	stdout *os.File
}

// NewStdio wires up stdin and stdout, with cancelable stdin reading if
// the platform supports it.
func NewStdio() *Stdio {
	s := &Stdio{
		stdin:  os.Stdin,
		stdout: os.Stdout,
	}

	cr, err := cancelreader.NewReader(os.Stdin)
	if err != nil {
		return s
	}
	s.cancelableStdin = cr
	return s
}

// Read reads from stdin, through the cancelable reader when available.
func (s *Stdio) Read(p []byte) (int, error) {
	if s.cancelableStdin != nil {
		return s.cancelableStdin.Read(p)
	}
	return s.stdin.Read(p)
}

// Write writes to stdout.
func (s *Stdio) Write(p []byte) (int, error) {
	return s.stdout.Write(p)
}

// Close cancels a pending stdin read when a cancelable reader is in use.
func (s *Stdio) Close() error {
	if s.cancelableStdin != nil {
		s.cancelableStdin.Cancel()
	}
	return nil
}
