package log

import (
	"fmt"
	"io"
	"os"
)

// loggedRWC tees everything read from and written to a stream into a file.
type loggedRWC struct {
	rwc     io.ReadWriteCloser
	logFile *os.File
}

func (l *loggedRWC) Read(b []byte) (int, error) {
	n, err := l.rwc.Read(b)
	if n > 0 {
		if _, werr := l.logFile.Write(b[:n]); werr != nil {
			return 0, fmt.Errorf("logging read data: %w", werr)
		}
	}
	return n, err
}

func (l *loggedRWC) Write(b []byte) (int, error) {
	n, err := l.rwc.Write(b)
	if n > 0 {
		if _, werr := l.logFile.Write(b[:n]); werr != nil {
			return 0, fmt.Errorf("logging written data: %w", werr)
		}
	}
	return n, err
}

func (l *loggedRWC) Close() error {
	err := l.rwc.Close()
	if cerr := l.logFile.Close(); err == nil {
		err = cerr
	}
	return err
}

// NewLoggedRWC wraps a stream so all traffic is also appended to the
// file at path.
func NewLoggedRWC(rwc io.ReadWriteCloser, path string) (io.ReadWriteCloser, error) {
	logFile, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("os.OpenFile(%s): %w", path, err)
	}
	return &loggedRWC{rwc: rwc, logFile: logFile}, nil
}
