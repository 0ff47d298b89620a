//go:build unix

package conn

import (
	"fmt"

	"golang.org/x/sys/unix"

	"mwieser/conduit/pkg/handle"
)

// Pipe returns a pair of connected connections without a named address.
// Duplex mode builds both ends on a unix socket pair. Non-duplex mode
// builds them on an OS pipe and returns the write-only end first and
// the read-only end second.
func Pipe(duplex bool) (*Connection, *Connection, error) {
	if duplex {
		fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
		if err != nil {
			return nil, nil, fmt.Errorf("unix.Socketpair(): %w", err)
		}
		unix.CloseOnExec(fds[0])
		unix.CloseOnExec(fds[1])

		h1, err := handle.FromRaw(fds[0], true, true)
		if err != nil {
			unix.Close(fds[0])
			unix.Close(fds[1])
			return nil, nil, err
		}
		h2, err := handle.FromRaw(fds[1], true, true)
		if err != nil {
			h1.Close()
			unix.Close(fds[1])
			return nil, nil, err
		}
		return New(h1, nil), New(h2, nil), nil
	}

	var p [2]int
	if err := unix.Pipe(p[:]); err != nil {
		return nil, nil, fmt.Errorf("unix.Pipe(): %w", err)
	}
	unix.CloseOnExec(p[0])
	unix.CloseOnExec(p[1])

	w, err := handle.FromRaw(p[1], false, true)
	if err != nil {
		unix.Close(p[0])
		unix.Close(p[1])
		return nil, nil, err
	}
	r, err := handle.FromRaw(p[0], true, false)
	if err != nil {
		w.Close()
		unix.Close(p[0])
		return nil, nil, err
	}
	return New(w, nil), New(r, nil), nil
}
