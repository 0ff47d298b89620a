//go:build unix

package conn

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// Wait blocks until at least one of the connections is readable, then
// returns the ready subset. A closed peer counts as readable since the
// next read returns end of stream.
//
// A negative timeout blocks indefinitely. A zero timeout returns
// immediately with whatever is ready, possibly nothing. All descriptors
// are registered with one poll call; empty wakeups re-arm against the
// absolute deadline so retries cannot drift.
func Wait(conns []*Connection, timeout time.Duration) ([]*Connection, error) {
	fds := make([]unix.PollFd, len(conns))
	for i, c := range conns {
		fd, err := c.FD()
		if err != nil {
			return nil, err
		}
		fds[i] = unix.PollFd{Fd: int32(fd), Events: unix.POLLIN}
	}

	var deadline time.Time
	if timeout >= 0 {
		deadline = time.Now().Add(timeout)
	}

	for {
		ms := -1
		if timeout >= 0 {
			remaining := time.Until(deadline)
			if remaining < 0 {
				remaining = 0
			}
			ms = int(remaining.Milliseconds())
			if ms == 0 && remaining > 0 {
				ms = 1 // round up, never spin on a sub-millisecond remainder
			}
		}

		n, err := unix.Poll(fds, ms)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("unix.Poll(): %w", err)
		}

		if n > 0 {
			ready := make([]*Connection, 0, n)
			for i := range fds {
				if fds[i].Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0 {
					ready = append(ready, conns[i])
				}
			}
			return ready, nil
		}

		if timeout >= 0 && !time.Now().Before(deadline) {
			return nil, nil
		}
	}
}
