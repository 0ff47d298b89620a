//go:build unix

// Package handle wraps raw file descriptors into exclusively owned
// byte-stream endpoints. A handle is either a pipe end or a connected
// stream socket; it carries its own readable/writable capability flags
// and releases the descriptor exactly once.
package handle

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/sys/unix"
)

var (
	// ErrInvalidFD is returned when a handle is built from a negative descriptor.
	ErrInvalidFD = errors.New("handle: invalid file descriptor")

	// ErrNoCapability is returned when neither readable nor writable is set.
	ErrNoCapability = errors.New("handle: at least one of readable and writable must be set")

	// ErrClosed is returned by operations on a closed handle.
	ErrClosed = errors.New("handle: handle is closed")
)

// Handle owns one OS descriptor. The owner closes it exactly once;
// after that the stored descriptor is gone and every operation fails
// with ErrClosed.
type Handle struct {
	fd       int
	readable bool
	writable bool
}

// FromRaw takes ownership of fd. The caller must not use fd directly afterwards.
func FromRaw(fd int, readable, writable bool) (*Handle, error) {
	if fd < 0 {
		return nil, ErrInvalidFD
	}
	if !readable && !writable {
		return nil, ErrNoCapability
	}

	return &Handle{
		fd:       fd,
		readable: readable,
		writable: writable,
	}, nil
}

// Readable reports whether the handle was created with read capability.
func (h *Handle) Readable() bool {
	return h.readable
}

// Writable reports whether the handle was created with write capability.
func (h *Handle) Writable() bool {
	return h.writable
}

// Closed reports whether the descriptor has been released.
func (h *Handle) Closed() bool {
	return h.fd < 0
}

// FD returns the underlying descriptor.
func (h *Handle) FD() (int, error) {
	if h.fd < 0 {
		return -1, ErrClosed
	}
	return h.fd, nil
}

// Close releases the descriptor. It is safe to call more than once; only
// the first call closes. The stored descriptor is dropped before the
// close syscall so a failure cannot lead to a double free.
func (h *Handle) Close() error {
	if h.fd < 0 {
		return nil
	}

	fd := h.fd
	h.fd = -1
	if err := unix.Close(fd); err != nil {
		return fmt.Errorf("unix.Close(%d): %w", fd, err)
	}
	return nil
}

// Read reads up to len(p) bytes. A zero-byte result on a non-empty
// buffer means the peer closed its end and is reported as io.EOF.
func (h *Handle) Read(p []byte) (int, error) {
	if h.fd < 0 {
		return 0, ErrClosed
	}

	for {
		n, err := unix.Read(h.fd, p)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("unix.Read(%d): %w", h.fd, err)
		}
		if n == 0 && len(p) > 0 {
			return 0, io.EOF
		}
		return n, nil
	}
}

// Write writes all of p, retrying short writes until the buffer is out
// or the descriptor reports an error.
func (h *Handle) Write(p []byte) (int, error) {
	if h.fd < 0 {
		return 0, ErrClosed
	}

	sent := 0
	for sent < len(p) {
		n, err := unix.Write(h.fd, p[sent:])
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return sent, fmt.Errorf("unix.Write(%d): %w", h.fd, err)
		}
		sent += n
	}
	return sent, nil
}

// Dup duplicates the descriptor into an independently owned handle with
// the same capability flags. Both copies must be closed separately.
func (h *Handle) Dup() (*Handle, error) {
	if h.fd < 0 {
		return nil, ErrClosed
	}

	fd, err := unix.Dup(h.fd)
	if err != nil {
		return nil, fmt.Errorf("unix.Dup(%d): %w", h.fd, err)
	}
	unix.CloseOnExec(fd)

	return &Handle{
		fd:       fd,
		readable: h.readable,
		writable: h.writable,
	}, nil
}
