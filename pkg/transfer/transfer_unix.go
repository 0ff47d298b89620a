//go:build unix

// Package transfer moves open handles between related processes.
// The descriptor rides as SCM_RIGHTS ancillary data over a unix-domain
// socket connection; the receiving side wraps the kernel-duplicated
// descriptor into a fresh, independently owned handle.
package transfer

import (
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"

	"mwieser/conduit/pkg/conn"
	"mwieser/conduit/pkg/handle"
	"mwieser/conduit/pkg/platform"
)

// ErrUnsupported is returned where the platform offers no descriptor
// passing and no alternate duplication path applies.
var ErrUnsupported = errors.New("transfer: descriptor passing not supported on this platform")

// macOS wants an explicit receipt before the sender may move on.
var acknowledge = runtime.GOOS == "darwin"

// Send passes h's descriptor to the process on the other side of via,
// which must be a unix-domain socket connection. Both sides keep their
// own copy; each closes its own.
func Send(via *conn.Connection, h *handle.Handle) error {
	if !platform.Get().FDTransfer {
		return ErrUnsupported
	}

	sock, err := via.FD()
	if err != nil {
		return err
	}
	fd, err := h.FD()
	if err != nil {
		return err
	}

	rights := unix.UnixRights(fd)
	if err := unix.Sendmsg(sock, []byte{1}, rights, nil, 0); err != nil {
		return fmt.Errorf("unix.Sendmsg(): %w", err)
	}

	if acknowledge {
		buf := make([]byte, 1)
		if _, err := unix.Read(sock, buf); err != nil {
			return fmt.Errorf("transfer: reading receipt: %w", err)
		}
		if buf[0] != 'A' {
			return errors.New("transfer: descriptor receipt not acknowledged")
		}
	}
	return nil
}

// Recv wraps a descriptor passed by the peer into a fresh handle with
// the given capability flags.
func Recv(via *conn.Connection, readable, writable bool) (*handle.Handle, error) {
	if !platform.Get().FDTransfer {
		return nil, ErrUnsupported
	}

	sock, err := via.FD()
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 1)
	oob := make([]byte, unix.CmsgSpace(4))

	var oobn int
	for {
		_, oobn, _, _, err = unix.Recvmsg(sock, buf, oob, 0)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("unix.Recvmsg(): %w", err)
		}
		break
	}

	msgs, err := unix.ParseSocketControlMessage(oob[:oobn])
	if err != nil {
		return nil, fmt.Errorf("unix.ParseSocketControlMessage(): %w", err)
	}
	if len(msgs) != 1 {
		return nil, fmt.Errorf("transfer: expected one control message, got %d", len(msgs))
	}

	fds, err := unix.ParseUnixRights(&msgs[0])
	if err != nil {
		return nil, fmt.Errorf("unix.ParseUnixRights(): %w", err)
	}
	if len(fds) != 1 {
		for _, fd := range fds {
			unix.Close(fd)
		}
		return nil, fmt.Errorf("transfer: expected one descriptor, got %d", len(fds))
	}

	if acknowledge {
		if _, err := unix.Write(sock, []byte{'A'}); err != nil {
			unix.Close(fds[0])
			return nil, fmt.Errorf("transfer: writing receipt: %w", err)
		}
	}

	unix.CloseOnExec(fds[0])
	return handle.FromRaw(fds[0], readable, writable)
}
