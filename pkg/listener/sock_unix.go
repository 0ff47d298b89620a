//go:build unix

package listener

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"

	"mwieser/conduit/pkg/address"
	"mwieser/conduit/pkg/handle"
)

func bindAndListen(addr address.Addr, backlog int) (int, address.Addr, error) {
	switch a := addr.(type) {
	case address.UnixAddr:
		return bindUnix(a, backlog)
	case address.TCPAddr:
		return bindTCP(a, backlog)
	}
	return -1, nil, fmt.Errorf("listener: unknown address type %T", addr)
}

func bindUnix(a address.UnixAddr, backlog int) (int, address.Addr, error) {
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, nil, fmt.Errorf("unix.Socket(AF_UNIX): %w", err)
	}
	unix.CloseOnExec(fd)

	if err := unix.Bind(fd, &unix.SockaddrUnix{Name: a.Path}); err != nil {
		unix.Close(fd)
		return -1, nil, fmt.Errorf("unix.Bind(%s): %w", a.Path, err)
	}
	if err := unix.Listen(fd, backlog); err != nil {
		unix.Close(fd)
		os.Remove(a.Path)
		return -1, nil, fmt.Errorf("unix.Listen(%s): %w", a.Path, err)
	}
	return fd, a, nil
}

func bindTCP(a address.TCPAddr, backlog int) (int, address.Addr, error) {
	sa, family, err := tcpSockaddr(a)
	if err != nil {
		return -1, nil, err
	}

	fd, err := unix.Socket(family, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, nil, fmt.Errorf("unix.Socket(AF_INET): %w", err)
	}
	unix.CloseOnExec(fd)

	// Reuse is semantically safe for stream listeners on posix systems.
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return -1, nil, fmt.Errorf("unix.SetsockoptInt(SO_REUSEADDR): %w", err)
	}

	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return -1, nil, fmt.Errorf("unix.Bind(%s): %w", a.String(), err)
	}
	if err := unix.Listen(fd, backlog); err != nil {
		unix.Close(fd)
		return -1, nil, fmt.Errorf("unix.Listen(%s): %w", a.String(), err)
	}

	// Resolve the concrete port, the caller may have asked for port 0.
	sn, err := unix.Getsockname(fd)
	if err != nil {
		unix.Close(fd)
		return -1, nil, fmt.Errorf("unix.Getsockname(): %w", err)
	}
	return fd, sockaddrToAddr(sn), nil
}

func acceptFD(h *handle.Handle) (int, address.Addr, error) {
	fd, err := h.FD()
	if err != nil {
		return -1, nil, err
	}

	for {
		nfd, sa, err := unix.Accept(fd)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return -1, nil, fmt.Errorf("unix.Accept(): %w", err)
		}
		unix.CloseOnExec(nfd)
		return nfd, sockaddrToAddr(sa), nil
	}
}

func connectFD(addr address.Addr) (int, error) {
	var sa unix.Sockaddr
	var family int

	switch a := addr.(type) {
	case address.UnixAddr:
		sa = &unix.SockaddrUnix{Name: a.Path}
		family = unix.AF_UNIX
	case address.TCPAddr:
		var err error
		sa, family, err = tcpSockaddr(a)
		if err != nil {
			return -1, err
		}
	default:
		return -1, fmt.Errorf("listener: unknown address type %T", addr)
	}

	fd, err := unix.Socket(family, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, fmt.Errorf("unix.Socket(): %w", err)
	}
	unix.CloseOnExec(fd)

	if err := unix.Connect(fd, sa); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("unix.Connect(%s): %w", addr.String(), err)
	}
	return fd, nil
}

func tcpSockaddr(a address.TCPAddr) (unix.Sockaddr, int, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", a.String())
	if err != nil {
		return nil, 0, fmt.Errorf("net.ResolveTCPAddr(tcp, %s): %w", a.String(), err)
	}

	ip := tcpAddr.IP
	if ip == nil {
		ip = net.IPv4zero
	}
	if ip4 := ip.To4(); ip4 != nil {
		sa := &unix.SockaddrInet4{Port: tcpAddr.Port}
		copy(sa.Addr[:], ip4)
		return sa, unix.AF_INET, nil
	}

	sa := &unix.SockaddrInet6{Port: tcpAddr.Port}
	copy(sa.Addr[:], ip.To16())
	return sa, unix.AF_INET6, nil
}

func sockaddrToAddr(sa unix.Sockaddr) address.Addr {
	switch s := sa.(type) {
	case *unix.SockaddrInet4:
		return address.TCPAddr{Host: net.IP(s.Addr[:]).String(), Port: s.Port}
	case *unix.SockaddrInet6:
		return address.TCPAddr{Host: net.IP(s.Addr[:]).String(), Port: s.Port}
	case *unix.SockaddrUnix:
		return address.UnixAddr{Path: s.Name}
	}
	return nil
}

func closeFD(fd int) {
	unix.Close(fd)
}

func removePath(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("os.Remove(%s): %w", path, err)
	}
	return nil
}
