// Package address describes listener endpoints. Two families exist: TCP
// addresses on the loopback or another interface, and unix domain socket
// paths on the filesystem. The family of a parsed address is inferred
// from its shape, host:port versus path.
package address

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"

	"mwieser/conduit/pkg/platform"
)

// Family names a transport address family.
type Family string

const (
	// TCP is the network family, a host and a port.
	TCP Family = "tcp"

	// Unix is the local family, a filesystem socket path.
	Unix Family = "unix"
)

// ErrUnsupportedFamily is returned when the platform cannot serve a family.
var ErrUnsupportedFamily = errors.New("address: family not supported on this platform")

// Addr is the tagged union of the two address forms.
type Addr interface {
	Family() Family
	String() string
}

// TCPAddr is a network endpoint.
type TCPAddr struct {
	Host string
	Port int
}

func (a TCPAddr) Family() Family {
	return TCP
}

func (a TCPAddr) String() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

// UnixAddr is a filesystem socket path.
type UnixAddr struct {
	Path string
}

func (a UnixAddr) Family() Family {
	return Unix
}

func (a UnixAddr) String() string {
	return a.Path
}

// DefaultFamily prefers unix sockets where the platform has them.
func DefaultFamily() Family {
	if platform.Get().UnixSockets {
		return Unix
	}
	return TCP
}

// Validate reports whether the family can be served in this environment.
func Validate(f Family) error {
	switch f {
	case TCP:
		return nil
	case Unix:
		if platform.Get().UnixSockets {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFamily, f)
}

var arbitraryCounter atomic.Uint64

// Arbitrary returns a free address for the given family. TCP addresses
// bind to an ephemeral loopback port; unix paths are unique per call,
// scoped to the temp directory.
func Arbitrary(f Family) (Addr, error) {
	switch f {
	case TCP:
		return TCPAddr{Host: "localhost", Port: 0}, nil
	case Unix:
		name := fmt.Sprintf("conduit-%d-%d.sock", os.Getpid(), arbitraryCounter.Add(1))
		return UnixAddr{Path: filepath.Join(os.TempDir(), name)}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFamily, f)
}

// Parse turns a string into an address, inferring the family from its
// shape. Anything that is not a valid host:port is taken as a socket path.
func Parse(s string) (Addr, error) {
	if s == "" {
		return nil, errors.New("address: empty address")
	}

	// Path-shaped strings are socket paths even when a colon would let
	// them split as host:port, e.g. "/tmp/app:1".
	if strings.ContainsRune(s, '/') || strings.HasPrefix(s, ".") {
		return UnixAddr{Path: s}, nil
	}

	if host, port, err := net.SplitHostPort(s); err == nil {
		p, err := strconv.Atoi(port)
		if err == nil && p >= 0 && p <= 65535 {
			return TCPAddr{Host: host, Port: p}, nil
		}
	}

	return UnixAddr{Path: s}, nil
}
