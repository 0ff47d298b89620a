// Package listener pairs listening endpoints with dialing clients over
// local stream transports. Accepted and dialed handles are wrapped into
// framed connections, with an optional shared-key handshake run before
// a connection is handed to the caller.
package listener

import (
	"errors"
	"fmt"
	"sync"

	"mwieser/conduit/pkg/address"
	"mwieser/conduit/pkg/auth"
	"mwieser/conduit/pkg/codec"
	"mwieser/conduit/pkg/conn"
	"mwieser/conduit/pkg/handle"
)

// ErrClosed is returned by Accept after the listener has been closed.
var ErrClosed = errors.New("listener: listener is closed")

// Listener is a bound, listening endpoint. Close releases the socket
// and, for unix addresses, removes the path from the filesystem exactly
// once no matter how often Close is called.
type Listener struct {
	h            *handle.Handle
	addr         address.Addr
	lastAccepted address.Addr

	authKey []byte
	codec   codec.Codec

	unlink     func() error
	unlinkOnce sync.Once
}

// Listen binds a stream socket at addr. A nil addr picks an arbitrary
// free address of the platform's default family.
func Listen(addr address.Addr, opts ...Option) (*Listener, error) {
	o := newOptions(opts)

	family := address.DefaultFamily()
	if addr != nil {
		family = addr.Family()
	}
	if err := address.Validate(family); err != nil {
		return nil, err
	}
	if addr == nil {
		var err error
		addr, err = address.Arbitrary(family)
		if err != nil {
			return nil, err
		}
	}

	fd, bound, err := bindAndListen(addr, o.backlog)
	if err != nil {
		return nil, err
	}

	h, err := handle.FromRaw(fd, true, true)
	if err != nil {
		closeFD(fd)
		return nil, err
	}

	l := &Listener{
		h:       h,
		addr:    bound,
		authKey: o.authKey,
		codec:   o.codec,
	}
	if ua, ok := bound.(address.UnixAddr); ok {
		l.unlink = func() error { return removePath(ua.Path) }
	}
	return l, nil
}

// Addr returns the bound address, with the real port resolved for TCP
// listeners bound to port 0.
func (l *Listener) Addr() address.Addr {
	return l.addr
}

// LastAccepted returns the peer address of the most recent Accept.
func (l *Listener) LastAccepted() address.Addr {
	return l.lastAccepted
}

// Accept takes one pending connection and wraps it. With an auth key
// configured the listener first delivers its challenge and then answers
// the peer's; a failed handshake closes the new handle and returns
// auth.ErrAuthentication.
func (l *Listener) Accept() (*conn.Connection, error) {
	if l.h.Closed() {
		return nil, ErrClosed
	}

	fd, peer, err := acceptFD(l.h)
	if err != nil {
		return nil, err
	}

	h, err := handle.FromRaw(fd, true, true)
	if err != nil {
		closeFD(fd)
		return nil, err
	}

	c := conn.New(h, l.codec)
	if len(l.authKey) > 0 {
		if err := auth.DeliverChallenge(c, l.authKey); err != nil {
			c.Close()
			return nil, err
		}
		if err := auth.AnswerChallenge(c, l.authKey); err != nil {
			c.Close()
			return nil, err
		}
	}

	l.lastAccepted = peer
	return c, nil
}

// Close releases the listening socket and unlinks a unix socket path.
// Safe to call more than once; the unlink runs at most once.
func (l *Listener) Close() error {
	err := l.h.Close()
	if l.unlink != nil {
		l.unlinkOnce.Do(func() {
			if uerr := l.unlink(); uerr != nil && err == nil {
				err = uerr
			}
		})
	}
	return err
}

// Dial connects to a listener at addr. With an auth key configured the
// client first answers the listener's challenge and then delivers its
// own, mirroring the accept side.
func Dial(addr address.Addr, opts ...Option) (*conn.Connection, error) {
	o := newOptions(opts)

	if addr == nil {
		return nil, errors.New("listener: nil address")
	}
	if err := address.Validate(addr.Family()); err != nil {
		return nil, err
	}

	fd, err := connectFD(addr)
	if err != nil {
		return nil, err
	}

	h, err := handle.FromRaw(fd, true, true)
	if err != nil {
		closeFD(fd)
		return nil, err
	}

	c := conn.New(h, o.codec)
	if len(o.authKey) > 0 {
		if err := auth.AnswerChallenge(c, o.authKey); err != nil {
			c.Close()
			return nil, fmt.Errorf("answering challenge: %w", err)
		}
		if err := auth.DeliverChallenge(c, o.authKey); err != nil {
			c.Close()
			return nil, fmt.Errorf("delivering challenge: %w", err)
		}
	}
	return c, nil
}
