// Package mux splits one duplex connection into a control channel and a
// data channel so a single accepted handle can carry coordination
// messages next to a payload stream. Both sides must agree on who opens
// and who accepts.
package mux

import (
	"fmt"
	"io"
	"log"
	"net"

	"github.com/hashicorp/yamux"
)

// OpenChannels establishes the client side of a session over rwc and
// opens the control and data channels, in that order.
func OpenChannels(rwc io.ReadWriteCloser) (net.Conn, net.Conn, error) {
	session, err := yamux.Client(rwc, config())
	if err != nil {
		return nil, nil, fmt.Errorf("yamux.Client(): %w", err)
	}

	ctl, err := session.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("session.Open(), ctl: %w", err)
	}

	data, err := session.Open()
	if err != nil {
		ctl.Close()
		return nil, nil, fmt.Errorf("session.Open(), data: %w", err)
	}

	return ctl, data, nil
}

// AcceptChannels establishes the server side of a session over rwc and
// accepts the control and data channels, in that order.
func AcceptChannels(rwc io.ReadWriteCloser) (net.Conn, net.Conn, error) {
	session, err := yamux.Server(rwc, config())
	if err != nil {
		return nil, nil, fmt.Errorf("yamux.Server(): %w", err)
	}

	ctl, err := session.Accept()
	if err != nil {
		return nil, nil, fmt.Errorf("session.Accept(), ctl: %w", err)
	}

	data, err := session.Accept()
	if err != nil {
		ctl.Close()
		return nil, nil, fmt.Errorf("session.Accept(), data: %w", err)
	}

	return ctl, data, nil
}

func config() *yamux.Config {
	cfg := yamux.DefaultConfig()
	cfg.LogOutput = nil
	cfg.Logger = log.New(io.Discard, "", log.LstdFlags) // keep yamux quiet on the console
	return cfg
}
