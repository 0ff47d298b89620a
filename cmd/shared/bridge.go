package shared

import (
	"fmt"
	"io"
	"os"

	"mwieser/conduit/pkg/config"
	"mwieser/conduit/pkg/conn"
	"mwieser/conduit/pkg/mux"
	"mwieser/conduit/pkg/mux/msg"
	"mwieser/conduit/pkg/pipeio"

	"mwieser/conduit/pkg/log"
)

// Bridge splits c into control and data channels, exchanges hello
// messages, and pipes the data channel to the terminal until either
// side ends. The accepting side of the pairing must set server.
func Bridge(cfg *config.Shared, logger *log.Logger, c *conn.Connection, server bool) error {
	defer c.Close()

	var ctl, data io.ReadWriteCloser
	var err error
	if server {
		ctl, data, err = mux.AcceptChannels(c.Handle())
	} else {
		ctl, data, err = mux.OpenChannels(c.Handle())
	}
	if err != nil {
		return fmt.Errorf("establishing channels: %w", err)
	}
	defer ctl.Close()

	// Wrap before deferring so the close reaches the log file too.
	if cfg.LogFile != "" {
		logged, err := log.NewLoggedRWC(data, cfg.LogFile)
		if err != nil {
			data.Close()
			return fmt.Errorf("enabling traffic logging: %w", err)
		}
		data = logged
	}
	defer data.Close()

	if err := exchangeHello(ctl, logger, server); err != nil {
		return err
	}

	stdio := pipeio.NewStdio()
	pipeio.Pipe(stdio, data, func(err error) {
		logger.VerboseMsg("piping: %s", err)
	})
	return nil
}

func exchangeHello(ctl io.ReadWriter, logger *log.Logger, server bool) error {
	if server {
		m, err := msg.Recv(ctl)
		if err != nil {
			return fmt.Errorf("receiving hello: %w", err)
		}
		hello, ok := m.(msg.Hello)
		if !ok {
			return fmt.Errorf("unexpected control message %s", m.MsgType())
		}
		logger.VerboseMsg("Peer identified as %s", hello.ID)
		return nil
	}

	hostname, _ := os.Hostname()
	hello := msg.Hello{ID: fmt.Sprintf("%s-%d", hostname, os.Getpid())}
	if err := msg.Send(ctl, hello); err != nil {
		return fmt.Errorf("sending hello: %w", err)
	}
	return nil
}
