// Package config carries the settings shared by the CLI commands.
package config

import (
	"fmt"

	"mwieser/conduit/pkg/address"
	"mwieser/conduit/pkg/log"
)

// Shared holds the options common to listen and connect.
type Shared struct {
	Addr    string // host:port for TCP, anything else is a socket path
	Key     string // shared handshake secret, empty disables authentication
	LogFile string // tee connection traffic into this file
	Verbose bool

	Logger *log.Logger
}

// Validate reports all configuration problems at once.
func (c *Shared) Validate() []error {
	var errs []error

	if c.Addr == "" {
		errs = append(errs, fmt.Errorf("an address is required ('host:port' or a socket path)"))
	} else if _, err := address.Parse(c.Addr); err != nil {
		errs = append(errs, err)
	}

	return errs
}

// GetAddr parses the configured address.
func (c *Shared) GetAddr() (address.Addr, error) {
	return address.Parse(c.Addr)
}

// GetKey returns the handshake key, nil when authentication is disabled.
func (c *Shared) GetKey() []byte {
	if c.Key == "" {
		return nil
	}
	return []byte(c.Key)
}
