// Package shared provides the flag definitions and helpers common to
// the conduit commands.
package shared

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

const categoryCommon = "common"

// AddrFlag is the name of the flag for the endpoint address.
const AddrFlag = "addr"

// KeyFlag is the name of the flag for the handshake key.
const KeyFlag = "key"

// LogFileFlag is the name of the flag for traffic logging.
const LogFileFlag = "log"

// VerboseFlag is the name of the flag to enable verbose logging.
const VerboseFlag = "verbose"

// GetCommonFlags returns the flags used by both listen and connect.
func GetCommonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     AddrFlag,
			Aliases:  []string{"a"},
			Usage:    "Endpoint address: 'host:port' for TCP, anything else is a unix socket path",
			Category: categoryCommon,
			Required: true,
		},
		&cli.StringFlag{
			Name:     KeyFlag,
			Aliases:  []string{"k"},
			Usage:    "Shared secret for the handshake, use '-' to be prompted, leave empty to disable authentication",
			Category: categoryCommon,
			Value:    "",
			Required: false,
		},
		&cli.StringFlag{
			Name:     LogFileFlag,
			Aliases:  []string{"l"},
			Usage:    "Log all connection traffic to this file",
			Category: categoryCommon,
			Value:    "",
			Required: false,
		},
		&cli.BoolFlag{
			Name:     VerboseFlag,
			Aliases:  []string{"v"},
			Usage:    "Verbose logging",
			Category: categoryCommon,
			Value:    false,
			Required: false,
		},
	}
}

// ResolveKey turns the --key flag value into the handshake key,
// prompting on the terminal when the value is "-".
func ResolveKey(value string) (string, error) {
	if value != "-" {
		return value, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("cannot prompt for key: stdin is not a terminal")
	}

	fmt.Fprint(os.Stderr, "Key: ")
	key, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("term.ReadPassword(): %w", err)
	}
	return string(key), nil
}
