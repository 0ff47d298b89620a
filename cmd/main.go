package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"mwieser/conduit/cmd/connect"
	"mwieser/conduit/cmd/listen"
	"mwieser/conduit/cmd/version"
)

func main() {
	app := &cli.Command{
		Name:  "conduit",
		Usage: "framed local IPC connections with shared-key authentication",
		Commands: []*cli.Command{
			listen.GetCommand(),
			connect.GetCommand(),
			version.GetCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Printf("[!] Error: %s\n", err)
	}
}
