package connect

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"mwieser/conduit/cmd/shared"
	"mwieser/conduit/pkg/config"
	"mwieser/conduit/pkg/listener"
	"mwieser/conduit/pkg/log"
)

// GetCommand returns the connect subcommand.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:  "connect",
		Usage: "Connect to a listener and bridge the connection to the terminal",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := &config.Shared{
				Addr:    cmd.String(shared.AddrFlag),
				Key:     cmd.String(shared.KeyFlag),
				LogFile: cmd.String(shared.LogFileFlag),
				Verbose: cmd.Bool(shared.VerboseFlag),
			}

			if errs := cfg.Validate(); len(errs) > 0 {
				log.ErrorMsg("Argument validation errors:\n")
				for _, err := range errs {
					log.ErrorMsg(" - %s\n", err)
				}
				return fmt.Errorf("exiting")
			}

			key, err := shared.ResolveKey(cfg.Key)
			if err != nil {
				return err
			}
			cfg.Key = key
			cfg.Logger = log.NewLogger(cfg.Verbose)

			return run(cfg)
		},
		Flags: shared.GetCommonFlags(),
	}
}

func run(cfg *config.Shared) error {
	addr, err := cfg.GetAddr()
	if err != nil {
		return err
	}

	log.InfoMsg("Connecting to %s\n", addr)

	c, err := listener.Dial(addr, listener.WithAuthKey(cfg.GetKey()))
	if err != nil {
		return fmt.Errorf("listener.Dial(%s): %w", addr, err)
	}

	return shared.Bridge(cfg, cfg.Logger, c, false)
}
