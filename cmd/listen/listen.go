package listen

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"mwieser/conduit/cmd/shared"
	"mwieser/conduit/pkg/config"
	"mwieser/conduit/pkg/listener"
	"mwieser/conduit/pkg/log"
)

// GetCommand returns the listen subcommand.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:  "listen",
		Usage: "Wait for one peer and bridge the connection to the terminal",
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

	l, err := listener.Listen(addr, listener.WithAuthKey(cfg.GetKey()))
	if err != nil {
		return fmt.Errorf("listener.Listen(%s): %w", addr, err)
	}
	defer l.Close()

	log.InfoMsg("Listening on %s\n", l.Addr())

	c, err := l.Accept()
	if err != nil {
		return fmt.Errorf("accepting connection: %w", err)
	}
	log.InfoMsg("New connection from %s\n", l.LastAccepted())

	return shared.Bridge(cfg, cfg.Logger, c, true)
}
