package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"chorus/internal/daemon"
	"chorus/internal/logging"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if bind != "" {
				cfg.Paths.APIBind = bind
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			d, err := daemon.New(cfg, logger)
			if err != nil {
				return fmt.Errorf("create daemon: %w", err)
			}
			defer d.Close()
			return d.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Override paths.api_bind (host:port)")
	return cmd
}
