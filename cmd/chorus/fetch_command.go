package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"chorus/internal/fetch"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <identifier>",
		Short: "Download the audio for an identifier into media_dir",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.cliLogger()
			if err != nil {
				return err
			}
			path, err := fetch.New(fetch.OptionsFromConfig(cfg), logger).Fetch(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("fetch %s: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
