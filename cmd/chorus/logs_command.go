package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"chorus/internal/logging"
	"chorus/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		lines      int
		follow     bool
		identifier string
		requestID  string
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent records from the daemon log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := filepath.Join(cfg.Paths.LogDir, logging.LogFileName)
			opts := logs.Options{
				Offset: -1,
				Limit:  lines,
				Filter: logs.Filter{Identifier: identifier, CorrelationID: requestID},
			}
			out := cmd.OutOrStdout()
			for {
				result, err := logs.Tail(cmd.Context(), path, opts)
				if err != nil {
					if cmd.Context().Err() != nil {
						return nil
					}
					return fmt.Errorf("read %s: %w", path, err)
				}
				for _, line := range result.Lines {
					fmt.Fprintln(out, line)
				}
				if !follow {
					return nil
				}
				opts.Offset = result.Offset
				opts.Wait = 30 * time.Second
			}
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of records to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new records")
	cmd.Flags().StringVar(&identifier, "identifier", "", "Only show records for this track identifier")
	cmd.Flags().StringVar(&requestID, "request-id", "", "Only show records for this request id")
	return cmd
}
