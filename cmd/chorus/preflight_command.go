package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"chorus/internal/config"
	"chorus/internal/preflight"
)

func newPreflightCommand(ctx *commandContext) *cobra.Command {
	var network bool

	cmd := &cobra.Command{
		Use:   "preflight",
		Short: "Check directories, disk space and external tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			results := preflight.RunAll(cmd.Context(), cfg)
			if network {
				if origin := sourceOrigin(cfg); origin != "" {
					results = append(results, preflight.CheckHTTP(cmd.Context(), "Source site", origin))
				}
			}

			printer := newCheckPrinter(cmd.OutOrStdout())
			printer.header("Preflight")
			for _, r := range results {
				printer.result(r)
			}

			if failed := preflight.Failed(results); len(failed) > 0 {
				names := make([]string, 0, len(failed))
				for _, r := range failed {
					names = append(names, r.Name)
				}
				return fmt.Errorf("preflight failed: %s", strings.Join(names, ", "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&network, "network", false, "Also check that the source site is reachable")
	return cmd
}

// sourceOrigin reduces fetch.url_template to scheme://host.
func sourceOrigin(cfg *config.Config) string {
	u, err := url.Parse(cfg.SourceURL("probe"))
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
