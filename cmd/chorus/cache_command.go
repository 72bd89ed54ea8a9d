package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"chorus/internal/api"
	"chorus/internal/fetch"
	"chorus/internal/resultcache"
)

var errCacheDisabled = errors.New("result cache is disabled (result_cache.enabled = false)")

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage cached preview offsets",
	}
	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheRemoveCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	return cacheCmd
}

func withCache(ctx *commandContext, fn func(*resultcache.Store) error) error {
	store, err := ctx.openCache()
	if err != nil {
		return err
	}
	if store == nil {
		return errCacheDisabled
	}
	defer store.Close()
	return fn(store)
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached results, most recently used first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(ctx, func(store *resultcache.Store) error {
				entries, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, api.CacheListResponse{
						Entries:    api.FromCacheEntries(entries),
						MaxEntries: store.MaxEntries(),
					})
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "Result cache is empty")
					return nil
				}
				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					rows = append(rows, []string{
						entry.Identifier,
						strconv.FormatFloat(entry.RequestedDuration, 'g', -1, 64),
						fmt.Sprintf("%.2f", entry.StartTime),
						entry.Outcome,
						entry.Reason,
						humanize.Time(entry.AccessedAt),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Identifier", "Window (s)", "Start (s)", "Outcome", "Reason", "Last used"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft, alignLeft, alignLeft},
				))
				fmt.Fprintf(out, "%d of %d entries\n", len(entries), store.MaxEntries())
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print entries as JSON")
	return cmd
}

func newCacheRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <identifier>",
		Short: "Remove every cached result for an identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := fetch.NormalizeIdentifier(args[0])
			if err != nil {
				return err
			}
			return withCache(ctx, func(store *resultcache.Store) error {
				removed, err := store.Remove(cmd.Context(), id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached result(s) for %s\n", removed, id)
				return nil
			})
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached result",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(ctx, func(store *resultcache.Store) error {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d cached result(s)\n", removed)
				return nil
			})
		},
	}
}
