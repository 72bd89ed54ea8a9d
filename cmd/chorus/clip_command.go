package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"chorus/internal/api"
	"chorus/internal/clips"
	"chorus/internal/fetch"
)

func newClipCommand(ctx *commandContext) *cobra.Command {
	clipCmd := &cobra.Command{
		Use:   "clip",
		Short: "Manage hand-picked preview clips",
	}
	clipCmd.AddCommand(newClipListCommand(ctx))
	clipCmd.AddCommand(newClipShowCommand(ctx))
	clipCmd.AddCommand(newClipSetCommand(ctx))
	clipCmd.AddCommand(newClipRemoveCommand(ctx))
	return clipCmd
}

func withClips(ctx *commandContext, fn func(*clips.Store) error) error {
	store, err := ctx.openClips()
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func newClipListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved clips",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClips(ctx, func(store *clips.Store) error {
				list, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, api.ClipListResponse{Clips: api.FromClips(list)})
				}
				out := cmd.OutOrStdout()
				if len(list) == 0 {
					fmt.Fprintln(out, "No clips saved")
					return nil
				}
				rows := make([][]string, 0, len(list))
				for _, clip := range list {
					rows = append(rows, clipRow(clip))
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Identifier", "Start (s)", "End (s)", "Length (s)", "Updated"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print clips as JSON")
	return cmd
}

func newClipShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <identifier>",
		Short: "Show the saved clip for an identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := fetch.NormalizeIdentifier(args[0])
			if err != nil {
				return err
			}
			return withClips(ctx, func(store *clips.Store) error {
				clip, ok, err := store.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("no clip saved for %s", id)
				}
				if jsonOut {
					return writeJSON(cmd, api.FromClip(clip))
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatClip(clip))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the clip as JSON")
	return cmd
}

func newClipSetCommand(ctx *commandContext) *cobra.Command {
	var (
		start   float64
		end     float64
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "set <identifier>",
		Short: "Save a clip; the length is kept between 15 and 35 seconds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := fetch.NormalizeIdentifier(args[0])
			if err != nil {
				return err
			}
			var endPtr *float64
			if cmd.Flags().Changed("end") {
				endPtr = &end
			}
			return withClips(ctx, func(store *clips.Store) error {
				clip, err := store.Set(cmd.Context(), id, start, endPtr)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, api.FromClip(clip))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", formatClip(clip))
				return nil
			})
		},
	}
	cmd.Flags().Float64Var(&start, "start", 0, "Clip start in seconds")
	cmd.Flags().Float64Var(&end, "end", 0, "Clip end in seconds (default start+20)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the saved clip as JSON")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}

func newClipRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <identifier>",
		Short: "Remove the saved clip for an identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := fetch.NormalizeIdentifier(args[0])
			if err != nil {
				return err
			}
			return withClips(ctx, func(store *clips.Store) error {
				deleted, err := store.Delete(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !deleted {
					fmt.Fprintf(cmd.OutOrStdout(), "No clip saved for %s\n", id)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed clip for %s\n", id)
				return nil
			})
		},
	}
}

func clipRow(clip clips.Clip) []string {
	return []string{
		clip.Identifier,
		fmt.Sprintf("%.2f", clip.StartTime),
		fmt.Sprintf("%.2f", clip.EndTime),
		fmt.Sprintf("%.2f", clip.Duration),
		humanize.Time(clip.UpdatedAt),
	}
}

func formatClip(clip clips.Clip) string {
	return fmt.Sprintf("%s: %.2fs to %.2fs (%.2fs)", clip.Identifier, clip.StartTime, clip.EndTime, clip.Duration)
}
