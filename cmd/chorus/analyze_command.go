package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"chorus/internal/analysis"
	"chorus/internal/api"
	"chorus/internal/media/waveform"
	"chorus/internal/preview"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var duration float64
	var jsonOut bool
	var noCache bool

	cmd := &cobra.Command{
		Use:   "analyze <identifier>",
		Short: "Fetch a track and print its preview start time",
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

			var cache preview.Cache
			if !noCache {
				store, err := ctx.openCache()
				if err != nil {
					return err
				}
				if store != nil {
					defer store.Close()
					cache = store
				}
			}

			svc := preview.NewFromConfig(cfg, cache, logger)
			resp := svc.Analyze(cmd.Context(), api.Request{Identifier: args[0], RequestedDuration: duration})
			if jsonOut {
				if err := writeJSON(cmd, resp); err != nil {
					return err
				}
			} else if resp.Status == api.StatusSuccess {
				printResponse(cmd, resp)
			}
			if resp.Status != api.StatusSuccess {
				return fmt.Errorf("analyze %s: %s", resp.Identifier, resp.Error)
			}
			return nil
		},
	}

	cmd.Flags().Float64VarP(&duration, "duration", "d", 0, "Preview length in seconds (default analysis.default_duration)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the API response as JSON")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the result cache")
	return cmd
}

func printResponse(cmd *cobra.Command, resp api.Response) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: start %.2fs (window %gs, %s", resp.Identifier, resp.StartTime, resp.RequestedDuration, resp.Outcome)
	if resp.Reason != "" {
		fmt.Fprintf(out, ": %s", resp.Reason)
	}
	if resp.Cached {
		fmt.Fprint(out, ", cached")
	}
	fmt.Fprintln(out, ")")
}

type fileAnalysis struct {
	Path              string  `json:"path"`
	StartTime         float64 `json:"start_time"`
	RequestedDuration float64 `json:"requested_duration"`
	TrackDuration     float64 `json:"track_duration,omitempty"`
	Outcome           string  `json:"outcome"`
	Reason            string  `json:"reason,omitempty"`
}

func newAnalyzeFileCommand(ctx *commandContext) *cobra.Command {
	var duration float64
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "analyze-file <path>",
		Short: "Print the preview start time of a local audio file",
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
			if duration == 0 {
				duration = cfg.Analysis.DefaultDuration
			}
			if duration < 0 {
				return errors.New("--duration must be positive")
			}

			loader := waveform.NewLoader(cfg.Analysis.SampleRate, cfg.Analysis.FFmpegBinary, logger)
			result := analysis.NewAnalyzer(logger).Analyze(cmd.Context(), loader.Source(args[0]), duration)
			report := fileAnalysis{
				Path:              args[0],
				StartTime:         result.StartTime,
				RequestedDuration: duration,
				TrackDuration:     result.Duration,
				Outcome:           string(result.Outcome),
				Reason:            result.Reason,
			}
			if jsonOut {
				return writeJSON(cmd, report)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: start %.2fs (window %gs, %s", report.Path, report.StartTime, report.RequestedDuration, report.Outcome)
			if report.Reason != "" {
				fmt.Fprintf(out, ": %s", report.Reason)
			}
			fmt.Fprintln(out, ")")
			return nil
		},
	}

	cmd.Flags().Float64VarP(&duration, "duration", "d", 0, "Preview length in seconds (default analysis.default_duration)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the result as JSON")
	return cmd
}
