package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"seasonpass/internal/content"
	"seasonpass/internal/playback"
)

func newCaptionsCommand(ctx *commandContext) *cobra.Command {
	captionsCmd := &cobra.Command{
		Use:   "captions",
		Short: "Inspect and export season captions",
	}
	captionsCmd.AddCommand(newCaptionsShowCommand(ctx))
	captionsCmd.AddCommand(newCaptionsExportCommand(ctx))
	return captionsCmd
}

func loadSeason(ctx *commandContext, arg string) (content.Season, float64, error) {
	unit, err := strconv.Atoi(arg)
	if err != nil {
		return content.Season{}, 0, fmt.Errorf("season must be a number: %q", arg)
	}
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return content.Season{}, 0, err
	}
	catalog, err := content.FromConfig(cfg)
	if err != nil {
		return content.Season{}, 0, fmt.Errorf("load catalog: %w", err)
	}
	season, ok := catalog.Season(unit)
	if !ok {
		return content.Season{}, 0, fmt.Errorf("season %d does not exist (catalog has %d)", unit, catalog.Units())
	}
	end := playback.ResolveCompletionTime(season.AudioSeconds, season.PlaybackCaptions(), cfg.Playback.GraceSeconds)
	return season, end, nil
}

func newCaptionsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <season>",
		Short: "List a season's captions with their start times",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			season, end, err := loadSeason(ctx, args[0])
			if err != nil {
				return err
			}
			captions := season.PlaybackCaptions()
			rows := make([][]string, 0, len(captions))
			for i, c := range captions {
				rows = append(rows, []string{strconv.Itoa(i + 1), playback.FormatClock(c.Time), c.Text})
			}
			title := fmt.Sprintf("Season %d: %s (ends %s)", season.Number, season.Title, playback.FormatClock(end))
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(title, []column{
				{header: "#", right: true},
				{header: "At", right: true},
				{header: "Text"},
			}, rows))
			return nil
		},
	}
}

func newCaptionsExportCommand(ctx *commandContext) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export <season>",
		Short: "Write a season's captions as SubRip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			season, end, err := loadSeason(ctx, args[0])
			if err != nil {
				return err
			}
			target := strings.TrimSpace(outPath)
			if target == "" {
				return playback.FormatSRT(cmd.OutOrStdout(), season.PlaybackCaptions(), end)
			}
			file, err := os.Create(target)
			if err != nil {
				return fmt.Errorf("create %s: %w", target, err)
			}
			if err := playback.FormatSRT(file, season.PlaybackCaptions(), end); err != nil {
				_ = file.Close()
				return fmt.Errorf("write captions: %w", err)
			}
			if err := file.Close(); err != nil {
				return fmt.Errorf("close %s: %w", target, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d captions to %s\n", len(season.Captions), target)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Destination file (default stdout)")
	return cmd
}
