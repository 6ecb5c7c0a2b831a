package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"seasonpass/internal/clock"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, storage, and content",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			fmt.Fprintln(out, renderSectionHeader("Configuration", colorize))
			path := ctx.configPath
			if !ctx.configExists {
				path += " (missing, defaults used)"
			}
			fmt.Fprintln(out, renderStatusLine("Config", statusInfo, path, colorize))
			fmt.Fprintln(out, renderStatusLine("Storage", statusInfo, fmt.Sprintf("%s in %s", cfg.Storage.Backend, cfg.Paths.StateDir), colorize))
			fmt.Fprintln(out, renderStatusLine("Unlock mode", statusInfo, cfg.Unlock.Mode, colorize))

			exp, _, err := ctx.openExperience(cmd.Context(), clock.NewLoop())
			if err != nil {
				fmt.Fprintln(out, renderStatusLine("Content", statusError, err.Error(), colorize))
				return err
			}
			defer exp.Close()
			fmt.Fprintln(out, renderStatusLine("Content", statusOK,
				fmt.Sprintf("%d seasons, %d questions", exp.Catalog().Units(), len(exp.Catalog().Questions)), colorize))

			fmt.Fprintln(out, renderSectionHeader("Stages", colorize))
			healthy := true
			for _, h := range exp.Health(cmd.Context()) {
				if h.Ready {
					fmt.Fprintln(out, renderStatusLine(h.Name, statusOK, "", colorize))
					continue
				}
				healthy = false
				fmt.Fprintln(out, renderStatusLine(h.Name, statusError, h.Detail, colorize))
			}
			if !healthy {
				return fmt.Errorf("one or more stages are not ready")
			}
			return nil
		},
	}
}
