package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"seasonpass/internal/unlock"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which seasons are open, waiting, or watched",
		RunE: func(cmd *cobra.Command, args []string) error {
			ps, err := ctx.openState(false)
			if err != nil {
				return err
			}
			defer ps.Close()

			rctx := cmd.Context()
			progress := ps.store.LoadProgress(rctx)
			unlocks := ps.store.LoadUnlockState(rctx)
			statuses := ps.policy.Statuses(progress, unlocks, ps.catalog.Units(), time.Now())

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintln(out, renderSeasonTable(ps.catalog, statuses, colorize))
			for _, st := range statuses {
				if st.Availability == unlock.LockedWaiting && st.Hint != "" {
					fmt.Fprintf(out, "Season %d: %s\n", st.Unit, st.Hint)
				}
			}
			return nil
		},
	}
}
