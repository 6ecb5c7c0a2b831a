package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"seasonpass/internal/logging"
	"seasonpass/internal/state"
)

func newResetCommand(ctx *commandContext) *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget watched seasons and unlock timers",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return errors.New("reset erases all progress; rerun with --yes to confirm")
			}
			ps, err := ctx.openState(true)
			if err != nil {
				return err
			}
			defer ps.Close()

			rctx := cmd.Context()
			ps.store.SaveProgress(rctx, state.NewProgress(ps.catalog.Units()))
			ps.store.SaveUnlockState(rctx, state.NewUnlockState(ps.policy.GatedUnits()))
			ps.logger.Info("progress reset", logging.String(logging.FieldEventType, "progress_reset"))
			fmt.Fprintln(cmd.OutOrStdout(), "Progress reset")
			return nil
		},
	}
	cmd.Flags().BoolVar(&confirm, "yes", false, "Confirm the reset")
	return cmd
}
