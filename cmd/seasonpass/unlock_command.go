package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"seasonpass/internal/flow"
	"seasonpass/internal/logging"
)

func newUnlockCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "unlock <season> <code>",
		Short: "Open a waiting season with its override code",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			unit, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("season must be a number: %q", args[0])
			}
			ps, err := ctx.openState(true)
			if err != nil {
				return err
			}
			defer ps.Close()

			rctx := cmd.Context()
			progress := ps.store.LoadProgress(rctx)
			unlocks := ps.store.LoadUnlockState(rctx)
			next, err := flow.RedeemCode(ps.policy, progress, unlocks, unit, args[1], time.Now())
			if err != nil {
				return err
			}
			ps.store.SaveUnlockState(rctx, next)
			ps.logger.Info("season unlocked by code",
				logging.String(logging.FieldEventType, "code_accepted"),
				logging.Int(logging.FieldUnit, unit))
			fmt.Fprintf(cmd.OutOrStdout(), "Season %d is open\n", unit)
			return nil
		},
	}
}
