package main

import (
	"bufio"
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"seasonpass/internal/clock"
	"seasonpass/internal/experience"
	"seasonpass/internal/logging"
)

func newPlayCommand(ctx *commandContext) *cobra.Command {
	var blockAutoplay bool

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Run the experience in this terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			lock, err := acquirePlayerLock(cfg)
			if err != nil {
				return err
			}
			defer lock.Unlock() //nolint:errcheck

			loop := clock.NewLoop()
			out := cmd.OutOrStdout()
			p := newPlayer(cfg, out, shouldColorize(out))
			exp, logger, err := ctx.openExperience(cmd.Context(), loop,
				experience.WithHooks(p.hooks()),
				experience.WithBlockedAutoplay(blockAutoplay))
			if err != nil {
				return err
			}
			defer exp.Close()
			p.exp = exp
			p.quit = loop.Close

			logger.Info("player started",
				logging.String(logging.FieldEventType, "player_started"),
				logging.String("lock", lock.Path()),
				logging.Int("seasons", exp.Catalog().Units()))
			loop.Post(p.greet)
			go readCommands(cmd.InOrStdin(), loop, p)

			err = loop.Run(cmd.Context())
			logger.Info("player stopped", logging.String(logging.FieldEventType, "player_stopped"))
			if errors.Is(err, clock.ErrLoopClosed) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&blockAutoplay, "block-autoplay", false, "Require an explicit play command when a season opens")
	return cmd
}

// readCommands feeds stdin lines onto the loop and closes it at EOF.
func readCommands(r io.Reader, loop *clock.Loop, p *player) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if !loop.Post(func() { p.dispatch(line) }) {
			return
		}
	}
	loop.Post(loop.Close)
}
