package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"seasonpass/internal/unlock"
)

func newHashCodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "hash-code <code>",
		Short:       "Print a bcrypt hash for unlock.gates code_bcrypt",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := unlock.HashCode(args[0])
			if err != nil {
				return fmt.Errorf("hash code: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
