package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"curator/internal/lockfile"
	"curator/internal/logging"
)

func newLocksCommand(ctx *commandContext) *cobra.Command {
	locksCmd := &cobra.Command{
		Use:   "locks",
		Short: "Cache lock utilities",
	}
	locksCmd.AddCommand(newLocksClearCommand(ctx))
	return locksCmd
}

func newLocksClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove stale lock tokens from the cache directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}

			swept, err := lockfile.SweepStale(cfg.Paths.CacheDir, logging.NewComponentLogger(logger, "locks"))
			if err != nil {
				return fmt.Errorf("sweep lock tokens: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d stale lock token(s)\n", swept)
			return nil
		},
	}
}
