package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"curator/internal/logging"
	"curator/internal/media"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Result cache utilities",
	}

	cacheCmd.AddCommand(newCacheStatusCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func newCacheStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show entry counts per cache category",
		RunE: func(cmd *cobra.Command, args []string) error {
			stores, err := ctx.openStores(logging.NewNop())
			if err != nil {
				return err
			}
			statuses, err := stores.Statuses(cmd.Context())
			if err != nil {
				return fmt.Errorf("read cache documents: %w", err)
			}

			rows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				rows = append(rows, []string{
					string(status.Category),
					strconv.Itoa(status.Entries),
					status.Path,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Category", "Entries", "Document"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear [category]",
		Short: "Remove cached results for one category, or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var category media.Category
			if len(args) == 1 {
				parsed, err := media.ParseCategory(args[0])
				if err != nil {
					return err
				}
				category = parsed
			}

			stores, err := ctx.openStores(logging.NewNop())
			if err != nil {
				return err
			}
			if err := stores.Clear(cmd.Context(), category); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			out := cmd.OutOrStdout()
			if category == "" {
				fmt.Fprintln(out, "Cleared all cache categories")
			} else {
				fmt.Fprintf(out, "Cleared %s cache\n", category)
			}
			return nil
		},
	}
}
