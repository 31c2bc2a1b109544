package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ytscribe/internal/config"
	"ytscribe/internal/queue"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the progress store",
	}

	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueRetryCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))

	return queueCmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tracked videos and their status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				items, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No videos tracked yet")
					return nil
				}

				rows := make([][]string, 0, len(items))
				for _, item := range items {
					rows = append(rows, []string{
						item.VideoID,
						truncate(item.Title, 48),
						string(item.Status),
						string(item.Source),
						item.UpdatedAt.Local().Format(time.DateTime),
						truncate(item.ErrorMessage, 40),
					})
				}
				out := renderTable(
					[]string{"Video", "Title", "Status", "Source", "Updated", "Error"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
}

func newQueueRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry",
		Short: "Reset failed videos so the next run retries them",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				count, err := store.ResetFailed(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reset %d failed video(s) to pending\n", count)
				return nil
			})
		},
	}
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all progress records",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear progress without --yes")
			}
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				count, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d record(s)\n", count)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return cmd
}

// truncate caps value at max runes. Titles routinely carry multi-byte text,
// so the cut must land on rune boundaries.
func truncate(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
