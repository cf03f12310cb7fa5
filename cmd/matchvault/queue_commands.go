package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"matchvault/internal/jobqueue"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the job queue",
	}

	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueStatsCommand(ctx))
	queueCmd.AddCommand(newQueueDeadLettersCommand(ctx))
	queueCmd.AddCommand(newQueueRedriveCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))

	return queueCmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List pending and in-flight messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *jobqueue.Store) error {
				messages, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(messages) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty.")
					return nil
				}
				rows := make([][]string, 0, len(messages))
				for _, msg := range messages {
					rows = append(rows, []string{
						msg.ID,
						strconv.Itoa(msg.ReceiveCount),
						msg.EnqueuedAt.Local().Format(time.RFC3339),
						truncate(msg.Body, 72),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "RECEIVES", "ENQUEUED", "BODY"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
}

func newQueueStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show queue depth by state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *jobqueue.Store) error {
				stats, err := store.QueueStats(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"STATE", "COUNT"},
					[][]string{
						{"visible", strconv.Itoa(stats.Visible)},
						{"in flight", strconv.Itoa(stats.InFlight)},
						{"dead letter", strconv.Itoa(stats.DeadLetter)},
					},
					[]columnAlignment{alignLeft, alignRight},
				))
				return nil
			})
		},
	}
}

func newQueueDeadLettersCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "dead-letters",
		Short: "List jobs parked after failure",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *jobqueue.Store) error {
				parked, err := store.ListDeadLetters(cmd.Context())
				if err != nil {
					return err
				}
				if len(parked) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No dead letters.")
					return nil
				}
				rows := make([][]string, 0, len(parked))
				for _, letter := range parked {
					rows = append(rows, []string{
						letter.ID,
						letter.FailedAt.Local().Format(time.RFC3339),
						truncate(letter.Reason, 48),
						truncate(letter.Body, 56),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "FAILED", "REASON", "BODY"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
}

func newQueueRedriveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "redrive",
		Short: "Move dead letters back onto the live queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *jobqueue.Store) error {
				moved, err := store.RedriveDeadLetters(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Redrove %d message(s).\n", moved)
				return nil
			})
		},
	}
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every message, in-flight included",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return fmt.Errorf("refusing to clear the queue without --yes")
			}
			return ctx.withStore(func(store *jobqueue.Store) error {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d message(s).\n", removed)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&confirmed, "yes", false, "Confirm the destructive clear")
	return cmd
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
