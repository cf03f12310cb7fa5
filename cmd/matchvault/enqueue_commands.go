package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"matchvault/internal/jobqueue"
	"matchvault/internal/worker"
)

func newEnqueueCommand(ctx *commandContext) *cobra.Command {
	enqueueCmd := &cobra.Command{
		Use:   "enqueue",
		Short: "Enqueue acquisition jobs",
	}

	enqueueCmd.AddCommand(newEnqueueUploadCommand(ctx))
	enqueueCmd.AddCommand(newEnqueueMergeCommand(ctx))

	return enqueueCmd
}

func newEnqueueUploadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <match-id>",
		Short: "Enqueue a single-match video acquisition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			matchID := strings.TrimSpace(args[0])
			if matchID == "" {
				return fmt.Errorf("match id must not be empty")
			}
			return ctx.withStore(func(store *jobqueue.Store) error {
				id, err := sendJob(cmd, store, worker.NewUploadJob(matchID))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Enqueued upload job %s for match %s\n", id, matchID)
				return nil
			})
		},
	}
}

func newEnqueueMergeCommand(ctx *commandContext) *cobra.Command {
	var outputName string

	cmd := &cobra.Command{
		Use:   "merge <video-url-1> <video-url-2>",
		Short: "Enqueue a two-video merge",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(outputName) == "" {
				return fmt.Errorf("--output is required")
			}
			return ctx.withStore(func(store *jobqueue.Store) error {
				id, err := sendJob(cmd, store, worker.NewMergeJob(args[0], args[1], outputName))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Enqueued merge job %s producing %s\n", id, outputName)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&outputName, "output", "o", "", "Name of the merged output file")
	return cmd
}

func sendJob(cmd *cobra.Command, store *jobqueue.Store, job worker.Job) (string, error) {
	body, err := job.Encode()
	if err != nil {
		return "", err
	}
	return store.Send(cmd.Context(), body)
}
