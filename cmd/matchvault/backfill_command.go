package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"matchvault/internal/jobqueue"
	"matchvault/internal/matchstore"
	"matchvault/internal/worker"
)

// newBackfillCommand enqueues an upload job for every match whose record
// still points at a platform URL instead of a published object. The exclude
// host filters out records already rewritten to the durable store.
func newBackfillCommand(ctx *commandContext) *cobra.Command {
	var excludeHost string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Enqueue uploads for every match with an unprocessed source video",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			exclude := excludeHost
			if exclude == "" {
				exclude = cfg.Blob.Endpoint
			}

			var pending []*matchstore.Match
			err = ctx.withMatches(cmd.Context(), func(matches *matchstore.MongoStore) error {
				found, err := matches.MatchesWithSourceVideo(cmd.Context(), exclude)
				if err != nil {
					return err
				}
				pending = found
				return nil
			})
			if err != nil {
				return err
			}

			if len(pending) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No matches pending acquisition.")
				return nil
			}
			if dryRun {
				for _, match := range pending {
					fmt.Fprintf(cmd.OutOrStdout(), "would enqueue %s (%s vs %s)\n", match.ID, match.HomeTeamString, match.AwayTeamString)
				}
				return nil
			}

			return ctx.withStore(func(store *jobqueue.Store) error {
				for _, match := range pending {
					body, err := worker.NewUploadJob(match.ID).Encode()
					if err != nil {
						return err
					}
					if _, err := store.Send(cmd.Context(), body); err != nil {
						return fmt.Errorf("enqueue match %s: %w", match.ID, err)
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Enqueued %d upload job(s).\n", len(pending))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&excludeHost, "exclude-host", "", "Skip matches whose video URL contains this host (default: blob endpoint)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List matches without enqueueing")
	return cmd
}
