package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"matchvault/internal/deps"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check the external tools the daemon needs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			statuses := deps.CheckBinaries(deps.Required(cfg))
			rows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				state := "ok"
				if !status.Available {
					state = status.Detail
				}
				rows = append(rows, []string{status.Name, status.Command, state})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"TOOL", "COMMAND", "STATUS"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))
			if missing := deps.FirstMissing(statuses); missing != nil {
				return fmt.Errorf("required tool %s unavailable", missing.Name)
			}
			return nil
		},
	}
}
