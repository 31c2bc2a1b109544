package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ytscribe/internal/deps"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Report availability of required external tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			statuses := deps.CheckBinaries(deps.Default(cfg))
			rows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				available := "yes"
				if !status.Available {
					available = "no"
				}
				required := "yes"
				if status.Optional {
					required = "audio only"
				}
				rows = append(rows, []string{
					status.Name,
					available,
					required,
					status.Description,
					status.Detail,
				})
			}

			out := renderTable(
				[]string{"Tool", "Available", "Required", "Purpose", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			)
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}
