package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/teamcutter/keeper/internal/domain"
)

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List recognised archive formats",
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			for _, f := range domain.Formats() {
				status := green("supported")
				if f.Kind == domain.FormatPlanned {
					status = yellow("planned")
				}
				fmt.Fprintf(w, "%-10s %-12s %s\n", f.Suffix, f.Kind, status)
			}
		},
	}
}
