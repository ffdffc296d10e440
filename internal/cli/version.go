package cli

import (
	"github.com/spf13/cobra"

	"github.com/skhdtools/skhdctl/internal/version"
)

func (c *cli) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("skhdctl version %s\n", version.Version)
			if version.Commit != "" {
				cmd.Printf("  commit: %s\n", version.Commit)
			}
			if version.Date != "" {
				cmd.Printf("  built:  %s\n", version.Date)
			}
		},
	}
}
