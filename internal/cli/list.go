package cli

import (
	"github.com/spf13/cobra"

	"github.com/skhdtools/skhdctl/pkg/store"
)

func (c *cli) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [path]",
		Short: "List the config's shortcuts grouped by mode",
		Example: `  # List the active config's bindings
  skhdctl list

  # Machine-readable
  skhdctl list --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.settings()
			if err != nil {
				return err
			}
			path, err := c.configPath(args, s)
			if err != nil {
				return err
			}

			cfg, err := store.Load(c.deps.fsys, path)
			if err != nil {
				return err
			}
			return c.renderer(cmd).Shortcuts(cfg)
		},
	}
}
