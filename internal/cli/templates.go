package cli

import (
	"github.com/spf13/cobra"

	"github.com/skhdtools/skhdctl/pkg/templates"
)

func (c *cli) newTemplatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates [category]",
		Short: "Browse ready-made shortcut commands",
		Long: `Templates lists curated commands for common bindings: window
management through yabai, application launchers, media keys, and
system actions. Copy a command into your skhdrc and bind it.`,
		Example: `  # All categories
  skhdctl templates

  # Just the media commands
  skhdctl templates media`,
		Args: cobra.MaximumNArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			categories, err := templates.Categories()
			if err != nil {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			names := make([]string, 0, len(categories))
			for _, category := range categories {
				names = append(names, category.Name)
			}
			return names, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				category, err := templates.Find(args[0])
				if err != nil {
					return err
				}
				return c.renderer(cmd).Templates([]templates.Category{category})
			}

			categories, err := templates.Categories()
			if err != nil {
				return err
			}
			return c.renderer(cmd).Templates(categories)
		},
	}
}
