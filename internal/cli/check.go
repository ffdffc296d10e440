package cli

import (
	"github.com/spf13/cobra"

	"github.com/skhdtools/skhdctl/pkg/errors"
	"github.com/skhdtools/skhdctl/pkg/store"
	"github.com/skhdtools/skhdctl/pkg/validation"
)

func (c *cli) newCheckCmd() *cobra.Command {
	var shell bool

	cmd := &cobra.Command{
		Use:   "check [path]",
		Short: "Validate a config file without changing anything",
		Long: `Check loads the config, reports every parse error, validation error,
and advisory warning, and exits nonzero when the file has problems.
Nothing is written.

With --shell, every command is additionally handed to sh -n so shell
syntax errors surface before the daemon hits them. Commands are parsed
only, never executed.`,
		Example: `  # Check the active config
  skhdctl check

  # Check a draft before moving it into place
  skhdctl check ~/dotfiles/skhd/skhdrc

  # Also parse every command with the shell
  skhdctl check --shell`,
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

			result := validation.ValidateConfig(cfg)
			if shell {
				for i := range cfg.Shortcuts {
					sc := &cfg.Shortcuts[i]
					if err := validation.CheckCommandSyntax(cmd.Context(), sc.Command); err != nil {
						result.AddError("line %d: command for %s does not parse: %v",
							sc.LineNumber, sc.KeyCombination(), err)
					}
				}
			}

			if err := c.renderer(cmd).CheckReport(path, cfg.ParseErrors, result); err != nil {
				return err
			}

			problems := len(cfg.ParseErrors) + len(result.Errors)
			if problems > 0 || !result.Valid {
				return errors.Newf(errors.ErrValidationFailed,
					"%d problem(s) in %s", problems, path)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&shell, "shell", false, "Parse every command with sh -n as well")
	return cmd
}
