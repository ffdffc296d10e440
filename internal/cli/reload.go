package cli

import (
	"github.com/spf13/cobra"

	"github.com/skhdtools/skhdctl/pkg/reload"
	"github.com/skhdtools/skhdctl/pkg/store"
)

func (c *cli) newReloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reload [path]",
		Short: "Validate, save, and restart the daemon, rolling back on failure",
		Long: `Reload walks the config through the safety pipeline: validate, back up,
write atomically, restart skhd, and verify the daemon actually comes
up. If it does not, the previous config is restored and the daemon
restarted on it, so a bad edit never leaves hotkeys dead.

See 'skhdctl help reload' for the full walkthrough.`,
		Example: `  # Reload the active config
  skhdctl reload

  # Reload an alternate file
  skhdctl reload ~/dotfiles/skhd/skhdrc`,
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
			ctrl, err := c.controller(s)
			if err != nil {
				return err
			}

			cfg, err := store.Load(c.deps.fsys, path)
			if err != nil {
				return err
			}

			mgr := reload.NewManager(c.deps.fsys, path, ctrl,
				reload.WithVerifyPolicy(s.Reload.VerifyAttempts, s.Reload.VerifyDelay))

			op, reloadErr := mgr.Reload(cmd.Context(), cfg)
			if op != nil {
				if err := c.renderer(cmd).ReloadOutcome(op); err != nil {
					return err
				}
			}
			return reloadErr
		},
	}
}
