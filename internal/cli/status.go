package cli

import (
	"github.com/spf13/cobra"

	"github.com/skhdtools/skhdctl/pkg/logging"
)

func (c *cli) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the skhd daemon is running",
		Long: `Status asks launchd about the skhd job and reports its state, PID,
and the config file it was started with.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.settings()
			if err != nil {
				return err
			}
			ctrl, err := c.controller(s)
			if err != nil {
				return err
			}

			status, err := ctrl.Status(cmd.Context())
			if err != nil {
				return err
			}
			logger := logging.GetLogger("cli.status")
			logger.Debug().
				Str("state", string(status.State)).
				Int("pid", status.PID).
				Msg("Daemon status checked")

			return c.renderer(cmd).DaemonStatus(status)
		},
	}
}
