package cli

import (
	"github.com/spf13/cobra"

	"github.com/skhdtools/skhdctl/pkg/daemon"
	"github.com/skhdtools/skhdctl/pkg/errors"
	"github.com/skhdtools/skhdctl/pkg/paths"
)

func (c *cli) newLogsCmd() *cobra.Command {
	var lines int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the daemon's recent log entries",
		Long: `Logs prints the tail of skhd's log file, oldest first. The location
comes from the StandardErrorPath in the job's plist, or from the
logs.path setting when set.`,
		Example: `  # Last 20 entries
  skhdctl logs

  # Dig deeper
  skhdctl logs --lines 200`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.settings()
			if err != nil {
				return err
			}

			path := paths.ExpandHome(s.Logs.Path)
			if path == "" {
				ctrl, err := c.controller(s)
				if err != nil {
					return err
				}
				source, ok := ctrl.(interface{ LogPath() (string, error) })
				if !ok {
					return errors.New(errors.ErrNotFound,
						"daemon log location unknown; set logs.path in config.toml")
				}
				path, err = source.LogPath()
				if err != nil {
					return err
				}
			}

			entries, err := daemon.ReadLogTail(c.deps.fsys, path, lines)
			if err != nil {
				return err
			}
			return c.renderer(cmd).LogEntries(entries)
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 20, "How many log lines to show")

	return cmd
}
