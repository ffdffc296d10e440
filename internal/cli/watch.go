package cli

import (
	"github.com/spf13/cobra"

	"github.com/skhdtools/skhdctl/pkg/watcher"
)

func (c *cli) newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [path]",
		Short: "Stream config file change events until interrupted",
		Long: `Watch follows the config file and prints an event for every change,
including replacements by editors that write via rename. Bursts of
writes within the debounce window collapse into one event.`,
		Example: `  # Watch the active config
  skhdctl watch

  # Feed a reload pipeline
  skhdctl watch --output json | while read -r ev; do ...; done`,
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

			w, err := watcher.New(path, watcher.WithDebounce(s.Watch.Debounce))
			if err != nil {
				return err
			}
			defer func() { _ = w.Close() }()

			r := c.renderer(cmd)
			if err := r.Message("watching %s", path); err != nil {
				return err
			}

			ctx := cmd.Context()
			for {
				select {
				case <-ctx.Done():
					return nil
				case event, ok := <-w.Events():
					if !ok {
						return nil
					}
					if err := r.FileEvent(event); err != nil {
						return err
					}
				}
			}
		},
	}
}
