package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/skhdtools/skhdctl/pkg/errors"
	"github.com/skhdtools/skhdctl/pkg/store"
	"github.com/skhdtools/skhdctl/pkg/types"
)

func (c *cli) newBackupsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backups",
		Short: "Manage config file backups",
		Long: `Backups are sibling files named <config>.backup.<timestamp>. The
directory listing is the only catalog; see 'skhdctl help backups'.`,
	}

	cmd.AddCommand(
		c.newBackupsListCmd(),
		c.newBackupsCreateCmd(),
		c.newBackupsRestoreCmd(),
		c.newBackupsPruneCmd(),
	)

	return cmd
}

func (c *cli) newBackupsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List backups, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.backupTarget()
			if err != nil {
				return err
			}
			backups := store.ListBackups(c.deps.fsys, path)
			return c.renderer(cmd).Backups(path, backups)
		},
	}
}

func (c *cli) newBackupsCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Back up the config file now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.backupTarget()
			if err != nil {
				return err
			}
			backup, err := store.CreateBackup(c.deps.fsys, path)
			if err != nil {
				return err
			}
			return c.renderer(cmd).Success("created %s (%d bytes)", backup.BackupPath, backup.Size)
		},
	}
}

func (c *cli) newBackupsRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore [backup]",
		Short: "Restore a backup over the config file",
		Long: `Restore swaps a backup's content back in, after verifying its checksum
and backing up the current file. Without an argument the newest backup
is restored; with one, the backup whose name or timestamp matches.`,
		Example: `  # Restore the newest backup
  skhdctl backups restore

  # Restore a specific one
  skhdctl backups restore 20260825T104205.000000001`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.backupTarget()
			if err != nil {
				return err
			}

			backups := store.ListBackups(c.deps.fsys, path)
			if len(backups) == 0 {
				return errors.Newf(errors.ErrNotFound, "no backups for %s", path)
			}

			var selected *types.Backup
			if len(args) == 0 {
				selected = &backups[0]
			} else {
				for i := range backups {
					if backups[i].BackupPath == args[0] || strings.HasSuffix(backups[i].BackupPath, args[0]) {
						selected = &backups[i]
						break
					}
				}
				if selected == nil {
					return errors.Newf(errors.ErrNotFound, "no backup matching %q for %s", args[0], path)
				}
			}

			if _, err := store.RestoreBackup(cmd.Context(), c.deps.fsys, *selected, path); err != nil {
				return err
			}
			return c.renderer(cmd).Success("restored %s from %s", path, selected.BackupPath)
		},
	}
}

func (c *cli) newBackupsPruneCmd() *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the newest backups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.settings()
			if err != nil {
				return err
			}
			path, err := c.configPath(nil, s)
			if err != nil {
				return err
			}

			if keep <= 0 {
				keep = s.Backup.Retention
			}
			removed, err := store.PruneBackups(c.deps.fsys, path, keep)
			if err != nil {
				return err
			}
			return c.renderer(cmd).Success("removed %d backup(s), kept the %d newest", removed, keep)
		},
	}

	cmd.Flags().IntVar(&keep, "keep", 0, "How many backups to keep (default: backup.retention setting)")

	return cmd
}

// backupTarget resolves the config file the backups belong to.
func (c *cli) backupTarget() (string, error) {
	s, err := c.settings()
	if err != nil {
		return "", err
	}
	return c.configPath(nil, s)
}
