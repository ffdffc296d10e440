package cli

import (
	"github.com/spf13/cobra"

	"github.com/skhdtools/skhdctl/pkg/errors"
	"github.com/skhdtools/skhdctl/pkg/serializer"
	"github.com/skhdtools/skhdctl/pkg/store"
	"github.com/skhdtools/skhdctl/pkg/types"
)

func (c *cli) newFmtCmd() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "fmt [path]",
		Short: "Normalize a config file's formatting",
		Long: `Fmt rewrites the config in canonical form: modifiers sorted, bindings
grouped by mode, consistent spacing. Without --write the normalized
content is printed to stdout; with --write it is saved atomically,
with a backup of the previous content.

A file with unparseable lines is never formatted, because normalizing
would drop them.`,
		Example: `  # Preview the canonical form
  skhdctl fmt

  # Rewrite the file in place
  skhdctl fmt --write`,
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
			for _, pe := range cfg.ParseErrors {
				if pe.Kind == types.ParseErrFileMissing {
					return errors.Newf(errors.ErrFileNotFound, "no config file at %s", path)
				}
			}
			if blocking := blockingParseErrors(cfg); len(blocking) > 0 {
				return errors.Newf(errors.ErrValidationFailed,
					"cannot format %s: %d unparseable line(s), first: %s",
					path, len(blocking), blocking[0].String())
			}

			normalized := serializer.Serialize(cfg)
			r := c.renderer(cmd)

			if !write {
				_, err := cmd.OutOrStdout().Write([]byte(normalized))
				return err
			}

			original, err := c.deps.fsys.ReadFile(path)
			if err != nil {
				return errors.Wrapf(err, errors.ErrFileRead, "failed to read %s", path)
			}
			if string(original) == normalized {
				return r.Message("%s is already formatted", path)
			}

			receipt, err := store.Save(cmd.Context(), c.deps.fsys, path, cfg, store.SaveOptions{})
			if err != nil {
				return err
			}
			return r.Success("formatted %s (previous content in %s)", path, receipt.BackupPath)
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write the result back instead of printing it")

	return cmd
}
