// Package cli wires the skhdctl command tree. Commands stay thin: each
// one resolves its inputs, calls one engine operation, and hands the
// result to the ui renderer.
package cli

import (
	"embed"
	"io/fs"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/skhdtools/skhdctl/internal/version"
	"github.com/skhdtools/skhdctl/pkg/cobrax/topics"
	"github.com/skhdtools/skhdctl/pkg/daemon"
	"github.com/skhdtools/skhdctl/pkg/filesystem"
	"github.com/skhdtools/skhdctl/pkg/logging"
	"github.com/skhdtools/skhdctl/pkg/types"
	"github.com/skhdtools/skhdctl/pkg/ui"
)

//go:embed topics
var topicsFS embed.FS

// deps carries the process boundaries the commands touch, so tests can
// run the whole tree against a memory filesystem and a scripted daemon.
type deps struct {
	fsys types.FS

	// ctrl overrides the launchd controller when non-nil
	ctrl daemon.Controller
}

// cli holds the persistent flag targets shared by every subcommand.
type cli struct {
	deps      *deps
	verbosity int
	output    ui.Format
	config    string
}

// NewRootCmd builds the production command tree against the real
// filesystem and launchd.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&deps{fsys: filesystem.NewOS()})
}

func newRootCmd(d *deps) *cobra.Command {
	c := &cli{deps: d}

	root := &cobra.Command{
		Use:   "skhdctl",
		Short: "Safe configuration management for the skhd hotkey daemon",
		Long: `skhdctl manages your skhd configuration without ever leaving you on a
broken setup: every rewrite is validated first, backed up, written
atomically, and a reload rolls back if the daemon does not come up
with the new file.`,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(c.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	initTemplateFormatting()
	root.SetUsageTemplate(usageTemplate)

	pf := root.PersistentFlags()
	pf.CountVarP(&c.verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	pf.VarP(&c.output, "output", "o", "Output format: auto, terminal, text, or json")
	pf.StringVarP(&c.config, "config", "c", "", "skhd config file (default: conventional locations)")

	root.AddCommand(
		c.newCheckCmd(),
		c.newFmtCmd(),
		c.newListCmd(),
		c.newStatusCmd(),
		c.newReloadCmd(),
		c.newWatchCmd(),
		c.newBackupsCmd(),
		c.newTemplatesCmd(),
		c.newLogsCmd(),
		c.newVersionCmd(),
	)

	// The topic-aware help command from topics.Install replaces the
	// builtin one.
	root.SetHelpCommand(&cobra.Command{Hidden: true})

	if sub, err := fs.Sub(topicsFS, "topics"); err == nil {
		_ = topics.Install(root, sub, topics.Options{
			Renderer: topics.NewGlamourRenderer(),
		})
	}

	return root
}
