package cli

import (
	"github.com/spf13/cobra"

	"github.com/skhdtools/skhdctl/pkg/daemon"
	"github.com/skhdtools/skhdctl/pkg/errors"
	"github.com/skhdtools/skhdctl/pkg/paths"
	"github.com/skhdtools/skhdctl/pkg/settings"
	"github.com/skhdtools/skhdctl/pkg/types"
	"github.com/skhdtools/skhdctl/pkg/ui"
)

func (c *cli) renderer(cmd *cobra.Command) *ui.Renderer {
	return ui.NewRenderer(c.output, cmd.OutOrStdout())
}

// settings resolves the layered settings, folding the --config flag in
// as the highest-priority override.
func (c *cli) settings() (*settings.Settings, error) {
	var overrides map[string]interface{}
	if c.config != "" {
		overrides = map[string]interface{}{"config.path": c.config}
	}
	return settings.Load(overrides)
}

// configPath resolves the target skhd config file: positional argument
// first, then the config.path setting (which the --config flag feeds),
// then the conventional search locations.
func (c *cli) configPath(args []string, s *settings.Settings) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return paths.ExpandHome(args[0]), nil
	}
	if s.Config.Path != "" {
		return paths.ExpandHome(s.Config.Path), nil
	}
	p, err := paths.New()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to resolve config locations")
	}
	path, _ := p.FindConfigFile(c.deps.fsys)
	return path, nil
}

// controller returns the injected daemon controller or builds the
// launchd one from settings.
func (c *cli) controller(s *settings.Settings) (daemon.Controller, error) {
	if c.deps.ctrl != nil {
		return c.deps.ctrl, nil
	}
	return daemon.NewLaunchd(c.deps.fsys, s.Daemon.Label, s.Daemon.Plist)
}

// blockingParseErrors filters out FileMissing, which marks an absent
// file rather than unparseable content.
func blockingParseErrors(cfg *types.ConfigFile) []types.ParseError {
	var blocking []types.ParseError
	for _, pe := range cfg.ParseErrors {
		if pe.Kind != types.ParseErrFileMissing {
			blocking = append(blocking, pe)
		}
	}
	return blocking
}
