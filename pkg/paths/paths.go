// Package paths provides centralized path handling for skhdctl.
// It implements XDG Base Directory specification compliance and
// resolves the skhd config file through its conventional search
// locations.
package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/skhdtools/skhdctl/pkg/types"
)

// Environment variable names
const (
	// EnvConfigPath overrides the skhd config file location
	EnvConfigPath = "SKHDCTL_CONFIG_PATH"

	// EnvSettingsDir overrides the skhdctl settings directory
	EnvSettingsDir = "SKHDCTL_SETTINGS_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Well-known names. These mirror the daemon's own conventions and are
// not user-configurable; user-facing knobs belong in pkg/settings.
const (
	// AppDirName is the directory name for skhdctl-specific files
	AppDirName = "skhdctl"

	// DaemonDirName is the daemon's config directory under XDG config
	DaemonDirName = "skhd"

	// DaemonConfigName is the daemon's config file name inside DaemonDirName
	DaemonConfigName = "skhdrc"

	// DaemonDotfileName is the legacy dotfile name in the home directory
	DaemonDotfileName = ".skhdrc"

	// DefaultDaemonLabel is the launchd label skhd installs under
	DefaultDaemonLabel = "com.koekeishiya.skhd"

	// SettingsFileName is the skhdctl settings file inside ConfigDir
	SettingsFileName = "config.toml"

	// LogFileName is the skhdctl log file name
	LogFileName = "skhdctl.log"
)

// Paths resolves the directories and files skhdctl works with
type Paths struct {
	home      string
	xdgConfig string
	xdgState  string
}

// New creates a Paths instance from the current environment
func New() (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv(EnvHome)
	}

	p := &Paths{home: home}

	if settingsDir := os.Getenv(EnvSettingsDir); settingsDir != "" {
		p.xdgConfig = ExpandHome(settingsDir)
	} else {
		p.xdgConfig = filepath.Join(xdg.ConfigHome, AppDirName)
	}

	// xdg has no StateHome accessor in all versions, check manually
	if stateDir := os.Getenv("XDG_STATE_HOME"); stateDir != "" {
		p.xdgState = filepath.Join(stateDir, AppDirName)
	} else {
		p.xdgState = filepath.Join(home, ".local", "state", AppDirName)
	}

	return p, nil
}

// SettingsDir returns the skhdctl settings directory
func (p *Paths) SettingsDir() string {
	return p.xdgConfig
}

// SettingsFile returns the skhdctl settings file path
func (p *Paths) SettingsFile() string {
	return filepath.Join(p.xdgConfig, SettingsFileName)
}

// StateDir returns the skhdctl state directory
func (p *Paths) StateDir() string {
	return p.xdgState
}

// LogFilePath returns the skhdctl log file path
func (p *Paths) LogFilePath() string {
	return filepath.Join(p.xdgState, LogFileName)
}

// ConfigSearchPaths returns the candidate skhd config locations in
// resolution order: the SKHDCTL_CONFIG_PATH override, the XDG config
// location, and the legacy home dotfile.
func (p *Paths) ConfigSearchPaths() []string {
	var candidates []string

	if override := os.Getenv(EnvConfigPath); override != "" {
		candidates = append(candidates, ExpandHome(override))
	}

	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		candidates = append(candidates, filepath.Join(configHome, DaemonDirName, DaemonConfigName))
	} else if p.home != "" {
		candidates = append(candidates, filepath.Join(p.home, ".config", DaemonDirName, DaemonConfigName))
	}

	if p.home != "" {
		candidates = append(candidates, filepath.Join(p.home, DaemonDotfileName))
	}

	return candidates
}

// FindConfigFile returns the first existing candidate config path.
// When none exists, it returns the preferred default (the first
// candidate) and found=false so callers can still create the file.
func (p *Paths) FindConfigFile(fs types.FS) (path string, found bool) {
	candidates := p.ConfigSearchPaths()
	for _, candidate := range candidates {
		if info, err := fs.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	if len(candidates) == 0 {
		return "", false
	}
	return candidates[0], false
}

// LaunchAgentPlist returns the per-user launchd plist path for label
func (p *Paths) LaunchAgentPlist(label string) string {
	if label == "" {
		label = DefaultDaemonLabel
	}
	return filepath.Join(p.home, "Library", "LaunchAgents", label+".plist")
}

// ExpandHome expands a leading ~ to the user's home directory
func ExpandHome(path string) string {
	if path == "" {
		return path
	}

	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			homeDir = os.Getenv(EnvHome)
			if homeDir == "" {
				return path
			}
		}

		if len(path) == 1 {
			return homeDir
		}

		if path[1] == '/' {
			return filepath.Join(homeDir, path[2:])
		}
	}

	return path
}
