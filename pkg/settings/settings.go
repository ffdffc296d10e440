// Package settings loads skhdctl's layered engine settings. Values
// come from four layers, each overriding the previous: embedded
// defaults, the user's config.toml, SKHDCTL_* environment variables,
// and per-invocation overrides supplied by the caller.
package settings

import "time"

// Settings is the fully resolved engine configuration.
type Settings struct {
	Config ConfigSettings `koanf:"config"`
	Backup BackupSettings `koanf:"backup"`
	Daemon DaemonSettings `koanf:"daemon"`
	Reload ReloadSettings `koanf:"reload"`
	Watch  WatchSettings  `koanf:"watch"`
	Logs   LogSettings    `koanf:"logs"`
}

// ConfigSettings locates the skhd config file.
type ConfigSettings struct {
	// Path overrides the search-path resolution when non-empty
	Path string `koanf:"path"`
}

// BackupSettings tunes the backup catalog.
type BackupSettings struct {
	// Retention is how many backups prune keeps, newest first
	Retention int `koanf:"retention"`
}

// DaemonSettings identifies the launchd job.
type DaemonSettings struct {
	// Label is the launchd job label
	Label string `koanf:"label"`

	// Plist overrides the conventional LaunchAgents plist path
	Plist string `koanf:"plist"`
}

// ReloadSettings tunes post-restart verification.
type ReloadSettings struct {
	// VerifyAttempts is how many status polls run before giving up
	VerifyAttempts int `koanf:"verify_attempts"`

	// VerifyDelay is the pause between status polls
	VerifyDelay time.Duration `koanf:"verify_delay"`
}

// WatchSettings tunes the config file watcher.
type WatchSettings struct {
	// Debounce collapses change bursts into a single event
	Debounce time.Duration `koanf:"debounce"`
}

// LogSettings locates the daemon's log file.
type LogSettings struct {
	// Path overrides the log location discovered from the job's
	// plist when non-empty
	Path string `koanf:"path"`
}
