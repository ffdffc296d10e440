package types

import "time"

// DaemonState describes the observed state of the hotkey daemon
type DaemonState string

const (
	DaemonStopped   DaemonState = "stopped"
	DaemonStarting  DaemonState = "starting"
	DaemonRunning   DaemonState = "running"
	DaemonStopping  DaemonState = "stopping"
	DaemonReloading DaemonState = "reloading"
	DaemonError     DaemonState = "error"
	DaemonUnknown   DaemonState = "unknown"
)

// DaemonStatus is one observation of the daemon
type DaemonStatus struct {
	State DaemonState `json:"state"`

	// PID of the daemon process, 0 when not running
	PID int `json:"pid,omitempty"`

	// ConfigPath is the config file the daemon was started with, when known
	ConfigPath string `json:"config_path,omitempty"`

	// Err carries detail when State is DaemonError
	Err string `json:"error,omitempty"`

	CheckedAt time.Time `json:"checked_at"`
}

// IsRunning reports whether the daemon is confirmed alive
func (s DaemonStatus) IsRunning() bool {
	return s.State == DaemonRunning
}
