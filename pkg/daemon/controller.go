// Package daemon controls the skhd hotkey daemon through launchd. It
// observes the job's state, starts and stops it, and discovers the
// active config path and log location from the job's plist.
package daemon

import (
	"context"

	"github.com/skhdtools/skhdctl/pkg/types"
)

// Controller drives the hotkey daemon lifecycle. Implementations must
// be safe for concurrent use; all methods honor the context deadline.
type Controller interface {
	// Status observes the daemon without side effects
	Status(ctx context.Context) (types.DaemonStatus, error)

	// Start loads the launchd job
	Start(ctx context.Context) error

	// Stop unloads the launchd job
	Stop(ctx context.Context) error

	// Restart stops (tolerating a job that is not loaded) then starts
	Restart(ctx context.Context) error

	// ConfigPath reports the config file the daemon reads
	ConfigPath(ctx context.Context) (string, error)
}
