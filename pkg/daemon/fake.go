package daemon

import (
	"context"
	"sync"
	"time"

	"github.com/skhdtools/skhdctl/pkg/types"
)

// Fake is a scripted Controller for tests. Status responses pop off
// StatusQueue; once the queue runs down to one entry that entry
// repeats, so a script like [stopped, running] models a daemon that
// comes up after a restart and then stays up.
type Fake struct {
	mu sync.Mutex

	StatusQueue []types.DaemonStatus
	StatusErr   error

	StartErr error
	StopErr  error

	// RestartErrs pops one entry per Restart call; when drained,
	// RestartErr applies to every further call.
	RestartErrs []error
	RestartErr  error

	ConfigPathValue string
	ConfigPathErr   error

	// Calls records method names in invocation order.
	Calls []string
}

var _ Controller = (*Fake)(nil)

// NewFake returns a Fake that reports a running daemon.
func NewFake() *Fake {
	return &Fake{
		StatusQueue: []types.DaemonStatus{{State: types.DaemonRunning, PID: 4242}},
	}
}

func (f *Fake) record(call string) {
	f.Calls = append(f.Calls, call)
}

// Status pops the next scripted status, repeating the last one.
func (f *Fake) Status(ctx context.Context) (types.DaemonStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("status")

	if f.StatusErr != nil {
		return types.DaemonStatus{State: types.DaemonUnknown}, f.StatusErr
	}
	if len(f.StatusQueue) == 0 {
		return types.DaemonStatus{State: types.DaemonUnknown, CheckedAt: time.Now()}, nil
	}
	status := f.StatusQueue[0]
	if len(f.StatusQueue) > 1 {
		f.StatusQueue = f.StatusQueue[1:]
	}
	if status.CheckedAt.IsZero() {
		status.CheckedAt = time.Now()
	}
	return status, nil
}

func (f *Fake) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("start")
	return f.StartErr
}

func (f *Fake) Stop(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("stop")
	return f.StopErr
}

func (f *Fake) Restart(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("restart")
	if len(f.RestartErrs) > 0 {
		err := f.RestartErrs[0]
		f.RestartErrs = f.RestartErrs[1:]
		return err
	}
	return f.RestartErr
}

func (f *Fake) ConfigPath(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("configpath")
	return f.ConfigPathValue, f.ConfigPathErr
}

// CallCount returns how many times the named method was invoked.
func (f *Fake) CallCount(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, c := range f.Calls {
		if c == call {
			count++
		}
	}
	return count
}
