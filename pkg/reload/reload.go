// Package reload drives the apply-and-verify cycle: validate the new
// configuration, back up the live file, write atomically, restart the
// daemon, and confirm it comes back up. When verification fails the
// pre-reload backup is restored and the daemon restarted again, so a
// bad configuration never stays active.
package reload

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/skhdtools/skhdctl/pkg/daemon"
	"github.com/skhdtools/skhdctl/pkg/errors"
	"github.com/skhdtools/skhdctl/pkg/logging"
	"github.com/skhdtools/skhdctl/pkg/store"
	"github.com/skhdtools/skhdctl/pkg/types"
	"github.com/skhdtools/skhdctl/pkg/validation"
)

// State is one step of the reload cycle.
type State string

const (
	StateIdle             State = "idle"
	StateValidating       State = "validating"
	StateBackingUp        State = "backing-up"
	StateWriting          State = "writing"
	StateRestartingDaemon State = "restarting-daemon"
	StateVerifyingStartup State = "verifying-startup"
	StateCommitted        State = "committed"
	StateRollingBack      State = "rolling-back"
)

// transitions lists the legal successor states. Anything else is a
// programming error and panics in advance.
var transitions = map[State][]State{
	StateIdle:             {StateValidating},
	StateValidating:       {StateBackingUp, StateIdle},
	StateBackingUp:        {StateWriting, StateIdle},
	StateWriting:          {StateRestartingDaemon, StateIdle},
	StateRestartingDaemon: {StateVerifyingStartup, StateRollingBack},
	StateVerifyingStartup: {StateCommitted, StateRollingBack},
	StateCommitted:        {StateIdle},
	StateRollingBack:      {StateIdle},
}

const (
	defaultVerifyAttempts = 5
	defaultVerifyDelay    = 200 * time.Millisecond
	subscriberBuffer      = 4
)

// Event is the completion notification sent to subscribers after each
// finished reload attempt.
type Event struct {
	ConfigPath        string              `json:"config_path"`
	Outcome           types.ReloadOutcome `json:"outcome"`
	Duration          time.Duration       `json:"duration"`
	Err               string              `json:"error,omitempty"`
	RollbackPerformed bool                `json:"rollback_performed"`
}

// Option adjusts Manager construction.
type Option func(*Manager)

// WithVerifyPolicy sets how often and how patiently startup
// verification polls the daemon.
func WithVerifyPolicy(attempts int, delay time.Duration) Option {
	return func(m *Manager) {
		if attempts > 0 {
			m.verifyAttempts = attempts
		}
		if delay > 0 {
			m.verifyDelay = delay
		}
	}
}

// Manager runs reloads for one configuration path against one daemon
// controller. Attempts are single-flight: a second Reload while one is
// running fails fast instead of queueing.
type Manager struct {
	path string
	ctrl daemon.Controller
	fsys types.FS

	verifyAttempts int
	verifyDelay    time.Duration

	flight  sync.Mutex
	stateMu sync.Mutex
	state   State

	subMu sync.Mutex
	subs  []chan Event

	// sleep is swapped out in tests
	sleep func(time.Duration)
}

// NewManager binds a reload manager to a config path and controller.
func NewManager(fsys types.FS, path string, ctrl daemon.Controller, opts ...Option) *Manager {
	m := &Manager{
		path:           path,
		ctrl:           ctrl,
		fsys:           fsys,
		verifyAttempts: defaultVerifyAttempts,
		verifyDelay:    defaultVerifyDelay,
		state:          StateIdle,
		sleep:          time.Sleep,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Path returns the configuration path this manager reloads.
func (m *Manager) Path() string {
	return m.path
}

// State returns the current step of the cycle, StateIdle between
// attempts.
func (m *Manager) State() State {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	return m.state
}

// Subscribe returns a channel receiving one Event per finished reload
// attempt. Slow subscribers miss events rather than block a reload.
func (m *Manager) Subscribe() <-chan Event {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	ch := make(chan Event, subscriberBuffer)
	m.subs = append(m.subs, ch)
	return ch
}

// Reload applies cfg to the manager's path and restarts the daemon.
// It returns a non-nil operation for every attempt that classified an
// outcome; hard failures before the daemon is touched (cancellation,
// backup or write errors) return a nil operation because the previous
// configuration is still fully in effect. Cancellation is honored
// until the backup step completes; from the write onward the attempt
// always runs to its conclusion.
func (m *Manager) Reload(ctx context.Context, cfg *types.ConfigFile) (*types.ReloadOperation, error) {
	if !m.flight.TryLock() {
		return nil, errors.New(errors.ErrReloadInProgress, "another reload is already running")
	}
	defer m.flight.Unlock()

	log := logging.GetLogger("reload")
	done := logging.LogOperationStart(log, "reload")
	defer done()

	op := &types.ReloadOperation{ConfigPath: m.path, StartedAt: time.Now()}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Validating. Parse errors block the reload because a rewrite
	// would silently drop the lines that failed to parse.
	m.advance(StateValidating)
	for _, pe := range cfg.ParseErrors {
		if pe.Kind == types.ParseErrFileMissing {
			continue
		}
		m.advance(StateIdle)
		op.Outcome = types.ReloadValidationFailed
		err := errors.Newf(errors.ErrValidationFailed,
			"configuration has unparsed content: %s", pe.String())
		op.Err = err.Error()
		m.finish(op, log)
		return op, err
	}

	result := validation.ValidateConfig(cfg)
	for _, w := range result.Warnings {
		log.Warn().Str("path", m.path).Msg(w)
	}
	if !result.Valid {
		m.advance(StateIdle)
		op.Outcome = types.ReloadValidationFailed
		err := errors.Newf(errors.ErrValidationFailed,
			"configuration has %d validation error(s), first: %s",
			len(result.Errors), result.Errors[0])
		op.Err = err.Error()
		m.finish(op, log)
		return op, err
	}

	if err := ctx.Err(); err != nil {
		m.advance(StateIdle)
		return nil, err
	}

	// BackingUp. A brand-new config file has nothing to back up;
	// rollback then restores its absence.
	m.advance(StateBackingUp)
	var backup *types.Backup
	if _, statErr := m.fsys.Stat(m.path); statErr == nil {
		b, err := store.CreateBackup(m.fsys, m.path)
		if err != nil {
			m.advance(StateIdle)
			log.Error().Err(err).Str("path", m.path).Msg("Reload aborted, backup failed")
			return nil, err
		}
		backup = b
		op.BackupPath = b.BackupPath
	} else if !os.IsNotExist(statErr) {
		m.advance(StateIdle)
		return nil, errors.Wrapf(statErr, errors.ErrFileRead, "cannot stat %s", m.path)
	}

	if err := ctx.Err(); err != nil {
		m.advance(StateIdle)
		return nil, err
	}

	// The daemon cycle must finish once the file changes, so the
	// remaining steps run detached from the caller's cancellation.
	ctx = context.WithoutCancel(ctx)

	// Writing
	m.advance(StateWriting)
	if _, err := store.Save(ctx, m.fsys, m.path, cfg, store.SaveOptions{SkipBackup: true}); err != nil {
		m.advance(StateIdle)
		log.Error().Err(err).Str("path", m.path).Msg("Reload aborted, write failed")
		return nil, err
	}

	// RestartingDaemon
	m.advance(StateRestartingDaemon)
	if err := m.ctrl.Restart(ctx); err != nil {
		m.advance(StateRollingBack)
		op.Outcome = types.ReloadDaemonStartFailed
		op.Err = err.Error()
		m.rollback(ctx, backup, op, log)
		m.advance(StateIdle)
		m.finish(op, log)
		if op.RollbackErr != "" {
			return op, errors.Newf(errors.ErrRollbackFailed,
				"daemon restart failed and rollback failed: %s", op.RollbackErr)
		}
		return op, errors.Wrap(err, errors.ErrDaemonStart, "daemon restart failed")
	}

	// VerifyingStartup
	m.advance(StateVerifyingStartup)
	last, running := m.verifyStartup(ctx)
	if running {
		m.advance(StateCommitted)
		op.Outcome = types.ReloadSucceeded
		m.advance(StateIdle)
		m.finish(op, log)
		return op, nil
	}

	m.advance(StateRollingBack)
	op.Outcome = types.ReloadRolledBack
	op.Err = fmt.Sprintf("daemon not running after %d checks: %s", m.verifyAttempts, describeStatus(last))
	m.rollback(ctx, backup, op, log)
	m.advance(StateIdle)
	m.finish(op, log)

	if op.RollbackErr != "" {
		return op, errors.Newf(errors.ErrRollbackFailed,
			"daemon did not come up and rollback failed: %s", op.RollbackErr)
	}
	return op, errors.New(errors.ErrReloadFailed,
		"daemon did not come up with the new configuration; previous configuration restored")
}

// verifyStartup polls the controller with a fixed delay before each
// check so a daemon that starts and then dies on its new config is
// caught, not just one that never starts.
func (m *Manager) verifyStartup(ctx context.Context) (types.DaemonStatus, bool) {
	var last types.DaemonStatus
	for attempt := 1; attempt <= m.verifyAttempts; attempt++ {
		m.sleep(m.verifyDelay)

		status, err := m.ctrl.Status(ctx)
		if err != nil {
			last = types.DaemonStatus{State: types.DaemonUnknown, Err: err.Error()}
			continue
		}
		if status.IsRunning() {
			return status, true
		}
		last = status
	}
	return last, false
}

// rollback puts the pre-reload bytes back, restarts the daemon once
// more, and records how far it got on op. A rollback that itself fails
// is the worst case the engine reports; it never panics or exits.
func (m *Manager) rollback(ctx context.Context, backup *types.Backup, op *types.ReloadOperation, log zerolog.Logger) {
	if backup != nil {
		if _, err := store.RestoreBackup(ctx, m.fsys, *backup, m.path); err != nil {
			op.RollbackErr = err.Error()
			log.Error().Err(err).Str("backup", backup.BackupPath).
				Msg("Rollback failed, broken configuration may still be on disk")
			return
		}
	} else {
		// No file existed before the attempt; restore its absence.
		if err := m.fsys.Remove(m.path); err != nil && !os.IsNotExist(err) {
			op.RollbackErr = err.Error()
			log.Error().Err(err).Str("path", m.path).Msg("Rollback failed to remove written file")
			return
		}
	}
	op.RollbackPerformed = true

	if err := m.ctrl.Restart(ctx); err != nil {
		op.RollbackErr = fmt.Sprintf("restart after rollback failed: %v", err)
		log.Error().Err(err).Msg("Daemon restart after rollback failed")
		return
	}

	m.sleep(m.verifyDelay)
	status, err := m.ctrl.Status(ctx)
	switch {
	case err != nil:
		op.RollbackErr = fmt.Sprintf("status check after rollback failed: %v", err)
	case !status.IsRunning():
		op.RollbackErr = fmt.Sprintf("daemon not running after rollback: %s", describeStatus(status))
	default:
		log.Info().Str("path", m.path).Msg("Rollback restored the previous configuration")
	}
}

func (m *Manager) finish(op *types.ReloadOperation, log zerolog.Logger) {
	op.FinishedAt = time.Now()

	switch op.Outcome {
	case types.ReloadSucceeded:
		log.Info().Str("path", m.path).Dur("duration", op.Duration()).Msg("Reload committed")
	default:
		log.Warn().Str("path", m.path).Str("outcome", string(op.Outcome)).
			Bool("rollback", op.RollbackPerformed).Str("error", op.Err).
			Msg("Reload did not commit")
	}

	event := Event{
		ConfigPath:        op.ConfigPath,
		Outcome:           op.Outcome,
		Duration:          op.Duration(),
		Err:               op.Err,
		RollbackPerformed: op.RollbackPerformed,
	}
	m.subMu.Lock()
	defer m.subMu.Unlock()
	for _, ch := range m.subs {
		select {
		case ch <- event:
		default:
			log.Warn().Str("path", m.path).Msg("Subscriber too slow, reload event dropped")
		}
	}
}

// advance moves the machine to a legal successor state.
func (m *Manager) advance(to State) {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	for _, allowed := range transitions[m.state] {
		if allowed == to {
			logger := logging.GetLogger("reload")
			logger.Debug().
				Str("from", string(m.state)).Str("to", string(to)).
				Msg("Reload state transition")
			m.state = to
			return
		}
	}
	panic(fmt.Sprintf("reload: illegal state transition %s -> %s", m.state, to))
}

func describeStatus(status types.DaemonStatus) string {
	if status.Err != "" {
		return fmt.Sprintf("%s (%s)", status.State, status.Err)
	}
	if status.State == "" {
		return string(types.DaemonUnknown)
	}
	return string(status.State)
}
