package types

import "time"

// ReloadOutcome classifies how a reload attempt ended
type ReloadOutcome string

const (
	ReloadSucceeded         ReloadOutcome = "success"
	ReloadValidationFailed  ReloadOutcome = "validation-failed"
	ReloadDaemonStartFailed ReloadOutcome = "daemon-start-failed"
	ReloadRolledBack        ReloadOutcome = "rolled-back"
)

// ReloadOperation records one reload attempt. It is transient and
// never persisted.
type ReloadOperation struct {
	ConfigPath string        `json:"config_path"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Outcome    ReloadOutcome `json:"outcome"`

	// Err carries the failure detail for unsuccessful outcomes
	Err string `json:"error,omitempty"`

	// RollbackPerformed is true when the pre-reload backup was restored
	RollbackPerformed bool `json:"rollback_performed"`

	// RollbackErr is set when rollback itself failed, the most severe
	// condition the engine reports
	RollbackErr string `json:"rollback_error,omitempty"`

	// BackupPath is the pre-reload backup taken during the attempt
	BackupPath string `json:"backup_path,omitempty"`
}

// Duration returns how long the attempt took
func (op *ReloadOperation) Duration() time.Duration {
	return op.FinishedAt.Sub(op.StartedAt)
}

// Succeeded reports whether the new configuration was committed
func (op *ReloadOperation) Succeeded() bool {
	return op.Outcome == ReloadSucceeded
}
