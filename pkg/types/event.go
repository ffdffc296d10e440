package types

import "time"

// FileEventType is the kind of change observed on a watched path
type FileEventType string

const (
	FileModified FileEventType = "modified"
	FileDeleted  FileEventType = "deleted"
)

// FileEvent is one change notification from the file watcher
type FileEvent struct {
	Path      string        `json:"file_path"`
	Type      FileEventType `json:"change_type"`
	Timestamp time.Time     `json:"timestamp"`
}
