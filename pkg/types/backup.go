package types

import "time"

// Backup is a point-in-time copy of a config file, immutable once
// created. Backups live as siblings of the original; the directory
// listing is the only index.
type Backup struct {
	// OriginalPath is the config file the backup was taken from
	OriginalPath string `json:"original_path"`

	// BackupPath follows the <file>.backup.<timestamp> naming pattern
	BackupPath string `json:"backup_path"`

	CreatedAt time.Time `json:"created_at"`
	Size      int64     `json:"size"`

	// Checksum is the content hash in "sha256:<hex>" form
	Checksum string `json:"checksum"`
}
