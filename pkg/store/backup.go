package store

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/skhdtools/skhdctl/pkg/errors"
	"github.com/skhdtools/skhdctl/pkg/internal/hashutil"
	"github.com/skhdtools/skhdctl/pkg/logging"
	"github.com/skhdtools/skhdctl/pkg/parser"
	"github.com/skhdtools/skhdctl/pkg/types"
)

// Backups are named <file>.backup.<timestamp>. The timestamp is UTC
// with nanosecond width so two saves in the same second stay distinct
// and names sort chronologically.
const (
	backupInfix      = ".backup."
	backupTimeFormat = "20060102T150405.000000000"
)

// BackupName returns the backup path for path at ts.
func BackupName(path string, ts time.Time) string {
	return path + backupInfix + ts.UTC().Format(backupTimeFormat)
}

// parseBackupTimestamp extracts the creation time from a backup file
// name belonging to base, reporting ok=false for anything else.
func parseBackupTimestamp(base, name string) (time.Time, bool) {
	prefix := base + backupInfix
	if !strings.HasPrefix(name, prefix) {
		return time.Time{}, false
	}
	ts, err := time.Parse(backupTimeFormat, strings.TrimPrefix(name, prefix))
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// CreateBackup copies the file at path to a timestamped sibling and
// returns its catalog entry with size and sha256 checksum.
func CreateBackup(fsys types.FS, path string) (*types.Backup, error) {
	logger := logging.GetLogger("store")

	data, err := fsys.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(err, errors.ErrFileNotFound, "cannot back up missing file %s", path)
		}
		return nil, errors.Wrapf(err, errors.ErrBackupFailed, "failed to read %s", path)
	}

	mode := defaultFileMode
	if info, statErr := fsys.Stat(path); statErr == nil {
		mode = info.Mode().Perm()
	}

	ts := time.Now().UTC()
	backupPath := BackupName(path, ts)
	if err := fsys.WriteFileSync(backupPath, data, mode); err != nil {
		return nil, errors.Wrapf(err, errors.ErrBackupFailed, "failed to write %s", backupPath)
	}

	backup := &types.Backup{
		OriginalPath: path,
		BackupPath:   backupPath,
		CreatedAt:    ts,
		Size:         int64(len(data)),
		Checksum:     hashutil.Checksum(data),
	}

	logger.Debug().
		Str("path", path).
		Str("backup", backupPath).
		Int64("size", backup.Size).
		Msg("Backup created")
	return backup, nil
}

// ListBackups scans the config file's directory for its backups,
// newest first. Unreadable or misnamed candidates are skipped with a
// warning; listing never fails.
func ListBackups(fsys types.FS, path string) []types.Backup {
	logger := logging.GetLogger("store")

	dir := filepath.Dir(path)
	base := filepath.Base(path)

	entries, err := fsys.ReadDir(dir)
	if err != nil {
		logger.Warn().Err(err).Str("dir", dir).Msg("Cannot list backup directory")
		return nil
	}

	var backups []types.Backup
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ts, ok := parseBackupTimestamp(base, name)
		if !ok {
			if strings.HasPrefix(name, base+backupInfix) {
				logger.Warn().Str("name", name).Msg("Skipping misnamed backup candidate")
			}
			continue
		}

		backupPath := filepath.Join(dir, name)
		data, readErr := fsys.ReadFile(backupPath)
		if readErr != nil {
			logger.Warn().Err(readErr).Str("backup", backupPath).Msg("Skipping unreadable backup")
			continue
		}

		backups = append(backups, types.Backup{
			OriginalPath: path,
			BackupPath:   backupPath,
			CreatedAt:    ts,
			Size:         int64(len(data)),
			Checksum:     hashutil.Checksum(data),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups
}

// RestoreBackup writes a backup's content back to path through the
// atomic temp+rename procedure, after backing up the current file.
// When backup.Checksum is set the content read from disk must still
// match it; a mismatch means the backup was tampered with or damaged
// after it was cataloged. Restore is byte-faithful:
// the content is not normalized through the serializer, so a backup of
// a hand-edited file comes back exactly as it was.
func RestoreBackup(ctx context.Context, fsys types.FS, backup types.Backup, path string) (*types.ConfigFile, error) {
	logger := logging.GetLogger("store")

	if backup.BackupPath == "" {
		return nil, errors.New(errors.ErrInvalidInput, "backup path is empty")
	}
	if path == "" {
		return nil, errors.New(errors.ErrInvalidInput, "restore target path is empty")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := fsys.ReadFile(backup.BackupPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(err, errors.ErrFileNotFound, "backup %s does not exist", backup.BackupPath)
		}
		return nil, errors.Wrapf(err, errors.ErrFileRead, "failed to read backup %s", backup.BackupPath)
	}

	if backup.Checksum != "" {
		if got := hashutil.Checksum(data); got != backup.Checksum {
			return nil, errors.Newf(errors.ErrBackupCorrupt,
				"backup %s failed checksum verification", backup.BackupPath).
				WithDetail("expected", backup.Checksum).
				WithDetail("actual", got)
		}
	}

	mode := defaultFileMode
	exists := false
	if info, statErr := fsys.Stat(path); statErr == nil {
		exists = true
		mode = info.Mode().Perm()
	}
	if exists {
		if _, err := CreateBackup(fsys, path); err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tempPath := tempPathFor(path)
	if err := fsys.WriteFileSync(tempPath, data, mode); err != nil {
		return nil, errors.Wrapf(err, errors.ErrRestoreFailed, "failed to write temp file %s", tempPath)
	}
	if err := fsys.Rename(tempPath, path); err != nil {
		if removeErr := fsys.Remove(tempPath); removeErr != nil {
			logger.Warn().Err(removeErr).Str("path", tempPath).Msg("Could not remove temp file")
		}
		return nil, errors.Wrapf(err, errors.ErrRestoreFailed, "failed to replace %s", path)
	}

	cfg := parser.Build(path, string(data))
	if info, statErr := fsys.Stat(path); statErr == nil {
		cfg.LastModified = info.ModTime()
	}

	logger.Info().
		Str("path", path).
		Str("backup", backup.BackupPath).
		Msg("Backup restored")
	return cfg, nil
}

// PruneBackups deletes all but the keep newest backups of path and
// returns how many were removed.
func PruneBackups(fsys types.FS, path string, keep int) (int, error) {
	logger := logging.GetLogger("store")

	if keep < 0 {
		return 0, errors.Newf(errors.ErrInvalidInput, "keep must be non-negative, got %d", keep)
	}

	backups := ListBackups(fsys, path)
	if len(backups) <= keep {
		return 0, nil
	}

	removed := 0
	for _, backup := range backups[keep:] {
		if err := fsys.Remove(backup.BackupPath); err != nil {
			return removed, errors.Wrapf(err, errors.ErrFileWrite, "failed to remove %s", backup.BackupPath)
		}
		removed++
	}

	logger.Info().
		Str("path", path).
		Int("removed", removed).
		Int("kept", keep).
		Msg("Backups pruned")
	return removed, nil
}
