package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skhdtools/skhdctl/pkg/errors"
	"github.com/skhdtools/skhdctl/pkg/internal/hashutil"
	"github.com/skhdtools/skhdctl/pkg/types"
)

var backupNameRe = regexp.MustCompile(`\.backup\.\d{8}T\d{6}\.\d{9}$`)

func TestCreateBackup(t *testing.T) {
	fsys := memFS(t)
	writeConfig(t, fsys, "/cfg/skhdrc", sampleConfig)

	backup, err := CreateBackup(fsys, "/cfg/skhdrc")
	require.NoError(t, err)

	assert.Equal(t, "/cfg/skhdrc", backup.OriginalPath)
	assert.Regexp(t, backupNameRe, backup.BackupPath)
	assert.Equal(t, int64(len(sampleConfig)), backup.Size)
	assert.Equal(t, hashutil.Checksum([]byte(sampleConfig)), backup.Checksum)
	assert.Equal(t, sampleConfig, readConfig(t, fsys, backup.BackupPath))
	assert.WithinDuration(t, time.Now().UTC(), backup.CreatedAt, 5*time.Second)
}

func TestCreateBackupMissingFile(t *testing.T) {
	fsys := memFS(t)

	_, err := CreateBackup(fsys, "/cfg/skhdrc")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileNotFound))
}

func TestBackupNameSortsChronologically(t *testing.T) {
	older := BackupName("/cfg/skhdrc", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	newer := BackupName("/cfg/skhdrc", time.Date(2026, 3, 1, 10, 0, 0, 1, time.UTC))

	assert.Less(t, older, newer, "nanosecond-width names keep same-second backups ordered")
}

func TestParseBackupTimestamp(t *testing.T) {
	ts := time.Date(2026, 3, 1, 10, 30, 45, 123456789, time.UTC)
	name := "skhdrc.backup." + ts.Format(backupTimeFormat)

	parsed, ok := parseBackupTimestamp("skhdrc", name)
	require.True(t, ok)
	assert.True(t, parsed.Equal(ts))

	_, ok = parseBackupTimestamp("skhdrc", "skhdrc.backup.not-a-timestamp")
	assert.False(t, ok)
	_, ok = parseBackupTimestamp("skhdrc", "other.backup.20260301T103045.123456789")
	assert.False(t, ok)
}

func TestListBackupsNewestFirst(t *testing.T) {
	fsys := memFS(t)
	writeConfig(t, fsys, "/cfg/skhdrc", sampleConfig)

	for i := 0; i < 3; i++ {
		_, err := CreateBackup(fsys, "/cfg/skhdrc")
		require.NoError(t, err)
	}

	backups := ListBackups(fsys, "/cfg/skhdrc")
	require.Len(t, backups, 3)
	for i := 1; i < len(backups); i++ {
		assert.True(t, backups[i-1].CreatedAt.After(backups[i].CreatedAt),
			"backups must be ordered newest first")
	}
}

func TestListBackupsSkipsForeignFiles(t *testing.T) {
	fsys := memFS(t)
	writeConfig(t, fsys, "/cfg/skhdrc", sampleConfig)
	writeConfig(t, fsys, "/cfg/skhdrc.backup.garbage", "not a backup")
	writeConfig(t, fsys, "/cfg/other.backup.20260301T103045.123456789", "different file")
	writeConfig(t, fsys, "/cfg/notes.txt", "unrelated")

	_, err := CreateBackup(fsys, "/cfg/skhdrc")
	require.NoError(t, err)

	backups := ListBackups(fsys, "/cfg/skhdrc")
	assert.Len(t, backups, 1, "misnamed and unrelated files are not backups")
}

func TestListBackupsNoDirectory(t *testing.T) {
	fsys := memFS(t)

	assert.Empty(t, ListBackups(fsys, "/nowhere/skhdrc"))
}

func TestBackupChecksumSurvivesListing(t *testing.T) {
	fsys := memFS(t)
	writeConfig(t, fsys, "/cfg/skhdrc", sampleConfig)

	created, err := CreateBackup(fsys, "/cfg/skhdrc")
	require.NoError(t, err)

	backups := ListBackups(fsys, "/cfg/skhdrc")
	require.Len(t, backups, 1)
	assert.Equal(t, created.Checksum, backups[0].Checksum,
		"recomputed checksum matches the recorded one")
	assert.Equal(t, created.Size, backups[0].Size)
	assert.True(t, created.CreatedAt.Equal(backups[0].CreatedAt))
}

func TestRestoreBackup(t *testing.T) {
	fsys := memFS(t)
	writeConfig(t, fsys, "/cfg/skhdrc", sampleConfig)

	backup, err := CreateBackup(fsys, "/cfg/skhdrc")
	require.NoError(t, err)

	writeConfig(t, fsys, "/cfg/skhdrc", "cmd - x : echo broken\n")

	cfg, err := RestoreBackup(context.Background(), fsys, *backup, "/cfg/skhdrc")
	require.NoError(t, err)

	assert.Equal(t, sampleConfig, readConfig(t, fsys, "/cfg/skhdrc"))
	assert.Len(t, cfg.Shortcuts, 3)

	backups := ListBackups(fsys, "/cfg/skhdrc")
	assert.Len(t, backups, 2, "restore backs up the current file first")
	assert.Empty(t, tempFilesIn(t, fsys, "/cfg"))
}

func TestRestoreBackupChecksumMismatch(t *testing.T) {
	fsys := memFS(t)
	writeConfig(t, fsys, "/cfg/skhdrc", sampleConfig)

	backup, err := CreateBackup(fsys, "/cfg/skhdrc")
	require.NoError(t, err)

	// Damage the backup after its checksum was recorded.
	writeConfig(t, fsys, backup.BackupPath, "tampered content")
	writeConfig(t, fsys, "/cfg/skhdrc", "cmd - x : echo current\n")

	_, err = RestoreBackup(context.Background(), fsys, *backup, "/cfg/skhdrc")
	require.Error(t, err)

	assert.True(t, errors.IsErrorCode(err, errors.ErrBackupCorrupt))
	assert.Equal(t, "cmd - x : echo current\n", readConfig(t, fsys, "/cfg/skhdrc"),
		"target untouched after failed verification")
}

func TestRestoreBackupWithoutChecksumSkipsVerification(t *testing.T) {
	fsys := memFS(t)
	writeConfig(t, fsys, "/cfg/skhdrc.backup.20260301T103045.123456789", sampleConfig)

	backup := types.Backup{BackupPath: "/cfg/skhdrc.backup.20260301T103045.123456789"}
	cfg, err := RestoreBackup(context.Background(), fsys, backup, "/cfg/skhdrc")
	require.NoError(t, err)

	assert.Equal(t, sampleConfig, readConfig(t, fsys, "/cfg/skhdrc"))
	assert.Len(t, cfg.Shortcuts, 3)
}

func TestRestoreBackupIsByteFaithful(t *testing.T) {
	fsys := memFS(t)
	damaged := "cmd - f : open -a Finder\nthis line does not parse\n"
	writeConfig(t, fsys, "/cfg/skhdrc", damaged)

	backup, err := CreateBackup(fsys, "/cfg/skhdrc")
	require.NoError(t, err)
	writeConfig(t, fsys, "/cfg/skhdrc", "cmd - f : open -a Finder\n")

	cfg, err := RestoreBackup(context.Background(), fsys, *backup, "/cfg/skhdrc")
	require.NoError(t, err)

	assert.Equal(t, damaged, readConfig(t, fsys, "/cfg/skhdrc"),
		"restore never normalizes content")
	assert.True(t, cfg.HasParseErrors(), "parse errors in restored content are reported")
}

func TestRestoreBackupMissingBackup(t *testing.T) {
	fsys := memFS(t)

	backup := types.Backup{BackupPath: "/cfg/skhdrc.backup.20260301T103045.123456789"}
	_, err := RestoreBackup(context.Background(), fsys, backup, "/cfg/skhdrc")

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileNotFound))
}

func TestPruneBackups(t *testing.T) {
	fsys := memFS(t)
	writeConfig(t, fsys, "/cfg/skhdrc", sampleConfig)

	for i := 0; i < 5; i++ {
		_, err := CreateBackup(fsys, "/cfg/skhdrc")
		require.NoError(t, err)
	}
	newest := ListBackups(fsys, "/cfg/skhdrc")[:2]

	removed, err := PruneBackups(fsys, "/cfg/skhdrc", 2)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	remaining := ListBackups(fsys, "/cfg/skhdrc")
	require.Len(t, remaining, 2)
	assert.Equal(t, newest[0].BackupPath, remaining[0].BackupPath, "the newest survive")
	assert.Equal(t, newest[1].BackupPath, remaining[1].BackupPath)
}

func TestPruneBackupsUnderLimit(t *testing.T) {
	fsys := memFS(t)
	writeConfig(t, fsys, "/cfg/skhdrc", sampleConfig)
	_, err := CreateBackup(fsys, "/cfg/skhdrc")
	require.NoError(t, err)

	removed, err := PruneBackups(fsys, "/cfg/skhdrc", 10)
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.Len(t, ListBackups(fsys, "/cfg/skhdrc"), 1)
}

func TestPruneBackupsNegativeKeep(t *testing.T) {
	fsys := memFS(t)

	_, err := PruneBackups(fsys, "/cfg/skhdrc", -1)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}
