package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skhdtools/skhdctl/pkg/paths"
)

// isolateSettings points the settings lookup at an empty temp dir so
// the developer's real config.toml cannot leak into tests.
func isolateSettings(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(paths.EnvSettingsDir, dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolateSettings(t)

	s, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "", s.Config.Path)
	assert.Equal(t, 10, s.Backup.Retention)
	assert.Equal(t, "com.koekeishiya.skhd", s.Daemon.Label)
	assert.Equal(t, "", s.Daemon.Plist)
	assert.Equal(t, 5, s.Reload.VerifyAttempts)
	assert.Equal(t, 200*time.Millisecond, s.Reload.VerifyDelay)
	assert.Equal(t, 300*time.Millisecond, s.Watch.Debounce)
	assert.Equal(t, "", s.Logs.Path)
}

func TestLoadUserFileOverridesDefaults(t *testing.T) {
	dir := isolateSettings(t)

	userToml := `
[backup]
retention = 3

[watch]
debounce = "1s"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, paths.SettingsFileName), []byte(userToml), 0644))

	s, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, 3, s.Backup.Retention)
	assert.Equal(t, time.Second, s.Watch.Debounce)
	// Untouched keys keep their defaults.
	assert.Equal(t, 5, s.Reload.VerifyAttempts)
}

func TestLoadEnvOverridesUserFile(t *testing.T) {
	dir := isolateSettings(t)

	userToml := "[backup]\nretention = 3\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, paths.SettingsFileName), []byte(userToml), 0644))

	t.Setenv("SKHDCTL_BACKUP_RETENTION", "7")
	t.Setenv("SKHDCTL_RELOAD_VERIFY_ATTEMPTS", "9")
	t.Setenv("SKHDCTL_DAEMON_LABEL", "com.example.skhd")

	s, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, 7, s.Backup.Retention)
	assert.Equal(t, 9, s.Reload.VerifyAttempts)
	assert.Equal(t, "com.example.skhd", s.Daemon.Label)
}

func TestLoadOverridesWinOverEverything(t *testing.T) {
	isolateSettings(t)
	t.Setenv("SKHDCTL_BACKUP_RETENTION", "7")

	s, err := Load(map[string]interface{}{
		"backup.retention":    2,
		"reload.verify_delay": "50ms",
		"config.path":         "/tmp/skhdrc",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, s.Backup.Retention)
	assert.Equal(t, 50*time.Millisecond, s.Reload.VerifyDelay)
	assert.Equal(t, "/tmp/skhdrc", s.Config.Path)
}

func TestLoadFloorsBadValues(t *testing.T) {
	dir := isolateSettings(t)

	userToml := `
[backup]
retention = -1

[reload]
verify_attempts = 0
verify_delay = "0s"

[watch]
debounce = "-10ms"

[daemon]
label = ""
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, paths.SettingsFileName), []byte(userToml), 0644))

	s, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, 10, s.Backup.Retention)
	assert.Equal(t, 5, s.Reload.VerifyAttempts)
	assert.Equal(t, 200*time.Millisecond, s.Reload.VerifyDelay)
	assert.Equal(t, 300*time.Millisecond, s.Watch.Debounce)
	assert.Equal(t, paths.DefaultDaemonLabel, s.Daemon.Label)
}

func TestLoadRejectsMalformedUserFile(t *testing.T) {
	dir := isolateSettings(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, paths.SettingsFileName), []byte("[backup\nretention"), 0644))

	_, err := Load(nil)
	assert.Error(t, err)
}

func TestEnvKeyToPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SKHDCTL_BACKUP_RETENTION", "backup.retention"},
		{"SKHDCTL_RELOAD_VERIFY_ATTEMPTS", "reload.verify_attempts"},
		{"SKHDCTL_RELOAD_VERIFY_DELAY", "reload.verify_delay"},
		{"SKHDCTL_CONFIG_PATH", "config.path"},
		{"SKHDCTL_WATCH_DEBOUNCE", "watch.debounce"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, envKeyToPath(tt.in))
	}
}
