package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skhdtools/skhdctl/pkg/filesystem"
)

func TestConfigSearchPathsOrder(t *testing.T) {
	t.Setenv("HOME", "/home/u")
	t.Setenv("XDG_CONFIG_HOME", "/home/u/.config")
	t.Setenv(EnvConfigPath, "")

	p, err := New()
	require.NoError(t, err)

	got := p.ConfigSearchPaths()
	want := []string{
		"/home/u/.config/skhd/skhdrc",
		"/home/u/.skhdrc",
	}
	assert.Equal(t, want, got)
}

func TestConfigSearchPathsOverrideFirst(t *testing.T) {
	t.Setenv("HOME", "/home/u")
	t.Setenv("XDG_CONFIG_HOME", "/home/u/.config")
	t.Setenv(EnvConfigPath, "/etc/skhd/skhdrc")

	p, err := New()
	require.NoError(t, err)

	got := p.ConfigSearchPaths()
	require.Len(t, got, 3)
	assert.Equal(t, "/etc/skhd/skhdrc", got[0])
}

func TestFindConfigFile(t *testing.T) {
	t.Setenv("HOME", "/home/u")
	t.Setenv("XDG_CONFIG_HOME", "/home/u/.config")
	t.Setenv(EnvConfigPath, "")

	p, err := New()
	require.NoError(t, err)

	memfs := afero.NewMemMapFs()
	fs := filesystem.NewAferoFS(memfs)

	t.Run("nothing exists returns preferred default", func(t *testing.T) {
		path, found := p.FindConfigFile(fs)
		assert.False(t, found)
		assert.Equal(t, "/home/u/.config/skhd/skhdrc", path)
	})

	t.Run("legacy dotfile found when xdg missing", func(t *testing.T) {
		require.NoError(t, afero.WriteFile(memfs, "/home/u/.skhdrc", []byte("# cfg"), 0644))

		path, found := p.FindConfigFile(fs)
		assert.True(t, found)
		assert.Equal(t, "/home/u/.skhdrc", path)
	})

	t.Run("xdg location wins over legacy", func(t *testing.T) {
		require.NoError(t, afero.WriteFile(memfs, "/home/u/.config/skhd/skhdrc", []byte("# cfg"), 0644))

		path, found := p.FindConfigFile(fs)
		assert.True(t, found)
		assert.Equal(t, "/home/u/.config/skhd/skhdrc", path)
	})
}

func TestSettingsDirOverride(t *testing.T) {
	t.Setenv(EnvSettingsDir, "/custom/settings")

	p, err := New()
	require.NoError(t, err)

	assert.Equal(t, "/custom/settings", p.SettingsDir())
	assert.Equal(t, filepath.Join("/custom/settings", "config.toml"), p.SettingsFile())
}

func TestLaunchAgentPlist(t *testing.T) {
	t.Setenv("HOME", "/home/u")

	p, err := New()
	require.NoError(t, err)

	assert.Equal(t,
		"/home/u/Library/LaunchAgents/com.koekeishiya.skhd.plist",
		p.LaunchAgentPlist(""))
	assert.Equal(t,
		"/home/u/Library/LaunchAgents/org.example.hotkeys.plist",
		p.LaunchAgentPlist("org.example.hotkeys"))
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare tilde", "~", home},
		{"tilde slash", "~/x/y", filepath.Join(home, "x", "y")},
		{"no tilde", "/abs/path", "/abs/path"},
		{"tilde mid path untouched", "/a/~b", "/a/~b"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandHome(tt.in))
		})
	}
}
