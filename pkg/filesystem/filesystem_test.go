package filesystem

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSFSRoundTrip(t *testing.T) {
	fs := NewOS()
	dir := t.TempDir()
	path := filepath.Join(dir, "skhdrc")

	require.NoError(t, fs.WriteFile(path, []byte("cmd - f : open\n"), 0644))

	data, err := fs.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "cmd - f : open\n", string(data))

	info, err := fs.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), info.Size())

	renamed := filepath.Join(dir, "skhdrc.new")
	require.NoError(t, fs.Rename(path, renamed))

	_, err = fs.Stat(path)
	assert.Error(t, err, "old path should be gone after rename")

	entries, err := fs.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "skhdrc.new", entries[0].Name())

	require.NoError(t, fs.Remove(renamed))
}

func TestAferoFSRoundTrip(t *testing.T) {
	fs := NewAferoFS(afero.NewMemMapFs())

	require.NoError(t, fs.MkdirAll("/home/user/.config/skhd", 0755))
	require.NoError(t, fs.WriteFile("/home/user/.config/skhd/skhdrc", []byte("# empty\n"), 0644))

	data, err := fs.ReadFile("/home/user/.config/skhd/skhdrc")
	require.NoError(t, err)
	assert.Equal(t, "# empty\n", string(data))

	entries, err := fs.ReadDir("/home/user/.config/skhd")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "skhdrc", entries[0].Name())
}

func TestAferoFSReadFileOnDirectory(t *testing.T) {
	fs := NewAferoFS(afero.NewMemMapFs())
	require.NoError(t, fs.MkdirAll("/etc/skhd", 0755))

	_, err := fs.ReadFile("/etc/skhd")
	assert.Error(t, err, "reading a directory must fail")
}

func TestAferoFSReadOnly(t *testing.T) {
	base := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(base, "/cfg/skhdrc", []byte("x"), 0644))
	fs := NewAferoFS(afero.NewReadOnlyFs(base))

	_, err := fs.ReadFile("/cfg/skhdrc")
	require.NoError(t, err)

	err = fs.WriteFile("/cfg/skhdrc", []byte("y"), 0644)
	assert.Error(t, err, "read-only filesystem must reject writes")
}
