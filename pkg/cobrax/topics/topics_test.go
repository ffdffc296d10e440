package topics

import (
	"bytes"
	"testing"
	"testing/fstest"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func topicsFS() fstest.MapFS {
	return fstest.MapFS{
		"syntax.md":   {Data: []byte("# Syntax\n\nBinding grammar.")},
		"backups.md":  {Data: []byte("# Backups\n\nHow backups rotate.")},
		"reload.txt":  {Data: []byte("Reload walks through validate, backup, write, restart.")},
		"notes.json":  {Data: []byte(`{"ignored": true}`)},
		"sub/deep.md": {Data: []byte("# Deep\n\nNested topics load too.")},
	}
}

func TestNewManagerLoadsDefaultExtensions(t *testing.T) {
	m, err := NewManager(topicsFS(), Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"backups", "deep", "reload", "syntax"}, m.Names())

	topic, ok := m.Topic("reload")
	require.True(t, ok)
	assert.Equal(t, "Reload walks through validate, backup, write, restart.", topic.Content)

	_, ok = m.Topic("notes")
	assert.False(t, ok, ".json files are not topics by default")
}

func TestNewManagerCustomExtensions(t *testing.T) {
	m, err := NewManager(topicsFS(), Options{Extensions: []string{".json"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"notes"}, m.Names())
}

func TestTopicStripsFlagDashes(t *testing.T) {
	m, err := NewManager(topicsFS(), Options{})
	require.NoError(t, err)

	topic, ok := m.Topic("--syntax")
	require.True(t, ok)
	assert.Equal(t, "syntax", topic.Name)
}

func newTestRoot() (*cobra.Command, *bytes.Buffer) {
	root := &cobra.Command{Use: "skhdctl"}
	root.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		Run:   func(cmd *cobra.Command, args []string) {},
	})

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	return root, &buf
}

func TestInstallListsTopics(t *testing.T) {
	root, buf := newTestRoot()
	require.NoError(t, Install(root, topicsFS(), Options{}))

	root.SetArgs([]string{"help", "topics"})
	require.NoError(t, root.Execute())

	out := buf.String()
	assert.Contains(t, out, "Available help topics:")
	assert.Contains(t, out, "syntax")
	assert.Contains(t, out, "backups")
	assert.Contains(t, out, "Use 'skhdctl help <topic>'")
}

func TestInstallShowsTopicContent(t *testing.T) {
	root, buf := newTestRoot()
	require.NoError(t, Install(root, topicsFS(), Options{}))

	root.SetArgs([]string{"help", "reload"})
	require.NoError(t, root.Execute())

	assert.Contains(t, buf.String(), "validate, backup, write, restart")
}

func TestInstallCommandHelpWinsOverTopic(t *testing.T) {
	root, buf := newTestRoot()
	fsys := topicsFS()
	fsys["status.md"] = &fstest.MapFile{Data: []byte("shadowed by the command")}
	require.NoError(t, Install(root, fsys, Options{}))

	root.SetArgs([]string{"help", "status"})
	require.NoError(t, root.Execute())

	out := buf.String()
	assert.Contains(t, out, "Show daemon status")
	assert.NotContains(t, out, "shadowed by the command")
}

func TestInstallUnknownNameFallsBackToRootHelp(t *testing.T) {
	root, buf := newTestRoot()
	require.NoError(t, Install(root, topicsFS(), Options{}))

	root.SetArgs([]string{"help", "no-such-thing"})
	require.NoError(t, root.Execute())

	assert.Contains(t, buf.String(), "Usage:")
}

func TestInstallEmptyTopicSet(t *testing.T) {
	root, buf := newTestRoot()
	require.NoError(t, Install(root, fstest.MapFS{}, Options{}))

	root.SetArgs([]string{"help", "topics"})
	require.NoError(t, root.Execute())

	assert.Contains(t, buf.String(), "No help topics available.")
}

func TestPlainRendererPassesThrough(t *testing.T) {
	r := &PlainRenderer{}

	assert.Equal(t, "raw *markdown*", r.Render("raw *markdown*", ".md"))
}

func TestGlamourRendererLeavesPlainTextAlone(t *testing.T) {
	r := NewGlamourRenderer()

	assert.Equal(t, "plain notes", r.Render("plain notes", ".txt"))
}

func TestGlamourRendererRendersMarkdown(t *testing.T) {
	r := &GlamourRenderer{Style: "notty", Width: 60}

	out := r.Render("# Heading\n\nBody text.", ".md")
	assert.Contains(t, out, "Heading")
	assert.Contains(t, out, "Body text.")
}
