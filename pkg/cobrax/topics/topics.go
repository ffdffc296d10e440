// Package topics adds file-backed help topics to a cobra application.
// Topics are markdown or plain-text documents served through the normal
// help command, so `skhdctl help syntax` reads a document the same way
// `skhdctl help reload` describes a subcommand.
package topics

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// Topic is one named help document.
type Topic struct {
	// Name is the lookup key, the file name without its extension
	Name string

	// Path is the file's location inside the source file system
	Path string

	Content string
}

// Manager resolves topic names against documents loaded from a file
// system, typically an embedded one.
type Manager struct {
	topics       map[string]*Topic
	extensions   []string
	renderer     Renderer
	originalHelp func(*cobra.Command, []string)
}

// Options configures Install and NewManager.
type Options struct {
	// Extensions filters which files become topics.
	// Defaults to [".md", ".txt"].
	Extensions []string

	// Renderer formats topic content before display.
	// Defaults to PlainRenderer.
	Renderer Renderer
}

// NewManager loads every matching document under fsys into a manager.
func NewManager(fsys fs.FS, opts Options) (*Manager, error) {
	m := &Manager{
		topics:     make(map[string]*Topic),
		extensions: opts.Extensions,
		renderer:   opts.Renderer,
	}
	if len(m.extensions) == 0 {
		m.extensions = []string{".md", ".txt"}
	}
	if m.renderer == nil {
		m.renderer = &PlainRenderer{}
	}
	if err := m.load(fsys); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) load(fsys fs.FS) error {
	return fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := path.Ext(p)
		if !m.supported(ext) {
			return nil
		}
		content, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("read topic %s: %w", p, err)
		}
		name := strings.TrimSuffix(path.Base(p), ext)
		m.topics[name] = &Topic{Name: name, Path: p, Content: string(content)}
		return nil
	})
}

func (m *Manager) supported(ext string) bool {
	for _, e := range m.extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Topic returns the document for name. Leading dashes are stripped so
// a flag spelling like `help --write` can resolve a topic too.
func (m *Manager) Topic(name string) (*Topic, bool) {
	name = strings.TrimPrefix(name, "--")
	name = strings.TrimPrefix(name, "-")
	t, ok := m.topics[name]
	return t, ok
}

// Names returns all topic names in alphabetical order.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.topics))
	for name := range m.topics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *Manager) render(t *Topic) string {
	return m.renderer.Render(t.Content, path.Ext(t.Path))
}

// Install replaces root's help command and help function with ones
// that also know the manager's topics. Command help keeps priority;
// a topic is shown only when no command matches.
func Install(root *cobra.Command, fsys fs.FS, opts Options) error {
	m, err := NewManager(fsys, opts)
	if err != nil {
		return fmt.Errorf("load help topics: %w", err)
	}

	m.originalHelp = root.HelpFunc()

	helpCmd := &cobra.Command{
		Use:   "help [command or topic]",
		Short: "Help about any command or topic",
		Long: fmt.Sprintf(`Help provides help for any command or topic.
Type %[1]s help [command or topic] for full details.

To see all available help topics:
  %[1]s help topics`, root.Name()),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			completions := []string{"topics"}
			for _, c := range root.Commands() {
				if !c.Hidden {
					completions = append(completions, c.Name())
				}
			}
			completions = append(completions, m.Names()...)
			return completions, cobra.ShellCompDirectiveNoFileComp
		},
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 0 {
				m.originalHelp(root, []string{})
				return
			}

			if args[0] == "topics" {
				names := m.Names()
				if len(names) == 0 {
					cmd.Println("No help topics available.")
					return
				}
				cmd.Println("Available help topics:")
				for _, name := range names {
					cmd.Printf("  %s\n", name)
				}
				cmd.Printf("\nUse '%s help <topic>' to read one.\n", root.Name())
				return
			}

			// A command with this name wins over a topic.
			if target, _, err := root.Find(args); err == nil && target != root {
				m.originalHelp(target, args)
				return
			}
			if topic, ok := m.Topic(args[0]); ok {
				cmd.Print(m.render(topic))
				return
			}
			m.originalHelp(root, args)
		},
	}

	for _, cmd := range root.Commands() {
		if cmd.Name() == "help" {
			root.RemoveCommand(cmd)
			break
		}
	}
	root.AddCommand(helpCmd)

	root.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if len(args) > 0 {
			if topic, ok := m.Topic(args[0]); ok {
				cmd.Print(m.render(topic))
				return
			}
		}
		m.originalHelp(cmd, args)
	})

	return nil
}
