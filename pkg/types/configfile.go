package types

import (
	"time"

	"github.com/google/uuid"

	"github.com/skhdtools/skhdctl/pkg/errors"
)

// ConfigFile is the aggregate root for one skhd configuration file.
// Shortcut order reflects original line order unless explicitly
// reordered; IsModified is true whenever the in-memory model diverges
// from the last successful persistence.
type ConfigFile struct {
	// Path is the absolute file path, empty for an unsaved draft
	Path string `json:"path,omitempty"`

	// Shortcuts in file order
	Shortcuts []Shortcut `json:"shortcuts"`

	// GlobalComments holds comment lines not attached to any shortcut
	GlobalComments []string `json:"global_comments,omitempty"`

	// Directives are daemon directive lines (.load, .blacklist, ...),
	// preserved verbatim and never interpreted
	Directives []Directive `json:"directives,omitempty"`

	// ParseErrors collected during load, never fatal on their own
	ParseErrors []ParseError `json:"parse_errors,omitempty"`

	LastModified time.Time `json:"last_modified"`
	IsModified   bool      `json:"is_modified"`

	// BackupPath is the most recent backup created for this file
	BackupPath string `json:"backup_path,omitempty"`
}

// NewConfigFile creates an empty in-memory config for the given path.
// An empty path denotes an unsaved draft.
func NewConfigFile(path string) *ConfigFile {
	return &ConfigFile{
		Path:      path,
		Shortcuts: []Shortcut{},
	}
}

// AddShortcut appends a shortcut, assigning an identifier when missing,
// and marks the config modified.
func (c *ConfigFile) AddShortcut(s Shortcut) Shortcut {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	c.Shortcuts = append(c.Shortcuts, s)
	c.IsModified = true
	return s
}

// UpdateShortcut replaces the shortcut with the same ID
func (c *ConfigFile) UpdateShortcut(s Shortcut) error {
	for i := range c.Shortcuts {
		if c.Shortcuts[i].ID == s.ID {
			c.Shortcuts[i] = s
			c.IsModified = true
			return nil
		}
	}
	return errors.Newf(errors.ErrNotFound, "no shortcut with id %s", s.ID)
}

// RemoveShortcut deletes the shortcut with the given ID, preserving order
func (c *ConfigFile) RemoveShortcut(id string) error {
	for i := range c.Shortcuts {
		if c.Shortcuts[i].ID == id {
			c.Shortcuts = append(c.Shortcuts[:i], c.Shortcuts[i+1:]...)
			c.IsModified = true
			return nil
		}
	}
	return errors.Newf(errors.ErrNotFound, "no shortcut with id %s", id)
}

// FindShortcut returns the shortcut with the given ID
func (c *ConfigFile) FindShortcut(id string) (*Shortcut, bool) {
	for i := range c.Shortcuts {
		if c.Shortcuts[i].ID == id {
			return &c.Shortcuts[i], true
		}
	}
	return nil, false
}

// Modes returns the non-empty mode names in first-seen order
func (c *ConfigFile) Modes() []string {
	seen := make(map[string]bool)
	var modes []string
	for i := range c.Shortcuts {
		mode := c.Shortcuts[i].Mode
		if mode == "" || seen[mode] {
			continue
		}
		seen[mode] = true
		modes = append(modes, mode)
	}
	return modes
}

// ShortcutsInMode returns the shortcuts scoped to mode, in file order.
// An empty mode selects the global scope.
func (c *ConfigFile) ShortcutsInMode(mode string) []Shortcut {
	var out []Shortcut
	for i := range c.Shortcuts {
		if c.Shortcuts[i].Mode == mode {
			out = append(out, c.Shortcuts[i])
		}
	}
	return out
}

// HasParseErrors reports whether any parse errors were collected
func (c *ConfigFile) HasParseErrors() bool {
	return len(c.ParseErrors) > 0
}

// MarkSaved records a successful persistence at ts
func (c *ConfigFile) MarkSaved(ts time.Time) {
	c.LastModified = ts
	c.IsModified = false
}
