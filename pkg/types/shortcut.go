package types

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// ValidModifiers is the fixed modifier vocabulary, already in canonical
// (lexicographic) render order.
var ValidModifiers = []string{"alt", "cmd", "ctrl", "fn", "shift"}

// IsValidModifier reports whether name is a member of the modifier vocabulary.
func IsValidModifier(name string) bool {
	for _, m := range ValidModifiers {
		if m == name {
			return true
		}
	}
	return false
}

// Shortcut represents one modifier-combination-to-command binding
type Shortcut struct {
	// ID is a stable identifier assigned at parse or creation time, never reused
	ID string `json:"id"`

	// Modifiers holds members of the modifier vocabulary, duplicates forbidden
	Modifiers []string `json:"modifiers"`

	// Key is the key token, case-normalized to lower case
	Key string `json:"key"`

	// Command is the shell text executed by the daemon, kept opaque
	Command string `json:"command"`

	// Mode is the mode scope; empty means global
	Mode string `json:"mode,omitempty"`

	// Comment is the trailing comment on the shortcut's line, without the #
	Comment string `json:"comment,omitempty"`

	// LineNumber is the 1-based source line, 0 for shortcuts not yet persisted
	LineNumber int `json:"line_number,omitempty"`
}

// NewShortcut creates a shortcut with a fresh identifier.
// The key is case-normalized; modifiers are kept in the given order.
func NewShortcut(modifiers []string, key, command string) Shortcut {
	return Shortcut{
		ID:        uuid.NewString(),
		Modifiers: modifiers,
		Key:       strings.ToLower(key),
		Command:   command,
	}
}

// SortedModifiers returns the modifiers in canonical order without
// mutating the shortcut.
func (s *Shortcut) SortedModifiers() []string {
	mods := make([]string, len(s.Modifiers))
	copy(mods, s.Modifiers)
	sort.Strings(mods)
	return mods
}

// KeyCombination renders the canonical human-readable combination,
// e.g. "cmd + shift - f", or just the key when no modifiers are set.
func (s *Shortcut) KeyCombination() string {
	if len(s.Modifiers) == 0 {
		return s.Key
	}
	return fmt.Sprintf("%s - %s", strings.Join(s.SortedModifiers(), " + "), s.Key)
}

// BindingKey returns the duplicate-detection key for this shortcut.
// Two shortcuts with equal binding keys bind the same combination in
// the same mode regardless of modifier order or command.
func (s *Shortcut) BindingKey() string {
	return fmt.Sprintf("%s-%s@%s", strings.Join(s.SortedModifiers(), "+"), s.Key, s.Mode)
}

// Clone returns a deep copy of the shortcut
func (s *Shortcut) Clone() Shortcut {
	out := *s
	out.Modifiers = make([]string, len(s.Modifiers))
	copy(out.Modifiers, s.Modifiers)
	return out
}
