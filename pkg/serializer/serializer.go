// Package serializer renders a ConfigFile back to skhd config text.
// It is the inverse of pkg/parser: the output of Serialize re-parses
// without introducing new parse errors, and serializing twice yields
// identical text.
package serializer

import (
	"strings"

	"github.com/skhdtools/skhdctl/pkg/types"
)

// Serialize renders cfg as skhd config text. Global comments are
// normalized to the top of the file, followed by daemon directives,
// the global shortcuts, and one group per mode in first-seen order.
// Modifiers render in canonical order regardless of how they were
// written; trailing comments stay on the shortcut's line.
//
// Comment position relative to individual shortcuts is not
// reconstructed; only comment text and order survive the round trip.
func Serialize(cfg *types.ConfigFile) string {
	var b strings.Builder

	writeComments(&b, cfg.GlobalComments)
	writeDirectives(&b, cfg.Directives, b.Len() > 0)

	groups := shortcutGroups(cfg)
	for _, g := range groups {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		if g.mode != "" {
			b.WriteString("::" + g.mode + "\n")
		}
		for _, s := range g.shortcuts {
			writeShortcut(&b, s)
		}
	}

	return b.String()
}

// writeComments renders comment lines byte-identically to their parsed
// form: the stored text is everything after '#', spacing included.
func writeComments(b *strings.Builder, comments []string) {
	for _, c := range comments {
		b.WriteString("#")
		b.WriteString(c)
		b.WriteString("\n")
	}
}

func writeDirectives(b *strings.Builder, directives []types.Directive, separate bool) {
	if len(directives) == 0 {
		return
	}
	if separate {
		b.WriteString("\n")
	}
	for _, d := range directives {
		b.WriteString(d.Text)
		b.WriteString("\n")
	}
}

func writeShortcut(b *strings.Builder, s types.Shortcut) {
	b.WriteString(s.KeyCombination())
	b.WriteString(" : ")
	b.WriteString(s.Command)
	if s.Comment != "" {
		b.WriteString(" # ")
		b.WriteString(s.Comment)
	}
	b.WriteString("\n")
}

type group struct {
	mode      string
	shortcuts []types.Shortcut
}

// shortcutGroups buckets shortcuts by mode: the global scope first,
// then each mode in the order it first appears in the file.
func shortcutGroups(cfg *types.ConfigFile) []group {
	var groups []group
	index := make(map[string]int)

	if global := cfg.ShortcutsInMode(""); len(global) > 0 {
		index[""] = 0
		groups = append(groups, group{mode: "", shortcuts: global})
	}

	for i := range cfg.Shortcuts {
		mode := cfg.Shortcuts[i].Mode
		if mode == "" {
			continue
		}
		at, ok := index[mode]
		if !ok {
			at = len(groups)
			index[mode] = at
			groups = append(groups, group{mode: mode})
		}
		groups[at].shortcuts = append(groups[at].shortcuts, cfg.Shortcuts[i])
	}

	return groups
}
