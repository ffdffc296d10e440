// Package parser turns skhd config text into classified lines and
// assembles them into the ConfigFile aggregate. Parsing is tolerant:
// a line that matches no interpretation yields a ParseError for that
// line only, and parsing continues with the next line.
package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/skhdtools/skhdctl/pkg/types"
)

var (
	keyTokenRe = regexp.MustCompile(`^[a-z0-9_]+$`)
	modeNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Parse splits text into classified lines. It never fails as a whole.
func Parse(text string) []Line {
	var lines []Line
	for i, raw := range splitLines(text) {
		lines = append(lines, classify(i+1, raw))
	}
	return lines
}

// splitLines splits on newlines, tolerating CRLF. A trailing newline
// does not produce a phantom empty line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// classify decides the interpretation of one line. Marker dispatch is
// safe with respect to the shortcut-first precedence rule: binding
// tokens reject ':', '#', '.' and '::', so no marker-led line can also
// be a well-formed shortcut line.
func classify(number int, raw string) Line {
	line := Line{Number: number, Raw: raw}
	trimmed := strings.TrimSpace(raw)

	switch {
	case trimmed == "":
		line.Kind = LineBlank
	case strings.HasPrefix(trimmed, "::"):
		classifyMode(&line, trimmed)
	case strings.HasPrefix(trimmed, "#"):
		line.Kind = LineComment
		line.Comment = trimmed[1:]
	case strings.HasPrefix(trimmed, "."):
		line.Kind = LineDirective
	default:
		classifyShortcut(&line, trimmed)
	}
	return line
}

// classifyMode parses a "::name" mode declaration. A trailing comment
// after the name is tolerated and discarded; anything else after the
// name is an error.
func classifyMode(line *Line, trimmed string) {
	rest := trimmed[2:]
	if idx := strings.Index(rest, "#"); idx >= 0 {
		rest = rest[:idx]
	}
	name := strings.TrimSpace(rest)

	if name == "" {
		fail(line, types.ParseErrInvalidMode, "missing mode name after '::'")
		return
	}
	if !modeNameRe.MatchString(name) {
		fail(line, types.ParseErrInvalidMode, fmt.Sprintf("invalid mode name %q", name))
		return
	}

	line.Kind = LineModeDecl
	line.Mode = name
}

// classifyShortcut parses "<modifier>(+<modifier>)* - <key> : <command>"
// with an optional trailing comment. Whitespace around modifiers, '-'
// and ':' is insignificant.
func classifyShortcut(line *Line, trimmed string) {
	body, comment := splitTrailingComment(trimmed)
	body = strings.TrimSpace(body)

	colon := strings.Index(body, ":")
	if colon < 0 {
		fail(line, types.ParseErrInvalidSyntax, "missing ':' between key combination and command")
		return
	}

	bindingPart := strings.TrimSpace(body[:colon])
	command := strings.TrimSpace(body[colon+1:])

	if bindingPart == "" {
		fail(line, types.ParseErrInvalidSyntax, "missing key combination before ':'")
		return
	}

	var mods []string
	keyPart := bindingPart
	if dash := strings.Index(bindingPart, "-"); dash >= 0 {
		modsPart := strings.TrimSpace(bindingPart[:dash])
		keyPart = strings.TrimSpace(bindingPart[dash+1:])

		// An empty modifier list before '-' is the legacy render of a
		// modifier-less shortcut ("- f1 : cmd") and stays accepted.
		if modsPart != "" {
			seen := make(map[string]bool)
			for _, tok := range strings.Split(modsPart, "+") {
				written := strings.TrimSpace(tok)
				name := strings.ToLower(written)
				if name == "" {
					fail(line, types.ParseErrInvalidModifier, "empty modifier in combination")
					return
				}
				if !types.IsValidModifier(name) {
					failAt(line, column(line.Raw, written), types.ParseErrInvalidModifier,
						fmt.Sprintf("unknown modifier %q", written))
					return
				}
				if seen[name] {
					fail(line, types.ParseErrInvalidModifier, fmt.Sprintf("duplicate modifier %q", name))
					return
				}
				seen[name] = true
				mods = append(mods, name)
			}
		}
	}

	key := strings.ToLower(keyPart)
	if key == "" {
		fail(line, types.ParseErrInvalidKey, "missing key name")
		return
	}
	if !keyTokenRe.MatchString(key) {
		failAt(line, column(line.Raw, keyPart), types.ParseErrInvalidKey,
			fmt.Sprintf("invalid key %q", keyPart))
		return
	}

	if command == "" {
		fail(line, types.ParseErrMissingCommand, "missing command after ':'")
		return
	}

	line.Kind = LineShortcut
	line.Binding = &Binding{
		Modifiers: mods,
		Key:       key,
		Command:   command,
		Comment:   comment,
	}
}

// splitTrailingComment splits body at the first '#' that is outside
// single and double quotes and preceded by whitespace, so '#' inside
// quoted command arguments is kept.
func splitTrailingComment(s string) (body, comment string) {
	inSingle, inDouble := false, false
	for i, r := range s {
		switch {
		case r == '\'' && !inDouble:
			inSingle = !inSingle
		case r == '"' && !inSingle:
			inDouble = !inDouble
		case r == '#' && !inSingle && !inDouble:
			if i > 0 && (s[i-1] == ' ' || s[i-1] == '\t') {
				return s[:i], strings.TrimSpace(s[i+1:])
			}
		}
	}
	return s, ""
}

func fail(line *Line, kind types.ParseErrorKind, message string) {
	failAt(line, 0, kind, message)
}

func failAt(line *Line, column int, kind types.ParseErrorKind, message string) {
	line.Kind = LineUnrecognized
	line.Binding = nil
	line.Err = &types.ParseError{
		LineNumber: line.Number,
		Column:     column,
		Kind:       kind,
		Message:    message,
		RawLine:    line.Raw,
	}
}

// column returns the 1-based byte offset of token in raw, 0 if absent
func column(raw, token string) int {
	if token == "" {
		return 0
	}
	if idx := strings.Index(raw, token); idx >= 0 {
		return idx + 1
	}
	return 0
}
