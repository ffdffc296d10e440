// Package validation implements pure checks for shortcuts and whole
// configurations: structural errors that block a save, and advisory
// warnings (system shortcut conflicts, destructive command patterns).
// Everything here is synchronous, allocation-light, and I/O free so it
// can run on every keystroke of an editing session.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/skhdtools/skhdctl/pkg/errors"
	"github.com/skhdtools/skhdctl/pkg/types"
)

var (
	keyTokenRe = regexp.MustCompile(`^[a-z0-9_]+$`)
	modeNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Result carries the outcome of a validation: errors make the subject
// unusable, warnings are advisory and never block an operation.
type Result struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// AddError records a blocking problem and marks the result invalid
func (r *Result) AddError(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// AddWarning records an advisory problem
func (r *Result) AddWarning(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Merge folds other into r
func (r *Result) Merge(other Result) {
	r.Valid = r.Valid && other.Valid
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// systemShortcuts are macOS combinations the OS claims before skhd
// sees them. Binding one is legal but usually a mistake.
var systemShortcuts = map[string]string{
	"cmd-space@":       "Spotlight",
	"cmd-tab@":         "application switcher",
	"cmd-q@":           "quit application",
	"cmd+shift-3@":     "screenshot",
	"cmd+shift-4@":     "screenshot selection",
	"cmd+ctrl-q@":      "lock screen",
	"alt+cmd-escape@":  "force quit dialog",
	"cmd+shift-space@": "Spotlight alternate",
}

// destructivePatterns flag commands that look like they destroy data.
// Matching is substring-based and advisory only.
var destructivePatterns = []struct {
	pattern string
	detail  string
}{
	{"rm -rf /", "recursive delete from the filesystem root"},
	{"rm -fr /", "recursive delete from the filesystem root"},
	{"sudo rm", "privileged file deletion"},
	{"mkfs", "filesystem format"},
	{"dd of=/dev/", "raw write to a device"},
	{":(){ :|:& };:", "fork bomb"},
	{"> /dev/sd", "raw write to a device"},
}

// ValidateShortcut checks one shortcut structurally and against the
// existing shortcuts for duplicate bindings. mode overrides the
// shortcut's own mode for duplicate detection when non-empty, so an
// editor can ask "would this be valid in mode X" without mutating the
// shortcut. A shortcut in existing with the same ID is ignored, which
// keeps editing-in-place from colliding with itself.
func ValidateShortcut(s types.Shortcut, existing []types.Shortcut, mode string) Result {
	result := Result{Valid: true}

	key := strings.ToLower(strings.TrimSpace(s.Key))
	switch {
	case key == "":
		result.AddError("key cannot be empty")
	case !keyTokenRe.MatchString(key):
		result.AddError("invalid key %q", s.Key)
	}

	if strings.TrimSpace(s.Command) == "" {
		result.AddError("command cannot be empty")
	}

	seen := make(map[string]bool, len(s.Modifiers))
	for _, m := range s.Modifiers {
		name := strings.ToLower(m)
		if !types.IsValidModifier(name) {
			result.AddError("invalid modifier %q", m)
			continue
		}
		if seen[name] {
			result.AddError("duplicate modifier %q", name)
		}
		seen[name] = true
	}

	effectiveMode := s.Mode
	if mode != "" {
		effectiveMode = mode
	}
	if effectiveMode != "" && !modeNameRe.MatchString(effectiveMode) {
		result.AddError("invalid mode name %q", effectiveMode)
	}

	probe := s
	probe.Mode = effectiveMode
	for i := range existing {
		if s.ID != "" && existing[i].ID == s.ID {
			continue
		}
		if existing[i].BindingKey() == probe.BindingKey() {
			result.AddError("duplicate shortcut %s: already bound to %q",
				probe.KeyCombination(), existing[i].Command)
			break
		}
	}

	warnShortcut(&result, probe)
	return result
}

// warnShortcut appends the advisory warnings for s
func warnShortcut(result *Result, s types.Shortcut) {
	if len(s.Modifiers) == 0 && s.Mode == "" {
		result.AddWarning("shortcut %s has no modifiers and fires on a bare keypress", s.Key)
	}
	if len(s.Command) > 500 {
		result.AddWarning("command is very long (%d characters)", len(s.Command))
	}
	if what, ok := systemShortcuts[s.BindingKey()]; ok {
		result.AddWarning("shortcut %s conflicts with the system %s shortcut",
			s.KeyCombination(), what)
	}
	for _, p := range destructivePatterns {
		if strings.Contains(s.Command, p.pattern) {
			result.AddWarning("command looks destructive (%s): %q", p.detail, p.pattern)
			break
		}
	}
}

// ValidateConfig validates every shortcut of cfg, including duplicate
// detection across the whole file. Warnings accumulate; parse errors
// already recorded on cfg are not re-reported here.
func ValidateConfig(cfg *types.ConfigFile) Result {
	result := Result{Valid: true}
	for i := range cfg.Shortcuts {
		result.Merge(ValidateShortcut(cfg.Shortcuts[i], cfg.Shortcuts[:i], ""))
	}
	return result
}

// CheckStructure is the fast persistence gate: it rejects a config that
// contains any shortcut with an empty key or empty command, the two
// defects that would serialize into unparsable text. It returns a
// typed ErrValidationFailed naming the first offending shortcut, or
// nil when the config is safe to serialize.
func CheckStructure(cfg *types.ConfigFile) error {
	for i := range cfg.Shortcuts {
		s := &cfg.Shortcuts[i]
		if strings.TrimSpace(s.Key) == "" {
			return errors.Newf(errors.ErrValidationFailed,
				"shortcut %d has an empty key", i+1).
				WithDetail("shortcut_id", s.ID).
				WithDetail("line", s.LineNumber)
		}
		if strings.TrimSpace(s.Command) == "" {
			return errors.Newf(errors.ErrValidationFailed,
				"shortcut %s has an empty command", s.KeyCombination()).
				WithDetail("shortcut_id", s.ID).
				WithDetail("line", s.LineNumber)
		}
	}
	return nil
}
