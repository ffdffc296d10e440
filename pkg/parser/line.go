package parser

import (
	"github.com/skhdtools/skhdctl/pkg/types"
)

// LineKind classifies one physical line of config text
type LineKind int

const (
	LineBlank LineKind = iota
	LineComment
	LineModeDecl
	LineDirective
	LineShortcut
	LineUnrecognized
)

// String returns the kind name used in logs and error messages
func (k LineKind) String() string {
	switch k {
	case LineBlank:
		return "blank"
	case LineComment:
		return "comment"
	case LineModeDecl:
		return "mode-declaration"
	case LineDirective:
		return "directive"
	case LineShortcut:
		return "shortcut"
	case LineUnrecognized:
		return "unrecognized"
	default:
		return "invalid"
	}
}

// Binding is the shortcut payload of a parsed line, before the model
// builder assigns an identifier and mode scope.
type Binding struct {
	// Modifiers in written order, case-normalized, vocabulary-checked
	Modifiers []string

	// Key token, case-normalized
	Key string

	// Command is the shell text after ':', trailing comment stripped
	Command string

	// Comment is the trailing comment text, trimmed, without the '#'
	Comment string
}

// Line is one classified physical line. The payload field matching
// Kind is meaningful; Err is set exactly when Kind is LineUnrecognized.
type Line struct {
	// Number is the 1-based source line number
	Number int

	// Raw is the original line text, verbatim
	Raw string

	Kind LineKind

	// Comment holds the text after '#' for LineComment, verbatim so
	// serialization can reproduce the original spacing
	Comment string

	// Mode holds the declared mode name for LineModeDecl
	Mode string

	// Binding holds the parsed shortcut for LineShortcut
	Binding *Binding

	// Err holds the parse failure for LineUnrecognized
	Err *types.ParseError
}
