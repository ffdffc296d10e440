package types

import "fmt"

// ParseErrorKind classifies a line-level parse failure
type ParseErrorKind string

const (
	ParseErrInvalidModifier   ParseErrorKind = "invalid_modifier"
	ParseErrInvalidKey        ParseErrorKind = "invalid_key"
	ParseErrMissingCommand    ParseErrorKind = "missing_command"
	ParseErrInvalidSyntax     ParseErrorKind = "invalid_syntax"
	ParseErrDuplicateShortcut ParseErrorKind = "duplicate_shortcut"
	ParseErrInvalidMode       ParseErrorKind = "invalid_mode"

	// ParseErrFileMissing is attached by load when the config file does
	// not exist; loading still succeeds with an empty ConfigFile.
	ParseErrFileMissing ParseErrorKind = "file_missing"
)

// ParseError records one line-level failure. Parse errors never prevent
// loading of the remaining valid entries.
type ParseError struct {
	// LineNumber is 1-based; 0 when the error is not tied to a line
	LineNumber int `json:"line_number"`

	// Column is 1-based; 0 when unknown
	Column int `json:"column,omitempty"`

	Kind    ParseErrorKind `json:"kind"`
	Message string         `json:"message"`

	// RawLine is the offending line text, verbatim
	RawLine string `json:"raw_line,omitempty"`
}

func (e ParseError) String() string {
	if e.LineNumber == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	if e.Column > 0 {
		return fmt.Sprintf("line %d:%d: %s: %s", e.LineNumber, e.Column, e.Kind, e.Message)
	}
	return fmt.Sprintf("line %d: %s: %s", e.LineNumber, e.Kind, e.Message)
}
