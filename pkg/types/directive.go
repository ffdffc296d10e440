package types

// Directive is one daemon directive line (a line whose first non-blank
// character is '.'). skhdctl passes these through untouched.
type Directive struct {
	// Text is the verbatim line content
	Text string `json:"text"`

	// LineNumber is 1-based, 0 for directives not yet persisted
	LineNumber int `json:"line_number,omitempty"`
}
