package parser

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/skhdtools/skhdctl/pkg/logging"
	"github.com/skhdtools/skhdctl/pkg/types"
)

// Build assembles the classified-line stream for text into a ConfigFile
// aggregate: shortcuts with fresh identifiers and line numbers, global
// comments, preserved directives, and the collected parse errors. Mode
// declarations scope the shortcuts that follow them until the next
// declaration or end of file.
//
// Duplicate bindings keep the first occurrence; later ones are dropped
// from the model and recorded as DuplicateShortcut parse errors naming
// the later line.
func Build(path, text string) *types.ConfigFile {
	logger := logging.GetLogger("parser")
	cfg := types.NewConfigFile(path)

	mode := ""
	firstLine := make(map[string]int)
	for _, line := range Parse(text) {
		switch line.Kind {
		case LineBlank:
			// spacing is not part of the model

		case LineComment:
			cfg.GlobalComments = append(cfg.GlobalComments, line.Comment)

		case LineModeDecl:
			mode = line.Mode

		case LineDirective:
			cfg.Directives = append(cfg.Directives, types.Directive{
				Text:       line.Raw,
				LineNumber: line.Number,
			})

		case LineShortcut:
			s := types.Shortcut{
				ID:         uuid.NewString(),
				Modifiers:  line.Binding.Modifiers,
				Key:        line.Binding.Key,
				Command:    line.Binding.Command,
				Mode:       mode,
				Comment:    line.Binding.Comment,
				LineNumber: line.Number,
			}
			if first, dup := firstLine[s.BindingKey()]; dup {
				cfg.ParseErrors = append(cfg.ParseErrors, types.ParseError{
					LineNumber: line.Number,
					Kind:       types.ParseErrDuplicateShortcut,
					Message:    fmt.Sprintf("duplicate shortcut %s, first defined at line %d", s.KeyCombination(), first),
					RawLine:    line.Raw,
				})
				continue
			}
			firstLine[s.BindingKey()] = line.Number
			cfg.Shortcuts = append(cfg.Shortcuts, s)

		case LineUnrecognized:
			cfg.ParseErrors = append(cfg.ParseErrors, *line.Err)
		}
	}

	if len(cfg.ParseErrors) > 0 {
		logger.Debug().
			Str("path", path).
			Int("shortcuts", len(cfg.Shortcuts)).
			Int("parseErrors", len(cfg.ParseErrors)).
			Msg("Config parsed with errors")
	}

	return cfg
}
