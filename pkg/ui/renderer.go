package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/skhdtools/skhdctl/pkg/daemon"
	"github.com/skhdtools/skhdctl/pkg/templates"
	"github.com/skhdtools/skhdctl/pkg/types"
	"github.com/skhdtools/skhdctl/pkg/ui/output/styles"
	"github.com/skhdtools/skhdctl/pkg/validation"
)

// Renderer writes command results in one resolved output format.
type Renderer struct {
	format Format
	out    io.Writer
}

// NewRenderer resolves format against out and returns a renderer
// bound to both.
func NewRenderer(format Format, out io.Writer) *Renderer {
	return &Renderer{format: format.Resolve(out), out: out}
}

// Format returns the resolved output format.
func (r *Renderer) Format() Format {
	return r.format
}

// styled applies a registry style in terminal mode and passes text
// through untouched otherwise.
func (r *Renderer) styled(name, text string) string {
	if r.format == FormatTerminal {
		return styles.Get(name).Render(text)
	}
	return text
}

func (r *Renderer) printf(format string, args ...interface{}) error {
	_, err := fmt.Fprintf(r.out, format, args...)
	return err
}

func (r *Renderer) renderJSON(v interface{}) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Message prints a plain informational line.
func (r *Renderer) Message(format string, args ...interface{}) error {
	text := fmt.Sprintf(format, args...)
	if r.format == FormatJSON {
		return r.renderJSON(map[string]string{"message": text})
	}
	return r.printf("%s\n", text)
}

// Success prints a confirmation line.
func (r *Renderer) Success(format string, args ...interface{}) error {
	text := fmt.Sprintf(format, args...)
	if r.format == FormatJSON {
		return r.renderJSON(map[string]string{"message": text})
	}
	return r.printf("%s\n", r.styled("Success", text))
}

// Error prints an error line.
func (r *Renderer) Error(err error) error {
	if r.format == FormatJSON {
		return r.renderJSON(map[string]string{"error": err.Error()})
	}
	return r.printf("%s %v\n", r.styled("Error", "error:"), err)
}

// Shortcuts renders the bindings of a configuration grouped by mode,
// global scope first.
func (r *Renderer) Shortcuts(cfg *types.ConfigFile) error {
	if r.format == FormatJSON {
		return r.renderJSON(cfg)
	}

	name := cfg.Path
	if name == "" {
		name = "(unsaved)"
	}
	modes := cfg.Modes()
	header := fmt.Sprintf("%s: %d shortcuts", name, len(cfg.Shortcuts))
	if len(modes) > 0 {
		header += fmt.Sprintf(", %d modes", len(modes))
	}
	if err := r.printf("%s\n", r.styled("Header", header)); err != nil {
		return err
	}

	width := 0
	for i := range cfg.Shortcuts {
		if n := len(cfg.Shortcuts[i].KeyCombination()); n > width {
			width = n
		}
	}

	scopes := append([]string{""}, modes...)
	for _, mode := range scopes {
		shortcuts := cfg.ShortcutsInMode(mode)
		if len(shortcuts) == 0 {
			continue
		}
		if mode != "" {
			if err := r.printf("\n%s\n", r.styled("Mode", "["+mode+"]")); err != nil {
				return err
			}
		} else if err := r.printf("\n"); err != nil {
			return err
		}

		for _, s := range shortcuts {
			combo := s.KeyCombination()
			pad := strings.Repeat(" ", width-len(combo)+2)
			line := r.styled("KeyCombo", combo) + pad + r.styled("Command", s.Command)
			if s.Comment != "" {
				line += "  " + r.styled("Muted", "# "+s.Comment)
			}
			if err := r.printf("%s\n", line); err != nil {
				return err
			}
		}
	}
	return nil
}

// DaemonStatus renders one daemon observation.
func (r *Renderer) DaemonStatus(status types.DaemonStatus) error {
	if r.format == FormatJSON {
		return r.renderJSON(status)
	}

	var line string
	switch status.State {
	case types.DaemonRunning:
		line = r.styled("Success", fmt.Sprintf("daemon: running (pid %d)", status.PID))
	case types.DaemonStopped:
		line = r.styled("Warning", "daemon: stopped")
	case types.DaemonError:
		line = r.styled("Error", "daemon: error")
	default:
		line = r.styled("Muted", fmt.Sprintf("daemon: %s", status.State))
	}
	if err := r.printf("%s\n", line); err != nil {
		return err
	}

	if status.Err != "" {
		if err := r.printf("  %s\n", r.styled("Muted", status.Err)); err != nil {
			return err
		}
	}
	if status.ConfigPath != "" {
		if err := r.printf("config: %s\n", r.styled("FilePath", status.ConfigPath)); err != nil {
			return err
		}
	}
	return nil
}

// checkReport is the JSON shape of a validation run.
type checkReport struct {
	Path        string             `json:"path"`
	Valid       bool               `json:"valid"`
	ParseErrors []types.ParseError `json:"parse_errors,omitempty"`
	Errors      []string           `json:"errors,omitempty"`
	Warnings    []string           `json:"warnings,omitempty"`
}

// CheckReport renders the result of loading and validating a file.
// The verdict line comes last so it is visible under any scrollback.
func (r *Renderer) CheckReport(path string, parseErrors []types.ParseError, result validation.Result) error {
	valid := result.Valid && len(parseErrors) == 0
	if r.format == FormatJSON {
		return r.renderJSON(checkReport{
			Path:        path,
			Valid:       valid,
			ParseErrors: parseErrors,
			Errors:      result.Errors,
			Warnings:    result.Warnings,
		})
	}

	for _, pe := range parseErrors {
		if err := r.printf("%s %s\n", r.styled("Error", "parse error"), pe.String()); err != nil {
			return err
		}
	}
	for _, msg := range result.Errors {
		if err := r.printf("%s %s\n", r.styled("Error", "error"), msg); err != nil {
			return err
		}
	}
	for _, msg := range result.Warnings {
		if err := r.printf("%s %s\n", r.styled("Warning", "warning"), msg); err != nil {
			return err
		}
	}

	if valid {
		verdict := fmt.Sprintf("%s is valid", path)
		if len(result.Warnings) > 0 {
			verdict += fmt.Sprintf(" (%d warnings)", len(result.Warnings))
		}
		return r.printf("%s\n", r.styled("Success", verdict))
	}
	return r.printf("%s\n", r.styled("Error",
		fmt.Sprintf("%s has %d problem(s)", path, len(parseErrors)+len(result.Errors))))
}

// ReloadOutcome renders a finished reload attempt.
func (r *Renderer) ReloadOutcome(op *types.ReloadOperation) error {
	if r.format == FormatJSON {
		return r.renderJSON(op)
	}

	switch op.Outcome {
	case types.ReloadSucceeded:
		return r.printf("%s\n", r.styled("Success",
			fmt.Sprintf("reload committed in %s", op.Duration().Round(time.Millisecond))))
	default:
		if err := r.printf("%s %s\n", r.styled("Error", "reload failed:"), op.Err); err != nil {
			return err
		}
		if op.RollbackPerformed {
			if err := r.printf("%s\n", r.styled("Warning", "previous configuration restored")); err != nil {
				return err
			}
		}
		if op.RollbackErr != "" {
			if err := r.printf("%s %s\n", r.styled("Error", "rollback failed:"), op.RollbackErr); err != nil {
				return err
			}
		}
		return nil
	}
}

// Backups renders the backup inventory of a config file, newest
// first.
func (r *Renderer) Backups(path string, backups []types.Backup) error {
	if r.format == FormatJSON {
		if backups == nil {
			backups = []types.Backup{}
		}
		return r.renderJSON(backups)
	}

	if len(backups) == 0 {
		return r.printf("no backups for %s\n", path)
	}
	header := fmt.Sprintf("%d backup(s) for %s", len(backups), path)
	if err := r.printf("%s\n", r.styled("Header", header)); err != nil {
		return err
	}
	for _, b := range backups {
		timestamp := b.CreatedAt.UTC().Format("2006-01-02 15:04:05")
		line := fmt.Sprintf("%s  %s  %d bytes",
			r.styled("Timestamp", timestamp), r.styled("FilePath", b.BackupPath), b.Size)
		if err := r.printf("%s\n", line); err != nil {
			return err
		}
	}
	return nil
}

// Templates renders the catalog categories with their commands.
func (r *Renderer) Templates(categories []templates.Category) error {
	if r.format == FormatJSON {
		return r.renderJSON(categories)
	}

	width := 0
	for _, category := range categories {
		for _, tpl := range category.Templates {
			if len(tpl.Name) > width {
				width = len(tpl.Name)
			}
		}
	}

	for i, category := range categories {
		if i > 0 {
			if err := r.printf("\n"); err != nil {
				return err
			}
		}
		header := r.styled("SubHeader", category.Name) + "  " + r.styled("Muted", category.Description)
		if err := r.printf("%s\n", header); err != nil {
			return err
		}
		for _, tpl := range category.Templates {
			pad := strings.Repeat(" ", width-len(tpl.Name)+2)
			line := "  " + tpl.Name + pad + r.styled("Command", tpl.Command)
			if tpl.RequiresAdmin {
				line += " " + r.styled("AdminTag", "[admin]")
			}
			if err := r.printf("%s\n", line); err != nil {
				return err
			}
		}
	}
	return nil
}

// LogEntries renders daemon log lines oldest first.
func (r *Renderer) LogEntries(entries []daemon.LogEntry) error {
	if r.format == FormatJSON {
		return r.renderJSON(entries)
	}

	for _, entry := range entries {
		if entry.Timestamp.IsZero() {
			if err := r.printf("%s\n", r.styled("Muted", entry.Raw)); err != nil {
				return err
			}
			continue
		}
		level := entry.Level
		styleName := "Info"
		switch level {
		case "ERROR":
			styleName = "Error"
		case "WARN":
			styleName = "Warning"
		case "DEBUG":
			styleName = "Muted"
		}
		line := fmt.Sprintf("%s %s %s",
			r.styled("Timestamp", entry.Timestamp.Format("2006-01-02 15:04:05")),
			r.styled(styleName, fmt.Sprintf("%-5s", level)),
			entry.Message)
		if err := r.printf("%s\n", line); err != nil {
			return err
		}
	}
	return nil
}

// FileEvent renders one watcher notification; watch mode calls this
// per event.
func (r *Renderer) FileEvent(event types.FileEvent) error {
	if r.format == FormatJSON {
		return r.renderJSON(event)
	}

	verb := "modified"
	styleName := "Info"
	if event.Type == types.FileDeleted {
		verb = "deleted"
		styleName = "Warning"
	}
	return r.printf("%s %s %s\n",
		r.styled("Timestamp", event.Timestamp.Format("15:04:05")),
		r.styled(styleName, verb),
		event.Path)
}
