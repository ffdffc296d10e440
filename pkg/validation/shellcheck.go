package validation

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/skhdtools/skhdctl/pkg/errors"
)

// syntaxCheckTimeout bounds the sh invocation; parsing a one-line
// command should be instantaneous.
const syntaxCheckTimeout = 5 * time.Second

// CheckCommandSyntax asks the POSIX shell to parse command without
// executing it (sh -n). A non-nil return means the command would fail
// at dispatch time; the shell's stderr is folded into the message.
func CheckCommandSyntax(ctx context.Context, command string) error {
	if strings.TrimSpace(command) == "" {
		return errors.New(errors.ErrInvalidInput, "command is empty")
	}

	ctx, cancel := context.WithTimeout(ctx, syntaxCheckTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-n", "-c", command)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return errors.Wrap(ctx.Err(), errors.ErrValidationFailed, "shell syntax check timed out")
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return errors.Newf(errors.ErrValidationFailed, "shell syntax error: %s", msg).
			WithDetail("command", command)
	}
	return nil
}

// ShellEscape wraps s in single quotes for safe interpolation into a
// shell command line. Embedded single quotes become '\'' per the
// POSIX quoting rules.
func ShellEscape(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
