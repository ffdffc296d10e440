package daemon

import (
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/skhdtools/skhdctl/pkg/errors"
	"github.com/skhdtools/skhdctl/pkg/types"
)

// LogEntry is one line of skhd daemon output. Lines that do not match
// the daemon's log format keep a zero Timestamp and carry the raw text
// as the message.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Raw       string    `json:"raw"`
}

const logTimeLayout = "2006-01-02 15:04:05"

// skhd writes "2024-03-01 10:42:07 [INFO] message" style lines.
var logLineRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})\s+\[(\w+)\]\s+(.*)$`)

// ReadLogTail returns the last n entries of the daemon log at path,
// oldest first.
func ReadLogTail(fsys types.FS, path string, n int) ([]LogEntry, error) {
	if n <= 0 {
		return nil, errors.Newf(errors.ErrInvalidInput, "log tail size must be positive, got %d", n)
	}

	data, err := fsys.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(err, errors.ErrFileNotFound, "log file not found: %s", path)
		}
		return nil, errors.Wrapf(err, errors.ErrFileRead, "failed to read log file: %s", path)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	entries := make([]LogEntry, 0, n)
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		entries = append(entries, parseLogLine(line))
	}
	if len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries, nil
}

// parseLogLine never fails: unrecognized lines become INFO entries so
// panics and multi-line output from the daemon still show up.
func parseLogLine(line string) LogEntry {
	if m := logLineRe.FindStringSubmatch(line); m != nil {
		if level := canonicalLevel(m[2]); level != "" {
			if ts, err := time.Parse(logTimeLayout, m[1]); err == nil {
				return LogEntry{Timestamp: ts, Level: level, Message: m[3], Raw: line}
			}
		}
	}
	return LogEntry{Level: "INFO", Message: line, Raw: line}
}

func canonicalLevel(s string) string {
	switch strings.ToUpper(s) {
	case "ERROR", "ERR":
		return "ERROR"
	case "WARN", "WARNING":
		return "WARN"
	case "INFO":
		return "INFO"
	case "DEBUG", "DBG":
		return "DEBUG"
	default:
		return ""
	}
}
