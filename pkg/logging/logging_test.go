package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		wantLevel zerolog.Level
	}{
		{"default warn level", 0, zerolog.WarnLevel},
		{"info level", 1, zerolog.InfoLevel},
		{"debug level", 2, zerolog.DebugLevel},
		{"trace level", 3, zerolog.TraceLevel},
		{"high verbosity defaults to trace", 5, zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			t.Setenv("XDG_STATE_HOME", tempDir)

			SetupLogger(tt.verbosity)

			if zerolog.GlobalLevel() != tt.wantLevel {
				t.Errorf("SetupLogger(%d) set level to %v, want %v",
					tt.verbosity, zerolog.GlobalLevel(), tt.wantLevel)
			}

			logPath := filepath.Join(tempDir, "skhdctl", "skhdctl.log")
			if _, err := os.Stat(logPath); os.IsNotExist(err) {
				t.Errorf("Log file was not created at %s", logPath)
			}
		})
	}
}

func TestGetLogFilePath(t *testing.T) {
	t.Run("respects XDG_STATE_HOME", func(t *testing.T) {
		t.Setenv("XDG_STATE_HOME", "/custom/state")
		got := getLogFilePath()
		want := filepath.Join("/custom/state", "skhdctl", "skhdctl.log")
		if got != want {
			t.Errorf("getLogFilePath() = %q, want %q", got, want)
		}
	})

	t.Run("falls back to home state dir", func(t *testing.T) {
		t.Setenv("XDG_STATE_HOME", "")
		home, err := os.UserHomeDir()
		if err != nil {
			t.Skip("no home directory available")
		}
		got := getLogFilePath()
		want := filepath.Join(home, ".local", "state", "skhdctl", "skhdctl.log")
		if got != want {
			t.Errorf("getLogFilePath() = %q, want %q", got, want)
		}
	})
}

func TestGetLogger(t *testing.T) {
	logger := GetLogger("parser")
	// Logger must be usable without further configuration.
	logger.Debug().Msg("component logger smoke test")
}

func TestSetupLogFileCreatesParents(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "deep", "nested", "skhdctl.log")

	file, err := setupLogFile(logPath)
	if err != nil {
		t.Fatalf("setupLogFile() error = %v", err)
	}
	defer func() { _ = file.Close() }()

	if _, err := os.Stat(logPath); err != nil {
		t.Errorf("log file missing after setup: %v", err)
	}
}
