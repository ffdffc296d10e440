package daemon

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/skhdtools/skhdctl/pkg/errors"
	"github.com/skhdtools/skhdctl/pkg/logging"
	"github.com/skhdtools/skhdctl/pkg/paths"
	"github.com/skhdtools/skhdctl/pkg/types"
)

// commandTimeout bounds every launchctl invocation
const commandTimeout = 10 * time.Second

// runFunc executes a command and returns its output. It exists so
// tests can script launchctl without a real launchd.
type runFunc func(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)

// Launchd controls skhd through the launchctl command line.
type Launchd struct {
	label     string
	plistPath string
	fsys      types.FS
	run       runFunc
}

// NewLaunchd creates a controller for the launchd job label. An empty
// label selects the conventional skhd label; an empty plistPath
// resolves to ~/Library/LaunchAgents/<label>.plist.
func NewLaunchd(fsys types.FS, label, plistPath string) (*Launchd, error) {
	if label == "" {
		label = paths.DefaultDaemonLabel
	}
	if plistPath == "" {
		p, err := paths.New()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "failed to resolve plist location")
		}
		plistPath = p.LaunchAgentPlist(label)
	}
	return &Launchd{
		label:     label,
		plistPath: plistPath,
		fsys:      fsys,
		run:       runCommand,
	}, nil
}

// Label returns the launchd job label under control.
func (l *Launchd) Label() string {
	return l.label
}

// PlistPath returns the job definition path.
func (l *Launchd) PlistPath() string {
	return l.plistPath
}

// Status asks launchctl for the job list and classifies the line
// belonging to the label.
func (l *Launchd) Status(ctx context.Context) (types.DaemonStatus, error) {
	stdout, stderr, err := l.run(ctx, "launchctl", "list")
	if err != nil {
		return types.DaemonStatus{}, errors.Wrap(err, errors.ErrDaemonStatus, "launchctl list failed").
			WithDetail("stderr", strings.TrimSpace(stderr))
	}

	status := parseList(l.label, stdout)
	status.CheckedAt = time.Now()
	if configPath, pathErr := l.ConfigPath(ctx); pathErr == nil {
		status.ConfigPath = configPath
	}

	logger := logging.GetLogger("daemon")
	logger.Debug().
		Str("label", l.label).
		Str("state", string(status.State)).
		Int("pid", status.PID).
		Msg("Daemon status checked")
	return status, nil
}

// parseList classifies the `launchctl list` line for label. The
// columns are PID, last exit status, label; a PID of "-" means the job
// is loaded but not running.
func parseList(label, output string) types.DaemonStatus {
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 || fields[2] != label {
			continue
		}

		pidField, exitField := fields[0], fields[1]
		switch {
		case exitField != "0" && exitField != "-":
			status := types.DaemonStatus{
				State: types.DaemonError,
				Err:   fmt.Sprintf("daemon exited with code %s", exitField),
			}
			if pid, err := strconv.Atoi(pidField); err == nil {
				status.PID = pid
			}
			return status

		case pidField == "-":
			return types.DaemonStatus{State: types.DaemonStopped}

		default:
			pid, err := strconv.Atoi(pidField)
			if err != nil {
				return types.DaemonStatus{
					State: types.DaemonUnknown,
					Err:   fmt.Sprintf("unparsable launchctl line: %s", line),
				}
			}
			return types.DaemonStatus{State: types.DaemonRunning, PID: pid}
		}
	}

	return types.DaemonStatus{
		State: types.DaemonStopped,
		Err:   "job not loaded",
	}
}

// Start loads the launchd job from its plist.
func (l *Launchd) Start(ctx context.Context) error {
	if _, err := l.fsys.Stat(l.plistPath); err != nil {
		if os.IsNotExist(err) {
			return errors.Newf(errors.ErrFileNotFound, "launchd plist not installed: %s", l.plistPath)
		}
		return errors.Wrapf(err, errors.ErrDaemonStart, "cannot read plist %s", l.plistPath)
	}

	_, stderr, err := l.run(ctx, "launchctl", "load", l.plistPath)
	if err != nil {
		return errors.Wrap(err, errors.ErrDaemonStart, "launchctl load failed").
			WithDetail("stderr", strings.TrimSpace(stderr)).
			WithDetail("plist", l.plistPath)
	}

	logger := logging.GetLogger("daemon")
	logger.Info().Str("label", l.label).Msg("Daemon started")
	return nil
}

// Stop unloads the launchd job.
func (l *Launchd) Stop(ctx context.Context) error {
	_, stderr, err := l.run(ctx, "launchctl", "unload", l.plistPath)
	if err != nil {
		return errors.Wrap(err, errors.ErrDaemonStop, "launchctl unload failed").
			WithDetail("stderr", strings.TrimSpace(stderr)).
			WithDetail("plist", l.plistPath)
	}

	logger := logging.GetLogger("daemon")
	logger.Info().Str("label", l.label).Msg("Daemon stopped")
	return nil
}

// Restart cycles the job. A stop failure is tolerated because the job
// may simply not be loaded; the subsequent start is authoritative.
func (l *Launchd) Restart(ctx context.Context) error {
	if err := l.Stop(ctx); err != nil {
		logger := logging.GetLogger("daemon")
		logger.Warn().Err(err).
			Str("label", l.label).
			Msg("Stop before restart failed, continuing")
	}
	return l.Start(ctx)
}

// ConfigPath discovers the config file the daemon reads: the -c value
// from the plist's ProgramArguments, falling back to the conventional
// search locations when the plist does not pin one.
func (l *Launchd) ConfigPath(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	info, err := l.readPlist()
	if err == nil {
		if configPath := info.configArg(); configPath != "" {
			return paths.ExpandHome(configPath), nil
		}
	}

	p, pathErr := paths.New()
	if pathErr != nil {
		return "", errors.Wrap(pathErr, errors.ErrInternal, "failed to resolve config locations")
	}
	if path, found := p.FindConfigFile(l.fsys); found {
		return path, nil
	}
	return "", errors.New(errors.ErrFileNotFound, "no active configuration file found")
}

// LogPath returns the daemon's stderr log from the plist.
func (l *Launchd) LogPath() (string, error) {
	info, err := l.readPlist()
	if err != nil {
		return "", err
	}
	if info.StandardErrorPath == "" {
		return "", errors.Newf(errors.ErrNotFound, "plist %s defines no StandardErrorPath", l.plistPath)
	}
	return paths.ExpandHome(info.StandardErrorPath), nil
}

func (l *Launchd) readPlist() (*plistInfo, error) {
	data, err := l.fsys.ReadFile(l.plistPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrFileNotFound, "launchd plist not installed: %s", l.plistPath)
		}
		return nil, errors.Wrapf(err, errors.ErrFileRead, "cannot read plist %s", l.plistPath)
	}
	return parsePlist(data)
}

// runCommand is the production runFunc.
func runCommand(ctx context.Context, name string, args ...string) (string, string, error) {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	logging.LogCommand(name, args)

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}
