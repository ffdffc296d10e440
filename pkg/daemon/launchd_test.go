package daemon

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skhdtools/skhdctl/pkg/errors"
	"github.com/skhdtools/skhdctl/pkg/filesystem"
	"github.com/skhdtools/skhdctl/pkg/paths"
	"github.com/skhdtools/skhdctl/pkg/types"
)

const testLabel = "com.koekeishiya.skhd"

const testPlist = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>com.koekeishiya.skhd</string>
	<key>ProgramArguments</key>
	<array>
		<string>/opt/homebrew/bin/skhd</string>
		<string>-c</string>
		<string>/cfg/skhdrc</string>
	</array>
	<key>RunAtLoad</key>
	<true/>
	<key>StandardErrorPath</key>
	<string>/tmp/skhd.err.log</string>
</dict>
</plist>
`

type cmdResult struct {
	stdout string
	stderr string
	err    error
}

// fakeRunner scripts launchctl by subcommand and records every
// command line it sees.
type fakeRunner struct {
	calls   []string
	results map[string]cmdResult
}

func (r *fakeRunner) run(ctx context.Context, name string, args ...string) (string, string, error) {
	r.calls = append(r.calls, strings.Join(append([]string{name}, args...), " "))
	if len(args) == 0 {
		return "", "", fmt.Errorf("no subcommand")
	}
	res := r.results[args[0]]
	return res.stdout, res.stderr, res.err
}

func newTestLaunchd(t *testing.T, fsys types.FS, runner *fakeRunner) *Launchd {
	t.Helper()
	l, err := NewLaunchd(fsys, testLabel, "/cfg/"+testLabel+".plist")
	require.NoError(t, err)
	l.run = runner.run
	return l
}

func daemonFS(t *testing.T) types.FS {
	t.Helper()
	fsys := filesystem.NewAferoFS(afero.NewMemMapFs())
	require.NoError(t, fsys.MkdirAll("/cfg", 0755))
	return fsys
}

func TestParseList(t *testing.T) {
	tests := []struct {
		name      string
		output    string
		wantState types.DaemonState
		wantPID   int
		wantErr   string
	}{
		{
			name:      "running job",
			output:    "PID\tStatus\tLabel\n435\t0\tcom.koekeishiya.skhd\n-\t0\tcom.apple.mdworker\n",
			wantState: types.DaemonRunning,
			wantPID:   435,
		},
		{
			name:      "loaded but not running",
			output:    "-\t0\tcom.koekeishiya.skhd\n",
			wantState: types.DaemonStopped,
		},
		{
			name:      "running despite dash exit column",
			output:    "435\t-\tcom.koekeishiya.skhd\n",
			wantState: types.DaemonRunning,
			wantPID:   435,
		},
		{
			name:      "crashed job",
			output:    "-\t78\tcom.koekeishiya.skhd\n",
			wantState: types.DaemonError,
			wantErr:   "daemon exited with code 78",
		},
		{
			name:      "failing job still has pid",
			output:    "512\t1\tcom.koekeishiya.skhd\n",
			wantState: types.DaemonError,
			wantPID:   512,
			wantErr:   "daemon exited with code 1",
		},
		{
			name:      "job not loaded",
			output:    "PID\tStatus\tLabel\n120\t0\tcom.apple.finder\n",
			wantState: types.DaemonStopped,
			wantErr:   "job not loaded",
		},
		{
			name:      "empty output",
			output:    "",
			wantState: types.DaemonStopped,
			wantErr:   "job not loaded",
		},
		{
			name:      "garbage pid column",
			output:    "x35\t0\tcom.koekeishiya.skhd\n",
			wantState: types.DaemonUnknown,
			wantErr:   "unparsable launchctl line",
		},
		{
			name:      "label prefix does not match",
			output:    "435\t0\tcom.koekeishiya.skhd.helper\n",
			wantState: types.DaemonStopped,
			wantErr:   "job not loaded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := parseList(testLabel, tt.output)
			assert.Equal(t, tt.wantState, status.State)
			assert.Equal(t, tt.wantPID, status.PID)
			if tt.wantErr != "" {
				assert.Contains(t, status.Err, tt.wantErr)
			} else {
				assert.Empty(t, status.Err)
			}
		})
	}
}

func TestStatusReportsRunningDaemon(t *testing.T) {
	fsys := daemonFS(t)
	writeDaemonFile(t, fsys, "/cfg/"+testLabel+".plist", testPlist)
	runner := &fakeRunner{results: map[string]cmdResult{
		"list": {stdout: "435\t0\tcom.koekeishiya.skhd\n"},
	}}
	l := newTestLaunchd(t, fsys, runner)

	status, err := l.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.DaemonRunning, status.State)
	assert.Equal(t, 435, status.PID)
	assert.Equal(t, "/cfg/skhdrc", status.ConfigPath)
	assert.False(t, status.CheckedAt.IsZero())
	assert.Equal(t, []string{"launchctl list"}, runner.calls)
}

func TestStatusWrapsLaunchctlFailure(t *testing.T) {
	runner := &fakeRunner{results: map[string]cmdResult{
		"list": {stderr: "Could not find service\n", err: fmt.Errorf("exit status 113")},
	}}
	l := newTestLaunchd(t, daemonFS(t), runner)

	_, err := l.Status(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrDaemonStatus))
	assert.Equal(t, "Could not find service", errors.GetErrorDetails(err)["stderr"])
}

func TestStartLoadsPlist(t *testing.T) {
	fsys := daemonFS(t)
	writeDaemonFile(t, fsys, "/cfg/"+testLabel+".plist", testPlist)
	runner := &fakeRunner{results: map[string]cmdResult{}}
	l := newTestLaunchd(t, fsys, runner)

	require.NoError(t, l.Start(context.Background()))
	assert.Equal(t, []string{"launchctl load /cfg/" + testLabel + ".plist"}, runner.calls)
}

func TestStartFailsWhenPlistMissing(t *testing.T) {
	runner := &fakeRunner{results: map[string]cmdResult{}}
	l := newTestLaunchd(t, daemonFS(t), runner)

	err := l.Start(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileNotFound))
	assert.Empty(t, runner.calls, "launchctl must not run without a plist")
}

func TestStartWrapsLoadFailure(t *testing.T) {
	fsys := daemonFS(t)
	writeDaemonFile(t, fsys, "/cfg/"+testLabel+".plist", testPlist)
	runner := &fakeRunner{results: map[string]cmdResult{
		"load": {stderr: "Load failed: 5: Input/output error\n", err: fmt.Errorf("exit status 5")},
	}}
	l := newTestLaunchd(t, fsys, runner)

	err := l.Start(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrDaemonStart))
	details := errors.GetErrorDetails(err)
	assert.Equal(t, "Load failed: 5: Input/output error", details["stderr"])
	assert.Equal(t, "/cfg/"+testLabel+".plist", details["plist"])
}

func TestStopUnloadsPlist(t *testing.T) {
	runner := &fakeRunner{results: map[string]cmdResult{}}
	l := newTestLaunchd(t, daemonFS(t), runner)

	require.NoError(t, l.Stop(context.Background()))
	assert.Equal(t, []string{"launchctl unload /cfg/" + testLabel + ".plist"}, runner.calls)
}

func TestStopWrapsUnloadFailure(t *testing.T) {
	runner := &fakeRunner{results: map[string]cmdResult{
		"unload": {stderr: "Could not find specified service\n", err: fmt.Errorf("exit status 113")},
	}}
	l := newTestLaunchd(t, daemonFS(t), runner)

	err := l.Stop(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrDaemonStop))
}

func TestRestartToleratesStopFailure(t *testing.T) {
	fsys := daemonFS(t)
	writeDaemonFile(t, fsys, "/cfg/"+testLabel+".plist", testPlist)
	runner := &fakeRunner{results: map[string]cmdResult{
		"unload": {stderr: "not loaded\n", err: fmt.Errorf("exit status 113")},
	}}
	l := newTestLaunchd(t, fsys, runner)

	require.NoError(t, l.Restart(context.Background()))
	require.Len(t, runner.calls, 2)
	assert.Contains(t, runner.calls[0], "unload")
	assert.Contains(t, runner.calls[1], "load")
}

func TestRestartPropagatesStartFailure(t *testing.T) {
	runner := &fakeRunner{results: map[string]cmdResult{}}
	l := newTestLaunchd(t, daemonFS(t), runner)

	err := l.Restart(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileNotFound))
}

func TestConfigPathFromPlistArguments(t *testing.T) {
	fsys := daemonFS(t)
	writeDaemonFile(t, fsys, "/cfg/"+testLabel+".plist", testPlist)
	l := newTestLaunchd(t, fsys, &fakeRunner{})

	path, err := l.ConfigPath(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/cfg/skhdrc", path)
}

func TestConfigPathFallsBackToSearchLocations(t *testing.T) {
	t.Setenv(paths.EnvConfigPath, "/cfg/skhdrc")
	fsys := daemonFS(t)
	writeDaemonFile(t, fsys, "/cfg/skhdrc", "cmd - a : true\n")
	l := newTestLaunchd(t, fsys, &fakeRunner{})

	path, err := l.ConfigPath(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/cfg/skhdrc", path)
}

func TestConfigPathHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := newTestLaunchd(t, daemonFS(t), &fakeRunner{})
	_, err := l.ConfigPath(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLogPathFromPlist(t *testing.T) {
	fsys := daemonFS(t)
	writeDaemonFile(t, fsys, "/cfg/"+testLabel+".plist", testPlist)
	l := newTestLaunchd(t, fsys, &fakeRunner{})

	path, err := l.LogPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/skhd.err.log", path)
}

func TestLogPathMissingFromPlist(t *testing.T) {
	plist := strings.ReplaceAll(testPlist, "StandardErrorPath", "WorkingDirectory")
	fsys := daemonFS(t)
	writeDaemonFile(t, fsys, "/cfg/"+testLabel+".plist", plist)
	l := newTestLaunchd(t, fsys, &fakeRunner{})

	_, err := l.LogPath()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestNewLaunchdDefaults(t *testing.T) {
	l, err := NewLaunchd(daemonFS(t), "", "")
	require.NoError(t, err)
	assert.Equal(t, paths.DefaultDaemonLabel, l.Label())
	assert.Contains(t, l.PlistPath(), "LaunchAgents")
	assert.Contains(t, l.PlistPath(), paths.DefaultDaemonLabel+".plist")
}

func writeDaemonFile(t *testing.T, fsys types.FS, path, content string) {
	t.Helper()
	require.NoError(t, fsys.WriteFile(path, []byte(content), 0644))
}
