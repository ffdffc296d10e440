package daemon

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skhdtools/skhdctl/pkg/types"
)

func TestFakeStatusQueueRepeatsLastEntry(t *testing.T) {
	fake := &Fake{StatusQueue: []types.DaemonStatus{
		{State: types.DaemonStopped},
		{State: types.DaemonRunning, PID: 99},
	}}
	ctx := context.Background()

	first, err := fake.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.DaemonStopped, first.State)

	for i := 0; i < 3; i++ {
		status, err := fake.Status(ctx)
		require.NoError(t, err)
		assert.Equal(t, types.DaemonRunning, status.State)
		assert.Equal(t, 99, status.PID)
	}
	assert.Equal(t, 4, fake.CallCount("status"))
}

func TestFakeRecordsCallsInOrder(t *testing.T) {
	fake := NewFake()
	ctx := context.Background()

	require.NoError(t, fake.Stop(ctx))
	require.NoError(t, fake.Start(ctx))
	require.NoError(t, fake.Restart(ctx))
	_, err := fake.Status(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"stop", "start", "restart", "status"}, fake.Calls)
}

func TestFakeScriptedErrors(t *testing.T) {
	fake := NewFake()
	fake.RestartErr = assert.AnError
	fake.StatusErr = assert.AnError

	assert.ErrorIs(t, fake.Restart(context.Background()), assert.AnError)
	_, err := fake.Status(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
}
