package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMembers struct {
	swept    atomic.Int32
	reminded atomic.Int32
	days     atomic.Int32
	err      error
}

func (f *fakeMembers) SweepExpired(context.Context) (int64, error) {
	f.swept.Add(1)
	return 2, f.err
}

func (f *fakeMembers) SendExpiryReminders(_ context.Context, days int) (int, error) {
	f.reminded.Add(1)
	f.days.Store(int32(days))
	return 1, f.err
}

func TestRunner_RunsUntilCancelled(t *testing.T) {
	members := &fakeMembers{}
	ctx, cancel := context.WithCancel(context.Background())

	r := NewRunner(
		ExpirationSweep(members, 5*time.Millisecond),
		ExpiryReminders(members, time.Hour, 7),
	)
	r.Start(ctx)

	require.Eventually(t, func() bool { return members.swept.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()
	r.Wait()

	// The reminder job only ran its initial pass.
	assert.EqualValues(t, 1, members.reminded.Load())
	assert.EqualValues(t, 7, members.days.Load())
}

func TestRunner_SkipsDisabledAndSurvivesErrors(t *testing.T) {
	members := &fakeMembers{err: errors.New("mongo down")}
	ctx, cancel := context.WithCancel(context.Background())

	r := NewRunner(
		ExpirationSweep(members, 0),
		ExpiryReminders(members, 5*time.Millisecond, 3),
	)
	r.Start(ctx)

	require.Eventually(t, func() bool { return members.reminded.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()
	r.Wait()
	assert.Zero(t, members.swept.Load())
}
