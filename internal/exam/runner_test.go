package exam

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRegistry() *Registry {
	g := NewRegistry(time.Hour)
	g.Interval = time.Millisecond
	return g
}

func waitDone(t *testing.T, r *Runner) {
	t.Helper()
	select {
	case <-r.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("runner ticker did not stop")
	}
}

func TestRunnerTimesOut(t *testing.T) {
	g := fastRegistry()
	r := g.Start(makeTest(1, 0, 1))
	require.NoError(t, r.SelectAnswer(0))

	waitDone(t, r)

	snap := r.Snapshot()
	assert.Equal(t, StateFinalized, snap.State)
	assert.Equal(t, 0, snap.RemainingSeconds)
	res, ok := r.Result()
	require.True(t, ok)
	assert.Equal(t, 1, res.Score)

	// Finish after timeout returns the same result.
	again, err := r.Finish()
	require.NoError(t, err)
	assert.Equal(t, res, again)
}

func TestRunnerFinishStopsTicker(t *testing.T) {
	g := NewRegistry(time.Hour)
	r := g.Start(makeTest(10, 2))
	require.NoError(t, r.SelectAnswer(2))

	res, err := r.Finish()
	require.NoError(t, err)
	assert.Equal(t, 1, res.Score)
	waitDone(t, r)

	assert.ErrorIs(t, r.SelectAnswer(0), ErrNotRunning)
	assert.ErrorIs(t, r.MoveTo(0), ErrNotRunning)
	second, err := r.Finish()
	require.NoError(t, err)
	assert.Equal(t, res, second)
}

func TestRunnerCancel(t *testing.T) {
	g := NewRegistry(time.Hour)
	r := g.Start(makeTest(10, 0))
	r.Cancel()
	waitDone(t, r)

	assert.Equal(t, StateCancelled, r.Snapshot().State)
	_, err := r.Finish()
	assert.ErrorIs(t, err, ErrNotRunning)
	_, ok := r.Result()
	assert.False(t, ok)
}

func TestRunnerSubscribe(t *testing.T) {
	g := NewRegistry(time.Hour)
	r := g.Start(makeTest(10, 0, 0))

	ch, unsubscribe := r.Subscribe()
	defer unsubscribe()

	first := <-ch
	assert.Equal(t, StateRunning, first.State)

	require.NoError(t, r.MoveTo(1))
	require.NoError(t, r.SelectAnswer(0))
	_, err := r.Finish()
	require.NoError(t, err)

	var last Snapshot
	for snap := range ch {
		last = snap
	}
	assert.Equal(t, StateFinalized, last.State)
	require.NotNil(t, last.Result)
	assert.Equal(t, 1, last.Result.Score)

	// Late subscribers get the final state and a closed channel.
	late, _ := r.Subscribe()
	snap, ok := <-late
	require.True(t, ok)
	assert.Equal(t, StateFinalized, snap.State)
	_, ok = <-late
	assert.False(t, ok)
}

func TestRunnerUnsubscribe(t *testing.T) {
	g := NewRegistry(time.Hour)
	r := g.Start(makeTest(10, 0))
	defer r.Cancel()

	ch, unsubscribe := r.Subscribe()
	<-ch
	unsubscribe()
	unsubscribe()

	_, ok := <-ch
	assert.False(t, ok)
	require.NoError(t, r.SelectAnswer(1))
}

func TestRegistryGetRemove(t *testing.T) {
	g := NewRegistry(time.Hour)
	r := g.Start(makeTest(10, 0))

	got, err := g.Get(r.ID())
	require.NoError(t, err)
	assert.Same(t, r, got)
	assert.Equal(t, 1, g.Len())

	require.NoError(t, g.Remove(r.ID()))
	waitDone(t, r)
	assert.Equal(t, StateCancelled, r.Snapshot().State)

	_, err = g.Get(r.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, g.Remove(r.ID()), ErrSessionNotFound)
}

func TestRegistryPrune(t *testing.T) {
	g := NewRegistry(time.Minute)
	running := g.Start(makeTest(10, 0))
	defer running.Cancel()
	ended := g.Start(makeTest(10, 0))
	_, err := ended.Finish()
	require.NoError(t, err)

	assert.Equal(t, 0, g.Prune())
	assert.Equal(t, 2, g.Len())

	g.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	assert.Equal(t, 1, g.Prune())

	_, err = g.Get(ended.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = g.Get(running.ID())
	assert.NoError(t, err)
}

func TestRegistryRunStopsOnCancel(t *testing.T) {
	g := NewRegistry(time.Hour)
	r := g.Start(makeTest(10, 0))

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		g.Run(ctx, time.Millisecond)
		close(stopped)
	}()
	cancel()

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
	waitDone(t, r)
}
