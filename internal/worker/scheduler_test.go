package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/spec-kit/community-bot/internal/clock"
)

var epoch = time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

func TestSchedulerRunsAfterDelay(t *testing.T) {
	clk := clock.NewFake(epoch)
	s := NewScheduler(clk, zaptest.NewLogger(t))
	var pending float64
	s.OnPendingChange = func(d float64) { pending += d }

	ran := false
	s.After(5*time.Second, "close", func(context.Context) { ran = true })
	assert.Equal(t, 1, s.Pending())
	assert.Equal(t, float64(1), pending)

	clk.Advance(4 * time.Second)
	assert.False(t, ran)

	clk.Advance(time.Second)
	assert.True(t, ran)
	assert.Zero(t, s.Pending())
	assert.Zero(t, pending)
}

func TestSchedulerCancel(t *testing.T) {
	clk := clock.NewFake(epoch)
	s := NewScheduler(clk, nil)

	ran := false
	h, scheduled := s.After(time.Second, "close", func(context.Context) { ran = true })
	require.True(t, scheduled)
	assert.True(t, h.Cancel())
	assert.False(t, h.Cancel())

	clk.Advance(time.Minute)
	assert.False(t, ran)
	assert.Zero(t, s.Pending())
}

func TestSchedulerKeepsFirstTaskPerName(t *testing.T) {
	clk := clock.NewFake(epoch)
	s := NewScheduler(clk, zaptest.NewLogger(t))

	var runs []string
	first, scheduled := s.After(5*time.Second, "ticket-close:1", func(context.Context) { runs = append(runs, "first") })
	require.True(t, scheduled)

	clk.Advance(2 * time.Second)
	second, scheduled := s.After(5*time.Second, "ticket-close:1", func(context.Context) { runs = append(runs, "second") })
	assert.False(t, scheduled)
	assert.Same(t, first, second)
	assert.Equal(t, 1, s.Pending())

	other, scheduled := s.After(5*time.Second, "ticket-close:2", func(context.Context) { runs = append(runs, "other") })
	require.True(t, scheduled)
	assert.NotSame(t, first, other)

	clk.Advance(10 * time.Second)
	assert.Equal(t, []string{"first", "other"}, runs)
	assert.Zero(t, s.Pending())

	_, scheduled = s.After(time.Second, "ticket-close:1", func(context.Context) {})
	assert.True(t, scheduled, "name is free again once the task finished")
}

func TestSchedulerRejectsNameWhileRunning(t *testing.T) {
	clk := clock.NewFake(epoch)
	s := NewScheduler(clk, zaptest.NewLogger(t))

	var inner bool
	s.After(0, "close", func(context.Context) {
		_, inner = s.After(0, "close", func(context.Context) {})
	})
	clk.Advance(0)
	assert.False(t, inner)
	assert.Zero(t, s.Pending())
}

func TestSchedulerCancelFreesName(t *testing.T) {
	clk := clock.NewFake(epoch)
	s := NewScheduler(clk, nil)

	h, _ := s.After(time.Second, "close", func(context.Context) {})
	require.True(t, h.Cancel())

	ran := false
	_, scheduled := s.After(time.Second, "close", func(context.Context) { ran = true })
	require.True(t, scheduled)
	clk.Advance(time.Second)
	assert.True(t, ran)
}

func TestSchedulerRecoversPanics(t *testing.T) {
	clk := clock.NewFake(epoch)
	s := NewScheduler(clk, zaptest.NewLogger(t))

	s.After(0, "boom", func(context.Context) { panic("boom") })
	second := false
	s.After(0, "after", func(context.Context) { second = true })

	assert.NotPanics(t, func() { clk.Advance(0) })
	assert.True(t, second)
}

func TestSchedulerShutdownDropsPending(t *testing.T) {
	clk := clock.NewFake(epoch)
	s := NewScheduler(clk, zaptest.NewLogger(t))

	ran := false
	s.After(time.Second, "close", func(context.Context) { ran = true })
	require.NoError(t, s.Shutdown(context.Background()))

	clk.Advance(time.Minute)
	assert.False(t, ran)
	h, scheduled := s.After(time.Second, "late", func(context.Context) {})
	assert.Nil(t, h)
	assert.False(t, scheduled)
}

func TestSchedulerShutdownWaitsForRunning(t *testing.T) {
	s := NewScheduler(clock.Real(), zaptest.NewLogger(t))

	started := make(chan struct{})
	var mu sync.Mutex
	finished := false
	s.After(0, "slow", func(ctx context.Context) {
		close(started)
		time.Sleep(50 * time.Millisecond)
		mu.Lock()
		finished = ctx.Err() == nil
		mu.Unlock()
	})
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, finished)
}

func TestSchedulerShutdownTimeoutCancelsRunning(t *testing.T) {
	s := NewScheduler(clock.Real(), zaptest.NewLogger(t))

	started := make(chan struct{})
	stopped := make(chan struct{})
	s.After(0, "stuck", func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		close(stopped)
	})
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Shutdown(ctx), context.DeadlineExceeded)

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("running task was not cancelled")
	}
}
