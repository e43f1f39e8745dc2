package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorker_SubmitAndRun(t *testing.T) {
	worker := NewWorker(NewTracker(0), 4, 2, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Start(ctx)

	var ran atomic.Int32
	done := make(chan struct{})
	err := worker.Submit(func(ctx context.Context) {
		ran.Add(1)
		close(done)
	})
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not executed")
	}
	assert.Equal(t, int32(1), ran.Load())

	worker.Stop()
}

func TestWorker_SubmitFullQueue(t *testing.T) {
	// Worker is never started, so nothing drains the queue.
	worker := NewWorker(NewTracker(0), 1, 1, time.Hour)

	require.NoError(t, worker.Submit(func(ctx context.Context) {}))

	err := worker.Submit(func(ctx context.Context) {})
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestWorker_StopWaitsForShutdown(t *testing.T) {
	worker := NewWorker(NewTracker(0), 4, 1, time.Hour)

	ctx := context.Background()
	go worker.Start(ctx)

	started := make(chan struct{})
	release := make(chan struct{})
	require.NoError(t, worker.Submit(func(ctx context.Context) {
		close(started)
		<-release
	}))

	<-started
	close(release)

	finished := make(chan struct{})
	go func() {
		worker.Stop()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestWorker_JanitorSweepsExpiredJobs(t *testing.T) {
	tracker := NewTracker(time.Nanosecond)
	worker := NewWorker(tracker, 4, 1, 10*time.Millisecond)

	job := tracker.Create("a.txt")
	require.NoError(t, tracker.Fail(job.ID, "boom"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Start(ctx)
	defer worker.Stop()

	require.Eventually(t, func() bool {
		_, ok := tracker.Get(job.ID)
		return !ok
	}, 2*time.Second, 10*time.Millisecond, "janitor should collect the expired job")
}
