package tasks

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitRunsTask(t *testing.T) {
	q := NewQueue(8, 2, time.Second)

	done := make(chan struct{})
	ok := q.Submit("test", func(context.Context) { close(done) })
	require.True(t, ok)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task never ran")
	}

	require.NoError(t, q.Shutdown(context.Background()))
}

func TestSubmitDropsWhenFull(t *testing.T) {
	q := NewQueue(1, 1, time.Second)

	block := make(chan struct{})
	started := make(chan struct{})
	require.True(t, q.Submit("blocker", func(context.Context) {
		close(started)
		<-block
	}))
	<-started

	// Fill the single buffer slot, then the next submit must drop.
	require.True(t, q.Submit("queued", func(context.Context) {}))
	assert.False(t, q.Submit("dropped", func(context.Context) {}))

	close(block)
	require.NoError(t, q.Shutdown(context.Background()))
}

func TestShutdownDrainsPendingTasks(t *testing.T) {
	q := NewQueue(16, 2, time.Second)

	var ran atomic.Int32
	for i := 0; i < 10; i++ {
		require.True(t, q.Submit("count", func(context.Context) { ran.Add(1) }))
	}

	require.NoError(t, q.Shutdown(context.Background()))
	assert.Equal(t, int32(10), ran.Load())
}

func TestWorkerSurvivesPanic(t *testing.T) {
	q := NewQueue(8, 1, time.Second)

	q.Submit("panics", func(context.Context) { panic("boom") })

	done := make(chan struct{})
	q.Submit("after", func(context.Context) { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker died after panic")
	}

	require.NoError(t, q.Shutdown(context.Background()))
}
