package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lairbnb/lairs-api/internal/metrics"
)

func startDispatcher(t *testing.T, workers, depth int) *Dispatcher {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	d := NewDispatcher(workers, depth, zerolog.Nop())
	d.Start(ctx)
	t.Cleanup(func() {
		cancel()
		d.Close()
	})
	return d
}

func TestDispatcher_RunExecutesOnWorker(t *testing.T) {
	d := startDispatcher(t, 2, 4)

	var got int
	err := d.Run(context.Background(), func() { got = 42 })
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestDispatcher_BoundsConcurrency(t *testing.T) {
	const workers = 3
	d := startDispatcher(t, workers, 64)

	var running, peak atomic.Int32
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := d.Run(context.Background(), func() {
				n := running.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				running.Add(-1)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int32(workers))
}

func TestDispatcher_RejectsWhenSaturated(t *testing.T) {
	d := startDispatcher(t, 1, 1)

	release := make(chan struct{})
	started := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = d.Run(context.Background(), func() {
			close(started)
			<-release
		})
	}()
	<-started

	go func() {
		defer wg.Done()
		_ = d.Run(context.Background(), func() {})
	}()
	require.Eventually(t, func() bool { return d.Pending() == 1 }, time.Second, time.Millisecond)

	depth := testutil.ToFloat64(metrics.HashQueueDepth)
	err := d.Run(context.Background(), func() { t.Error("saturated job must not run") })
	assert.ErrorIs(t, err, ErrPoolSaturated)
	assert.Equal(t, depth, testutil.ToFloat64(metrics.HashQueueDepth), "rejected job must not count as queued")

	close(release)
	wg.Wait()
}

func TestDispatcher_CancelledCallerAbandonsResult(t *testing.T) {
	d := startDispatcher(t, 1, 1)

	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool

	errCh := make(chan error, 1)
	go func() {
		errCh <- d.Run(ctx, func() {
			close(started)
			<-release
			finished.Store(true)
		})
	}()

	<-started
	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	close(release)
	assert.Eventually(t, finished.Load, time.Second, time.Millisecond)
}

func TestDispatcher_AlreadyCancelledContext(t *testing.T) {
	d := startDispatcher(t, 1, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := d.Run(ctx, func() { t.Error("must not run") })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDispatcher_Closed(t *testing.T) {
	d := NewDispatcher(1, 1, zerolog.Nop())
	d.Start(context.Background())
	d.Close()
	d.Close()

	err := d.Run(context.Background(), func() {})
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestDispatcher_StopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	d := NewDispatcher(1, 1, zerolog.Nop())
	d.Start(ctx)
	cancel()

	assert.Eventually(t, func() bool {
		return d.Run(context.Background(), func() {}) == ErrPoolClosed
	}, time.Second, time.Millisecond)
}

func TestDispatcher_PanicBecomesError(t *testing.T) {
	d := startDispatcher(t, 1, 1)

	err := d.Run(context.Background(), func() { panic("boom") })
	assert.ErrorIs(t, err, ErrJobPanicked)

	// The worker survives.
	assert.NoError(t, d.Run(context.Background(), func() {}))
}

func TestSubmit_ReturnsResultAndError(t *testing.T) {
	d := startDispatcher(t, 1, 1)

	n, err := Submit(context.Background(), d, func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	boom := errors.New("boom")
	_, err = Submit(context.Background(), d, func() (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)
}

func TestSubmit_PoolErrorYieldsZeroValue(t *testing.T) {
	d := NewDispatcher(1, 1, zerolog.Nop())
	d.Close()

	n, err := Submit(context.Background(), d, func() (int, error) { return 7, nil })
	assert.ErrorIs(t, err, ErrPoolClosed)
	assert.Zero(t, n)
}
