package queue

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/rs/zerolog"

	"github.com/lairbnb/lairs-api/internal/metrics"
)

const defaultQueueDepth = 64

var (
	ErrPoolSaturated = errors.New("hashing pool queue is full")
	ErrPoolClosed    = errors.New("hashing pool is closed")
	ErrJobPanicked   = errors.New("hashing job panicked")
)

// Dispatcher runs CPU-bound jobs (password hashing) on a fixed set of worker
// goroutines fed by a bounded queue, so request goroutines never compete for
// more than numWorkers CPUs worth of hashing. A full queue rejects new work
// instead of growing.
type Dispatcher struct {
	jobs    chan func()
	workers int
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
	start  sync.Once
}

// NewDispatcher creates a Dispatcher with numWorkers workers and room for
// queueDepth waiting jobs. Non-positive values select runtime.NumCPU() and
// defaultQueueDepth.
func NewDispatcher(numWorkers, queueDepth int, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if queueDepth <= 0 {
		queueDepth = defaultQueueDepth
	}
	return &Dispatcher{
		jobs:    make(chan func(), queueDepth),
		workers: numWorkers,
		log:     log,
	}
}

// Start launches all worker goroutines. The pool closes when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	d.start.Do(func() {
		d.wg.Add(d.workers)
		for i := 0; i < d.workers; i++ {
			go d.runWorker(i)
		}
		go func() {
			<-ctx.Done()
			d.Close()
		}()
		d.log.Info().Int("workers", d.workers).Int("queue_depth", cap(d.jobs)).Msg("hashing pool started")
	})
}

// Close stops accepting jobs, lets queued jobs finish and waits for the
// workers to exit. Safe to call more than once.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()

	d.wg.Wait()
}

// Run executes fn on a worker and waits for it. If ctx ends first Run
// returns ctx.Err(); fn is not interrupted and its effects are simply
// abandoned by the caller.
func (d *Dispatcher) Run(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	done := make(chan struct{})
	var recovered any
	task := func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				recovered = r
				d.log.Error().Interface("panic", r).Msg("hashing job panicked")
			}
		}()
		fn()
	}

	if err := d.enqueue(task); err != nil {
		return err
	}

	select {
	case <-done:
		if recovered != nil {
			return fmt.Errorf("%w: %v", ErrJobPanicked, recovered)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Runner is satisfied by Dispatcher and by anything else that can run a
// function on its behalf.
type Runner interface {
	Run(ctx context.Context, fn func()) error
}

// Submit runs fn on r and returns its result. Pool errors (ErrPoolSaturated,
// ErrPoolClosed, ErrJobPanicked, ctx errors) are returned unwrapped so that
// callers can tell them apart from an error produced by fn.
func Submit[T any](ctx context.Context, r Runner, fn func() (T, error)) (T, error) {
	var (
		out   T
		fnErr error
	)
	if err := r.Run(ctx, func() { out, fnErr = fn() }); err != nil {
		// out and fnErr may still be written by an abandoned job.
		var zero T
		return zero, err
	}
	return out, fnErr
}

// Pending reports the number of queued jobs.
func (d *Dispatcher) Pending() int {
	return len(d.jobs)
}

func (d *Dispatcher) enqueue(task func()) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		metrics.HashJobsRejectedTotal.WithLabelValues("closed").Inc()
		return ErrPoolClosed
	}
	// Counted before the send so a worker's Dec never precedes it.
	metrics.HashQueueDepth.Inc()
	select {
	case d.jobs <- task:
		return nil
	default:
		metrics.HashQueueDepth.Dec()
		metrics.HashJobsRejectedTotal.WithLabelValues("saturated").Inc()
		d.log.Warn().Int("queue_depth", cap(d.jobs)).Msg("hashing pool saturated, rejecting job")
		return ErrPoolSaturated
	}
}

func (d *Dispatcher) runWorker(id int) {
	defer d.wg.Done()
	for task := range d.jobs {
		metrics.HashQueueDepth.Dec()
		task()
	}
	d.log.Debug().Int("worker_id", id).Msg("hashing worker stopped")
}
