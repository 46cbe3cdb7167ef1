package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is a unit of detached background work. It receives its own context
// with a bounded deadline, independent of the request that dispatched it.
type Job struct {
	Name string
	Run  func(ctx context.Context)
}

// Dispatcher is a fixed-size background executor for fire-and-forget
// work. Dispatch never blocks the caller: when the queue is full the job
// is dropped and logged, matching the at-most-once contract of its users.
type Dispatcher struct {
	jobs       chan Job
	workers    int
	jobTimeout time.Duration
	wg         sync.WaitGroup
	logger     *zap.Logger
}

// NewDispatcher creates a dispatcher with the given queue size and worker count
func NewDispatcher(queueSize, workers int, jobTimeout time.Duration, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		jobs:       make(chan Job, queueSize),
		workers:    workers,
		jobTimeout: jobTimeout,
		logger:     logger,
	}
}

// Start launches the worker goroutines
func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()

	for job := range d.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), d.jobTimeout)
		job.Run(ctx)
		cancel()
	}
}

// Dispatch enqueues a job without blocking. Returns false when the queue
// is full and the job was dropped.
func (d *Dispatcher) Dispatch(job Job) bool {
	select {
	case d.jobs <- job:
		return true
	default:
		d.logger.Warn("Background queue full, dropping job", zap.String("job", job.Name))
		return false
	}
}

// Stop closes the queue and waits for in-flight jobs until ctx expires
func (d *Dispatcher) Stop(ctx context.Context) {
	close(d.jobs)

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		d.logger.Warn("Shutdown deadline reached before background jobs drained")
	}
}
