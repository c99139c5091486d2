// Package jobs provides a small in-memory background job runner used
// for the reminder emails. Jobs are fire-and-forget: nothing is
// persisted, failures are logged, and a restart drops pending work.
package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/taskdeck/taskdeck/internal/config"
)

// ErrQueueFull is returned by Enqueue when the buffered queue cannot
// accept another job.
var ErrQueueFull = errors.New("job queue is full, try again later")

// Job represents a unit of background work.
type Job interface {
	// Type returns the job type identifier, used for logging.
	Type() string

	// Execute runs the job logic.
	Execute(ctx context.Context) error
}

// Runner manages background job processing with a fixed worker pool
// over a buffered channel queue.
type Runner struct {
	jobChan    chan Job
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	workers    int
	logger     *slog.Logger
}

// NewRunner creates a new Runner sized by the given configuration.
func NewRunner(cfg config.JobsConfig, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Runner{
		jobChan:    make(chan Job, cfg.QueueSize),
		ctx:        ctx,
		cancelFunc: cancel,
		workers:    cfg.WorkerCount,
		logger:     logger.With(slog.String("component", "job_runner")),
	}
}

// Enqueue adds a job to the queue. Returns ErrQueueFull when the
// buffer is exhausted rather than blocking the caller.
func (r *Runner) Enqueue(job Job) error {
	select {
	case r.jobChan <- job:
		r.logger.Debug("job enqueued", slog.String("job_type", job.Type()))
		return nil
	default:
		return ErrQueueFull
	}
}

// Start launches the worker goroutines.
func (r *Runner) Start() {
	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}
}

// Stop cancels in-flight jobs and waits for the workers to exit.
// The queue channel is left open: a late Enqueue from a draining HTTP
// handler lands in the buffer instead of panicking, and the job is
// dropped with the rest of the fire-and-forget queue.
func (r *Runner) Stop() {
	r.cancelFunc()
	r.wg.Wait()
}

// worker processes jobs from the queue until the runner is stopped.
func (r *Runner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", slog.Int("worker_id", id))

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debug("stopping worker", slog.Int("worker_id", id))
			return
		case job := <-r.jobChan:
			if err := job.Execute(r.ctx); err != nil {
				r.logger.Error("job execution failed",
					slog.String("job_type", job.Type()),
					slog.String("error", err.Error()))
				continue
			}
			r.logger.Debug("job completed", slog.String("job_type", job.Type()))
		}
	}
}
