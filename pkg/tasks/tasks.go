// Package tasks provides a bounded background task runner for fire-and-forget
// work scheduled by request handlers. Submitted tasks run on a fixed worker
// pool; in-flight tasks are never cancelled — shutdown stops intake and waits
// for the queue to drain within the lifecycle timeout.
package tasks

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/vantagesource/qualis/pkg/lifecycle"
)

var (
	// ErrQueueFull indicates the task queue is at capacity.
	ErrQueueFull = errors.New("task queue full")
	// ErrShuttingDown indicates the runner is no longer accepting tasks.
	ErrShuttingDown = errors.New("task runner shutting down")
)

type task struct {
	name string
	fn   func(ctx context.Context)
}

// Runner executes submitted tasks on a fixed pool of workers.
type Runner struct {
	queue   chan task
	logger  *slog.Logger
	workers int
	timeout time.Duration

	mu     sync.Mutex
	wg     sync.WaitGroup
	closed bool
}

// New creates a Runner with the given configuration. Workers are not started
// until Start is called.
func New(cfg *Config, logger *slog.Logger) *Runner {
	return &Runner{
		queue:   make(chan task, cfg.QueueSize),
		logger:  logger.With("system", "tasks"),
		workers: cfg.Workers,
		timeout: cfg.TaskTimeoutDuration(),
	}
}

// Start launches the worker pool and registers a drain hook on shutdown.
func (r *Runner) Start(lc *lifecycle.Coordinator) error {
	r.logger.Info("starting task runner", "workers", r.workers)

	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.work()
	}

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		r.logger.Info("draining task queue")

		r.mu.Lock()
		r.closed = true
		close(r.queue)
		r.mu.Unlock()

		r.wg.Wait()
		r.logger.Info("task runner stopped")
	})

	return nil
}

// Submit enqueues a task for background execution. It never blocks: when the
// queue is full or the runner is shutting down, the task is rejected and the
// caller decides how to surface that.
func (r *Runner) Submit(name string, fn func(ctx context.Context)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrShuttingDown
	}

	select {
	case r.queue <- task{name: name, fn: fn}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (r *Runner) work() {
	defer r.wg.Done()

	for t := range r.queue {
		r.run(t)
	}
}

func (r *Runner) run(t task) {
	// Tasks run on a fresh context: a request context would be cancelled
	// the moment the submitting handler returns.
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	start := time.Now()
	r.logger.Info("task started", "task", t.name)

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("task panicked", "task", t.name, "panic", rec)
		}
	}()

	t.fn(ctx)
	r.logger.Info("task finished", "task", t.name, "duration", time.Since(start))
}
