package tasks_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vantagesource/qualis/pkg/lifecycle"
	"github.com/vantagesource/qualis/pkg/tasks"
)

func newRunner(t *testing.T, cfg *tasks.Config) (*tasks.Runner, *lifecycle.Coordinator) {
	t.Helper()

	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("failed to finalize config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	runner := tasks.New(cfg, logger)

	lc := lifecycle.New()
	if err := runner.Start(lc); err != nil {
		t.Fatalf("failed to start runner: %v", err)
	}

	return runner, lc
}

func TestRunnerExecutesSubmittedTasks(t *testing.T) {
	runner, lc := newRunner(t, &tasks.Config{Workers: 2, QueueSize: 8})

	var executed atomic.Int32
	done := make(chan struct{})

	err := runner.Submit("count", func(ctx context.Context) {
		executed.Add(1)
		close(done)
	})
	if err != nil {
		t.Fatalf("expected task accepted, got %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task was never executed")
	}

	if executed.Load() != 1 {
		t.Errorf("expected 1 execution, got %d", executed.Load())
	}

	if err := lc.Shutdown(2 * time.Second); err != nil {
		t.Errorf("expected clean shutdown, got %v", err)
	}
}

func TestRunnerRejectsWhenQueueFull(t *testing.T) {
	runner, lc := newRunner(t, &tasks.Config{Workers: 1, QueueSize: 1})

	release := make(chan struct{})
	started := make(chan struct{})

	// Occupy the single worker, then fill the single queue slot.
	if err := runner.Submit("block", func(ctx context.Context) {
		close(started)
		<-release
	}); err != nil {
		t.Fatalf("expected first task accepted, got %v", err)
	}

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("blocking task never started")
	}

	if err := runner.Submit("queued", func(ctx context.Context) {}); err != nil {
		t.Fatalf("expected queued task accepted, got %v", err)
	}

	if err := runner.Submit("rejected", func(ctx context.Context) {}); !errors.Is(err, tasks.ErrQueueFull) {
		t.Errorf("expected ErrQueueFull, got %v", err)
	}

	close(release)
	if err := lc.Shutdown(2 * time.Second); err != nil {
		t.Errorf("expected clean shutdown, got %v", err)
	}
}

func TestRunnerDrainsQueueOnShutdown(t *testing.T) {
	runner, lc := newRunner(t, &tasks.Config{Workers: 2, QueueSize: 16})

	var executed atomic.Int32
	for i := 0; i < 10; i++ {
		if err := runner.Submit("drain", func(ctx context.Context) {
			executed.Add(1)
		}); err != nil {
			t.Fatalf("expected task accepted, got %v", err)
		}
	}

	if err := lc.Shutdown(5 * time.Second); err != nil {
		t.Fatalf("expected clean shutdown, got %v", err)
	}

	if executed.Load() != 10 {
		t.Errorf("expected all 10 tasks drained, got %d", executed.Load())
	}

	if err := runner.Submit("late", func(ctx context.Context) {}); !errors.Is(err, tasks.ErrShuttingDown) {
		t.Errorf("expected ErrShuttingDown, got %v", err)
	}
}

func TestRunnerRecoversFromPanic(t *testing.T) {
	runner, lc := newRunner(t, &tasks.Config{Workers: 1, QueueSize: 4})

	if err := runner.Submit("panic", func(ctx context.Context) {
		panic("boom")
	}); err != nil {
		t.Fatalf("expected panicking task accepted, got %v", err)
	}

	done := make(chan struct{})
	if err := runner.Submit("after", func(ctx context.Context) {
		close(done)
	}); err != nil {
		t.Fatalf("expected follow-up task accepted, got %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive the panic")
	}

	if err := lc.Shutdown(2 * time.Second); err != nil {
		t.Errorf("expected clean shutdown, got %v", err)
	}
}
