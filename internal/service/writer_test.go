package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestQueue(cfg WriteQueueConfig) *WriteQueue {
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Second
	}
	return NewWriteQueue(cfg, zap.NewNop())
}

func TestWriteQueue_RunsAllTasksBeforeClose(t *testing.T) {
	q := newTestQueue(WriteQueueConfig{QueueSize: 100, Workers: 4})

	var ran atomic.Int64
	for i := 0; i < 50; i++ {
		err := q.Enqueue(Task{Name: "count", UserID: 1, Run: func(context.Context) error {
			ran.Add(1)
			return nil
		}})
		if err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}

	q.Close()

	if ran.Load() != 50 {
		t.Errorf("expected 50 tasks to run, got %d", ran.Load())
	}
}

func TestWriteQueue_Retries(t *testing.T) {
	tests := []struct {
		name       string
		maxRetries int
		want       int64
	}{
		{"no retries", 0, 1},
		{"two retries", 2, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := newTestQueue(WriteQueueConfig{QueueSize: 1, Workers: 1, MaxRetries: tt.maxRetries})

			var attempts atomic.Int64
			_ = q.Enqueue(Task{Name: "fail", Run: func(context.Context) error {
				attempts.Add(1)
				return errors.New("boom")
			}})
			q.Close()

			if attempts.Load() != tt.want {
				t.Errorf("expected %d attempts, got %d", tt.want, attempts.Load())
			}
		})
	}
}

func TestWriteQueue_TimeoutCancelsTask(t *testing.T) {
	q := newTestQueue(WriteQueueConfig{QueueSize: 1, Workers: 1, Timeout: 20 * time.Millisecond})

	var cancelled atomic.Bool
	_ = q.Enqueue(Task{Name: "slow", Run: func(ctx context.Context) error {
		<-ctx.Done()
		cancelled.Store(true)
		return ctx.Err()
	}})
	q.Close()

	if !cancelled.Load() {
		t.Error("expected task context to be cancelled")
	}
}

func TestWriteQueue_PanicIsContained(t *testing.T) {
	q := newTestQueue(WriteQueueConfig{QueueSize: 2, Workers: 1})

	var ran atomic.Bool
	_ = q.Enqueue(Task{Name: "panic", Run: func(context.Context) error { panic("bad write") }})
	_ = q.Enqueue(Task{Name: "after", Run: func(context.Context) error {
		ran.Store(true)
		return nil
	}})
	q.Close()

	if !ran.Load() {
		t.Error("expected task after a panicking one to run")
	}
}

func TestWriteQueue_EnqueueAfterClose(t *testing.T) {
	q := newTestQueue(WriteQueueConfig{QueueSize: 1, Workers: 1})
	q.Close()

	err := q.Enqueue(Task{Name: "late", Run: func(context.Context) error { return nil }})
	if !errors.Is(err, ErrQueueClosed) {
		t.Errorf("expected ErrQueueClosed, got %v", err)
	}

	// Closing twice is harmless.
	q.Close()
}

func TestWriteQueue_FullQueueDrops(t *testing.T) {
	q := newTestQueue(WriteQueueConfig{QueueSize: 1, Workers: 1})

	release := make(chan struct{})
	block := Task{Name: "block", Run: func(context.Context) error {
		<-release
		return nil
	}}

	// At most three tasks fit: one running, one held by the dispatcher
	// and one buffered.
	dropped := 0
	for i := 0; i < 10; i++ {
		if err := q.Enqueue(block); errors.Is(err, ErrQueueFull) {
			dropped++
		}
	}

	close(release)
	q.Close()

	if dropped < 7 {
		t.Errorf("expected at least 7 dropped tasks, got %d", dropped)
	}
}
