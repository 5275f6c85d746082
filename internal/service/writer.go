package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

var (
	ErrQueueClosed = errors.New("write queue is closed")
	ErrQueueFull   = errors.New("write queue is full")
)

// Task is a single persistence write.
type Task struct {
	Name   string
	UserID int64
	Run    func(ctx context.Context) error
}

// WriteQueueConfig configures a WriteQueue.
type WriteQueueConfig struct {
	QueueSize  int
	Workers    int
	MaxRetries int
	Timeout    time.Duration
}

// WriteQueue runs persistence writes in the background so gameplay never
// waits on storage. Writes are at-most-once unless MaxRetries is positive;
// failures are logged and dropped.
type WriteQueue struct {
	tasks      chan Task
	workers    *pool.Pool
	maxRetries int
	timeout    time.Duration
	logger     *zap.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewWriteQueue creates a queue and starts its dispatcher.
func NewWriteQueue(cfg WriteQueueConfig, logger *zap.Logger) *WriteQueue {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	q := &WriteQueue{
		tasks:      make(chan Task, cfg.QueueSize),
		workers:    pool.New().WithMaxGoroutines(cfg.Workers),
		maxRetries: cfg.MaxRetries,
		timeout:    cfg.Timeout,
		logger:     logger,
		done:       make(chan struct{}),
	}

	go q.dispatch()

	return q
}

// Enqueue schedules task without blocking. A full or closed queue drops it.
func (q *WriteQueue) Enqueue(task Task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.logger.Warn("write dropped: queue closed",
			zap.String("task", task.Name),
			zap.Int64("user_id", task.UserID),
		)
		return ErrQueueClosed
	}

	select {
	case q.tasks <- task:
		return nil
	default:
		q.logger.Warn("write dropped: queue full",
			zap.String("task", task.Name),
			zap.Int64("user_id", task.UserID),
		)
		return ErrQueueFull
	}
}

// Close stops intake, runs the tasks already queued and waits for them.
func (q *WriteQueue) Close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.tasks)
	}
	q.mu.Unlock()

	<-q.done
}

func (q *WriteQueue) dispatch() {
	defer close(q.done)

	for task := range q.tasks {
		q.workers.Go(func() {
			q.run(task)
		})
	}

	q.workers.Wait()
}

func (q *WriteQueue) run(task Task) {
	var err error
	for attempt := 0; attempt <= q.maxRetries; attempt++ {
		err = q.attempt(task)
		if err == nil {
			return
		}

		q.logger.Warn("write attempt failed",
			zap.String("task", task.Name),
			zap.Int64("user_id", task.UserID),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}

	q.logger.Error("write dropped after failure",
		zap.String("task", task.Name),
		zap.Int64("user_id", task.UserID),
		zap.Error(err),
	)
}

func (q *WriteQueue) attempt(task Task) (err error) {
	ctx := context.Background()
	if q.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			err = errors.New("write task panicked")
		}
	}()

	return task.Run(ctx)
}
