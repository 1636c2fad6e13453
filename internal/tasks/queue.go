package tasks

import (
	"context"
	"sync"
	"time"

	"crm-backend/pkg/logger"

	"go.uber.org/zap"
)

type task struct {
	name string
	fn   func(ctx context.Context)
}

// Queue runs fire-and-forget side effects (calendar events after estimate
// and job mutations) off the request path. Failures are the task's to log;
// a full queue drops the task rather than block a request.
type Queue struct {
	ch      chan task
	wg      sync.WaitGroup
	timeout time.Duration
}

func NewQueue(size, workers int, taskTimeout time.Duration) *Queue {
	q := &Queue{
		ch:      make(chan task, size),
		timeout: taskTimeout,
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	return q
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for t := range q.ch {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.L().Error("panic recovered in background task",
						zap.String("task", t.name), zap.Any("panic", r))
				}
			}()
			ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
			defer cancel()
			t.fn(ctx)
		}()
	}
}

// Submit enqueues a named task. Returns false if the queue is full or
// already shutting down; the caller has nothing to retry, it only logs.
func (q *Queue) Submit(name string, fn func(ctx context.Context)) bool {
	select {
	case q.ch <- task{name: name, fn: fn}:
		return true
	default:
		logger.L().Warn("task queue full, dropping task", zap.String("task", name))
		return false
	}
}

// Shutdown stops accepting tasks and drains the queue, bounded by ctx.
func (q *Queue) Shutdown(ctx context.Context) error {
	close(q.ch)
	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
