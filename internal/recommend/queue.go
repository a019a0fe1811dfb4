package recommend

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

const (
	defaultQueueWorkers = 2
	defaultQueueDepth   = 1024
)

// task is one unit of background work. Handlers are idempotent full-replace
// writes, so at-least-once execution is safe and no deduplication is needed.
type task struct {
	name string
	run  func(ctx context.Context) error
}

// Queue executes recomputation tasks on a fixed pool of background workers,
// outside the request path. Recomputation is heavy (one embedding per
// candidate swept against potentially thousands of jobs) and must never
// block the caller.
type Queue struct {
	tasks   chan task
	workers int
	logger  *zap.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// NewQueue creates a queue. workers <= 0 and depth <= 0 select defaults.
func NewQueue(workers, depth int, logger *zap.Logger) *Queue {
	if workers <= 0 {
		workers = defaultQueueWorkers
	}
	if depth <= 0 {
		depth = defaultQueueDepth
	}
	return &Queue{
		tasks:   make(chan task, depth),
		workers: workers,
		logger:  logger,
	}
}

// Start launches the worker pool. Workers run until Stop is called and the
// queue drains, or ctx is cancelled.
func (q *Queue) Start(ctx context.Context) {
	q.startOnce.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go q.worker(ctx)
		}
	})
}

// Stop closes the queue and waits for in-flight and queued tasks to finish.
// Enqueue must not be called after Stop.
func (q *Queue) Stop() {
	q.stopOnce.Do(func() {
		close(q.tasks)
	})
	q.wg.Wait()
}

// Enqueue submits a task for background execution. It blocks only when the
// queue is full, applying backpressure instead of dropping work.
func (q *Queue) Enqueue(name string, run func(ctx context.Context) error) {
	q.tasks <- task{name: name, run: run}
}

func (q *Queue) worker(ctx context.Context) {
	defer q.wg.Done()
	for t := range q.tasks {
		if ctx.Err() != nil {
			q.logger.Warn("dropping task, queue context cancelled", zap.String("task", t.name))
			continue
		}
		q.execute(ctx, t)
	}
}

// execute runs one task to completion. A failed run is logged and dropped:
// the score table keeps its last known-good snapshot for that key and the
// next trigger re-derives everything from scratch.
func (q *Queue) execute(ctx context.Context, t task) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("task panicked",
				zap.String("task", t.name), zap.Any("panic", r))
		}
	}()

	if err := t.run(ctx); err != nil {
		q.logger.Error("task failed", zap.String("task", t.name), zap.Error(err))
		return
	}
	q.logger.Debug("task completed", zap.String("task", t.name))
}
