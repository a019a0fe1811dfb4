package recommend

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestQueue_ExecutesTasks(t *testing.T) {
	q := NewQueue(2, 16, zap.NewNop())
	q.Start(context.Background())

	var count atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		q.Enqueue("count", func(context.Context) error {
			defer wg.Done()
			count.Add(1)
			return nil
		})
	}
	wg.Wait()
	q.Stop()

	assert.Equal(t, int32(20), count.Load())
}

func TestQueue_StopDrainsPendingTasks(t *testing.T) {
	q := NewQueue(1, 16, zap.NewNop())

	var count atomic.Int32
	for i := 0; i < 5; i++ {
		q.Enqueue("count", func(context.Context) error {
			count.Add(1)
			return nil
		})
	}

	// Workers start after the tasks are queued; Stop must still drain all.
	q.Start(context.Background())
	q.Stop()
	assert.Equal(t, int32(5), count.Load())
}

func TestQueue_FailedTaskDoesNotStopWorkers(t *testing.T) {
	q := NewQueue(1, 16, zap.NewNop())
	q.Start(context.Background())

	var succeeded atomic.Bool
	q.Enqueue("failing", func(context.Context) error {
		return errors.New("boom")
	})
	q.Enqueue("after", func(context.Context) error {
		succeeded.Store(true)
		return nil
	})
	q.Stop()

	assert.True(t, succeeded.Load())
}

func TestQueue_PanickingTaskIsContained(t *testing.T) {
	q := NewQueue(1, 16, zap.NewNop())
	q.Start(context.Background())

	var succeeded atomic.Bool
	q.Enqueue("panicking", func(context.Context) error {
		panic("unexpected")
	})
	q.Enqueue("after", func(context.Context) error {
		succeeded.Store(true)
		return nil
	})
	q.Stop()

	assert.True(t, succeeded.Load())
}

func TestQueue_CancelledContextSkipsQueuedTasks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := NewQueue(1, 16, zap.NewNop())

	var count atomic.Int32
	q.Enqueue("skipped", func(context.Context) error {
		count.Add(1)
		return nil
	})

	cancel()
	q.Start(ctx)
	q.Stop()
	assert.Equal(t, int32(0), count.Load())
}
