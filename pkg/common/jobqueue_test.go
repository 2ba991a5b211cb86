package common

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestJobQueue_RunsJobsInOrder(t *testing.T) {
	queue := NewJobQueue(zaptest.NewLogger(t).Sugar())
	defer queue.Stop()

	var mutex sync.Mutex
	var order []int
	var done sync.WaitGroup
	for i := 0; i < 20; i++ {
		i := i
		done.Add(1)
		queue.Enqueue(func() error {
			defer done.Done()
			mutex.Lock()
			order = append(order, i)
			mutex.Unlock()
			if i%5 == 0 {
				return errors.New("job failed")
			}
			return nil
		})
	}
	done.Wait()

	for i, value := range order {
		assert.Equal(t, i, value)
	}
	assert.Len(t, order, 20)
}

func TestJobQueue_SurvivesPanics(t *testing.T) {
	queue := NewJobQueue(zaptest.NewLogger(t).Sugar())
	defer queue.Stop()

	done := make(chan struct{})
	queue.Enqueue(func() error {
		panic("boom")
	})
	queue.Enqueue(func() error {
		close(done)
		return nil
	})
	<-done
}

func TestJobQueue_StopIsIdempotent(t *testing.T) {
	queue := NewJobQueue(zaptest.NewLogger(t).Sugar())
	queue.Stop()
	queue.Stop()
}
