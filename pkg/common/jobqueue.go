package common

import (
	"sync"

	"go.uber.org/zap"
)

type Job func() error

// JobQueue runs jobs one by one on a single goroutine, in the order they were enqueued. Chat frontends push every
// inbound event here, so an event is fully handled (including calls to remote services) before the next one starts.
type JobQueue struct {
	jobsChannel chan Job
	stopChannel chan struct{}
	stopOnce    sync.Once
	waitGroup   sync.WaitGroup
	logger      *zap.SugaredLogger
}

func NewJobQueue(logger *zap.SugaredLogger) *JobQueue {
	worker := &JobQueue{
		jobsChannel: make(chan Job, 128),
		stopChannel: make(chan struct{}),
		logger:      logger,
	}
	worker.waitGroup.Add(1)
	go worker.run()
	return worker
}

func (j *JobQueue) Enqueue(job Job) {
	j.jobsChannel <- job
}

// Stop waits for the job being processed (if any) and stops the worker. Jobs still in the queue are dropped.
func (j *JobQueue) Stop() {
	j.stopOnce.Do(func() {
		close(j.stopChannel)
	})
	j.waitGroup.Wait()
}

func (j *JobQueue) run() {
	defer j.waitGroup.Done()
	for {
		select {
		case job := <-j.jobsChannel:
			j.runJob(job)
		case <-j.stopChannel:
			return
		}
	}
}

func (j *JobQueue) runJob(job Job) {
	defer func() {
		if r := recover(); r != nil {
			j.logger.Errorw("job panicked", "panic", r)
		}
	}()
	err := job()
	if err != nil {
		j.logger.Errorw("failed to process a job", "error", err)
	}
}
