package scheduler

import (
	"sync"
	"time"

	"github.com/ballsdex/merchant-service/internal/worker"
)

// Scheduler runs jobs at fixed intervals by enqueueing them onto a worker
// pool. It never runs a job inline, so a slow job cannot delay the ticker.
type Scheduler struct {
	workerPool *worker.Pool
	quit       chan struct{}
	wg         sync.WaitGroup
}

// New creates a new scheduler
func New(pool *worker.Pool) *Scheduler {
	return &Scheduler{
		workerPool: pool,
		quit:       make(chan struct{}),
	}
}

// Schedule registers a job to run at a fixed interval. A full worker queue
// skips the tick rather than blocking the scheduler goroutine.
func (s *Scheduler) Schedule(interval time.Duration, job worker.Job) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.workerPool.TryEnqueue(job)
			case <-s.quit:
				return
			}
		}
	}()
}

// Stop stops all scheduled jobs. No further ticks fire after Stop returns;
// jobs already handed to the pool are the pool's to finish.
func (s *Scheduler) Stop() {
	close(s.quit)
	s.wg.Wait()
}
