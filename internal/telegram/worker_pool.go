package telegram

import (
	"sync"
)

// WorkerPool runs analysis jobs on a fixed number of goroutines with a bounded queue
type WorkerPool struct {
	workers  int
	jobQueue chan func()
	wg       sync.WaitGroup
	mu       sync.RWMutex
	closed   bool
	once     sync.Once
}

// NewWorkerPool creates a pool; queue is the number of jobs that may wait for a worker
func NewWorkerPool(workers, queue int) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	if queue < 0 {
		queue = 0
	}
	return &WorkerPool{
		workers:  workers,
		jobQueue: make(chan func(), queue),
	}
}

// Start initializes and starts all workers in the pool
func (wp *WorkerPool) Start() {
	wp.once.Do(func() {
		wp.wg.Add(wp.workers)
		for i := 0; i < wp.workers; i++ {
			go wp.worker()
		}
	})
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()
	for job := range wp.jobQueue {
		job()
	}
}

// TrySubmit queues the job unless the queue is full or the pool is closed
func (wp *WorkerPool) TrySubmit(job func()) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	if wp.closed {
		return false
	}
	select {
	case wp.jobQueue <- job:
		return true
	default:
		return false
	}
}

// Close stops accepting jobs and waits for queued ones to finish
func (wp *WorkerPool) Close() {
	wp.mu.Lock()
	if !wp.closed {
		wp.closed = true
		close(wp.jobQueue)
	}
	wp.mu.Unlock()
	wp.wg.Wait()
}
