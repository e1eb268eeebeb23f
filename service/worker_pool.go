// service/worker_pool.go
package service

import (
	"sync"
	"sync/atomic"
)

// WorkerPool runs the post-acknowledgment tail (persist, match,
// dispatch) off the request path. The queue is bounded; when it is full,
// Submit drops the task rather than block the acknowledging caller. The
// async tail is at-most-once by contract, so a drop is loss the same
// way a failed persist is, and is surfaced the same way: logged and
// counted.
type WorkerPool struct {
	tasks     chan func()
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

func NewWorkerPool(workers, queueCapacity int) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	if queueCapacity <= 0 {
		queueCapacity = 1
	}

	p := &WorkerPool{
		tasks: make(chan func(), queueCapacity),
		done:  make(chan struct{}),
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.run()
	}
	return p
}

func (p *WorkerPool) run() {
	defer p.wg.Done()

	for {
		select {
		case task := <-p.tasks:
			task()
		case <-p.done:
			// drain what was accepted before shutdown
			for {
				select {
				case task := <-p.tasks:
					task()
				default:
					return
				}
			}
		}
	}
}

// Submit enqueues a task. It never blocks; it reports false when the
// task was dropped because the queue is saturated or the pool closed.
func (p *WorkerPool) Submit(task func()) bool {
	if p.closed.Load() {
		p.dropped.Add(1)
		return false
	}

	select {
	case p.tasks <- task:
		return true
	case <-p.done:
		p.dropped.Add(1)
		return false
	default:
		p.dropped.Add(1)
		return false
	}
}

// Close stops accepting work, runs the queued tasks to completion, and
// waits for the workers to exit.
func (p *WorkerPool) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.done)
		p.wg.Wait()
	})
}

// Dropped reports how many tasks were rejected at submission.
func (p *WorkerPool) Dropped() uint64 {
	return p.dropped.Load()
}
