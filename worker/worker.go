package worker

import (
	"runtime"
	"sync"

	"github.com/getsentry/sentry-go"
)

// Pool runs submitted jobs on a fixed amount of goroutines.
type Pool struct {
	queue chan func()

	jobs    sync.WaitGroup
	workers sync.WaitGroup
	once    sync.Once
}

// New starts a Pool with n workers. If n is not positive, one worker per CPU is started.
func New(n int) *Pool {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	p := &Pool{queue: make(chan func(), n)}
	p.workers.Add(n)
	for i := 0; i < n; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.workers.Done()

	for f := range p.queue {
		p.run(f)
	}
}

// run runs a single job. A panicking job is reported to sentry and does not take the worker down with it.
func (p *Pool) run(f func()) {
	defer p.jobs.Done()
	defer sentry.Recover()

	f()
}

// Submit queues f to be run by one of the workers. It blocks while every worker is busy and the queue is
// full. Submit must not be called after Close.
func (p *Pool) Submit(f func()) {
	p.jobs.Add(1)
	p.queue <- f
}

// Wait blocks until every job submitted so far has finished.
func (p *Pool) Wait() {
	p.jobs.Wait()
}

// Close stops accepting jobs and waits for the workers to finish the jobs already queued.
func (p *Pool) Close() {
	p.once.Do(func() {
		close(p.queue)
	})
	p.workers.Wait()
}
