// Package workpool runs tasks on a fixed set of worker goroutines fed
// from a single FIFO queue. Results come back through typed futures.
package workpool

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
)

// ErrClosed is delivered through the future of a task submitted after
// Close.
var ErrClosed = errors.New("workpool: pool is closed")

// PanicError wraps a value recovered from a panicking task.
type PanicError struct {
	Value interface{}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("workpool: task panicked: %v", e.Value)
}

// DefaultSize returns one worker per CPU, leaving one CPU for the
// submitting goroutine.
func DefaultSize() int {
	return max(1, runtime.NumCPU()-1)
}

// Pool is a fixed-size worker pool. The zero value is not usable; call
// New.
type Pool struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []func()
	closed bool
	size   int
	wg     sync.WaitGroup
}

// New starts a pool with size workers. A size of zero or less selects
// DefaultSize.
func New(size int) *Pool {
	if size <= 0 {
		size = DefaultSize()
	}
	p := &Pool{size: size}
	p.cond = sync.NewCond(&p.mu)
	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return p.size }

// Pending returns the number of queued tasks not yet picked up by a
// worker.
func (p *Pool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.closed {
			p.cond.Wait()
		}
		if len(p.queue) == 0 {
			// closed and drained
			p.mu.Unlock()
			return
		}
		task := p.queue[0]
		p.queue[0] = nil
		p.queue = p.queue[1:]
		p.mu.Unlock()

		task()
	}
}

// enqueue appends task to the queue. It reports false if the pool is
// closed.
func (p *Pool) enqueue(task func()) bool {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return false
	}
	p.queue = append(p.queue, task)
	p.mu.Unlock()
	p.cond.Signal()
	return true
}

// Close stops accepting tasks, lets the workers drain the queue, and
// waits for them to exit. Calling Close more than once is harmless.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.cond.Broadcast()
	p.wg.Wait()
}

// ----------------------------------------------------------------------------
// Futures

// Future is the pending result of a submitted task.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Submit queues fn on p and returns its future. A nil pool runs fn
// synchronously on the calling goroutine.
func Submit[T any](p *Pool, fn func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	if p == nil {
		f.run(fn)
		return f
	}
	if !p.enqueue(func() { f.run(fn) }) {
		f.err = ErrClosed
		close(f.done)
	}
	return f
}

func (f *Future[T]) run(fn func() (T, error)) {
	defer close(f.done)
	defer func() {
		if r := recover(); r != nil {
			var zero T
			f.value, f.err = zero, &PanicError{Value: r}
		}
	}()
	f.value, f.err = fn()
}

// Get blocks until the task has finished and returns its result.
func (f *Future[T]) Get() (T, error) {
	<-f.done
	return f.value, f.err
}

// Done returns a channel that is closed when the task has finished.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}
