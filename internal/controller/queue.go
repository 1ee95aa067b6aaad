package controller

import (
	"sync"

	"gopkg.in/tomb.v2"
)

// Executor runs functions one at a time, in submission order.
//
// The controller requires serial execution: both the consumer context the
// caller supplies and the controller's own diff context are Executors.
// Submit reports false when the executor is no longer accepting work.
type Executor interface {
	Submit(fn func()) bool
}

// SerialQueue is a FIFO Executor backed by one goroutine.
type SerialQueue struct {
	mu     sync.Mutex
	fns    []func()
	closed bool
	signal chan struct{}
	tomb   tomb.Tomb
}

// NewSerialQueue creates a running serial queue.
func NewSerialQueue() *SerialQueue {
	q := &SerialQueue{
		fns:    make([]func(), 0, 16),
		signal: make(chan struct{}, 1),
	}
	q.tomb.Go(q.loop)
	return q
}

// Submit appends fn to the queue. Returns false after Close.
func (q *SerialQueue) Submit(fn func()) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.fns = append(q.fns, fn)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// Close stops the queue. Functions not yet started are dropped.
func (q *SerialQueue) Close() error {
	q.mu.Lock()
	q.closed = true
	q.fns = nil
	q.mu.Unlock()

	q.tomb.Kill(nil)
	return q.tomb.Wait()
}

func (q *SerialQueue) loop() error {
	for {
		fn, ok := q.next()
		if !ok {
			select {
			case <-q.signal:
				continue
			case <-q.tomb.Dying():
				return nil
			}
		}
		fn()
	}
}

func (q *SerialQueue) next() (func(), bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.fns) == 0 {
		return nil, false
	}
	fn := q.fns[0]
	q.fns = q.fns[1:]
	return fn, true
}
