package ut369

import "github.com/jonathanjschen913/ut369/internal/interrupt"

// CV is an FCFS condition variable associated with exactly one Lock. Its
// wait queue's owner slot is the same closure as its lock's holder slot,
// not a separate copy, so deadlock analysis treats a cv waiter as
// waiting on whoever currently holds the lock, per spec.md §3/§9.
type CV struct {
	lock  *Lock
	queue *waitQueue
}

// NewCV creates a condition variable associated with lock and increments
// its condition-variable reference count.
func NewCV(lock *Lock) *CV {
	prev := interrupt.Off()
	defer restoreMask(prev)

	cv := &CV{lock: lock, queue: newWaitQueue(MaxThreads, lock.queue.owner)}
	lock.cvCount++
	return cv
}

// Destroy crashes the process if the wait queue is non-empty, otherwise
// removes the association with its lock.
func (cv *CV) Destroy() {
	prev := interrupt.Off()
	defer restoreMask(prev)

	if cv.queue.q.Count() != 0 {
		panic("ut369: cv_destroy: wait queue is not empty")
	}
	cv.lock.cvCount--
}

// Wait releases the associated lock, suspends the caller on cv, and
// re-acquires the lock before returning. Panics if the caller does not
// hold the lock.
func (cv *CV) Wait() error {
	prev := interrupt.Off()
	defer restoreMask(prev)

	if cv.lock.holder != current {
		panic("ut369: cv_wait: calling thread does not hold the associated lock")
	}

	cv.lock.releaseLocked()
	err := sleep(cv.queue)
	if aerr := cv.lock.acquireLocked(); aerr != nil {
		return aerr
	}
	return err
}

// Signal wakes one waiter, if any.
func (cv *CV) Signal() {
	prev := interrupt.Off()
	defer restoreMask(prev)
	wakeup(cv.queue, false)
}

// Broadcast wakes every waiter.
func (cv *CV) Broadcast() {
	prev := interrupt.Off()
	defer restoreMask(prev)
	wakeup(cv.queue, true)
}
