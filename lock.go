package ut369

import "github.com/jonathanjschen913/ut369/internal/interrupt"

// Lock is a blocking mutex with FCFS-fair wakeup ordering on contention
// and a structural deadlock check on every attempted acquisition,
// per spec.md §4.5.
type Lock struct {
	holder  *Thread
	queue   *waitQueue
	cvCount int
}

// NewLock creates a lock that is initially available.
func NewLock() *Lock {
	l := &Lock{}
	l.queue = newWaitQueue(MaxThreads, func() *Thread { return l.holder })
	return l
}

// Destroy crashes the process if the lock is held, has associated
// condition variables, or has a non-empty wait queue.
func (l *Lock) Destroy() {
	prev := interrupt.Off()
	defer restoreMask(prev)

	if l.holder != nil {
		panic("ut369: lock_destroy: lock is currently held")
	}
	if l.cvCount != 0 {
		panic("ut369: lock_destroy: one or more condition variables are still associated")
	}
	l.queue.q.Destroy()
}

// Acquire blocks until the lock is available.
func (l *Lock) Acquire() error {
	prev := interrupt.Off()
	defer restoreMask(prev)
	return l.acquireLocked()
}

// Release releases the lock and wakes one waiter, if any. Panics if the
// caller does not hold the lock.
func (l *Lock) Release() {
	prev := interrupt.Off()
	defer restoreMask(prev)
	l.releaseLocked()
}

// acquireLocked and releaseLocked assume the mask is already disabled;
// they are shared between the public Acquire/Release entry points and
// CV.Wait's internal release-then-reacquire sequence.
func (l *Lock) acquireLocked() error {
	for l.holder != nil {
		if err := sleep(l.queue); err != nil {
			return err
		}
	}
	l.holder = current
	return nil
}

func (l *Lock) releaseLocked() {
	if l.holder != current {
		panic("ut369: lock_release: caller does not hold the lock")
	}
	l.holder = nil
	wakeup(l.queue, false)
}
