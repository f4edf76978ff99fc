package ut369

import "github.com/jonathanjschen913/ut369/internal/interrupt"

// sleep suspends the calling thread on q. Precondition: interrupt mask
// disabled (asserted below, mirroring thread_sleep's documented crash
// condition). Returns ErrInvalid if q is nil, ErrDeadlock if blocking on
// q would deadlock, or propagates ErrNone from the underlying yield if
// no other thread is available to run.
func sleep(q *waitQueue) error {
	if interrupt.Enabled() {
		panic("ut369: thread_sleep called with interrupts enabled")
	}
	if q == nil {
		return ErrInvalid
	}
	if detectDeadlock(q) {
		return ErrDeadlock
	}

	self := current
	self.state = Blocked
	if !q.q.Push(self) {
		panic("ut369: wait queue at capacity")
	}
	self.waitingForQueue = q

	_, err := Yield(TidAny)
	if err != nil {
		// Undo: no thread was available to switch to, so this thread
		// never actually blocked.
		q.q.RemoveByID(int(self.id))
		self.state = Running
		self.waitingForQueue = nil
		return err
	}
	return nil
}

// wakeup moves one (all=false) or every (all=true) thread off q from
// Blocked to Runnable, clearing their back-pointer and enqueuing them on
// the scheduler. Returns the count moved.
func wakeup(q *waitQueue, all bool) int {
	n := 0
	for {
		t, ok := q.q.Pop()
		if !ok {
			break
		}
		t.state = Runnable
		t.waitingForQueue = nil
		sched.Enqueue(t)
		n++
		if !all {
			break
		}
	}
	return n
}

// detectDeadlock walks the wait-for graph rooted at target's owner,
// following t -> t.waitingForQueue.owner() repeatedly. It reports true
// iff the walk reaches the calling thread, mirroring can_deadlock
// exactly: the walk terminates (with no deadlock found) on a nil owner
// link, and defensively terminates on a repeated node rather than
// looping forever.
func detectDeadlock(target *waitQueue) bool {
	self := current
	seen := make(map[Tid]bool)

	var t *Thread
	if target.owner != nil {
		t = target.owner()
	}
	for t != nil {
		if t.id == self.id {
			return true
		}
		if seen[t.id] {
			return false
		}
		seen[t.id] = true
		if t.waitingForQueue == nil {
			return false
		}
		t = t.waitingForQueue.owner()
	}
	return false
}
