package ut369

import (
	"sync/atomic"

	"github.com/jonathanjschen913/ut369/internal/fifo"
)

// ThreadFunc is the entry point signature for a new thread.
type ThreadFunc func(arg any) int

// State is a thread's lifecycle state, per spec.md §3/§4.4's state
// machine.
type State int

const (
	Running State = iota
	Runnable
	Blocked
	Zombie
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Runnable:
		return "runnable"
	case Blocked:
		return "blocked"
	case Zombie:
		return "zombie"
	default:
		return "unknown"
	}
}

// waitQueue is the wait-queue abstraction of spec.md §3/§4.1: a bounded
// FIFO of *Thread plus an indirect "owner" back-reference. owner is a
// closure rather than a stored pointer-to-pointer, which is the Go
// rendition of the original's pointer-to-pointer indirection: reading
// through the closure always observes the current value of whatever
// field it closes over (a lock's holder, or a thread's own identity),
// exactly as dereferencing the original's owner slot would.
type waitQueue struct {
	q     *fifo.Queue[*Thread]
	owner func() *Thread
}

func newWaitQueue(capacity int, owner func() *Thread) *waitQueue {
	return &waitQueue{q: fifo.New[*Thread](capacity), owner: owner}
}

// Thread is the thread control block (TCB).
type Thread struct {
	id    Tid
	state State

	isKilled atomic.Bool

	exitCode int

	// waitQueue is this thread's own join queue: the set of threads
	// blocked in Wait(id), with owner slot pointing at this TCB itself.
	waitQueue *waitQueue

	// waitingForQueue is non-nil iff state == Blocked: the queue this
	// thread is currently suspended in (invariant I2).
	waitingForQueue *waitQueue

	reapers           int
	lateWaiterSucceed bool

	// exitTo is the successor chosen by doExit, read back by the
	// deferred handoff registered at the root of this thread's
	// goroutine once every other deferred mask-restore above it has
	// already run to completion. Valid only once state == Zombie.
	exitTo *Thread

	// resume is the context-switch handoff channel: a send unblocks
	// whichever goroutine is parked receiving on it, realizing the
	// self-save context-switch idiom as a synchronous rendezvous
	// between per-thread goroutines rather than a real register/stack
	// swap, which portable Go cannot express.
	resume chan struct{}

	fn  ThreadFunc
	arg any
}

// ID satisfies both schedule.Runnable and fifo.Entry.
func (t *Thread) ID() int { return int(t.id) }

// Tid returns this thread's identifier.
func (t *Thread) Tid() Tid { return t.id }

// State returns this thread's current lifecycle state.
func (t *Thread) State() State { return t.state }

// ExitCode returns the exit code recorded when this thread became a
// zombie. Only meaningful once State() == Zombie.
func (t *Thread) ExitCode() int { return t.exitCode }

// consumeLateWaiter implements the masked read-modify-write resolution
// of Open Question (a) in spec.md §9: exactly one caller may observe
// and clear the late-waiter slot. Every caller of consumeLateWaiter
// already runs with the interrupt mask disabled and without an
// intervening yield, so the single logical thread of control makes this
// flip inherently race-free; it is written as a test-and-clear rather
// than a plain read specifically to document that resolution rather
// than to guard against a real concurrent race in this rendition.
func (t *Thread) consumeLateWaiter() bool {
	if t.lateWaiterSucceed {
		t.lateWaiterSucceed = false
		return true
	}
	return false
}
