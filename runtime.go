// Package ut369 implements a cooperative-with-preemption user-level
// threading runtime: thread create/yield/exit/kill/wait (join), a
// pluggable scheduler (see the schedule subpackage), and FCFS blocking
// locks and condition variables with structural deadlock detection.
//
// Every public entry point that touches shared runtime state disables
// the interrupt mask at the boundary and restores it on every exit
// path, including paths that suspend and later resume — the mask is the
// sole critical-section mechanism inside this package, exactly as
// spec.md §5 requires.
package ut369

import (
	"fmt"
	"os"
	"runtime"
	"sync/atomic"

	"github.com/jonathanjschen913/ut369/internal/interrupt"
	"github.com/jonathanjschen913/ut369/schedule"
)

var (
	reg          *registry
	sched        schedule.Dispatcher
	current      *Thread
	previousGlob *Thread

	started atomic.Bool

	// ProcessExit is invoked when exit(code) finds the scheduler empty,
	// i.e. the last thread in the system has terminated. It defaults to
	// os.Exit but is overridable (e.g. by tests) since the bootstrap/
	// entry driver that decides what "the process" means is explicitly
	// an external collaborator, out of scope per spec.md §1.
	ProcessExit = os.Exit
)

// Start initializes the runtime: the interrupt mask, the named
// scheduler, the thread registry (materializing the bootstrap thread at
// id 0), and, if cfg.Preemptive, the periodic timer signal. The mask is
// brought up disabled and then immediately re-enabled for the bootstrap
// thread's baseline, mirroring every other thread's own trampoline-time
// interrupt.On(). Must be called once, from what becomes the bootstrap
// thread.
func Start(cfg Config, opts ...Option) error {
	cfg = resolveOptions(cfg, opts)
	if !started.CompareAndSwap(false, true) {
		panic("ut369: Start called more than once")
	}

	level := LevelInfo
	if cfg.Verbose {
		level = LevelDebug
	}
	if !hasLogger() {
		SetLogger(NewDefaultLogger(level))
	}

	interrupt.Init(cfg.Verbose)

	d, err := schedule.New(cfg.SchedName, MaxThreads)
	if err != nil {
		started.Store(false)
		return err
	}
	sched = d
	reg = newRegistry()

	boot := &Thread{id: 0, state: Running, resume: make(chan struct{})}
	boot.waitQueue = newWaitQueue(MaxThreads, func() *Thread { return boot })
	reg.free[0] = false
	reg.set(0, boot)
	current = boot

	if cfg.Preemptive {
		if err := interrupt.StartPreemption(); err != nil {
			return err
		}
	}

	// The bootstrap thread never runs the trampoline's own interrupt.On,
	// since it has no trampoline goroutine (SPEC_FULL §4): its baseline
	// mask is enabled here instead, mirroring thread_stub's unconditional
	// interrupt_on() for every other thread's first dispatch.
	interrupt.On()

	logf(LevelInfo, "thread", 0, "runtime started", map[string]any{"scheduler": cfg.SchedName, "preemptive": cfg.Preemptive})
	return nil
}

// End tears down the runtime, in the reverse order of Start. It assumes
// every other thread is already a zombie or has been reaped, per
// spec.md §4.6.
func End() {
	interrupt.End()
	if sched != nil {
		sched.Destroy()
	}
	if reg != nil && current != nil {
		reg.release(current.id)
	}
	current = nil
	previousGlob = nil
	reg = nil
	sched = nil
	started.Store(false)
}

// ID returns the identifier of the calling thread.
func ID() Tid {
	return current.id
}

// restoreMask restores a previously saved mask state and, if that state
// is "enabled" and a preemption signal arrived while masked, performs
// the deferred involuntary yield immediately — the mask-restore
// checkpoint described in spec.md §9's design notes, substituting for
// the kernel's own deferred-signal-delivery semantics that Go's
// os/signal cannot reproduce directly.
//
// A no-op once the calling thread has become Zombie: doExit performs its
// own single authoritative restore immediately before handing off to its
// successor, and every restoreMask still stacked above it on the dying
// goroutine's abandoned call chain must do nothing when it unwinds
// through runtime.Goexit, exactly as those frames' equivalent
// interrupt_set calls in thread_exit's caller are never reached once
// setcontext has transferred control away for good.
func restoreMask(prev bool) {
	if current.state == Zombie {
		return
	}
	interrupt.Set(prev)
	if prev && interrupt.TestAndClearPending() {
		_, _ = Yield(TidAny)
	}
}

// Create allocates a TCB and spawns its goroutine, parked until the
// scheduler first dispatches it. Errors: ErrNoMore if no identifier is
// free.
func Create(fn ThreadFunc, arg any) (Tid, error) {
	prev := interrupt.Off()
	defer restoreMask(prev)

	id, err := reg.allocate()
	if err != nil {
		return 0, err
	}

	t := &Thread{id: id, state: Runnable, resume: make(chan struct{}), fn: fn, arg: arg}
	t.waitQueue = newWaitQueue(MaxThreads, func() *Thread { return t })
	reg.set(id, t)

	go trampoline(t)
	sched.Enqueue(t)

	logf(LevelDebug, "thread", id, "created", nil)
	return id, nil
}

// trampoline is the goroutine body for every created (non-bootstrap)
// thread. It mirrors thread_stub's exact ordering: re-enable interrupts
// first, then (via onResume) reclaim the predecessor's resources and
// check the kill flag, before ever calling the user's entry function.
//
// finishExit is deferred before the first receive so it is the last
// deferred call to run during this goroutine's eventual unwind: every
// restoreMask deferred further up the call stack (Yield, Acquire, ...)
// fires first and no-ops (see restoreMask), and only once all of them
// have finished does finishExit hand control to the exiting thread's
// successor, closing the race a bare send-then-Goexit would leave open.
func trampoline(t *Thread) {
	defer finishExit(t)

	<-t.resume
	interrupt.On()
	onResume()
	ret := t.fn(t.arg)
	Exit(ret)
}

// finishExit performs the handoff doExit recorded in t.exitTo. It is a
// no-op if the thread never reached doExit (unreachable in practice,
// since trampoline always ends in Exit, but guarded defensively since it
// runs unconditionally as a defer).
func finishExit(t *Thread) {
	to := t.exitTo
	if to == nil {
		return
	}
	to.state = Running
	previousGlob = t
	current = to
	to.resume <- struct{}{}
}

// onResume runs at the top of every resumption — both a newly created
// thread's first dispatch and an ordinary context-switch resume. It
// performs the predecessor cleanup and self-kill check that thread.c
// performs in the resuming branch of thread_switch.
func onResume() {
	if previousGlob != nil && previousGlob.state == Zombie {
		logf(LevelDebug, "thread", previousGlob.id, "predecessor reclaimed", nil)
		previousGlob = nil
	}
	self := current
	if self.isKilled.Load() && self.state != Zombie {
		doExit(ExitKilled)
	}
}

// contextSwitch hands control to "to" and blocks until some future
// switch hands control back to the calling thread. This is the
// self-save idiom rendered as a synchronous channel rendezvous between
// per-thread goroutines: the two observable "returns" from the original
// getcontext-style primitive become, here, the code immediately after
// the blocking receive below, reached exactly once per resumption.
func contextSwitch(to *Thread) {
	from := current
	to.state = Running
	previousGlob = from
	current = to

	to.resume <- struct{}{}
	<-from.resume

	onResume()
}

// Yield suspends the calling thread and schedules target, per
// spec.md §4.4.
func Yield(target Tid) (Tid, error) {
	prev := interrupt.Off()
	defer restoreMask(prev)

	self := current

	if target == self.id {
		return self.id, nil
	}

	if target == TidAny {
		next, ok := sched.Dequeue()
		if !ok {
			return 0, ErrNone
		}
		to := next.(*Thread)
		if self.state != Blocked {
			self.state = Runnable
			sched.Enqueue(self)
		}
		contextSwitch(to)
		return to.id, nil
	}

	if target < 0 || int(target) >= MaxThreads {
		return 0, ErrInvalid
	}
	to, ok := reg.get(target)
	if !ok || to.state != Runnable {
		return 0, ErrInvalid
	}
	removed, ok := sched.Remove(int(target))
	if !ok {
		return 0, ErrInvalid
	}
	if self.state != Blocked {
		self.state = Runnable
		sched.Enqueue(self)
	}
	contextSwitch(removed.(*Thread))
	return to.id, nil
}

// Exit terminates the calling thread, recording exit_code for joiners.
func Exit(exitCode int) {
	doExit(exitCode)
}

// doExit mirrors thread_exit: it disables the mask itself (rather than
// trusting a caller-provided state), records the exit code and wakeup,
// picks a successor, restores the mask to the state observed on entry —
// exactly once, the sole authoritative restore for this thread's death —
// and retires the goroutine. The successor is not signaled here: it is
// recorded in self.exitTo and handed off by finishExit, deferred at the
// root of this goroutine, once runtime.Goexit has finished unwinding
// every frame above doExit.
func doExit(exitCode int) {
	prev := interrupt.Off()

	self := current
	self.exitCode = exitCode
	self.state = Zombie

	n := wakeup(self.waitQueue, true)
	self.reapers = n
	if n == 0 {
		self.lateWaiterSucceed = true
	}

	logf(LevelDebug, "thread", self.id, "exited", map[string]any{"exit_code": exitCode, "reapers": n})

	next, ok := sched.Dequeue()
	if !ok {
		logf(LevelInfo, "thread", self.id, "last thread exiting", nil)
		ProcessExit(exitCode)
		panic(fmt.Sprintf("ut369: ProcessExit returned for thread %d", self.id))
	}

	self.exitTo = next.(*Thread)
	interrupt.Set(prev)
	runtime.Goexit()
}

// Kill marks tid for termination, per spec.md §4.4.
func Kill(tid Tid) (Tid, error) {
	prev := interrupt.Off()
	defer restoreMask(prev)

	self := current
	if tid < 0 || int(tid) >= MaxThreads || tid == self.id {
		return 0, ErrInvalid
	}
	t, ok := reg.get(tid)
	if !ok {
		return 0, ErrInvalid
	}

	if t.state == Blocked {
		t.waitingForQueue.q.RemoveByID(int(t.id))
		t.waitingForQueue = nil
		t.state = Runnable
		sched.Enqueue(t)
	}
	t.isKilled.Store(true)

	logf(LevelDebug, "thread", tid, "killed", nil)
	return tid, nil
}

// Wait blocks until tid exits, per spec.md §4.4.
func Wait(tid Tid) (int, error) {
	prev := interrupt.Off()
	defer restoreMask(prev)

	self := current
	if tid < 0 || int(tid) >= MaxThreads || tid == self.id {
		return 0, ErrInvalid
	}
	t, ok := reg.get(tid)
	if !ok {
		return 0, ErrInvalid
	}

	if t.state != Zombie {
		if err := sleep(t.waitQueue); err != nil {
			return 0, err
		}
		code := t.exitCode
		t.reapers--
		if t.reapers == 0 && !t.lateWaiterSucceed {
			reg.release(tid)
		}
		return code, nil
	}

	if !t.consumeLateWaiter() {
		return 0, ErrInvalid
	}
	code := t.exitCode
	reg.release(tid)
	return code, nil
}
