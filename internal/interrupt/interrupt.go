// Package interrupt implements the runtime's sole critical-section
// mechanism: a process-wide boolean mask gating delivery of a periodic
// preemption signal, plus the real OS timer/signal plumbing that drives
// it in preemptive mode.
//
// The mask is a singleton, matching the original design note that the
// registry, scheduler, and mask are all process-wide and initialized by
// Start and torn down by End: there is no support for multiple runtime
// instances, since the preemption signal is itself a process-wide
// resource.
package interrupt

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// Interval is the period of the preemption timer, matching the
// original's ~200 microsecond interval-timer signal.
const Interval = 200 * time.Microsecond

var (
	enabled atomic.Bool // current mask state; true = interrupts enabled
	pending atomic.Bool // set by the signal-handling goroutine, consumed at the mask-restore checkpoint

	verboseFlag atomic.Bool
	printMu     sync.Mutex

	sigCh  chan os.Signal
	stopCh chan struct{}
	doneWg sync.WaitGroup
)

// Init brings the mask up in the disabled state, matching the startup
// order in spec.md §4.6 ("initialize interrupt mask (disabled)").
func Init(verbose bool) {
	enabled.Store(false)
	pending.Store(false)
	verboseFlag.Store(verbose)
}

// End tears down any running preemption source. Safe to call even if
// preemption was never started.
func End() {
	StopPreemption()
}

// Off disables the mask and returns the previous state, mirroring
// interrupt_off().
func Off() bool {
	return enabled.Swap(false)
}

// On unconditionally enables the mask, mirroring interrupt_on(). Neither
// On nor Set consults the pending flag; the forced-yield-on-restore
// checkpoint is built by the caller from Set plus TestAndClearPending.
func On() {
	enabled.Store(true)
}

// Set restores a previously saved mask state, mirroring interrupt_set().
func Set(prev bool) {
	enabled.Store(prev)
}

// Enabled reports the current mask state, mirroring interrupt_enabled().
func Enabled() bool {
	return enabled.Load()
}

// TestAndClearPending atomically observes and clears the
// preemption-pending flag raised by the timer signal while the mask was
// disabled. Exactly one caller sees true for a given pending signal; the
// thread runtime uses this at the mask-restore checkpoint of every
// public entry point to realize "deliver the deferred signal the
// instant the mask returns to enabled," since Go offers no way to make
// the kernel itself defer delivery of a registered os/signal the way a
// real sigprocmask would.
func TestAndClearPending() bool {
	return pending.CompareAndSwap(true, false)
}

// Printf is a mask-respecting diagnostic print: interrupts are disabled
// for the duration of the write so the preemption signal cannot
// re-enter output formatting, mirroring unintr_printf.
func Printf(format string, args ...any) {
	if !verboseFlag.Load() {
		return
	}
	prev := Off()
	defer Set(prev)
	printMu.Lock()
	defer printMu.Unlock()
	fmt.Fprintf(os.Stderr, format, args...)
}

// Quiet temporarily disables verbose diagnostic output and returns a
// function that restores the previous setting, mirroring
// interrupt_quiet().
func Quiet() (restore func()) {
	prev := verboseFlag.Swap(false)
	return func() { verboseFlag.Store(prev) }
}

// Spin busy-waits for approximately d, without yielding the mask or the
// OS thread the way time.Sleep's scheduler point would. Used by tests
// that need to keep a thread demonstrably running so preemption (rather
// than cooperative yielding) is what moves control elsewhere.
func Spin(d time.Duration) {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
	}
}

// StartPreemption arms a real interval timer delivering SIGALRM every
// Interval and begins observing it: each delivery sets the
// preemption-pending flag, to be consumed at the next mask-restore
// checkpoint. Built on golang.org/x/sys/unix's Setitimer.
func StartPreemption() error {
	it := unix.Itimerval{
		Interval: unix.NsecToTimeval(Interval.Nanoseconds()),
		Value:    unix.NsecToTimeval(Interval.Nanoseconds()),
	}
	if err := unix.Setitimer(unix.ITIMER_REAL, &it, nil); err != nil {
		return err
	}

	sigCh = make(chan os.Signal, 64)
	stopCh = make(chan struct{})
	signal.Notify(sigCh, syscall.SIGALRM)

	doneWg.Add(1)
	go func() {
		defer doneWg.Done()
		for {
			select {
			case <-sigCh:
				pending.Store(true)
			case <-stopCh:
				return
			}
		}
	}()
	return nil
}

// StopPreemption disarms the timer and stops observing the signal.
func StopPreemption() {
	if stopCh == nil {
		return
	}
	var zero unix.Itimerval
	_ = unix.Setitimer(unix.ITIMER_REAL, &zero, nil)
	signal.Stop(sigCh)
	close(stopCh)
	doneWg.Wait()
	stopCh = nil
	sigCh = nil
	pending.Store(false)
}
