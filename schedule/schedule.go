// Package schedule defines the pluggable dispatcher abstraction the
// thread runtime installs at startup, and its two concrete policies:
// FCFS (round-robin once preemption is enabled) and Random.
//
// The interfaces here are defined structurally against Runnable rather
// than against the root ut369 package's concrete type, so that ut369 can
// depend on schedule without schedule ever needing to import ut369:
// any *ut369.Thread satisfies Runnable simply by exposing an ID()
// method, no import required in the other direction.
package schedule

import "fmt"

// Runnable is anything a Dispatcher can hold: a thread identifier, in
// FIFO-or-random order depending on policy.
type Runnable interface {
	ID() int
}

// Dispatcher is the scheduler interface installed at startup. It never
// holds the Running thread, only Runnable ones.
type Dispatcher interface {
	// Enqueue places t among the runnable set.
	Enqueue(t Runnable)
	// Dequeue removes and returns the next thread to run, per policy.
	Dequeue() (Runnable, bool)
	// Remove removes the thread with the given id, if present.
	Remove(id int) (Runnable, bool)
	// Destroy releases any resources held by the dispatcher.
	Destroy()
}

// New constructs the named policy ("fcfs" or "rand") with the given
// capacity, matching Config.SchedName.
func New(name string, capacity int) (Dispatcher, error) {
	switch name {
	case "", "fcfs":
		return newFCFS(capacity), nil
	case "rand":
		return newRandom(capacity), nil
	default:
		return nil, fmt.Errorf("ut369/schedule: unknown scheduler %q", name)
	}
}
