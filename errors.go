package ut369

import "errors"

// Tid identifies a thread. Valid identifiers lie in [0, MaxThreads).
type Tid int

// Historical sentinel values from the original UT369 numbering, kept as
// documented constants for readers translating between the two APIs.
// The Go-facing contract uses the sentinel errors below, not these ints.
const (
	tidInvalid  Tid = -1
	tidAny      Tid = -2
	tidNone     Tid = -3
	tidNoMore   Tid = -4
	tidNoMemory Tid = -5
	tidDeadlock Tid = -6
	tidKilled   Tid = -9
)

// TidAny requests "any runnable thread" from Yield.
const TidAny Tid = tidAny

// Sentinel errors returned by the public API. These are usage and
// structural errors (spec classes 1 and 2); programmer-contract
// violations (class 3) panic instead, see the doc comments on the
// functions that can panic.
var (
	ErrInvalid  = errors.New("ut369: invalid thread identifier or argument")
	ErrNone     = errors.New("ut369: no other thread available to run")
	ErrNoMore   = errors.New("ut369: maximum thread count reached")
	ErrNoMemory = errors.New("ut369: failed to allocate thread resources")
	ErrDeadlock = errors.New("ut369: operation would deadlock")
)

// ExitKilled is the exit code observed by joiners of a thread that was
// terminated via Kill.
const ExitKilled = -9
