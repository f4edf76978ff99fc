package ut369

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCVSignalWakesOneWaiter(t *testing.T) {
	startTest(t, Config{SchedName: "fcfs"})

	lk := NewLock()
	cv := NewCV(lk)

	ready := false
	tid, err := Create(func(arg any) int {
		l := arg.(*Lock)
		if err := l.Acquire(); err != nil {
			return -1
		}
		for !ready {
			if err := cv.Wait(); err != nil {
				l.Release()
				return -2
			}
		}
		l.Release()
		return 5
	}, lk)
	require.NoError(t, err)

	_, err = Yield(tid)
	require.NoError(t, err)

	require.NoError(t, lk.Acquire())
	ready = true
	cv.Signal()
	lk.Release()

	code, err := Wait(tid)
	require.NoError(t, err)
	assert.Equal(t, 5, code)

	cv.Destroy()
	lk.Destroy()
}

func TestCVWaitWrongOwnerPanics(t *testing.T) {
	startTest(t, Config{SchedName: "fcfs"})

	lk := NewLock()
	cv := NewCV(lk)

	assert.Panics(t, func() { _ = cv.Wait() })

	cv.Destroy()
	lk.Destroy()
}

func TestCVDestroyNonEmptyPanics(t *testing.T) {
	startTest(t, Config{SchedName: "fcfs"})

	lk := NewLock()
	cv := NewCV(lk)

	tid, err := Create(func(arg any) int {
		l := arg.(*Lock)
		if err := l.Acquire(); err != nil {
			return -1
		}
		if err := cv.Wait(); err != nil {
			l.Release()
			return -2
		}
		l.Release()
		return 1
	}, lk)
	require.NoError(t, err)

	// Runs the child until it acquires the lock, calls cv.Wait (which
	// releases the lock and blocks on the cv's own queue), and yields
	// back for lack of anything else runnable.
	_, err = Yield(tid)
	require.NoError(t, err)

	assert.Panics(t, func() { cv.Destroy() })

	cv.Signal()
	_, err = Wait(tid)
	require.NoError(t, err)

	cv.Destroy()
	lk.Destroy()
}
