package schedule

import "github.com/jonathanjschen913/ut369/internal/fifo"

// fcfs wraps the fifo queue module directly, per spec.md §4.3: under
// preemption, the periodic involuntary yield turns this into
// round-robin, since each preempted thread is re-enqueued at the tail
// before the next dequeue.
type fcfs struct {
	q *fifo.Queue[Runnable]
}

func newFCFS(capacity int) *fcfs {
	return &fcfs{q: fifo.New[Runnable](capacity)}
}

func (f *fcfs) Enqueue(t Runnable) {
	if ok := f.q.Push(t); !ok {
		panic("ut369/schedule: fcfs dispatcher at capacity")
	}
}

func (f *fcfs) Dequeue() (Runnable, bool) {
	return f.q.Pop()
}

func (f *fcfs) Remove(id int) (Runnable, bool) {
	return f.q.RemoveByID(id)
}

func (f *fcfs) Destroy() {
	f.q.Destroy()
}
