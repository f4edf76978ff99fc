package fifo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct{ id int }

func (e entry) ID() int { return e.id }

func TestNewZeroCapacity(t *testing.T) {
	require.Nil(t, New[entry](0))
	require.Nil(t, New[entry](-1))
}

func TestPushPopFIFO(t *testing.T) {
	q := New[entry](4)
	require.NotNil(t, q)
	require.True(t, q.Push(entry{1}))
	require.True(t, q.Push(entry{2}))
	require.True(t, q.Push(entry{3}))
	assert.Equal(t, 3, q.Count())

	top, ok := q.Top()
	require.True(t, ok)
	assert.Equal(t, 1, top.ID())

	for _, want := range []int{1, 2, 3} {
		got, ok := q.Pop()
		require.True(t, ok)
		assert.Equal(t, want, got.ID())
	}
	_, ok = q.Pop()
	assert.False(t, ok)
}

func TestPushAtCapacity(t *testing.T) {
	q := New[entry](2)
	require.True(t, q.Push(entry{1}))
	require.True(t, q.Push(entry{2}))
	assert.False(t, q.Push(entry{3}))
}

func TestPushDuplicatePanics(t *testing.T) {
	q := New[entry](2)
	require.True(t, q.Push(entry{1}))
	assert.Panics(t, func() { q.Push(entry{1}) })
}

func TestRemoveByIDPreservesOrder(t *testing.T) {
	q := New[entry](4)
	q.Push(entry{1})
	q.Push(entry{2})
	q.Push(entry{3})

	got, ok := q.RemoveByID(2)
	require.True(t, ok)
	assert.Equal(t, 2, got.ID())
	assert.Equal(t, 2, q.Count())
	assert.False(t, q.Contains(2))

	first, _ := q.Pop()
	second, _ := q.Pop()
	assert.Equal(t, 1, first.ID())
	assert.Equal(t, 3, second.ID())
}

func TestDestroyAssertsEmpty(t *testing.T) {
	q := New[entry](2)
	q.Destroy()

	q.Push(entry{1})
	assert.Panics(t, func() { q.Destroy() })
}

func TestItemsSnapshot(t *testing.T) {
	q := New[entry](3)
	q.Push(entry{1})
	q.Push(entry{2})
	items := q.Items()
	require.Len(t, items, 2)
	q.Pop()
	assert.Len(t, items, 2, "snapshot must not observe later mutation")
}
