package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rt int

func (r rt) ID() int { return int(r) }

func TestFCFSOrder(t *testing.T) {
	d, err := New("fcfs", 8)
	require.NoError(t, err)
	d.Enqueue(rt(1))
	d.Enqueue(rt(2))
	d.Enqueue(rt(3))

	for _, want := range []int{1, 2, 3} {
		got, ok := d.Dequeue()
		require.True(t, ok)
		assert.Equal(t, want, got.ID())
	}
	_, ok := d.Dequeue()
	assert.False(t, ok)
	d.Destroy()
}

func TestFCFSRemove(t *testing.T) {
	d, err := New("fcfs", 8)
	require.NoError(t, err)
	d.Enqueue(rt(1))
	d.Enqueue(rt(2))
	got, ok := d.Remove(1)
	require.True(t, ok)
	assert.Equal(t, 1, got.ID())
	next, _ := d.Dequeue()
	assert.Equal(t, 2, next.ID())
}

func TestRandomCoversAllMembers(t *testing.T) {
	d, err := New("rand", 0)
	require.NoError(t, err)
	want := map[int]bool{1: true, 2: true, 3: true, 4: true}
	for id := range want {
		d.Enqueue(rt(id))
	}
	got := map[int]bool{}
	for i := 0; i < 4; i++ {
		item, ok := d.Dequeue()
		require.True(t, ok)
		got[item.ID()] = true
	}
	assert.Equal(t, want, got)
	_, ok := d.Dequeue()
	assert.False(t, ok)
}

func TestUnknownPolicy(t *testing.T) {
	_, err := New("bogus", 8)
	assert.Error(t, err)
}
