package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunFrameRunsInOrder(t *testing.T) {
	q := NewQueue()
	var order []int
	q.ScheduleNext(func() { order = append(order, 1) })
	q.ScheduleNext(func() { order = append(order, 2) })

	assert.Equal(t, 2, q.Pending())
	assert.Equal(t, 2, q.RunFrame())
	assert.Equal(t, []int{1, 2}, order)
	assert.Zero(t, q.Pending())
}

func TestCancel(t *testing.T) {
	q := NewQueue()
	ran := false
	h := q.ScheduleNext(func() { ran = true })
	assert.NotZero(t, h)

	q.Cancel(h)
	q.Cancel(h)
	assert.Zero(t, q.RunFrame())
	assert.False(t, ran)
}

func TestRescheduleRunsNextFrame(t *testing.T) {
	q := NewQueue()
	count := 0
	var loop func()
	loop = func() {
		count++
		q.ScheduleNext(loop)
	}
	q.ScheduleNext(loop)

	q.RunFrame()
	q.RunFrame()
	q.RunFrame()
	assert.Equal(t, 3, count)
	assert.Equal(t, 1, q.Pending())
}

func TestHandlesAreUnique(t *testing.T) {
	q := NewQueue()
	a := q.ScheduleNext(func() {})
	b := q.ScheduleNext(func() {})
	assert.NotEqual(t, a, b)
}
