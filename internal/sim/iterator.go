package sim

import (
	"slices"

	"github.com/san-kum/ballsim/internal/dynamo"
	"github.com/san-kum/ballsim/internal/physics"
)

// Iterator walks a ball slice and can remove the element it last returned
// without disturbing the order of the rest.
type Iterator struct {
	balls   *[]*physics.Ball
	next    int
	current int
}

func NewIterator(balls *[]*physics.Ball) *Iterator {
	return &Iterator{balls: balls, current: -1}
}

func (it *Iterator) HasNext() bool {
	return it.next < len(*it.balls)
}

// Next panics with dynamo.ErrNoCurrent when the iterator is exhausted.
func (it *Iterator) Next() *physics.Ball {
	if !it.HasNext() {
		panic(dynamo.ErrNoCurrent)
	}
	it.current = it.next
	it.next++
	return (*it.balls)[it.current]
}

// Remove deletes the element returned by the last Next. Calling it before
// Next or twice for the same element panics with dynamo.ErrNoCurrent.
func (it *Iterator) Remove() {
	if it.current < 0 {
		panic(dynamo.ErrNoCurrent)
	}
	*it.balls = slices.Delete(*it.balls, it.current, it.current+1)
	it.next = it.current
	it.current = -1
}

// Advance updates every ball by dt milliseconds and drops the ones that
// finished disposing during this update.
func Advance(balls []*physics.Ball, dt float64) []*physics.Ball {
	it := NewIterator(&balls)
	for it.HasNext() {
		b := it.Next()
		b.Update(dt)
		if b.IsDisposed() {
			it.Remove()
		}
	}
	return balls
}
