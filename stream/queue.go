package stream

import "github.com/ardnew/softinput/event"

// queue is the FIFO buffer of semantic events pending delivery. Events
// are yielded in exactly the order they were pushed.
type queue struct {
	items []event.Event
}

func newQueue(capacity int) *queue {
	if capacity < 0 {
		capacity = 0
	}
	return &queue{items: make([]event.Event, 0, capacity)}
}

func (q *queue) push(e event.Event) {
	q.items = append(q.items, e)
}

// pop removes and returns the oldest event.
func (q *queue) pop() (event.Event, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	e := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = q.items[:0:cap(q.items)]
	}
	return e, true
}

func (q *queue) len() int {
	return len(q.items)
}
