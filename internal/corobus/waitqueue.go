package corobus

import "github.com/ArseniyBeglov/corobus/internal/coro"

// waitEntry links one suspended coroutine into a waitQueue. The entry is a
// local of the suspending call and lives only as long as that call (the
// compiler places it on the heap because the queue links to it); the queue
// holds only non-owning links, so the queue owner can be destroyed as soon
// as the queue is drained.
type waitEntry struct {
	prev, next *waitEntry
	c          *coro.Coro
	linked     bool
}

// waitQueue is a FIFO list of suspended coroutines.
type waitQueue struct {
	head, tail *waitEntry
}

func (q *waitQueue) empty() bool { return q.head == nil }

func (q *waitQueue) pushBack(e *waitEntry) {
	e.prev = q.tail
	e.next = nil
	e.linked = true
	if q.tail != nil {
		q.tail.next = e
	} else {
		q.head = e
	}
	q.tail = e
}

// remove unlinks e. Removing an already-detached entry is a no-op: the
// waiter removes itself after resuming, and a waker may have detached the
// entry first.
func (q *waitQueue) remove(e *waitEntry) {
	if !e.linked {
		return
	}
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		q.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		q.tail = e.prev
	}
	e.prev, e.next = nil, nil
	e.linked = false
}

// suspendThis appends the current coroutine to the queue tail and parks it.
// After resuming it unlinks its own entry if a waker has not already done
// so.
func (q *waitQueue) suspendThis(rt *coro.Runtime) {
	e := waitEntry{c: rt.This()}
	q.pushBack(&e)
	rt.Suspend()
	q.remove(&e)
}

// wakeFirst detaches the head entry before marking its coroutine runnable,
// so the queue owner may be destroyed safely once the queue is drained.
func (q *waitQueue) wakeFirst(rt *coro.Runtime) {
	e := q.head
	if e == nil {
		return
	}
	q.remove(e)
	rt.Wake(e.c)
}

func (q *waitQueue) wakeAll(rt *coro.Runtime) {
	for q.head != nil {
		q.wakeFirst(rt)
	}
}
