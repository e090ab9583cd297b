// Package coro implements a single-threaded cooperative coroutine runtime.
//
// Coroutines are backed by goroutines, but a strict handoff protocol
// guarantees that at most one of them (or the scheduler) executes at any
// instant: the scheduler resumes exactly one coroutine and then blocks until
// that coroutine suspends, yields, or finishes. Code running between two
// suspension points therefore observes all shared state atomically, the way
// it would under a classic ucontext-style scheduler.
package coro

import "fmt"

type state uint8

const (
	stateRunnable state = iota
	stateRunning
	stateSuspended
	stateFinished
)

// Coro is one cooperative coroutine.
type Coro struct {
	id      uint64
	rt      *Runtime
	fn      func()
	resume  chan struct{}
	st      state
	started bool
}

// ID returns the coroutine's creation-ordered identifier.
func (c *Coro) ID() uint64 { return c.id }

// Runtime schedules coroutines FIFO on a single logical thread.
type Runtime struct {
	runq    []*Coro
	current *Coro
	// park is signalled by the running coroutine when it hands control
	// back to the scheduler.
	park      chan struct{}
	nextID    uint64
	suspended int
	pending   *coroPanic
}

type coroPanic struct {
	id    uint64
	value any
}

// New creates an empty runtime.
func New() *Runtime {
	return &Runtime{park: make(chan struct{})}
}

// Go creates a coroutine running fn and places it at the tail of the run
// queue. It does not start executing until Run schedules it.
func (rt *Runtime) Go(fn func()) *Coro {
	rt.nextID++
	c := &Coro{
		id:     rt.nextID,
		rt:     rt,
		fn:     fn,
		resume: make(chan struct{}),
		st:     stateRunnable,
	}
	rt.runq = append(rt.runq, c)
	return c
}

// This returns the currently running coroutine, or nil when called from
// outside the runtime (for example from the scheduler's own goroutine).
func (rt *Runtime) This() *Coro { return rt.current }

// Run drives the run queue until no coroutine is runnable. It returns the
// number of coroutines left suspended with nobody to wake them, so callers
// can assert clean termination (a non-zero return is a deadlock).
//
// A panic inside a coroutine is re-raised here on the caller's stack.
func (rt *Runtime) Run() int {
	for len(rt.runq) > 0 {
		c := rt.runq[0]
		rt.runq = rt.runq[1:]
		rt.current = c
		c.st = stateRunning
		if !c.started {
			c.started = true
			go c.main()
		}
		c.resume <- struct{}{}
		<-rt.park
		rt.current = nil
		if rt.pending != nil {
			p := rt.pending
			rt.pending = nil
			panic(fmt.Sprintf("coro %d: %v", p.id, p.value))
		}
	}
	return rt.suspended
}

// Suspend parks the current coroutine until another coroutine (or Run
// bookkeeping) calls Wake on it. Must be called from inside a coroutine.
func (rt *Runtime) Suspend() {
	c := rt.current
	if c == nil {
		panic("coro: Suspend called outside a coroutine")
	}
	c.st = stateSuspended
	rt.suspended++
	rt.park <- struct{}{}
	<-c.resume
}

// Wake moves a suspended coroutine back to the tail of the run queue.
// Waking a runnable, running, or finished coroutine is a no-op.
func (rt *Runtime) Wake(c *Coro) {
	if c == nil || c.st != stateSuspended {
		return
	}
	c.st = stateRunnable
	rt.suspended--
	rt.runq = append(rt.runq, c)
}

// Yield reschedules the current coroutine at the tail of the run queue,
// letting every other runnable coroutine go first.
func (rt *Runtime) Yield() {
	c := rt.current
	if c == nil {
		panic("coro: Yield called outside a coroutine")
	}
	c.st = stateRunnable
	rt.runq = append(rt.runq, c)
	rt.park <- struct{}{}
	<-c.resume
}

func (c *Coro) main() {
	<-c.resume
	defer func() {
		if r := recover(); r != nil {
			c.rt.pending = &coroPanic{id: c.id, value: r}
		}
		c.st = stateFinished
		c.rt.park <- struct{}{}
	}()
	c.fn()
}
