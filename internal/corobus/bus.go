// Package corobus implements a cooperative message bus: independently
// addressable bounded FIFO channels sharing one error indicator, with
// atomic broadcast and vectored transfer on top.
//
// Producers and consumers are coroutines on a single-threaded
// [coro.Runtime]. A coroutine that cannot complete an operation suspends on
// the relevant wait queue and is woken, one at a time, as capacity or data
// becomes available. Because the runtime is cooperative, every operation is
// atomic between suspension points and no locking is needed.
package corobus

import (
	"log/slog"

	"github.com/ArseniyBeglov/corobus/internal/coro"
)

// Bus is a sparse table of channels keyed by small non-negative integer
// descriptors. Descriptors are stable until CloseChannel; closed slots are
// reused lowest-first by subsequent opens.
type Bus struct {
	rt       *coro.Runtime
	channels []*channel
	bcastq   waitQueue
	errno    ErrCode
}

// New creates an empty bus scheduling on rt.
func New(rt *coro.Runtime) *Bus {
	b := &Bus{rt: rt}
	b.errno = ErrNone
	return b
}

// channelAt resolves a descriptor, setting ErrNoChannel on any miss.
// Callers of the blocking operations re-resolve after every suspension:
// the channel may have been closed, and the descriptor slot emptied, while
// they were parked.
func (b *Bus) channelAt(desc int) *channel {
	if desc < 0 || desc >= len(b.channels) || b.channels[desc] == nil {
		b.errno = ErrNoChannel
		return nil
	}
	return b.channels[desc]
}

// OpenChannel creates a channel with the given capacity and returns its
// descriptor, reusing the lowest empty slot before growing the table, so a
// stale descriptor of a closed channel may name a newer channel.
// A non-positive capacity is rejected with ErrNoChannel.
func (b *Bus) OpenChannel(capacity int) int {
	if capacity <= 0 {
		b.errno = ErrNoChannel
		return -1
	}
	desc := -1
	for i, ch := range b.channels {
		if ch == nil {
			desc = i
			break
		}
	}
	if desc < 0 {
		b.channels = append(b.channels, nil)
		desc = len(b.channels) - 1
	}
	b.channels[desc] = newChannel(capacity)
	b.errno = ErrNone
	slog.Debug("corobus: channel opened", "desc", desc, "capacity", capacity)
	return desc
}

// CloseChannel closes the channel named by desc, waking every coroutine
// suspended on it. An invalid or already-closed descriptor is a silent
// no-op.
//
// The slot is emptied before any waiter is woken: a resumed waiter
// re-resolves its descriptor, observes ErrNoChannel, and returns failure
// without ever touching the dying channel. Combined with detach-before-wake
// in the wait queue, both queues are empty and unreferenced by the time the
// channel is dropped.
func (b *Bus) CloseChannel(desc int) {
	if desc < 0 || desc >= len(b.channels) || b.channels[desc] == nil {
		return
	}
	ch := b.channels[desc]
	b.channels[desc] = nil

	ch.sendq.wakeAll(b.rt)
	ch.recvq.wakeAll(b.rt)
	// The channel set changed; pending broadcasters must re-evaluate.
	b.bcastq.wakeAll(b.rt)

	if ch.count > 0 {
		slog.Debug("corobus: channel closed with queued payloads", "desc", desc, "discarded", ch.count)
	} else {
		slog.Debug("corobus: channel closed", "desc", desc)
	}
}

// Close tears the bus down, closing every remaining open channel first so
// that suspended waiters and broadcasters drain through the normal
// ErrNoChannel path. Queued payloads on still-open channels are discarded.
func (b *Bus) Close() {
	for desc, ch := range b.channels {
		if ch != nil {
			b.CloseChannel(desc)
		}
	}
	b.channels = nil
	b.errno = ErrNone
}

// ChannelCount returns the number of currently open channels.
func (b *Bus) ChannelCount() int {
	n := 0
	for _, ch := range b.channels {
		if ch != nil {
			n++
		}
	}
	return n
}

// Buffered returns how many payloads are queued on desc, or -1 with
// ErrNoChannel for an invalid descriptor.
func (b *Bus) Buffered(desc int) int {
	ch := b.channelAt(desc)
	if ch == nil {
		return -1
	}
	b.errno = ErrNone
	return ch.count
}
