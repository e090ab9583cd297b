package corobus

// broadcastScan classifies the current channel set for a broadcast
// attempt.
func (b *Bus) broadcastScan() (hasAny, allHaveSpace bool) {
	allHaveSpace = true
	for _, ch := range b.channels {
		if ch == nil {
			continue
		}
		hasAny = true
		if ch.full() {
			allHaveSpace = false
		}
	}
	return hasAny, allHaveSpace
}

// broadcastDeliver appends v to every open channel and wakes one receiver
// per channel. Callers have already verified that every channel has room.
func (b *Bus) broadcastDeliver(v uint32) {
	for _, ch := range b.channels {
		if ch == nil {
			continue
		}
		ch.push(v)
		ch.recvq.wakeFirst(b.rt)
	}
}

// Broadcast appends v to every open channel atomically, suspending until
// all of them have room simultaneously. Returns 0 on success, -1 with
// ErrNoChannel when the bus has no open channels, including when the
// channel set shrank to zero while the broadcaster was suspended.
//
// A broadcaster that wakes but still finds a full channel re-suspends at
// the tail of the broadcast queue, so competing broadcasters proceed FIFO.
func (b *Bus) Broadcast(v uint32) int {
	for {
		hasAny, allHaveSpace := b.broadcastScan()
		if !hasAny {
			b.errno = ErrNoChannel
			return -1
		}
		if allHaveSpace {
			b.broadcastDeliver(v)
			b.errno = ErrNone
			return 0
		}
		b.errno = ErrWouldBlock
		b.bcastq.suspendThis(b.rt)
	}
}

// TryBroadcast is the non-blocking Broadcast: any full channel fails the
// whole call with ErrWouldBlock and no channel is modified.
func (b *Bus) TryBroadcast(v uint32) int {
	hasAny, allHaveSpace := b.broadcastScan()
	if !hasAny {
		b.errno = ErrNoChannel
		return -1
	}
	if !allHaveSpace {
		b.errno = ErrWouldBlock
		return -1
	}
	b.broadcastDeliver(v)
	b.errno = ErrNone
	return 0
}
