package corobus

// Send appends v to the channel named by desc, suspending while the
// channel is full. Returns 0 on success, -1 with ErrNoChannel if the
// descriptor is (or becomes) invalid.
func (b *Bus) Send(desc int, v uint32) int {
	for {
		ch := b.channelAt(desc)
		if ch == nil {
			return -1
		}
		if !ch.full() {
			ch.push(v)
			b.errno = ErrNone
			ch.recvq.wakeFirst(b.rt)
			return 0
		}
		b.errno = ErrWouldBlock
		ch.sendq.suspendThis(b.rt)
	}
}

// TrySend is the non-blocking Send: a full channel fails with
// ErrWouldBlock instead of suspending.
func (b *Bus) TrySend(desc int, v uint32) int {
	ch := b.channelAt(desc)
	if ch == nil {
		return -1
	}
	if ch.full() {
		b.errno = ErrWouldBlock
		return -1
	}
	ch.push(v)
	b.errno = ErrNone
	ch.recvq.wakeFirst(b.rt)
	return 0
}

// Recv pops the oldest payload from the channel named by desc, suspending
// while the channel is empty. Returns (value, 0) on success, (0, -1) with
// ErrNoChannel if the descriptor is (or becomes) invalid.
func (b *Bus) Recv(desc int) (uint32, int) {
	for {
		ch := b.channelAt(desc)
		if ch == nil {
			return 0, -1
		}
		if ch.hasData() {
			v := ch.pop()
			b.errno = ErrNone
			ch.sendq.wakeFirst(b.rt)
			// Freed capacity may unblock a pending broadcast.
			b.bcastq.wakeFirst(b.rt)
			return v, 0
		}
		b.errno = ErrWouldBlock
		ch.recvq.suspendThis(b.rt)
	}
}

// TryRecv is the non-blocking Recv: an empty channel fails with
// ErrWouldBlock instead of suspending.
func (b *Bus) TryRecv(desc int) (uint32, int) {
	ch := b.channelAt(desc)
	if ch == nil {
		return 0, -1
	}
	if !ch.hasData() {
		b.errno = ErrWouldBlock
		return 0, -1
	}
	v := ch.pop()
	b.errno = ErrNone
	ch.sendq.wakeFirst(b.rt)
	b.bcastq.wakeFirst(b.rt)
	return v, 0
}
