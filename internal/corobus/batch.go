package corobus

// SendV transfers as many leading elements of data as fit into the channel
// right now, blocking only while the channel is completely full. It never
// waits for the whole batch to fit: as soon as any room exists it performs
// a partial transfer and returns the count moved. An empty data slice
// returns 0 with ErrNone.
func (b *Bus) SendV(desc int, data []uint32) int {
	if len(data) == 0 {
		b.errno = ErrNone
		return 0
	}
	for {
		ch := b.channelAt(desc)
		if ch == nil {
			return -1
		}
		if ch.full() {
			b.errno = ErrWouldBlock
			ch.sendq.suspendThis(b.rt)
			continue
		}
		n := min(ch.space(), len(data))
		for _, v := range data[:n] {
			ch.push(v)
		}
		b.errno = ErrNone
		// One wake per item moved: up to n consumers may be waiting.
		for i := 0; i < n; i++ {
			ch.recvq.wakeFirst(b.rt)
		}
		return n
	}
}

// TrySendV is the non-blocking SendV: a full channel fails with
// ErrWouldBlock instead of suspending.
func (b *Bus) TrySendV(desc int, data []uint32) int {
	if len(data) == 0 {
		b.errno = ErrNone
		return 0
	}
	ch := b.channelAt(desc)
	if ch == nil {
		return -1
	}
	if ch.full() {
		b.errno = ErrWouldBlock
		return -1
	}
	n := min(ch.space(), len(data))
	for _, v := range data[:n] {
		ch.push(v)
	}
	b.errno = ErrNone
	for i := 0; i < n; i++ {
		ch.recvq.wakeFirst(b.rt)
	}
	return n
}

// RecvV drains up to len(buf) payloads into buf, blocking only while the
// channel is completely empty. On first availability it moves
// min(buffered, len(buf)) items and returns that count. A zero-length buf
// returns 0 with ErrNone.
func (b *Bus) RecvV(desc int, buf []uint32) int {
	if len(buf) == 0 {
		b.errno = ErrNone
		return 0
	}
	for {
		ch := b.channelAt(desc)
		if ch == nil {
			return -1
		}
		if !ch.hasData() {
			b.errno = ErrWouldBlock
			ch.recvq.suspendThis(b.rt)
			continue
		}
		n := min(ch.count, len(buf))
		for i := 0; i < n; i++ {
			buf[i] = ch.pop()
		}
		b.errno = ErrNone
		for i := 0; i < n; i++ {
			ch.sendq.wakeFirst(b.rt)
		}
		b.bcastq.wakeFirst(b.rt)
		return n
	}
}

// TryRecvV is the non-blocking RecvV: an empty channel fails with
// ErrWouldBlock instead of suspending.
func (b *Bus) TryRecvV(desc int, buf []uint32) int {
	if len(buf) == 0 {
		b.errno = ErrNone
		return 0
	}
	ch := b.channelAt(desc)
	if ch == nil {
		return -1
	}
	if !ch.hasData() {
		b.errno = ErrWouldBlock
		return -1
	}
	n := min(ch.count, len(buf))
	for i := 0; i < n; i++ {
		buf[i] = ch.pop()
	}
	b.errno = ErrNone
	for i := 0; i < n; i++ {
		ch.sendq.wakeFirst(b.rt)
	}
	b.bcastq.wakeFirst(b.rt)
	return n
}
