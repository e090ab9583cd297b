package sim

import (
	"log/slog"

	"github.com/ArseniyBeglov/corobus/internal/coro"
	"github.com/ArseniyBeglov/corobus/internal/corobus"
)

// Report summarizes one workload round.
type Report struct {
	Topology          string `json:"topology"`
	Expected          int    `json:"expected"`
	Sent              int    `json:"sent"`
	Received          int    `json:"received"`
	Broadcasts        int    `json:"broadcasts"`
	BroadcastFailures int    `json:"broadcastFailures"`
	SendFailures      int    `json:"sendFailures"`
	Discarded         int    `json:"discarded"`
	Deadlocked        int    `json:"deadlocked"`
	PerChannel        []int  `json:"perChannel"`
}

// Clean reports whether the round delivered everything it produced with no
// coroutine left stranded.
func (r Report) Clean() bool {
	return r.Deadlocked == 0 && r.SendFailures == 0 && r.BroadcastFailures == 0 &&
		r.Received == r.Sent+r.Broadcasts*len(r.PerChannel)
}

// Run executes one round of the topology on a fresh runtime and bus.
//
// Producer i targets channel i mod N, consumer j drains channel j mod N
// until it observes the close. The last producer or broadcaster to finish
// waits for consumers to drain what is still buffered and then closes every
// channel, which is what lets consumers terminate: their
// blocking Recv aborts with no_channel exactly the way real shutdown
// propagates through the bus.
func Run(topo Topology) Report {
	rt := coro.New()
	b := corobus.New(rt)
	rep := Report{
		Topology:   topo.Name,
		Expected:   topo.TotalExpected(),
		PerChannel: make([]int, len(topo.Capacities)),
	}

	descs := make([]int, len(topo.Capacities))
	for i, capacity := range topo.Capacities {
		descs[i] = b.OpenChannel(capacity)
	}

	workers := topo.Producers + topo.Broadcasters
	closeAll := func() {
		// Yield to consumers until the buffers are empty, or until a pass
		// over the run queue drains nothing (a channel nobody consumes).
		for left := -1; ; {
			n := 0
			for _, desc := range descs {
				n += max(b.Buffered(desc), 0)
			}
			if n == 0 || n == left {
				break
			}
			left = n
			rt.Yield()
		}
		for _, desc := range descs {
			if n := b.Buffered(desc); n > 0 {
				rep.Discarded += n
			}
			b.CloseChannel(desc)
		}
	}
	// Called by each producer and broadcaster on exit; the last one tears
	// the channels down so consumers can drain and stop.
	finish := func() {
		workers--
		if workers == 0 {
			closeAll()
		}
	}

	for i := 0; i < topo.Producers; i++ {
		desc := descs[i%len(descs)]
		base := uint32(i * topo.Messages)
		rt.Go(func() {
			defer finish()
			if topo.BatchSize > 1 {
				rep.Sent += produceBatched(b, desc, base, topo.Messages, topo.BatchSize, &rep)
				return
			}
			for s := 0; s < topo.Messages; s++ {
				v := base + uint32(s)
				// Fast path first; fall back to the blocking call only
				// when the channel is actually full.
				if rc := b.TrySend(desc, v); rc != 0 {
					if b.Errno() != corobus.ErrWouldBlock {
						rep.SendFailures++
						return
					}
					if rc := b.Send(desc, v); rc != 0 {
						rep.SendFailures++
						return
					}
				}
				rep.Sent++
			}
		})
	}

	for k := 0; k < topo.Broadcasters; k++ {
		v := uint32(0xB0000000 + k)
		rt.Go(func() {
			defer finish()
			if rc := b.Broadcast(v); rc != 0 {
				rep.BroadcastFailures++
				return
			}
			rep.Broadcasts++
		})
	}

	for j := 0; j < topo.Consumers; j++ {
		idx := j % len(descs)
		desc := descs[idx]
		rt.Go(func() {
			if topo.BatchSize > 1 {
				rep.PerChannel[idx] += consumeBatched(b, desc, topo.BatchSize)
				return
			}
			for {
				if _, rc := b.TryRecv(desc); rc == 0 {
					rep.PerChannel[idx]++
					continue
				}
				if b.Errno() != corobus.ErrWouldBlock {
					return // channel closed
				}
				if _, rc := b.Recv(desc); rc != 0 {
					return
				}
				rep.PerChannel[idx]++
			}
		})
	}

	if workers == 0 {
		// Nothing will ever produce; close immediately so consumers exit.
		rt.Go(closeAll)
	}

	rep.Deadlocked = rt.Run()
	for _, n := range rep.PerChannel {
		rep.Received += n
	}
	slog.Debug("sim: round finished",
		"topology", topo.Name,
		"sent", rep.Sent,
		"received", rep.Received,
		"broadcasts", rep.Broadcasts,
		"discarded", rep.Discarded,
		"deadlocked", rep.Deadlocked)
	return rep
}

func produceBatched(b *corobus.Bus, desc int, base uint32, messages, batch int, rep *Report) int {
	payload := make([]uint32, messages)
	for s := range payload {
		payload[s] = base + uint32(s)
	}
	sent := 0
	for len(payload) > 0 {
		chunk := payload
		if len(chunk) > batch {
			chunk = chunk[:batch]
		}
		n := b.SendV(desc, chunk)
		if n < 0 {
			rep.SendFailures++
			return sent
		}
		sent += n
		payload = payload[n:]
	}
	return sent
}

func consumeBatched(b *corobus.Bus, desc, batch int) int {
	buf := make([]uint32, batch)
	total := 0
	for {
		n := b.RecvV(desc, buf)
		if n < 0 {
			return total
		}
		total += n
	}
}
