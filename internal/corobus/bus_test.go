package corobus

import (
	"testing"

	"github.com/ArseniyBeglov/corobus/internal/coro"
)

func newTestBus(t *testing.T) (*coro.Runtime, *Bus) {
	t.Helper()
	rt := coro.New()
	return rt, New(rt)
}

// run drives the runtime and fails the test if any coroutine is left
// suspended with nobody to wake it.
func run(t *testing.T, rt *coro.Runtime) {
	t.Helper()
	if left := rt.Run(); left != 0 {
		t.Fatalf("deadlock: %d coroutines left suspended", left)
	}
}

func TestOpenChannel_ReusesLowestSlot(t *testing.T) {
	_, b := newTestBus(t)
	for want := 0; want < 3; want++ {
		if got := b.OpenChannel(1); got != want {
			t.Fatalf("open: expected descriptor %d, got %d", want, got)
		}
	}
	b.CloseChannel(1)
	if got := b.OpenChannel(1); got != 1 {
		t.Errorf("expected reused descriptor 1, got %d", got)
	}
	b.CloseChannel(1)
	b.CloseChannel(2)
	b.CloseChannel(0)
	if got := b.OpenChannel(1); got != 0 {
		t.Errorf("expected reused descriptor 0, got %d", got)
	}
}

func TestOpenChannel_RejectsNonPositiveCapacity(t *testing.T) {
	_, b := newTestBus(t)
	if got := b.OpenChannel(0); got != -1 {
		t.Fatalf("expected -1, got %d", got)
	}
	if b.Errno() != ErrNoChannel {
		t.Errorf("expected ErrNoChannel, got %v", b.Errno())
	}
}

func TestTrySend_TryRecv_FIFO(t *testing.T) {
	_, b := newTestBus(t)
	desc := b.OpenChannel(3)
	for _, v := range []uint32{10, 20, 30} {
		if rc := b.TrySend(desc, v); rc != 0 {
			t.Fatalf("try_send(%d): rc=%d errno=%v", v, rc, b.Errno())
		}
		if b.Errno() != ErrNone {
			t.Fatalf("expected ErrNone after send, got %v", b.Errno())
		}
	}
	if rc := b.TrySend(desc, 40); rc != -1 || b.Errno() != ErrWouldBlock {
		t.Fatalf("expected would_block on full channel, rc=%d errno=%v", rc, b.Errno())
	}
	if n := b.Buffered(desc); n != 3 {
		t.Fatalf("expected 3 buffered after failed try_send, got %d", n)
	}
	for _, want := range []uint32{10, 20, 30} {
		v, rc := b.TryRecv(desc)
		if rc != 0 || v != want {
			t.Fatalf("try_recv: got (%d,%d), want (%d,0)", v, rc, want)
		}
	}
	if _, rc := b.TryRecv(desc); rc != -1 || b.Errno() != ErrWouldBlock {
		t.Errorf("expected would_block on empty channel, rc=%d errno=%v", rc, b.Errno())
	}
}

func TestTryOps_InvalidDescriptor(t *testing.T) {
	_, b := newTestBus(t)
	if rc := b.TrySend(0, 1); rc != -1 || b.Errno() != ErrNoChannel {
		t.Errorf("try_send on empty bus: rc=%d errno=%v", rc, b.Errno())
	}
	if _, rc := b.TryRecv(-1); rc != -1 || b.Errno() != ErrNoChannel {
		t.Errorf("try_recv(-1): rc=%d errno=%v", rc, b.Errno())
	}
	desc := b.OpenChannel(1)
	b.CloseChannel(desc)
	if rc := b.TrySend(desc, 1); rc != -1 || b.Errno() != ErrNoChannel {
		t.Errorf("try_send on closed descriptor: rc=%d errno=%v", rc, b.Errno())
	}
}

func TestSend_BoundedBackPressure(t *testing.T) {
	rt, b := newTestBus(t)
	desc := b.OpenChannel(2)

	var sendRCs []int
	rt.Go(func() {
		for v := uint32(1); v <= 4; v++ {
			sendRCs = append(sendRCs, b.Send(desc, v))
		}
	})
	var received []uint32
	rt.Go(func() {
		for i := 0; i < 4; i++ {
			v, rc := b.Recv(desc)
			if rc != 0 {
				t.Errorf("recv %d: rc=%d errno=%v", i, rc, b.Errno())
				return
			}
			received = append(received, v)
		}
	})
	run(t, rt)

	for i, rc := range sendRCs {
		if rc != 0 {
			t.Errorf("send %d returned %d", i, rc)
		}
	}
	if len(received) != 4 {
		t.Fatalf("expected 4 received, got %d", len(received))
	}
	for i, v := range received {
		if v != uint32(i+1) {
			t.Errorf("receive order broken at %d: got %d", i, v)
		}
	}
	if n := b.Buffered(desc); n != 0 {
		t.Errorf("expected empty buffer at end, got %d", n)
	}
}

func TestRecv_BlocksUntilSend(t *testing.T) {
	rt, b := newTestBus(t)
	desc := b.OpenChannel(1)

	var got uint32
	var rc int
	rt.Go(func() { got, rc = b.Recv(desc) })
	rt.Go(func() {
		if src := b.Send(desc, 99); src != 0 {
			t.Errorf("send: rc=%d errno=%v", src, b.Errno())
		}
	})
	run(t, rt)
	if rc != 0 || got != 99 {
		t.Errorf("recv: got (%d,%d), want (99,0)", got, rc)
	}
}

func TestCloseChannel_WakesWaiters(t *testing.T) {
	rt, b := newTestBus(t)
	desc := b.OpenChannel(1)

	var rcs []int
	var errs []ErrCode
	rt.Go(func() {
		rcs = append(rcs, b.Send(desc, 1)) // fills the channel
		rcs = append(rcs, b.Send(desc, 2)) // suspends, then aborts on close
		errs = append(errs, b.Errno())
	})
	rt.Go(func() { b.CloseChannel(desc) })
	run(t, rt)

	if len(rcs) != 2 || rcs[0] != 0 || rcs[1] != -1 {
		t.Fatalf("unexpected send results: %v", rcs)
	}
	if len(errs) != 1 || errs[0] != ErrNoChannel {
		t.Errorf("expected ErrNoChannel after close, got %v", errs)
	}
}

func TestCloseChannel_WakesAllWaiters(t *testing.T) {
	rt, b := newTestBus(t)
	desc := b.OpenChannel(1)

	const waiters = 3
	failures := 0
	for i := 0; i < waiters; i++ {
		rt.Go(func() {
			if _, rc := b.Recv(desc); rc == -1 && b.Errno() == ErrNoChannel {
				failures++
			}
		})
	}
	rt.Go(func() { b.CloseChannel(desc) })
	run(t, rt)
	if failures != waiters {
		t.Errorf("expected %d aborted receivers, got %d", waiters, failures)
	}
}

func TestCloseChannel_InvalidDescriptorIsNoop(t *testing.T) {
	_, b := newTestBus(t)
	b.CloseChannel(-1)
	b.CloseChannel(0)
	b.CloseChannel(7)
	desc := b.OpenChannel(1)
	b.CloseChannel(desc)
	b.CloseChannel(desc) // double close
	if got := b.OpenChannel(1); got != desc {
		t.Errorf("expected slot %d reused after double close, got %d", desc, got)
	}
}

func TestBusClose_ClosesRemainingChannels(t *testing.T) {
	rt, b := newTestBus(t)
	d0 := b.OpenChannel(1)
	d1 := b.OpenChannel(1)
	if rc := b.TrySend(d0, 5); rc != 0 {
		t.Fatalf("try_send: rc=%d", rc)
	}

	aborted := 0
	rt.Go(func() {
		if _, rc := b.Recv(d1); rc == -1 && b.Errno() == ErrNoChannel {
			aborted++
		}
	})
	rt.Go(func() { b.Close() })
	run(t, rt)

	if aborted != 1 {
		t.Errorf("expected suspended receiver to abort, aborted=%d", aborted)
	}
	if n := b.ChannelCount(); n != 0 {
		t.Errorf("expected 0 channels after bus close, got %d", n)
	}
}

func TestErrno_SetOnSuccess(t *testing.T) {
	_, b := newTestBus(t)
	b.SetErrno(ErrWouldBlock)
	desc := b.OpenChannel(1)
	if b.Errno() != ErrNone {
		t.Errorf("open must clear errno, got %v", b.Errno())
	}
	b.SetErrno(ErrNoChannel)
	if rc := b.TrySend(desc, 1); rc != 0 || b.Errno() != ErrNone {
		t.Errorf("try_send must set ErrNone on success, rc=%d errno=%v", rc, b.Errno())
	}
}

func TestErrCode_String(t *testing.T) {
	cases := map[ErrCode]string{
		ErrNone:       "none",
		ErrNoChannel:  "no_channel",
		ErrWouldBlock: "would_block",
		ErrCode(42):   "unknown",
	}
	for code, want := range cases {
		if got := code.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(code), got, want)
		}
	}
}

func TestSendersDrainOneByOne(t *testing.T) {
	rt, b := newTestBus(t)
	desc := b.OpenChannel(1)

	const producers = 4
	sent := 0
	for i := 0; i < producers; i++ {
		i := i
		rt.Go(func() {
			if rc := b.Send(desc, uint32(i)); rc == 0 {
				sent++
			}
		})
	}
	var received []uint32
	rt.Go(func() {
		for len(received) < producers {
			v, rc := b.Recv(desc)
			if rc != 0 {
				t.Errorf("recv: rc=%d errno=%v", rc, b.Errno())
				return
			}
			received = append(received, v)
		}
	})
	run(t, rt)

	if sent != producers {
		t.Errorf("expected %d successful sends, got %d", producers, sent)
	}
	// Senders queued FIFO on a capacity-1 channel drain in arrival order.
	for i, v := range received {
		if v != uint32(i) {
			t.Errorf("drain order broken at %d: got %d", i, v)
		}
	}
}
