package realtime

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTickerClock_FiresRepeatedly(t *testing.T) {
	ticks := make(chan struct{}, 10)
	h := TickerClock{}.Start(5*time.Millisecond, func() {
		select {
		case ticks <- struct{}{}:
		default:
		}
	})
	defer h.Cancel()

	for range 3 {
		receive(t, ticks)
	}
}

func TestTickerClock_CancelStopsTicks(t *testing.T) {
	var n atomic.Int64
	h := TickerClock{}.Start(5*time.Millisecond, func() { n.Add(1) })
	time.Sleep(30 * time.Millisecond)
	h.Cancel()
	time.Sleep(10 * time.Millisecond)
	after := n.Load()
	time.Sleep(30 * time.Millisecond)
	if got := n.Load(); got != after {
		t.Errorf("ticks after cancel: %d -> %d", after, got)
	}
}

func TestTickerClock_CancelIsIdempotent(t *testing.T) {
	h := TickerClock{}.Start(time.Hour, func() {})
	h.Cancel()
	h.Cancel()
	CancelHandle(h)
	CancelHandle(nil)
	var zero cancelHandle
	zero.Cancel()
}

func TestTickerClock_CancelFromInsideTick(t *testing.T) {
	var h Handle
	ready := make(chan struct{})
	var n atomic.Int64
	h = TickerClock{}.Start(5*time.Millisecond, func() {
		<-ready
		n.Add(1)
		h.Cancel()
	})
	close(ready)
	time.Sleep(50 * time.Millisecond)
	if got := n.Load(); got != 1 {
		t.Errorf("ticks %d, want 1", got)
	}
}

func TestTickerClock_TicksDoNotOverlap(t *testing.T) {
	var running, overlaps, total atomic.Int64
	h := TickerClock{}.Start(time.Millisecond, func() {
		if running.Add(1) > 1 {
			overlaps.Add(1)
		}
		time.Sleep(5 * time.Millisecond)
		total.Add(1)
		running.Add(-1)
	})
	time.Sleep(50 * time.Millisecond)
	h.Cancel()
	if overlaps.Load() != 0 {
		t.Errorf("overlapping ticks: %d", overlaps.Load())
	}
	if total.Load() == 0 {
		t.Error("no ticks ran")
	}
}
