package realtime

import (
	"context"
	"time"
)

// Clock starts repeating timers.
type Clock interface {
	// Start calls onTick every interval until the returned handle is cancelled.
	Start(interval time.Duration, onTick func()) Handle
}

// Handle cancels a timer started by a Clock. Cancel may be called any number
// of times, including from inside the tick callback.
type Handle interface {
	Cancel()
}

// TickerClock runs each timer on its own goroutine backed by a time.Ticker.
// Ticks for one handle never overlap; ticks missed while a callback runs are
// coalesced rather than queued.
type TickerClock struct{}

// Start implements Clock.
func (TickerClock) Start(interval time.Duration, onTick func()) Handle {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				// Cancel may have raced with the tick.
				if ctx.Err() != nil {
					return
				}
				onTick()
			}
		}
	}()
	return cancelHandle(cancel)
}

type cancelHandle context.CancelFunc

func (h cancelHandle) Cancel() {
	if h != nil {
		h()
	}
}

// CancelHandle cancels h if it is non-nil.
func CancelHandle(h Handle) {
	if h != nil {
		h.Cancel()
	}
}
