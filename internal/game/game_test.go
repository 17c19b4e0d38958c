package game

import (
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"bingohall/pkg/realtime"
)

// manualClock fires ticks only when the test asks it to.
type manualClock struct {
	mu      sync.Mutex
	handles []*manualHandle
}

type manualHandle struct {
	mu        sync.Mutex
	cancelled bool
	fn        func()
}

func (h *manualHandle) Cancel() {
	h.mu.Lock()
	h.cancelled = true
	h.mu.Unlock()
}

func (h *manualHandle) isCancelled() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cancelled
}

func (c *manualClock) Start(_ time.Duration, fn func()) realtime.Handle {
	h := &manualHandle{fn: fn}
	c.mu.Lock()
	c.handles = append(c.handles, h)
	c.mu.Unlock()
	return h
}

// Tick fires the newest live timer, if any.
func (c *manualClock) Tick() {
	c.mu.Lock()
	var h *manualHandle
	if n := len(c.handles); n > 0 {
		h = c.handles[n-1]
	}
	c.mu.Unlock()
	if h != nil && !h.isCancelled() {
		h.fn()
	}
}

func (c *manualClock) started() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.handles)
}

func (c *manualClock) handle(i int) *manualHandle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handles[i]
}

func newTestGame(t *testing.T, poolSize int) (*Game, *manualClock) {
	t.Helper()
	clock := &manualClock{}
	g, err := NewGame(Config{PoolSize: poolSize, DrawInterval: time.Second, SubscriberBuffer: 128},
		WithClock(clock), WithDrawSequence(NewSeededDrawSequence(7)))
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	t.Cleanup(g.Close)
	return g, clock
}

func subscribe(t *testing.T, g *Game, id string) chan Draw {
	t.Helper()
	ch := make(chan Draw, 256)
	g.Subscribe(id, realtime.ChanSink(ch))
	return ch
}

func next(t *testing.T, ch <-chan Draw) Draw {
	t.Helper()
	select {
	case d := <-ch:
		return d
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for draw")
	}
	return Draw{}
}

func expectQuiet(t *testing.T, ch <-chan Draw) {
	t.Helper()
	select {
	case d := <-ch:
		t.Fatalf("unexpected draw %+v", d)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNewGame_RejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero pool", Config{PoolSize: 0, DrawInterval: time.Second}},
		{"negative pool", Config{PoolSize: -3, DrawInterval: time.Second}},
		{"zero interval", Config{PoolSize: 75}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGame(tt.cfg)
			if !errors.Is(err, ErrConfiguration) {
				t.Errorf("err %v, want ErrConfiguration", err)
			}
		})
	}
}

func TestGame_StartStopMessages(t *testing.T) {
	g, _ := newTestGame(t, 5)
	if got := g.Stop(); got != NotRunning {
		t.Errorf("Stop on idle = %v, want NotRunning", got)
	}
	if got := g.Start(); got != Started {
		t.Errorf("Start = %v, want Started", got)
	}
	if got := g.Start(); got != AlreadyStarted {
		t.Errorf("second Start = %v, want AlreadyStarted", got)
	}
	if got := g.Stop(); got != Stopped {
		t.Errorf("Stop = %v, want Stopped", got)
	}

	for tr, want := range map[Transition]string{
		Started:        "Game started!",
		AlreadyStarted: "Game has already started!",
		Stopped:        "Game stopped!",
		NotRunning:     "Game is not running!",
	} {
		if tr.Message() != want {
			t.Errorf("%d.Message() = %q, want %q", tr, tr.Message(), want)
		}
	}
	if !Started.Changed() || AlreadyStarted.Changed() {
		t.Error("Changed reports the wrong transitions")
	}
}

func TestGame_OnePublishPerTickUntilExhausted(t *testing.T) {
	const n = 10
	g, clock := newTestGame(t, n)
	ch := subscribe(t, g, "viewer")
	if d := next(t, ch); d.Kind != DrawWaiting {
		t.Fatalf("first event %+v, want waiting", d)
	}

	g.Start()
	seen := make([]int, 0, n)
	for i := range n {
		clock.Tick()
		d := next(t, ch)
		if d.Kind != DrawNumber {
			t.Fatalf("tick %d: got %+v, want a number", i, d)
		}
		seen = append(seen, d.Number)
		if s := g.Snapshot(); !s.HasCurrent || s.Current != d.Number || s.Remaining != n-i-1 {
			t.Fatalf("tick %d: snapshot %+v", i, s)
		}
	}
	sort.Ints(seen)
	for i, v := range seen {
		if v != i+1 {
			t.Fatalf("draws %v are not a permutation of 1..%d", seen, n)
		}
	}

	// The tick after the last draw ends the game.
	clock.Tick()
	s := g.Snapshot()
	if s.Running || s.HasCurrent || s.Drawn != n {
		t.Errorf("after exhaustion: %+v", s)
	}
	if !clock.handle(0).isCancelled() {
		t.Error("clock not cancelled on exhaustion")
	}
	clock.Tick()
	expectQuiet(t, ch)
}

func TestGame_SecondStartKeepsState(t *testing.T) {
	g, clock := newTestGame(t, 20)
	g.Start()
	clock.Tick()
	clock.Tick()
	before := g.Snapshot()

	if got := g.Start(); got != AlreadyStarted {
		t.Fatalf("Start = %v", got)
	}
	after := g.Snapshot()
	if after != before {
		t.Errorf("snapshot changed by second Start: %+v -> %+v", before, after)
	}
	if clock.started() != 1 {
		t.Errorf("clock started %d times, want 1", clock.started())
	}
	clock.Tick()
	if s := g.Snapshot(); s.Drawn != 3 || s.Remaining != 17 {
		t.Errorf("pool did not continue: %+v", s)
	}
}

func TestGame_StopThenStartReshuffles(t *testing.T) {
	const n = 30
	g, clock := newTestGame(t, n)
	ch := subscribe(t, g, "viewer")
	next(t, ch)

	play := func() []int {
		g.Start()
		out := make([]int, 0, n)
		for range n {
			clock.Tick()
			out = append(out, next(t, ch).Number)
		}
		g.Stop()
		return out
	}
	first := play()
	if s := g.Snapshot(); s.Running || s.HasCurrent {
		t.Fatalf("after Stop: %+v", s)
	}
	second := play()

	same := true
	for i := range first {
		if first[i] != second[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("second game drew in the same order as the first")
	}
}

func TestGame_StaleTickIgnored(t *testing.T) {
	g, clock := newTestGame(t, 5)
	ch := subscribe(t, g, "viewer")
	next(t, ch)

	g.Start()
	g.Stop()
	g.Start()
	// A tick from the first session that was already in flight.
	clock.handle(0).fn()
	expectQuiet(t, ch)
	if s := g.Snapshot(); s.Drawn != 0 || s.Remaining != 5 {
		t.Errorf("stale tick changed state: %+v", s)
	}
}

func TestGame_LateJoinerCatchUp(t *testing.T) {
	g, clock := newTestGame(t, 50)

	g.Start()
	early := subscribe(t, g, "early")
	if d := next(t, early); d.Kind != DrawStarted {
		t.Fatalf("joiner before first draw got %+v, want started", d)
	}
	if d := (Draw{Kind: DrawStarted}); d.Text() != "Game has already started" {
		t.Errorf("started text %q", d.Text())
	}

	clock.Tick()
	clock.Tick()
	next(t, early)
	current := next(t, early).Number

	late := subscribe(t, g, "late")
	if d := next(t, late); d.Kind != DrawNumber || d.Number != current {
		t.Fatalf("late joiner got %+v, want current number %d", d, current)
	}

	var want []int
	for range 5 {
		clock.Tick()
		want = append(want, next(t, early).Number)
	}
	for i, w := range want {
		if got := next(t, late); got.Number != w {
			t.Fatalf("late draw %d = %d, want %d", i, got.Number, w)
		}
	}
	expectQuiet(t, late)
}

func TestGame_WaitingTextAndUnsubscribe(t *testing.T) {
	g, clock := newTestGame(t, 5)
	ch := subscribe(t, g, "viewer")
	if d := next(t, ch); d.Text() != "Waiting for the game to start" {
		t.Errorf("waiting text %q", d.Text())
	}
	g.Unsubscribe("viewer")
	g.Unsubscribe("viewer")
	g.Unsubscribe("nobody")
	g.Start()
	clock.Tick()
	expectQuiet(t, ch)
	if d := (Draw{Kind: DrawNumber, Number: 42}); d.Text() != "42" {
		t.Errorf("number text %q", d.Text())
	}
}

func TestGame_ConcurrentStopAndTicks(t *testing.T) {
	g, err := NewGame(Config{PoolSize: 75, DrawInterval: time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	defer g.Close()
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 20 {
				g.Start()
				time.Sleep(time.Millisecond)
				g.Stop()
			}
		}()
	}
	wg.Wait()
	if s := g.Snapshot(); s.Running {
		t.Errorf("game still running: %+v", s)
	}
}
