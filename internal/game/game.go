package game

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"bingohall/pkg/realtime"
)

const (
	// DefaultPoolSize is the classic 75-ball game.
	DefaultPoolSize = 75

	// DefaultDrawInterval is the pause between draws.
	DefaultDrawInterval = time.Second

	// NumbersTopic names the draw stream.
	NumbersTopic = "numbers"
)

// DrawKind tells viewers what a Draw carries.
type DrawKind string

const (
	DrawNumber  DrawKind = "number"
	DrawWaiting DrawKind = "waiting"
	DrawStarted DrawKind = "started"
)

// Draw is one event on the numbers stream. Number is set only for DrawNumber.
type Draw struct {
	Kind   DrawKind `json:"kind"`
	Number int      `json:"number,omitempty"`
}

// Text renders the draw the way the plain-text stream shows it.
func (d Draw) Text() string {
	switch d.Kind {
	case DrawNumber:
		return strconv.Itoa(d.Number)
	case DrawStarted:
		return "Game has already started"
	default:
		return "Waiting for the game to start"
	}
}

// Transition is the outcome of a Start or Stop call.
type Transition int

const (
	Started Transition = iota + 1
	AlreadyStarted
	Stopped
	NotRunning
)

// Message returns the status text reported to whoever asked for the transition.
func (t Transition) Message() string {
	switch t {
	case Started:
		return "Game started!"
	case AlreadyStarted:
		return "Game has already started!"
	case Stopped:
		return "Game stopped!"
	case NotRunning:
		return "Game is not running!"
	default:
		return "unknown transition"
	}
}

// Changed reports whether the call moved the game to another state.
func (t Transition) Changed() bool {
	return t == Started || t == Stopped
}

// Config holds the game settings.
type Config struct {
	PoolSize         int
	DrawInterval     time.Duration
	SubscriberBuffer int
}

// Recorder receives game metrics.
type Recorder interface {
	GameStarted()
	GameEnded(reason string)
	NumberDrawn()
	WinnerRecorded()
}

type nopRecorder struct{}

func (nopRecorder) GameStarted()     {}
func (nopRecorder) GameEnded(string) {}
func (nopRecorder) NumberDrawn()     {}
func (nopRecorder) WinnerRecorded()  {}

// Option configures a Game, WinnerLog or Hall.
type Option func(*settings)

type settings struct {
	clock    realtime.Clock
	draws    *DrawSequence
	logger   *slog.Logger
	recorder Recorder
	observer realtime.Observer
	now      func() time.Time
}

func newSettings(opts []Option) settings {
	s := settings{
		clock:    realtime.TickerClock{},
		logger:   slog.Default(),
		recorder: nopRecorder{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.draws == nil {
		s.draws = NewDrawSequence()
	}
	return s
}

func (s settings) topicOptions(buffer int) []realtime.Option {
	opts := []realtime.Option{realtime.WithLogger(s.logger), realtime.WithBuffer(buffer)}
	if s.observer != nil {
		opts = append(opts, realtime.WithObserver(s.observer))
	}
	return opts
}

// WithClock replaces the timer that drives draws.
func WithClock(c realtime.Clock) Option {
	return func(s *settings) { s.clock = c }
}

// WithDrawSequence replaces the pool shuffler.
func WithDrawSequence(d *DrawSequence) Option {
	return func(s *settings) { s.draws = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *settings) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithObserver sets the observer for both streams.
func WithObserver(o realtime.Observer) Option {
	return func(s *settings) { s.observer = o }
}

// WithNow replaces the wall clock used to stamp winners.
func WithNow(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// Game is the single draw state machine. It is Idle until Start and returns
// to Idle on Stop or when the pool runs out.
type Game struct {
	poolSize int
	interval time.Duration
	clock    realtime.Clock
	draws    *DrawSequence
	logger   *slog.Logger
	recorder Recorder
	numbers  *realtime.Broadcaster[Draw]

	mu         sync.Mutex
	running    bool
	pool       []int
	current    int
	hasCurrent bool
	drawn      int
	handle     realtime.Handle
	generation uint64
}

// NewGame validates cfg and returns an idle game.
func NewGame(cfg Config, opts ...Option) (*Game, error) {
	if cfg.PoolSize <= 0 {
		return nil, fmt.Errorf("%w: pool size %d must be positive", ErrConfiguration, cfg.PoolSize)
	}
	if cfg.DrawInterval <= 0 {
		return nil, fmt.Errorf("%w: draw interval %s must be positive", ErrConfiguration, cfg.DrawInterval)
	}
	s := newSettings(opts)
	return &Game{
		poolSize: cfg.PoolSize,
		interval: cfg.DrawInterval,
		clock:    s.clock,
		draws:    s.draws,
		logger:   s.logger,
		recorder: s.recorder,
		numbers:  realtime.NewBroadcaster[Draw](NumbersTopic, s.topicOptions(cfg.SubscriberBuffer)...),
	}, nil
}

// Start shuffles a fresh pool and begins drawing. A running game is left
// untouched.
func (g *Game) Start() Transition {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running {
		return AlreadyStarted
	}
	g.generation++
	gen := g.generation
	g.pool = g.draws.permutation(g.poolSize)
	g.running = true
	g.current = 0
	g.hasCurrent = false
	g.drawn = 0
	g.handle = g.clock.Start(g.interval, func() { g.tick(gen) })
	g.recorder.GameStarted()
	g.logger.Info("game started", "pool_size", g.poolSize, "interval", g.interval)
	return Started
}

// Stop ends a running game.
func (g *Game) Stop() Transition {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.running {
		return NotRunning
	}
	g.endLocked("stopped")
	return Stopped
}

// tick draws the next number. gen pins the tick to the session that
// scheduled it, so a tick that was waiting on the lock while the game was
// stopped or restarted does nothing.
func (g *Game) tick(gen uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.running || gen != g.generation {
		return
	}
	if len(g.pool) == 0 {
		g.endLocked("exhausted")
		return
	}
	last := len(g.pool) - 1
	n := g.pool[last]
	g.pool = g.pool[:last]
	g.current = n
	g.hasCurrent = true
	g.drawn++
	g.numbers.Publish(Draw{Kind: DrawNumber, Number: n})
	g.recorder.NumberDrawn()
}

func (g *Game) endLocked(reason string) {
	realtime.CancelHandle(g.handle)
	g.handle = nil
	g.running = false
	g.pool = nil
	g.current = 0
	g.hasCurrent = false
	g.recorder.GameEnded(reason)
	g.logger.Info("game ended", "reason", reason, "drawn", g.drawn)
}

// Subscribe registers sink on the numbers stream. The first value it
// receives reflects the game at the moment of subscribing: the current
// number, or a started or waiting notice.
func (g *Game) Subscribe(id string, sink realtime.Sink[Draw]) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.numbers.Subscribe(id, sink, g.catchUpLocked())
}

// Unsubscribe removes id from the numbers stream.
func (g *Game) Unsubscribe(id string) {
	g.numbers.Unsubscribe(id)
}

func (g *Game) catchUpLocked() Draw {
	switch {
	case g.running && g.hasCurrent:
		return Draw{Kind: DrawNumber, Number: g.current}
	case g.running:
		return Draw{Kind: DrawStarted}
	default:
		return Draw{Kind: DrawWaiting}
	}
}

// Snapshot is a consistent view of the game.
type Snapshot struct {
	Running     bool
	Current     int
	HasCurrent  bool
	Remaining   int
	Drawn       int
	PoolSize    int
	Subscribers int
}

// Snapshot returns the current state.
func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Snapshot{
		Running:     g.running,
		Current:     g.current,
		HasCurrent:  g.hasCurrent,
		Remaining:   len(g.pool),
		Drawn:       g.drawn,
		PoolSize:    g.poolSize,
		Subscribers: g.numbers.Len(),
	}
}

// Close stops the game and drops every subscriber.
func (g *Game) Close() {
	g.Stop()
	g.numbers.Close()
}
