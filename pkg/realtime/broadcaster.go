package realtime

import (
	"context"
	"log/slog"
	"sync"
)

// DefaultBuffer is the per-subscriber queue length used when none is configured.
const DefaultBuffer = 64

// Sink receives values from a Broadcaster. Deliver is called from a single
// goroutine per subscription, in publish order. The context is cancelled when
// the subscription is removed.
type Sink[T any] interface {
	Deliver(ctx context.Context, v T) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc[T any] func(ctx context.Context, v T) error

// Deliver calls f.
func (f SinkFunc[T]) Deliver(ctx context.Context, v T) error {
	return f(ctx, v)
}

// ChanSink forwards values to ch. A full channel blocks only this
// subscription's delivery goroutine, never the publisher.
func ChanSink[T any](ch chan<- T) Sink[T] {
	return SinkFunc[T](func(ctx context.Context, v T) error {
		select {
		case ch <- v:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

// Observer is told about subscription changes and values that did not reach
// a subscriber.
type Observer interface {
	Subscribed(topic string)
	Unsubscribed(topic string)
	Dropped(topic, id string)
	Failed(topic, id string, err error)
}

type nopObserver struct{}

func (nopObserver) Subscribed(string)            {}
func (nopObserver) Unsubscribed(string)          {}
func (nopObserver) Dropped(string, string)       {}
func (nopObserver) Failed(string, string, error) {}

// Option configures a Broadcaster.
type Option func(*options)

type options struct {
	buffer   int
	logger   *slog.Logger
	observer Observer
}

// WithBuffer sets how many live values may queue for one subscriber before
// further values are dropped for it.
func WithBuffer(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.buffer = n
		}
	}
}

// WithLogger sets the logger used for delivery problems.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver sets the observer notified of subscription and delivery events.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// Broadcaster fans values of type T out to a changing set of subscribers
// keyed by id.
type Broadcaster[T any] struct {
	name     string
	buffer   int
	logger   *slog.Logger
	observer Observer

	mu   sync.RWMutex
	subs map[string]*subscription[T]
}

type subscription[T any] struct {
	queue  chan T
	cancel context.CancelFunc
}

// stop must be called with the broadcaster's write lock held, so no Publish
// can be sending on queue.
func (s *subscription[T]) stop() {
	s.cancel()
	close(s.queue)
}

// NewBroadcaster creates an empty broadcaster. name identifies it in logs and
// metrics.
func NewBroadcaster[T any](name string, opts ...Option) *Broadcaster[T] {
	o := options{
		buffer:   DefaultBuffer,
		logger:   slog.Default(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Broadcaster[T]{
		name:     name,
		buffer:   o.buffer,
		logger:   o.logger,
		observer: o.observer,
		subs:     make(map[string]*subscription[T]),
	}
}

// Name returns the broadcaster's name.
func (b *Broadcaster[T]) Name() string {
	return b.name
}

// Subscribe registers sink under id, replacing any existing subscription with
// the same id. catchUp values are queued ahead of anything published after
// this call returns.
func (b *Broadcaster[T]) Subscribe(id string, sink Sink[T], catchUp ...T) {
	ctx, cancel := context.WithCancel(context.Background())
	sub := &subscription[T]{
		queue:  make(chan T, len(catchUp)+b.buffer),
		cancel: cancel,
	}
	for _, v := range catchUp {
		sub.queue <- v
	}

	b.mu.Lock()
	old, replaced := b.subs[id]
	if replaced {
		old.stop()
	}
	b.subs[id] = sub
	b.mu.Unlock()

	if !replaced {
		b.observer.Subscribed(b.name)
	}
	go b.drain(ctx, id, sub.queue, sink)
}

// Unsubscribe removes the subscription for id. Unknown ids are ignored.
func (b *Broadcaster[T]) Unsubscribe(id string) {
	b.mu.Lock()
	sub, ok := b.subs[id]
	if ok {
		delete(b.subs, id)
		sub.stop()
	}
	b.mu.Unlock()

	if ok {
		b.observer.Unsubscribed(b.name)
	}
}

// Publish queues v for every current subscriber. It never blocks: a
// subscriber whose queue is full misses v.
func (b *Broadcaster[T]) Publish(v T) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for id, sub := range b.subs {
		select {
		case sub.queue <- v:
		default:
			b.logger.Warn("subscriber lagging, value dropped", "topic", b.name, "subscriber", id)
			b.observer.Dropped(b.name, id)
		}
	}
}

// Len returns the number of current subscribers.
func (b *Broadcaster[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close removes every subscriber.
func (b *Broadcaster[T]) Close() {
	b.mu.Lock()
	n := len(b.subs)
	for id, sub := range b.subs {
		sub.stop()
		delete(b.subs, id)
	}
	b.mu.Unlock()

	for range n {
		b.observer.Unsubscribed(b.name)
	}
}

func (b *Broadcaster[T]) drain(ctx context.Context, id string, queue <-chan T, sink Sink[T]) {
	for v := range queue {
		if ctx.Err() != nil {
			return
		}
		if err := sink.Deliver(ctx, v); err != nil {
			if ctx.Err() != nil {
				return
			}
			b.logger.Debug("sink delivery failed", "topic", b.name, "subscriber", id, "error", err)
			b.observer.Failed(b.name, id, err)
		}
	}
}
