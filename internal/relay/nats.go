// Package relay mirrors the draw and leaderboard streams onto NATS subjects
// so other services can follow the game without holding an HTTP stream.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"bingohall/internal/game"
	"bingohall/internal/viewmodel"
	"bingohall/pkg/realtime"
)

// SubscriberID is the id the relay registers under on both streams.
const SubscriberID = "relay-nats"

// Publisher is the part of *nats.Conn the relay needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Relay publishes drawn numbers and winners to NATS.
type Relay struct {
	pub    Publisher
	prefix string
	logger *slog.Logger
	close  func()
}

// Connect dials NATS and returns a relay publishing under prefix.
func Connect(url, prefix string, logger *slog.Logger) (*Relay, error) {
	nc, err := nats.Connect(url, nats.Name("bingohall"))
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	logger.Info("nats connected", "url", url, "prefix", prefix)
	r := New(nc, prefix, logger)
	r.close = func() {
		if err := nc.Drain(); err != nil {
			logger.Warn("nats drain failed", "error", err)
		}
	}
	return r, nil
}

// New returns a relay over an existing publisher.
func New(pub Publisher, prefix string, logger *slog.Logger) *Relay {
	if logger == nil {
		logger = slog.Default()
	}
	return &Relay{pub: pub, prefix: prefix, logger: logger, close: func() {}}
}

// NumbersSubject is where drawn numbers are published.
func (r *Relay) NumbersSubject() string {
	return r.prefix + ".numbers"
}

// WinnersSubject is where winners are published.
func (r *Relay) WinnersSubject() string {
	return r.prefix + ".winners"
}

// Attach subscribes the relay to both streams of hall.
func (r *Relay) Attach(hall *game.Hall) {
	hall.Game.Subscribe(SubscriberID, realtime.SinkFunc[game.Draw](r.deliverDraw))
	hall.Winners.Subscribe(SubscriberID, realtime.SinkFunc[game.WinnerRecord](r.deliverWinner))
}

// Detach removes the relay from both streams of hall.
func (r *Relay) Detach(hall *game.Hall) {
	hall.Game.Unsubscribe(SubscriberID)
	hall.Winners.Unsubscribe(SubscriberID)
}

// Close drains the NATS connection, if the relay owns one.
func (r *Relay) Close() {
	r.close()
}

// Only real draws are mirrored; waiting and started notices exist for viewers
// that just connected.
func (r *Relay) deliverDraw(_ context.Context, d game.Draw) error {
	if d.Kind != game.DrawNumber {
		return nil
	}
	return r.publish(r.NumbersSubject(), d)
}

func (r *Relay) deliverWinner(_ context.Context, rec game.WinnerRecord) error {
	return r.publish(r.WinnersSubject(), viewmodel.NewWinner(rec))
}

func (r *Relay) publish(subject string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", subject, err)
	}
	if err := r.pub.Publish(subject, data); err != nil {
		return fmt.Errorf("nats publish %s: %w", subject, err)
	}
	return nil
}
