package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope for bingohall metrics.
const MeterName = "bingohall"

// Metrics holds all bingohall metric instruments. It records game events and
// stream delivery problems.
type Metrics struct {
	GamesStarted      metric.Int64Counter
	GamesEnded        metric.Int64Counter
	NumbersDrawn      metric.Int64Counter
	WinnersRecorded   metric.Int64Counter
	DeliveriesDropped metric.Int64Counter
	DeliveriesFailed  metric.Int64Counter
	SubscribersActive metric.Int64UpDownCounter
}

// NewMetrics creates all metric instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.GamesStarted, err = meter.Int64Counter("bingo.games.started",
		metric.WithDescription("Number of games started"))
	if err != nil {
		return nil, err
	}

	m.GamesEnded, err = meter.Int64Counter("bingo.games.ended",
		metric.WithDescription("Number of games ended, by reason"))
	if err != nil {
		return nil, err
	}

	m.NumbersDrawn, err = meter.Int64Counter("bingo.numbers.drawn",
		metric.WithDescription("Number of numbers drawn"))
	if err != nil {
		return nil, err
	}

	m.WinnersRecorded, err = meter.Int64Counter("bingo.winners.recorded",
		metric.WithDescription("Number of winners recorded"))
	if err != nil {
		return nil, err
	}

	m.DeliveriesDropped, err = meter.Int64Counter("bingo.deliveries.dropped",
		metric.WithDescription("Values dropped for lagging subscribers"))
	if err != nil {
		return nil, err
	}

	m.DeliveriesFailed, err = meter.Int64Counter("bingo.deliveries.failed",
		metric.WithDescription("Values a subscriber sink failed to deliver"))
	if err != nil {
		return nil, err
	}

	m.SubscribersActive, err = meter.Int64UpDownCounter("bingo.subscribers.active",
		metric.WithDescription("Currently connected stream subscribers"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Metrics) GameStarted() {
	m.GamesStarted.Add(context.Background(), 1)
}

func (m *Metrics) GameEnded(reason string) {
	m.GamesEnded.Add(context.Background(), 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (m *Metrics) NumberDrawn() {
	m.NumbersDrawn.Add(context.Background(), 1)
}

func (m *Metrics) WinnerRecorded() {
	m.WinnersRecorded.Add(context.Background(), 1)
}

func (m *Metrics) Subscribed(topic string) {
	m.SubscribersActive.Add(context.Background(), 1, topicAttr(topic))
}

func (m *Metrics) Unsubscribed(topic string) {
	m.SubscribersActive.Add(context.Background(), -1, topicAttr(topic))
}

func (m *Metrics) Dropped(topic, _ string) {
	m.DeliveriesDropped.Add(context.Background(), 1, topicAttr(topic))
}

func (m *Metrics) Failed(topic, _ string, _ error) {
	m.DeliveriesFailed.Add(context.Background(), 1, topicAttr(topic))
}

func topicAttr(topic string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("topic", topic))
}
