package game

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"bingohall/pkg/realtime"
)

// WinnersTopic names the leaderboard stream.
const WinnersTopic = "winners"

// WinnerRecord is one reported bingo. Seq is its 1-based position in the log.
type WinnerRecord struct {
	Seq       int
	Name      string
	Message   string
	Timestamp time.Time
}

// WinnerLog keeps reported winners in arrival order and streams them.
type WinnerLog struct {
	logger   *slog.Logger
	recorder Recorder
	now      func() time.Time
	topic    *realtime.Broadcaster[WinnerRecord]

	mu      sync.RWMutex
	records []WinnerRecord
}

// NewWinnerLog returns an empty log. buffer is the per-subscriber queue length.
func NewWinnerLog(buffer int, opts ...Option) *WinnerLog {
	s := newSettings(opts)
	return &WinnerLog{
		logger:   s.logger,
		recorder: s.recorder,
		now:      s.now,
		topic:    realtime.NewBroadcaster[WinnerRecord](WinnersTopic, s.topicOptions(buffer)...),
	}
}

// Record validates and appends a winner, then announces it.
func (l *WinnerLog) Record(name, message string) (WinnerRecord, error) {
	name = strings.TrimSpace(name)
	message = strings.TrimSpace(message)
	if name == "" {
		return WinnerRecord{}, fmt.Errorf("record winner: %w", &ValidationError{Field: "name"})
	}
	if message == "" {
		return WinnerRecord{}, fmt.Errorf("record winner: %w", &ValidationError{Field: "message"})
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	rec := WinnerRecord{
		Seq:       len(l.records) + 1,
		Name:      name,
		Message:   message,
		Timestamp: l.now().UTC(),
	}
	l.records = append(l.records, rec)
	l.topic.Publish(rec)
	l.recorder.WinnerRecorded()
	l.logger.Info("winner recorded", "seq", rec.Seq, "name", rec.Name)
	return rec, nil
}

// Replay returns every winner so far, oldest first.
func (l *WinnerLog) Replay() []WinnerRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]WinnerRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Len returns the number of recorded winners.
func (l *WinnerLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// Subscribe registers sink on the leaderboard stream. It first receives every
// winner recorded so far, then each new one.
func (l *WinnerLog) Subscribe(id string, sink realtime.Sink[WinnerRecord]) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.topic.Subscribe(id, sink, l.records...)
}

// Unsubscribe removes id from the leaderboard stream.
func (l *WinnerLog) Unsubscribe(id string) {
	l.topic.Unsubscribe(id)
}

// Subscribers returns the number of leaderboard subscribers.
func (l *WinnerLog) Subscribers() int {
	return l.topic.Len()
}

// Close drops every subscriber.
func (l *WinnerLog) Close() {
	l.topic.Close()
}
