package game

import (
	"errors"
	"testing"
	"time"

	"bingohall/pkg/realtime"
)

func TestNewHall(t *testing.T) {
	h, err := NewHall(Config{PoolSize: 75, DrawInterval: time.Second})
	if err != nil {
		t.Fatalf("NewHall: %v", err)
	}
	defer h.Close()
	if h.Game == nil || h.Winners == nil {
		t.Fatal("NewHall left a component nil")
	}
	s := h.Status()
	if s.Running || s.PoolSize != 75 || s.Winners != 0 {
		t.Errorf("status %+v", s)
	}
}

func TestNewHall_InvalidPoolSize(t *testing.T) {
	_, err := NewHall(Config{PoolSize: 0, DrawInterval: time.Second})
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("err %v, want ErrConfiguration", err)
	}
}

func TestHall_StatusCountsListeners(t *testing.T) {
	clock := &manualClock{}
	h, err := NewHall(Config{PoolSize: 10, DrawInterval: time.Second}, WithClock(clock))
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	h.Game.Subscribe("a", realtime.ChanSink(make(chan Draw, 4)))
	h.Winners.Subscribe("b", realtime.ChanSink(make(chan WinnerRecord, 4)))
	h.Game.Start()
	clock.Tick()
	if _, err := h.Winners.Record("ann", "bingo"); err != nil {
		t.Fatal(err)
	}

	s := h.Status()
	if !s.Running || s.Drawn != 1 || s.Subscribers != 1 || s.LeaderboardListeners != 1 || s.Winners != 1 {
		t.Errorf("status %+v", s)
	}
}

func TestHall_CloseStopsGameAndDropsSubscribers(t *testing.T) {
	clock := &manualClock{}
	h, err := NewHall(Config{PoolSize: 10, DrawInterval: time.Second}, WithClock(clock))
	if err != nil {
		t.Fatal(err)
	}
	h.Game.Subscribe("a", realtime.ChanSink(make(chan Draw, 4)))
	h.Game.Start()
	h.Close()

	s := h.Status()
	if s.Running || s.Subscribers != 0 {
		t.Errorf("status after Close %+v", s)
	}
	if !clock.handle(0).isCancelled() {
		t.Error("clock still live after Close")
	}
}
