package viewmodel

import (
	"encoding/json"
	"testing"
	"time"

	"bingohall/internal/game"
)

func TestWinnerEncoder_EncodesAndReuses(t *testing.T) {
	enc, err := NewWinnerEncoder(1 << 16)
	if err != nil {
		t.Fatalf("NewWinnerEncoder: %v", err)
	}
	defer enc.Close()

	rec := game.WinnerRecord{
		Seq:       1,
		Name:      "ann",
		Message:   "line complete",
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	first, err := enc.Encode(rec)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := `{"name":"ann","message":"line complete","timestamp":"2024-05-01T12:00:00Z"}`
	if string(first) != want {
		t.Errorf("payload %s, want %s", first, want)
	}

	enc.c.Wait()
	second, err := enc.Encode(rec)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(second) != want {
		t.Errorf("second payload %s, want %s", second, want)
	}
}

func TestNewStatus(t *testing.T) {
	idle := NewStatus(game.Status{Snapshot: game.Snapshot{PoolSize: 75}})
	if idle.Current != nil || idle.Running {
		t.Errorf("idle status %+v", idle)
	}

	running := NewStatus(game.Status{
		Snapshot: game.Snapshot{Running: true, HasCurrent: true, Current: 12, Drawn: 3, Remaining: 72, PoolSize: 75, Subscribers: 2},
		Winners:  1,
	})
	data, err := json.Marshal(running)
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got["current"] != float64(12) || got["viewers"] != float64(2) || got["winners"] != float64(1) {
		t.Errorf("status json %s", data)
	}
}
