package viewmodel

import (
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/ristretto/v2"

	"bingohall/internal/game"
)

// WinnerEncoder renders winners to JSON, caching by sequence number. Every
// new leaderboard viewer replays the whole log, so the same records are
// encoded over and over otherwise.
type WinnerEncoder struct {
	c *ristretto.Cache[int, []byte]
}

// NewWinnerEncoder creates an encoder whose cache holds at most maxCostBytes
// of encoded payloads.
func NewWinnerEncoder(maxCostBytes int64) (*WinnerEncoder, error) {
	counters := maxCostBytes / 100 * 10 // ~10x expected items
	if counters < 100 {
		counters = 100
	}
	c, err := ristretto.NewCache(&ristretto.Config[int, []byte]{
		NumCounters: counters,
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("winner cache: %w", err)
	}
	return &WinnerEncoder{c: c}, nil
}

// Encode returns the JSON payload for rec.
func (e *WinnerEncoder) Encode(rec game.WinnerRecord) ([]byte, error) {
	if data, ok := e.c.Get(rec.Seq); ok {
		return data, nil
	}
	data, err := json.Marshal(NewWinner(rec))
	if err != nil {
		return nil, fmt.Errorf("encode winner %d: %w", rec.Seq, err)
	}
	e.c.Set(rec.Seq, data, int64(len(data)))
	return data, nil
}

// Close releases the cache.
func (e *WinnerEncoder) Close() {
	e.c.Close()
}
