package viewmodel

import (
	"time"

	"bingohall/internal/game"
)

// HomePage holds data for the welcome page.
type HomePage struct {
	Title    string
	PoolSize int
	Running  bool
}

// Winner is the wire shape of a leaderboard entry.
type Winner struct {
	Name      string    `json:"name"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// NewWinner converts a recorded winner.
func NewWinner(rec game.WinnerRecord) Winner {
	return Winner{
		Name:      rec.Name,
		Message:   rec.Message,
		Timestamp: rec.Timestamp,
	}
}

// Status is the JSON body of the status endpoint.
type Status struct {
	Running              bool `json:"running"`
	Current              *int `json:"current"`
	Drawn                int  `json:"drawn"`
	Remaining            int  `json:"remaining"`
	PoolSize             int  `json:"pool_size"`
	Viewers              int  `json:"viewers"`
	Winners              int  `json:"winners"`
	LeaderboardListeners int  `json:"leaderboard_listeners"`
}

// NewStatus converts a hall status. Current is null until the first draw.
func NewStatus(s game.Status) Status {
	out := Status{
		Running:              s.Running,
		Drawn:                s.Drawn,
		Remaining:            s.Remaining,
		PoolSize:             s.PoolSize,
		Viewers:              s.Subscribers,
		Winners:              s.Winners,
		LeaderboardListeners: s.LeaderboardListeners,
	}
	if s.HasCurrent {
		current := s.Current
		out.Current = &current
	}
	return out
}
