package game

// Hall owns the one game and its leaderboard. Transports receive it instead
// of reaching for globals.
type Hall struct {
	Game    *Game
	Winners *WinnerLog
}

// NewHall creates the game and winner log with shared options.
func NewHall(cfg Config, opts ...Option) (*Hall, error) {
	g, err := NewGame(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Hall{
		Game:    g,
		Winners: NewWinnerLog(cfg.SubscriberBuffer, opts...),
	}, nil
}

// Status summarises the hall for status pages.
type Status struct {
	Snapshot
	Winners              int
	LeaderboardListeners int
}

// Status returns the game snapshot along with leaderboard counts.
func (h *Hall) Status() Status {
	return Status{
		Snapshot:             h.Game.Snapshot(),
		Winners:              h.Winners.Len(),
		LeaderboardListeners: h.Winners.Subscribers(),
	}
}

// Close stops the game and disconnects every subscriber.
func (h *Hall) Close() {
	h.Game.Close()
	h.Winners.Close()
}
