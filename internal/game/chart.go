package game

// Chart is an immutable, time-ordered event stream. It is owned by whoever
// loaded it and borrowed by the readers, which only flip the per-player
// handled flags of its events.
type Chart struct {
	Events     []*Event
	Difficulty Difficulty
	Level      uint8
	IsDouble   bool

	NoteCount int64
	HoldCount int64
}

// Lanes returns the number of playable lanes.
func (c *Chart) Lanes() int {
	if c.IsDouble {
		return LanesTotal
	}
	return LanesSingle
}

// LastTimestamp returns the timestamp of the last event, or 0 if empty.
func (c *Chart) LastTimestamp() int {
	if len(c.Events) == 0 {
		return 0
	}
	return c.Events[len(c.Events)-1].Timestamp
}

// Reset clears the handled flags of player so the chart can be replayed.
func (c *Chart) Reset(player int) {
	for _, e := range c.Events {
		e.handled[player] = false
	}
}
