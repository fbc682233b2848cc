package reader

import "git.lost.host/meutraa/stepline/internal/game"

// Action tells the scan what to do after a handler has seen an event.
type Action uint8

const (
	// Continue commits the event and keeps scanning.
	Continue Action = iota
	// Skip leaves the event for the other pass and keeps scanning.
	Skip
	// Halt commits the event and ends the scan.
	Halt
	// Defer leaves the event uncommitted and ends the scan.
	Defer
)

// handler is one scan pass over the event stream.
type handler func(e *game.Event) Action

// scan offers every uncommitted event up to limit to h, in stream order.
func (r *ChartReader) scan(limit int, h handler) {
	events := r.chart.Events

loop:
	for i := r.cursor; i < len(events); i++ {
		e := events[i]
		if e.Timestamp > limit {
			break
		}
		if e.IsHandled(r.player) {
			continue
		}

		switch h(e) {
		case Continue:
			e.MarkHandled(r.player)
		case Halt:
			e.MarkHandled(r.player)
			break loop
		case Defer:
			break loop
		}
	}

	for r.cursor < len(events) && events[r.cursor].IsHandled(r.player) {
		r.cursor++
	}
}

// commitNow applies the timing events that are due.
func (r *ChartReader) commitNow(e *game.Event) Action {
	switch e.Type {
	case game.SetTempo:
		r.setTempo(e)
		return Continue
	case game.SetTickCount:
		if e.Extra > 0 {
			r.tickCount = e.Extra
		}
		r.restartGrid()
		return Continue
	case game.Warp:
		r.warp(e)
		return Halt
	case game.Stop:
		// due but not yet seen by the prediction pass
		return Defer
	}
	return Skip
}

// predict spawns the notes that will scroll into view before the lookahead
// limit and commits upcoming stops.
func (r *ChartReader) predictNext(e *game.Event) Action {
	switch e.Type {
	case game.SetFake:
		r.fake = e.Extra != 0
		return Continue
	case game.Note:
		if !r.isWarpedOver(e) {
			r.spawnUnique(e)
		}
		return Continue
	case game.HoldStart:
		if !r.isWarpedOver(e) {
			r.startHold(e)
		}
		return Continue
	case game.HoldEnd:
		if !r.isWarpedOver(e) {
			r.endHold(e)
		}
		return Continue
	case game.Stop:
		if r.isWarpedOver(e) {
			return Continue
		}
		if e.Timestamp <= r.msecs {
			r.startStop(e)
			return Halt
		}
		r.pending = append(r.pending, e)
		return Continue
	case game.Warp:
		// nothing past a warp is predicted until it is applied
		return Defer
	}
	return Skip
}

func (r *ChartReader) isWarpedOver(e *game.Event) bool {
	return e.Timestamp < r.skipUntil
}
