package reader

import "git.lost.host/meutraa/stepline/internal/game"

func (r *ChartReader) laneMask(e *game.Event) game.LaneMask {
	return e.Lanes & (1<<r.chart.Lanes() - 1)
}

func (r *ChartReader) spawnUnique(e *game.Event) {
	r.group = r.group[:0]

	r.laneMask(e).ForEach(func(d game.Direction) {
		arrow := r.arrows.Create(nil)
		if arrow == nil {
			r.log.WithField("lane", d).Debug("arrow pool exhausted")
			return
		}
		arrow.Initialize(game.Unique, d, e.Timestamp)
		arrow.IsFake = r.fake
		r.group = append(r.group, arrow)
	})

	game.Link(r.group)
}

func (r *ChartReader) startHold(e *game.Event) {
	r.laneMask(e).ForEach(func(d game.Direction) {
		hold := r.holds.Create(nil)
		if hold == nil {
			r.log.WithField("lane", d).Debug("hold pool exhausted")
			return
		}
		hold.Initialize(d, e.Timestamp)
		hold.IsFake = r.fake

		head := r.arrows.Create(nil)
		if head == nil {
			r.holds.Discard(hold.ID)
			return
		}
		head.InitializeHoldBorder(game.HoldHeadArrow, d, e.Timestamp, hold.ID)
		head.IsFake = r.fake

		if extra := r.arrows.CreateWithIDGreaterThan(nil, head.ID); extra != nil {
			extra.InitializeHoldBorder(game.HoldHeadExtraFill, d, e.Timestamp, hold.ID)
			extra.IsFake = r.fake
		}
	})
}

func (r *ChartReader) endHold(e *game.Event) {
	r.laneMask(e).ForEach(func(d game.Direction) {
		hold := r.lastOpenHold(d)
		if hold == nil {
			return
		}
		hold.Close(e.Timestamp)

		extra := r.arrows.Create(nil)
		if extra == nil {
			return
		}
		tail := r.arrows.CreateWithIDGreaterThan(nil, extra.ID)
		if tail == nil {
			r.arrows.Discard(extra.ID)
			return
		}
		extra.InitializeHoldBorder(game.HoldTailExtraFill, d, e.Timestamp, hold.ID)
		tail.InitializeHoldBorder(game.HoldTailArrow, d, e.Timestamp, hold.ID)
		extra.IsFake = hold.IsFake
		tail.IsFake = hold.IsFake
	})
}

// lastOpenHold returns the most recently started hold of lane d that has
// no tail yet.
func (r *ChartReader) lastOpenHold(d game.Direction) *game.HoldArrow {
	var last *game.HoldArrow
	r.holds.ForEachActive(func(h *game.HoldArrow) {
		if h.Direction != d || h.HasEnded() {
			return
		}
		if last == nil || h.StartTime >= last.StartTime {
			last = h
		}
	})
	return last
}

// nextHold returns the earliest judgeable hold of lane d that has not
// finished yet.
func (r *ChartReader) nextHold(d game.Direction) *game.HoldArrow {
	var next *game.HoldArrow
	r.holds.ForEachActive(func(h *game.HoldArrow) {
		if h.Direction != d || h.IsFake {
			return
		}
		if h.HasEnded() && r.msecs >= h.EndTime {
			return
		}
		if next == nil || h.StartTime < next.StartTime {
			next = h
		}
	})
	return next
}

func (r *ChartReader) orchestrateHolds() {
	now := r.Now()
	r.holdFlags = [game.LanesTotal]bool{}
	r.holds.ForEachActive(func(h *game.HoldArrow) {
		if now >= h.StartTime && !(h.HasEnded() && now >= h.EndTime) {
			r.holdFlags[h.Direction] = true
		}
	})

	r.holds.ForEachActive(r.orchestrateHold)
}

func (r *ChartReader) orchestrateHold(h *game.HoldArrow) {
	topY := r.holdTopY(h)
	if r.holdFlags[h.Direction] && r.judge.IsPressed(h.Direction) {
		h.UpdateLastPress(topY)
	}

	screenTopY := 0
	if topY <= h.LastPressTopY && topY < 0 {
		screenTopY = game.HoldFillFinalY - min(h.LastPressTopY-topY, game.HoldFillFinalY)
	}

	bottomY := game.ArrowInitialY
	if h.HasEnded() {
		bottomY = r.holdBottomY(h, topY)
	}
	bottomY += game.ArrowQuarterSize

	if bottomY < -game.ArrowSize*2 {
		r.discardHold(h)
		return
	}

	h.FillOffsetSkip = max(screenTopY-topY, screenTopY)
	h.FillOffsetBottom = bottomY - topY
	h.ResetState()

	target := divCeil(h.FillSectionLength(topY, bottomY), game.ArrowSize)
	for h.ActiveFillCount < target {
		fill := r.arrows.Create(nil)
		if fill == nil {
			break
		}
		fill.InitializeHoldFill(h.Direction, h.ID)
		fill.IsFake = h.IsFake
		h.ActiveFillCount++
	}
}

// discardHold frees a hold and schedules every arrow still drawing it.
func (r *ChartReader) discardHold(h *game.HoldArrow) {
	id := h.ID
	r.arrows.ForEachActive(func(a *game.Arrow) {
		if a.HoldID == id {
			invalidate(a)
		}
	})
	r.holds.Discard(id)
	r.holdFlags[h.Direction] = false
}

func divCeil(a, b int) int {
	return (a + b - 1) / b
}
