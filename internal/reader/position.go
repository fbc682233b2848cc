package reader

import "git.lost.host/meutraa/stepline/internal/game"

// YFor returns the screen y of an arrow for the current frame. Fill arrows
// are laid out top-down in the order this is called for them, so every
// active arrow must be asked exactly once per frame, in id order.
func (r *ChartReader) YFor(a *game.Arrow) int {
	var y int

	switch a.Type {
	case game.HoldHeadArrow, game.HoldHeadExtraFill:
		hold := r.Hold(a)
		if hold == nil {
			return r.YForTime(a.Timestamp)
		}
		y = r.holdTopY(hold) - game.ArrowSize
		if a.Type == game.HoldHeadArrow {
			y -= game.HoldFirstFillOffset(a.Direction)
		}
	case game.HoldTailArrow, game.HoldTailExtraFill:
		hold := r.Hold(a)
		if hold == nil {
			return r.YForTime(a.Timestamp)
		}
		y = r.holdBottomY(hold, r.holdTopY(hold))
		if a.Type == game.HoldTailArrow {
			y -= game.HoldLastFillOffset(a.Direction)
		}
	case game.HoldFill:
		hold := r.Hold(a)
		if hold == nil || hold.CurrentFillOffset >= hold.FillOffsetBottom {
			return -game.ArrowSize
		}
		y = r.holdTopY(hold) + hold.CurrentFillOffset
		hold.CurrentFillOffset += game.ArrowSize
	default:
		y = r.YForTime(a.Timestamp)
	}

	return min(y, game.ArrowInitialY)
}

// YForTime maps a chart timestamp to a screen y. Timestamps further away
// than the visible arrow time are clamped to the spawn position.
func (r *ChartReader) YForTime(timestamp int) int {
	timeLeft := timestamp - r.Now()
	return min(game.ArrowFinalY+timeLeft*game.ArrowDistance/r.arrowTime, game.ArrowInitialY)
}

func (r *ChartReader) holdTopY(h *game.HoldArrow) int {
	return r.YForTime(h.StartTime) + game.HoldFirstFillOffset(h.Direction) + game.ArrowSize
}

func (r *ChartReader) holdBottomY(h *game.HoldArrow, topY int) int {
	return max(r.YForTime(h.EndTime)+game.HoldLastFillOffset(h.Direction), topY)
}
