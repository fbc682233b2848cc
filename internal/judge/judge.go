// Package judge grades key presses against arrows and feeds the score.
package judge

import (
	"git.lost.host/meutraa/stepline/internal/game"
	"git.lost.host/meutraa/stepline/internal/score"
)

// Keys is the lane state the judge reads.
type Keys interface {
	IsPressed(d game.Direction) bool
}

type FeedbackListener func(result game.FeedbackType, delta score.Delta)

type Judge struct {
	arrows  game.ArrowLookup
	keys    Keys
	score   *score.Score
	windows game.Windows

	onFeedback FeedbackListener
	presses    []score.Press
}

func New(arrows game.ArrowLookup, keys Keys, s *score.Score, windows game.Windows) *Judge {
	return &Judge{
		arrows:  arrows,
		keys:    keys,
		score:   s,
		windows: windows,
		presses: make([]score.Press, 0, 1024),
	}
}

// OnFeedback registers the listener for finalized grades.
func (j *Judge) OnFeedback(fn FeedbackListener) {
	j.onFeedback = fn
}

func (j *Judge) IsPressed(d game.Direction) bool {
	return j.keys.IsPressed(d)
}

// IsInsideTimingWindow reports whether a timing error of ms would still be
// graded.
func (j *Judge) IsInsideTimingWindow(ms int) bool {
	_, ok := j.windows.Classify(ms)
	return ok
}

// OnPress grades a press at chart time now. offset is added to the timing
// error, which lets presses during stops be judged against the resumed
// timeline. Presses too far from the arrow are ignored and return Unknown,
// as does a press on a group that still waits for other lanes.
func (j *Judge) OnPress(arrow *game.Arrow, now int, offset int) game.FeedbackType {
	if arrow.IsFake || arrow.IsPressed || arrow.Resolved {
		return game.Unknown
	}

	diff := now - arrow.Timestamp + offset
	partial, ok := j.windows.Classify(diff)
	if !ok {
		return game.Unknown
	}

	arrow.Press()
	j.presses = append(j.presses, score.Press{Lane: arrow.Direction, Offset: diff})
	return j.onResult(arrow, partial)
}

// OnOut misses an arrow that scrolled past the judgement line unpressed.
func (j *Judge) OnOut(arrow *game.Arrow) {
	if arrow.Type != game.Unique || arrow.IsFake || arrow.IsPressed || arrow.Resolved {
		return
	}
	j.onResult(arrow, game.Miss)
}

// OnHoldTick grades one tick of the holds in lanes: a long perfect if every
// lane is held, otherwise a long miss unless canMiss is false.
func (j *Judge) OnHoldTick(lanes game.LaneMask, canMiss bool) {
	held := true
	lanes.ForEach(func(d game.Direction) {
		if !j.keys.IsPressed(d) {
			held = false
		}
	})

	switch {
	case held:
		j.update(game.Perfect, true)
	case canMiss:
		j.update(game.Miss, true)
	}
}

func (j *Judge) onResult(arrow *game.Arrow, partial game.FeedbackType) game.FeedbackType {
	result := arrow.Result(partial, j.arrows)
	if result == game.Unknown {
		return result
	}

	arrow.ForAll(j.arrows, resolve)
	j.update(result, false)
	return result
}

func resolve(a *game.Arrow) {
	a.Resolved = true
}

func (j *Judge) update(result game.FeedbackType, isLong bool) {
	delta := j.score.Update(result, isLong)
	if j.onFeedback != nil {
		j.onFeedback(result, delta)
	}
}

// Presses returns every graded press so far.
func (j *Judge) Presses() []score.Press {
	return j.presses
}
