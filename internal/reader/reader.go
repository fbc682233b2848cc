// Package reader turns a chart's event stream into arrows, holds and timing
// state as the song clock advances.
package reader

import (
	"git.lost.host/meutraa/stepline/internal/config"
	"git.lost.host/meutraa/stepline/internal/game"
	"git.lost.host/meutraa/stepline/internal/pool"
	"github.com/sirupsen/logrus"
)

const (
	// HoldPoolSize is the number of holds that can be on screen at once
	// for a single pad.
	HoldPoolSize = 10
	// ArrowPoolSize is the number of arrows that can be on screen at once
	// for a single pad.
	ArrowPoolSize = 50

	minute     = 60000
	defaultBpm = 120
)

// Judge is what the reader needs from the judgement side.
type Judge interface {
	IsPressed(d game.Direction) bool
	IsInsideTimingWindow(ms int) bool
	OnHoldTick(lanes game.LaneMask, canMiss bool)
}

// ChartReader is a cursor over a chart's events for one player.
type ChartReader struct {
	chart    *game.Chart
	arrows   *pool.Pool[game.Arrow]
	holds    *pool.Pool[game.HoldArrow]
	judge    Judge
	settings config.Settings
	live     *config.Live
	player   int
	log      logrus.FieldLogger

	now     handler
	predict handler

	cursor int
	msecs  int

	bpm           int
	scrollBpm     int
	lastBpmChange int // in song time
	tickCount     int
	lastTick      int
	subtick       int
	newTick       bool

	multiplier      int
	arrowTime       int
	targetArrowTime int

	stoppedMs     int
	warpedMs      int
	skipUntil     int
	stopped       bool
	stopStart     int
	stopLength    int
	stopJudgeable bool
	pending       []*game.Event

	fake      bool
	holdFlags [game.LanesTotal]bool
	group     []*game.Arrow
}

// New creates a reader for player over chart. Arrows are spawned into the
// given pool, which the caller owns.
func New(chart *game.Chart, arrows *pool.Pool[game.Arrow], judge Judge, settings config.Settings, live *config.Live, player int) *ChartReader {
	r := &ChartReader{
		chart:    chart,
		arrows:   arrows,
		judge:    judge,
		settings: settings,
		live:     live,
		player:   player,
		log:      logrus.StandardLogger(),

		tickCount:  4,
		multiplier: config.ClampMultiplier(live.Multiplier),
		pending:    make([]*game.Event, 0, 8),
		group:      make([]*game.Arrow, 0, game.LanesTotal),
	}
	r.now = r.commitNow
	r.predict = r.predictNext

	holdPoolSize := HoldPoolSize * chart.Lanes() / game.LanesSingle
	r.holds = pool.New(holdPoolSize, game.NewHoldArrow)

	r.targetArrowTime = r.arrowTimeFor(defaultBpm)
	r.syncArrowTime()
	return r
}

// SetLogger replaces the logger used for pool exhaustion and warps.
func (r *ChartReader) SetLogger(l logrus.FieldLogger) {
	r.log = l
}

// Update advances the reader to songMsecs of audio playback. It returns
// true when a new beat has just started.
func (r *ChartReader) Update(songMsecs int) bool {
	audioMsecs := songMsecs - r.settings.AudioLag
	r.msecs = audioMsecs - r.stoppedMs + r.warpedMs
	r.newTick = false

	if r.live.Multiplier != r.multiplier {
		r.SetMultiplier(r.live.Multiplier)
	}
	r.convergeArrowTime()

	if r.stopped {
		if r.msecs < r.stopStart+r.stopLength {
			r.orchestrateHolds()
			return r.processTicks(audioMsecs, false)
		}
		r.stopped = false
		r.stoppedMs += r.stopLength
		r.msecs -= r.stopLength
	}

	if r.activatePendingStop() {
		r.orchestrateHolds()
		return r.processTicks(audioMsecs, false)
	}

	r.scan(r.msecs, r.now)
	r.scan(r.msecs+r.targetArrowTime, r.predict)
	r.orchestrateHolds()
	return r.processTicks(audioMsecs, true)
}

// NewTick reports whether the last Update crossed a tick boundary.
func (r *ChartReader) NewTick() bool {
	return r.newTick
}

func (r *ChartReader) activatePendingStop() bool {
	if len(r.pending) == 0 || r.msecs < r.pending[0].Timestamp {
		return false
	}
	// timing events up to the stop are due before it freezes the chart
	r.scan(r.pending[0].Timestamp, r.now)
	if len(r.pending) == 0 || r.msecs < r.pending[0].Timestamp {
		return false
	}
	e := r.pending[0]
	copy(r.pending, r.pending[1:])
	r.pending = r.pending[:len(r.pending)-1]
	r.startStop(e)
	return true
}

func (r *ChartReader) startStop(e *game.Event) {
	r.stopped = true
	r.stopStart = e.Timestamp
	r.stopLength = e.Extra
	r.stopJudgeable = e.Extra2 != 0
}

func (r *ChartReader) setTempo(e *game.Event) {
	scrollBpm := e.Extra2
	if scrollBpm == 0 {
		scrollBpm = e.Extra
	}
	if scrollBpm > 0 {
		r.scrollBpm = scrollBpm
		r.targetArrowTime = r.arrowTimeFor(scrollBpm)
	}
	if r.bpm == 0 {
		r.syncArrowTime()
	}

	r.bpm = e.Extra
	r.lastBpmChange = e.Timestamp + r.stoppedMs - r.warpedMs
	r.restartGrid()
}

// restartGrid makes the next tick land on a beat.
func (r *ChartReader) restartGrid() {
	r.lastTick = -1
	r.subtick = -1
}

func (r *ChartReader) warp(e *game.Event) {
	r.warpedMs += e.Extra
	r.msecs += e.Extra
	if end := e.Timestamp + e.Extra; end > r.skipUntil {
		r.skipUntil = end
	}

	r.arrows.ForEachActive(invalidate)
	r.holds.Clear()
	r.holdFlags = [game.LanesTotal]bool{}

	kept := r.pending[:0]
	for _, stop := range r.pending {
		if stop.Timestamp >= r.skipUntil {
			kept = append(kept, stop)
		}
	}
	r.pending = kept

	r.log.WithFields(logrus.Fields{
		"at":    e.Timestamp,
		"delta": e.Extra,
	}).Debug("warp")
}

func invalidate(a *game.Arrow) {
	a.ScheduleDiscard()
	a.HoldID = game.NoID
}

// processTicks advances the tick grid, which counts from the last tempo
// change in audio time.
func (r *ChartReader) processTicks(audioMsecs int, checkHolds bool) bool {
	rhythmMsecs := audioMsecs - r.lastBpmChange
	tick := floorDiv(rhythmMsecs*r.bpm*r.tickCount, minute)
	changed := tick != r.lastTick

	if changed {
		r.subtick++
		if r.subtick >= r.tickCount {
			r.subtick = 0
		}
		if checkHolds {
			r.tickHolds()
		}
	}
	r.lastTick = tick
	r.newTick = changed && r.bpm > 0

	return changed && r.subtick == 0 && r.bpm > 0
}

func (r *ChartReader) tickHolds() {
	var lanes game.LaneMask
	canMiss := true

	for d := game.Direction(0); d < game.LanesTotal; d++ {
		hold := r.nextHold(d)
		if hold == nil || r.msecs < hold.StartTime {
			continue
		}
		lanes |= game.MaskOf(d)
		if r.msecs < hold.StartTime+r.settings.HoldTickGraceMs {
			canMiss = false
		}
	}

	if lanes != 0 {
		r.judge.OnHoldTick(lanes, canMiss)
	}
}

// SetMultiplier changes the scroll speed. The visible arrow time converges
// to the new speed over the next frames. It returns false if nothing
// changed.
func (r *ChartReader) SetMultiplier(m int) bool {
	m = config.ClampMultiplier(m)
	r.live.Multiplier = m
	if m == r.multiplier {
		return false
	}
	r.multiplier = m
	bpm := r.scrollBpm
	if bpm == 0 {
		bpm = defaultBpm
	}
	r.targetArrowTime = r.arrowTimeFor(bpm)
	return true
}

func (r *ChartReader) arrowTimeFor(scrollBpm int) int {
	t := minute * r.settings.ScrollBeats / (scrollBpm * r.multiplier)
	if t < 1 {
		return 1
	}
	return t
}

func (r *ChartReader) syncArrowTime() {
	r.arrowTime = r.targetArrowTime
}

func (r *ChartReader) convergeArrowTime() {
	diff := r.targetArrowTime - r.arrowTime
	jump := r.settings.MaxArrowTimeJump
	switch {
	case diff > jump:
		r.arrowTime += jump
	case diff < -jump:
		r.arrowTime -= jump
	default:
		r.arrowTime = r.targetArrowTime
	}
}

// Msecs returns the chart time, which keeps running during stops.
func (r *ChartReader) Msecs() int {
	return r.msecs
}

// Now returns the chart time used for positions. It stands still during
// stops.
func (r *ChartReader) Now() int {
	if r.stopped {
		return r.stopStart
	}
	return r.msecs
}

func (r *ChartReader) ArrowTime() int { return r.arrowTime }
func (r *ChartReader) TargetArrowTime() int { return r.targetArrowTime }
func (r *ChartReader) Multiplier() int { return r.multiplier }
func (r *ChartReader) Bpm() int { return r.bpm }
func (r *ChartReader) Subtick() int { return r.subtick }
func (r *ChartReader) Cursor() int { return r.cursor }

func (r *ChartReader) IsStopped() bool { return r.stopped }
func (r *ChartReader) StopStart() int { return r.stopStart }
func (r *ChartReader) StopLength() int { return r.stopLength }
func (r *ChartReader) IsStopJudgeable() bool { return r.stopped && r.stopJudgeable }

// HasJustStopped reports whether a stop started less than a timing window
// ago.
func (r *ChartReader) HasJustStopped() bool {
	return r.stopped && r.judge.IsInsideTimingWindow(r.msecs-r.stopStart)
}

// IsAboutToResume reports whether the current stop ends within a timing
// window.
func (r *ChartReader) IsAboutToResume() bool {
	return r.stopped && r.judge.IsInsideTimingWindow(r.stopStart+r.stopLength-r.msecs)
}

// IsHoldActive reports whether a hold in lane d has reached the judgement
// line and not yet ended.
func (r *ChartReader) IsHoldActive(d game.Direction) bool {
	return r.holdFlags[d]
}

// Hold returns the hold an arrow belongs to, or nil.
func (r *ChartReader) Hold(a *game.Arrow) *game.HoldArrow {
	if a.HoldID == game.NoID || !r.holds.IsActive(a.HoldID) {
		return nil
	}
	return r.holds.Get(a.HoldID)
}

// ForEachHold visits the active holds in id order.
func (r *ChartReader) ForEachHold(fn func(*game.HoldArrow)) {
	r.holds.ForEachActive(fn)
}

// Release returns an arrow to the pool, keeping the fill count of its hold
// in step.
func (r *ChartReader) Release(a *game.Arrow) {
	if a.Type == game.HoldFill {
		if hold := r.Hold(a); hold != nil && hold.ActiveFillCount > 0 {
			hold.ActiveFillCount--
		}
	}
	r.arrows.Discard(a.ID)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
