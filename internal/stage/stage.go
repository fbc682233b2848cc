// Package stage runs the gameplay of one player for one song, frame by
// frame.
package stage

import (
	"git.lost.host/meutraa/stepline/internal/config"
	"git.lost.host/meutraa/stepline/internal/game"
	"git.lost.host/meutraa/stepline/internal/input"
	"git.lost.host/meutraa/stepline/internal/judge"
	"git.lost.host/meutraa/stepline/internal/pool"
	"git.lost.host/meutraa/stepline/internal/reader"
	"git.lost.host/meutraa/stepline/internal/score"
	log "github.com/sirupsen/logrus"
)

// FinishDelay is how long the song keeps running after the last event.
const FinishDelay = 2000

type Stage struct {
	chart  *game.Chart
	arrows *pool.Pool[game.Arrow]
	reader *reader.ChartReader
	judge  *judge.Judge
	score  *score.Score
	lanes  *input.Lanes

	lastMillisecond int
	positions       []int
	next            [game.LanesTotal]*game.Arrow

	newBeat  bool
	finished bool
	broken   bool
}

// New prepares player to play chart. lanes is read every frame and must be
// updated by the caller before Update.
func New(chart *game.Chart, settings config.Settings, live *config.Live, player int, lanes *input.Lanes) *Stage {
	s := &Stage{
		chart:           chart,
		lanes:           lanes,
		lastMillisecond: chart.LastTimestamp() + FinishDelay,
	}
	s.arrows = pool.New(reader.ArrowPoolSize*chart.Lanes()/game.LanesSingle, game.NewArrow)
	s.positions = make([]int, s.arrows.Capacity())
	s.score = score.New(s.onStageBreak)
	s.judge = judge.New(s.arrows, lanes, s.score, settings.Windows)
	s.reader = reader.New(chart, s.arrows, s.judge, settings, live, player)
	return s
}

func (s *Stage) onStageBreak() {
	s.broken = true
	log.WithField("points", s.score.Points).Info("stage break")
}

// SetLastMillisecond overrides when the song is considered over.
func (s *Stage) SetLastMillisecond(ms int) {
	s.lastMillisecond = ms
}

// Update runs one frame at songMsecs of playback. audioFinished reports
// that the playback loop reached the end of the song.
func (s *Stage) Update(songMsecs int, audioFinished bool) {
	s.newBeat = false
	if s.finished || s.broken {
		return
	}
	if audioFinished || songMsecs >= s.lastMillisecond {
		s.finished = true
		return
	}

	s.newBeat = s.reader.Update(songMsecs)
	s.updateArrows()
	s.judgePresses()
}

func (s *Stage) updateArrows() {
	s.next = [game.LanesTotal]*game.Arrow{}
	s.arrows.ForEachActive(s.updateArrow)
}

func (s *Stage) updateArrow(a *game.Arrow) {
	if a.NeedsDiscard || a.Resolved {
		s.reader.Release(a)
		return
	}

	y := s.reader.YFor(a)
	s.positions[a.ID] = y
	if y < game.ArrowOffscreenLimit {
		s.judge.OnOut(a)
		s.reader.Release(a)
		return
	}

	if a.Type != game.Unique || a.IsPressed || a.IsFake {
		return
	}
	if next := s.next[a.Direction]; next == nil || a.Timestamp < next.Timestamp {
		s.next[a.Direction] = a
	}
}

func (s *Stage) judgePresses() {
	for d, arrow := range s.next {
		if arrow == nil || !s.lanes.HasBeenPressedNow(game.Direction(d)) {
			continue
		}

		canBeJudged := true
		offset := 0
		if s.reader.IsStopped() {
			isAboutToResume := s.reader.IsAboutToResume()
			canBeJudged = arrow.Timestamp >= s.reader.StopStart() &&
				(s.reader.HasJustStopped() || isAboutToResume)
			if isAboutToResume {
				offset = -s.reader.StopLength()
			}
			if s.reader.IsStopJudgeable() {
				canBeJudged = true
				offset = -(s.reader.Msecs() - s.reader.StopStart())
			}
		}

		if canBeJudged {
			s.judge.OnPress(arrow, s.reader.Msecs(), offset)
		}
	}
}

// ForEachArrow visits the live arrows with their position of this frame.
func (s *Stage) ForEachArrow(fn func(a *game.Arrow, y int)) {
	s.arrows.ForEachActive(func(a *game.Arrow) {
		fn(a, s.positions[a.ID])
	})
}

// ShowsHoldHead reports whether lane d is holding an active hold, in which
// case a pressed head is drawn on the judgement line.
func (s *Stage) ShowsHoldHead(d game.Direction) bool {
	return s.reader.IsHoldActive(d) && s.lanes.IsPressed(d) && !s.reader.IsStopped()
}

func (s *Stage) IsNewBeat() bool { return s.newBeat }
func (s *Stage) HasFinished() bool { return s.finished }
func (s *Stage) HasBroken() bool { return s.broken }

func (s *Stage) Reader() *reader.ChartReader { return s.reader }
func (s *Stage) Judge() *judge.Judge { return s.judge }
func (s *Stage) Score() *score.Score { return s.score }

// Result is the finished play, ready to be saved.
func (s *Stage) Result() score.Result {
	r := s.score.Result()
	r.Presses = s.judge.Presses()
	return r
}
