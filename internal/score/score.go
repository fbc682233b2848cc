package score

import "git.lost.host/meutraa/stepline/internal/game"

const (
	MaxLife     = 100
	InitialLife = 60

	MaxMultiplier = 4
	// ComboPerMultiplier is the combo needed to raise the multiplier by one.
	ComboPerMultiplier = 25
)

var (
	lifeDeltas = [game.FeedbackTypes]int{2, 1, 0, -4, -10}
	points     = [game.FeedbackTypes]int{100, 75, 50, 10, 0}
)

// Delta is what a single judgement changed.
type Delta struct {
	Result     game.FeedbackType
	IsLong     bool
	Combo      int
	Life       int
	Points     int
	StageBreak bool
}

// Score is the judgement state of one player.
type Score struct {
	Counters   [game.FeedbackTypes]int
	LongNotes  int
	Combo      int
	MaxCombo   int
	Multiplier int
	Life       int
	Points     int

	broken       bool
	onStageBreak func()
}

// New returns a fresh score. onStageBreak may be nil.
func New(onStageBreak func()) *Score {
	return &Score{
		Multiplier:   1,
		Life:         InitialLife,
		onStageBreak: onStageBreak,
	}
}

// Update applies a final grade. Long notes are hold ticks.
func (s *Score) Update(result game.FeedbackType, isLong bool) Delta {
	d := Delta{Result: result, IsLong: isLong}
	if result >= game.FeedbackTypes {
		return d
	}

	s.Counters[result]++
	if isLong {
		s.LongNotes++
	}

	if result.BreaksCombo() {
		s.Combo = 0
		s.Multiplier = 1
	} else {
		s.Combo++
		if s.Combo > s.MaxCombo {
			s.MaxCombo = s.Combo
		}
		s.Multiplier = min(1+s.Combo/ComboPerMultiplier, MaxMultiplier)
	}

	before := s.Life
	s.Life = max(min(s.Life+lifeDeltas[result], MaxLife), 0)
	gained := points[result] * s.Multiplier
	s.Points += gained

	d.Combo = s.Combo
	d.Life = s.Life - before
	d.Points = gained

	if s.Life == 0 && !s.broken {
		s.broken = true
		d.StageBreak = true
		if s.onStageBreak != nil {
			s.onStageBreak()
		}
	}
	return d
}

func (s *Score) HasBroken() bool {
	return s.broken
}

// Result snapshots the score for saving.
func (s *Score) Result() Result {
	return Result{
		Counters:  s.Counters,
		LongNotes: s.LongNotes,
		MaxCombo:  s.MaxCombo,
		Points:    s.Points,
		Life:      s.Life,
	}
}

// Result is a finished play.
type Result struct {
	Counters  [game.FeedbackTypes]int
	LongNotes int
	MaxCombo  int
	Points    int
	Life      int
	Presses   []Press
}

// Percent is the share of perfect and great judgements, 0 to 100.
func (r Result) Percent() int {
	total := 0
	for _, c := range r.Counters {
		total += c
	}
	if total == 0 {
		return 0
	}
	return (r.Counters[game.Perfect] + r.Counters[game.Great]) * 100 / total
}

// Press is a judged key press and its timing error in ms.
type Press struct {
	Lane   game.Direction
	Offset int
}
