package stage

import (
	"testing"

	"git.lost.host/meutraa/stepline/internal/config"
	"git.lost.host/meutraa/stepline/internal/game"
	"git.lost.host/meutraa/stepline/internal/input"
	"git.lost.host/meutraa/stepline/internal/testdata"
	"github.com/davecgh/go-spew/spew"
)

const frame = 16

func newStage(chart *game.Chart) (*Stage, *input.Lanes) {
	settings := config.Default()
	lanes := &input.Lanes{}
	return New(chart, settings, settings.Live(), 0, lanes), lanes
}

// play runs the stage until end, pressing lanes at the given song times.
func play(s *Stage, lanes *input.Lanes, end int, presses map[int]game.LaneMask) {
	for ms := 0; ms <= end; ms += frame {
		lanes.Tick()
		held := game.LaneMask(0)
		for at, mask := range presses {
			if at >= ms-frame/2 && at < ms+frame/2 {
				held |= mask
			}
		}
		for d := game.Direction(0); d < game.LanesTotal; d++ {
			lanes.SetIsPressed(d, held.Has(d))
		}
		s.Update(ms, false)
	}
}

func TestPerfectPlay(t *testing.T) {
	chart := testdata.NewChart().
		Tempo(0, 120).
		Note(1000, game.Center).
		Note(1500, game.DownLeft, game.DownRight).
		Chart()
	s, lanes := newStage(chart)

	play(s, lanes, 2500, map[int]game.LaneMask{
		1000: game.MaskOf(game.Center),
		1500: game.MaskOf(game.DownLeft, game.DownRight),
	})

	if s.Score().Counters[game.Perfect] != 2 || s.Score().Combo != 2 {
		t.Errorf("expected two perfects\n%s", spew.Sdump(s.Score().Counters))
	}
	if len(s.Result().Presses) != 3 {
		t.Errorf("expected three recorded presses, got %d", len(s.Result().Presses))
	}
	if s.arrows.Active() != 0 {
		t.Errorf("judged arrows were not released: %d", s.arrows.Active())
	}
}

func TestMisses(t *testing.T) {
	chart := testdata.NewChart().
		Tempo(0, 120).
		Note(1000, game.Center).
		Note(1500, game.DownLeft, game.DownRight).
		Chart()
	s, lanes := newStage(chart)

	play(s, lanes, 2500, nil)

	if s.Score().Counters[game.Miss] != 2 {
		t.Errorf("expected two misses\n%s", spew.Sdump(s.Score().Counters))
	}
	if s.HasFinished() {
		t.Error("finished too early")
	}

	s.Update(chart.LastTimestamp()+FinishDelay, false)
	if !s.HasFinished() {
		t.Error("stage not finished after the last event")
	}
}

func TestFinishOnAudioEnd(t *testing.T) {
	chart := testdata.NewChart().Tempo(0, 120).Note(5000, game.Center).Chart()
	s, _ := newStage(chart)
	s.Update(100, true)
	if !s.HasFinished() {
		t.Error("stage must finish with the audio")
	}
}

func TestPressDuringStop(t *testing.T) {
	chart := testdata.NewChart().
		Tempo(0, 120).
		Stop(1000, 500).
		Note(1000, game.Center).
		Chart()
	s, lanes := newStage(chart)

	// mid-stop presses are not judged, presses right before resuming are
	// judged against the resumed timeline
	play(s, lanes, 1600, map[int]game.LaneMask{
		1200: game.MaskOf(game.Center),
		1488: game.MaskOf(game.Center),
	})

	presses := s.Result().Presses
	if len(presses) != 1 || s.Score().Counters[game.Perfect] != 1 {
		t.Fatalf("unexpected presses\n%s", spew.Sdump(presses, s.Score().Counters))
	}
	if presses[0].Offset > 20 || presses[0].Offset < -20 {
		t.Errorf("offset %d not corrected by the stop length", presses[0].Offset)
	}
}

func TestJudgeableStop(t *testing.T) {
	chart := testdata.NewChart().
		Tempo(0, 120).
		JudgeableStop(1000, 500).
		Note(1000, game.Center).
		Chart()
	s, lanes := newStage(chart)

	play(s, lanes, 1600, map[int]game.LaneMask{1200: game.MaskOf(game.Center)})

	if s.Score().Counters[game.Perfect] != 1 {
		t.Errorf("press during a judgeable stop must hit\n%s", spew.Sdump(s.Score().Counters))
	}
}

func TestStageBreak(t *testing.T) {
	b := testdata.NewChart().Tempo(0, 120)
	for ts := 1000; ts < 10000; ts += 250 {
		b.Note(ts, game.Center)
	}
	s, lanes := newStage(b.Chart())

	play(s, lanes, 10000, nil)

	if !s.HasBroken() {
		t.Fatal("missing every note must break the stage")
	}
	misses := s.Score().Counters[game.Miss]
	s.Update(10100, false)
	if s.Score().Counters[game.Miss] != misses {
		t.Error("a broken stage must stop judging")
	}
}

func TestFakeArrowsAreNotJudged(t *testing.T) {
	chart := testdata.NewChart().
		Tempo(0, 120).
		Fake(0, true).
		Note(1000, game.Center).
		Chart()
	s, lanes := newStage(chart)

	play(s, lanes, 2000, map[int]game.LaneMask{1000: game.MaskOf(game.Center)})

	total := 0
	for _, c := range s.Score().Counters {
		total += c
	}
	if total != 0 {
		t.Errorf("fake arrow was judged\n%s", spew.Sdump(s.Score().Counters))
	}
}
