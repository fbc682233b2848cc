package reader

import (
	"fmt"
	"testing"

	"git.lost.host/meutraa/stepline/internal/config"
	"git.lost.host/meutraa/stepline/internal/game"
	"git.lost.host/meutraa/stepline/internal/pool"
	"git.lost.host/meutraa/stepline/internal/testdata"
	"github.com/davecgh/go-spew/spew"
)

type holdTick struct {
	at      int
	lanes   game.LaneMask
	canMiss bool
}

type fakeJudge struct {
	pressed game.LaneMask
	window  int
	reader  *ChartReader
	ticks   []holdTick
}

func (j *fakeJudge) IsPressed(d game.Direction) bool { return j.pressed.Has(d) }

func (j *fakeJudge) IsInsideTimingWindow(ms int) bool {
	if ms < 0 {
		ms = -ms
	}
	return ms < j.window
}

func (j *fakeJudge) OnHoldTick(lanes game.LaneMask, canMiss bool) {
	j.ticks = append(j.ticks, holdTick{j.reader.Msecs(), lanes, canMiss})
}

func newReader(chart *game.Chart, size int) (*ChartReader, *pool.Pool[game.Arrow], *fakeJudge) {
	arrows := pool.New(size, game.NewArrow)
	judge := &fakeJudge{window: 151}
	settings := config.Default()
	r := New(chart, arrows, judge, settings, settings.Live(), 0)
	judge.reader = r
	return r, arrows, judge
}

func activeArrows(arrows *pool.Pool[game.Arrow]) []*game.Arrow {
	list := []*game.Arrow{}
	arrows.ForEachActive(func(a *game.Arrow) { list = append(list, a) })
	return list
}

func TestTicksAndSpawn(t *testing.T) {
	chart := testdata.NewChart().
		Tempo(0, 120).
		TickCount(0, 4).
		Note(1000, game.Center).
		Chart()
	r, arrows, _ := newReader(chart, 50)

	ticks := []int{}
	beats := []int{}
	spawnedAt := -1
	for ms := 0; ms <= 1000; ms++ {
		if r.Update(ms) {
			beats = append(beats, ms)
		}
		if r.NewTick() {
			ticks = append(ticks, ms)
		}
		if spawnedAt < 0 && arrows.Active() > 0 {
			spawnedAt = ms
		}
	}

	for i, ms := range ticks {
		if ms != i*125 {
			t.Fatalf("tick %d at %d ms, expected %d\n%v", i, ms, i*125, ticks)
		}
	}
	if len(ticks) != 9 {
		t.Errorf("expected 9 ticks, got %v", ticks)
	}
	if fmt.Sprint(beats) != "[0 500 1000]" {
		t.Errorf("unexpected beats %v", beats)
	}

	// 60000 * 4 beats / (120 bpm * 3x)
	if r.TargetArrowTime() != 666 {
		t.Fatalf("unexpected arrow time %d", r.TargetArrowTime())
	}
	if spawnedAt < 0 || spawnedAt > 1000-r.TargetArrowTime() {
		t.Errorf("arrow spawned at %d ms, expected by %d", spawnedAt, 1000-r.TargetArrowTime())
	}
}

func TestNoBeatWithoutTempo(t *testing.T) {
	chart := testdata.NewChart().Note(1000, game.Center).Chart()
	r, _, _ := newReader(chart, 50)
	for ms := 0; ms <= 2000; ms += 16 {
		if r.Update(ms) || r.NewTick() {
			t.Fatalf("beat reported at %d ms without a tempo", ms)
		}
	}
}

func TestStop(t *testing.T) {
	chart := testdata.NewChart().
		Tempo(0, 120).
		Note(1500, game.Center).
		Stop(2000, 500).
		Note(3000, game.Center).
		Chart()
	r, _, _ := newReader(chart, 50)

	for ms := 0; ms <= 3000; ms++ {
		r.Update(ms)

		expected := ms >= 2000 && ms < 2500
		if r.IsStopped() != expected {
			t.Fatalf("at %d ms stopped=%v", ms, r.IsStopped())
		}
		if expected && r.Now() != 2000 {
			t.Fatalf("clock moved during the stop: %d at %d ms", r.Now(), ms)
		}
		if ms >= 2500 && r.Now() != ms-500 {
			t.Fatalf("clock did not resume at %d ms: %d", ms, r.Now())
		}
	}
}

func TestStopWindows(t *testing.T) {
	chart := testdata.NewChart().Tempo(0, 120).Stop(2000, 1000).Chart()
	r, _, _ := newReader(chart, 50)

	table := map[int][2]bool{
		2000: {true, false},
		2100: {true, false},
		2200: {false, false},
		2900: {false, true},
		2999: {false, true},
	}
	for ms := 0; ms <= 3000; ms++ {
		r.Update(ms)
		if want, ok := table[ms]; ok {
			if r.HasJustStopped() != want[0] || r.IsAboutToResume() != want[1] {
				t.Log(ms, r.HasJustStopped(), r.IsAboutToResume())
				t.Fail()
			}
		}
	}
	if r.IsStopJudgeable() {
		t.Error("plain stops are not judgeable")
	}
}

func TestTempoAtStop(t *testing.T) {
	chart := testdata.NewChart().
		Tempo(0, 120).
		Tempo(2000, 240).
		Stop(2000, 300).
		Chart()
	r, _, _ := newReader(chart, 50)

	beats := []int{}
	for ms := 0; ms <= 3000; ms++ {
		if r.Update(ms) {
			beats = append(beats, ms)
		}
		if r.IsStopped() && r.Bpm() != 240 {
			t.Fatalf("at %d ms bpm=%d during the stop", ms, r.Bpm())
		}
	}
	if fmt.Sprint(beats) != "[0 500 1000 1500 2000 2250 2500 2750 3000]" {
		t.Errorf("unexpected beats %v", beats)
	}
}

func TestTempoJustBeforeStop(t *testing.T) {
	chart := testdata.NewChart().
		Tempo(0, 120).
		Tempo(1995, 240).
		Stop(2000, 300).
		Chart()
	r, _, _ := newReader(chart, 50)

	for ms := 0; ms <= 2400; ms += 16 {
		r.Update(ms)
		if ms >= 2000 && r.Bpm() != 240 {
			t.Log(ms, r.Bpm(), r.IsStopped())
			t.Fail()
		}
	}
}

func TestWarp(t *testing.T) {
	chart := testdata.NewChart().
		Tempo(0, 120).
		Note(1400, game.Center).
		Note(1450, game.UpLeft, game.UpRight).
		Warp(1500, 300).
		Note(1600, game.Center).
		Note(1700, game.Center).
		Note(1900, game.DownLeft).
		Chart()
	r, arrows, _ := newReader(chart, 50)

	for ms := 0; ms < 1500; ms += 10 {
		r.Update(ms)
	}
	if arrows.Active() != 3 {
		t.Fatalf("expected 3 arrows before the warp\n%s", spew.Sdump(activeArrows(arrows)))
	}
	before := r.YForTime(2000)

	r.Update(1500)
	if r.Msecs() != 1800 {
		t.Fatalf("expected the clock to jump to 1800, got %d", r.Msecs())
	}
	if after := r.YForTime(2000); after >= before || after != game.ArrowFinalY+200*game.ArrowDistance/r.ArrowTime() {
		t.Errorf("positions did not follow the warp: %d -> %d", before, after)
	}

	survivors := 0
	for _, a := range activeArrows(arrows) {
		switch a.Timestamp {
		case 1900:
			survivors++
			if a.NeedsDiscard {
				t.Error("arrow after the warp was discarded")
			}
		case 1600, 1700:
			t.Errorf("arrow inside the warped section was spawned: %d", a.Timestamp)
		default:
			if !a.NeedsDiscard {
				t.Errorf("arrow at %d survived the warp", a.Timestamp)
			}
		}
	}
	if survivors != 1 {
		t.Errorf("expected the note after the warp to be spawned")
	}
	for _, e := range chart.Events {
		if !e.IsHandled(0) {
			t.Errorf("event %d left unhandled", e.Index)
		}
	}
}

func TestCursorAndHandledOnce(t *testing.T) {
	chart := testdata.NewChart().
		Tempo(0, 150).
		TickCount(0, 2).
		Note(500, game.DownLeft, game.DownRight).
		HoldStart(800, game.Center).
		Stop(900, 200).
		HoldEnd(1200, game.Center).
		Tempo(1300, 180).
		Warp(1600, 400).
		Note(1800, game.UpLeft).
		Note(2200, game.UpRight, game.Center).
		Stop(2500, 100).
		Note(2600, game.Center).
		Chart()

	// two players read the same event stream
	r0, arrows0, _ := newReader(chart, 500)
	arrows1 := pool.New(500, game.NewArrow)
	settings := config.Default()
	r1 := New(chart, arrows1, &fakeJudge{window: 151, reader: r0}, settings, settings.Live(), 1)

	handled := make([]bool, len(chart.Events))
	lastCursor := 0
	uniques := 0
	for ms := 0; ms <= 4000; ms += 7 {
		r0.Update(ms)
		r1.Update(ms)
		if r0.Cursor() < lastCursor {
			t.Fatalf("cursor went back from %d to %d at %d ms", lastCursor, r0.Cursor(), ms)
		}
		lastCursor = r0.Cursor()

		for i, e := range chart.Events {
			if handled[i] && !e.IsHandled(0) {
				t.Fatalf("event %d lost its handled flag", i)
			}
			handled[i] = e.IsHandled(0)
		}
	}
	arrows0.ForEachActive(func(a *game.Arrow) {
		if a.Type == game.Unique {
			uniques++
		}
	})
	// 1800 is warped over
	if uniques != 2+2+1 {
		t.Errorf("expected 5 unique arrows, got %d\n%s", uniques, spew.Sdump(activeArrows(arrows0)))
	}
	if lastCursor != len(chart.Events) {
		t.Errorf("cursor stopped at %d", lastCursor)
	}
	if arrows1.Active() != arrows0.Active() {
		t.Errorf("players spawned different arrows: %d vs %d", arrows0.Active(), arrows1.Active())
	}
}

func TestSiblingRing(t *testing.T) {
	chart := testdata.NewChart().
		Tempo(0, 120).
		Note(500, game.DownLeft, game.Center, game.DownRight).
		Chart()
	r, arrows, _ := newReader(chart, 50)
	r.Update(0)

	list := activeArrows(arrows)
	if len(list) != 3 {
		t.Fatalf("expected 3 arrows, got %d", len(list))
	}
	origin := list[0]
	id := origin.SiblingID
	for steps := 1; ; steps++ {
		if id == origin.ID {
			if steps != 3 {
				t.Errorf("ring closed after %d steps", steps)
			}
			break
		}
		if steps > 3 {
			t.Fatal("ring does not close")
		}
		id = arrows.Get(id).SiblingID
	}
}

func TestPoolExhaustion(t *testing.T) {
	chart := testdata.NewChart().
		Tempo(0, 120).
		Note(500, game.DownLeft, game.Center).
		HoldStart(600, game.UpLeft).
		HoldEnd(900, game.UpLeft).
		Chart()
	r, arrows, _ := newReader(chart, 1)
	for ms := 0; ms < 1000; ms += 16 {
		r.Update(ms)
	}
	a := arrows.Get(0)
	if a.SiblingID != game.NoID {
		t.Errorf("a group of one must not be linked: %s", spew.Sdump(a))
	}
}

func TestHoldsCloseLastOpened(t *testing.T) {
	chart := testdata.NewChart().
		Tempo(0, 120).
		HoldStart(1000, game.Center).
		HoldStart(1200, game.Center).
		HoldEnd(1300, game.Center).
		HoldEnd(1500, game.Center).
		Chart()
	r, _, _ := newReader(chart, 100)
	r.Update(1000)

	ends := map[int]int{}
	r.ForEachHold(func(h *game.HoldArrow) {
		ends[h.StartTime] = h.EndTime
		if h.HasEnded() && h.EndTime < h.StartTime {
			t.Errorf("hold ends before it starts: %s", spew.Sdump(h))
		}
	})
	if ends[1200] != 1300 || ends[1000] != 1500 {
		t.Errorf("holds were not closed last-in first-out: %v", ends)
	}
}

func TestHoldLifecycle(t *testing.T) {
	chart := testdata.NewChart().
		Tempo(0, 120).
		TickCount(0, 4).
		HoldStart(1000, game.Center).
		HoldEnd(2000, game.Center).
		Chart()
	r, arrows, judge := newReader(chart, 100)

	for ms := 0; ms < 1000; ms += 5 {
		r.Update(ms)
		if r.IsHoldActive(game.Center) {
			t.Fatalf("hold active before its start at %d ms", ms)
		}
	}

	r.Update(1000)
	if !r.IsHoldActive(game.Center) {
		t.Fatal("hold not active at its start")
	}

	fills := 0
	heads := 0
	tails := 0
	arrows.ForEachActive(func(a *game.Arrow) {
		switch a.Type {
		case game.HoldFill:
			fills++
		case game.HoldHeadArrow, game.HoldHeadExtraFill:
			heads++
		case game.HoldTailArrow, game.HoldTailExtraFill:
			tails++
		}
		r.YFor(a)
	})
	if heads != 2 || tails != 2 || fills == 0 {
		t.Errorf("unexpected hold parts: %d heads, %d tails, %d fills", heads, tails, fills)
	}

	for ms := 1005; ms <= 2500; ms += 5 {
		r.Update(ms)
	}
	if r.IsHoldActive(game.Center) {
		t.Error("hold still active after its end")
	}

	if len(judge.ticks) == 0 {
		t.Fatal("no hold ticks")
	}
	for _, tick := range judge.ticks {
		if tick.at < 1000 || tick.at >= 2000 || tick.lanes != game.MaskOf(game.Center) {
			t.Errorf("unexpected hold tick %+v", tick)
		}
		grace := tick.at < 1000+config.Default().HoldTickGraceMs
		if tick.canMiss == grace {
			t.Errorf("wrong grace for tick %+v", tick)
		}
	}

	// once the tail leaves the screen the hold is gone
	for ms := 2500; ms <= 4000; ms += 5 {
		r.Update(ms)
	}
	holds := 0
	r.ForEachHold(func(*game.HoldArrow) { holds++ })
	if holds != 0 {
		t.Errorf("hold not discarded after scrolling away")
	}
	arrows.ForEachActive(func(a *game.Arrow) {
		if a.Type.IsHoldPart() && !a.NeedsDiscard {
			t.Errorf("hold part %s left behind", a.Type)
		}
	})
}

func TestFillLayout(t *testing.T) {
	chart := testdata.NewChart().
		Tempo(0, 120).
		HoldStart(1000, game.Center).
		HoldEnd(1300, game.Center).
		Chart()
	r, arrows, _ := newReader(chart, 100)
	r.Update(700)

	ys := []int{}
	arrows.ForEachActive(func(a *game.Arrow) {
		y := r.YFor(a)
		if a.Type == game.HoldFill && y != -game.ArrowSize {
			ys = append(ys, y)
		}
	})
	if len(ys) == 0 {
		t.Fatal("no fills laid out")
	}
	for i := 1; i < len(ys); i++ {
		if ys[i]-ys[i-1] != game.ArrowSize {
			t.Errorf("fills are not stacked: %v", ys)
		}
	}
}

func TestFakeSection(t *testing.T) {
	chart := testdata.NewChart().
		Tempo(0, 120).
		Fake(500, true).
		Note(1000, game.Center).
		Fake(1100, false).
		Note(1200, game.Center).
		Chart()
	r, arrows, _ := newReader(chart, 50)
	r.Update(700)

	for _, a := range activeArrows(arrows) {
		if a.IsFake != (a.Timestamp == 1000) {
			t.Errorf("wrong fake flag on %s", spew.Sdump(a))
		}
	}
}

func TestMultiplierConverges(t *testing.T) {
	chart := testdata.NewChart().Tempo(0, 120).Chart()
	r, _, _ := newReader(chart, 10)
	r.Update(0)

	start := r.ArrowTime()
	if !r.SetMultiplier(6) {
		t.Fatal("multiplier did not change")
	}
	if r.TargetArrowTime() != 333 {
		t.Fatalf("unexpected target %d", r.TargetArrowTime())
	}

	jump := config.Default().MaxArrowTimeJump
	r.Update(16)
	if r.ArrowTime() != start-jump {
		t.Errorf("arrow time snapped to %d instead of moving by %d", r.ArrowTime(), jump)
	}
	for ms := 32; ms < 2000; ms += 16 {
		r.Update(ms)
	}
	if r.ArrowTime() != r.TargetArrowTime() {
		t.Errorf("arrow time never converged: %d", r.ArrowTime())
	}
	if r.SetMultiplier(100) && r.Multiplier() != config.MaxMultiplier {
		t.Errorf("multiplier not clamped: %d", r.Multiplier())
	}
}

func TestScrollTempo(t *testing.T) {
	chart := testdata.NewChart().ScrollTempo(0, 120, 240).Chart()
	r, _, _ := newReader(chart, 10)
	r.Update(0)
	if r.Bpm() != 120 || r.TargetArrowTime() != 333 {
		t.Errorf("scroll speed must follow the scroll tempo: bpm %d, arrow time %d", r.Bpm(), r.TargetArrowTime())
	}
}

func TestYForTime(t *testing.T) {
	chart := testdata.NewChart().Tempo(0, 120).Chart()
	r, _, _ := newReader(chart, 10)
	r.Update(1000)

	if y := r.YForTime(1000); y != game.ArrowFinalY {
		t.Errorf("arrow due now must be on the judgement line, got %d", y)
	}

	last := r.YForTime(0)
	for ts := 0; ts < 5000; ts++ {
		y := r.YForTime(ts)
		if y < last {
			t.Fatalf("y went up from %d to %d at %d", last, y, ts)
		}
		if y > game.ArrowInitialY {
			t.Fatalf("y %d not clamped at %d", y, ts)
		}
		last = y
	}
	if last != game.ArrowInitialY {
		t.Errorf("far arrows must sit at the spawn position, got %d", last)
	}
}

func BenchmarkUpdate(b *testing.B) {
	builder := testdata.NewChart().Tempo(0, 140)
	for ts := 500; ts < 120000; ts += 250 {
		builder.Note(ts, game.Direction(ts/250%game.LanesSingle))
	}
	chart := builder.Chart()

	for i := 0; i < b.N; i++ {
		chart.Reset(0)
		r, arrows, _ := newReader(chart, 50)
		for ms := 0; ms < 120000; ms += 16 {
			r.Update(ms)
			arrows.ForEachActive(func(a *game.Arrow) {
				if r.YFor(a) < game.ArrowOffscreenLimit {
					r.Release(a)
				}
			})
		}
	}
}
