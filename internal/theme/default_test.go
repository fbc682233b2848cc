package theme

import (
	"strings"
	"testing"

	"git.lost.host/meutraa/stepline/internal/game"
)

func TestRenderArrow(t *testing.T) {
	th := &DefaultTheme{}

	tests := map[game.ArrowType]string{
		game.Unique:            "↘",
		game.HoldHeadArrow:     "↘",
		game.HoldFill:          fillSym,
		game.HoldHeadExtraFill: fillSym,
		game.HoldTailArrow:     tailSym,
	}
	for arrowType, sym := range tests {
		if got := th.RenderArrow(arrowType, game.DownRight+game.LanesSingle, false); !strings.Contains(got, sym) {
			t.Logf("%s: expected %q in %q", arrowType, sym, got)
			t.Fail()
		}
	}

	if th.RenderArrow(game.Unique, game.Center, true) == th.RenderArrow(game.Unique, game.Center, false) {
		t.Error("fake arrows must look different")
	}
}

func TestRenderFeedback(t *testing.T) {
	th := &DefaultTheme{}
	for f := game.Perfect; f <= game.Miss; f++ {
		if !strings.Contains(th.RenderFeedback(f), f.String()) {
			t.Errorf("%s not rendered", f)
		}
	}
	if th.RenderFeedback(game.Unknown) != "" {
		t.Error("unknown feedback must render nothing")
	}
}
