package theme

import (
	"image/color"

	"git.lost.host/meutraa/stepline/internal/game"
	"git.lost.host/meutraa/stepline/internal/render"
)

type DefaultTheme struct {
}

func (t *DefaultTheme) RenderArrow(a game.ArrowType, d game.Direction, isFake bool) string {
	c := getArrowColor(d)
	if isFake {
		c = fakeColor
	}

	switch a {
	case game.HoldFill, game.HoldHeadExtraFill, game.HoldTailExtraFill:
		return render.Colorize(c, fillSym)
	case game.HoldTailArrow:
		return render.Colorize(c, tailSym)
	}
	return render.Colorize(c, syms[d.Single()])
}

func (t *DefaultTheme) RenderReceptor(d game.Direction, pressed bool) string {
	if pressed {
		return render.Colorize(getArrowColor(d), syms[d.Single()])
	}
	return render.Colorize(receptorColor, syms[d.Single()])
}

func (t *DefaultTheme) RenderFeedback(f game.FeedbackType) string {
	if int(f) >= len(feedbackColors) {
		return ""
	}
	return render.Colorize(feedbackColors[f], f.String())
}

const (
	fillSym = "┃"
	tailSym = "▀"
)

var (
	syms          = [game.LanesSingle]string{"↙", "↖", "■", "↗", "↘"}
	receptorColor = color.RGBA{106, 106, 106, 255}
	fakeColor     = color.RGBA{60, 60, 60, 255}
	arrowColors   = [game.LanesSingle]color.RGBA{
		{0, 118, 236, 255}, // blue
		{236, 30, 0, 255},  // red
		{236, 195, 0, 255}, // yellow
		{236, 30, 0, 255},
		{0, 118, 236, 255},
	}
	feedbackColors = [game.FeedbackTypes]color.RGBA{
		{173, 236, 236, 255}, // perfect
		{0, 236, 128, 255},   // great
		{236, 195, 0, 255},   // good
		{236, 0, 106, 255},   // bad
		{236, 30, 0, 255},    // miss
	}
)

func getArrowColor(d game.Direction) color.RGBA {
	return arrowColors[d.Single()]
}
