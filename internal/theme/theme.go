package theme

import "git.lost.host/meutraa/stepline/internal/game"

type Theme interface {
	RenderArrow(t game.ArrowType, d game.Direction, isFake bool) string
	RenderReceptor(d game.Direction, pressed bool) string
	RenderFeedback(f game.FeedbackType) string
}
