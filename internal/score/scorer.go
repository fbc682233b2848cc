package score

import "git.lost.host/meutraa/stepline/internal/game"

type Scorer interface {
	Init(path string) error
	Deinit()

	// Save the state of this performance
	Save(chart *game.Chart, result Result) error

	// Load up previous state for the chart
	Load(chart *game.Chart) []History
}

type History struct {
	Sum    string
	Result Result
}
