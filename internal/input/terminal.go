package input

import (
	"time"

	"git.lost.host/meutraa/stepline/internal/game"
	"github.com/eiannone/keyboard"
)

// Terminal reads keys from a terminal, which only reports presses and
// auto-repeats. A lane counts as held until no repeat arrived for the
// release timeout.
type Terminal struct {
	keys     <-chan keyboard.KeyEvent
	mapper   Mapper
	lanes    int
	timeout  time.Duration
	now      func() time.Time
	lastSeen [game.LanesTotal]time.Time
	quit     bool
	speed    int
}

// OpenTerminal puts the terminal keyboard in raw mode. Close must be
// called to restore it.
func OpenTerminal(mapper Mapper, lanes int, timeout time.Duration) (*Terminal, error) {
	keys, err := keyboard.GetKeys(128)
	if nil != err {
		return nil, err
	}
	return NewTerminal(keys, mapper, lanes, timeout), nil
}

func NewTerminal(keys <-chan keyboard.KeyEvent, mapper Mapper, lanes int, timeout time.Duration) *Terminal {
	return &Terminal{
		keys:    keys,
		mapper:  mapper,
		lanes:   lanes,
		timeout: timeout,
		now:     time.Now,
	}
}

func (t *Terminal) Close() error {
	return keyboard.Close()
}

func (t *Terminal) Poll(lanes *Lanes) {
	now := t.now()

	for len(t.keys) > 0 {
		key := <-t.keys
		if key.Err != nil || key.Key == keyboard.KeyEsc || key.Key == keyboard.KeyCtrlC {
			t.quit = true
			continue
		}
		switch key.Rune {
		case '+', '=':
			t.speed++
			continue
		case '-':
			t.speed--
			continue
		}
		lane := t.mapper.KeyLane(key.Rune, t.lanes)
		if lane < 0 {
			continue
		}
		t.lastSeen[lane] = now
	}

	for d := 0; d < t.lanes; d++ {
		held := !t.lastSeen[d].IsZero() && now.Sub(t.lastSeen[d]) < t.timeout
		lanes.SetIsPressed(game.Direction(d), held)
	}
}

func (t *Terminal) Quit() bool {
	return t.quit
}

func (t *Terminal) SpeedChange() int {
	steps := t.speed
	t.speed = 0
	return steps
}
