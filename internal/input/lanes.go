// Package input turns device key events into per-lane pressed state.
package input

import "git.lost.host/meutraa/stepline/internal/game"

// Lanes holds the pressed state of every lane for the current and the
// previous frame.
type Lanes struct {
	pressed  [game.LanesTotal]bool
	previous [game.LanesTotal]bool
}

// Tick starts a new frame. Edges are measured against the state at the
// last Tick.
func (l *Lanes) Tick() {
	l.previous = l.pressed
}

func (l *Lanes) SetIsPressed(d game.Direction, pressed bool) {
	l.pressed[d] = pressed
}

func (l *Lanes) IsPressed(d game.Direction) bool {
	return l.pressed[d]
}

// HasBeenPressedNow reports a press edge in lane d during this frame.
func (l *Lanes) HasBeenPressedNow(d game.Direction) bool {
	return l.pressed[d] && !l.previous[d]
}

// Any reports whether any lane is held.
func (l *Lanes) Any() bool {
	return l.Mask() != 0
}

func (l *Lanes) Mask() game.LaneMask {
	var m game.LaneMask
	for d, p := range l.pressed {
		if p {
			m |= game.MaskOf(game.Direction(d))
		}
	}
	return m
}

// Mapper binds device keys to lanes. Both methods return -1 for unbound
// keys.
type Mapper interface {
	KeyLane(r rune, lanes int) int
	CodeLane(code uint16) int
}

// Source feeds device state into the lanes once per frame.
type Source interface {
	Poll(lanes *Lanes)
	// Quit reports whether the player asked to leave.
	Quit() bool
	// SpeedChange returns the scroll speed steps asked for since the last
	// call.
	SpeedChange() int
}
