package input

import (
	"encoding/binary"
	"os"
	"syscall"

	"git.lost.host/meutraa/stepline/internal/game"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// linux/input-event-codes.h
const (
	evKey = 0x01

	keyReleased = 0
	keyPressed  = 1

	keyEsc     = 1
	keyMinus   = 12
	keyEqual   = 13
	keyKPMinus = 74
	keyKPPlus  = 78
)

type keyEvent struct {
	Time  syscall.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

type Event struct {
	Pressed  bool
	Released bool
	//https://github.com/torvalds/linux/blob/master/include/uapi/linux/input-event-codes.h
	Code uint16
	Time syscall.Timeval
}

// ReadEvdev streams the key events of a linux input device into events
// until the device fails.
func ReadEvdev(device string, events chan<- Event) error {
	file, err := os.Open(device)
	if err != nil {
		return errors.Wrapf(err, "open %s", device)
	}
	go func() {
		defer file.Close()
		defer close(events)

		var ev keyEvent
		for {
			err = binary.Read(file, binary.LittleEndian, &ev)
			if nil != err {
				log.WithError(err).WithField("device", device).Error("unable to read keyboard input")
				return
			}
			if ev.Type != evKey || (ev.Value != keyPressed && ev.Value != keyReleased) {
				continue
			}
			events <- Event{
				Pressed:  ev.Value == keyPressed,
				Released: ev.Value == keyReleased,
				Code:     ev.Code,
				Time:     ev.Time,
			}
		}
	}()
	return nil
}

// Evdev is a source with true press and release events.
type Evdev struct {
	events <-chan Event
	mapper Mapper
	quit   bool
	speed  int
}

func NewEvdev(events <-chan Event, mapper Mapper) *Evdev {
	return &Evdev{events: events, mapper: mapper}
}

func (e *Evdev) Poll(lanes *Lanes) {
	for {
		select {
		case ev, ok := <-e.events:
			if !ok {
				e.quit = true
				return
			}
			switch ev.Code {
			case keyEsc:
				e.quit = true
				continue
			case keyEqual, keyKPPlus:
				if ev.Pressed {
					e.speed++
				}
				continue
			case keyMinus, keyKPMinus:
				if ev.Pressed {
					e.speed--
				}
				continue
			}
			lane := e.mapper.CodeLane(ev.Code)
			if lane < 0 {
				continue
			}
			lanes.SetIsPressed(game.Direction(lane), ev.Pressed)
		default:
			return
		}
	}
}

func (e *Evdev) Quit() bool {
	return e.quit
}

func (e *Evdev) SpeedChange() int {
	steps := e.speed
	e.speed = 0
	return steps
}
