package config

import (
	"strconv"
	"strings"

	"git.lost.host/meutraa/stepline/internal/game"
	"github.com/pkg/errors"
)

// Settings is the immutable configuration captured once per song.
type Settings struct {
	AudioLag         int // ms subtracted from the song clock
	Multiplier       int
	ScrollBeats      int
	MaxArrowTimeJump int
	HoldTickGraceMs  int
	Windows          game.Windows
	Keys             []rune
	Codes            []uint16
}

// Live holds the values that change mid-song. Only the components that
// mutate them receive a pointer.
type Live struct {
	Multiplier int
}

const (
	MinMultiplier = 1
	MaxMultiplier = 8
)

func Default() Settings {
	return Settings{
		Multiplier:       3,
		ScrollBeats:      4,
		MaxArrowTimeJump: 10,
		HoldTickGraceMs:  84,
		Windows:          game.DefaultWindows(),
		Keys:             []rune("zqsec1793b"),
		Codes:            []uint16{44, 16, 31, 18, 46},
	}
}

func (s Settings) Live() *Live {
	return &Live{Multiplier: s.Multiplier}
}

func (s Settings) Validate() error {
	if s.Multiplier < MinMultiplier || s.Multiplier > MaxMultiplier {
		return errors.Errorf("multiplier %d out of range [%d, %d]", s.Multiplier, MinMultiplier, MaxMultiplier)
	}
	if s.ScrollBeats <= 0 {
		return errors.New("scroll beats must be positive")
	}
	if s.MaxArrowTimeJump <= 0 {
		return errors.New("max arrow time jump must be positive")
	}
	if !s.Windows.Valid() {
		return errors.Errorf("timing windows must be strictly increasing: %+v", s.Windows)
	}
	return nil
}

// ClampMultiplier keeps a live multiplier inside the allowed range.
func ClampMultiplier(m int) int {
	if m < MinMultiplier {
		return MinMultiplier
	}
	if m > MaxMultiplier {
		return MaxMultiplier
	}
	return m
}

func parseWindows(s string) (game.Windows, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 5 {
		return game.Windows{}, errors.Errorf("expected 5 timing windows, got %d", len(parts))
	}
	values := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if nil != err {
			return game.Windows{}, errors.Wrapf(err, "timing window %d", i)
		}
		values[i] = v
	}
	return game.Windows{
		Perfect: values[0],
		Great:   values[1],
		Good:    values[2],
		Bad:     values[3],
		Miss:    values[4],
	}, nil
}

func parseCodes(s string) ([]uint16, error) {
	codes := []uint16{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseUint(p, 10, 16)
		if nil != err {
			return nil, errors.Wrapf(err, "key code %q", p)
		}
		codes = append(codes, uint16(v))
	}
	return codes, nil
}
