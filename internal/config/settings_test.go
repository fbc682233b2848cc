package config

import (
	"testing"

	"git.lost.host/meutraa/stepline/internal/game"
)

func TestParseWindows(t *testing.T) {
	w, err := parseWindows("10, 20,30,40,50")
	if nil != err {
		t.Fatal(err)
	}
	if w != (game.Windows{Perfect: 10, Great: 20, Good: 30, Bad: 40, Miss: 50}) {
		t.Errorf("unexpected windows %+v", w)
	}

	for _, in := range []string{"1,2,3", "1,2,x,4,5"} {
		if _, err := parseWindows(in); nil == err {
			t.Errorf("expected error for %q", in)
		}
	}
}

func TestValidate(t *testing.T) {
	s := Default()
	if err := s.Validate(); nil != err {
		t.Fatal(err)
	}

	s.Windows.Good = s.Windows.Great
	if err := s.Validate(); nil == err {
		t.Error("expected error for non increasing windows")
	}

	s = Default()
	s.Multiplier = 0
	if err := s.Validate(); nil == err {
		t.Error("expected error for multiplier 0")
	}
}

func TestKeyLane(t *testing.T) {
	s := Default()
	if s.KeyLane('s', game.LanesSingle) != int(game.Center) {
		t.Error("s should map to CENTER")
	}
	if s.KeyLane('1', game.LanesSingle) != -1 {
		t.Error("second pad keys must be ignored in single charts")
	}
	if s.KeyLane('1', game.LanesTotal) != 5 {
		t.Error("1 should map to the second DOWNLEFT")
	}
	if s.CodeLane(31) != int(game.Center) {
		t.Error("code 31 should map to CENTER")
	}
}
