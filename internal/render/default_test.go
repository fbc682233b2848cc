package render

import (
	"bytes"
	"image/color"
	"testing"
	"time"
)

func TestFill(t *testing.T) {
	var out bytes.Buffer
	r := &DefaultRenderer{out: &out}

	r.Fill(3, 14, "x")
	r.FillColor(1, 2, color.RGBA{R: 255, G: 0, B: 7}, "y")
	r.flush()

	want := "\033[3;14Hx\033[1;2H\033[38;2;255;0;7my\033[0m"
	if out.String() != want {
		t.Errorf("expected %q, got %q", want, out.String())
	}
}

func TestDecorationsExpire(t *testing.T) {
	var out bytes.Buffer
	r := &DefaultRenderer{out: &out}

	r.AddDecoration(5, 6, Colorize(color.RGBA{R: 1}, "GOOD"), 2)
	frames := 0
	r.RenderLoop(func(frame uint64) bool {
		frames++
		return frame < 2
	}, func(time.Duration) {})

	if frames != 3 {
		t.Fatalf("expected 3 frames, got %d", frames)
	}
	if len(r.decorations) != 0 {
		t.Errorf("%d decorations left", len(r.decorations))
	}
	if !bytes.HasSuffix(out.Bytes(), []byte("\033[6;5H    ")) {
		t.Errorf("decoration not cleared: %q", out.String())
	}
}

func TestStripEscapes(t *testing.T) {
	for _, in := range []string{
		"GOOD",
		"\033[38;2;1;2;3mGOOD\033[0m",
		Colorize(color.RGBA{}, "GOOD"),
	} {
		if got := stripEscapes(in); got != "GOOD" {
			t.Logf("%q: got %q", in, got)
			t.Fail()
		}
	}
}
