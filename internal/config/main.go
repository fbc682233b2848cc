package config

import (
	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	app = kingpin.New("stepline", "Timing core of a scrolling-note rhythm game")

	ChartFile      = app.Arg("chart", "Compiled chart (.slc)").Required().ExistingFile()
	AudioFile      = app.Arg("audio", "Song audio (.mp3, .ogg, .wav)").Required().ExistingFile()
	AudioLag       = app.Flag("audio-lag", "Audio lag in ms").Default("0").Short('l').Int()
	Multiplier     = app.Flag("multiplier", "Scroll speed multiplier").Default("3").Short('m').Int()
	Rate           = app.Flag("rate", "Playback rate level (-3..3)").Default("0").Short('r').Int()
	Device         = app.Flag("device", "evdev keyboard device, e.g. /dev/input/event3").String()
	keys           = app.Flag("keys", "Keys for the lanes, DOWNLEFT to DOWNRIGHT").Default("zqsec").Short('k').String()
	keysDouble     = app.Flag("keys-double", "Keys for the second pad").Default("1793b").String()
	codes          = app.Flag("codes", "evdev key codes for the lanes").Default("44,16,31,18,46").String()
	ReleaseTimeout = app.Flag("release-timeout", "Terminal keys count as held for this long").Default("120ms").Duration()
	Host           = app.Flag("host", "Host a link session on this address").String()
	Join           = app.Flag("join", "Join a link session at this websocket url").String()
	Mode           = app.Flag("mode", "Multiplayer mode").Default("vs").Enum("vs", "coop")
	Scores         = app.Flag("scores", "Score database").Default("./scores.db").String()
	LogLevel       = app.Flag("log-level", "Log level").Default("info").Enum("debug", "info", "warn", "error")
	LogFile        = app.Flag("log-file", "Write logs to this file instead of stderr").String()
	ScrollBeats    = app.Flag("scroll-beats", "Beats visible between spawn and judgement line at 1x").Default("4").Int()
	MaxJump        = app.Flag("max-arrow-time-jump", "Max arrow time change per frame in ms").Default("10").Int()
	windows        = app.Flag("windows", "Timing windows in ms: perfect,great,good,bad,miss").Default("34,50,84,117,151").String()
)

// Parse parses the command line.
func Parse(args []string) error {
	app.Version("0.3.0")
	_, err := app.Parse(args)
	return err
}

// Snapshot captures the settings for one song. Parse must have been called.
func Snapshot() (Settings, error) {
	s := Default()
	s.AudioLag = *AudioLag
	s.Multiplier = *Multiplier
	s.ScrollBeats = *ScrollBeats
	s.MaxArrowTimeJump = *MaxJump

	w, err := parseWindows(*windows)
	if nil != err {
		return s, err
	}
	s.Windows = w

	s.Keys = []rune(*keys + *keysDouble)
	s.Codes, err = parseCodes(*codes)
	if nil != err {
		return s, err
	}
	return s, s.Validate()
}

// KeyLane returns the lane bound to r, or -1.
func (s Settings) KeyLane(r rune, lanes int) int {
	for i, c := range s.Keys {
		if i >= lanes {
			break
		}
		if r == c {
			return i
		}
	}
	return -1
}

// CodeLane returns the lane bound to an evdev key code, or -1.
func (s Settings) CodeLane(code uint16) int {
	for i, c := range s.Codes {
		if code == c {
			return i
		}
	}
	return -1
}

func init() {
	app.HelpFlag.Short('h')
}
