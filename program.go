package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.lost.host/meutraa/stepline/internal/audio"
	"git.lost.host/meutraa/stepline/internal/config"
	"git.lost.host/meutraa/stepline/internal/game"
	"git.lost.host/meutraa/stepline/internal/input"
	"git.lost.host/meutraa/stepline/internal/link"
	"git.lost.host/meutraa/stepline/internal/multiplayer"
	"git.lost.host/meutraa/stepline/internal/parser"
	"git.lost.host/meutraa/stepline/internal/render"
	"git.lost.host/meutraa/stepline/internal/score"
	"git.lost.host/meutraa/stepline/internal/stage"
	"git.lost.host/meutraa/stepline/internal/theme"
	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
	log "github.com/sirupsen/logrus"
)

const (
	feedbackFrames = 30
	joinTimeout    = 10 * time.Second
)

type Program struct {
	Parser   parser.Parser
	Scorer   score.Scorer
	Theme    theme.Theme
	Renderer render.Renderer

	settings config.Settings
	chart    *game.Chart
	checksum uint16
	song     beep.StreamSeeker

	player *audio.Player
	lanes  input.Lanes
	source input.Source
	syncer *multiplayer.Syncer
	stage  *stage.Stage

	closers      []func() error
	startedAudio bool
	status       string
	err          error

	frameCounter uint64
	renderTime   time.Duration
	columns      [game.LanesTotal]int
	rows, hitRow int
	middle       int
	sideCol      int
}

func (p *Program) Init() error {
	// Ensure our Default implementations are used as interfaces
	p.Parser = &parser.DefaultParser{}
	p.Scorer = &score.DefaultScorer{}
	p.Theme = &theme.DefaultTheme{}
	p.Renderer = render.NewDefaultRenderer(os.Stdout)

	settings, err := config.Snapshot()
	if nil != err {
		return fmt.Errorf("invalid settings: %w", err)
	}
	p.settings = settings

	data, err := os.ReadFile(*config.ChartFile)
	if nil != err {
		return fmt.Errorf("unable to read chart: %w", err)
	}
	p.chart, err = p.Parser.Parse(bytes.NewReader(data))
	if nil != err {
		return fmt.Errorf("unable to parse %s: %w", *config.ChartFile, err)
	}
	p.checksum = multiplayer.Checksum(data)

	log.WithFields(log.Fields{
		"chart":  *config.ChartFile,
		"events": len(p.chart.Events),
		"notes":  p.chart.NoteCount,
		"holds":  p.chart.HoldCount,
	}).Info("chart loaded")

	p.song, err = loadAudio(*config.AudioFile)
	if nil != err {
		return fmt.Errorf("unable to load audio: %w", err)
	}

	if err := p.Scorer.Init(*config.Scores); nil != err {
		return fmt.Errorf("unable to open score database: %w", err)
	}

	if err := p.openInput(); nil != err {
		return err
	}
	if err := p.openLink(data); nil != err {
		return err
	}

	p.stage = stage.New(p.chart, settings, settings.Live(), 0, &p.lanes)
	p.stage.Judge().OnFeedback(p.onFeedback)

	p.player = audio.NewPlayer()
	p.player.OnChunks(p.syncer.OnAudioChunks)
	if err := speaker.Init(audio.SampleRate, audio.FrameSize); nil != err {
		return fmt.Errorf("unable to open sound card: %w", err)
	}
	speaker.Play(p.player)

	if p.syncer.Mode() == multiplayer.Offline {
		return p.startAudio()
	}
	return nil
}

// loadAudio decodes the whole song and resamples it to the player format.
func loadAudio(file string) (beep.StreamSeeker, error) {
	f, err := os.Open(file)
	if nil != err {
		return nil, err
	}

	var streamer beep.StreamSeekCloser
	var format beep.Format
	switch strings.ToLower(filepath.Ext(file)) {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	default:
		f.Close()
		return nil, fmt.Errorf("unsupported audio format %s", filepath.Ext(file))
	}
	if nil != err {
		f.Close()
		return nil, err
	}
	defer streamer.Close()

	buffer := beep.NewBuffer(audio.Format)
	buffer.Append(beep.Resample(4, format.SampleRate, audio.SampleRate, streamer))
	log.WithFields(log.Fields{
		"file":   file,
		"rate":   format.SampleRate,
		"length": audio.Format.SampleRate.D(buffer.Len()),
	}).Info("audio loaded")
	return buffer.Streamer(0, buffer.Len()), nil
}

func (p *Program) openInput() error {
	if *config.Device != "" {
		events := make(chan input.Event, 128)
		if err := input.ReadEvdev(*config.Device, events); nil != err {
			return fmt.Errorf("unable to open keyboard device: %w", err)
		}
		p.source = input.NewEvdev(events, p.settings)
		return nil
	}

	t, err := input.OpenTerminal(p.settings, p.chart.Lanes(), *config.ReleaseTimeout)
	if nil != err {
		return fmt.Errorf("unable to open keyboard: %w", err)
	}
	p.closers = append(p.closers, t.Close)
	p.source = t
	return nil
}

func (p *Program) openLink(chartData []byte) error {
	var l link.Link
	switch {
	case *config.Host != "":
		ws, err := link.Listen(*config.Host)
		if nil != err {
			return fmt.Errorf("unable to host: %w", err)
		}
		p.closers = append(p.closers, ws.Close)
		l = ws
	case *config.Join != "":
		ctx, cancel := context.WithTimeout(context.Background(), joinTimeout)
		defer cancel()
		ws, err := link.Dial(ctx, *config.Join)
		if nil != err {
			return fmt.Errorf("unable to join: %w", err)
		}
		p.closers = append(p.closers, ws.Close)
		l = ws
	default:
		l, _ = link.NewPipe()
	}

	progress := multiplayer.Progress{LibraryType: game.Normal}
	if p.chart.Difficulty.IsLibraryType() {
		progress.LibraryType = p.chart.Difficulty
	}
	if len(p.Scorer.Load(p.chart)) > 0 {
		progress.CompletedSongs = 1
	}

	// the library is the chart itself
	p.syncer = multiplayer.New(l, multiplayer.RomID(chartData), progress, 1)

	mode := multiplayer.Offline
	if *config.Host != "" || *config.Join != "" {
		mode = multiplayer.Vs
		if *config.Mode == "coop" {
			mode = multiplayer.Coop
		}
	}
	p.syncer.Initialize(mode)
	return nil
}

func (p *Program) startAudio() error {
	if err := p.player.Play(p.song); nil != err {
		return err
	}
	if p.syncer.Mode() == multiplayer.Offline {
		p.player.SetRate(*config.Rate)
	}
	p.startedAudio = true
	p.status = ""
	return nil
}

// Update runs one frame of the game and reports whether to keep going.
func (p *Program) Update() bool {
	p.syncer.Update()

	p.lanes.Tick()
	p.source.Poll(&p.lanes)
	if p.source.Quit() {
		return false
	}
	if steps := p.source.SpeedChange(); steps != 0 {
		r := p.stage.Reader()
		r.SetMultiplier(r.Multiplier() + steps)
	}

	if !p.startedAudio {
		return p.waitForStart()
	}
	if p.syncer.Mode() != multiplayer.Offline && !p.syncer.IsPlaying() {
		p.err = errors.New("lost connection to the other player")
		return false
	}

	p.player.Update(p.syncer.ExpectedAudioChunk())
	state := p.player.State()
	p.stage.Update(state.Msecs, state.HasFinished)

	return !p.stage.HasFinished() && !p.stage.HasBroken()
}

func (p *Program) waitForStart() bool {
	if !p.syncer.IsPlaying() {
		p.status = "waiting for player"
		if err := p.syncer.LastError(); err != multiplayer.ErrorNone {
			p.status = fmt.Sprintf("waiting for player (%s)", err)
		}
		return true
	}

	if !p.syncer.IsPlayingSong() {
		p.syncer.StartSong(p.checksum)
	}
	p.status = "synchronizing"
	if p.syncer.SynchronizeSongStart() {
		if err := p.startAudio(); nil != err {
			p.err = err
			return false
		}
	}
	return true
}

func (p *Program) onFeedback(result game.FeedbackType, delta score.Delta) {
	text := p.Theme.RenderFeedback(result)
	p.Renderer.AddDecoration(p.middle-len(result.String())/2, p.hitRow+3, text, feedbackFrames)
	if delta.Combo > 1 {
		combo := fmt.Sprintf("%4d", delta.Combo)
		p.Renderer.AddDecoration(p.middle-2, p.hitRow+4, combo, feedbackFrames)
	}
}

func (p *Program) Resize() {
	columns, rows := p.Renderer.Size()
	p.rows = rows
	p.hitRow = 2
	p.middle = columns / 2

	lanes := p.chart.Lanes()
	for i := 0; i < lanes; i++ {
		p.columns[i] = p.middle + (2*i-lanes+1)*2
	}

	p.sideCol = p.columns[0] - 30
	if p.sideCol < 2 {
		p.sideCol = 2
	}
}

// rowFor maps a position on the handheld screen to a terminal row.
func (p *Program) rowFor(y int) int {
	return p.hitRow + (y-game.ArrowFinalY)*(p.rows-p.hitRow)/game.ArrowDistance
}

func (p *Program) Render(frame uint64) {
	p.frameCounter = frame
	lanes := p.chart.Lanes()

	// clear the field
	for i := 0; i < lanes; i++ {
		for row := 1; row <= p.rows; row++ {
			p.Renderer.Fill(row, p.columns[i], " ")
		}
	}

	for i := 0; i < lanes; i++ {
		d := game.Direction(i)
		p.Renderer.Fill(p.hitRow, p.columns[i], p.Theme.RenderReceptor(d, p.lanes.IsPressed(d)))
	}

	p.stage.ForEachArrow(func(a *game.Arrow, y int) {
		row := p.rowFor(y)
		if row < 1 || row > p.rows {
			return
		}
		p.Renderer.Fill(row, p.columns[a.Direction], p.Theme.RenderArrow(a.Type, a.Direction, a.IsFake))
	})

	for i := 0; i < lanes; i++ {
		d := game.Direction(i)
		if p.stage.ShowsHoldHead(d) {
			p.Renderer.Fill(p.hitRow, p.columns[i], p.Theme.RenderArrow(game.HoldFakeHead, d, false))
		}
	}

	p.RenderStatic()
}

func (p *Program) RenderStatic() {
	r, s := p.stage.Reader(), p.stage.Score()

	p.Renderer.Fill(2, p.sideCol, fmt.Sprintf("%-24s", p.status))
	p.Renderer.Fill(4, p.sideCol, fmt.Sprintf("Render Time:  %5.0f µs", float64(p.renderTime)/float64(time.Microsecond)))
	p.Renderer.Fill(5, p.sideCol, fmt.Sprintf("       Time:  %6v ms", p.player.State().Msecs))
	p.Renderer.Fill(6, p.sideCol, fmt.Sprintf("        BPM:  %6v", r.Bpm()))
	p.Renderer.Fill(7, p.sideCol, fmt.Sprintf(" Multiplier:  %6v", r.Multiplier()))
	p.Renderer.Fill(9, p.sideCol, fmt.Sprintf("       Life:  %6v", s.Life))
	p.Renderer.Fill(10, p.sideCol, fmt.Sprintf("      Combo:  %6v", s.Combo))
	p.Renderer.Fill(11, p.sideCol, fmt.Sprintf("     Points:  %6v", s.Points))
	p.Renderer.Fill(13, p.sideCol, fmt.Sprintf("      Notes:  %6v", p.chart.NoteCount))
	p.Renderer.Fill(14, p.sideCol, fmt.Sprintf("      Holds:  %6v", p.chart.HoldCount))
	for i := 0; i < game.FeedbackTypes; i++ {
		p.Renderer.Fill(16+i, p.sideCol, fmt.Sprintf("%11v:  %6v", game.FeedbackType(i), s.Counters[i]))
	}
	if r.IsStopped() {
		p.Renderer.Fill(22, p.sideCol, "       STOP")
	} else {
		p.Renderer.Fill(22, p.sideCol, "           ")
	}
}

// Finish saves a completed play and prints how it went.
func (p *Program) Finish() error {
	if p.stage.HasBroken() {
		fmt.Println("Stage break")
		return nil
	}
	if !p.stage.HasFinished() {
		return nil
	}

	result := p.stage.Result()
	history := p.Scorer.Load(p.chart)
	if err := p.Scorer.Save(p.chart, result); nil != err {
		return fmt.Errorf("unable to save score: %w", err)
	}

	fmt.Printf("%6v points  %3v%%  max combo %v\n", result.Points, result.Percent(), result.MaxCombo)
	for i, c := range result.Counters {
		fmt.Printf("%9v: %v\n", game.FeedbackType(i), c)
	}
	for _, h := range history {
		if h.Result.Points > result.Points {
			fmt.Printf("best so far: %v points\n", h.Result.Points)
			break
		}
	}
	return nil
}

func (p *Program) Deinit() {
	speaker.Clear()
	for _, c := range p.closers {
		if err := c(); nil != err {
			log.WithError(err).Warn("unable to close")
		}
	}
	p.closers = nil
	if nil != p.Scorer {
		p.Scorer.Deinit()
	}
}
