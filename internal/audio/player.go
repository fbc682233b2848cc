// Package audio plays a song one video frame at a time and derives the song
// clock from the amount of samples played.
package audio

import (
	"sync/atomic"

	"github.com/faiface/beep"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	SampleRate     = 36314
	ChunkSize      = 304
	ChunksPerFrame = 2
	FrameSize      = ChunkSize * ChunksPerFrame

	// RateLevels is the largest rate adjustment in either direction.
	RateLevels = 3

	// SyncLimit is how many chunks a synchronized player may drift from the
	// expected chunk before being corrected.
	SyncLimit = 2

	// asMsecs is the length of one sample in ms as a 0.32 fixed point value.
	asMsecs = 0xFFFFFFFF * 1000 / SampleRate
)

// frames between whole-chunk cursor jumps, per rate level
var rateDelays = [2*RateLevels + 1]int{1, 2, 4, 0, 4, 2, 1}

var Format = beep.Format{SampleRate: SampleRate, NumChannels: 2, Precision: 2}

// State is what the game reads from the player every frame.
type State struct {
	Msecs       int
	HasFinished bool
	IsLooping   bool
}

// Player produces one frame of samples per Update into the back half of a
// double buffer. The consumer side (Stream or VBlank) plays the front half
// and takes the back half once it is ready.
type Player struct {
	source    beep.StreamSeeker
	sourcePos int

	cursor       int
	currentChunk int
	rate         int
	rateCounter  int
	state        State

	onChunks func(current int)

	buffers [2][FrameSize][2]float64
	back    atomic.Int32
	ready   atomic.Bool

	// consumer side
	front    int32
	position int
}

func NewPlayer() *Player {
	return &Player{position: FrameSize}
}

// OnChunks registers fn to be called after every Update with the number of
// chunks played so far.
func (p *Player) OnChunks(fn func(current int)) {
	p.onChunks = fn
}

// Play starts source from the beginning. source must be in Format.
func (p *Player) Play(source beep.StreamSeeker) error {
	p.Stop()
	if err := source.Seek(0); nil != err {
		return errors.Wrap(err, "rewinding audio")
	}
	p.source = source
	p.sourcePos = 0
	log.WithField("samples", source.Len()).Debug("audio started")
	return nil
}

// Loop plays source forever.
func (p *Player) Loop(source beep.StreamSeeker) error {
	if err := p.Play(source); nil != err {
		return err
	}
	p.state.IsLooping = true
	return nil
}

// Stop silences the player and resets the clock.
func (p *Player) Stop() {
	p.source = nil
	p.cursor = 0
	p.currentChunk = 0
	p.rate = 0
	p.rateCounter = 0
	p.state = State{}
}

// Seek moves the cursor to the chunk containing msecs.
func (p *Player) Seek(msecs int) {
	cursor := msecs * SampleRate / 1000
	p.cursor = cursor / ChunkSize * ChunkSize
	p.rateCounter = 0
	p.currentChunk = 0
	p.state.Msecs = toMsecs(p.cursor)
}

// SetRate speeds up (positive) or slows down (negative) playback by
// skipping or repeating whole chunks.
func (p *Player) SetRate(rate int) {
	p.rate = max(-RateLevels, min(rate, RateLevels))
	p.rateCounter = 0
}

func (p *Player) IsPlaying() bool { return p.source != nil }
func (p *Player) State() State { return p.state }
func (p *Player) Cursor() int { return p.cursor }

// CurrentChunk is the number of chunks played since the song started.
func (p *Player) CurrentChunk() int { return p.currentChunk }

// Update produces the next frame. expectedChunk is the chunk the remote
// master reported, or 0 when not synchronized. It returns false if the
// previous frame has not been taken by the consumer yet.
func (p *Player) Update(expectedChunk int) bool {
	if p.ready.Load() {
		return false
	}

	isSynchronized := expectedChunk > 0
	available := expectedChunk - p.currentChunk
	if isSynchronized && available > SyncLimit {
		// behind the master
		diff := available - SyncLimit
		p.cursor += ChunkSize * diff
		p.currentChunk += diff
		available = SyncLimit
	}

	if nil != p.source {
		for i := 0; i < ChunksPerFrame; i++ {
			if !isSynchronized {
				p.currentChunk++
				continue
			}
			available--
			if available < -SyncLimit {
				// ahead of the master
				p.cursor = max(p.cursor-ChunkSize, 0)
				available = -SyncLimit
			} else {
				p.currentChunk++
			}
		}
		p.produce()
	}

	if nil != p.onChunks {
		p.onChunks(p.currentChunk)
	}

	p.updateRate()
	p.state.Msecs = toMsecs(p.cursor)
	return true
}

func (p *Player) produce() {
	back := &p.buffers[p.back.Load()]
	if p.cursor >= p.source.Len() || !p.read(back[:]) {
		p.finish()
		return
	}
	p.cursor += FrameSize
	p.ready.Store(true)

	if p.cursor >= p.source.Len() {
		p.finish()
	}
}

func (p *Player) read(dst [][2]float64) bool {
	if p.cursor != p.sourcePos {
		if err := p.source.Seek(p.cursor); nil != err {
			log.WithError(err).Warn("audio seek failed")
			return false
		}
	}

	filled := 0
	for filled < len(dst) {
		n, ok := p.source.Stream(dst[filled:])
		filled += n
		if !ok {
			break
		}
	}
	for i := filled; i < len(dst); i++ {
		dst[i] = [2]float64{}
	}
	p.sourcePos = p.cursor + filled
	return filled > 0
}

func (p *Player) finish() {
	if p.state.IsLooping {
		p.Seek(0)
		return
	}

	log.WithField("chunks", p.currentChunk).Debug("audio finished")
	p.Stop()
	p.state.HasFinished = true
}

func (p *Player) updateRate() {
	if p.rate == 0 || nil == p.source {
		return
	}

	p.rateCounter++
	if p.rateCounter == rateDelays[p.rate+RateLevels] {
		if p.rate < 0 {
			p.cursor = max(p.cursor-ChunkSize, 0)
		} else {
			p.cursor += ChunkSize
		}
		p.rateCounter = 0
	}
}

// VBlank hands the back buffer to the consumer if a frame is ready. It must
// only be called from the consumer side.
func (p *Player) VBlank() bool {
	if !p.ready.Load() {
		return false
	}

	back := p.back.Load()
	p.front = back
	p.position = 0
	p.back.Store(1 - back)
	p.ready.Store(false)
	return true
}

// Stream implements beep.Streamer. Missing frames are played as silence.
func (p *Player) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		if p.position == FrameSize && !p.VBlank() {
			samples[i] = [2]float64{}
			continue
		}
		samples[i] = p.buffers[p.front][p.position]
		p.position++
	}
	return len(samples), true
}

func (p *Player) Err() error {
	return nil
}

func toMsecs(cursor int) int {
	return int(uint64(cursor) * asMsecs >> 32)
}
