package testdata

import (
	"bytes"
	"encoding/binary"

	"git.lost.host/meutraa/stepline/internal/game"
)

// Builder assembles charts for tests. Events must be added in timestamp
// order.
type Builder struct {
	chart game.Chart
}

func NewChart() *Builder {
	return &Builder{}
}

func (b *Builder) Double() *Builder {
	b.chart.IsDouble = true
	return b
}

func (b *Builder) Difficulty(d game.Difficulty, level uint8) *Builder {
	b.chart.Difficulty = d
	b.chart.Level = level
	return b
}

func (b *Builder) add(e *game.Event) *Builder {
	e.Index = len(b.chart.Events)
	b.chart.Events = append(b.chart.Events, e)
	return b
}

func (b *Builder) Note(ts int, lanes ...game.Direction) *Builder {
	b.chart.NoteCount += int64(len(lanes))
	return b.add(&game.Event{Timestamp: ts, Type: game.Note, Lanes: game.MaskOf(lanes...)})
}

func (b *Builder) HoldStart(ts int, lanes ...game.Direction) *Builder {
	b.chart.HoldCount += int64(len(lanes))
	return b.add(&game.Event{Timestamp: ts, Type: game.HoldStart, Lanes: game.MaskOf(lanes...)})
}

func (b *Builder) HoldEnd(ts int, lanes ...game.Direction) *Builder {
	return b.add(&game.Event{Timestamp: ts, Type: game.HoldEnd, Lanes: game.MaskOf(lanes...)})
}

func (b *Builder) Tempo(ts int, bpm int) *Builder {
	return b.add(&game.Event{Timestamp: ts, Type: game.SetTempo, Extra: bpm})
}

// ScrollTempo sets a tempo whose scroll speed differs from the beat tempo.
func (b *Builder) ScrollTempo(ts int, bpm int, scrollBpm int) *Builder {
	return b.add(&game.Event{Timestamp: ts, Type: game.SetTempo, Extra: bpm, Extra2: scrollBpm})
}

func (b *Builder) TickCount(ts int, count int) *Builder {
	return b.add(&game.Event{Timestamp: ts, Type: game.SetTickCount, Extra: count})
}

func (b *Builder) Stop(ts int, length int) *Builder {
	return b.add(&game.Event{Timestamp: ts, Type: game.Stop, Extra: length})
}

func (b *Builder) JudgeableStop(ts int, length int) *Builder {
	return b.add(&game.Event{Timestamp: ts, Type: game.Stop, Extra: length, Extra2: 1})
}

func (b *Builder) Warp(ts int, delta int) *Builder {
	return b.add(&game.Event{Timestamp: ts, Type: game.Warp, Extra: delta})
}

func (b *Builder) Fake(ts int, on bool) *Builder {
	e := &game.Event{Timestamp: ts, Type: game.SetFake}
	if on {
		e.Extra = 1
	}
	return b.add(e)
}

// Chart returns the built chart. The builder must not be used afterwards.
func (b *Builder) Chart() *game.Chart {
	return &b.chart
}

// Encode writes c in the compiled chart format.
func Encode(c *game.Chart) []byte {
	var buf bytes.Buffer
	buf.WriteString("SLC1")
	isDouble := uint8(0)
	if c.IsDouble {
		isDouble = 1
	}
	buf.Write([]byte{uint8(c.Difficulty), c.Level, isDouble})
	binary.Write(&buf, binary.LittleEndian, uint32(len(c.Events)))

	for _, e := range c.Events {
		binary.Write(&buf, binary.LittleEndian, int32(e.Timestamp))
		buf.WriteByte(uint8(e.Type) | uint8(e.Lanes&0b11111)<<3)
		if e.Type.HasData2(c.IsDouble) {
			buf.WriteByte(uint8(e.Lanes>>game.LanesSingle&0b11111) << 3)
		}
		if e.Type.HasParam() {
			binary.Write(&buf, binary.LittleEndian, int32(e.Extra))
		}
		if e.Type.HasParam2() {
			binary.Write(&buf, binary.LittleEndian, int32(e.Extra2))
		}
		if e.Type.HasParam3() {
			binary.Write(&buf, binary.LittleEndian, int32(e.Extra3))
		}
	}
	return buf.Bytes()
}
