package parser

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"git.lost.host/meutraa/stepline/internal/game"
	"github.com/pkg/errors"
)

// Magic opens every compiled chart.
const Magic = "SLC1"

const (
	typeBits = 3
	typeMask = 0b00000111
)

var (
	ErrBadMagic  = errors.New("not a compiled chart")
	ErrTruncated = errors.New("chart data truncated")
)

type DefaultParser struct{}

type header struct {
	Magic      [4]byte
	Difficulty uint8
	Level      uint8
	IsDouble   uint8
	EventCount uint32
}

func (p *DefaultParser) ParseFile(file string) (*game.Chart, error) {
	f, err := os.Open(file)
	if nil != err {
		return nil, err
	}
	defer f.Close()

	chart, err := p.Parse(bufio.NewReader(f))
	if nil != err {
		return nil, errors.Wrapf(err, "parse %s", file)
	}
	return chart, nil
}

func (p *DefaultParser) Parse(r io.Reader) (*game.Chart, error) {
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); nil != err {
		return nil, truncated(err, "header")
	}
	if string(h.Magic[:]) != Magic {
		return nil, ErrBadMagic
	}

	chart := &game.Chart{
		Difficulty: game.Difficulty(h.Difficulty),
		Level:      h.Level,
		IsDouble:   h.IsDouble != 0,
		Events:     make([]*game.Event, 0, h.EventCount),
	}

	for i := 0; i < int(h.EventCount); i++ {
		event, err := p.readEvent(r, chart.IsDouble)
		if nil != err {
			return nil, errors.Wrapf(err, "event %d", i)
		}
		event.Index = i
		switch event.Type {
		case game.Note:
			chart.NoteCount += int64(event.Lanes.Count())
		case game.HoldStart:
			chart.HoldCount += int64(event.Lanes.Count())
		}
		chart.Events = append(chart.Events, event)
	}

	return chart, nil
}

func (p *DefaultParser) readEvent(r io.Reader, isDouble bool) (*game.Event, error) {
	var timestamp int32
	if err := binary.Read(r, binary.LittleEndian, &timestamp); nil != err {
		return nil, truncated(err, "timestamp")
	}

	var data [1]byte
	if _, err := io.ReadFull(r, data[:]); nil != err {
		return nil, truncated(err, "data")
	}

	t := game.EventType(data[0] & typeMask)

	event := &game.Event{
		Timestamp: int(timestamp),
		Type:      t,
		Lanes:     game.LaneMask(data[0] >> typeBits),
	}

	if t.HasData2(isDouble) {
		if _, err := io.ReadFull(r, data[:]); nil != err {
			return nil, truncated(err, "data2")
		}
		event.Lanes |= game.LaneMask(data[0]>>typeBits) << game.LanesSingle
	}

	params := []*int{}
	if t.HasParam() {
		params = append(params, &event.Extra)
	}
	if t.HasParam2() {
		params = append(params, &event.Extra2)
	}
	if t.HasParam3() {
		params = append(params, &event.Extra3)
	}
	for _, param := range params {
		var v uint32
		if err := binary.Read(r, binary.LittleEndian, &v); nil != err {
			return nil, truncated(err, "param")
		}
		// signed on the wire
		*param = int(int32(v))
	}

	return event, nil
}

func truncated(err error, what string) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return errors.Wrap(ErrTruncated, what)
	}
	return errors.Wrap(err, what)
}
