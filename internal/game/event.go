package game

// MaxPlayers is the number of readers that may share one event stream.
const MaxPlayers = 2

type EventType uint8

const (
	SetFake EventType = iota
	Note
	HoldStart
	HoldEnd
	SetTempo
	SetTickCount
	Stop
	Warp
)

func (t EventType) String() string {
	switch t {
	case SetFake:
		return "SET_FAKE"
	case Note:
		return "NOTE"
	case HoldStart:
		return "HOLD_START"
	case HoldEnd:
		return "HOLD_END"
	case SetTempo:
		return "SET_TEMPO"
	case SetTickCount:
		return "SET_TICKCOUNT"
	case Stop:
		return "STOP"
	case Warp:
		return "WARP"
	}
	return "UNKNOWN"
}

// IsNote reports whether the event spawns arrows.
func (t EventType) IsNote() bool {
	return t == Note || t == HoldStart || t == HoldEnd
}

// HasData2 reports whether a record of this type carries the second lane
// byte. Only note events in double charts do.
func (t EventType) HasData2(isDouble bool) bool {
	return isDouble && t.IsNote()
}

func (t EventType) HasParam() bool {
	return t == SetFake || t == SetTempo || t == SetTickCount || t == Stop || t == Warp
}

func (t EventType) HasParam2() bool {
	return t == SetTempo || t == Stop
}

func (t EventType) HasParam3() bool {
	return t == SetTempo
}

// Event is a single timestamped entry of a chart.
//
// Extra holds the primary payload: bpm for SET_TEMPO, stop length for STOP,
// warp delta for WARP, tick count for SET_TICKCOUNT and the fake flag for
// SET_FAKE. Extra2 is the scroll bpm of SET_TEMPO or the judgeable flag of
// STOP.
type Event struct {
	Timestamp int // ms
	Type      EventType
	Lanes     LaneMask
	Extra     int
	Extra2    int
	Extra3    int

	Index int // position in the chart

	handled [MaxPlayers]bool
}

func (e *Event) IsHandled(player int) bool {
	return e.handled[player]
}

// MarkHandled commits the event for player. It returns false if the event
// had already been committed.
func (e *Event) MarkHandled(player int) bool {
	if e.handled[player] {
		return false
	}
	e.handled[player] = true
	return true
}
