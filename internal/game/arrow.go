package game

type ArrowType uint8

const (
	Unique ArrowType = iota
	HoldHeadArrow
	HoldHeadExtraFill
	HoldFill
	HoldTailArrow
	HoldTailExtraFill
	HoldFakeHead
)

var arrowTypeNames = [...]string{
	"UNIQUE", "HOLD_HEAD", "HOLD_HEAD_EXTRA_FILL", "HOLD_FILL",
	"HOLD_TAIL", "HOLD_TAIL_EXTRA_FILL", "HOLD_FAKE_HEAD",
}

func (t ArrowType) String() string {
	if int(t) < len(arrowTypeNames) {
		return arrowTypeNames[t]
	}
	return "UNKNOWN"
}

// IsHoldPart reports whether the arrow belongs to a HoldArrow.
func (t ArrowType) IsHoldPart() bool {
	return t >= HoldHeadArrow && t <= HoldTailExtraFill
}

// NoID marks an empty hold or sibling reference.
const NoID = -1

// ArrowLookup resolves arrow ids, usually a pool.
type ArrowLookup interface {
	Get(id int) *Arrow
}

// Arrow is a note instance living in a fixed pool. Arrows hit at the same
// time in several lanes are linked through SiblingID into a closed ring.
type Arrow struct {
	ID        int
	Type      ArrowType
	Direction Direction
	Timestamp int
	HoldID    int
	SiblingID int
	IsFake    bool

	// judgement state
	PartialResult FeedbackType
	IsPressed     bool
	Resolved      bool

	NeedsDiscard bool
}

func NewArrow(id int) *Arrow {
	return &Arrow{ID: id, HoldID: NoID, SiblingID: NoID, PartialResult: Unknown}
}

func (a *Arrow) Initialize(t ArrowType, d Direction, timestamp int) {
	a.Type = t
	a.Direction = d
	a.Timestamp = timestamp
	a.HoldID = NoID
	a.SiblingID = NoID
	a.IsFake = false
	a.PartialResult = Unknown
	a.IsPressed = false
	a.Resolved = false
	a.NeedsDiscard = false
}

func (a *Arrow) InitializeHoldBorder(t ArrowType, d Direction, timestamp int, holdID int) {
	a.Initialize(t, d, timestamp)
	a.HoldID = holdID
}

func (a *Arrow) InitializeHoldFill(d Direction, holdID int) {
	a.Initialize(HoldFill, d, 0)
	a.HoldID = holdID
}

// ScheduleDiscard marks the arrow to be returned to the pool on the next
// frame without being judged.
func (a *Arrow) ScheduleDiscard() {
	a.NeedsDiscard = true
}

// ForAll calls fn with the arrow and then each sibling, stopping once the
// ring returns to the origin.
func (a *Arrow) ForAll(arrows ArrowLookup, fn func(*Arrow)) {
	fn(a)
	if a.SiblingID == NoID {
		return
	}

	for id := a.SiblingID; id != a.ID; {
		current := arrows.Get(id)
		id = current.SiblingID
		fn(current)
	}
}

// Result records the partial grade of this arrow and returns the combined
// grade of its ring. The combination stays Unknown until every sibling has
// a partial grade of its own.
func (a *Arrow) Result(partial FeedbackType, arrows ArrowLookup) FeedbackType {
	a.PartialResult = partial

	result := partial
	a.ForAll(arrows, func(sibling *Arrow) {
		result = Worst(result, sibling.PartialResult)
	})
	return result
}

// Press marks the arrow as hit by the player.
func (a *Arrow) Press() {
	a.IsPressed = true
}

// Link closes arrows into a sibling ring. Groups of one are left alone.
func Link(arrows []*Arrow) {
	if len(arrows) <= 1 {
		return
	}
	for i, arrow := range arrows {
		arrow.SiblingID = arrows[(i+1)%len(arrows)].ID
	}
}
