package game

// HoldNull marks a hold that has not been pressed yet.
const HoldNull = -99999

// HoldArrow is an active hold span. Its body is drawn with a run of
// HOLD_FILL arrows whose count is recomputed every frame.
type HoldArrow struct {
	ID        int
	Direction Direction
	StartTime int
	EndTime   int // 0 while the tail has not been read yet
	IsFake    bool

	FillOffsetSkip    int
	FillOffsetBottom  int
	ActiveFillCount   int
	LastPressTopY     int
	CurrentFillOffset int
}

func NewHoldArrow(id int) *HoldArrow {
	return &HoldArrow{ID: id, LastPressTopY: HoldNull}
}

func (h *HoldArrow) Initialize(d Direction, startTime int) {
	h.Direction = d
	h.StartTime = startTime
	h.EndTime = 0
	h.IsFake = false
	h.FillOffsetSkip = 0
	h.FillOffsetBottom = 0
	h.ActiveFillCount = 0
	h.LastPressTopY = HoldNull
	h.CurrentFillOffset = 0
}

func (h *HoldArrow) HasEnded() bool {
	return h.EndTime != 0
}

// Close sets the tail time. The end never precedes the start.
func (h *HoldArrow) Close(endTime int) {
	if endTime < h.StartTime {
		endTime = h.StartTime
	}
	if endTime == 0 {
		// a zero-length hold at 0 ms still has to read as closed
		endTime = 1
	}
	h.EndTime = endTime
}

// ResetState rewinds the fill layout cursor at the start of a frame.
func (h *HoldArrow) ResetState() {
	h.CurrentFillOffset = h.FillOffsetSkip
}

// UpdateLastPress keeps the highest y the head has reached while pressed.
func (h *HoldArrow) UpdateLastPress(topY int) {
	if h.LastPressTopY == HoldNull || topY < h.LastPressTopY {
		h.LastPressTopY = topY
	}
}

func (h *HoldArrow) WasPressed() bool {
	return h.LastPressTopY != HoldNull
}

// FillSectionLength returns the pixel length of the body that still needs
// fill segments.
func (h *HoldArrow) FillSectionLength(topY, bottomY int) int {
	length := bottomY - (topY + h.FillOffsetSkip)
	if length < 0 {
		return 0
	}
	return length
}
