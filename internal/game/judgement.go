package game

// FeedbackType is ordered from best to worst, so the combined result of a
// group of arrows is the maximum of their partial results.
type FeedbackType uint8

const (
	Perfect FeedbackType = iota
	Great
	Good
	Bad
	Miss
	Unknown
)

// FeedbackTypes is the number of real grades (Unknown excluded).
const FeedbackTypes = 5

var feedbackNames = [...]string{"PERFECT", "GREAT", "GOOD", "BAD", "MISS", "UNKNOWN"}

func (f FeedbackType) String() string {
	if int(f) < len(feedbackNames) {
		return feedbackNames[f]
	}
	return "UNKNOWN"
}

// Worst returns the worse of two grades.
func Worst(a, b FeedbackType) FeedbackType {
	if a > b {
		return a
	}
	return b
}

// BreaksCombo reports whether the grade resets the combo.
func (f FeedbackType) BreaksCombo() bool {
	return f == Bad || f == Miss
}

// Windows are the timing tolerances in ms. They must be strictly
// increasing: Perfect < Great < Good < Bad < Miss.
type Windows struct {
	Perfect int
	Great   int
	Good    int
	Bad     int
	Miss    int
}

// DefaultWindows are roughly 2, 3, 5, 7 and 9 frames at 59.73 Hz.
func DefaultWindows() Windows {
	return Windows{Perfect: 34, Great: 50, Good: 84, Bad: 117, Miss: 151}
}

func (w Windows) Valid() bool {
	return 0 < w.Perfect && w.Perfect < w.Great && w.Great < w.Good && w.Good < w.Bad && w.Bad < w.Miss
}

// Classify grades an absolute timing error. The second return value is
// false when the error is outside every window and the press must be
// ignored.
func (w Windows) Classify(diff int) (FeedbackType, bool) {
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff < w.Perfect:
		return Perfect, true
	case diff < w.Great:
		return Great, true
	case diff < w.Good:
		return Good, true
	case diff < w.Bad:
		return Bad, true
	case diff < w.Miss:
		return Miss, true
	}
	return Unknown, false
}
