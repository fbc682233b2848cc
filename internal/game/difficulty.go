package game

type Difficulty uint8

const (
	Normal Difficulty = iota
	Hard
	Crazy
	Numeric
)

var difficultyNames = map[Difficulty]string{
	Normal:  "NORMAL",
	Hard:    "HARD",
	Crazy:   "CRAZY",
	Numeric: "NUMERIC",
}

func (d Difficulty) String() string {
	if name, ok := difficultyNames[d]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsLibraryType reports whether d is one of the unlockable library types
// exchanged during multiplayer negotiation.
func (d Difficulty) IsLibraryType() bool {
	return d >= Normal && d <= Crazy
}
