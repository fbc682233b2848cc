package game

type Direction uint8

const (
	DownLeft Direction = iota
	UpLeft
	Center
	UpRight
	DownRight
)

const (
	// LanesSingle is the number of lanes of a single chart.
	LanesSingle = 5
	// LanesTotal is the number of lanes of a double chart.
	LanesTotal = 10
)

var directionNames = [LanesTotal]string{
	"DOWNLEFT", "UPLEFT", "CENTER", "UPRIGHT", "DOWNRIGHT",
	"DOWNLEFT2", "UPLEFT2", "CENTER2", "UPRIGHT2", "DOWNRIGHT2",
}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return "?"
}

// Single returns the direction inside its own pad (0-4).
func (d Direction) Single() Direction {
	return d % LanesSingle
}

// LaneMask is a bitset over the lanes. Bit 0 is DOWNLEFT of the first pad,
// bit 5 is DOWNLEFT of the second pad.
type LaneMask uint16

func MaskOf(directions ...Direction) LaneMask {
	var m LaneMask
	for _, d := range directions {
		m |= 1 << d
	}
	return m
}

func (m LaneMask) Has(d Direction) bool {
	return m&(1<<d) != 0
}

func (m LaneMask) Count() int {
	n := 0
	for ; m != 0; m &= m - 1 {
		n++
	}
	return n
}

// ForEach calls fn for every lane in ascending order.
func (m LaneMask) ForEach(fn func(Direction)) {
	for d := Direction(0); d < LanesTotal; d++ {
		if m.Has(d) {
			fn(d)
		}
	}
}
