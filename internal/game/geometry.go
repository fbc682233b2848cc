package game

// Screen geometry in pixels. Arrows scroll upwards: they spawn at
// ArrowInitialY and reach the judgement line at ArrowFinalY.
const (
	ArrowSize           = 16
	ArrowQuarterSize    = ArrowSize / 4
	ArrowFinalY         = 15
	ArrowInitialY       = 160
	ArrowDistance       = ArrowInitialY - ArrowFinalY
	ArrowOffscreenLimit = -13
	HoldFillFinalY      = ArrowFinalY + ArrowSize/2
)

// Pixel overlap between hold borders and the first/last fill segment, per
// direction of a single pad. The artwork of the diagonal arrows is wider.
var (
	holdFirstFillOffsets = [LanesSingle]int{-6, -3, -3, -3, -6}
	holdLastFillOffsets  = [LanesSingle]int{-5, -5, -2, -5, -5}
)

func HoldFirstFillOffset(d Direction) int {
	return holdFirstFillOffsets[d.Single()]
}

func HoldLastFillOffset(d Direction) int {
	return holdLastFillOffsets[d.Single()]
}
