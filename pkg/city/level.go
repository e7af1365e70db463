package city

import "math"

// GatePosition places a gate on a level's wall.
type GatePosition string

const (
	GateRight  GatePosition = "right"
	GateCenter GatePosition = "center"
	GateLeft   GatePosition = "left"
)

// MinSegments is the fewest wall segments a level may have.
const MinSegments = 10

// Level is one ring of the city. Index 0 is the lowest and widest ring;
// each higher index sits inside and above the previous one.
type Level struct {
	Index      int          `json:"index"`
	WallHeight float64      `json:"wall_height"`
	WallWidth  float64      `json:"wall_width"`
	Width      float64      `json:"width"`
	Entrance   GatePosition `json:"entrance"`
	Exit       GatePosition `json:"exit"`
}

// Derived holds the values a level takes from its siblings.
type Derived struct {
	Radius      float64 `json:"radius"`
	Height      float64 `json:"height"`
	Segments    int     `json:"segments"`
	GateSegment int     `json:"gate_segment"`
}

// GatesFor returns the entrance and exit gate positions for a level index.
// Each level's exit lines up with the next level's entrance.
func GatesFor(index int) (entrance, exit GatePosition) {
	switch {
	case index == 0:
		return GateCenter, GateRight
	case index%2 == 1:
		return GateRight, GateLeft
	default:
		return GateLeft, GateRight
	}
}

// Radius returns the outer radius of level n: its own ring plus every
// ring stacked inside it.
func Radius(levels []Level, n int) float64 {
	r := 0.0
	for i := n; i < len(levels); i++ {
		r += levels[i].WallWidth + levels[i].Width
	}
	return r
}

// Height returns the ground height of level n. Every level between the
// lowest and n raises it by half that level's wall height; level 0 only
// contributes the base.
func Height(base float64, levels []Level, n int) float64 {
	h := base
	for i := 1; i < n && i < len(levels); i++ {
		h += levels[i].WallHeight / 2
	}
	return h
}

// SegmentCount returns the number of wall segments for a radius.
func SegmentCount(radius float64) int {
	n := int(math.Floor(radius / 3))
	if n < MinSegments {
		return MinSegments
	}
	return n
}

// GateSegment returns the wall segment index a gate occupies.
func GateSegment(pos GatePosition, segments int) int {
	switch pos {
	case GateRight:
		return int(math.Floor(float64(segments) * 0.9))
	case GateLeft:
		return int(math.Floor(float64(segments) * 0.1))
	default:
		return segments / 2
	}
}

// Derive computes every derived value of level n from the level sequence.
func Derive(base float64, levels []Level, n int) Derived {
	r := Radius(levels, n)
	segs := SegmentCount(r)
	return Derived{
		Radius:      r,
		Height:      Height(base, levels, n),
		Segments:    segs,
		GateSegment: GateSegment(levels[n].Entrance, segs),
	}
}
