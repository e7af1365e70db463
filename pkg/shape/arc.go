package shape

import (
	"math"

	"github.com/ChicagoDave/citadel/pkg/geo"
)

// Arc describes a ring (or solid disc when InnerRadius is 0) cut into
// equal wedges. Center is the ring center at mid-height.
type Arc struct {
	Center      geo.Vec3
	InnerRadius float64
	OuterRadius float64
	Height      float64
	Start       float64 // radians
	Sweep       float64 // radians
	Segments    int
	Gate        int // segment left out, or NoGate
	Kind        Kind
	Texture     Texture
}

// Step returns the angular width of one segment.
func (a Arc) Step() float64 {
	if a.Segments < 1 {
		return 0
	}
	return a.Sweep / float64(a.Segments)
}

// Tessellate emits one wedge per segment. Each wedge is as wide as the
// outer chord and Adjust[0] carries the inner/outer chord ratio so the
// renderer narrows the inner face. Arcs whose step reaches half a turn
// cannot be tessellated and yield nothing.
func Tessellate(a Arc) []Primitive {
	step := a.Step()
	if step == 0 || math.Abs(step) >= math.Pi || a.OuterRadius <= 0 {
		return nil
	}
	inner := math.Max(0, math.Min(a.InnerRadius, a.OuterRadius))
	halfTan := math.Tan(math.Abs(step) / 2)
	outerChord := 2 * a.OuterRadius * halfTan
	innerChord := 2 * inner * halfTan
	ratio := innerChord / outerChord
	depth := a.OuterRadius - inner
	mid := (a.OuterRadius + inner) / 2

	out := make([]Primitive, 0, a.Segments)
	for i := 0; i < a.Segments; i++ {
		if i == a.Gate {
			continue
		}
		theta := a.Start + (float64(i)+0.5)*step
		pos := a.Center.Add(geo.V3(math.Cos(theta)*mid, 0, math.Sin(theta)*mid))
		p := NewPrimitive(a.Kind, pos, geo.V3(outerChord, a.Height, depth), geo.V3(0, math.Pi/2-theta, 0), a.Texture)
		p.Adjust[0] = ratio
		out = append(out, p)
	}
	return out
}

// SegmentCenter returns the XZ center of segment i at the given radius.
func (a Arc) SegmentCenter(i int, radius float64) geo.Point2D {
	theta := a.Start + (float64(i)+0.5)*a.Step()
	return geo.Pt(a.Center.X+math.Cos(theta)*radius, a.Center.Z+math.Sin(theta)*radius)
}

// NewWall returns a terminal full-circle wall. Footprint X and Z hold the
// outer diameter; Y holds the wall height.
func NewWall(center geo.Vec3, outerRadius, thickness, height float64, segments, gate int) Shape {
	return Shape{
		Variant:   VariantWall,
		Position:  center,
		Footprint: geo.V3(outerRadius*2, height, outerRadius*2),
		Terminal:  true,
		Kind:      KindWedge,
		Texture:   TextureWall,
		Thickness: thickness,
		Segments:  segments,
		Gate:      gate,
	}
}

// WallArc returns the tessellation parameters of a wall shape.
func WallArc(s Shape) Arc {
	outer := s.Footprint.X / 2
	return Arc{
		Center:      s.Position,
		InnerRadius: outer - s.Thickness,
		OuterRadius: outer,
		Height:      s.Footprint.Y,
		Start:       s.Rotation.Y,
		Sweep:       2 * math.Pi,
		Segments:    s.Segments,
		Gate:        s.Gate,
		Kind:        s.Kind,
		Texture:     s.Texture,
	}
}

func flattenWall(s Shape) []Primitive {
	return Tessellate(WallArc(s))
}
