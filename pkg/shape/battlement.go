package shape

import (
	"math"

	"github.com/ChicagoDave/citadel/pkg/geo"
)

// MerlonPolicy controls how merlons are spread along one edge.
type MerlonPolicy string

const (
	// MerlonNone leaves the edge bare.
	MerlonNone MerlonPolicy = "none"
	// MerlonFill puts the first and last merlon flush with the corners.
	MerlonFill MerlonPolicy = "fill"
	// MerlonHalfGap insets both ends by half a gap.
	MerlonHalfGap MerlonPolicy = "half_gap"
	// MerlonDoubleGap drops one merlon and insets both ends by a full gap.
	MerlonDoubleGap MerlonPolicy = "double_gap"
)

// MerlonPolicies lists every policy in draw order.
var MerlonPolicies = []MerlonPolicy{MerlonNone, MerlonFill, MerlonHalfGap, MerlonDoubleGap}

const (
	merlonSize   = 0.3
	merlonHeight = 0.4
)

// NewBattlement returns a crenellated block. It is created non-terminal
// but has no rewrite of its own; owners stop rewriting it through their
// iteration cap.
func NewBattlement(pos, footprint geo.Vec3, merlons [4]MerlonPolicy) Shape {
	return Shape{
		Variant:   VariantBattlement,
		Position:  pos,
		Footprint: footprint,
		Kind:      KindCube,
		Texture:   TextureWall,
		Merlons:   merlons,
	}
}

func rewriteBattlement(s Shape, _ float64) []Shape {
	return []Shape{s}
}

// MerlonOffsets returns merlon centers measured from the start of an edge
// of the given length. Edges too short for a single merlon and a gap get
// none.
func MerlonOffsets(length, size float64, policy MerlonPolicy) []float64 {
	if policy == MerlonNone || policy == "" || size <= 0 || length < size {
		return nil
	}
	n := int(math.Floor(length / (size * 2)))
	if n <= 0 {
		return nil
	}

	var start, pitch float64
	switch policy {
	case MerlonFill:
		if n == 1 {
			return []float64{length / 2}
		}
		gap := (length - float64(n)*size) / float64(n-1)
		start, pitch = size/2, size+gap
	case MerlonHalfGap:
		half := (length - float64(n)*size) / float64(n*2)
		start, pitch = half+size/2, size+half*2
	case MerlonDoubleGap:
		if n > 1 {
			n--
		}
		gap := (length - float64(n)*size) / float64(n+1)
		start, pitch = gap+size/2, size+gap
	default:
		return nil
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*pitch
	}
	return out
}

func flattenBattlement(s Shape) []Primitive {
	out := []Primitive{NewPrimitive(s.Kind, s.Position, s.Footprint, s.Rotation, s.Texture)}

	hx, hz := s.Footprint.X/2, s.Footprint.Z/2
	y := s.Position.Y + s.Footprint.Y/2 + merlonHeight/2
	inset := merlonSize / 2
	center := s.Position.XZ()
	size := geo.V3(merlonSize, merlonHeight, merlonSize)

	// Edge origin and direction in local space for +Z, +X, -Z, -X.
	edges := [4]struct {
		origin geo.Point2D
		dir    geo.Point2D
		length float64
	}{
		{geo.Pt(-hx, hz-inset), geo.Pt(1, 0), s.Footprint.X},
		{geo.Pt(hx-inset, hz), geo.Pt(0, -1), s.Footprint.Z},
		{geo.Pt(hx, -hz+inset), geo.Pt(-1, 0), s.Footprint.X},
		{geo.Pt(-hx+inset, -hz), geo.Pt(0, 1), s.Footprint.Z},
	}
	for side, e := range edges {
		for _, off := range MerlonOffsets(e.length, merlonSize, s.Merlons[side]) {
			local := e.origin.Add(e.dir.Scale(off))
			world := local.Rotate(-s.Rotation.Y).Add(center)
			out = append(out, NewPrimitive(KindCube, geo.V3(world.X, y, world.Z), size, s.Rotation, s.Texture))
		}
	}
	return out
}
