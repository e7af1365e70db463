package shape

import (
	"math"

	"github.com/ChicagoDave/citadel/pkg/geo"
	"github.com/ChicagoDave/citadel/pkg/seq"
)

const (
	skinnyRatio      = 0.33
	rectangularRatio = 0.66
	// BaseDepth is how far the foundation block reaches below ground.
	BaseDepth = 1.0
)

// SiteClass is the massing decision a foundation makes from its aspect ratio.
type SiteClass string

const (
	SiteSkinny      SiteClass = "skinny"
	SiteRectangular SiteClass = "rectangular"
	SiteSquare      SiteClass = "square"
)

// Classify returns the site class of a footprint from the ratio of its
// smaller to larger horizontal extent.
func Classify(footprint geo.Vec3) SiteClass {
	lo := math.Min(footprint.X, footprint.Z)
	hi := math.Max(footprint.X, footprint.Z)
	if hi <= 0 {
		return SiteSquare
	}
	switch r := lo / hi; {
	case r < skinnyRatio:
		return SiteSkinny
	case r < rectangularRatio:
		return SiteRectangular
	default:
		return SiteSquare
	}
}

// rewriteFoundation turns a site into massing plus a below-ground base.
// Rectangular sites have no massing rule yet and stay as they are.
func rewriteFoundation(s Shape, seed float64) []Shape {
	switch Classify(s.Footprint) {
	case SiteSkinny:
		return append(skinnyMassing(s, seed), foundationBase(s))
	case SiteRectangular:
		return []Shape{s}
	default:
		box := NewBox(s.Position, s.Footprint)
		box.Rotation = s.Rotation
		return []Shape{box, foundationBase(s)}
	}
}

// skinnyMassing cuts the long axis into thirds and raises or lowers the
// middle third by up to half the height.
func skinnyMassing(s Shape, seed float64) []Shape {
	axis := AxisX
	if s.Footprint.Z > s.Footprint.X {
		axis = AxisZ
	}
	extent := s.Footprint.Axis(axis)
	third := extent / 3
	start := s.Position.Axis(axis) - extent/2
	bottom := s.Position.Y - s.Footprint.Y/2

	out := make([]Shape, 0, 3)
	for i := 0; i < 3; i++ {
		h := s.Footprint.Y
		if i == 1 {
			h *= 1 + 0.5*seq.RandomSigned(seed)
		}
		pos := s.Position.WithAxis(axis, start+third*(float64(i)+0.5))
		pos.Y = bottom + h/2
		fp := s.Footprint.WithAxis(axis, third)
		fp.Y = h
		b := NewBox(pos, fp)
		b.Rotation = s.Rotation
		out = append(out, b)
	}
	return out
}

func foundationBase(s Shape) Shape {
	bottom := s.Position.Y - s.Footprint.Y/2
	b := NewStandardBlock(
		geo.V3(s.Position.X, bottom-BaseDepth/2, s.Position.Z),
		geo.V3(s.Footprint.X, BaseDepth, s.Footprint.Z),
		TextureFoundation,
	)
	b.Variant = VariantBox
	b.Rotation = s.Rotation
	return b
}
