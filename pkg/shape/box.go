package shape

import (
	"math"

	"github.com/ChicagoDave/citadel/pkg/geo"
	"github.com/ChicagoDave/citadel/pkg/seq"
)

const (
	// MinSplitExtent is the smallest extent an axis may have and still be split.
	MinSplitExtent = 0.4
	// SplitRatio is the share of the axis given to the new sibling.
	SplitRatio = 0.7

	shrinkFactor  = 0.8
	taperFactor   = 0.75
	turretBands   = 8
	turretBandIdx = 4
	boxRuleCount  = 12
)

// rewriteBox draws a rule code in [0, 12] and applies it.
func rewriteBox(s Shape, seed float64) []Shape {
	switch seq.RandomInt(boxRuleCount, seed) {
	case 0:
		return Split(s, AxisX, SplitRatio)
	case 1:
		return Split(s, AxisY, SplitRatio)
	case 2:
		return Split(s, AxisZ, SplitRatio)
	case 3:
		return AddRoof(s, KindPyramid)
	case 4:
		return AddRoof(s, KindTent)
	case 5:
		return AddRoof(s, KindSlant)
	case 6:
		return []Shape{ShrinkX(s, shrinkFactor)}
	case 7:
		return Taper(s, true, true)
	case 8:
		return Taper(s, true, false)
	case 9:
		return Taper(s, false, true)
	case 10:
		s.Terminal = true
		return []Shape{s}
	default:
		return ToTurret(s)
	}
}

// Split cuts s along axis. The sibling (second result) takes the outer
// ratio share of the extent; the original keeps the rest on the opposite
// side. A vertical split marks the lower part terminal. Axes shorter than
// MinSplitExtent are left alone. A ratio outside (0, 1) falls back to
// SplitRatio.
func Split(s Shape, axis int, ratio float64) []Shape {
	if ratio <= 0 || ratio >= 1 {
		ratio = SplitRatio
	}
	extent := s.Footprint.Axis(axis)
	if extent < MinSplitExtent {
		return []Shape{s}
	}
	center := s.Position.Axis(axis)
	outer := extent * ratio
	inner := extent - outer

	sibling := s
	sibling.Terminal = false
	sibling.Footprint = s.Footprint.WithAxis(axis, outer)
	sibling.Position = s.Position.WithAxis(axis, center+extent/2-outer/2)

	orig := s
	orig.Footprint = s.Footprint.WithAxis(axis, inner)
	orig.Position = s.Position.WithAxis(axis, center-extent/2+inner/2)
	if axis == AxisY {
		orig.Terminal = true
	}
	return []Shape{orig, sibling}
}

// SplitSeeded splits at a ratio in [0.3, 0.7) drawn from seed.
func SplitSeeded(s Shape, axis int, seed float64) []Shape {
	return Split(s, axis, 0.3+0.4*seq.RandomUnit(seed))
}

// AddRoof caps s with a roof whose height is the smaller horizontal extent.
func AddRoof(s Shape, kind Kind) []Shape {
	h := math.Min(s.Footprint.X, s.Footprint.Z)
	pos := geo.V3(s.Position.X, s.Position.Y+s.Footprint.Y/2+h/2, s.Position.Z)
	roof := NewStandardRoof(pos, geo.V3(s.Footprint.X, h, s.Footprint.Z), kind)
	roof.Rotation = s.Rotation
	s.Terminal = true
	return []Shape{s, roof}
}

// ShrinkX scales the X extent about the center.
func ShrinkX(s Shape, factor float64) Shape {
	s.Footprint.X *= factor
	return s
}

// Taper splits s vertically and narrows the upper part. Nothing narrows
// when the vertical split is refused.
func Taper(s Shape, x, z bool) []Shape {
	parts := Split(s, AxisY, SplitRatio)
	if len(parts) < 2 {
		return parts
	}
	upper := parts[1]
	if x {
		upper.Footprint.X *= taperFactor
	}
	if z {
		upper.Footprint.Z *= taperFactor
	}
	parts[1] = upper
	return parts
}

// ToTurret divides s into eight vertical bands: band 0 becomes a terminal
// base, band 1 a tent-shaped transition and bands 4-7 a cylindrical
// turret. Bands 2 and 3 are dropped.
func ToTurret(s Shape) []Shape {
	band := s.Footprint.Y / turretBands
	bottom := s.Position.Y - s.Footprint.Y/2

	base := NewBox(geo.V3(s.Position.X, bottom+band/2, s.Position.Z), geo.V3(s.Footprint.X, band, s.Footprint.Z))
	base.Rotation = s.Rotation
	base.Terminal = true

	trans := NewBox(geo.V3(s.Position.X, bottom+band*1.5, s.Position.Z), geo.V3(s.Footprint.X, band, s.Footprint.Z))
	trans.Rotation = s.Rotation
	trans.Kind = KindTent
	trans.Terminal = true
	if s.Footprint.Z > s.Footprint.X {
		trans.Rotation.Y += math.Pi / 2
		trans.Footprint.X, trans.Footprint.Z = trans.Footprint.Z, trans.Footprint.X
	}

	d := math.Min(s.Footprint.X, s.Footprint.Z)
	h := band * (turretBands - turretBandIdx)
	turret := NewTurret(geo.V3(s.Position.X, bottom+band*turretBandIdx+h/2, s.Position.Z), geo.V3(d, h, d))
	turret.Rotation = s.Rotation

	return []Shape{base, trans, turret}
}
