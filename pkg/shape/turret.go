package shape

import (
	"math"

	"github.com/ChicagoDave/citadel/pkg/geo"
)

const (
	turretSegments = 12
	turretRoofGrow = 1.2
)

// NewTurret returns a cylindrical tower. Footprint X is the diameter.
func NewTurret(pos, footprint geo.Vec3) Shape {
	return Shape{
		Variant:   VariantTurret,
		Position:  pos,
		Footprint: footprint,
		Kind:      KindWedge,
		Texture:   TextureBuilding,
	}
}

// NewTurretRoof returns a terminal conical roof. Footprint X is the diameter.
func NewTurretRoof(pos, footprint geo.Vec3) Shape {
	return Shape{
		Variant:   VariantTurretRoof,
		Position:  pos,
		Footprint: footprint,
		Terminal:  true,
		Kind:      KindQuarterPyramid,
		Texture:   TextureRoof,
	}
}

// rewriteTurret always caps the turret with a roof 1.2 times its width.
func rewriteTurret(s Shape, _ float64) []Shape {
	d := s.Footprint.X * turretRoofGrow
	top := s.Position.Y + s.Footprint.Y/2
	roof := NewTurretRoof(geo.V3(s.Position.X, top+d/2, s.Position.Z), geo.V3(d, d, s.Footprint.Z*turretRoofGrow))
	roof.Rotation = s.Rotation
	s.Terminal = true
	return []Shape{s, roof}
}

func discArc(s Shape) Arc {
	return Arc{
		Center:      s.Position,
		InnerRadius: 0,
		OuterRadius: s.Footprint.X / 2,
		Height:      s.Footprint.Y,
		Start:       s.Rotation.Y,
		Sweep:       2 * math.Pi,
		Segments:    turretSegments,
		Gate:        NoGate,
		Kind:        s.Kind,
		Texture:     s.Texture,
	}
}

func flattenTurret(s Shape) []Primitive {
	return Tessellate(discArc(s))
}

func flattenTurretRoof(s Shape) []Primitive {
	return Tessellate(discArc(s))
}
