package shape

import (
	"fmt"

	"github.com/ChicagoDave/citadel/pkg/geo"
)

// Kind identifies the geometric archetype a renderer instantiates.
type Kind string

const (
	KindCube           Kind = "cube"
	KindPyramid        Kind = "pyramid"
	KindTent           Kind = "tent"
	KindTriTube        Kind = "tri_tube"
	KindQuarterPyramid Kind = "quarter_pyramid"
	KindSlant          Kind = "slant"
	KindWedge          Kind = "wedge"
	KindQuarterRound   Kind = "quarter_round"
)

// Texture is a surface material hint for the renderer.
type Texture string

const (
	TextureBuilding    Texture = "building"
	TextureRoof        Texture = "roof"
	TextureWall        Texture = "wall"
	TextureFoundation  Texture = "foundation"
	TextureLevelGround Texture = "level_ground"
)

// Primitive is a fully resolved render unit. Adjust holds per-kind slant
// factors; for wedges Adjust[0] is the inner/outer chord ratio that tapers
// the face pointing at the arc center.
type Primitive struct {
	Kind            Kind       `json:"kind"`
	Position        geo.Vec3   `json:"position"`
	Footprint       geo.Vec3   `json:"footprint"`
	Rotation        geo.Vec3   `json:"rotation"`
	ScaleFromCenter bool       `json:"scale_from_center"`
	Texture         Texture    `json:"texture"`
	Adjust          [4]float64 `json:"adjust"`
}

// NewPrimitive returns a center-scaled primitive with neutral adjust factors.
func NewPrimitive(kind Kind, pos, footprint, rot geo.Vec3, tex Texture) Primitive {
	return Primitive{
		Kind:            kind,
		Position:        pos,
		Footprint:       footprint,
		Rotation:        rot,
		ScaleFromCenter: true,
		Texture:         tex,
		Adjust:          [4]float64{1, 1, 1, 1},
	}
}

// IsFinite reports whether every numeric field is finite.
func (p Primitive) IsFinite() bool {
	if !p.Position.IsFinite() || !p.Footprint.IsFinite() || !p.Rotation.IsFinite() {
		return false
	}
	return geo.V3(p.Adjust[0], p.Adjust[1], p.Adjust[2]).IsFinite() &&
		geo.V3(p.Adjust[3], 0, 0).IsFinite()
}

// mustFinite panics when a flattened primitive carries a non-finite value.
// Degenerate arithmetic is a contract violation, never a silent NaN.
func mustFinite(v Variant, ps []Primitive) []Primitive {
	for i, p := range ps {
		if !p.IsFinite() {
			panic(fmt.Sprintf("shape: %s produced non-finite primitive %d: %+v", v, i, p))
		}
	}
	return ps
}
