// Package shape implements the rewriting grammar that turns abstract
// volumes into terminal architectural primitives.
//
// A Shape is an immutable tagged value. Rewrite maps one shape to the
// ordered set that replaces it: the first element takes the original's
// slot, the rest are appended by the owner. Primitives flattens a shape
// into render units. Both operations dispatch through per-variant tables
// so the whole rule set can be read in one place.
package shape

import "github.com/ChicagoDave/citadel/pkg/geo"

// Variant discriminates the concrete shape kinds.
type Variant string

const (
	VariantBox           Variant = "box"
	VariantBattlement    Variant = "battlement"
	VariantTurret        Variant = "turret"
	VariantTurretRoof    Variant = "turret_roof"
	VariantWall          Variant = "wall"
	VariantStandardRoof  Variant = "standard_roof"
	VariantStandardBlock Variant = "standard_block"
	VariantFoundation    Variant = "foundation"
	VariantSample        Variant = "sample"
)

// Axis indices into geo.Vec3.
const (
	AxisX = 0
	AxisY = 1
	AxisZ = 2
)

// NoGate marks a wall without an omitted segment.
const NoGate = -1

// Shape is a node in the generative tree. Position is the center of the
// volume and Footprint its extent along each axis. The remaining fields
// are only meaningful for some variants.
type Shape struct {
	Variant   Variant  `json:"variant"`
	Position  geo.Vec3 `json:"position"`
	Footprint geo.Vec3 `json:"footprint"`
	Rotation  geo.Vec3 `json:"rotation"`
	Terminal  bool     `json:"terminal"`
	Kind      Kind     `json:"kind"`
	Texture   Texture  `json:"texture"`

	// Wall
	Thickness float64 `json:"thickness,omitempty"`
	Segments  int     `json:"segments,omitempty"`
	Gate      int     `json:"gate,omitempty"`

	// Battlement, one policy per edge: +Z, +X, -Z, -X.
	Merlons [4]MerlonPolicy `json:"merlons,omitempty"`
}

type rewriteFunc func(s Shape, seed float64) []Shape

type flattenFunc func(s Shape) []Primitive

var rewriteRules = map[Variant]rewriteFunc{
	VariantBox:        rewriteBox,
	VariantBattlement: rewriteBattlement,
	VariantTurret:     rewriteTurret,
	VariantFoundation: rewriteFoundation,
}

var flatteners = map[Variant]flattenFunc{
	VariantBox:           flattenBlock,
	VariantBattlement:    flattenBattlement,
	VariantTurret:        flattenTurret,
	VariantTurretRoof:    flattenTurretRoof,
	VariantWall:          flattenWall,
	VariantStandardRoof:  flattenBlock,
	VariantStandardBlock: flattenBlock,
	VariantFoundation:    flattenBlock,
	VariantSample:        flattenBlock,
}

// Rewrite returns the shapes replacing s. The result always has at least
// one element; terminal shapes and variants without a rule return [s].
func Rewrite(s Shape, seed float64) []Shape {
	if s.Terminal {
		return []Shape{s}
	}
	rule, ok := rewriteRules[s.Variant]
	if !ok {
		return []Shape{s}
	}
	out := rule(s, seed)
	if len(out) == 0 {
		return []Shape{s}
	}
	return out
}

// Primitives flattens s. Calling it on a non-terminal shape yields a
// provisional, coarse result.
func Primitives(s Shape) []Primitive {
	f, ok := flatteners[s.Variant]
	if !ok {
		return nil
	}
	return mustFinite(s.Variant, f(s))
}

// Flatten concatenates the primitives of every shape in order.
func Flatten(shapes []Shape) []Primitive {
	var out []Primitive
	for _, s := range shapes {
		out = append(out, Primitives(s)...)
	}
	return out
}

// NewBox returns a non-terminal building volume.
func NewBox(pos, footprint geo.Vec3) Shape {
	return Shape{
		Variant:   VariantBox,
		Position:  pos,
		Footprint: footprint,
		Kind:      KindCube,
		Texture:   TextureBuilding,
	}
}

// NewStandardBlock returns a terminal cube.
func NewStandardBlock(pos, footprint geo.Vec3, tex Texture) Shape {
	return Shape{
		Variant:   VariantStandardBlock,
		Position:  pos,
		Footprint: footprint,
		Terminal:  true,
		Kind:      KindCube,
		Texture:   tex,
	}
}

// NewStandardRoof returns a terminal roof of the given archetype.
func NewStandardRoof(pos, footprint geo.Vec3, kind Kind) Shape {
	return Shape{
		Variant:   VariantStandardRoof,
		Position:  pos,
		Footprint: footprint,
		Terminal:  true,
		Kind:      kind,
		Texture:   TextureRoof,
	}
}

// NewFoundation returns a site volume that decides its own massing on
// the first rewrite.
func NewFoundation(pos, footprint geo.Vec3) Shape {
	return Shape{
		Variant:   VariantFoundation,
		Position:  pos,
		Footprint: footprint,
		Kind:      KindCube,
		Texture:   TextureFoundation,
	}
}

// NewSample returns a small terminal marker.
func NewSample(pos geo.Vec3) Shape {
	return Shape{
		Variant:   VariantSample,
		Position:  pos,
		Footprint: geo.V3(0.2, 0.2, 0.2),
		Terminal:  true,
		Kind:      KindCube,
		Texture:   TextureLevelGround,
	}
}

func flattenBlock(s Shape) []Primitive {
	return []Primitive{NewPrimitive(s.Kind, s.Position, s.Footprint, s.Rotation, s.Texture)}
}
