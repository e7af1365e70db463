// Package mesh turns primitives into a watertight preview mesh. Each
// primitive becomes its bounding box solid; the solids are unioned as
// signed distance fields and triangulated with marching cubes.
package mesh

import (
	"errors"
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/ChicagoDave/citadel/pkg/geo"
	"github.com/ChicagoDave/citadel/pkg/shape"
)

// DefaultCells is the marching-cubes resolution along the longest axis.
const DefaultCells = 120

// ErrEmpty is returned when no primitive has a positive volume.
var ErrEmpty = errors.New("no solid primitives")

// Triangle is one facet with its outward normal.
type Triangle struct {
	Normal geo.Vec3
	V      [3]geo.Vec3
}

// Mesh is an unindexed triangle soup.
type Mesh struct {
	Triangles []Triangle
}

// Bounds returns the axis-aligned box of every vertex.
func (m *Mesh) Bounds() (min, max geo.Vec3) {
	if len(m.Triangles) == 0 {
		return geo.Vec3{}, geo.Vec3{}
	}
	min = geo.V3(math.MaxFloat64, math.MaxFloat64, math.MaxFloat64)
	max = geo.V3(-math.MaxFloat64, -math.MaxFloat64, -math.MaxFloat64)
	for _, t := range m.Triangles {
		for _, v := range t.V {
			min = geo.V3(math.Min(min.X, v.X), math.Min(min.Y, v.Y), math.Min(min.Z, v.Z))
			max = geo.V3(math.Max(max.X, v.X), math.Max(max.Y, v.Y), math.Max(max.Z, v.Z))
		}
	}
	return min, max
}

// Solid converts one primitive into a placed box. Primitives with a
// non-positive extent yield nil.
func Solid(p shape.Primitive) (sdf.SDF3, error) {
	fp := p.Footprint
	if fp.X <= 0 || fp.Y <= 0 || fp.Z <= 0 {
		return nil, nil
	}
	box, err := sdf.Box3D(v3.Vec{X: fp.X, Y: fp.Y, Z: fp.Z}, 0)
	if err != nil {
		return nil, fmt.Errorf("box %v: %w", fp, err)
	}
	r := p.Rotation
	m := sdf.Translate3d(v3.Vec{X: p.Position.X, Y: p.Position.Y, Z: p.Position.Z}).
		Mul(sdf.RotateZ(r.Z)).
		Mul(sdf.RotateY(r.Y)).
		Mul(sdf.RotateX(r.X))
	return sdf.Transform3D(box, m), nil
}

// Union builds the union of every primitive's solid.
func Union(ps []shape.Primitive) (sdf.SDF3, error) {
	var solids []sdf.SDF3
	for i, p := range ps {
		if !p.IsFinite() {
			return nil, fmt.Errorf("primitive %d is not finite", i)
		}
		s, err := Solid(p)
		if err != nil {
			return nil, fmt.Errorf("primitive %d: %w", i, err)
		}
		if s != nil {
			solids = append(solids, s)
		}
	}
	switch len(solids) {
	case 0:
		return nil, ErrEmpty
	case 1:
		return solids[0], nil
	}
	return sdf.Union3D(solids...), nil
}

// Build triangulates the union of ps. cells <= 0 uses DefaultCells.
func Build(ps []shape.Primitive, cells int) (*Mesh, error) {
	if cells <= 0 {
		cells = DefaultCells
	}
	s, err := Union(ps)
	if err != nil {
		return nil, err
	}

	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(s, renderer)

	m := &Mesh{Triangles: make([]Triangle, 0, len(triangles))}
	for _, tri := range triangles {
		n := tri.Normal()
		t := Triangle{Normal: geo.V3(n.X, n.Y, n.Z)}
		for j := 0; j < 3; j++ {
			v := tri[j]
			t.V[j] = geo.V3(v.X, v.Y, v.Z)
		}
		m.Triangles = append(m.Triangles, t)
	}
	return m, nil
}
