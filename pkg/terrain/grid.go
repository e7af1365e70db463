package terrain

import (
	"math"

	"github.com/ChicagoDave/citadel/pkg/geo"
)

// Cell addresses one grid cell.
type Cell struct {
	X int `json:"x"`
	Z int `json:"z"`
}

// GridPart aggregates the terrain under one cell.
type GridPart struct {
	MinElevation  float64 `json:"min_elevation"`
	AvgDensity    float64 `json:"avg_density"`
	Roads         []int   `json:"roads,omitempty"`
	Intersections []int   `json:"intersections,omitempty"`
	Street        bool    `json:"street"`
	Highway       bool    `json:"highway"`
	HasBuilding   bool    `json:"has_building"`
}

// Grid is a row-major array of cells anchored at Origin (the minimum
// corner of cell 0,0).
type Grid struct {
	Origin   geo.Vec3
	Width    int
	Depth    int
	CellSize float64

	parts []GridPart
}

// NewGrid samples elevation and density over every cell. Each cell is
// sampled on a samples x samples lattice; the minimum elevation and the
// mean density are kept.
func NewGrid(origin geo.Vec3, width, depth int, cellSize float64, samples int, elevation, density Field) *Grid {
	if samples < 1 {
		samples = 1
	}
	g := &Grid{
		Origin:   origin,
		Width:    width,
		Depth:    depth,
		CellSize: cellSize,
		parts:    make([]GridPart, width*depth),
	}
	step := cellSize / float64(samples)
	for z := 0; z < depth; z++ {
		for x := 0; x < width; x++ {
			minE := math.MaxFloat64
			sum := 0.0
			for sz := 0; sz < samples; sz++ {
				for sx := 0; sx < samples; sx++ {
					wx := origin.X + float64(x)*cellSize + (float64(sx)+0.5)*step
					wz := origin.Z + float64(z)*cellSize + (float64(sz)+0.5)*step
					minE = math.Min(minE, elevation(wx, wz))
					sum += density(wx, wz)
				}
			}
			p := &g.parts[z*width+x]
			p.MinElevation = minE
			p.AvgDensity = sum / float64(samples*samples)
		}
	}
	return g
}

// In reports whether c lies on the grid.
func (g *Grid) In(c Cell) bool {
	return c.X >= 0 && c.Z >= 0 && c.X < g.Width && c.Z < g.Depth
}

// Part returns the aggregate for c, or nil off the grid.
func (g *Grid) Part(c Cell) *GridPart {
	if !g.In(c) {
		return nil
	}
	return &g.parts[c.Z*g.Width+c.X]
}

// CellCenter returns the world XZ center of c.
func (g *Grid) CellCenter(c Cell) geo.Point2D {
	return geo.Pt(
		g.Origin.X+(float64(c.X)+0.5)*g.CellSize,
		g.Origin.Z+(float64(c.Z)+0.5)*g.CellSize,
	)
}

// CellAt returns the cell containing p.
func (g *Grid) CellAt(p geo.Point2D) (Cell, bool) {
	c := Cell{
		X: int(math.Floor((p.X - g.Origin.X) / g.CellSize)),
		Z: int(math.Floor((p.Z - g.Origin.Z) / g.CellSize)),
	}
	return c, g.In(c)
}

// OnLand reports whether the lowest point of c is above water.
func (g *Grid) OnLand(c Cell, waterLevel float64) bool {
	p := g.Part(c)
	return p != nil && p.MinElevation > waterLevel
}

// NearStreet reports whether a minor road lies within radius cells of c.
func (g *Grid) NearStreet(c Cell, radius int) bool {
	return g.anyNear(c, radius, func(p *GridPart) bool { return p.Street })
}

// ClearOfRoads reports whether no road of any kind touches c or its
// eight neighbours.
func (g *Grid) ClearOfRoads(c Cell) bool {
	return !g.anyNear(c, 1, func(p *GridPart) bool { return p.Street || p.Highway })
}

func (g *Grid) anyNear(c Cell, radius int, match func(*GridPart) bool) bool {
	for dz := -radius; dz <= radius; dz++ {
		for dx := -radius; dx <= radius; dx++ {
			if p := g.Part(Cell{c.X + dx, c.Z + dz}); p != nil && match(p) {
				return true
			}
		}
	}
	return false
}
