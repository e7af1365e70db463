// Package terrain picks building sites on a gridded landscape. Elevation
// and density fields are aggregated per cell, roads are rasterised onto
// the grid, and buildings are grown on cells that are dry, close to a
// street and clear of every road.
package terrain

import (
	"github.com/ChicagoDave/citadel/pkg/building"
	"github.com/ChicagoDave/citadel/pkg/geo"
	"github.com/ChicagoDave/citadel/pkg/seq"
	"github.com/ChicagoDave/citadel/pkg/shape"
)

// Config sizes the grid and tunes placement.
type Config struct {
	Origin            geo.Vec3
	Width             int
	Depth             int
	CellSize          float64
	Samples           int
	WaterLevel        float64
	MinRoadSpacing    float64
	DensityMultiplier float64
	StreetProximity   int
	TargetBuildings   int
	HeightScale       float64
	Seed              float64
	Building          building.Options
}

// DefaultConfig returns a 64x64 grid of unit cells.
func DefaultConfig() Config {
	opts := building.DefaultOptions()
	opts.Composition = building.CompositionFoundation
	return Config{
		Width:             64,
		Depth:             64,
		CellSize:          1,
		Samples:           2,
		WaterLevel:        0,
		MinRoadSpacing:    4,
		DensityMultiplier: 1.5,
		StreetProximity:   3,
		TargetBuildings:   40,
		HeightScale:       1,
		Building:          opts,
	}
}

// Terrain owns the grid, the road network and the placed buildings.
type Terrain struct {
	cfg       Config
	grid      *Grid
	roads     RoadNetwork
	placed    []int
	links     map[int]map[int]bool
	sites     []Site
	buildings []*building.Building
}

// New samples the fields onto a fresh grid. A nil network gets an
// empty SegmentNetwork.
func New(cfg Config, elevation, density Field, roads RoadNetwork) *Terrain {
	if roads == nil {
		roads = NewSegmentNetwork()
	}
	return &Terrain{
		cfg:   cfg,
		grid:  NewGrid(cfg.Origin, cfg.Width, cfg.Depth, cfg.CellSize, cfg.Samples, elevation, density),
		roads: roads,
	}
}

// Config returns the configuration the terrain was built with.
func (t *Terrain) Config() Config {
	return t.cfg
}

// Grid exposes the aggregated cells.
func (t *Terrain) Grid() *Grid {
	return t.grid
}

// AddRoad forwards r to the network and, when placed, marks the cells
// it covers and the cells holding its crossings.
func (t *Terrain) AddRoad(r Road) Placement {
	pl := t.roads.AddSegment(r)
	if !pl.Placed {
		return pl
	}
	t.grid.rasterise(r, pl.ID)
	t.placed = append(t.placed, pl.ID)
	for _, x := range pl.Crossings {
		t.grid.markCrossing(x)
		t.link(pl.ID, x.Road)
	}
	return pl
}

// eligible is the possibility-set membership test.
func (t *Terrain) eligible(c Cell) bool {
	p := t.grid.Part(c)
	if p == nil || p.HasBuilding {
		return false
	}
	return t.grid.OnLand(c, t.cfg.WaterLevel) &&
		t.grid.NearStreet(c, t.cfg.StreetProximity) &&
		t.grid.ClearOfRoads(c)
}

// Possibilities returns every eligible cell in row-major order.
func (t *Terrain) Possibilities() *PossibilitySet {
	set := NewPossibilitySet()
	for z := 0; z < t.grid.Depth; z++ {
		for x := 0; x < t.grid.Width; x++ {
			if c := (Cell{x, z}); t.eligible(c) {
				set.Add(c)
			}
		}
	}
	return set
}

// InitBuildings clears previous placements and grows up to
// TargetBuildings sites. It stops early when no cell remains.
func (t *Terrain) InitBuildings() {
	for i := range t.grid.parts {
		t.grid.parts[i].HasBuilding = false
	}
	t.sites = nil
	t.buildings = nil

	set := t.Possibilities()
	seed := t.cfg.Seed
	for len(t.sites) < t.cfg.TargetBuildings && set.Len() > 0 {
		seed = seq.Next(seed, seq.Delta)
		start := set.At(seq.RandomInt(set.Len()-1, seed))
		set.Remove(start)

		site := t.grow(set, start, seed)
		for _, c := range site.Rect.Cells() {
			t.grid.Part(c).HasBuilding = true
		}
		// Two rings: the site's own one-cell buffer plus room for the
		// next site's buffer, so buffers never share a cell.
		for _, c := range site.Rect.Expand(2).Cells() {
			set.Remove(c)
		}
		t.sites = append(t.sites, site)
		t.buildings = append(t.buildings, t.raise(site))
	}
}

// raise turns a site into a building standing on the site's ground.
func (t *Terrain) raise(s Site) *building.Building {
	cs := t.grid.CellSize
	fp := geo.V3(float64(s.Rect.W)*cs, s.Height, float64(s.Rect.D)*cs)
	pos := geo.V3(
		t.grid.Origin.X+float64(s.Rect.X)*cs+fp.X/2,
		s.Ground+fp.Y/2,
		t.grid.Origin.Z+float64(s.Rect.Z)*cs+fp.Z/2,
	)
	return building.New(pos, fp, geo.Vec3{}, s.Seed, t.cfg.Building)
}

// Sites returns the placed footprints in placement order.
func (t *Terrain) Sites() []Site {
	return t.sites
}

// Buildings returns the placed buildings in placement order.
func (t *Terrain) Buildings() []*building.Building {
	return t.buildings
}

// GetBlocks concatenates every building's primitives.
func (t *Terrain) GetBlocks() []shape.Primitive {
	var out []shape.Primitive
	for _, b := range t.buildings {
		out = append(out, b.GetBlocks()...)
	}
	return out
}

// SampleShapes marks each eligible cell with a small cube at its ground
// elevation. Debug output only.
func (t *Terrain) SampleShapes() []shape.Shape {
	set := t.Possibilities()
	out := make([]shape.Shape, 0, set.Len())
	for _, c := range set.Cells() {
		p := t.grid.CellCenter(c)
		out = append(out, shape.NewSample(geo.V3(p.X, t.grid.Part(c).MinElevation, p.Z)))
	}
	return out
}
