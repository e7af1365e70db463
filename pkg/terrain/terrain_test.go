package terrain

import (
	"math"
	"reflect"
	"testing"

	"github.com/ChicagoDave/citadel/pkg/geo"
)

func testConfig(target int) Config {
	cfg := DefaultConfig()
	cfg.Width = 32
	cfg.Depth = 32
	cfg.TargetBuildings = target
	cfg.Seed = 7
	return cfg
}

func newTestTerrain(cfg Config, elevation, density Field) *Terrain {
	t := New(cfg, elevation, density, nil)
	for _, r := range StreetGrid(t.Grid(), 8, 0) {
		t.AddRoad(r)
	}
	return t
}

func TestPossibilitySet(t *testing.T) {
	a, b, c := Cell{0, 0}, Cell{1, 0}, Cell{2, 0}
	set := NewPossibilitySet(a, b, c, a)
	if set.Len() != 3 {
		t.Fatalf("Len = %d, want 3", set.Len())
	}
	if !set.Remove(a) {
		t.Fatal("Remove(a) = false, want true")
	}
	if set.Remove(a) {
		t.Error("second Remove(a) = true, want false")
	}
	if set.At(0) != c {
		t.Errorf("At(0) = %v, want %v after swap-remove", set.At(0), c)
	}
	if !set.Has(b) || set.Has(a) {
		t.Errorf("Has(b) = %v Has(a) = %v", set.Has(b), set.Has(a))
	}
}

func TestGrowthDirections(t *testing.T) {
	tests := []struct {
		seed   float64
		dx, dz int
	}{
		{0.5, 1, 1},
		{1.2, -1, 1},
		{2.9, 1, -1},
		{3.0, -1, -1},
		{-0.5, -1, -1},
	}
	for _, tt := range tests {
		dx, dz := growthDirections(tt.seed)
		if dx != tt.dx || dz != tt.dz {
			t.Errorf("growthDirections(%v) = (%d, %d), want (%d, %d)", tt.seed, dx, dz, tt.dx, tt.dz)
		}
	}
}

func TestGrow(t *testing.T) {
	tests := []struct {
		name    string
		seed    float64
		blocked []Cell
		want    Rect
	}{
		{"toward positive", 0.5, nil, Rect{X: 12, Z: 11, W: 3, D: 4}},
		{"toward negative shifts origin", 3.5, nil, Rect{X: 10, Z: 10, W: 3, D: 2}},
		{"stale cell stops the strip", 3.5, []Cell{{11, 11}}, Rect{X: 12, Z: 10, W: 1, D: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ter := newTestTerrain(testConfig(0), Constant(1), Constant(1))
			set := ter.Possibilities()
			start := Cell{12, 11}
			set.Remove(start)
			// Blocked cells stay in the set but are no longer eligible.
			for _, c := range tt.blocked {
				if !set.Has(c) {
					t.Fatalf("fixture cell %v not in set", c)
				}
				ter.Grid().Part(c).HasBuilding = true
			}

			site := ter.grow(set, start, tt.seed)
			if site.Rect != tt.want {
				t.Errorf("rect = %+v, want %+v", site.Rect, tt.want)
			}
			for _, c := range site.Rect.Cells() {
				if set.Has(c) {
					t.Errorf("consumed cell %v still in set", c)
				}
			}
			for _, c := range tt.blocked {
				if !set.Has(c) {
					t.Errorf("refused cell %v was removed from set", c)
				}
			}
		})
	}
}

func TestGridAggregation(t *testing.T) {
	elev := func(x, _ float64) float64 { return x }
	dens := func(_, z float64) float64 { return z }
	g := NewGrid(geo.Vec3{}, 4, 4, 1, 2, elev, dens)

	if got := g.Part(Cell{3, 0}).MinElevation; math.Abs(got-3.25) > 1e-9 {
		t.Errorf("MinElevation = %v, want 3.25", got)
	}
	if got := g.Part(Cell{0, 2}).AvgDensity; math.Abs(got-2.5) > 1e-9 {
		t.Errorf("AvgDensity = %v, want 2.5", got)
	}
	if g.Part(Cell{4, 0}) != nil {
		t.Error("Part off the grid should be nil")
	}
	if c, ok := g.CellAt(geo.Pt(2.5, 1.2)); !ok || c != (Cell{2, 1}) {
		t.Errorf("CellAt = %v %v, want {2 1} true", c, ok)
	}
}

func TestNoiseField(t *testing.T) {
	f := NoiseField(3, 8, 2, -1)
	g := NoiseField(3, 8, 2, -1)
	for i := 0; i < 200; i++ {
		x, z := float64(i)*0.37, float64(i)*1.13
		v := f(x, z)
		if v < -1 || v >= 1 {
			t.Fatalf("noise(%v, %v) = %v, out of [-1, 1)", x, z, v)
		}
		if v != g(x, z) {
			t.Fatalf("noise not deterministic at (%v, %v)", x, z)
		}
	}
}

func TestAddRoadRasterises(t *testing.T) {
	cfg := testConfig(0)
	cfg.Width, cfg.Depth = 10, 10
	ter := New(cfg, Constant(1), Constant(1), nil)

	h := Road{Segment: geo.Seg(geo.Pt(0, 5.5), geo.Pt(10, 5.5))}
	v := Road{Segment: geo.Seg(geo.Pt(3.5, 0), geo.Pt(3.5, 10)), Highway: true}
	if pl := ter.AddRoad(h); !pl.Placed || len(pl.Crossings) != 0 {
		t.Fatalf("first road placement = %+v", pl)
	}
	pl := ter.AddRoad(v)
	if !pl.Placed || len(pl.Crossings) != 1 {
		t.Fatalf("second road placement = %+v, want one crossing", pl)
	}

	g := ter.Grid()
	for x := 0; x < 10; x++ {
		if !g.Part(Cell{x, 5}).Street {
			t.Errorf("cell (%d,5) not marked street", x)
		}
		if g.Part(Cell{x, 4}).Street || g.Part(Cell{x, 6}).Street {
			t.Errorf("street leaked into neighbouring row at x=%d", x)
		}
	}
	for z := 0; z < 10; z++ {
		if !g.Part(Cell{3, z}).Highway {
			t.Errorf("cell (3,%d) not marked highway", z)
		}
	}
	if got := g.Part(Cell{3, 5}).Intersections; len(got) != 1 {
		t.Errorf("crossing cell intersections = %v, want one", got)
	}
}

func TestAddRoadRejected(t *testing.T) {
	cfg := testConfig(0)
	ter := New(cfg, Constant(1), Constant(1), nil)

	if pl := ter.AddRoad(Road{Segment: geo.Seg(geo.Pt(2, 2), geo.Pt(2, 2))}); pl.Placed {
		t.Error("zero-length road was placed")
	}
	r := Road{Segment: geo.Seg(geo.Pt(0, 4.5), geo.Pt(32, 4.5))}
	ter.AddRoad(r)
	if pl := ter.AddRoad(Road{Segment: geo.Seg(r.Segment.End, r.Segment.Start)}); pl.Placed {
		t.Error("duplicate road was placed")
	}
	if got := ter.Grid().Part(Cell{2, 2}).Roads; len(got) != 0 {
		t.Errorf("rejected road marked cells: %v", got)
	}
}

// Every cell in the set satisfies the membership predicate computed
// straight from the grid, and every such cell is in the set.
func TestPossibilitiesMatchEligibility(t *testing.T) {
	ter := newTestTerrain(testConfig(0), NoiseField(1, 6, 3, -0.5), Constant(1))
	set := ter.Possibilities()
	g := ter.Grid()

	want := 0
	for z := 0; z < g.Depth; z++ {
		for x := 0; x < g.Width; x++ {
			c := Cell{x, z}
			ok := g.Part(c).MinElevation > 0 && roadFree(g, c, 1) && hasStreet(g, c, 3)
			if ok {
				want++
			}
			if set.Has(c) != ok {
				t.Errorf("cell %v: in set = %v, eligible = %v", c, set.Has(c), ok)
			}
		}
	}
	if want == 0 {
		t.Fatal("fixture produced no eligible cells")
	}
}

func roadFree(g *Grid, c Cell, r int) bool {
	for dz := -r; dz <= r; dz++ {
		for dx := -r; dx <= r; dx++ {
			if p := g.Part(Cell{c.X + dx, c.Z + dz}); p != nil && len(p.Roads) > 0 {
				return false
			}
		}
	}
	return true
}

func hasStreet(g *Grid, c Cell, r int) bool {
	for dz := -r; dz <= r; dz++ {
		for dx := -r; dx <= r; dx++ {
			if p := g.Part(Cell{c.X + dx, c.Z + dz}); p != nil && p.Street {
				return true
			}
		}
	}
	return false
}

func TestInitBuildingsNoOverlap(t *testing.T) {
	ter := newTestTerrain(testConfig(100), Constant(1), NoiseField(2, 5, 1, 0))
	ter.InitBuildings()
	sites := ter.Sites()
	if len(sites) < 2 {
		t.Fatalf("placed %d sites, want at least 2", len(sites))
	}
	for i := range sites {
		for j := range sites {
			if i != j && sites[i].Rect.Expand(1).Intersects(sites[j].Rect.Expand(1)) {
				t.Errorf("buffers of site %d %+v and site %d %+v touch", i, sites[i].Rect, j, sites[j].Rect)
			}
		}
	}
	t.Logf("placed %d sites", len(sites))
}

func TestSitesOnEligibleCells(t *testing.T) {
	cfg := testConfig(100)
	elev := NoiseField(4, 6, 3, -0.5)
	ter := newTestTerrain(cfg, elev, Constant(1))
	ter.InitBuildings()

	fresh := newTestTerrain(cfg, elev, Constant(1)).Possibilities()
	for _, s := range ter.Sites() {
		for _, c := range s.Rect.Cells() {
			if !fresh.Has(c) {
				t.Errorf("site %+v covers ineligible cell %v", s.Rect, c)
			}
			if !ter.Grid().Part(c).HasBuilding {
				t.Errorf("cell %v not marked HasBuilding", c)
			}
		}
	}
}

func TestFootprintWithinMax(t *testing.T) {
	ter := newTestTerrain(testConfig(100), Constant(1), Constant(1))
	ter.InitBuildings()
	// density 1 x 1.5 x 4
	for _, s := range ter.Sites() {
		if s.Rect.W > 6 || s.Rect.D > 6 {
			t.Errorf("site %+v exceeds max footprint 6", s.Rect)
		}
		if s.MaxFootprint != 6 {
			t.Errorf("MaxFootprint = %v, want 6", s.MaxFootprint)
		}
	}
}

func TestInitBuildingsEmptySet(t *testing.T) {
	tests := []struct {
		name  string
		elev  Field
		roads bool
	}{
		{"under water", Constant(-1), true},
		{"no roads", Constant(1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ter := New(testConfig(10), tt.elev, Constant(1), nil)
			if tt.roads {
				for _, r := range StreetGrid(ter.Grid(), 8, 0) {
					ter.AddRoad(r)
				}
			}
			ter.InitBuildings()
			if n := len(ter.Buildings()); n != 0 {
				t.Errorf("placed %d buildings, want 0", n)
			}
			if n := len(ter.GetBlocks()); n != 0 {
				t.Errorf("GetBlocks returned %d primitives, want 0", n)
			}
		})
	}
}

func TestTargetBuildings(t *testing.T) {
	ter := newTestTerrain(testConfig(3), Constant(1), Constant(1))
	ter.InitBuildings()
	if n := len(ter.Buildings()); n != 3 {
		t.Errorf("placed %d buildings, want 3", n)
	}
}

func TestInitBuildingsDeterministic(t *testing.T) {
	cfg := testConfig(20)
	a := newTestTerrain(cfg, NoiseField(5, 6, 3, -0.5), NoiseField(6, 4, 1, 0))
	b := newTestTerrain(cfg, NoiseField(5, 6, 3, -0.5), NoiseField(6, 4, 1, 0))
	a.InitBuildings()
	b.InitBuildings()
	if !reflect.DeepEqual(a.Sites(), b.Sites()) {
		t.Fatal("same inputs produced different sites")
	}
	first := a.Sites()
	a.InitBuildings()
	if !reflect.DeepEqual(first, a.Sites()) {
		t.Error("re-running InitBuildings changed the sites")
	}
	if !reflect.DeepEqual(a.GetBlocks(), b.GetBlocks()) {
		t.Error("same inputs produced different primitives")
	}
}

func TestBuildingMatchesSite(t *testing.T) {
	ter := newTestTerrain(testConfig(5), Constant(2), Constant(1))
	ter.InitBuildings()
	for i, b := range ter.Buildings() {
		s := ter.Sites()[i]
		if b.Footprint.X != float64(s.Rect.W) || b.Footprint.Z != float64(s.Rect.D) {
			t.Errorf("building %d footprint %v, site %+v", i, b.Footprint, s.Rect)
		}
		if bottom := b.Position.Y - b.Footprint.Y/2; math.Abs(bottom-2) > 1e-9 {
			t.Errorf("building %d bottom = %v, want ground 2", i, bottom)
		}
		for _, p := range b.GetBlocks() {
			if !p.IsFinite() {
				t.Fatalf("building %d produced non-finite primitive %+v", i, p)
			}
		}
	}
}

func TestSampleShapes(t *testing.T) {
	ter := newTestTerrain(testConfig(0), Constant(1), Constant(1))
	if got, want := len(ter.SampleShapes()), ter.Possibilities().Len(); got != want {
		t.Errorf("SampleShapes = %d, want %d", got, want)
	}
}

func TestRoadConnectivity(t *testing.T) {
	tr := New(testConfig(0), Constant(1), Constant(1), nil)
	if n := tr.RoadComponents(); n != 0 {
		t.Errorf("components with no roads = %d, want 0", n)
	}

	tr.AddRoad(Road{Segment: geo.Seg(geo.Pt(0, 2), geo.Pt(10, 2))})
	tr.AddRoad(Road{Segment: geo.Seg(geo.Pt(0, 6), geo.Pt(10, 6))})
	if n := tr.RoadComponents(); n != 2 {
		t.Errorf("components of two parallel roads = %d, want 2", n)
	}

	tr.AddRoad(Road{Segment: geo.Seg(geo.Pt(3, 0), geo.Pt(3, 10))})
	if n := tr.RoadComponents(); n != 1 {
		t.Errorf("components after joining road = %d, want 1", n)
	}

	want := map[int][]int{0: {2}, 1: {2}, 2: {0, 1}}
	if got := tr.Connectivity(); !reflect.DeepEqual(got, want) {
		t.Errorf("Connectivity = %v, want %v", got, want)
	}
}

func TestStreetGridConnected(t *testing.T) {
	tr := newTestTerrain(testConfig(0), Constant(1), Constant(1))
	if n := tr.RoadComponents(); n != 1 {
		t.Errorf("street grid components = %d, want 1", n)
	}
}
