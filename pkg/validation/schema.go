package validation

import (
	"fmt"
	"math"

	"github.com/ChicagoDave/citadel/pkg/building"
	"github.com/ChicagoDave/citadel/pkg/config"
)

// MaxIterationCap bounds buildings.max_iterations.
const MaxIterationCap = 1000

// ValidateConfig performs schema-level validation on a loaded settlement.
// It checks structural correctness before any generation runs.
func ValidateConfig(s *config.Settlement) *Report {
	r := NewReport()

	validateCity(s, r)
	validateOverrides(s, r)
	validateTerrain(s, r)
	validateRoads(s, r)
	validatePlacement(s, r)
	validateBuildings(s, r)
	if r.Valid {
		validateFootprints(s, r)
	}

	return r
}

func positive(r *Report, path string, v float64) {
	if !(v > 0) || math.IsInf(v, 0) {
		r.AddError(Result{
			Stage:   StageSchema,
			Message: fmt.Sprintf("%s must be a positive finite number", path),
			Path:    path,
			Got:     v,
			Want:    "> 0",
		})
	}
}

func finite(r *Report, path string, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		r.AddError(Result{
			Stage:   StageSchema,
			Message: fmt.Sprintf("%s must be finite", path),
			Path:    path,
			Got:     v,
		})
	}
}

func atLeast(r *Report, path string, v, min int) {
	if v < min {
		r.AddError(Result{
			Stage:   StageSchema,
			Message: fmt.Sprintf("%s must be at least %d", path, min),
			Path:    path,
			Got:     v,
			Want:    fmt.Sprintf(">= %d", min),
		})
	}
}

func validateCity(s *config.Settlement, r *Report) {
	c := s.City
	atLeast(r, "city.levels", c.Levels, 1)
	positive(r, "city.wall_height", c.WallHeight)
	positive(r, "city.wall_width", c.WallWidth)
	positive(r, "city.level_width", c.LevelWidth)
	finite(r, "city.base_height", c.BaseHeight)
	finite(r, "seed", s.Seed)

	if c.Levels > 12 {
		r.AddWarning(Result{
			Stage:   StageSchema,
			Message: fmt.Sprintf("%d levels produce a very wide outer ring", c.Levels),
			Path:    "city.levels",
			Got:     c.Levels,
			Hints:   []string{"Reduce city.levels or city.level_width"},
		})
	}
}

func validateOverrides(s *config.Settlement, r *Report) {
	for i, o := range s.City.Overrides {
		path := fmt.Sprintf("city.overrides[%d]", i)
		if o.Index < 0 || o.Index >= s.City.Levels {
			r.AddError(Result{
				Stage:   StageSchema,
				Message: fmt.Sprintf("override index %d is not a level", o.Index),
				Path:    path + ".index",
				Got:     o.Index,
				Want:    fmt.Sprintf("0..%d", s.City.Levels-1),
			})
		}
		fields := []struct {
			name string
			v    float64
		}{
			{"wall_height", o.WallHeight},
			{"wall_width", o.WallWidth},
			{"width", o.Width},
		}
		for _, f := range fields {
			if f.v < 0 || math.IsNaN(f.v) || math.IsInf(f.v, 0) {
				r.AddError(Result{
					Stage:   StageSchema,
					Message: fmt.Sprintf("%s.%s must be a non-negative finite number", path, f.name),
					Path:    path + "." + f.name,
					Got:     f.v,
					Want:    ">= 0",
				})
			}
		}
	}
}

func validateTerrain(s *config.Settlement, r *Report) {
	t := s.Terrain
	atLeast(r, "terrain.width", t.Width, 1)
	atLeast(r, "terrain.depth", t.Depth, 1)
	atLeast(r, "terrain.samples", t.Samples, 1)
	positive(r, "terrain.cell_size", t.CellSize)
	finite(r, "terrain.water_level", t.WaterLevel)
	positive(r, "terrain.elevation.scale", t.Elevation.Scale)
	positive(r, "terrain.density.scale", t.Density.Scale)

	if t.Density.Offset+t.Density.Amplitude <= 0 {
		r.AddWarning(Result{
			Stage:   StageSchema,
			Message: "density field is never positive; every site stays 1x1",
			Path:    "terrain.density",
		})
	}
	if t.Elevation.Offset+t.Elevation.Amplitude <= t.WaterLevel {
		r.AddWarning(Result{
			Stage:   StageSchema,
			Message: "elevation never rises above water; no buildings will be placed",
			Path:    "terrain.elevation",
			Related: "terrain.water_level",
		})
	}
}

func validateRoads(s *config.Settlement, r *Report) {
	atLeast(r, "roads.spacing", s.Roads.Spacing, 1)
	atLeast(r, "roads.highway_every", s.Roads.HighwayEvery, 0)
	if s.Roads.HighwayEvery == 1 {
		r.AddWarning(Result{
			Stage:   StageSchema,
			Message: "every road is a highway; no cell is near a street",
			Path:    "roads.highway_every",
			Got:     1,
			Hints:   []string{"Use 0 for no highways or a value above 1"},
		})
	}
}

func validatePlacement(s *config.Settlement, r *Report) {
	p := s.Placement
	positive(r, "placement.min_road_spacing", p.MinRoadSpacing)
	positive(r, "placement.density_multiplier", p.DensityMultiplier)
	positive(r, "placement.height_scale", p.HeightScale)
	atLeast(r, "placement.street_proximity", p.StreetProximity, 0)
	atLeast(r, "placement.target_buildings", p.TargetBuildings, 0)
}

func validateBuildings(s *config.Settlement, r *Report) {
	b := s.Buildings
	if b.MaxIterations < 1 || b.MaxIterations > MaxIterationCap {
		r.AddError(Result{
			Stage:   StageSchema,
			Message: fmt.Sprintf("buildings.max_iterations must be in 1..%d", MaxIterationCap),
			Path:    "buildings.max_iterations",
			Got:     b.MaxIterations,
			Want:    fmt.Sprintf("1..%d", MaxIterationCap),
		})
	}
	finite(r, "buildings.seed_delta", b.SeedDelta)

	known := false
	for _, c := range building.Compositions {
		if string(c) == b.Composition {
			known = true
		}
	}
	if !known {
		names := make([]string, len(building.Compositions))
		for i, c := range building.Compositions {
			names[i] = string(c)
		}
		r.AddError(Result{
			Stage:   StageSchema,
			Message: fmt.Sprintf("unknown building composition %q", b.Composition),
			Path:    "buildings.composition",
			Got:     b.Composition,
			Hints:   names,
		})
	}
}

// validateFootprints warns when the terrain grid reaches inside the
// outer city wall.
func validateFootprints(s *config.Settlement, r *Report) {
	c, err := s.BuildCity()
	if err != nil {
		r.AddError(Result{Stage: StageSchema, Message: err.Error(), Path: "city.overrides"})
		return
	}
	outer := c.Derived(0).Radius
	center := s.City.Position

	t := s.Terrain
	minX, minZ := t.Origin.X, t.Origin.Z
	maxX := minX + float64(t.Width)*t.CellSize
	maxZ := minZ + float64(t.Depth)*t.CellSize
	nx := math.Max(minX, math.Min(center.X, maxX))
	nz := math.Max(minZ, math.Min(center.Z, maxZ))
	if math.Hypot(nx-center.X, nz-center.Z) < outer {
		r.AddWarning(Result{
			Stage:   StageSchema,
			Message: fmt.Sprintf("terrain grid reaches inside the outer wall (radius %.1f)", outer),
			Path:    "terrain.origin",
			Related: "city",
			Hints:   []string{"Move terrain.origin outside the city radius"},
		})
	}
	r.AddInfo(Result{
		Stage:   StageSchema,
		Message: fmt.Sprintf("outer wall radius %.1f", outer),
		Path:    "city",
		Got:     outer,
	})
}
