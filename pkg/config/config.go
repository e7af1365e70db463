// Package config loads settlement descriptions and converts them into the
// parameters of the city, terrain and building generators.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ChicagoDave/citadel/pkg/building"
	"github.com/ChicagoDave/citadel/pkg/city"
	"github.com/ChicagoDave/citadel/pkg/geo"
	"github.com/ChicagoDave/citadel/pkg/terrain"
)

// FileName is the settlement file looked up in a project directory.
const FileName = "settlement.yaml"

// Load reads a settlement from a YAML file and fills unset fields from
// Default.
func Load(path string) (*Settlement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settlement file: %w", err)
	}
	return Parse(data)
}

// Parse decodes settlement YAML and fills unset fields from Default.
// placement.target_buildings is seeded before decoding, so an explicit 0
// is kept and yields a settlement without terrain buildings.
func Parse(data []byte) (*Settlement, error) {
	d := Default()
	s := Settlement{Placement: PlacementDef{TargetBuildings: d.Placement.TargetBuildings}}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing settlement YAML: %w", err)
	}
	s.fillDefaults(d)
	return &s, nil
}

// LoadProject loads settlement.yaml from a project directory.
func LoadProject(projectDir string) (*Settlement, error) {
	return Load(filepath.Join(projectDir, FileName))
}

// Default returns the reference settlement.
func Default() *Settlement {
	return &Settlement{
		Version: "0.1.0",
		City: CityDef{
			Levels:     city.DefaultLevels,
			WallHeight: 4,
			WallWidth:  1,
			LevelWidth: 6,
		},
		Terrain: TerrainDef{
			Origin:    geo.V3(60, 0, -32),
			Width:     64,
			Depth:     64,
			CellSize:  1,
			Samples:   2,
			Elevation: NoiseDef{Scale: 16, Amplitude: 4, Offset: -0.5},
			Density:   NoiseDef{Seed: 1, Scale: 12, Amplitude: 1},
		},
		Roads: RoadsDef{Spacing: 8, HighwayEvery: 3},
		Placement: PlacementDef{
			MinRoadSpacing:    4,
			DensityMultiplier: 1.5,
			StreetProximity:   3,
			TargetBuildings:   40,
			HeightScale:       1,
		},
		Buildings: BuildingDef{
			Composition:   string(building.CompositionFoundation),
			MaxIterations: building.MaxIterations,
			SeedDelta:     building.SeedDelta,
		},
	}
}

// fillDefaults copies d into every zero-valued field. Fields whose zero
// value is meaningful (seed, positions, water level, noise offsets,
// highway spacing, target buildings) are left alone.
func (s *Settlement) fillDefaults(d *Settlement) {
	if s.Version == "" {
		s.Version = d.Version
	}

	c := &s.City
	setInt(&c.Levels, d.City.Levels)
	setFloat(&c.WallHeight, d.City.WallHeight)
	setFloat(&c.WallWidth, d.City.WallWidth)
	setFloat(&c.LevelWidth, d.City.LevelWidth)

	t := &s.Terrain
	setInt(&t.Width, d.Terrain.Width)
	setInt(&t.Depth, d.Terrain.Depth)
	setFloat(&t.CellSize, d.Terrain.CellSize)
	setInt(&t.Samples, d.Terrain.Samples)
	fillNoise(&t.Elevation, d.Terrain.Elevation)
	fillNoise(&t.Density, d.Terrain.Density)

	setInt(&s.Roads.Spacing, d.Roads.Spacing)

	p := &s.Placement
	setFloat(&p.MinRoadSpacing, d.Placement.MinRoadSpacing)
	setFloat(&p.DensityMultiplier, d.Placement.DensityMultiplier)
	setInt(&p.StreetProximity, d.Placement.StreetProximity)
	setFloat(&p.HeightScale, d.Placement.HeightScale)

	b := &s.Buildings
	if b.Composition == "" {
		b.Composition = d.Buildings.Composition
	}
	setInt(&b.MaxIterations, d.Buildings.MaxIterations)
	setFloat(&b.SeedDelta, d.Buildings.SeedDelta)
}

// fillNoise fills a noise block only when it is entirely unset.
func fillNoise(n *NoiseDef, d NoiseDef) {
	if *n == (NoiseDef{}) {
		*n = d
	}
}

func setInt(v *int, d int) {
	if *v == 0 {
		*v = d
	}
}

func setFloat(v *float64, d float64) {
	if *v == 0 {
		*v = d
	}
}

// CityConfig converts the city block.
func (s *Settlement) CityConfig() city.Config {
	return city.Config{
		Position:   s.City.Position,
		Seed:       s.Seed,
		BaseHeight: s.City.BaseHeight,
		Levels:     s.City.Levels,
		WallHeight: s.City.WallHeight,
		WallWidth:  s.City.WallWidth,
		LevelWidth: s.City.LevelWidth,
	}
}

// BuildCity creates the city and applies level overrides in file order.
func (s *Settlement) BuildCity() (*city.City, error) {
	c := city.New(s.CityConfig())
	for _, o := range s.City.Overrides {
		if o.WallHeight != 0 {
			if err := c.SetWallHeight(o.Index, o.WallHeight); err != nil {
				return nil, fmt.Errorf("city override %d: %w", o.Index, err)
			}
		}
		if o.WallWidth != 0 {
			if err := c.SetWallWidth(o.Index, o.WallWidth); err != nil {
				return nil, fmt.Errorf("city override %d: %w", o.Index, err)
			}
		}
		if o.Width != 0 {
			if err := c.SetWidth(o.Index, o.Width); err != nil {
				return nil, fmt.Errorf("city override %d: %w", o.Index, err)
			}
		}
	}
	return c, nil
}

// BuildingOptions converts the buildings block.
func (s *Settlement) BuildingOptions() building.Options {
	return building.Options{
		Composition:   building.Composition(s.Buildings.Composition),
		MaxIterations: s.Buildings.MaxIterations,
		SeedDelta:     s.Buildings.SeedDelta,
	}
}

// TerrainConfig converts the terrain and placement blocks.
func (s *Settlement) TerrainConfig() terrain.Config {
	return terrain.Config{
		Origin:            s.Terrain.Origin,
		Width:             s.Terrain.Width,
		Depth:             s.Terrain.Depth,
		CellSize:          s.Terrain.CellSize,
		Samples:           s.Terrain.Samples,
		WaterLevel:        s.Terrain.WaterLevel,
		MinRoadSpacing:    s.Placement.MinRoadSpacing,
		DensityMultiplier: s.Placement.DensityMultiplier,
		StreetProximity:   s.Placement.StreetProximity,
		TargetBuildings:   s.Placement.TargetBuildings,
		HeightScale:       s.Placement.HeightScale,
		Seed:              s.Seed,
		Building:          s.BuildingOptions(),
	}
}

// Fields returns the elevation and density samplers.
func (s *Settlement) Fields() (elevation, density terrain.Field) {
	e, d := s.Terrain.Elevation, s.Terrain.Density
	return terrain.NoiseField(s.Seed+e.Seed, e.Scale, e.Amplitude, e.Offset),
		terrain.NoiseField(s.Seed+d.Seed, d.Scale, d.Amplitude, d.Offset)
}

// BuildTerrain samples the fields, lays the street grid and places
// buildings.
func (s *Settlement) BuildTerrain() *terrain.Terrain {
	elev, dens := s.Fields()
	t := terrain.New(s.TerrainConfig(), elev, dens, nil)
	for _, r := range terrain.StreetGrid(t.Grid(), s.Roads.Spacing, s.Roads.HighwayEvery) {
		t.AddRoad(r)
	}
	t.InitBuildings()
	return t
}
