package config

import "github.com/ChicagoDave/citadel/pkg/geo"

// Settlement is the top-level settlement description.
type Settlement struct {
	Version   string       `yaml:"version" json:"version"`
	Seed      float64      `yaml:"seed" json:"seed"`
	City      CityDef      `yaml:"city" json:"city"`
	Terrain   TerrainDef   `yaml:"terrain" json:"terrain"`
	Roads     RoadsDef     `yaml:"roads" json:"roads"`
	Placement PlacementDef `yaml:"placement" json:"placement"`
	Buildings BuildingDef  `yaml:"buildings" json:"buildings"`
}

type CityDef struct {
	Position   geo.Vec3        `yaml:"position" json:"position"`
	BaseHeight float64         `yaml:"base_height" json:"base_height"`
	Levels     int             `yaml:"levels" json:"levels"`
	WallHeight float64         `yaml:"wall_height" json:"wall_height"`
	WallWidth  float64         `yaml:"wall_width" json:"wall_width"`
	LevelWidth float64         `yaml:"level_width" json:"level_width"`
	Overrides  []LevelOverride `yaml:"overrides,omitempty" json:"overrides,omitempty"`
}

// LevelOverride changes one level after the city is initialized. Zero
// fields leave the level as it is.
type LevelOverride struct {
	Index      int     `yaml:"index" json:"index"`
	WallHeight float64 `yaml:"wall_height,omitempty" json:"wall_height,omitempty"`
	WallWidth  float64 `yaml:"wall_width,omitempty" json:"wall_width,omitempty"`
	Width      float64 `yaml:"width,omitempty" json:"width,omitempty"`
}

type TerrainDef struct {
	Origin     geo.Vec3 `yaml:"origin" json:"origin"`
	Width      int      `yaml:"width" json:"width"`
	Depth      int      `yaml:"depth" json:"depth"`
	CellSize   float64  `yaml:"cell_size" json:"cell_size"`
	Samples    int      `yaml:"samples" json:"samples"`
	WaterLevel float64  `yaml:"water_level" json:"water_level"`
	Elevation  NoiseDef `yaml:"elevation" json:"elevation"`
	Density    NoiseDef `yaml:"density" json:"density"`
}

// NoiseDef parameterizes a value-noise field. Seed is added to the
// settlement seed.
type NoiseDef struct {
	Seed      float64 `yaml:"seed" json:"seed"`
	Scale     float64 `yaml:"scale" json:"scale"`
	Amplitude float64 `yaml:"amplitude" json:"amplitude"`
	Offset    float64 `yaml:"offset" json:"offset"`
}

type RoadsDef struct {
	Spacing      int `yaml:"spacing" json:"spacing"`
	HighwayEvery int `yaml:"highway_every" json:"highway_every"`
}

type PlacementDef struct {
	MinRoadSpacing    float64 `yaml:"min_road_spacing" json:"min_road_spacing"`
	DensityMultiplier float64 `yaml:"density_multiplier" json:"density_multiplier"`
	StreetProximity   int     `yaml:"street_proximity" json:"street_proximity"`
	TargetBuildings   int     `yaml:"target_buildings" json:"target_buildings"`
	HeightScale       float64 `yaml:"height_scale" json:"height_scale"`
}

type BuildingDef struct {
	Composition   string  `yaml:"composition" json:"composition"`
	MaxIterations int     `yaml:"max_iterations" json:"max_iterations"`
	SeedDelta     float64 `yaml:"seed_delta" json:"seed_delta"`
}
