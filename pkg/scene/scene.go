// Package scene assembles city and terrain output into one flat graph of
// primitives with group indices, and validates the result.
package scene

import (
	"github.com/ChicagoDave/citadel/pkg/geo"
	"github.com/ChicagoDave/citadel/pkg/shape"
	"github.com/ChicagoDave/citadel/pkg/terrain"
)

// Source identifies which generator produced an entity.
type Source string

const (
	SourceWall      Source = "wall"
	SourceGround    Source = "ground"
	SourceGatehouse Source = "gatehouse"
	SourceBuilding  Source = "building"
)

// BoundingBox defines an axis-aligned bounding box.
type BoundingBox struct {
	Min geo.Vec3 `json:"min"`
	Max geo.Vec3 `json:"max"`
}

// Entity is one primitive in the scene graph.
type Entity struct {
	ID        string          `json:"id"`
	Owner     string          `json:"owner"`
	Source    Source          `json:"source"`
	Primitive shape.Primitive `json:"primitive"`
}

// Footprint is the cell rectangle a terrain building occupies.
type Footprint struct {
	Owner string       `json:"owner"`
	Rect  terrain.Rect `json:"rect"`
}

// Graph is the complete generated settlement.
type Graph struct {
	Metadata   Metadata    `json:"metadata"`
	Entities   []Entity    `json:"entities"`
	Groups     Groups      `json:"groups"`
	Footprints []Footprint `json:"footprints"`
}

// Metadata holds scene-level information.
type Metadata struct {
	Version        string      `json:"version"`
	Seed           float64     `json:"seed"`
	GeneratedAt    string      `json:"generated_at"`
	Levels         int         `json:"levels"`
	Buildings      int         `json:"buildings"`
	RoadComponents int         `json:"road_components"`
	Bounds         BoundingBox `json:"bounds"`
}

// Groups organizes entity IDs by various axes for fast filtering.
type Groups struct {
	Owners   map[string][]string        `json:"owners"`
	Sources  map[Source][]string        `json:"sources"`
	Kinds    map[shape.Kind][]string    `json:"kinds"`
	Textures map[shape.Texture][]string `json:"textures"`
}

// NewGraph creates an empty scene graph.
func NewGraph() *Graph {
	return &Graph{
		Entities:   []Entity{},
		Footprints: []Footprint{},
		Groups: Groups{
			Owners:   make(map[string][]string),
			Sources:  make(map[Source][]string),
			Kinds:    make(map[shape.Kind][]string),
			Textures: make(map[shape.Texture][]string),
		},
	}
}

// Primitives returns the entities' primitives in graph order.
func (g *Graph) Primitives() []shape.Primitive {
	out := make([]shape.Primitive, len(g.Entities))
	for i, e := range g.Entities {
		out[i] = e.Primitive
	}
	return out
}

// Owner returns the entities belonging to owner, in graph order.
func (g *Graph) Owner(owner string) []Entity {
	ids := g.Groups.Owners[owner]
	if len(ids) == 0 {
		return nil
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []Entity
	for _, e := range g.Entities {
		if want[e.ID] {
			out = append(out, e)
		}
	}
	return out
}
