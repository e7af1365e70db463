package scene

import (
	"fmt"
	"math"
	"time"

	"github.com/ChicagoDave/citadel/pkg/city"
	"github.com/ChicagoDave/citadel/pkg/config"
	"github.com/ChicagoDave/citadel/pkg/geo"
	"github.com/ChicagoDave/citadel/pkg/shape"
	"github.com/ChicagoDave/citadel/pkg/terrain"
)

// Generate builds the city and terrain described by s and assembles them.
func Generate(s *config.Settlement) (*Graph, error) {
	c, err := s.BuildCity()
	if err != nil {
		return nil, fmt.Errorf("building city: %w", err)
	}
	return Assemble(s, c, s.BuildTerrain()), nil
}

// Assemble converts generator outputs into a scene graph. Either of c
// and t may be nil.
func Assemble(s *config.Settlement, c *city.City, t *terrain.Terrain) *Graph {
	g := NewGraph()

	if c != nil {
		assembleCity(c, g)
		g.Metadata.Levels = c.Len()
	}
	if t != nil {
		assembleTerrain(t, g)
		g.Metadata.Buildings = len(t.Buildings())
		g.Metadata.RoadComponents = t.RoadComponents()
	}

	g.Metadata.Version = s.Version
	g.Metadata.Seed = s.Seed
	g.Metadata.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
	g.Metadata.Bounds = computeBounds(g.Entities)

	return g
}

// LevelOwner names the owner of a level's entities.
func LevelOwner(i int) string { return fmt.Sprintf("level-%d", i) }

// BuildingOwner names the owner of a terrain building's entities.
func BuildingOwner(i int) string { return fmt.Sprintf("building-%d", i) }

func assembleCity(c *city.City, g *Graph) {
	for i := 0; i < c.Len(); i++ {
		owner := LevelOwner(i)
		addPrimitives(g, owner, SourceWall, c.WallBlocks(i))
		addPrimitives(g, owner, SourceGround, c.GroundBlocks(i))
		addPrimitives(g, owner, SourceGatehouse, shape.Flatten(c.Gatehouse(i)))
	}
}

func assembleTerrain(t *terrain.Terrain, g *Graph) {
	sites := t.Sites()
	for i, b := range t.Buildings() {
		owner := BuildingOwner(i)
		addPrimitives(g, owner, SourceBuilding, b.GetBlocks())
		g.Footprints = append(g.Footprints, Footprint{Owner: owner, Rect: sites[i].Rect})
	}
}

func addPrimitives(g *Graph, owner string, src Source, ps []shape.Primitive) {
	for n, p := range ps {
		g.Add(Entity{
			ID:        fmt.Sprintf("%s/%s-%d", owner, src, n),
			Owner:     owner,
			Source:    src,
			Primitive: p,
		})
	}
}

// Add appends an entity and updates all group indices.
func (g *Graph) Add(e Entity) {
	g.Entities = append(g.Entities, e)
	id := e.ID

	g.Groups.Owners[e.Owner] = append(g.Groups.Owners[e.Owner], id)
	g.Groups.Sources[e.Source] = append(g.Groups.Sources[e.Source], id)
	g.Groups.Kinds[e.Primitive.Kind] = append(g.Groups.Kinds[e.Primitive.Kind], id)
	g.Groups.Textures[e.Primitive.Texture] = append(g.Groups.Textures[e.Primitive.Texture], id)
}

// extent returns a box that contains p. Rotated primitives use the
// half diagonal of their XZ footprint.
func extent(p shape.Primitive) BoundingBox {
	hx, hz := p.Footprint.X/2, p.Footprint.Z/2
	if p.Rotation.Y != 0 {
		r := math.Hypot(hx, hz)
		hx, hz = r, r
	}
	hy := p.Footprint.Y / 2
	return BoundingBox{
		Min: geo.V3(p.Position.X-hx, p.Position.Y-hy, p.Position.Z-hz),
		Max: geo.V3(p.Position.X+hx, p.Position.Y+hy, p.Position.Z+hz),
	}
}

// computeBounds calculates the AABB of all entities.
func computeBounds(entities []Entity) BoundingBox {
	if len(entities) == 0 {
		return BoundingBox{}
	}
	minV := geo.V3(math.MaxFloat64, math.MaxFloat64, math.MaxFloat64)
	maxV := geo.V3(-math.MaxFloat64, -math.MaxFloat64, -math.MaxFloat64)

	for _, e := range entities {
		b := extent(e.Primitive)
		minV = geo.V3(math.Min(minV.X, b.Min.X), math.Min(minV.Y, b.Min.Y), math.Min(minV.Z, b.Min.Z))
		maxV = geo.V3(math.Max(maxV.X, b.Max.X), math.Max(maxV.Y, b.Max.Y), math.Max(maxV.Z, b.Max.Z))
	}
	return BoundingBox{Min: minV, Max: maxV}
}
