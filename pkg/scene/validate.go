package scene

import (
	"fmt"

	"github.com/ChicagoDave/citadel/pkg/validation"
)

// boundsTolerance absorbs float drift between extent and stored bounds.
const boundsTolerance = 1e-6

// ValidateGraph performs structural validation on a scene graph.
// It checks entity integrity, group index consistency, bounds enclosure
// and building footprint spacing.
func ValidateGraph(g *Graph) *validation.Report {
	r := validation.NewReport()

	if g == nil {
		r.AddError(validation.Result{
			Stage:   validation.StageSpatial,
			Message: "scene graph is nil",
		})
		return r
	}

	validateEntityIDs(g, r)
	validateFinite(g, r)
	validateGroupIndices(g, r)
	validateGroupMembership(g, r)
	validateBoundsEnclosure(g, r)
	validateEntityDimensions(g, r)
	validateFootprints(g, r)
	validateRoads(g, r)

	if r.Valid {
		r.AddInfo(validation.Result{
			Stage:   validation.StageSpatial,
			Message: fmt.Sprintf("%d entities, %d levels, %d buildings", len(g.Entities), g.Metadata.Levels, g.Metadata.Buildings),
		})
	}
	return r
}

func validateEntityIDs(g *Graph, r *validation.Report) {
	seen := make(map[string]int, len(g.Entities))

	for i, e := range g.Entities {
		if e.ID == "" {
			r.AddError(validation.Result{
				Stage:   validation.StageSpatial,
				Message: fmt.Sprintf("entity at index %d has empty ID", i),
				Path:    fmt.Sprintf("entities[%d].id", i),
				Got:     "",
				Want:    "non-empty string",
			})
			continue
		}
		if prev, exists := seen[e.ID]; exists {
			r.AddError(validation.Result{
				Stage:   validation.StageSpatial,
				Message: fmt.Sprintf("duplicate entity ID %q at indices %d and %d", e.ID, prev, i),
				Path:    fmt.Sprintf("entities[%d].id", i),
				Got:     e.ID,
			})
		}
		seen[e.ID] = i
	}
}

func validateFinite(g *Graph, r *validation.Report) {
	for i, e := range g.Entities {
		if !e.Primitive.IsFinite() {
			r.AddError(validation.Result{
				Stage:   validation.StageSpatial,
				Message: fmt.Sprintf("entity %q has a non-finite value", e.ID),
				Path:    fmt.Sprintf("entities[%d].primitive", i),
				Want:    "finite position, footprint, rotation and adjust",
			})
		}
	}
}

func validateGroupIndices(g *Graph, r *validation.Report) {
	entityIDs := make(map[string]bool, len(g.Entities))
	for _, e := range g.Entities {
		entityIDs[e.ID] = true
	}

	checkGroup := func(groupType, groupName string, ids []string) {
		for _, id := range ids {
			if !entityIDs[id] {
				r.AddError(validation.Result{
					Stage:   validation.StageSpatial,
					Message: fmt.Sprintf("group %s.%s references non-existent entity %q", groupType, groupName, id),
					Path:    fmt.Sprintf("groups.%s.%s", groupType, groupName),
					Got:     id,
					Want:    "existing entity ID",
				})
			}
		}
	}

	for name, ids := range g.Groups.Owners {
		checkGroup("owners", name, ids)
	}
	for name, ids := range g.Groups.Sources {
		checkGroup("sources", string(name), ids)
	}
	for name, ids := range g.Groups.Kinds {
		checkGroup("kinds", string(name), ids)
	}
	for name, ids := range g.Groups.Textures {
		checkGroup("textures", string(name), ids)
	}
}

// members flattens a group map into per-group membership sets.
func members[K ~string](groups map[K][]string) map[string]map[string]bool {
	out := make(map[string]map[string]bool, len(groups))
	for name, ids := range groups {
		m := make(map[string]bool, len(ids))
		for _, id := range ids {
			m[id] = true
		}
		out[string(name)] = m
	}
	return out
}

func validateGroupMembership(g *Graph, r *validation.Report) {
	axes := []struct {
		name    string
		members map[string]map[string]bool
		key     func(Entity) string
	}{
		{"owners", members(g.Groups.Owners), func(e Entity) string { return e.Owner }},
		{"sources", members(g.Groups.Sources), func(e Entity) string { return string(e.Source) }},
		{"kinds", members(g.Groups.Kinds), func(e Entity) string { return string(e.Primitive.Kind) }},
		{"textures", members(g.Groups.Textures), func(e Entity) string { return string(e.Primitive.Texture) }},
	}

	for _, e := range g.Entities {
		if e.ID == "" {
			continue
		}
		for _, ax := range axes {
			k := ax.key(e)
			m, ok := ax.members[k]
			switch {
			case !ok:
				r.AddError(validation.Result{
					Stage:   validation.StageSpatial,
					Message: fmt.Sprintf("entity %q has %s %q but no such group exists", e.ID, ax.name, k),
					Path:    "groups." + ax.name,
					Got:     k,
				})
			case !m[e.ID]:
				r.AddError(validation.Result{
					Stage:   validation.StageSpatial,
					Message: fmt.Sprintf("entity %q has %s %q but is not in that group", e.ID, ax.name, k),
					Path:    fmt.Sprintf("groups.%s.%s", ax.name, k),
					Got:     e.ID,
				})
			}
		}
	}
}

func validateBoundsEnclosure(g *Graph, r *validation.Report) {
	bounds := g.Metadata.Bounds

	for _, e := range g.Entities {
		b := extent(e.Primitive)
		if b.Min.X < bounds.Min.X-boundsTolerance || b.Max.X > bounds.Max.X+boundsTolerance ||
			b.Min.Y < bounds.Min.Y-boundsTolerance || b.Max.Y > bounds.Max.Y+boundsTolerance ||
			b.Min.Z < bounds.Min.Z-boundsTolerance || b.Max.Z > bounds.Max.Z+boundsTolerance {
			r.AddWarning(validation.Result{
				Stage:   validation.StageSpatial,
				Message: fmt.Sprintf("entity %q extends outside scene bounds", e.ID),
				Path:    "metadata.bounds",
				Got:     e.Primitive.Position,
			})
			break
		}
	}
}

func validateEntityDimensions(g *Graph, r *validation.Report) {
	for _, e := range g.Entities {
		fp := e.Primitive.Footprint
		if fp.X <= 0 || fp.Y <= 0 || fp.Z <= 0 {
			r.AddWarning(validation.Result{
				Stage:   validation.StageSpatial,
				Message: fmt.Sprintf("entity %q has zero or negative dimension (%.2f, %.2f, %.2f)", e.ID, fp.X, fp.Y, fp.Z),
				Path:    fmt.Sprintf("entities.%s.primitive.footprint", e.ID),
				Got:     fmt.Sprintf("%.2f x %.2f x %.2f", fp.X, fp.Y, fp.Z),
				Want:    "all dimensions > 0",
			})
		}
	}
}

// validateFootprints checks that the one-cell buffers around placed
// buildings never share a cell.
func validateFootprints(g *Graph, r *validation.Report) {
	for i, a := range g.Footprints {
		buffered := a.Rect.Expand(1)
		for _, b := range g.Footprints[i+1:] {
			if buffered.Intersects(b.Rect.Expand(1)) {
				r.AddError(validation.Result{
					Stage:   validation.StageSpatial,
					Message: fmt.Sprintf("buffer of %s touches the buffer of %s", a.Owner, b.Owner),
					Path:    fmt.Sprintf("footprints[%d]", i),
					Got:     a.Rect,
					Related: b.Owner,
				})
			}
		}
	}
}

func validateRoads(g *Graph, r *validation.Report) {
	if g.Metadata.RoadComponents > 1 {
		r.AddWarning(validation.Result{
			Stage:   validation.StageSpatial,
			Message: fmt.Sprintf("road network splits into %d disconnected groups", g.Metadata.RoadComponents),
			Path:    "metadata.road_components",
			Got:     g.Metadata.RoadComponents,
			Want:    "1",
		})
	}
}
