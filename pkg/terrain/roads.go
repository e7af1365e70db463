package terrain

import (
	"math"

	"github.com/ChicagoDave/citadel/pkg/geo"
)

// Road is one straight road segment.
type Road struct {
	Segment geo.Segment `json:"segment"`
	Highway bool        `json:"highway"`
}

// Crossing records where a newly placed road meets an existing one.
type Crossing struct {
	ID    int         `json:"id"`
	Road  int         `json:"road"`
	Point geo.Point2D `json:"point"`
}

// Placement is the network's answer to AddSegment.
type Placement struct {
	Placed    bool       `json:"placed"`
	ID        int        `json:"id"`
	Crossings []Crossing `json:"crossings,omitempty"`
}

// RoadNetwork decides whether a road may be placed and reports what it
// crossed. The terrain only rasterises what the network accepts.
type RoadNetwork interface {
	AddSegment(r Road) Placement
}

// SegmentNetwork is a flat list of accepted roads. It rejects
// zero-length roads and exact duplicates.
type SegmentNetwork struct {
	roads     []Road
	crossings int
}

// NewSegmentNetwork returns an empty network.
func NewSegmentNetwork() *SegmentNetwork {
	return &SegmentNetwork{}
}

// AddSegment implements RoadNetwork.
func (n *SegmentNetwork) AddSegment(r Road) Placement {
	if r.Segment.Length() < 1e-9 {
		return Placement{}
	}
	for _, existing := range n.roads {
		if sameSegment(existing.Segment, r.Segment) {
			return Placement{}
		}
	}

	id := len(n.roads)
	var hits []Crossing
	for i, existing := range n.roads {
		if p, ok := r.Segment.Intersect(existing.Segment); ok {
			hits = append(hits, Crossing{ID: n.crossings, Road: i, Point: p})
			n.crossings++
		}
	}
	n.roads = append(n.roads, r)
	return Placement{Placed: true, ID: id, Crossings: hits}
}

// Roads returns the accepted roads in placement order.
func (n *SegmentNetwork) Roads() []Road {
	return n.roads
}

func sameSegment(a, b geo.Segment) bool {
	const tol = 1e-9
	same := func(p, q geo.Point2D) bool { return p.Distance(q) < tol }
	return (same(a.Start, b.Start) && same(a.End, b.End)) ||
		(same(a.Start, b.End) && same(a.End, b.Start))
}

// StreetGrid lays roads along cell-center lines every spacing cells in
// both directions. Every highwayEvery-th line is a highway; zero means
// no highways.
func StreetGrid(g *Grid, spacing, highwayEvery int) []Road {
	if spacing < 1 {
		return nil
	}
	minX := g.Origin.X
	minZ := g.Origin.Z
	maxX := minX + float64(g.Width)*g.CellSize
	maxZ := minZ + float64(g.Depth)*g.CellSize

	highway := func(k int) bool { return highwayEvery > 0 && k%highwayEvery == 0 }

	var roads []Road
	for k, z := 0, 0; z < g.Depth; k, z = k+1, z+spacing {
		cz := g.CellCenter(Cell{0, z}).Z
		roads = append(roads, Road{
			Segment: geo.Seg(geo.Pt(minX, cz), geo.Pt(maxX, cz)),
			Highway: highway(k),
		})
	}
	for k, x := 0, 0; x < g.Width; k, x = k+1, x+spacing {
		cx := g.CellCenter(Cell{x, 0}).X
		roads = append(roads, Road{
			Segment: geo.Seg(geo.Pt(cx, minZ), geo.Pt(cx, maxZ)),
			Highway: highway(k),
		})
	}
	return roads
}

// rasterise marks every cell whose center lies within half a cell
// diagonal of the road.
func (g *Grid) rasterise(r Road, id int) {
	reach := g.CellSize * math.Sqrt2 / 2 * (1 - 1e-9)
	lo, _ := g.CellAt(geo.Pt(
		math.Min(r.Segment.Start.X, r.Segment.End.X)-g.CellSize,
		math.Min(r.Segment.Start.Z, r.Segment.End.Z)-g.CellSize,
	))
	hi, _ := g.CellAt(geo.Pt(
		math.Max(r.Segment.Start.X, r.Segment.End.X)+g.CellSize,
		math.Max(r.Segment.Start.Z, r.Segment.End.Z)+g.CellSize,
	))
	for z := max(lo.Z, 0); z <= min(hi.Z, g.Depth-1); z++ {
		for x := max(lo.X, 0); x <= min(hi.X, g.Width-1); x++ {
			c := Cell{x, z}
			if _, d := r.Segment.NearestPoint(g.CellCenter(c)); d > reach {
				continue
			}
			p := g.Part(c)
			p.Roads = append(p.Roads, id)
			if r.Highway {
				p.Highway = true
			} else {
				p.Street = true
			}
		}
	}
}

func (g *Grid) markCrossing(x Crossing) {
	if c, ok := g.CellAt(x.Point); ok {
		p := g.Part(c)
		p.Intersections = append(p.Intersections, x.ID)
	}
}
