// Package city composes the walled, terraced levels of a settlement.
//
// Level geometry depends on sibling levels: a level's ground height
// stacks on the walls below it and its radius stacks on the rings inside
// it. Derived values are cached per level and re-derived in the direction
// an edit propagates.
package city

import (
	"fmt"
	"math"

	"github.com/ChicagoDave/citadel/pkg/geo"
	"github.com/ChicagoDave/citadel/pkg/seq"
	"github.com/ChicagoDave/citadel/pkg/shape"
)

// DefaultLevels is the level count of the reference composition.
const DefaultLevels = 7

const groundThickness = 0.5

// Config holds the uniform parameters every level starts with.
type Config struct {
	Position   geo.Vec3
	Seed       float64
	BaseHeight float64
	Levels     int
	WallHeight float64
	WallWidth  float64
	LevelWidth float64
}

// City owns a fixed-length ordered sequence of levels.
type City struct {
	Position   geo.Vec3
	Seed       float64
	BaseHeight float64

	cfg     Config
	levels  []Level
	derived []Derived
}

// New creates a city and initializes its levels.
func New(cfg Config) *City {
	if cfg.Levels <= 0 {
		cfg.Levels = DefaultLevels
	}
	c := &City{
		Position:   cfg.Position,
		Seed:       cfg.Seed,
		BaseHeight: cfg.BaseHeight,
		cfg:        cfg,
	}
	c.Init()
	return c
}

// Init rebuilds every level bottom-up from the configuration.
func (c *City) Init() {
	c.levels = make([]Level, c.cfg.Levels)
	for i := range c.levels {
		in, out := GatesFor(i)
		c.levels[i] = Level{
			Index:      i,
			WallHeight: c.cfg.WallHeight,
			WallWidth:  c.cfg.WallWidth,
			Width:      c.cfg.LevelWidth,
			Entrance:   in,
			Exit:       out,
		}
	}
	c.derived = make([]Derived, len(c.levels))
	c.rederive(0, len(c.levels)-1)
}

// Len returns the number of levels.
func (c *City) Len() int {
	return len(c.levels)
}

// Level returns a copy of level i.
func (c *City) Level(i int) Level {
	return c.levels[i]
}

// Levels returns a copy of the level sequence.
func (c *City) Levels() []Level {
	out := make([]Level, len(c.levels))
	copy(out, c.levels)
	return out
}

// Derived returns the cached derived values of level i.
func (c *City) Derived(i int) Derived {
	return c.derived[i]
}

// SetWallHeight changes level i's wall height. Heights stack upward, so
// level i and every level above it are re-derived.
func (c *City) SetWallHeight(i int, h float64) error {
	if err := c.check(i); err != nil {
		return err
	}
	c.levels[i].WallHeight = h
	c.rederive(i, len(c.levels)-1)
	return nil
}

// SetWallWidth changes level i's wall width. Radii stack outward, so
// level i and every level below it are re-derived.
func (c *City) SetWallWidth(i int, w float64) error {
	if err := c.check(i); err != nil {
		return err
	}
	c.levels[i].WallWidth = w
	c.rederive(0, i)
	return nil
}

// SetWidth changes level i's ring width, re-deriving level i and below.
func (c *City) SetWidth(i int, w float64) error {
	if err := c.check(i); err != nil {
		return err
	}
	c.levels[i].Width = w
	c.rederive(0, i)
	return nil
}

func (c *City) check(i int) error {
	if i < 0 || i >= len(c.levels) {
		return fmt.Errorf("city: level %d out of range [0,%d)", i, len(c.levels))
	}
	return nil
}

func (c *City) rederive(from, to int) {
	for i := from; i <= to; i++ {
		c.derived[i] = Derive(c.BaseHeight, c.levels, i)
	}
}

// WallShape returns the terminal wall of level i with its gate omitted.
func (c *City) WallShape(i int) shape.Shape {
	l, d := c.levels[i], c.derived[i]
	center := c.Position.Add(geo.V3(0, d.Height+l.WallHeight/2, 0))
	return shape.NewWall(center, d.Radius, l.WallWidth, l.WallHeight, d.Segments, d.GateSegment)
}

// WallBlocks returns the wall wedges of level i.
func (c *City) WallBlocks(i int) []shape.Primitive {
	return shape.Primitives(c.WallShape(i))
}

// GroundBlocks returns the terrace ring between level i's wall and the
// next level up.
func (c *City) GroundBlocks(i int) []shape.Primitive {
	l, d := c.levels[i], c.derived[i]
	inner := 0.0
	if i+1 < len(c.levels) {
		inner = c.derived[i+1].Radius
	}
	return shape.Tessellate(shape.Arc{
		Center:      c.Position.Add(geo.V3(0, d.Height-groundThickness/2, 0)),
		InnerRadius: inner,
		OuterRadius: d.Radius - l.WallWidth,
		Height:      groundThickness,
		Sweep:       2 * math.Pi,
		Segments:    d.Segments,
		Gate:        shape.NoGate,
		Kind:        shape.KindWedge,
		Texture:     shape.TextureLevelGround,
	})
}

// Gatehouse returns the two crenellated towers flanking level i's gate.
// Each tower's merlon policy is drawn from the city seed.
func (c *City) Gatehouse(i int) []shape.Shape {
	l, d := c.levels[i], c.derived[i]
	arc := shape.WallArc(c.WallShape(i))
	mid := d.Radius - l.WallWidth/2
	size := l.WallWidth * 1.5
	h := l.WallHeight * 1.25

	var towers []shape.Shape
	for side, j := range []int{d.GateSegment - 1, d.GateSegment + 1} {
		j = (j + d.Segments) % d.Segments
		p := arc.SegmentCenter(j, mid)
		s := c.Seed + float64(i)*seq.Delta + float64(side)
		policy := shape.MerlonPolicies[seq.RandomInt(len(shape.MerlonPolicies)-1, s)]
		t := shape.NewBattlement(
			geo.V3(p.X, c.Position.Y+d.Height+h/2, p.Z),
			geo.V3(size, h, size),
			[4]shape.MerlonPolicy{policy, policy, policy, policy},
		)
		theta := arc.Start + (float64(j)+0.5)*arc.Step()
		t.Rotation.Y = math.Pi/2 - theta
		towers = append(towers, t)
	}
	return towers
}

// GetBlocks returns the walls, terraces and gatehouses of every level.
func (c *City) GetBlocks() []shape.Primitive {
	var out []shape.Primitive
	for i := range c.levels {
		out = append(out, c.WallBlocks(i)...)
		out = append(out, c.GroundBlocks(i)...)
		out = append(out, shape.Flatten(c.Gatehouse(i))...)
	}
	return out
}
