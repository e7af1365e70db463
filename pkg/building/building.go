// Package building drives the shape grammar for one building: it seeds a
// shape collection and rewrites it until every shape is terminal or the
// iteration cap is reached.
package building

import (
	"math"

	"github.com/ChicagoDave/citadel/pkg/geo"
	"github.com/ChicagoDave/citadel/pkg/seq"
	"github.com/ChicagoDave/citadel/pkg/shape"
)

// Composition selects the shapes a building starts from.
type Composition string

const (
	// CompositionPerimeter is a terminal curved wall under a terminal roof.
	CompositionPerimeter Composition = "perimeter"
	// CompositionBlock is a single Box.
	CompositionBlock Composition = "block"
	// CompositionFoundation is a single Foundation that picks its own massing.
	CompositionFoundation Composition = "foundation"
	// CompositionKeep is a crenellated body with a turret on top.
	CompositionKeep Composition = "keep"
)

// Compositions lists every known composition.
var Compositions = []Composition{CompositionPerimeter, CompositionBlock, CompositionFoundation, CompositionKeep}

const (
	// MaxIterations caps the rewrite loop.
	MaxIterations = 20
	// SeedDelta is added to the running seed before every iteration.
	SeedDelta = 1.23
)

// Options tunes the rewrite loop.
type Options struct {
	Composition   Composition
	MaxIterations int
	SeedDelta     float64
}

// DefaultOptions returns the reference composition and loop constants.
func DefaultOptions() Options {
	return Options{
		Composition:   CompositionPerimeter,
		MaxIterations: MaxIterations,
		SeedDelta:     SeedDelta,
	}
}

// Building owns an ordered shape collection. The collection only grows:
// each rewrite replaces one slot and appends the rest.
type Building struct {
	Position  geo.Vec3
	Footprint geo.Vec3
	Rotation  geo.Vec3
	Seed      float64

	opts       Options
	running    float64
	shapes     []shape.Shape
	iterations int
}

// New creates a building centered on pos and runs generation.
func New(pos, footprint, rot geo.Vec3, seed float64, opts Options) *Building {
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = MaxIterations
	}
	if opts.SeedDelta == 0 {
		opts.SeedDelta = SeedDelta
	}
	if opts.Composition == "" {
		opts.Composition = CompositionPerimeter
	}
	b := &Building{
		Position:  pos,
		Footprint: footprint,
		Rotation:  rot,
		Seed:      seed,
		opts:      opts,
	}
	b.InitShapes()
	return b
}

// InitShapes resets the collection to the composition's seed shapes and
// rewrites it to convergence.
func (b *Building) InitShapes() {
	b.shapes = b.seedShapes()
	b.running = b.Seed
	b.iterations = 0
	for b.Step() {
	}
}

// Step performs one rewrite. It returns false once every shape is
// terminal or the iteration cap has been reached.
func (b *Building) Step() bool {
	if b.iterations >= b.opts.MaxIterations {
		return false
	}
	open := b.nonTerminal()
	if len(open) == 0 {
		return false
	}
	b.running = seq.Next(b.running, b.opts.SeedDelta)
	idx := open[seq.RandomInt(len(open)-1, b.running)]

	out := shape.Rewrite(b.shapes[idx], b.running)
	b.shapes[idx] = out[0]
	b.shapes = append(b.shapes, out[1:]...)
	b.iterations++
	return true
}

// GetBlocks flattens every shape in collection order.
func (b *Building) GetBlocks() []shape.Primitive {
	return shape.Flatten(b.shapes)
}

// Shapes returns a copy of the current collection.
func (b *Building) Shapes() []shape.Shape {
	out := make([]shape.Shape, len(b.shapes))
	copy(out, b.shapes)
	return out
}

// Iterations returns how many rewrites the last generation ran.
func (b *Building) Iterations() int {
	return b.iterations
}

// Converged reports whether every shape is terminal.
func (b *Building) Converged() bool {
	return len(b.nonTerminal()) == 0
}

// Composition returns the composition the building was seeded with.
func (b *Building) Composition() Composition {
	return b.opts.Composition
}

func (b *Building) nonTerminal() []int {
	var idx []int
	for i, s := range b.shapes {
		if !s.Terminal {
			idx = append(idx, i)
		}
	}
	return idx
}

func (b *Building) seedShapes() []shape.Shape {
	p, fp := b.Position, b.Footprint
	switch b.opts.Composition {
	case CompositionBlock:
		box := shape.NewBox(p, fp)
		box.Rotation = b.Rotation
		return []shape.Shape{box}

	case CompositionFoundation:
		f := shape.NewFoundation(p, fp)
		f.Rotation = b.Rotation
		return []shape.Shape{f}

	case CompositionKeep:
		bodyH := fp.Y * 0.6
		bottom := p.Y - fp.Y/2
		fill := shape.MerlonFill
		body := shape.NewBattlement(geo.V3(p.X, bottom+bodyH/2, p.Z), geo.V3(fp.X, bodyH, fp.Z),
			[4]shape.MerlonPolicy{fill, fill, fill, fill})
		body.Rotation = b.Rotation
		d := math.Min(fp.X, fp.Z) * 0.5
		towerH := fp.Y - bodyH
		tower := shape.NewTurret(geo.V3(p.X, bottom+bodyH+towerH/2, p.Z), geo.V3(d, towerH, d))
		tower.Rotation = b.Rotation
		return []shape.Shape{body, tower}

	default:
		r := math.Min(fp.X, fp.Z) / 2
		wall := shape.NewWall(p, r, r/5, fp.Y, perimeterSegments, shape.NoGate)
		wall.Rotation = b.Rotation
		h := r
		roof := shape.NewStandardRoof(geo.V3(p.X, p.Y+fp.Y/2+h/2, p.Z), geo.V3(r*2, h, r*2), shape.KindPyramid)
		roof.Rotation = b.Rotation
		return []shape.Shape{wall, roof}
	}
}

const perimeterSegments = 12
