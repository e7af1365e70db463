package terrain

import (
	"math"
)

// Rect is an axis-aligned block of cells: X,Z is the minimum corner.
type Rect struct {
	X int `json:"x"`
	Z int `json:"z"`
	W int `json:"w"`
	D int `json:"d"`
}

// Expand grows r by n cells on every side.
func (r Rect) Expand(n int) Rect {
	return Rect{X: r.X - n, Z: r.Z - n, W: r.W + 2*n, D: r.D + 2*n}
}

// Intersects reports whether r and o share a cell.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W && r.Z < o.Z+o.D && o.Z < r.Z+r.D
}

// Contains reports whether c lies in r.
func (r Rect) Contains(c Cell) bool {
	return c.X >= r.X && c.X < r.X+r.W && c.Z >= r.Z && c.Z < r.Z+r.D
}

// Cells lists the cells of r row by row.
func (r Rect) Cells() []Cell {
	out := make([]Cell, 0, r.W*r.D)
	for z := r.Z; z < r.Z+r.D; z++ {
		for x := r.X; x < r.X+r.W; x++ {
			out = append(out, Cell{x, z})
		}
	}
	return out
}

// Site is a footprint chosen by the selector.
type Site struct {
	Rect         Rect    `json:"rect"`
	Seed         float64 `json:"seed"`
	MaxFootprint float64 `json:"max_footprint"`
	Height       float64 `json:"height"`
	Ground       float64 `json:"ground"`
}

// growthDirections derives the X and Z growth signs from the integer
// part of the seed: bit 0 picks X, bit 1 picks Z.
func growthDirections(seed float64) (dx, dz int) {
	p := int64(math.Floor(seed))
	dx, dz = 1, 1
	if p&1 != 0 {
		dx = -1
	}
	if p&2 != 0 {
		dz = -1
	}
	return dx, dz
}

// grow extends a 1x1 footprint at start one row or column at a time
// while the strip is wholly in set and eligible, and while the side is
// shorter than the max footprint. The max footprint is recomputed from
// the mean density under the current footprint after every step.
func (t *Terrain) grow(set *PossibilitySet, start Cell, seed float64) Site {
	r := Rect{X: start.X, Z: start.Z, W: 1, D: 1}
	dx, dz := growthDirections(seed)
	maxFP := t.maxFootprint(r)

	// Every productive pass adds a strip; the grid bounds the passes.
	limit := t.grid.Width + t.grid.Depth
	for pass := 0; pass < limit; pass++ {
		grewX := float64(r.W) < maxFP && t.growStrip(set, &r, dx, 0)
		grewZ := float64(r.D) < maxFP && t.growStrip(set, &r, 0, dz)
		if !grewX && !grewZ {
			break
		}
		maxFP = t.maxFootprint(r)
	}

	ground := math.MaxFloat64
	for _, c := range r.Cells() {
		ground = math.Min(ground, t.grid.Part(c).MinElevation)
	}
	return Site{
		Rect:         r,
		Seed:         seed,
		MaxFootprint: maxFP,
		Height:       math.Max(1, maxFP*t.cfg.HeightScale) * t.grid.CellSize,
		Ground:       ground,
	}
}

// growStrip tries to add the column (dx != 0) or row (dz != 0) beside r.
func (t *Terrain) growStrip(set *PossibilitySet, r *Rect, dx, dz int) bool {
	var strip []Cell
	switch {
	case dx > 0:
		strip = Rect{X: r.X + r.W, Z: r.Z, W: 1, D: r.D}.Cells()
	case dx < 0:
		strip = Rect{X: r.X - 1, Z: r.Z, W: 1, D: r.D}.Cells()
	case dz > 0:
		strip = Rect{X: r.X, Z: r.Z + r.D, W: r.W, D: 1}.Cells()
	case dz < 0:
		strip = Rect{X: r.X, Z: r.Z - 1, W: r.W, D: 1}.Cells()
	}
	for _, c := range strip {
		if !set.Has(c) || !t.eligible(c) {
			return false
		}
	}
	for _, c := range strip {
		set.Remove(c)
	}
	switch {
	case dx > 0:
		r.W++
	case dx < 0:
		r.X--
		r.W++
	case dz > 0:
		r.D++
	case dz < 0:
		r.Z--
		r.D++
	}
	return true
}

// maxFootprint is mean density x multiplier x min road spacing.
func (t *Terrain) maxFootprint(r Rect) float64 {
	sum := 0.0
	cells := r.Cells()
	for _, c := range cells {
		sum += t.grid.Part(c).AvgDensity
	}
	return sum / float64(len(cells)) * t.cfg.DensityMultiplier * t.cfg.MinRoadSpacing
}
