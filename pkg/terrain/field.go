package terrain

import (
	"math"

	"github.com/ChicagoDave/citadel/pkg/seq"
)

// Field samples a continuous scalar over the XZ plane. Elevation and
// density are both fields; the site selector never looks inside them.
type Field func(x, z float64) float64

// Constant returns a field with the same value everywhere.
func Constant(v float64) Field {
	return func(_, _ float64) float64 { return v }
}

// NoiseField returns seeded value noise in [offset, offset+amplitude).
// Scale is the lattice spacing in world units.
func NoiseField(seed, scale, amplitude, offset float64) Field {
	if scale <= 0 {
		scale = 1
	}
	return func(x, z float64) float64 {
		return offset + amplitude*valueNoise(seed, x/scale, z/scale)
	}
}

// valueNoise interpolates hashed lattice values with a smoothstep.
func valueNoise(seed, x, z float64) float64 {
	x0, z0 := math.Floor(x), math.Floor(z)
	u := smooth(x - x0)
	v := smooth(z - z0)

	a := lattice(seed, x0, z0)
	b := lattice(seed, x0+1, z0)
	c := lattice(seed, x0, z0+1)
	d := lattice(seed, x0+1, z0+1)

	top := a + (b-a)*u
	bottom := c + (d-c)*u
	return top + (bottom-top)*v
}

func lattice(seed, x, z float64) float64 {
	return seq.RandomUnit2(x+seed*0.618, z-seed*0.382)
}

func smooth(t float64) float64 {
	return t * t * (3 - 2*t)
}
