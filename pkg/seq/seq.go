// Package seq provides the deterministic value source used by every
// generator in citadel. All functions are pure: the same seed always
// yields the same value and no state is kept between calls.
package seq

import "math"

// Delta is the default step between consecutive seeds. Callers keep a
// running seed and advance it by Delta (or their own constant) before
// each draw so that neighbouring draws are decorrelated.
const Delta = 1.2345

// RandomUnit returns a value in [0, 1) derived from seed.
func RandomUnit(seed float64) float64 {
	return fract(math.Sin(seed*12.9898+78.233) * 43758.5453)
}

// RandomUnit2 returns a value in [0, 1) derived from two seeds.
func RandomUnit2(seed, seed2 float64) float64 {
	return fract(math.Sin(seed*12.9898+seed2*78.233) * 43758.5453)
}

// RandomSigned returns a value in [-1, 1) derived from seed.
func RandomSigned(seed float64) float64 {
	return RandomUnit(seed)*2 - 1
}

// RandomInt returns an integer in [0, maxInclusive] derived from seed.
// A negative maxInclusive is treated as 0.
func RandomInt(maxInclusive int, seed float64) int {
	if maxInclusive <= 0 {
		return 0
	}
	n := int(math.Floor(RandomUnit(seed) * float64(maxInclusive+1)))
	if n > maxInclusive {
		n = maxInclusive
	}
	return n
}

// Next advances a running seed by delta.
func Next(seed, delta float64) float64 {
	return seed + delta
}

func fract(x float64) float64 {
	f := x - math.Floor(x)
	if f >= 1 || f < 0 || math.IsNaN(f) {
		return 0
	}
	return f
}
