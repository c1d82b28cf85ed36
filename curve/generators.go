// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package curve

import (
	"strconv"
	"sync"
)

// BitWidth is the range-proof bit width n used throughout the core:
// values committed to must lie in [0, 2^BitWidth).
const BitWidth = 32

var (
	generatorsOnce sync.Once
	hGenerator     Point
	uGenerator     Point
	giGenerators   [BitWidth]Point
	hiGenerators   [BitWidth]Point
)

// H returns the second global generator, derived once via
// HashToPoint("gargantua/H", G.encoding) and cached for the lifetime of
// the process (Design Notes: "Precomputation").
func H() Point {
	initGenerators()
	return hGenerator
}

// Gi returns the i'th bit-decomposition generator in G's vector, used by
// the range-proof verifier's aggregated inner-product statement.
func Gi(i int) Point {
	initGenerators()
	return giGenerators[i]
}

// Hi returns the i'th bit-decomposition generator in H's vector.
func Hi(i int) Point {
	initGenerators()
	return hiGenerators[i]
}

// UGenerator returns the auxiliary generator that binds the range
// proof's inner-product argument to t_hat, distinct from G, H and the
// G⃗/H⃗ families.
func UGenerator() Point {
	initGenerators()
	return uGenerator
}

// GiVector returns the full length-n G generator vector.
func GiVector() []Point {
	initGenerators()
	out := make([]Point, BitWidth)
	copy(out, giGenerators[:])
	return out
}

// HiVector returns the full length-n H generator vector.
func HiVector() []Point {
	initGenerators()
	out := make([]Point, BitWidth)
	copy(out, hiGenerators[:])
	return out
}

func initGenerators() {
	generatorsOnce.Do(func() {
		hGenerator = HashToPoint("gargantua/H", BasePoint().Bytes())
		uGenerator = HashToPoint("gargantua/U", BasePoint().Bytes())
		ext := ExtendedGiVector(BitWidth)
		extH := ExtendedHiVector(BitWidth)
		copy(giGenerators[:], ext)
		copy(hiGenerators[:], extH)
	})
}

// ExtendedGiVector derives the first count entries of the G⃗ generator
// family via the same label scheme as the fixed-width cache (labels
// "gargantua/Gi" ++ i), extended past BitWidth for aggregated range
// proofs over more than one value.
func ExtendedGiVector(count int) []Point {
	out := make([]Point, count)
	for i := 0; i < count; i++ {
		out[i] = HashToPoint("gargantua/Gi"+strconv.Itoa(i), BasePoint().Bytes())
	}
	return out
}

// ExtendedHiVector is ExtendedGiVector's H⃗ counterpart.
func ExtendedHiVector(count int) []Point {
	out := make([]Point, count)
	for i := 0; i < count; i++ {
		out[i] = HashToPoint("gargantua/Hi"+strconv.Itoa(i), BasePoint().Bytes())
	}
	return out
}
