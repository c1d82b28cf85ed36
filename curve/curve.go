// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package curve wraps Ristretto255 scalar and point arithmetic for
// Gargantua's verifier: constant-time reduction, canonical encode/decode
// with non-canonical rejection, and the generator set the rest of the
// core (commitments, range proofs, R1CS) builds on.
package curve

import (
	"crypto/subtle"
	"errors"

	"github.com/gtank/ristretto255"
	"github.com/zeebo/blake3"
)

// ErrInvalidScalar is returned when a 32-byte scalar encoding is not a
// canonical reduced representative.
var ErrInvalidScalar = errors.New("curve: non-canonical scalar encoding")

// ErrInvalidPoint is returned when a 32-byte point encoding is not a
// canonical Ristretto255 compressed representative.
var ErrInvalidPoint = errors.New("curve: non-canonical point encoding")

// Scalar is an integer modulo the Ristretto255 prime subgroup order.
type Scalar struct {
	s *ristretto255.Scalar
}

// Point is an element of the Ristretto255 prime-order group.
type Point struct {
	p *ristretto255.Element
}

// ZeroScalar returns the additive identity.
func ZeroScalar() Scalar { return Scalar{s: ristretto255.NewScalar()} }

// OneScalar returns the multiplicative identity.
func OneScalar() Scalar {
	one := ristretto255.NewScalar()
	var b [32]byte
	b[0] = 1
	_ = must(one.SetCanonicalBytes(b[:]))
	return Scalar{s: one}
}

// IdentityPoint returns the group identity element.
func IdentityPoint() Point { return Point{p: ristretto255.NewIdentityElement()} }

// BasePoint returns the canonical generator G.
func BasePoint() Point { return Point{p: ristretto255.NewGeneratorElement()} }

// ScalarFromUint64 encodes a small non-negative integer as a scalar.
func ScalarFromUint64(v uint64) Scalar {
	var b [32]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
	s, err := ristretto255.NewScalar().SetCanonicalBytes(b[:])
	if err != nil {
		// b is always < 2^64 << group order; cannot fail.
		panic(err)
	}
	return Scalar{s: s}
}

// DecodeScalar parses a canonical 32-byte reduced scalar. Non-canonical
// input is rejected rather than silently reduced.
func DecodeScalar(b []byte) (Scalar, error) {
	if len(b) != 32 {
		return Scalar{}, ErrInvalidScalar
	}
	s, err := ristretto255.NewScalar().SetCanonicalBytes(b)
	if err != nil {
		return Scalar{}, ErrInvalidScalar
	}
	return Scalar{s: s}, nil
}

// DecodeWideScalar reduces a 64-byte uniform buffer into a scalar; used
// only for values derived from hashes (transcript challenges), never for
// on-wire scalar fields.
func DecodeWideScalar(b []byte) (Scalar, error) {
	if len(b) != 64 {
		return Scalar{}, ErrInvalidScalar
	}
	s, err := ristretto255.NewScalar().SetUniformBytes(b)
	if err != nil {
		return Scalar{}, ErrInvalidScalar
	}
	return Scalar{s: s}, nil
}

// DecodePoint parses a canonical 32-byte compressed Ristretto255 point.
// Non-canonical encodings are rejected (InvalidCommitment at the
// dispatcher layer).
func DecodePoint(b []byte) (Point, error) {
	if len(b) != 32 {
		return Point{}, ErrInvalidPoint
	}
	p, err := ristretto255.NewIdentityElement().SetCanonicalBytes(b)
	if err != nil {
		return Point{}, ErrInvalidPoint
	}
	// Reject non-canonical encodings: re-encoding must round-trip exactly.
	if subtle.ConstantTimeCompare(p.Bytes(), b) != 1 {
		return Point{}, ErrInvalidPoint
	}
	return Point{p: p}, nil
}

// Bytes returns the canonical 32-byte encoding of the scalar.
func (s Scalar) Bytes() []byte { return s.s.Bytes() }

// Bytes returns the canonical 32-byte compressed encoding of the point.
func (p Point) Bytes() []byte { return p.p.Bytes() }

// Equal reports constant-time scalar equality.
func (s Scalar) Equal(o Scalar) bool { return s.s.Equal(o.s) == 1 }

// Equal reports constant-time point equality.
func (p Point) Equal(o Point) bool { return p.p.Equal(o.p) == 1 }

// IsZero reports whether s is the additive identity, in constant time.
func (s Scalar) IsZero() bool { return s.s.Equal(ristretto255.NewScalar()) == 1 }

// Add returns s + o.
func (s Scalar) Add(o Scalar) Scalar { return Scalar{s: ristretto255.NewScalar().Add(s.s, o.s)} }

// Sub returns s - o.
func (s Scalar) Sub(o Scalar) Scalar {
	return Scalar{s: ristretto255.NewScalar().Subtract(s.s, o.s)}
}

// Mul returns s * o.
func (s Scalar) Mul(o Scalar) Scalar {
	return Scalar{s: ristretto255.NewScalar().Multiply(s.s, o.s)}
}

// Neg returns -s.
func (s Scalar) Neg() Scalar { return Scalar{s: ristretto255.NewScalar().Negate(s.s)} }

// Inv returns the multiplicative inverse of s. Callers must not invert a
// zero scalar; the verifier treats a zero Fiat-Shamir challenge as a hard
// invariant violation before ever reaching this call.
func (s Scalar) Inv() Scalar { return Scalar{s: ristretto255.NewScalar().Invert(s.s)} }

// Add returns p + o.
func (p Point) Add(o Point) Point { return Point{p: ristretto255.NewIdentityElement().Add(p.p, o.p)} }

// Sub returns p - o.
func (p Point) Sub(o Point) Point {
	return Point{p: ristretto255.NewIdentityElement().Subtract(p.p, o.p)}
}

// Neg returns -p.
func (p Point) Neg() Point { return Point{p: ristretto255.NewIdentityElement().Negate(p.p)} }

// Mul returns s*p, the variable-base scalar multiplication.
func (p Point) Mul(s Scalar) Point {
	return Point{p: ristretto255.NewIdentityElement().ScalarMult(s.s, p.p)}
}

// MulBase returns s*G using the library's precomputed generator table.
func MulBase(s Scalar) Point {
	return Point{p: ristretto255.NewIdentityElement().ScalarBaseMult(s.s)}
}

// MSM computes the multi-scalar multiplication sum(scalars[i] * points[i])
// in a single batched call. Callers must not unroll this into a loop of
// individual scalar-muls.
// len(scalars) MUST equal len(points); a handful to a few hundred terms is
// the expected range (range-proof and R1CS verification).
func MSM(scalars []Scalar, points []Point) (Point, error) {
	if len(scalars) != len(points) {
		return Point{}, errors.New("curve: MSM length mismatch")
	}
	if len(scalars) == 0 {
		return IdentityPoint(), nil
	}
	ss := make([]*ristretto255.Scalar, len(scalars))
	pp := make([]*ristretto255.Element, len(points))
	for i := range scalars {
		ss[i] = scalars[i].s
		pp[i] = points[i].p
	}
	result := ristretto255.NewIdentityElement().MultiscalarMult(ss, pp)
	return Point{p: result}, nil
}

// HashToPoint implements a domain-separated Elligator-style map:
// HashToPoint(label, bytes) = map_to_curve(hash(label || bytes)). It is
// constant-time (the underlying SetUniformBytes call is) and always
// returns a valid prime-order element, never an error.
func HashToPoint(label string, data []byte) Point {
	h := blake3.New()
	_, _ = h.Write([]byte(label))
	_, _ = h.Write(data)
	wide := h.Digest().Sum(nil)
	for len(wide) < 64 {
		wide = append(wide, 0)
	}
	p, err := ristretto255.NewIdentityElement().SetUniformBytes(wide[:64])
	if err != nil {
		// SetUniformBytes on exactly 64 bytes never fails.
		panic(err)
	}
	return Point{p: p}
}

func must(s *ristretto255.Scalar, err error) *ristretto255.Scalar {
	if err != nil {
		panic(err)
	}
	return s
}
