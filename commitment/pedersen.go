// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package commitment implements Gargantua's Pedersen commitment scheme,
// generalizing PedersenCommitter from a BN254-backed benchmarking helper
// into the module's one true value-hiding primitive: Commit(v, r) = v*G
// + r*H over Ristretto255.
package commitment

import (
	"sync"

	"github.com/luxfi/gargantua/curve"
)

// Commitment is a Pedersen commitment: a single Ristretto255 point that
// hides a value under a blinding factor.
type Commitment struct {
	point curve.Point
}

// Identity is the commitment to (0, 0), the neutral element under Add.
func Identity() Commitment { return Commitment{point: curve.IdentityPoint()} }

// FromPoint wraps an already-validated point as a commitment, used when
// a commitment arrives on the wire and has already passed
// curve.DecodePoint's canonical-encoding check.
func FromPoint(p curve.Point) Commitment { return Commitment{point: p} }

// Point returns the underlying group element.
func (c Commitment) Point() curve.Point { return c.point }

// Bytes returns the canonical 32-byte encoding.
func (c Commitment) Bytes() []byte { return c.point.Bytes() }

// Equal reports whether two commitments encode the same point. Note this
// is commitment *equality*, not opening equality: two distinct (v,r)
// pairs essentially never collide under the discrete-log assumption, so
// point equality is the only check that makes sense here.
func (c Commitment) Equal(o Commitment) bool { return c.point.Equal(o.point) }

// Committer holds the pair of generators (G, H) and produces/verifies
// Pedersen commitments and their homomorphic combinations. G and H are
// process-wide singletons (curve.BasePoint/curve.H); Committer itself
// only tracks usage statistics.
type Committer struct {
	mu                 sync.Mutex
	totalCommitments   uint64
	totalVerifications uint64
}

// NewCommitter returns a ready-to-use committer.
func NewCommitter() *Committer { return &Committer{} }

// Commit computes C = v*G + r*H.
func (c *Committer) Commit(v, r curve.Scalar) Commitment {
	c.mu.Lock()
	c.totalCommitments++
	c.mu.Unlock()

	vG := curve.MulBase(v)
	rH := curve.H().Mul(r)
	return Commitment{point: vG.Add(rH)}
}

// Open reports whether commitment equals Commit(v, r), i.e. verifies a
// claimed opening. Gargantua's verifier itself never calls this on a
// witness it doesn't already hold (a remote prover's opening is never
// revealed). No instruction in package program calls it; only this
// package's own tests do.
func (c *Committer) Open(commit Commitment, v, r curve.Scalar) bool {
	c.mu.Lock()
	c.totalVerifications++
	c.mu.Unlock()
	return commit.Equal(c.Commit(v, r))
}

// Add returns the homomorphic sum: Commit(a+b, ra+rb) given Commit(a,ra)
// and Commit(b,rb), without knowing any of a, b, ra, rb.
func Add(a, b Commitment) Commitment {
	return Commitment{point: a.point.Add(b.point)}
}

// Sub returns the homomorphic difference.
func Sub(a, b Commitment) Commitment {
	return Commitment{point: a.point.Sub(b.point)}
}

// ScalarMul returns k * Commitment(v, r) = Commitment(kv, kr).
func ScalarMul(k curve.Scalar, c Commitment) Commitment {
	return Commitment{point: c.point.Mul(k)}
}

// Sum folds a slice of commitments into their homomorphic total,
// Commit(sum(v_i), sum(r_i)).
func Sum(cs ...Commitment) Commitment {
	total := Identity()
	for _, c := range cs {
		total = Add(total, c)
	}
	return total
}
