// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package r1cs verifies the linear facts Transfer and Burn depend on:
// balance conservation, account linkage, balance sufficiency, and
// ownership, evaluated "in the exponent" against hidden commitments.
//
// The expected constraint pattern per operation is fixed ahead of time, a
// small set of point/scalar linear combinations, so rather than building
// a generic sparse-matrix interpreter this package exposes one function
// per fact, each a documented row of the conceptual (A,B,C) system, and a
// BatchCheck that folds every row's equality into a single
// random-linear-combination MSM driven by a transcript challenge rho.
package r1cs

import (
	"errors"

	"github.com/luxfi/gargantua/curve"
)

// ErrConstraintFailed is returned by BatchCheck when the folded identity
// does not hold; the dispatcher narrows this further (balance
// conservation vs. a generic constraint-system failure) using each Row's
// Label.
var ErrConstraintFailed = errors.New("r1cs: constraint system identity failed")

// Term is one sparse (coeff, point) entry of a conceptual matrix row: the
// witness element referenced is always a commitment (or a known public
// point), and Coeff is the corresponding matrix cell.
type Term struct {
	Coeff curve.Scalar
	Point curve.Point
}

// Row is one constraint: LHS is evaluated as a linear combination of
// commitments (the "A·w" side), scaled by a publicly-computable scalar
// (the "B·w" side — a transcript challenge or a prover-revealed sigma
// response, never a hidden value), and must equal RHS, another linear
// combination of commitments (the "C·w" side).
type Row struct {
	Label      string
	LHS        []Term
	Multiplier curve.Scalar
	RHS        []Term
}

// Evaluate returns LHS_sum * Multiplier - RHS_sum as a single point; the
// row holds iff this is the identity.
func (r Row) Evaluate() (curve.Point, error) {
	lhs, err := sumTerms(r.LHS)
	if err != nil {
		return curve.Point{}, err
	}
	rhs, err := sumTerms(r.RHS)
	if err != nil {
		return curve.Point{}, err
	}
	return lhs.Mul(r.Multiplier).Sub(rhs), nil
}

func sumTerms(terms []Term) (curve.Point, error) {
	scalars := make([]curve.Scalar, len(terms))
	points := make([]curve.Point, len(terms))
	for i, t := range terms {
		scalars[i] = t.Coeff
		points[i] = t.Point
	}
	return curve.MSM(scalars, points)
}

// BatchCheck folds every row's (LHS*Multiplier - RHS) into one MSM via
// powers of rho, so the whole constraint system collapses to a single
// "== identity" check, one MSM call regardless of row count. Returns nil
// iff every row holds; the caller (package
// program) still has each Row's Label available to it for diagnostics
// before calling BatchCheck, since a batched failure alone cannot say
// which row broke without re-checking rows individually — callers that
// need to report BalanceConservationFailed vs ArithmeticConstraintFailed
// precisely should evaluate the relevant single row directly instead of
// relying on BatchCheck's verdict.
func BatchCheck(rho curve.Scalar, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	total := curve.IdentityPoint()
	power := curve.OneScalar()
	for _, row := range rows {
		contribution, err := row.Evaluate()
		if err != nil {
			return err
		}
		total = total.Add(contribution.Mul(power))
		power = power.Mul(rho)
	}
	if !total.Equal(curve.IdentityPoint()) {
		return ErrConstraintFailed
	}
	return nil
}

// BalanceConservationRow builds the transfer balance-conservation row:
// sum_i Commit(v_i,r_i) - Commit(v_out,r_out) - Commit(fee,0) = 0.
func BalanceConservationRow(inputs []curve.Point, output, fee curve.Point) Row {
	terms := make([]Term, 0, len(inputs)+2)
	one := curve.OneScalar()
	for _, in := range inputs {
		terms = append(terms, Term{Coeff: one, Point: in})
	}
	terms = append(terms, Term{Coeff: one.Neg(), Point: output})
	terms = append(terms, Term{Coeff: one.Neg(), Point: fee})
	return Row{
		Label:      "balance-conservation",
		LHS:        terms,
		Multiplier: one,
		RHS:        nil,
	}
}

// Account linkage — tying a transfer's claimed input commitment to the
// sender's settled state via the same secret key that controls the
// sender's public key — is not expressible as a Row: the relating scalar
// is a secret the verifier must never learn, so BatchCheck's
// publicly-known Multiplier can't carry it. See VerifyLinkage in
// linkage.go, a dedicated Chaum-Pedersen sigma protocol, for that check.

// BalanceSufficiencyCommitment computes commitment_left - Commit(amount,
// 0), the post-burn balance commitment that must independently pass a
// fresh range-proof check.
func BalanceSufficiencyCommitment(accountLeft curve.Point, amount curve.Scalar) curve.Point {
	return accountLeft.Sub(curve.MulBase(amount))
}
