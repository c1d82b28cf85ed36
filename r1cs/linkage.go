// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package r1cs

import (
	"errors"

	"github.com/luxfi/gargantua/curve"
	"github.com/luxfi/gargantua/transcript"
)

// ErrLinkageFailed is raised when an account-linkage proof does not
// verify; the dispatcher maps this to ArithmeticConstraintFailed.
var ErrLinkageFailed = errors.New("r1cs: account linkage proof failed")

// LinkageProof is a non-interactive Chaum-Pedersen proof of knowledge of a
// single scalar sk that simultaneously satisfies two linear relations:
// publicKey = sk*G (the same sk the prover's ownership proof is over) and
// target = sk*base, where target and base vary by call site. For account
// linkage, base is the account's settled commitment_right and target is a
// prover-supplied point the caller folds directly into its own state
// update (see program.TransferInput.LinkTarget): the proof establishes
// that target really is sk*commitment_right without the verifier ever
// learning sk.
type LinkageProof struct {
	R1       curve.Point // k*G
	R2       curve.Point // k*base
	Response curve.Scalar
}

// VerifyLinkage checks response*G == R1 + challenge*publicKey and
// response*base == R2 + challenge*target, with challenge squeezed from tr
// after R1 and R2 are absorbed, so a dishonest prover cannot choose R1/R2
// to fit a challenge it already knows. label scopes the proof to its
// calling context, exactly as VerifySchnorr does, so distinct inputs in
// the same instruction bind to distinct transcript positions.
func VerifyLinkage(tr *transcript.Transcript, label string, publicKey, base, target curve.Point, proof LinkageProof) error {
	tr.AppendPoint(label+"/R1", proof.R1)
	tr.AppendPoint(label+"/R2", proof.R2)
	tr.AppendPoint(label+"/pk", publicKey)
	tr.AppendPoint(label+"/base", base)
	tr.AppendPoint(label+"/target", target)
	challenge := tr.ChallengeScalar(label + "/challenge")
	if challenge.IsZero() {
		return ErrLinkageFailed
	}

	lhs1 := curve.MulBase(proof.Response)
	rhs1 := proof.R1.Add(publicKey.Mul(challenge))
	if !lhs1.Equal(rhs1) {
		return ErrLinkageFailed
	}

	lhs2 := base.Mul(proof.Response)
	rhs2 := proof.R2.Add(target.Mul(challenge))
	if !lhs2.Equal(rhs2) {
		return ErrLinkageFailed
	}
	return nil
}
