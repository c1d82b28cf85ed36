// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package r1cs

import (
	"testing"

	"github.com/luxfi/gargantua/curve"
	"github.com/luxfi/gargantua/transcript"
	"github.com/stretchr/testify/require"
)

func TestLinkageRoundTrip(t *testing.T) {
	sk := curve.ScalarFromUint64(54321)
	pub := curve.MulBase(sk)
	base := curve.MulBase(curve.ScalarFromUint64(777)) // stand-in commitment_right
	target := base.Mul(sk)                             // stand-in for the prover-supplied link target

	k := curve.ScalarFromUint64(222)
	r1 := curve.MulBase(k)
	r2 := base.Mul(k)

	proveTr := transcript.New()
	proof := LinkageProof{R1: r1, R2: r2}
	proveTr.AppendPoint("transfer-input-0-linkage/R1", r1)
	proveTr.AppendPoint("transfer-input-0-linkage/R2", r2)
	proveTr.AppendPoint("transfer-input-0-linkage/pk", pub)
	proveTr.AppendPoint("transfer-input-0-linkage/base", base)
	proveTr.AppendPoint("transfer-input-0-linkage/target", target)
	challenge := proveTr.ChallengeScalar("transfer-input-0-linkage/challenge")
	proof.Response = k.Add(challenge.Mul(sk))

	verifyTr := transcript.New()
	require.NoError(t, VerifyLinkage(verifyTr, "transfer-input-0-linkage", pub, base, target, proof))
}

func TestLinkageRejectsWrongTarget(t *testing.T) {
	sk := curve.ScalarFromUint64(54321)
	pub := curve.MulBase(sk)
	base := curve.MulBase(curve.ScalarFromUint64(777))
	target := base.Mul(sk)
	wrongTarget := target.Add(curve.MulBase(curve.OneScalar()))

	k := curve.ScalarFromUint64(222)
	r1 := curve.MulBase(k)
	r2 := base.Mul(k)

	proveTr := transcript.New()
	proof := LinkageProof{R1: r1, R2: r2}
	proveTr.AppendPoint("linkage/R1", r1)
	proveTr.AppendPoint("linkage/R2", r2)
	proveTr.AppendPoint("linkage/pk", pub)
	proveTr.AppendPoint("linkage/base", base)
	proveTr.AppendPoint("linkage/target", target)
	challenge := proveTr.ChallengeScalar("linkage/challenge")
	proof.Response = k.Add(challenge.Mul(sk))

	verifyTr := transcript.New()
	err := VerifyLinkage(verifyTr, "linkage", pub, base, wrongTarget, proof)
	require.ErrorIs(t, err, ErrLinkageFailed)
}

func TestLinkageRejectsMismatchedSecretKeys(t *testing.T) {
	// A prover who controls pub but not the sk behind target*base cannot
	// produce a single response satisfying both relations at once.
	sk := curve.ScalarFromUint64(11)
	pub := curve.MulBase(sk)
	base := curve.MulBase(curve.ScalarFromUint64(777))
	otherSk := curve.ScalarFromUint64(99)
	target := base.Mul(otherSk)

	k := curve.ScalarFromUint64(5)
	r1 := curve.MulBase(k)
	r2 := base.Mul(k)

	proveTr := transcript.New()
	proof := LinkageProof{R1: r1, R2: r2}
	proveTr.AppendPoint("linkage/R1", r1)
	proveTr.AppendPoint("linkage/R2", r2)
	proveTr.AppendPoint("linkage/pk", pub)
	proveTr.AppendPoint("linkage/base", base)
	proveTr.AppendPoint("linkage/target", target)
	challenge := proveTr.ChallengeScalar("linkage/challenge")
	proof.Response = k.Add(challenge.Mul(sk))

	verifyTr := transcript.New()
	err := VerifyLinkage(verifyTr, "linkage", pub, base, target, proof)
	require.ErrorIs(t, err, ErrLinkageFailed)
}
