// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package r1cs

import (
	"errors"

	"github.com/luxfi/gargantua/curve"
	"github.com/luxfi/gargantua/transcript"
)

// ErrSchnorrFailed is raised when a Schnorr proof-of-knowledge does not
// verify; the dispatcher maps this to InvalidRegistrationSignature at
// Register or SigmaProtocolChallengeFailed at Transfer/Burn.
var ErrSchnorrFailed = errors.New("r1cs: schnorr proof of knowledge failed")

// SchnorrProof is a non-interactive proof of knowledge of the discrete
// log sk behind publicKey = sk*G, bound to a transcript statement (so to
// an exact instruction, account, and nonce).
type SchnorrProof struct {
	R        curve.Point // prover's commitment point
	Response curve.Scalar
}

// VerifySchnorr checks g^response == R * publicKey^challenge, where
// challenge is squeezed from tr *after* R has been absorbed, so a
// verifier-chosen challenge cannot be predicted by a dishonest prover.
// Label scopes the proof to its calling context ("register",
// "transfer-input-0-ownership", "burn") so that two Schnorr proofs inside the same instruction can never
// be transposed without changing the transcript.
func VerifySchnorr(tr *transcript.Transcript, label string, publicKey curve.Point, proof SchnorrProof) error {
	tr.AppendPoint(label+"/R", proof.R)
	tr.AppendPoint(label+"/pk", publicKey)
	challenge := tr.ChallengeScalar(label + "/challenge")
	if challenge.IsZero() {
		return ErrSchnorrFailed
	}

	lhs := curve.MulBase(proof.Response)
	rhs := proof.R.Add(publicKey.Mul(challenge))
	if !lhs.Equal(rhs) {
		return ErrSchnorrFailed
	}
	return nil
}
