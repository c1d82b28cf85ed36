// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package transcript implements Gargantua's Fiat-Shamir transcript: an
// append-only keyed sponge that binds every challenge to every prior
// protocol message, so the verifier can reproduce exactly what an honest
// prover absorbed and reject any reorder or omission.
package transcript

import (
	"encoding/binary"

	"github.com/codahale/thyrse"
	"github.com/luxfi/gargantua/curve"
)

// DomainSeparator is the transcript's fixed keying label, shared by every
// Gargantua instruction so that Gargantua challenges never coincide with
// those of a transcript keyed for another protocol. It is the same for
// every deployment, so it does not by itself separate deployments.
const DomainSeparator = "GARGANTUA-v1"

// Transcript wraps a thyrse keyed sponge with Gargantua's label vocabulary.
type Transcript struct {
	t *thyrse.Transcript
}

// New starts a fresh transcript keyed by the fixed domain separator.
func New() *Transcript {
	return &Transcript{t: thyrse.New(DomainSeparator)}
}

// AppendBytes absorbs a labeled byte string.
func (tr *Transcript) AppendBytes(label string, b []byte) {
	tr.t.Mix(label, b)
}

// AppendPoint absorbs a labeled group element's canonical encoding.
func (tr *Transcript) AppendPoint(label string, p curve.Point) {
	tr.t.Mix(label, p.Bytes())
}

// AppendScalar absorbs a labeled scalar's canonical encoding.
func (tr *Transcript) AppendScalar(label string, s curve.Scalar) {
	tr.t.Mix(label, s.Bytes())
}

// AppendUint64 absorbs a labeled little-endian 64-bit integer (epoch
// indices, nonces' numeric components, bit-widths).
func (tr *Transcript) AppendUint64(label string, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	tr.t.Mix(label, b[:])
}

// ChallengeScalar squeezes a labeled challenge and reduces it to a
// Ristretto255 scalar. A zero challenge is a hard rejection for the
// caller to enforce, not something this method silently retries or
// reinterprets.
func (tr *Transcript) ChallengeScalar(label string) curve.Scalar {
	wide := tr.t.Derive(label, nil, 64)
	s, err := curve.DecodeWideScalar(wide)
	if err != nil {
		// SetUniformBytes on exactly 64 bytes cannot fail.
		panic(err)
	}
	return s
}

// Fork splits the transcript into two independent sub-transcripts keyed
// by distinct role labels, without perturbing the parent's state. The
// verifiers in this module do not call it: the range-proof verifier
// derives its inner-product challenges on the transcript it is given.
func (tr *Transcript) Fork(label string, a, b []byte) (*Transcript, *Transcript) {
	ta, tb := tr.t.Fork(label, a, b)
	return &Transcript{t: ta}, &Transcript{t: tb}
}
