// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package account implements Gargantua's persisted record types and its
// epoch/rollover engine: GlobalState, ZerosolAccount, PendingAccount, and
// NonceState, each a fixed-width little-endian structure, plus the
// deterministic fold of pending into settled at an epoch boundary.
package account

import (
	"encoding/binary"
	"errors"

	"github.com/luxfi/gargantua/curve"
)

// ErrInvalidAccountData is returned when a persisted record fails its
// fixed-width structural validation.
var ErrInvalidAccountData = errors.New("account: malformed persisted record")

// ExternalID is an opaque 32-byte external identity — a ledger account
// key or similar — used for GlobalState's authority and token_mint
// fields. The core never interprets these bytes; they are only compared
// for equality by the external collaborator.
type ExternalID [32]byte

// GlobalState is the singleton deployment-wide record.
// Encoded length: 96 bytes (32+32+8+8+8+8).
type GlobalState struct {
	Authority  ExternalID
	TokenMint  ExternalID
	EpochLength uint64 // seconds, positive
	Fee         uint64 // non-negative, charged per transfer

	// LastGlobalUpdate doubles as the fixed genesis timestamp used in
	// epoch(now) = (now - genesis) / epoch_length. No instruction other
	// than Initialize writes this field; it is treated as write-once. See
	// DESIGN.md.
	LastGlobalUpdate uint64
	CurrentEpoch     uint64
}

// GlobalStateSize is the fixed encoded length.
const GlobalStateSize = 96

// Marshal encodes the record in the fixed little-endian layout.
func (g *GlobalState) Marshal() []byte {
	buf := make([]byte, GlobalStateSize)
	copy(buf[0:32], g.Authority[:])
	copy(buf[32:64], g.TokenMint[:])
	binary.LittleEndian.PutUint64(buf[64:72], g.EpochLength)
	binary.LittleEndian.PutUint64(buf[72:80], g.Fee)
	binary.LittleEndian.PutUint64(buf[80:88], g.LastGlobalUpdate)
	binary.LittleEndian.PutUint64(buf[88:96], g.CurrentEpoch)
	return buf
}

// UnmarshalGlobalState decodes and structurally validates a GlobalState.
func UnmarshalGlobalState(buf []byte) (*GlobalState, error) {
	if len(buf) != GlobalStateSize {
		return nil, ErrInvalidAccountData
	}
	g := &GlobalState{}
	copy(g.Authority[:], buf[0:32])
	copy(g.TokenMint[:], buf[32:64])
	g.EpochLength = binary.LittleEndian.Uint64(buf[64:72])
	g.Fee = binary.LittleEndian.Uint64(buf[72:80])
	g.LastGlobalUpdate = binary.LittleEndian.Uint64(buf[80:88])
	g.CurrentEpoch = binary.LittleEndian.Uint64(buf[88:96])
	if g.EpochLength == 0 {
		return nil, ErrInvalidAccountData
	}
	return g, nil
}

// ZerosolAccount is one registered participant's settled commitment pair
// and identity. Encoded length: 105 bytes (32+32+32+8+1).
type ZerosolAccount struct {
	CommitmentLeft  curve.Point
	CommitmentRight curve.Point
	PublicKey       curve.Point
	LastRollover    uint64
	IsRegistered    bool
}

// ZerosolAccountSize is the fixed encoded length.
const ZerosolAccountSize = 105

// Marshal encodes the record.
func (a *ZerosolAccount) Marshal() []byte {
	buf := make([]byte, ZerosolAccountSize)
	copy(buf[0:32], a.CommitmentLeft.Bytes())
	copy(buf[32:64], a.CommitmentRight.Bytes())
	copy(buf[64:96], a.PublicKey.Bytes())
	binary.LittleEndian.PutUint64(buf[96:104], a.LastRollover)
	if a.IsRegistered {
		buf[104] = 1
	}
	return buf
}

// UnmarshalZerosolAccount decodes and structurally validates a
// ZerosolAccount, rejecting any non-canonical point encoding.
// InvalidCommitment takes priority over InvalidAccountData for point
// fields specifically.
func UnmarshalZerosolAccount(buf []byte) (*ZerosolAccount, error) {
	if len(buf) != ZerosolAccountSize {
		return nil, ErrInvalidAccountData
	}
	left, err := curve.DecodePoint(buf[0:32])
	if err != nil {
		return nil, err
	}
	right, err := curve.DecodePoint(buf[32:64])
	if err != nil {
		return nil, err
	}
	pub, err := curve.DecodePoint(buf[64:96])
	if err != nil {
		return nil, err
	}
	return &ZerosolAccount{
		CommitmentLeft:  left,
		CommitmentRight: right,
		PublicKey:       pub,
		LastRollover:    binary.LittleEndian.Uint64(buf[96:104]),
		IsRegistered:    buf[104] == 1,
	}, nil
}

// NewZerosolAccount creates an account at the identity commitment, as
// Register does.
func NewZerosolAccount(publicKey curve.Point, epoch uint64) *ZerosolAccount {
	return &ZerosolAccount{
		CommitmentLeft:  curve.IdentityPoint(),
		CommitmentRight: curve.IdentityPoint(),
		PublicKey:       publicKey,
		LastRollover:    epoch,
		IsRegistered:    true,
	}
}

// PendingAccount is the additive-within-epoch counterpart to a
// ZerosolAccount. Encoded length: 64 bytes (32+32).
type PendingAccount struct {
	CommitmentLeftPending  curve.Point
	CommitmentRightPending curve.Point
}

// PendingAccountSize is the fixed encoded length.
const PendingAccountSize = 64

// Marshal encodes the record.
func (p *PendingAccount) Marshal() []byte {
	buf := make([]byte, PendingAccountSize)
	copy(buf[0:32], p.CommitmentLeftPending.Bytes())
	copy(buf[32:64], p.CommitmentRightPending.Bytes())
	return buf
}

// UnmarshalPendingAccount decodes and structurally validates a PendingAccount.
func UnmarshalPendingAccount(buf []byte) (*PendingAccount, error) {
	if len(buf) != PendingAccountSize {
		return nil, ErrInvalidAccountData
	}
	left, err := curve.DecodePoint(buf[0:32])
	if err != nil {
		return nil, err
	}
	right, err := curve.DecodePoint(buf[32:64])
	if err != nil {
		return nil, err
	}
	return &PendingAccount{CommitmentLeftPending: left, CommitmentRightPending: right}, nil
}

// NewIdentityPending returns the zeroed pending pair Register writes.
func NewIdentityPending() *PendingAccount {
	return &PendingAccount{
		CommitmentLeftPending:  curve.IdentityPoint(),
		CommitmentRightPending: curve.IdentityPoint(),
	}
}

// NonceState records one consumed transfer nullifier, scoped to the
// epoch it was spent in. Encoded length: 41 bytes (32+8+1).
type NonceState struct {
	Nullifier [32]byte
	Epoch     uint64
	Used      bool
}

// NonceStateSize is the fixed encoded length.
const NonceStateSize = 41

// Marshal encodes the record.
func (n *NonceState) Marshal() []byte {
	buf := make([]byte, NonceStateSize)
	copy(buf[0:32], n.Nullifier[:])
	binary.LittleEndian.PutUint64(buf[32:40], n.Epoch)
	if n.Used {
		buf[40] = 1
	}
	return buf
}

// UnmarshalNonceState decodes and structurally validates a NonceState.
func UnmarshalNonceState(buf []byte) (*NonceState, error) {
	if len(buf) != NonceStateSize {
		return nil, ErrInvalidAccountData
	}
	n := &NonceState{}
	copy(n.Nullifier[:], buf[0:32])
	n.Epoch = binary.LittleEndian.Uint64(buf[32:40])
	n.Used = buf[40] == 1
	return n, nil
}
