// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package program

import (
	"context"
	"errors"
	"strconv"

	"github.com/luxfi/gargantua/account"
	"github.com/luxfi/gargantua/curve"
	"github.com/luxfi/gargantua/r1cs"
	"github.com/luxfi/gargantua/rangeproof"
	"github.com/luxfi/gargantua/transcript"
)

func publicKeyBytes(p curve.Point) [32]byte {
	var out [32]byte
	copy(out[:], p.Bytes())
	return out
}

// mapStoreErr narrows a Store error into InvalidCommitment when it comes
// from decoding a non-canonical point out of a persisted record (see
// account.UnmarshalZerosolAccount and friends); any backend that
// deserializes records from bytes can surface curve.ErrInvalidPoint this
// way. A MemStore-backed Store, which never serializes, never triggers
// this path.
func mapStoreErr(err error) error {
	if errors.Is(err, curve.ErrInvalidPoint) {
		return ErrInvalidCommitment
	}
	return err
}

// checkRolloverConsistency guards the one invariant EnsureRolledOver must
// never violate: an account's last_rollover can never run ahead of the
// global current_epoch it was just rolled against.
func checkRolloverConsistency(acct *account.ZerosolAccount, gs *account.GlobalState) error {
	if acct.LastRollover > gs.CurrentEpoch {
		return ErrEpochTransitionError
	}
	return nil
}

// mapRangeProofErr narrows rangeproof.Verify's sub-errors into the
// dispatcher's distinct kinds instead of collapsing every cause behind
// one sentinel. structureFailed names the kind for a proof shaped wrong
// for its claimed statement (wrong element count); ipaFailed names the
// kind for this instruction's inner-product argument step; identityFailed
// names the kind specific to this instruction's t-polynomial identity,
// the check that actually decides whether the claimed range holds. A
// zero Fiat-Shamir challenge inside the range proof's own transcript
// rounds maps to the generic range-proof kind, distinct from
// SigmaProtocolChallengeFailed, which is reserved for the Schnorr and
// linkage sigma sub-protocols.
func mapRangeProofErr(err error, structureFailed, ipaFailed, identityFailed error) error {
	switch {
	case errors.Is(err, rangeproof.ErrWrongElementCount):
		return structureFailed
	case errors.Is(err, rangeproof.ErrZeroChallenge):
		return ErrRangeProofVerificationFailed
	case errors.Is(err, rangeproof.ErrInnerProductFailed):
		return ipaFailed
	case errors.Is(err, rangeproof.ErrTPolyIdentityFailed):
		return identityFailed
	default:
		return identityFailed
	}
}

// mapConstraintErr narrows an r1cs.BatchCheck failure by the label of the
// row it was evaluated for, rather than returning one opaque kind for
// every linear fact the constraint system checks.
func mapConstraintErr(err error, label string) error {
	if err == nil {
		return nil
	}
	switch label {
	case "balance-conservation":
		return ErrBalanceConservationFailed
	default:
		return ErrConstraintSystemVerificationFailed
	}
}

// InitializeRequest is Initialize's input.
type InitializeRequest struct {
	EpochLength uint64
	Fee         uint64
}

// Initialize writes GlobalState exactly once. Preconditions: the record
// must not already exist, and the caller must be the fixed authority —
// but since Initialize is what establishes the authority in the first
// place, the caller's identity at the moment of this call becomes the
// authority of record, immutable thereafter.
func (p *Program) Initialize(ctx context.Context, req InitializeRequest) error {
	if _, err := p.Store.GlobalState(); err == nil {
		return ErrGlobalStateAlreadyInitialized
	}
	if req.EpochLength == 0 {
		return ErrInvalidAccountData
	}
	caller := p.Identity.CurrentCaller()
	var noGenesisAuthority account.ExternalID
	if p.GenesisAuthority != noGenesisAuthority && p.GenesisAuthority != caller {
		return ErrNotAuthority
	}
	now := p.Clock.Now()
	gs := &account.GlobalState{
		Authority:        caller,
		EpochLength:      req.EpochLength,
		Fee:              req.Fee,
		LastGlobalUpdate: now,
		CurrentEpoch:     0,
	}
	if err := p.Store.SetGlobalState(gs); err != nil {
		return err
	}
	p.logger().Info("gargantua initialized", "epochLength", req.EpochLength, "fee", req.Fee, "now", now)
	return nil
}

// RegisterRequest is Register's input.
type RegisterRequest struct {
	PublicKey curve.Point
	Proof     r1cs.SchnorrProof
}

// Register verifies a Schnorr proof of knowledge of the secret key behind
// PublicKey, then creates a fresh ZerosolAccount/PendingAccount pair at
// the identity commitment. Rejects if an account already exists for this
// exact public key.
func (p *Program) Register(req RegisterRequest) error {
	gs, err := p.Store.GlobalState()
	if err != nil {
		return mapStoreErr(err)
	}
	key := publicKeyBytes(req.PublicKey)
	if _, found, err := p.Store.Account(key); err != nil {
		return mapStoreErr(err)
	} else if found {
		return ErrAccountAlreadyRegistered
	}

	tr := transcript.New()
	if err := r1cs.VerifySchnorr(tr, "register", req.PublicKey, req.Proof); err != nil {
		return ErrInvalidRegistrationSignature
	}

	epoch := account.CurrentEpoch(gs, p.Clock.Now())
	if err := p.Store.SetAccount(key, account.NewZerosolAccount(req.PublicKey, epoch)); err != nil {
		return err
	}
	if err := p.Store.SetPending(key, account.NewIdentityPending()); err != nil {
		return err
	}
	p.logger().Info("account registered", "epoch", epoch)
	return nil
}

// FundRequest is Fund's input.
type FundRequest struct {
	AccountPublicKey curve.Point
	Amount           uint64
	Depositor        account.ExternalID
}

// Fund moves Amount tokens from the external depositor into program
// custody and credits the target account's pending commitment pair. It
// rolls the target forward first so a fund landing just after an epoch
// boundary is folded against current settled state on its next use.
func (p *Program) Fund(ctx context.Context, req FundRequest) error {
	gs, err := p.Store.GlobalState()
	if err != nil {
		return mapStoreErr(err)
	}
	account.TickGlobalEpoch(gs, p.Clock.Now())

	key := publicKeyBytes(req.AccountPublicKey)
	acct, found, err := p.Store.Account(key)
	if err != nil {
		return mapStoreErr(err)
	}
	if !found || !acct.IsRegistered {
		return ErrAccountNotRegistered
	}
	pending, _, err := p.Store.Pending(key)
	if err != nil {
		return mapStoreErr(err)
	}
	account.EnsureRolledOver(acct, pending, gs.CurrentEpoch)
	if err := checkRolloverConsistency(acct, gs); err != nil {
		return err
	}

	if err := p.Custody.Debit(ctx, req.Depositor, req.Amount); err != nil {
		return ErrCustodyFailed
	}

	// A deposit is a publicly known amount, so it commits with zero
	// blinding: Commit(amount, 0) = amount*G, the same value
	// curve.MulBase(amountScalar) would produce, but built through the
	// module's one Pedersen-commitment primitive rather than duplicating
	// its arithmetic inline.
	amountScalar := curve.ScalarFromUint64(req.Amount)
	deposit := p.committer().Commit(amountScalar, curve.ZeroScalar())
	pending.CommitmentLeftPending = pending.CommitmentLeftPending.Add(deposit.Point())
	pending.CommitmentRightPending = pending.CommitmentRightPending.Add(req.AccountPublicKey.Mul(amountScalar))

	if err := p.Store.SetGlobalState(gs); err != nil {
		return err
	}
	if err := p.Store.SetAccount(key, acct); err != nil {
		return err
	}
	if err := p.Store.SetPending(key, pending); err != nil {
		return err
	}
	p.logger().Info("account funded", "amount", req.Amount)
	return nil
}

// TransferInput is one spent-from leg of a Transfer.
type TransferInput struct {
	PublicKey  curve.Point
	Commitment curve.Point // C_i: commitment to the value leaving this account
	Ownership  r1cs.SchnorrProof
	// LinkTarget is sk*commitment_right for this account's own settled
	// commitment_right and the same sk behind PublicKey: the engine
	// decrements commitment_right_pending by LinkTarget directly, so it
	// never needs to learn sk itself. Linkage is the Chaum-Pedersen proof
	// that LinkTarget was actually formed this way. See r1cs.VerifyLinkage.
	LinkTarget curve.Point
	Linkage    r1cs.LinkageProof
}

// TransferRequest is Transfer's input.
type TransferRequest struct {
	Inputs      []TransferInput
	Output      curve.Point // D: commitment credited to the beneficiary
	Beneficiary curve.Point
	Nonce       [32]byte
	Epoch       uint64
	RangeProof  rangeproof.Proof
}

// Transfer moves value between accounts without revealing sender,
// receiver, or amount. Verification order: nullifier freshness, epoch
// match, range proof over the transferred values and the senders'
// remaining balances, balance conservation, then per-input
// ownership/linkage.
func (p *Program) Transfer(req TransferRequest) error {
	gs, err := p.Store.GlobalState()
	if err != nil {
		return mapStoreErr(err)
	}
	account.TickGlobalEpoch(gs, p.Clock.Now())

	if err := account.CheckNullifierFresh(p.Store, req.Nonce, gs.CurrentEpoch); err != nil {
		return ErrNonceAlreadySeen
	}
	if req.Epoch != gs.CurrentEpoch {
		return ErrInvalidEpoch
	}

	type loaded struct {
		key     [32]byte
		acct    *account.ZerosolAccount
		pending *account.PendingAccount
	}
	legs := make([]loaded, len(req.Inputs))
	remainingBalances := make([]curve.Point, len(req.Inputs))
	for i, in := range req.Inputs {
		key := publicKeyBytes(in.PublicKey)
		acct, found, err := p.Store.Account(key)
		if err != nil {
			return mapStoreErr(err)
		}
		if !found || !acct.IsRegistered {
			return ErrAccountNotRegistered
		}
		pending, _, err := p.Store.Pending(key)
		if err != nil {
			return mapStoreErr(err)
		}
		account.EnsureRolledOver(acct, pending, gs.CurrentEpoch)
		if err := checkRolloverConsistency(acct, gs); err != nil {
			return err
		}
		legs[i] = loaded{key: key, acct: acct, pending: pending}
		remainingBalances[i] = acct.CommitmentLeft.Sub(in.Commitment)
	}

	vs := make([]curve.Point, 0, 2*len(req.Inputs))
	for _, in := range req.Inputs {
		vs = append(vs, in.Commitment)
	}
	vs = append(vs, remainingBalances...)

	tr := transcript.New()
	tr.AppendUint64("transfer/epoch", req.Epoch)
	tr.AppendBytes("transfer/nonce", req.Nonce[:])
	if err := rangeproof.Verify(tr, vs, req.RangeProof); err != nil {
		return mapRangeProofErr(err, ErrTransferAmountOutOfRange, ErrInnerProductProofVerificationFailed, ErrTransferProofVerificationFailed)
	}

	fee := curve.MulBase(curve.ScalarFromUint64(gs.Fee))
	inputCommitments := make([]curve.Point, len(req.Inputs))
	for i, in := range req.Inputs {
		inputCommitments[i] = in.Commitment
	}
	balanceRow := r1cs.BalanceConservationRow(inputCommitments, req.Output, fee)
	if err := r1cs.BatchCheck(curve.OneScalar(), []r1cs.Row{balanceRow}); err != nil {
		return mapConstraintErr(err, balanceRow.Label)
	}

	// Both the ownership and linkage proofs are bound into the same
	// per-transfer transcript tr, which has already absorbed the epoch,
	// the nonce, and the range-proof statement: a proof valid here cannot
	// be replayed against a different transfer, or against a different
	// input position within this one, without also rederiving these exact
	// challenges.
	for i, in := range req.Inputs {
		ownLabel := "transfer-input-" + strconv.Itoa(i) + "-ownership"
		if err := r1cs.VerifySchnorr(tr, ownLabel, in.PublicKey, in.Ownership); err != nil {
			return ErrSigmaProtocolChallengeFailed
		}
		linkLabel := "transfer-input-" + strconv.Itoa(i) + "-linkage"
		if err := r1cs.VerifyLinkage(tr, linkLabel, in.PublicKey, legs[i].acct.CommitmentRight, in.LinkTarget, in.Linkage); err != nil {
			return ErrArithmeticConstraintFailed
		}
	}

	for i, in := range req.Inputs {
		legs[i].pending.CommitmentLeftPending = legs[i].pending.CommitmentLeftPending.Sub(in.Commitment)
		// The linkage check just proved LinkTarget == sk*commitment_right
		// for the sender's own sk, so the engine can fold LinkTarget into
		// the right-side accumulator directly without ever recovering sk.
		legs[i].pending.CommitmentRightPending = legs[i].pending.CommitmentRightPending.Sub(in.LinkTarget)
	}

	beneficiaryKey := publicKeyBytes(req.Beneficiary)
	benAcct, found, err := p.Store.Account(beneficiaryKey)
	if err != nil {
		return mapStoreErr(err)
	}
	if !found || !benAcct.IsRegistered {
		return ErrAccountNotRegistered
	}
	benPending, _, err := p.Store.Pending(beneficiaryKey)
	if err != nil {
		return mapStoreErr(err)
	}
	account.EnsureRolledOver(benAcct, benPending, gs.CurrentEpoch)
	if err := checkRolloverConsistency(benAcct, gs); err != nil {
		return err
	}
	benPending.CommitmentLeftPending = benPending.CommitmentLeftPending.Add(req.Output)

	relayerAcct, found, err := p.Store.Account(p.RelayerKey)
	if err != nil {
		return mapStoreErr(err)
	}
	if !found || !relayerAcct.IsRegistered {
		return ErrAccountNotRegistered
	}
	relayerPending, _, err := p.Store.Pending(p.RelayerKey)
	if err != nil {
		return mapStoreErr(err)
	}
	account.EnsureRolledOver(relayerAcct, relayerPending, gs.CurrentEpoch)
	if err := checkRolloverConsistency(relayerAcct, gs); err != nil {
		return err
	}
	relayerPending.CommitmentLeftPending = relayerPending.CommitmentLeftPending.Add(fee)

	if err := account.ConsumeNullifier(p.Store, req.Nonce, req.Epoch); err != nil {
		return err
	}
	if err := p.Store.SetGlobalState(gs); err != nil {
		return err
	}
	for _, leg := range legs {
		if err := p.Store.SetAccount(leg.key, leg.acct); err != nil {
			return err
		}
		if err := p.Store.SetPending(leg.key, leg.pending); err != nil {
			return err
		}
	}
	if err := p.Store.SetAccount(beneficiaryKey, benAcct); err != nil {
		return err
	}
	if err := p.Store.SetPending(beneficiaryKey, benPending); err != nil {
		return err
	}
	if err := p.Store.SetAccount(p.RelayerKey, relayerAcct); err != nil {
		return err
	}
	if err := p.Store.SetPending(p.RelayerKey, relayerPending); err != nil {
		return err
	}
	p.logger().Info("transfer settled", "inputs", len(req.Inputs), "epoch", req.Epoch)
	return nil
}

// BurnRequest is Burn's input.
type BurnRequest struct {
	PublicKey  curve.Point
	Amount     uint64
	Withdrawer account.ExternalID
	Nonce      [32]byte
	Ownership  r1cs.SchnorrProof
	RangeProof rangeproof.Proof
}

// Burn withdraws Amount tokens to an external owner after checking
// ownership, nullifier freshness, and that the post-burn balance is still
// non-negative. It rolls the account forward first, since sufficiency is
// checked against settled state.
func (p *Program) Burn(ctx context.Context, req BurnRequest) error {
	gs, err := p.Store.GlobalState()
	if err != nil {
		return mapStoreErr(err)
	}
	account.TickGlobalEpoch(gs, p.Clock.Now())

	key := publicKeyBytes(req.PublicKey)
	acct, found, err := p.Store.Account(key)
	if err != nil {
		return mapStoreErr(err)
	}
	if !found || !acct.IsRegistered {
		return ErrAccountNotRegistered
	}
	pending, _, err := p.Store.Pending(key)
	if err != nil {
		return mapStoreErr(err)
	}
	account.EnsureRolledOver(acct, pending, gs.CurrentEpoch)
	if err := checkRolloverConsistency(acct, gs); err != nil {
		return err
	}

	if err := account.CheckNullifierFresh(p.Store, req.Nonce, gs.CurrentEpoch); err != nil {
		return ErrNonceAlreadySeen
	}

	tr := transcript.New()
	if err := r1cs.VerifySchnorr(tr, "burn", req.PublicKey, req.Ownership); err != nil {
		return ErrSigmaProtocolChallengeFailed
	}

	postBalance := r1cs.BalanceSufficiencyCommitment(acct.CommitmentLeft, curve.ScalarFromUint64(req.Amount))
	rangeTr := transcript.New()
	rangeTr.AppendBytes("burn/nonce", req.Nonce[:])
	if err := rangeproof.Verify(rangeTr, []curve.Point{postBalance}, req.RangeProof); err != nil {
		return mapRangeProofErr(err, ErrInvalidProofStructure, ErrBurnProofVerificationFailed, ErrInsufficientFunds)
	}

	if err := p.Custody.Credit(ctx, req.Withdrawer, req.Amount); err != nil {
		return ErrCustodyFailed
	}

	acct.CommitmentLeft = postBalance
	if err := account.ConsumeNullifier(p.Store, req.Nonce, gs.CurrentEpoch); err != nil {
		return err
	}
	if err := p.Store.SetGlobalState(gs); err != nil {
		return err
	}
	if err := p.Store.SetAccount(key, acct); err != nil {
		return err
	}
	if err := p.Store.SetPending(key, pending); err != nil {
		return err
	}
	p.logger().Info("account burned", "amount", req.Amount)
	return nil
}

// RollOverRequest is RollOver's input.
type RollOverRequest struct {
	PublicKey curve.Point
}

// RollOver performs the engine's rollover step for one account if stale,
// otherwise succeeds as a no-op; it may be called by anyone and performs
// no cryptographic verification.
func (p *Program) RollOver(req RollOverRequest) error {
	gs, err := p.Store.GlobalState()
	if err != nil {
		return mapStoreErr(err)
	}
	account.TickGlobalEpoch(gs, p.Clock.Now())

	key := publicKeyBytes(req.PublicKey)
	acct, found, err := p.Store.Account(key)
	if err != nil {
		return mapStoreErr(err)
	}
	if !found || !acct.IsRegistered {
		return ErrAccountNotRegistered
	}
	pending, _, err := p.Store.Pending(key)
	if err != nil {
		return mapStoreErr(err)
	}

	account.RollOver(acct, pending, gs.CurrentEpoch)

	if err := p.Store.SetGlobalState(gs); err != nil {
		return err
	}
	if err := p.Store.SetAccount(key, acct); err != nil {
		return err
	}
	return p.Store.SetPending(key, pending)
}
