// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package account

import (
	"errors"

	"github.com/luxfi/gargantua/curve"
)

// ErrNullifierReused is returned when a nullifier already recorded as used
// for its epoch is replayed.
var ErrNullifierReused = errors.New("account: nullifier already used in this epoch")

// CurrentEpoch computes epoch(now) against the fixed genesis captured in
// GlobalState.LastGlobalUpdate. A timestamp at or before genesis is
// epoch zero; it never goes negative.
func CurrentEpoch(gs *GlobalState, now uint64) uint64 {
	if now <= gs.LastGlobalUpdate {
		return 0
	}
	return (now - gs.LastGlobalUpdate) / gs.EpochLength
}

// TickGlobalEpoch advances gs.CurrentEpoch to max(current, epoch(now)), as
// every instruction must do before acting. It never moves CurrentEpoch
// backwards.
func TickGlobalEpoch(gs *GlobalState, now uint64) {
	e := CurrentEpoch(gs, now)
	if e > gs.CurrentEpoch {
		gs.CurrentEpoch = e
	}
}

// RollOver folds a pending commitment pair into the settled account if the
// account has not already rolled over into the current epoch, resetting
// pending to the identity and advancing LastRollover. It reports whether
// it did any work, so callers — and tests —
// can observe idempotence directly: calling RollOver twice in the same
// epoch is a no-op the second time.
func RollOver(acct *ZerosolAccount, pending *PendingAccount, currentEpoch uint64) bool {
	if acct.LastRollover >= currentEpoch {
		return false
	}
	acct.CommitmentLeft = acct.CommitmentLeft.Add(pending.CommitmentLeftPending)
	acct.CommitmentRight = acct.CommitmentRight.Add(pending.CommitmentRightPending)
	pending.CommitmentLeftPending = curve.IdentityPoint()
	pending.CommitmentRightPending = curve.IdentityPoint()
	acct.LastRollover = currentEpoch
	return true
}

// EnsureRolledOver is the rollover-before-use guard every instruction that
// touches an account applies first, so settled state reflects every
// pending credit from earlier epochs before it is read. Credits made in
// the current epoch stay in pending until the epoch advances. It
// is RollOver without the bool — call
// sites that don't care whether work happened use this form.
func EnsureRolledOver(acct *ZerosolAccount, pending *PendingAccount, currentEpoch uint64) {
	RollOver(acct, pending, currentEpoch)
}

// CheckNullifierFresh rejects a replayed nullifier without writing
// anything; nullifier uniqueness is verified before any state mutation.
// Callers run this first, then defer the actual insertion
// (ConsumeNullifier) until every other verification step in the
// instruction has also succeeded, so a failed instruction never records a
// nullifier.
func CheckNullifierFresh(store Store, nullifier [32]byte, epoch uint64) error {
	existing, found, err := store.Nonce(nullifier, epoch)
	if err != nil {
		return err
	}
	if found && existing.Used {
		return ErrNullifierReused
	}
	return nil
}

// ConsumeNullifier records nullifier as used for epoch. Callers must have
// already called CheckNullifierFresh and completed every other check in
// the instruction — see program.Transfer/program.Burn for the ordering.
func ConsumeNullifier(store Store, nullifier [32]byte, epoch uint64) error {
	return store.SetNonce(nullifier, epoch, &NonceState{Nullifier: nullifier, Epoch: epoch, Used: true})
}
