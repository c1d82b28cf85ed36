// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package program

import (
	"context"

	"github.com/luxfi/gargantua/account"
	"github.com/luxfi/gargantua/commitment"
	log "github.com/luxfi/log"
)

// Custody is the external token-custody collaborator invoked on Fund and
// Burn. Both methods must behave atomically with respect to instruction
// success: if either returns an error, the dispatcher must not commit any
// state (ErrCustodyFailed maps the host's failure signal).
type Custody interface {
	Debit(ctx context.Context, owner [32]byte, amount uint64) error
	Credit(ctx context.Context, owner [32]byte, amount uint64) error
}

// Clock is the external wall-clock collaborator: monotonic, non-decreasing
// seconds since an arbitrary but fixed origin.
type Clock interface {
	Now() uint64
}

// Identity is the external caller-identity collaborator, used only by
// Initialize to check the authority precondition.
type Identity interface {
	CurrentCaller() account.ExternalID
}

// Program wires the account engine to its external collaborators and
// holds the one piece of ambient infrastructure the dispatcher needs
// beyond pure functions: structured logging. Logging is threaded as a
// field rather than a package global, so tests can swap in a silent
// logger without touching global state.
type Program struct {
	Store    account.Store
	Custody  Custody
	Clock    Clock
	Identity Identity
	Log      log.Logger

	// RelayerKey is the public key credited with the per-transfer fee
	// commitment. A deployment fixes this once; Gargantua does not mediate
	// fee-market policy beyond collecting this fixed fee.
	RelayerKey [32]byte

	// GenesisAuthority, if set, is the only identity Initialize accepts as
	// the caller. Left at its zero value, a deployment falls back to
	// first-caller-wins (whoever calls Initialize becomes the authority of
	// record), matching a bare in-memory test harness that has no
	// out-of-band way to pre-provision an authority.
	GenesisAuthority account.ExternalID

	// Committer builds the zero-blinding deposit commitments Fund credits
	// to an account's pending state. Left unset, a deployment gets a
	// fresh one lazily; tests that don't care about commitment-usage
	// statistics can construct a bare Program{}.
	Committer *commitment.Committer
}

// committer returns p.Committer, or a fresh one if the caller left it unset.
func (p *Program) committer() *commitment.Committer {
	if p.Committer == nil {
		p.Committer = commitment.NewCommitter()
	}
	return p.Committer
}

// logger returns p.Log, or a discard logger if the caller left it unset —
// tests that don't care about logging can construct a bare Program{}.
func (p *Program) logger() log.Logger {
	if p.Log == nil {
		return log.NewTestLogger(log.InfoLevel)
	}
	return p.Log
}
