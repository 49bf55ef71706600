// Package bpred provides a speculative two-level branch direction predictor.
//
// The predictor combines a per-thread global history register with the
// branch address to select a saturating counter in a pattern history table.
// Every prediction hands the caller a Token that snapshots the history so the
// pipeline can roll it back exactly when the branch turns out to be on a
// wrong path.
package bpred

import "errors"

// ThreadID identifies a hardware thread.
type ThreadID int

// Addr is a branch instruction address.
type Addr uint64

// StaticInst is the instruction the pipeline associates with an update. The
// predictor only passes it through to trace hooks.
type StaticInst interface{}

// ErrContractViolation is the panic value, possibly wrapped, raised when the
// caller breaks the token protocol or uses an unknown thread.
var ErrContractViolation = errors.New("branch predictor contract violation")

// Predictor is the interface a fetch unit uses to drive a direction predictor.
//
// Each Token returned by UncondBranch or Lookup must be handed back exactly
// once, either to Squash or to a committing Update. Squash and Update calls
// must arrive in the order the branches were predicted.
type Predictor interface {
	// UncondBranch records an unconditional branch as taken.
	UncondBranch(tid ThreadID, pc Addr) *Token

	// Lookup predicts the direction of a conditional branch.
	Lookup(tid ThreadID, addr Addr) (bool, *Token)

	// BTBUpdate is invoked when the BTB supplies a target for a branch
	// before its outcome is known.
	BTBUpdate(tid ThreadID, addr Addr, tok *Token)

	// Update commits a branch outcome, or, if squashed is set, corrects the
	// history after a misprediction without consuming the token.
	Update(tid ThreadID, addr Addr, taken bool, tok *Token,
		squashed bool, inst StaticInst, corrTarget Addr)

	// Squash discards a branch and restores the history it saw.
	Squash(tid ThreadID, tok *Token)
}
