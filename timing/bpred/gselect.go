package bpred

import (
	"fmt"

	"github.com/sarchlab/akita/v4/sim"
)

// GSelect is a two-level predictor that indexes a pattern history table with
// a NOR combination of the branch address and the per-thread global history.
//
// History is updated speculatively with each prediction and rolled back
// through the Token of the branch. GSelect is driven by a single pipeline
// goroutine and is not safe for concurrent use.
type GSelect struct {
	*sim.HookableBase

	config  Config
	mask    uint32
	pht     *PatternHistoryTable
	history *GlobalHistory
	stats   Stats
}

var _ Predictor = (*GSelect)(nil)

// NewGSelect creates a predictor with the given configuration.
func NewGSelect(config Config) (*GSelect, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	mask := config.HistoryMask()

	return &GSelect{
		HookableBase: sim.NewHookableBase(),
		config:       config,
		mask:         mask,
		pht:          NewPatternHistoryTable(config.TableSize, config.CounterBits),
		history:      NewGlobalHistory(config.NumThreads, mask),
	}, nil
}

// MustNewGSelect is like NewGSelect but panics on an invalid configuration.
func MustNewGSelect(config Config) *GSelect {
	p, err := NewGSelect(config)
	if err != nil {
		panic(fmt.Errorf("failed to create gselect predictor: %w", err))
	}

	return p
}

// Config returns the predictor configuration.
func (p *GSelect) Config() Config {
	return p.config
}

// History returns the current global history of the thread.
func (p *GSelect) History(tid ThreadID) uint32 {
	return p.history.Read(tid)
}

// Counter returns a copy of the PHT counter at index.
func (p *GSelect) Counter(index uint32) SatCounter {
	return p.pht.Counter(index)
}

// Index returns the PHT index addr maps to under the given history. The
// shifted address is truncated to 32 bits before combining.
func (p *GSelect) Index(addr Addr, history uint32) uint32 {
	shifted := uint32(uint64(addr) >> p.config.AddressShift)
	return Combine(shifted, history, p.mask)
}

// UncondBranch records an always-taken branch. The PHT is not consulted.
func (p *GSelect) UncondBranch(tid ThreadID, pc Addr) *Token {
	before := p.history.Read(tid)
	tok := &Token{tid: tid, history: before, predicted: true}

	p.history.ShiftIn(tid, true)
	p.stats.UncondBranches++

	p.trace(HookPosUncond, TraceEvent{
		TID:           tid,
		Addr:          pc,
		HistoryBefore: before,
		HistoryAfter:  p.history.Read(tid),
		Index:         -1,
		Taken:         true,
	})

	return tok
}

// Lookup predicts a conditional branch and speculatively shifts the
// prediction into the thread's history.
func (p *GSelect) Lookup(tid ThreadID, addr Addr) (bool, *Token) {
	before := p.history.Read(tid)
	idx := p.Index(addr, before)
	taken := p.pht.Predict(idx)

	tok := &Token{
		tid:         tid,
		history:     before,
		predicted:   taken,
		conditional: true,
	}

	p.history.ShiftIn(tid, taken)
	p.stats.Lookups++

	p.trace(HookPosLookup, TraceEvent{
		TID:           tid,
		Addr:          addr,
		HistoryBefore: before,
		HistoryAfter:  p.history.Read(tid),
		Index:         int(idx),
		Taken:         taken,
	})

	return taken, tok
}

// BTBUpdate clears the youngest bit of the thread's history. The token is
// neither inspected nor consumed and may be nil.
func (p *GSelect) BTBUpdate(tid ThreadID, addr Addr, tok *Token) {
	before := p.history.Read(tid)

	p.history.ClearLowBit(tid)
	p.stats.BTBUpdates++

	p.trace(HookPosBTBUpdate, TraceEvent{
		TID:           tid,
		Addr:          addr,
		HistoryBefore: before,
		HistoryAfter:  p.history.Read(tid),
		Index:         -1,
	})
}

// Update resolves a branch.
//
// With squashed set the thread's history is rebuilt from the token snapshot
// and the actual outcome, and the token stays live for the eventual commit
// or squash. Otherwise the counter the branch was predicted from is trained
// and the token is consumed; the live history is left alone.
func (p *GSelect) Update(
	tid ThreadID,
	addr Addr,
	taken bool,
	tok *Token,
	squashed bool,
	inst StaticInst,
	corrTarget Addr,
) {
	mustBeLive(tok, tid, "update")

	before := p.history.Read(tid)
	evt := TraceEvent{
		TID:           tid,
		Addr:          addr,
		HistoryBefore: before,
		Index:         -1,
		Taken:         taken,
		Squashed:      squashed,
		Inst:          inst,
		CorrTarget:    corrTarget,
	}

	if squashed {
		p.history.Restore(tid, tok.history)
		p.history.ShiftIn(tid, taken)
		p.stats.HistoryCorrections++

		evt.HistoryAfter = p.history.Read(tid)
		p.trace(HookPosUpdate, evt)

		return
	}

	idx := p.Index(addr, tok.history)
	p.pht.Train(idx, taken)
	p.countCommit(tok, taken)
	tok.consumed = true

	evt.Index = int(idx)
	evt.HistoryAfter = before
	p.trace(HookPosUpdate, evt)
}

// Squash restores the thread's history to the token snapshot and consumes
// the token. Branches predicted after it must be squashed as well; their
// snapshots are discarded by the caller.
func (p *GSelect) Squash(tid ThreadID, tok *Token) {
	mustBeLive(tok, tid, "squash")

	before := p.history.Read(tid)

	p.history.Restore(tid, tok.history)
	tok.consumed = true
	p.stats.Squashes++

	p.trace(HookPosSquash, TraceEvent{
		TID:           tid,
		HistoryBefore: before,
		HistoryAfter:  tok.history,
		Index:         -1,
	})
}

// Stats returns the predictor statistics.
func (p *GSelect) Stats() Stats {
	return p.stats
}

// ResetStats clears the statistics.
func (p *GSelect) ResetStats() {
	p.stats = Stats{}
}

// Reset clears all counters, history registers and statistics. Tokens
// handed out before the reset must not be used afterwards.
func (p *GSelect) Reset() {
	p.pht.Reset()
	p.history.Reset()
	p.stats = Stats{}
}

func (p *GSelect) countCommit(tok *Token, taken bool) {
	if !tok.conditional {
		return
	}

	p.stats.Commits++
	if tok.predicted == taken {
		p.stats.Correct++
	} else {
		p.stats.Mispredictions++
	}
}

func (p *GSelect) trace(pos *sim.HookPos, evt TraceEvent) {
	if p.NumHooks() == 0 {
		return
	}

	p.InvokeHook(sim.HookCtx{
		Domain: p,
		Pos:    pos,
		Item:   evt,
	})
}
