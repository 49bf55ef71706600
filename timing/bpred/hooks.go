package bpred

import (
	"github.com/go-logr/logr"
	"github.com/sarchlab/akita/v4/sim"
)

// Hook positions at which GSelect invokes its hooks. The hook item is always
// a TraceEvent.
var (
	HookPosUncond    = &sim.HookPos{Name: "GSelect Uncond Branch"}
	HookPosLookup    = &sim.HookPos{Name: "GSelect Lookup"}
	HookPosBTBUpdate = &sim.HookPos{Name: "GSelect BTB Update"}
	HookPosUpdate    = &sim.HookPos{Name: "GSelect Update"}
	HookPosSquash    = &sim.HookPos{Name: "GSelect Squash"}
)

// TraceEvent describes one predictor operation.
type TraceEvent struct {
	TID  ThreadID
	Addr Addr

	// HistoryBefore and HistoryAfter are the thread's register around the
	// operation.
	HistoryBefore uint32
	HistoryAfter  uint32

	// Index is the PHT entry read or trained, -1 when none was touched.
	Index int

	// Taken is the prediction for lookups and the outcome for updates.
	Taken bool

	// Squashed marks a history-correcting update.
	Squashed bool

	Inst       StaticInst
	CorrTarget Addr
}

// TraceLogger is a hook that writes predictor events to a logr.Logger at
// verbosity 1.
type TraceLogger struct {
	log logr.Logger
}

// NewTraceLogger creates a TraceLogger writing to log.
func NewTraceLogger(log logr.Logger) *TraceLogger {
	return &TraceLogger{log: log}
}

// Func implements sim.Hook.
func (l *TraceLogger) Func(ctx sim.HookCtx) {
	evt, ok := ctx.Item.(TraceEvent)
	if !ok {
		return
	}

	kv := []interface{}{
		"tid", evt.TID,
		"addr", evt.Addr,
		"ghr_before", evt.HistoryBefore,
		"ghr_after", evt.HistoryAfter,
	}

	switch ctx.Pos {
	case HookPosLookup:
		kv = append(kv, "pht_idx", evt.Index, "taken", evt.Taken)
	case HookPosUpdate:
		kv = append(kv, "taken", evt.Taken, "squashed", evt.Squashed)
		if !evt.Squashed {
			kv = append(kv, "pht_idx", evt.Index)
		}
	}

	l.log.V(1).Info(ctx.Pos.Name, kv...)
}
