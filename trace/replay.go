package trace

import "github.com/sarchlab/gselect/timing/bpred"

// Result summarizes a replay.
type Result struct {
	// Branches is the number of branches committed.
	Branches uint64
	// Conditional is the number of conditional branches committed.
	Conditional uint64
	// Mispredictions is the number of conditional branches that resolved
	// against their prediction.
	Mispredictions uint64
	// Squashed is the number of younger in-flight branches discarded after
	// a misprediction.
	Squashed uint64
}

// Accuracy returns the conditional prediction accuracy as a percentage.
func (r Result) Accuracy() float64 {
	if r.Conditional == 0 {
		return 0
	}
	return float64(r.Conditional-r.Mispredictions) / float64(r.Conditional) * 100
}

type inflight struct {
	rec       Record
	tok       *bpred.Token
	predicted bool
}

type thread struct {
	tid     bpred.ThreadID
	pending []Record
	window  []inflight
}

// Replayer drives a predictor with a trace.
//
// Each thread keeps up to depth predicted but unresolved branches. When the
// window is full the oldest branch resolves. A misprediction squashes every
// younger branch of the thread, youngest first, corrects the history, commits
// the branch and fetches the squashed records again. Threads are fetched
// round-robin.
type Replayer struct {
	pred  bpred.Predictor
	depth int
}

// NewReplayer creates a Replayer. A depth below 1 is treated as 1.
func NewReplayer(pred bpred.Predictor, depth int) *Replayer {
	if depth < 1 {
		depth = 1
	}

	return &Replayer{pred: pred, depth: depth}
}

// Run replays the records and commits every one of them.
func (r *Replayer) Run(records []Record) Result {
	threads := splitThreads(records)

	var res Result
	for busy := true; busy; {
		busy = false
		for _, t := range threads {
			if r.step(t, &res) {
				busy = true
			}
		}
	}

	return res
}

func splitThreads(records []Record) []*thread {
	var threads []*thread
	byTID := make(map[bpred.ThreadID]*thread)

	for _, rec := range records {
		t, ok := byTID[rec.TID]
		if !ok {
			t = &thread{tid: rec.TID}
			byTID[rec.TID] = t
			threads = append(threads, t)
		}
		t.pending = append(t.pending, rec)
	}

	return threads
}

// step fetches or resolves one branch of the thread. It returns false when
// the thread has nothing left to do.
func (r *Replayer) step(t *thread, res *Result) bool {
	switch {
	case len(t.pending) > 0 && len(t.window) < r.depth:
		r.fetch(t)
	case len(t.window) > 0:
		r.resolve(t, res)
	default:
		return false
	}

	return true
}

func (r *Replayer) fetch(t *thread) {
	rec := t.pending[0]
	t.pending = t.pending[1:]

	e := inflight{rec: rec, predicted: true}
	if rec.Conditional {
		e.predicted, e.tok = r.pred.Lookup(t.tid, rec.PC)
		if e.predicted && rec.BTBHit {
			r.pred.BTBUpdate(t.tid, rec.PC, e.tok)
		}
	} else {
		e.tok = r.pred.UncondBranch(t.tid, rec.PC)
	}

	t.window = append(t.window, e)
}

func (r *Replayer) resolve(t *thread, res *Result) {
	e := t.window[0]
	rec := e.rec

	res.Branches++
	if rec.Conditional {
		res.Conditional++
	}

	if e.predicted == rec.Taken {
		r.pred.Update(t.tid, rec.PC, rec.Taken, e.tok, false, rec, 0)
		t.window = t.window[1:]
		return
	}

	res.Mispredictions++

	younger := t.window[1:]
	for i := len(younger) - 1; i >= 0; i-- {
		r.pred.Squash(t.tid, younger[i].tok)
		res.Squashed++
	}

	r.pred.Update(t.tid, rec.PC, rec.Taken, e.tok, true, rec, 0)
	r.pred.Update(t.tid, rec.PC, rec.Taken, e.tok, false, rec, 0)

	refetch := make([]Record, 0, len(younger)+len(t.pending))
	for _, y := range younger {
		refetch = append(refetch, y.rec)
	}
	t.pending = append(refetch, t.pending...)
	t.window = nil
}
