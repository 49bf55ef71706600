package bpred

import "fmt"

// Token is the rollback handle of one in-flight branch. It records the
// global history of the thread as it was right before the prediction.
type Token struct {
	tid         ThreadID
	history     uint32
	predicted   bool
	conditional bool
	consumed    bool
}

// History returns the history snapshot taken at prediction time.
func (t *Token) History() uint32 {
	return t.history
}

// ThreadID returns the thread the branch was predicted for.
func (t *Token) ThreadID() ThreadID {
	return t.tid
}

// Predicted returns the direction handed out with the token. Unconditional
// branches are always predicted taken.
func (t *Token) Predicted() bool {
	return t.predicted
}

// Consumed reports whether the token has already been squashed or
// committed.
func (t *Token) Consumed() bool {
	return t.consumed
}

// mustBeLive panics if tok cannot be used by op on thread tid.
func mustBeLive(tok *Token, tid ThreadID, op string) {
	if tok == nil {
		panic(fmt.Errorf("%w: %s without a token", ErrContractViolation, op))
	}

	if tok.consumed {
		panic(fmt.Errorf("%w: %s with a consumed token", ErrContractViolation, op))
	}

	if tok.tid != tid {
		panic(fmt.Errorf("%w: %s on thread %d with a token of thread %d",
			ErrContractViolation, op, tid, tok.tid))
	}
}
